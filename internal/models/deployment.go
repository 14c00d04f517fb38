package models

import (
	"strings"
	"time"
)

const (
	DeploymentStatusOpen       = "Open"
	DeploymentStatusInProgress = "In Progress"
	DeploymentStatusPending    = "Pending"
	DeploymentStatusCompleted  = "Completed"
)

// IsValidDeploymentStatus reports whether status is one of the four workflow states.
func IsValidDeploymentStatus(status string) bool {
	switch status {
	case DeploymentStatusOpen, DeploymentStatusInProgress, DeploymentStatusPending, DeploymentStatusCompleted:
		return true
	}
	return false
}

// Report environment groups. PERF and PROD each cover two RLM slots.
const (
	EnvironmentUAT1 = "UAT1"
	EnvironmentUAT2 = "UAT2"
	EnvironmentUAT3 = "UAT3"
	EnvironmentPERF = "PERF"
	EnvironmentPROD = "PROD"
)

// Deployment represents a request to roll a service out to one or more environments
type Deployment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SerialNumber    string     `gorm:"index" json:"serialNumber"`
	CsiID           string     `json:"csiId"`
	Service         string     `json:"service"`
	RequestID       string     `json:"requestId"`
	IsConfig        bool       `gorm:"default:false" json:"isConfig"`
	ConfigRequestID string     `json:"configRequestId"`
	Environments    StringList `gorm:"type:text" json:"environments"`
	ReleaseBranch   string     `json:"releaseBranch"`
	Team            string     `json:"team"`
	Release         string     `json:"release"`
	Status          string     `gorm:"default:Open" json:"status"`
	CreatedBy       string     `json:"createdBy"`
	ProductionReady bool       `gorm:"default:false" json:"productionReady"`
	DateRequested   *time.Time `json:"dateRequested"`
	DateModified    *time.Time `json:"dateModified"`

	// RLM ticket per environment slot, nil until the rollout ticket exists
	RlmIDUat1  *string `gorm:"column:rlm_id_uat1" json:"rlmIdUat1"`
	RlmIDUat2  *string `gorm:"column:rlm_id_uat2" json:"rlmIdUat2"`
	RlmIDUat3  *string `gorm:"column:rlm_id_uat3" json:"rlmIdUat3"`
	RlmIDPerf1 *string `gorm:"column:rlm_id_perf1" json:"rlmIdPerf1"`
	RlmIDPerf2 *string `gorm:"column:rlm_id_perf2" json:"rlmIdPerf2"`
	RlmIDProd1 *string `gorm:"column:rlm_id_prod1" json:"rlmIdProd1"`
	RlmIDProd2 *string `gorm:"column:rlm_id_prod2" json:"rlmIdProd2"`
}

func (Deployment) TableName() string {
	return "deployments"
}

// InEnvironment reports whether the deployment has an RLM ticket for the given
// report environment. Matching is case-insensitive; unknown names never match.
func (d *Deployment) InEnvironment(environment string) bool {
	switch strings.ToUpper(environment) {
	case EnvironmentUAT1:
		return d.RlmIDUat1 != nil
	case EnvironmentUAT2:
		return d.RlmIDUat2 != nil
	case EnvironmentUAT3:
		return d.RlmIDUat3 != nil
	case EnvironmentPERF:
		return d.RlmIDPerf1 != nil || d.RlmIDPerf2 != nil
	case EnvironmentPROD:
		return d.RlmIDProd1 != nil || d.RlmIDProd2 != nil
	default:
		return false
	}
}

// EnvironmentSummary lists the report environments that have a ticket, e.g. "UAT1;PROD;".
func (d *Deployment) EnvironmentSummary() string {
	var b strings.Builder
	for _, env := range []string{EnvironmentUAT1, EnvironmentUAT2, EnvironmentUAT3, EnvironmentPERF, EnvironmentPROD} {
		if d.InEnvironment(env) {
			b.WriteString(env)
			b.WriteByte(';')
		}
	}
	return b.String()
}

// MatchesSearch reports whether any searchable field contains needle.
// needle must already be trimmed and lower case.
func (d *Deployment) MatchesSearch(needle string) bool {
	return containsFold(d.SerialNumber, needle) ||
		containsFold(d.Service, needle) ||
		containsFold(FormatTimestamp(d.DateRequested), needle) ||
		containsFold(FormatTimestamp(d.DateModified), needle) ||
		containsFold(d.CsiID, needle) ||
		containsFold(d.RequestID, needle) ||
		containsFold(d.Team, needle) ||
		containsFold(d.Release, needle) ||
		containsFold(d.Status, needle)
}
