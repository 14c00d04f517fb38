package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/metrics"
	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"go.uber.org/zap"
)

// SerialNumberPrefix starts every deployment request serial number.
const SerialNumberPrefix = "MSDR"

// ListFilter narrows the deployment list. Empty fields do not filter.
type ListFilter struct {
	Search string
	// Config is "yes" or "no", case-insensitive; any other value is ignored
	Config string
}

// DeploymentDraft is the caller supplied part of a deployment request.
type DeploymentDraft struct {
	CsiID           string            `json:"csiId"`
	Service         string            `json:"service"`
	RequestID       string            `json:"requestId"`
	IsConfig        bool              `json:"isConfig"`
	ConfigRequestID string            `json:"configRequestId"`
	Environments    models.StringList `json:"environments"`
	ReleaseBranch   string            `json:"releaseBranch"`
	Team            string            `json:"team"`
	Release         string            `json:"release"`
	Status          string            `json:"status"`
	CreatedBy       string            `json:"createdBy"`
	ProductionReady *bool             `json:"productionReady"`
	DateRequested   *time.Time        `json:"dateRequested"`

	RlmIDUat1  *string `json:"rlmIdUat1"`
	RlmIDUat2  *string `json:"rlmIdUat2"`
	RlmIDUat3  *string `json:"rlmIdUat3"`
	RlmIDPerf1 *string `json:"rlmIdPerf1"`
	RlmIDPerf2 *string `json:"rlmIdPerf2"`
	RlmIDProd1 *string `json:"rlmIdProd1"`
	RlmIDProd2 *string `json:"rlmIdProd2"`
}

// UnmarshalJSON decodes a draft, reading dateRequested with models.ParseTimestamp
// so zone-less local timestamps are accepted alongside RFC 3339.
func (draft *DeploymentDraft) UnmarshalJSON(data []byte) error {
	type plainDraft DeploymentDraft
	aux := struct {
		*plainDraft
		DateRequested *string `json:"dateRequested"`
	}{plainDraft: (*plainDraft)(draft)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	draft.DateRequested = nil
	if aux.DateRequested != nil && strings.TrimSpace(*aux.DateRequested) != "" {
		t, err := models.ParseTimestamp(*aux.DateRequested)
		if err != nil {
			return fmt.Errorf("dateRequested: %w", err)
		}
		draft.DateRequested = &t
	}
	return nil
}

// apply copies every draft field that callers may overwrite onto d.
func (draft *DeploymentDraft) apply(d *models.Deployment) {
	d.CsiID = draft.CsiID
	d.Service = draft.Service
	d.RequestID = draft.RequestID
	d.IsConfig = draft.IsConfig
	d.ConfigRequestID = draft.ConfigRequestID
	d.Environments = draft.Environments
	d.ReleaseBranch = draft.ReleaseBranch
	d.Team = draft.Team
	d.Release = draft.Release
	d.CreatedBy = draft.CreatedBy
	d.RlmIDUat1 = draft.RlmIDUat1
	d.RlmIDUat2 = draft.RlmIDUat2
	d.RlmIDUat3 = draft.RlmIDUat3
	d.RlmIDPerf1 = draft.RlmIDPerf1
	d.RlmIDPerf2 = draft.RlmIDPerf2
	d.RlmIDProd1 = draft.RlmIDProd1
	d.RlmIDProd2 = draft.RlmIDProd2
}

// DeploymentService implements the deployment request workflow
type DeploymentService interface {
	List(ctx context.Context, filter ListFilter) ([]models.Deployment, error)
	ListAll(ctx context.Context) ([]models.Deployment, error)
	Create(ctx context.Context, draft DeploymentDraft) (*models.Deployment, error)
	Update(ctx context.Context, id uint, draft DeploymentDraft, actor *SessionInfo) (*models.Deployment, error)
	Delete(ctx context.Context, id uint) error
	GenerateSerialNumber(ctx context.Context) (string, error)
}

type deploymentService struct {
	deployments store.DeploymentStore
	logger      *zap.Logger
	now         func() time.Time

	// serializes serial number allocation with the insert that uses it
	createMu sync.Mutex
}

// NewDeploymentService creates a new DeploymentService
func NewDeploymentService(deployments store.DeploymentStore, logger *zap.Logger) DeploymentService {
	return &deploymentService{
		deployments: deployments,
		logger:      logger,
		now:         time.Now,
	}
}

// ListAll returns every deployment, most recently requested first.
func (s *deploymentService) ListAll(ctx context.Context) ([]models.Deployment, error) {
	deployments, err := s.deployments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	sortByDateRequested(deployments)
	return deployments, nil
}

// List returns the sorted deployments that pass the config and search filters.
func (s *deploymentService) List(ctx context.Context, filter ListFilter) ([]models.Deployment, error) {
	deployments, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(filter.Config)) {
	case "yes":
		deployments = filterDeployments(deployments, func(d *models.Deployment) bool { return d.IsConfig })
	case "no":
		deployments = filterDeployments(deployments, func(d *models.Deployment) bool { return !d.IsConfig })
	}

	if needle := strings.ToLower(strings.TrimSpace(filter.Search)); needle != "" {
		deployments = filterDeployments(deployments, func(d *models.Deployment) bool { return d.MatchesSearch(needle) })
	}
	return deployments, nil
}

// GenerateSerialNumber formats the serial the next created deployment receives.
func (s *deploymentService) GenerateSerialNumber(ctx context.Context) (string, error) {
	count, err := s.deployments.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count deployments: %w", err)
	}
	return fmt.Sprintf("%s%07d", SerialNumberPrefix, count+1), nil
}

func (s *deploymentService) Create(ctx context.Context, draft DeploymentDraft) (*models.Deployment, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	serial, err := s.GenerateSerialNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deployment := &models.Deployment{
		SerialNumber:  serial,
		Status:        models.DeploymentStatusOpen,
		DateRequested: draft.DateRequested,
		DateModified:  &now,
	}
	draft.apply(deployment)
	if deployment.DateRequested == nil {
		deployment.DateRequested = &now
	}

	if err := s.deployments.Save(ctx, deployment); err != nil {
		return nil, fmt.Errorf("failed to save deployment: %w", err)
	}

	metrics.DeploymentMutationCount.WithLabelValues("create").Inc()
	s.logger.Info("deployment created",
		zap.Uint("id", deployment.ID),
		zap.String("serial_number", deployment.SerialNumber),
		zap.String("created_by", deployment.CreatedBy))
	return deployment, nil
}

// Update overwrites a deployment with the draft. Identity, serial number and
// request date are kept, unknown statuses are ignored, and production
// readiness is guarded by the completed status and the actor's rights.
func (s *deploymentService) Update(ctx context.Context, id uint, draft DeploymentDraft, actor *SessionInfo) (*models.Deployment, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	existing, err := s.deployments.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load deployment: %w", err)
	}

	if draft.ProductionReady != nil && *draft.ProductionReady != existing.ProductionReady {
		if existing.Status != models.DeploymentStatusCompleted {
			return nil, ErrInvalidTransition
		}
		if !actor.IsSuperAdmin() && actor.Username != existing.CreatedBy {
			return nil, ErrForbidden
		}
	}

	now := s.now()
	updated := &models.Deployment{
		ID:              existing.ID,
		SerialNumber:    existing.SerialNumber,
		DateRequested:   existing.DateRequested,
		DateModified:    &now,
		Status:          existing.Status,
		ProductionReady: existing.ProductionReady,
	}
	draft.apply(updated)

	if status := strings.TrimSpace(draft.Status); models.IsValidDeploymentStatus(status) {
		updated.Status = status
	}
	if draft.ProductionReady != nil {
		updated.ProductionReady = *draft.ProductionReady
	}

	if err := s.deployments.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save deployment: %w", err)
	}

	metrics.DeploymentMutationCount.WithLabelValues("update").Inc()
	s.logger.Info("deployment updated",
		zap.Uint("id", updated.ID),
		zap.String("status", updated.Status),
		zap.Bool("production_ready", updated.ProductionReady),
		zap.String("actor", actor.Username))
	return updated, nil
}

func (s *deploymentService) Delete(ctx context.Context, id uint) error {
	err := s.deployments.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete deployment: %w", err)
	}

	metrics.DeploymentMutationCount.WithLabelValues("delete").Inc()
	s.logger.Info("deployment deleted", zap.Uint("id", id))
	return nil
}

// sortByDateRequested orders newest first and puts undated requests last.
func sortByDateRequested(deployments []models.Deployment) {
	sort.SliceStable(deployments, func(i, j int) bool {
		a, b := deployments[i].DateRequested, deployments[j].DateRequested
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.After(*b)
	})
}

func filterDeployments(deployments []models.Deployment, keep func(*models.Deployment) bool) []models.Deployment {
	filtered := make([]models.Deployment, 0, len(deployments))
	for i := range deployments {
		if keep(&deployments[i]) {
			filtered = append(filtered, deployments[i])
		}
	}
	return filtered
}
