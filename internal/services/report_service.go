package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/metrics"
	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"go.uber.org/zap"
)

// ReportDateLayout is the format of the startDate and endDate report filters.
const ReportDateLayout = "2006-01-02"

var reportHeader = []string{
	"Serial Number", "CSI ID", "Service", "Request ID", "Environments", "Team", "Release", "Status",
	"Created By", "Date Requested", "Date Modified",
	"RLM ID UAT1", "RLM ID UAT2", "RLM ID UAT3", "RLM ID PERF1", "RLM ID PERF2", "RLM ID PROD1", "RLM ID PROD2",
}

// ReportFilter selects the deployments exported by the general report.
type ReportFilter struct {
	Release     string
	Environment string
	Team        string
	StartDate   string
	EndDate     string
}

// Filename names the CSV attachment after the release, environment and team filters.
func (f ReportFilter) Filename() string {
	return fmt.Sprintf("deployments_%s_%s_%s.csv", orAll(f.Release), orAll(f.Environment), orAll(f.Team))
}

func orAll(value string) string {
	if value == "" {
		return "all"
	}
	return value
}

// Report is a rendered CSV export.
type Report struct {
	Filename string
	Data     []byte
	Rows     int
}

// ReportService renders deployment reports
type ReportService interface {
	Generate(ctx context.Context, filter ReportFilter) (*Report, error)
}

type reportService struct {
	deployments store.DeploymentStore
	logger      *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(deployments store.DeploymentStore, logger *zap.Logger) ReportService {
	return &reportService{deployments: deployments, logger: logger}
}

func (s *reportService) Generate(ctx context.Context, filter ReportFilter) (*Report, error) {
	deployments, err := s.deployments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}

	// An unparsable range drops the date filter instead of failing the report
	if filter.StartDate != "" && filter.EndDate != "" {
		start, end, err := parseReportRange(filter.StartDate, filter.EndDate)
		if err != nil {
			s.logger.Debug("ignoring report date range", zap.Error(err))
		} else {
			deployments = filterDeployments(deployments, func(d *models.Deployment) bool {
				return d.DateRequested != nil && !d.DateRequested.Before(start) && !d.DateRequested.After(end)
			})
		}
	}
	if filter.Release != "" {
		deployments = filterDeployments(deployments, func(d *models.Deployment) bool { return d.Release == filter.Release })
	}
	if filter.Environment != "" {
		deployments = filterDeployments(deployments, func(d *models.Deployment) bool { return d.InEnvironment(filter.Environment) })
	}
	if filter.Team != "" {
		deployments = filterDeployments(deployments, func(d *models.Deployment) bool { return strings.EqualFold(d.Team, filter.Team) })
	}

	data, err := renderCSV(deployments)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	metrics.ReportsGeneratedCount.Inc()
	return &Report{Filename: filter.Filename(), Data: data, Rows: len(deployments)}, nil
}

// parseReportRange returns [start 00:00:00, end 23:59:59] in local time.
func parseReportRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(ReportDateLayout, startDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(ReportDateLayout, endDate, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	return start, time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.Local), nil
}

func renderCSV(deployments []models.Deployment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, err
	}
	for i := range deployments {
		d := &deployments[i]
		record := []string{
			d.SerialNumber,
			d.CsiID,
			d.Service,
			d.RequestID,
			d.EnvironmentSummary(),
			d.Team,
			d.Release,
			d.Status,
			d.CreatedBy,
			models.FormatTimestamp(d.DateRequested),
			models.FormatTimestamp(d.DateModified),
			deref(d.RlmIDUat1),
			deref(d.RlmIDUat2),
			deref(d.RlmIDUat3),
			deref(d.RlmIDPerf1),
			deref(d.RlmIDPerf2),
			deref(d.RlmIDProd1),
			deref(d.RlmIDProd2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
