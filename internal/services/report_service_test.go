package services

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/rxtech-lab/deployment-portal/internal/models"
	"github.com/rxtech-lab/deployment-portal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReportFilterFilename(t *testing.T) {
	assert.Equal(t, "deployments_all_all_all.csv", ReportFilter{}.Filename())
	assert.Equal(t, "deployments_2025-01_UAT1_all.csv", ReportFilter{Release: "2025-01", Environment: "UAT1"}.Filename())
	assert.Equal(t, "deployments_all_all_Payments.csv", ReportFilter{Team: "Payments", StartDate: "2025-01-01"}.Filename())
}

func TestReportService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	deployments := store.NewDeploymentStore(db.GetDB())
	service := NewReportService(deployments, zap.NewNop())

	local := func(y int, m time.Month, d, h, min, s int) *time.Time {
		return timePtr(time.Date(y, m, d, h, min, s, 0, time.Local))
	}

	seed := []models.Deployment{
		{
			SerialNumber: "MSDR0000001", CsiID: "CSI-1", Service: "auth-login-service", RequestID: "jenkins-REQ001",
			Team: "Identity", Release: "2025-01", Status: "Open", CreatedBy: "alice",
			DateRequested: local(2025, 1, 10, 0, 0, 0), DateModified: local(2025, 1, 11, 9, 30, 0),
			RlmIDUat1: strPtr("RLM-U1"), RlmIDProd1: strPtr("RLM-P1"),
		},
		{
			SerialNumber: "MSDR0000002", Service: "payments, core", Team: "Payments", Release: "2025-02",
			Status: "Completed", DateRequested: local(2025, 1, 31, 23, 59, 59),
			RlmIDPerf2: strPtr("RLM-F2"),
		},
		{
			SerialNumber: "MSDR0000003", Service: "search", Team: "payments", Release: "2025-01",
			Status: "Pending", DateRequested: local(2025, 2, 1, 0, 0, 0),
		},
		{
			SerialNumber: "MSDR0000004", Service: "undated", Team: "Ops",
		},
	}
	for i := range seed {
		require.NoError(t, deployments.Save(ctx, &seed[i]))
	}

	readRows := func(t *testing.T, report *Report) [][]string {
		t.Helper()
		rows, err := csv.NewReader(strings.NewReader(string(report.Data))).ReadAll()
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.Equal(t, reportHeader, rows[0])
		return rows[1:]
	}
	serials := func(rows [][]string) []string {
		out := make([]string, 0, len(rows))
		for _, row := range rows {
			out = append(out, row[0])
		}
		return out
	}

	t.Run("HeaderAndRowShape", func(t *testing.T) {
		report, err := service.Generate(ctx, ReportFilter{})
		require.NoError(t, err)
		assert.Equal(t, "deployments_all_all_all.csv", report.Filename)
		assert.Equal(t, 4, report.Rows)
		assert.True(t, strings.HasPrefix(string(report.Data),
			"Serial Number,CSI ID,Service,Request ID,Environments,Team,Release,Status,Created By,Date Requested,Date Modified,"+
				"RLM ID UAT1,RLM ID UAT2,RLM ID UAT3,RLM ID PERF1,RLM ID PERF2,RLM ID PROD1,RLM ID PROD2\n"))

		rows := readRows(t, report)
		require.Len(t, rows, 4)
		first := rows[0]
		assert.Equal(t, []string{
			"MSDR0000001", "CSI-1", "auth-login-service", "jenkins-REQ001", "UAT1;PROD;", "Identity", "2025-01", "Open",
			"alice", "2025-01-10T00:00:00", "2025-01-11T09:30:00", "RLM-U1", "", "", "", "", "RLM-P1", "",
		}, first)

		// Embedded commas survive as a single quoted field
		assert.Equal(t, "payments, core", rows[1][2])
		assert.Equal(t, "PERF;", rows[1][4])

		undated := rows[3]
		assert.Equal(t, "", undated[4])
		assert.Equal(t, "", undated[9])
		assert.Equal(t, "", undated[10])
	})

	t.Run("EnvironmentRoundTrip", func(t *testing.T) {
		for env, want := range map[string][]string{
			"UAT1": {"MSDR0000001"},
			"uat1": {"MSDR0000001"},
			"PROD": {"MSDR0000001"},
			"UAT2": {},
			"PERF": {"MSDR0000002"},
			"DEV":  {},
		} {
			report, err := service.Generate(ctx, ReportFilter{Environment: env})
			require.NoError(t, err)
			assert.Equal(t, want, serials(readRows(t, report)), env)
		}
	})

	t.Run("ReleaseIsExact", func(t *testing.T) {
		report, err := service.Generate(ctx, ReportFilter{Release: "2025-01"})
		require.NoError(t, err)
		assert.Equal(t, []string{"MSDR0000001", "MSDR0000003"}, serials(readRows(t, report)))

		report, err = service.Generate(ctx, ReportFilter{Release: "2025"})
		require.NoError(t, err)
		assert.Empty(t, readRows(t, report))
	})

	t.Run("TeamIgnoresCase", func(t *testing.T) {
		report, err := service.Generate(ctx, ReportFilter{Team: "PAYMENTS"})
		require.NoError(t, err)
		assert.Equal(t, []string{"MSDR0000002", "MSDR0000003"}, serials(readRows(t, report)))
		assert.Equal(t, "deployments_all_all_PAYMENTS.csv", report.Filename)
	})

	t.Run("DateRangeIsInclusive", func(t *testing.T) {
		report, err := service.Generate(ctx, ReportFilter{StartDate: "2025-01-10", EndDate: "2025-01-31"})
		require.NoError(t, err)
		assert.Equal(t, []string{"MSDR0000001", "MSDR0000002"}, serials(readRows(t, report)))
	})

	t.Run("BadDatesSkipTheFilter", func(t *testing.T) {
		report, err := service.Generate(ctx, ReportFilter{StartDate: "2025-01-10", EndDate: "not-a-date"})
		require.NoError(t, err)
		assert.Len(t, readRows(t, report), 4)

		// A single bound is ignored as well
		report, err = service.Generate(ctx, ReportFilter{StartDate: "2025-02-01"})
		require.NoError(t, err)
		assert.Len(t, readRows(t, report), 4)
	})

	t.Run("FiltersCombine", func(t *testing.T) {
		report, err := service.Generate(ctx, ReportFilter{Release: "2025-01", Team: "payments", StartDate: "2025-02-01", EndDate: "2025-02-28"})
		require.NoError(t, err)
		assert.Equal(t, []string{"MSDR0000003"}, serials(readRows(t, report)))
	})
}
