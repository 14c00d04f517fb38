package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestStringList_Value(t *testing.T) {
	tests := []struct {
		name     string
		input    StringList
		expected interface{}
	}{
		{
			name:     "nil_list",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty_list",
			input:    StringList{},
			expected: []byte("[]"),
		},
		{
			name:     "ordered_list",
			input:    StringList{"UAT1", "PROD1"},
			expected: []byte(`["UAT1","PROD1"]`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.input.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestStringList_Scan(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected StringList
		wantErr  bool
	}{
		{
			name:     "nil_input",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty_string",
			input:    "",
			expected: nil,
		},
		{
			name:     "valid_bytes",
			input:    []byte(`["UAT2","PERF1"]`),
			expected: StringList{"UAT2", "PERF1"},
		},
		{
			name:     "valid_string",
			input:    `["PROD2"]`,
			expected: StringList{"PROD2"},
		},
		{
			name:    "invalid_json",
			input:   `{not a list}`,
			wantErr: true,
		},
		{
			name:    "unsupported_type",
			input:   42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result StringList
			err := result.Scan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleDeveloper, NormalizeRole("user"))
	assert.Equal(t, RoleDeveloper, NormalizeRole("USER"))
	assert.Equal(t, RoleSuperAdmin, NormalizeRole("superadmin"))
	assert.Equal(t, RoleAdmin, NormalizeRole("admin"))
}

func TestIsValidDeploymentStatus(t *testing.T) {
	for _, status := range []string{"Open", "In Progress", "Pending", "Completed"} {
		assert.True(t, IsValidDeploymentStatus(status), status)
	}
	for _, status := range []string{"", "open", "cancelled", "Done"} {
		assert.False(t, IsValidDeploymentStatus(status), status)
	}
}

func TestDeployment_InEnvironment(t *testing.T) {
	d := &Deployment{RlmIDUat1: strPtr("RLM-1"), RlmIDProd1: strPtr("RLM-9")}

	assert.True(t, d.InEnvironment("UAT1"))
	assert.True(t, d.InEnvironment("uat1"))
	assert.True(t, d.InEnvironment("PROD"))
	assert.False(t, d.InEnvironment("UAT2"))
	assert.False(t, d.InEnvironment("PERF"))
	assert.False(t, d.InEnvironment("PROD1"))
	assert.False(t, d.InEnvironment("staging"))

	assert.Equal(t, "UAT1;PROD;", d.EnvironmentSummary())

	perf := &Deployment{RlmIDPerf2: strPtr("")}
	assert.True(t, perf.InEnvironment("perf"))
	assert.Equal(t, "PERF;", perf.EnvironmentSummary())
}

func TestDeployment_MatchesSearch(t *testing.T) {
	requested := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	modified := time.Date(2025, 4, 2, 17, 5, 0, 0, time.UTC)
	d := &Deployment{
		SerialNumber:  "MSDR0000001",
		CsiID:         "CSI-48213",
		Service:       "auth-login-service",
		RequestID:     "jenkins-REQ-7731",
		Team:          "Payments",
		Release:       "2025-03",
		Status:        "In Progress",
		DateRequested: &requested,
		DateModified:  &modified,
	}

	tests := []struct {
		name   string
		needle string
		want   bool
	}{
		{name: "serial_number", needle: "msdr000001", want: true},
		{name: "service", needle: "login", want: true},
		{name: "csi_id", needle: "csi-482", want: true},
		{name: "request_id", needle: "req-7731", want: true},
		{name: "team", needle: "payments", want: true},
		{name: "release", needle: "2025-03", want: true},
		{name: "status", needle: "in progress", want: true},
		{name: "date_requested", needle: "2025-03-14", want: true},
		{name: "date_modified", needle: "2025-04-02t17:05", want: true},
		{name: "no_match", needle: "billing", want: false},
		{name: "year_not_present", needle: "2024", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.MatchesSearch(tt.needle))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "rfc3339_utc", input: "2025-03-14T09:30:00Z", want: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)},
		{name: "rfc3339_offset", input: "2025-03-14T09:30:00+02:00", want: time.Date(2025, 3, 14, 7, 30, 0, 0, time.UTC)},
		{name: "local_seconds", input: "2025-03-14T09:30:00", want: time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)},
		{name: "local_fraction", input: "2025-03-14T09:30:00.250", want: time.Date(2025, 3, 14, 9, 30, 0, 250000000, time.Local)},
		{name: "local_minutes", input: "2025-03-14T09:30", want: time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)},
		{name: "date_only", input: " 2025-03-14 ", want: time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("14/03/2025")
	assert.Error(t, err)
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := &Session{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
}
