package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csmstyle/internal/cli/config"
)

func findCheck(t *testing.T, checks []HealthCheck, name string) HealthCheck {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found", name)
	return HealthCheck{}
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T, dir string, cfg *config.Config)
		check      string
		wantStatus string
		wantDetail string
		wantIssues int
	}{
		{
			name:       "no config file",
			check:      "Configuration file",
			wantStatus: statusWarn,
			wantDetail: "using defaults",
		},
		{
			name:       "default selection",
			check:      "Rule selection",
			wantStatus: statusPass,
			wantDetail: "6 of 6 rules enabled",
		},
		{
			name: "foreign codes selected",
			setup: func(_ *testing.T, _ string, cfg *config.Config) {
				cfg.Select = []string{"CSM1", "E501"}
			},
			check:      "Rule selection",
			wantStatus: statusWarn,
			wantDetail: "not produced by csmstyle: E501",
		},
		{
			name: "user rule loaded",
			setup: func(t *testing.T, dir string, _ *config.Config) {
				writeFile(t, dir, ".csmstyle/rules/todo.star", "code = \"PRJ7\"\ndef check(line):\n    return None\n")
			},
			check:      "User rules",
			wantStatus: statusPass,
			wantDetail: "PRJ7 (plugin.todo)",
		},
		{
			name: "broken user rule",
			setup: func(t *testing.T, dir string, _ *config.Config) {
				writeFile(t, dir, ".csmstyle/rules/bad.star", "code = \"bad\"\n")
			},
			check:      "User rules",
			wantStatus: statusError,
			wantDetail: "bad.star",
			wantIssues: 1,
		},
		{
			name: "broken explanations file",
			setup: func(t *testing.T, dir string, cfg *config.Config) {
				cfg.Explanations = writeFile(t, dir, "explain.yaml", "- not a map\n")
			},
			check:      "Explanations file",
			wantStatus: statusError,
			wantDetail: "failed to parse explanations",
			wantIssues: 1,
		},
		{
			name:       "state not created",
			check:      "State database",
			wantStatus: statusPass,
			wantDetail: "not created yet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, cfg := useProject(t)
			if tt.setup != nil {
				tt.setup(t, dir, cfg)
			}

			out := diagnose(cfg)

			check := findCheck(t, out.HealthChecks, tt.check)
			assert.Equal(t, tt.wantStatus, check.Status)
			assert.Contains(t, strings.Join(check.Details, "\n"), tt.wantDetail)
			assert.Equal(t, tt.wantIssues, out.IssueCount)
		})
	}
}

func TestDoctorCommand_StateVersion(t *testing.T) {
	dir, cfg := useProject(t)
	path := writeFile(t, dir, "mod.py", compactModule)
	_, err := execute(t, NewIgnoreCommand(), "add", path)
	require.NoError(t, err)

	output, err := execute(t, NewDoctorCommand(), "--format", "json")
	require.NoError(t, err)

	var out DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, cfg.ProjectRoot, out.ProjectRoot)
	assert.Zero(t, out.IssueCount)
	assert.Contains(t, findCheck(t, out.HealthChecks, "State database").Details, "schema version 1")
}

func TestDoctorCommand_Markdown(t *testing.T) {
	useProject(t)

	output, err := execute(t, NewDoctorCommand())
	require.NoError(t, err)

	assert.Contains(t, output, "# csmstyle Doctor")
	assert.Contains(t, output, "- **Config file:** (none)")
	assert.Contains(t, output, "## Rules")
	assert.Contains(t, output, "- **[PASS]** Built-in rules")
	assert.Contains(t, output, "- **[WARN]** Configuration file")
}

func TestDoctorCommand_Fails(t *testing.T) {
	dir, _ := useProject(t)
	writeFile(t, dir, ".csmstyle/rules/bad.star", "code = 1\n")

	output, err := execute(t, NewDoctorCommand(), "--format", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doctor found 1 problem")
	assert.Contains(t, output, "csmstyle Doctor")
	assert.Contains(t, output, "User rules")
}
