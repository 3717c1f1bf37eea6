package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csmstyle/pkg/core"
)

// newFlags mirrors the persistent flags registered by the root command.
func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringSlice("select", nil, "")
	flags.StringSlice("disable", nil, "")
	flags.String("severity", "", "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("log-level", "", "")
	flags.Bool("explain", false, "")
	flags.String("explanations", "", "")
	flags.String("rules-dir", "", "")
	flags.String("state", "", "")
	flags.String("docs-url", "", "")
	return flags
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "csmstyle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	defer ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Empty(t, GetConfigFileUsed())
	assert.Equal(t, DefaultSeverity, cfg.Severity)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, core.SeverityHint, cfg.Threshold())
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Nil(t, cfg.Lint)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(wd, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, filepath.Join(wd, DefaultRulesDir), cfg.RulesDir)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
select: [CSM]
severity: warning
explanations: docs/explanations.yaml
lint:
  disabled: [CSM2]
  severity:
    CSM1: error
  rules:
    CSM1:
      min_blank_lines: 3
`)
	sub := filepath.Join(root, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)
	defer ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, GetConfigFileUsed())
	assert.Equal(t, filepath.Base(root), filepath.Base(cfg.ProjectRoot))
	assert.Equal(t, []string{"CSM"}, cfg.Select)
	assert.Equal(t, core.SeverityWarning, cfg.Threshold())
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "docs", "explanations.yaml"), cfg.Explanations)

	lintCfg := cfg.LintConfig()
	assert.True(t, lintCfg.IsEnabled("CSM1"))
	assert.False(t, lintCfg.IsEnabled("CSM2"))
	assert.False(t, lintCfg.IsEnabled("E501"))
	assert.Equal(t, core.SeverityError, lintCfg.GetSeverity("CSM1", core.SeverityWarning))
	assert.EqualValues(t, 3, lintCfg.GetRuleOptions("CSM1")["min_blank_lines"])
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "severity: info\noutput: text\nselect: CSM1\n")
	t.Chdir(dir)
	defer ResetConfig()

	tests := []struct {
		name         string
		env          map[string]string
		args         []string
		wantSeverity string
		wantOutput   string
		wantSelect   []string
		wantDisabled []string
	}{
		{
			name:         "file over defaults",
			wantSeverity: "info",
			wantOutput:   "text",
			wantSelect:   []string{"CSM1"},
		},
		{
			name:         "env over file",
			env:          map[string]string{"CSMSTYLE_SEVERITY": "error", "CSMSTYLE_SELECT": "CSM4, CSM5", "CSMSTYLE_LINT__DISABLED": "CSM5"},
			wantSeverity: "error",
			wantOutput:   "text",
			wantSelect:   []string{"CSM4", "CSM5"},
			wantDisabled: []string{"CSM5"},
		},
		{
			name:         "flags over env",
			env:          map[string]string{"CSMSTYLE_SEVERITY": "error", "CSMSTYLE_OUTPUT": "markdown"},
			args:         []string{"--severity", "hint", "-o", "json", "--select", "CSM6", "--disable", "CSM1,CSM3"},
			wantSeverity: "hint",
			wantOutput:   "json",
			wantSelect:   []string{"CSM6"},
			wantDisabled: []string{"CSM1", "CSM3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			flags := newFlags()
			require.NoError(t, flags.Parse(tt.args))

			cfg, err := LoadConfig(cfgPath, flags)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSeverity, cfg.Severity)
			assert.Equal(t, tt.wantOutput, cfg.OutputFormat)
			assert.Equal(t, tt.wantSelect, cfg.Select)
			if tt.wantDisabled == nil {
				assert.True(t, cfg.Lint == nil || len(cfg.Lint.Disabled) == 0)
			} else {
				require.NotNil(t, cfg.Lint)
				assert.Equal(t, tt.wantDisabled, cfg.Lint.Disabled)
			}
		})
	}
}

func TestLoadConfig_PathFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	defer ResetConfig()

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--state", "custom/state.db", "--rules-dir", "myrules", "--verbose"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "custom", "state.db"), cfg.StatePath)
	assert.Equal(t, filepath.Join(wd, "myrules"), cfg.RulesDir)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		explicit  string
		errSubstr string
	}{
		{name: "missing explicit file", explicit: "nope.yaml", errSubstr: "error reading config file"},
		{name: "bad yaml", content: "select: [\n", errSubstr: "error reading config file"},
		{name: "bad severity", content: "severity: fatal\n", errSubstr: "invalid severity"},
		{name: "bad output", content: "output: html\n", errSubstr: "invalid output format"},
		{name: "bad log level", content: "log_level: loud\n", errSubstr: "invalid log level"},
		{name: "bad rule severity", content: "lint:\n  severity:\n    CSM1: fatal\n", errSubstr: "for rule CSM1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			defer ResetConfig()

			if tt.content != "" {
				writeConfig(t, dir, tt.content)
			}
			_, err := LoadConfig(tt.explicit, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Equal(t, loggerKey{}, LoggerKey())
}
