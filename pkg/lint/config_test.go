package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/csmstyle/pkg/core"
)

func TestConfig_Selection(t *testing.T) {
	cfg := NewConfig().SetSelect("CSM", "E125").Disable("CSM2")

	assert.True(t, cfg.IsEnabled("CSM1"))
	assert.False(t, cfg.IsEnabled("CSM2"))
	assert.False(t, cfg.IsEnabled("W605"))
	assert.True(t, cfg.IsSelected("CSM2"))
	assert.True(t, cfg.IsDisabled("CSM2"))

	var nilCfg *Config
	assert.True(t, nilCfg.IsEnabled("ANY1"))
	assert.Nil(t, nilCfg.GetRuleOptions("ANY1"))
	assert.Equal(t, core.SeverityInfo, nilCfg.GetSeverity("ANY1", core.SeverityInfo))
}

func TestConfig_UnknownSelections(t *testing.T) {
	registry, err := NewRegistry(WrapRuleDef(RuleDef{ID: "CSM1"}))
	assert.NoError(t, err)

	cfg := NewConfig().SetSelect("CSM", "E125", "E101")
	assert.Equal(t, []string{"E125", "E101"}, cfg.UnknownSelections(registry))
}

func TestConfig_SeverityAndOptions(t *testing.T) {
	cfg := NewConfig().
		SetSeverity("CSM1", core.SeverityError).
		SetRuleOptions("CSM1", map[string]any{"min_blank_lines": 3})

	assert.Equal(t, core.SeverityError, cfg.GetSeverity("CSM1", core.SeverityWarning))
	assert.Equal(t, core.SeverityWarning, cfg.GetSeverity("CSM2", core.SeverityWarning))
	assert.Equal(t, 3, GetIntOption(cfg.GetRuleOptions("CSM1"), "min_blank_lines", 2))
}

func TestOptions(t *testing.T) {
	opts := map[string]any{
		"int":          3,
		"float":        float64(4),
		"uint":         uint64(5),
		"string_int":   " 6 ",
		"bad_int":      "six",
		"flag":         true,
		"string_flag":  "true",
		"name":         "value",
		"kebab-option": 7,
	}

	assert.Equal(t, 3, GetIntOption(opts, "int", 0))
	assert.Equal(t, 4, GetIntOption(opts, "float", 0))
	assert.Equal(t, 5, GetIntOption(opts, "uint", 0))
	assert.Equal(t, 6, GetIntOption(opts, "string_int", 0))
	assert.Equal(t, 9, GetIntOption(opts, "bad_int", 9))
	assert.Equal(t, 9, GetIntOption(opts, "missing", 9))
	assert.Equal(t, 7, GetIntOption(opts, "kebab_option", 0))
	assert.Equal(t, 2, GetIntOption(nil, "int", 2))

	assert.True(t, GetBoolOption(opts, "flag", false))
	assert.True(t, GetBoolOption(opts, "string_flag", false))
	assert.False(t, GetBoolOption(opts, "name", false))

	assert.Equal(t, "value", GetStringOption(opts, "name", ""))
	assert.Equal(t, "fallback", GetStringOption(opts, "int", "fallback"))
	assert.Equal(t, 3, GetOption(opts, "int", 0))
}

func TestBuildDocURL(t *testing.T) {
	defer ResetDocsBaseURL()

	assert.Equal(t, "https://csmstyle.dev/docs/rules/csm1", BuildDocURL("CSM1"))

	SetDocsBaseURL("http://localhost:8080/rules/")
	assert.Equal(t, "http://localhost:8080/rules/csm4", BuildDocURL("CSM4"))

	SetDocsBaseURL("")
	assert.Equal(t, "http://localhost:8080/rules/csm4", BuildDocURL("CSM4"))
}

func TestCodeHelpers(t *testing.T) {
	assert.Equal(t, "CSM1", Code("CSM1 top-level function"))
	assert.Equal(t, "E1234", Code("E1234: message"))
	assert.Equal(t, "PLG1 message", WithCode("PLG1", "message"))
	assert.Equal(t, "PLG1 message", WithCode("PLG1", "PLG1 message"))
}
