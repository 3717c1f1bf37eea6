package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/csmstyle/internal/cli/config"
	"github.com/leapstack-labs/csmstyle/internal/cli/output"
	"github.com/leapstack-labs/csmstyle/internal/plugin"
	"github.com/leapstack-labs/csmstyle/internal/state"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/lint/explain"
	"github.com/leapstack-labs/csmstyle/pkg/lint/rules"
	"github.com/spf13/cobra"
)

// Check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // Output format: text, json
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the csmstyle setup of this project",
		Long: `Check that csmstyle is set up correctly for the current project.

The doctor command reports:
- Which configuration file is used and whether the rule selection is valid
- Built-in rules and user rules loaded from the rules directory
- The state database holding ignored violations
- The explanations file, when one is configured

Exits with status 1 when a check fails.`,
		Example: `  # Run the checks
  csmstyle doctor

  # Output as JSON
  csmstyle doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	ConfigFile   string        `json:"config_file,omitempty"`
	ProjectRoot  string        `json:"project_root"`
	HealthChecks []HealthCheck `json:"health_checks"`
	IssueCount   int           `json:"issue_count"`
}

// HealthCheck represents a single check result.
type HealthCheck struct {
	Name    string   `json:"name"`
	Group   string   `json:"group"`
	Status  string   `json:"status"` // "pass", "warn", "error"
	Details []string `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	out := diagnose(cmdCtx.Cfg)
	if err := renderDoctor(r, out); err != nil {
		return err
	}

	if out.IssueCount > 0 {
		return fmt.Errorf("doctor found %d %s", out.IssueCount, plural(out.IssueCount, "problem", "problems"))
	}
	return nil
}

func renderDoctor(r *output.Renderer, out *DoctorOutput) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, out)
	default:
		return renderDoctorText(r, out)
	}
}

// diagnose runs every check against cfg.
func diagnose(cfg *config.Config) *DoctorOutput {
	out := &DoctorOutput{
		ConfigFile:  config.GetConfigFileUsed(),
		ProjectRoot: cfg.ProjectRoot,
	}

	registry, ruleChecks := checkRules(cfg)

	// checks are listed grouped: config, rules, state
	out.HealthChecks = append(out.HealthChecks, checkConfigFile(out.ConfigFile))
	if registry != nil {
		out.HealthChecks = append(out.HealthChecks, checkSelection(cfg, registry))
		if cfg.Explanations != "" {
			out.HealthChecks = append(out.HealthChecks, checkExplanations(cfg, registry))
		}
	}
	out.HealthChecks = append(out.HealthChecks, ruleChecks...)
	out.HealthChecks = append(out.HealthChecks, checkState(cfg))

	for _, check := range out.HealthChecks {
		if check.Status == statusError {
			out.IssueCount++
		}
	}
	return out
}

func checkConfigFile(path string) HealthCheck {
	check := HealthCheck{Name: "Configuration file", Group: "config", Status: statusPass}
	if path == "" {
		check.Status = statusWarn
		check.Details = []string{"no csmstyle.yaml found; using defaults"}
		return check
	}
	check.Details = []string{path}
	return check
}

func checkSelection(cfg *config.Config, registry *lint.Registry) HealthCheck {
	check := HealthCheck{Name: "Rule selection", Group: "config", Status: statusPass}

	lintCfg := cfg.LintConfig()
	enabled := 0
	for _, rule := range registry.Rules() {
		if lintCfg.IsEnabled(rule.ID()) {
			enabled++
		}
	}
	check.Details = append(check.Details, fmt.Sprintf("%d of %d rules enabled", enabled, registry.Len()))

	if unknown := lintCfg.UnknownSelections(registry); len(unknown) > 0 {
		check.Status = statusWarn
		check.Details = append(check.Details, "not produced by csmstyle: "+strings.Join(unknown, ", "))
	}
	if enabled == 0 {
		check.Status = statusWarn
	}
	return check
}

func checkRules(cfg *config.Config) (*lint.Registry, []HealthCheck) {
	builtin := HealthCheck{
		Name:    "Built-in rules",
		Group:   "rules",
		Status:  statusPass,
		Details: []string{fmt.Sprintf("%d rules", len(rules.All()))},
	}
	user := HealthCheck{Name: "User rules", Group: "rules", Status: statusPass}

	extra, err := plugin.NewLoader(cfg.RulesDir).Load()
	if err != nil {
		user.Status = statusError
		user.Details = []string{err.Error()}
		return nil, []HealthCheck{builtin, user}
	}
	if len(extra) == 0 {
		user.Details = []string{"none in " + cfg.RulesDir}
	}
	for _, rule := range extra {
		user.Details = append(user.Details, fmt.Sprintf("%s (%s)", rule.ID(), rule.Name()))
	}

	registry, err := rules.NewRegistry(extra...)
	if err != nil {
		user.Status = statusError
		user.Details = append(user.Details, err.Error())
		return nil, []HealthCheck{builtin, user}
	}
	return registry, []HealthCheck{builtin, user}
}

func checkExplanations(cfg *config.Config, registry *lint.Registry) HealthCheck {
	check := HealthCheck{Name: "Explanations file", Group: "config", Status: statusPass}

	catalog := explain.FromRegistry(registry)
	before := len(catalog.Codes())
	if err := catalog.LoadFile(cfg.Explanations); err != nil {
		check.Status = statusError
		check.Details = []string{err.Error()}
		return check
	}
	check.Details = []string{
		cfg.Explanations,
		fmt.Sprintf("%d codes explained (%d from rules)", len(catalog.Codes()), before),
	}
	return check
}

func checkState(cfg *config.Config) HealthCheck {
	check := HealthCheck{Name: "State database", Group: "state", Status: statusPass}

	if _, err := os.Stat(cfg.StatePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			check.Details = []string{"not created yet: " + cfg.StatePath}
			return check
		}
		check.Status = statusError
		check.Details = []string{err.Error()}
		return check
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		check.Status = statusError
		check.Details = []string{err.Error()}
		return check
	}
	defer func() { _ = store.Close() }()

	version, err := store.GetMigrationVersion()
	if err != nil {
		check.Status = statusError
		check.Details = []string{err.Error()}
		return check
	}
	check.Details = []string{cfg.StatePath, fmt.Sprintf("schema version %d", version)}
	return check
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render("csmstyle Doctor"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 40)))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 36)))
		}

		icon := styles.Success.Render("✓")
		switch check.Status {
		case statusWarn:
			icon = styles.Warning.Render("!")
		case statusError:
			icon = styles.Error.Render("✗")
		}
		r.Printf("   %s %s\n", icon, check.Name)

		for _, detail := range check.Details {
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	if out.IssueCount == 0 {
		r.Success("No problems found")
	}
	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println(output.FormatHeader(1, "csmstyle Doctor"))
	r.Println("")

	configFile := out.ConfigFile
	if configFile == "" {
		configFile = "(none)"
	}
	r.Println(output.FormatKeyValue("Config file", configFile))
	r.Println(output.FormatKeyValue("Project root", out.ProjectRoot))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(output.FormatHeader(2, titleCaser.String(currentGroup)))
			r.Println("")
		}

		r.Printf("- **[%s]** %s\n", strings.ToUpper(check.Status), check.Name)
		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	return nil
}
