package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/csmstyle/internal/cli/output"
	"github.com/leapstack-labs/csmstyle/pkg/core"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/lint/explain"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group   string // Filter by group
	Source  string // Filter by source: builtin, plugin
	Verbose bool   // Show full documentation
	Format  string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available style rules",
		Long: `List all available style rules with their documentation.

Rules are organized by group (spacing, placement, returns). User rules loaded
from the rules directory are listed with source "plugin".
Use --verbose to see full documentation including rationale.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  csmstyle rules

  # Show details for a specific rule
  csmstyle rules CSM5

  # List rules in the spacing group
  csmstyle rules --group spacing

  # List user rules only
  csmstyle rules --source plugin

  # Output as JSON
  csmstyle rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().StringVar(&opts.Source, "source", "", "Filter by source: builtin, plugin")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func rulesRenderer(cmd *cobra.Command, cmdCtx *CommandContext, opts *RulesOptions) *output.Renderer {
	if opts.Format != "" {
		return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}
	return cmdCtx.Renderer
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := rulesRenderer(cmd, cmdCtx, opts)

	registry, err := cmdCtx.Registry()
	if err != nil {
		return err
	}

	rules := filterRulesByOptions(registry.Infos(), opts)

	// Sort by source, then group, then ID
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Source != rules[j].Source {
			return rules[i].Source < rules[j].Source
		}
		if rules[i].Group != rules[j].Group {
			return rules[i].Group < rules[j].Group
		}
		return rules[i].ID < rules[j].ID
	})

	return renderRuleList(r, rules, opts.Verbose)
}

// renderRuleList writes rules in the renderer's mode.
func renderRuleList(r *output.Renderer, rules []core.RuleInfo, verbose bool) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listRulesJSON(r, rules)
	case output.ModeMarkdown:
		return listRulesMarkdown(r, rules, verbose)
	default:
		return listRulesText(r, rules, verbose)
	}
}

func filterRulesByOptions(rules []core.RuleInfo, opts *RulesOptions) []core.RuleInfo {
	if opts.Group == "" && opts.Source == "" {
		return rules
	}

	var filtered []core.RuleInfo
	for _, r := range rules {
		if opts.Group != "" && !strings.EqualFold(r.Group, opts.Group) {
			continue
		}
		if opts.Source != "" && !strings.EqualFold(r.Source, opts.Source) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := rulesRenderer(cmd, cmdCtx, opts)

	registry, err := cmdCtx.Registry()
	if err != nil {
		return err
	}

	rule, ok := registry.Get(strings.ToUpper(ruleID))
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := lint.GetRuleInfo(rule)

	catalog, err := cmdCtx.Catalog(registry)
	if err != nil {
		return err
	}
	expl, _ := catalog.Get(info.ID)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return showRuleJSON(r, &info, expl)
	case output.ModeMarkdown:
		return showRuleMarkdown(r, &info, expl)
	default:
		return showRuleText(r, &info, expl)
	}
}

// listRulesText outputs rules as one table per group.
func listRulesText(r *output.Renderer, rules []core.RuleInfo, verbose bool) error {
	styles := r.Styles()
	titleCaser := cases.Title(language.English)

	builtin, plugin := countBySource(rules)

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Style Rules (%d built-in, %d plugin)", builtin, plugin)))
	r.Println("")

	for _, group := range groupRules(rules) {
		r.Println(styles.Bold.Render(titleCaser.String(group.name)))

		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)

		header := table.Row{"Code", "Name", "Severity"}
		if verbose {
			header = append(header, "Description")
		}
		t.AppendHeader(header)

		for _, rule := range group.rules {
			row := table.Row{
				rule.ID,
				rule.Name,
				getSeverityStyle(styles, rule.DefaultSeverity).Render(rule.DefaultSeverity.String()),
			}
			if verbose {
				row = append(row, truncateOneLine(rule.Description, 60))
			}
			t.AppendRow(row)
		}

		t.Render()
		r.Println("")
	}

	r.Println(styles.Muted.Render("Use 'csmstyle rules <rule-id>' for detailed documentation"))
	r.Println("")

	return nil
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []core.RuleInfo, verbose bool) error {
	titleCaser := cases.Title(language.English)

	r.Println(output.FormatHeader(1, "Style Rules"))
	r.Println("")

	for _, group := range groupRules(rules) {
		r.Println(output.FormatHeader(2, titleCaser.String(group.name)))
		r.Println("")

		for _, rule := range group.rules {
			r.Printf("- **%s** - %s (`%s`)\n", rule.ID, rule.Name, rule.DefaultSeverity.String())
			if verbose {
				r.Println("  " + rule.Description)
				if rule.Rationale != "" {
					r.Println("  > " + rule.Rationale)
				}
			}
		}
		r.Println("")
	}

	return nil
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []core.RuleInfo `json:"rules"`
	Count struct {
		Builtin int `json:"builtin"`
		Plugin  int `json:"plugin"`
		Total   int `json:"total"`
	} `json:"count"`
}

// listRulesJSON outputs rules in JSON format.
func listRulesJSON(r *output.Renderer, rules []core.RuleInfo) error {
	jsonOutput := RulesJSONOutput{
		Rules: rules,
	}
	if jsonOutput.Rules == nil {
		jsonOutput.Rules = []core.RuleInfo{}
	}
	jsonOutput.Count.Builtin, jsonOutput.Count.Plugin = countBySource(rules)
	jsonOutput.Count.Total = len(rules)

	return r.JSON(jsonOutput)
}

// RuleJSONOutput is the JSON output structure for a single rule.
type RuleJSONOutput struct {
	core.RuleInfo
	CSMRelation string `json:"csm_relation,omitempty"`
	DocURL      string `json:"documentation_url"`
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule *core.RuleInfo, expl explain.Explanation) error {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Group"), rule.Group)
	r.Printf("  %s: %s\n", styles.Bold.Render("Source"), rule.Source)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), rule.DefaultSeverity.String())
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		r.Println("  " + rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		for _, line := range strings.Split(rule.BadExample, "\n") {
			r.Println(styles.Muted.Render("  " + line))
		}
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		for _, line := range strings.Split(rule.GoodExample, "\n") {
			r.Println(styles.Success.Render("  " + line))
		}
		r.Println("")
	}

	if rule.Fix != "" {
		r.Println(styles.Bold.Render("How to Fix"))
		r.Println("  " + rule.Fix)
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println(styles.Bold.Render("Configuration"))
		r.Printf("  Options: %s\n", strings.Join(rule.ConfigKeys, ", "))
		r.Println("")
	}

	if expl.CSMRelation != "" {
		r.Println(styles.Muted.Render("  " + expl.CSMRelation))
	}

	return nil
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule *core.RuleInfo, expl explain.Explanation) error {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Group:** %s | **Source:** %s | **Severity:** `%s`\n\n", rule.Group, rule.Source, rule.DefaultSeverity.String())
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(output.FormatHeader(2, "Why This Matters"))
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}

	if rule.BadExample != "" {
		r.Println(output.FormatHeader(2, "Bad Example"))
		r.Println("")
		r.Println(output.FormatCodeBlock("python", rule.BadExample))
		r.Println("")
	}

	if rule.GoodExample != "" {
		r.Println(output.FormatHeader(2, "Good Example"))
		r.Println("")
		r.Println(output.FormatCodeBlock("python", rule.GoodExample))
		r.Println("")
	}

	if rule.Fix != "" {
		r.Println(output.FormatHeader(2, "How to Fix"))
		r.Println("")
		r.Println(rule.Fix)
		r.Println("")
	}

	if len(rule.ConfigKeys) > 0 {
		r.Println(output.FormatHeader(2, "Configuration"))
		r.Println("")
		r.Printf("Options: `%s`\n", strings.Join(rule.ConfigKeys, "`, `"))
		r.Println("")
	}

	if expl.CSMRelation != "" {
		r.Println(output.FormatKeyValue("CSM Relation", expl.CSMRelation))
	}

	return nil
}

// showRuleJSON displays detailed rule info in JSON format.
func showRuleJSON(r *output.Renderer, rule *core.RuleInfo, expl explain.Explanation) error {
	return r.JSON(RuleJSONOutput{
		RuleInfo:    *rule,
		CSMRelation: expl.CSMRelation,
		DocURL:      lint.BuildDocURL(rule.ID),
	})
}

// Helper functions

type ruleGroup struct {
	name  string
	rules []core.RuleInfo
}

// groupRules splits sorted rules into consecutive groups.
func groupRules(rules []core.RuleInfo) []ruleGroup {
	var groups []ruleGroup
	for _, rule := range rules {
		if len(groups) == 0 || groups[len(groups)-1].name != rule.Group {
			groups = append(groups, ruleGroup{name: rule.Group})
		}
		last := &groups[len(groups)-1]
		last.rules = append(last.rules, rule)
	}
	return groups
}

func countBySource(rules []core.RuleInfo) (builtin, plugin int) {
	for _, rule := range rules {
		if rule.Source == "plugin" {
			plugin++
		} else {
			builtin++
		}
	}
	return builtin, plugin
}

func getSeverityStyle(styles *output.Styles, sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return styles.Error
	case core.SeverityWarning:
		return styles.Warning
	case core.SeverityInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
