package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/csmstyle/pkg/core"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/lint/rules"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"spacing":   "Blank lines around top-level definitions and methods.",
	"placement": "Order of module-level statements.",
	"returns":   "Consistency of return statements within a function.",
}

// groupOrder lists rule groups in page order.
var groupOrder = []string{"spacing", "placement", "returns"}

// generateRuleDocs generates the rule index and reference pages.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	infos := make([]core.RuleInfo, 0, len(rules.All()))
	for _, r := range rules.All() {
		infos = append(infos, lint.GetRuleInfo(r))
	}

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), renderRuleIndex(infos), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	if err := os.WriteFile(filepath.Join(outDir, "reference.md"), renderRuleReference(infos), 0600); err != nil {
		return err
	}
	log.Printf("  Generated reference.md")

	return nil
}

func renderRuleIndex(infos []core.RuleInfo) []byte {
	w := NewMarkdownWriter()

	w.Frontmatter("Rules", "Style rules checked by csmstyle")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("csmstyle checks **%d rules** over the logical lines of one module.", len(infos)))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "Critical issue that should be fixed"},
			{InlineCode("warning"), "Potential issue that should be reviewed"},
			{InlineCode("info"), "Informational feedback"},
			{InlineCode("hint"), "Suggestion for improvement"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `csmstyle.yaml`:")
	w.CodeBlock("yaml", `select: [CSM]          # code prefixes to run
lint:
  disabled: [CSM2]     # code prefixes to skip
  severity:
    CSM1: error        # override severity
  rules:
    CSM4:
      require_after_docstring: true`)

	w.Header(2, "All Rules")
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/rules/reference#%s)", info.ID, strings.ToLower(info.ID)),
			InlineCode(info.Name),
			InlineCode(info.DefaultSeverity.String()),
			cleanDescription(info.Description),
		})
	}
	w.Table([]string{"Code", "Name", "Severity", "Description"}, rows)

	return w.Bytes()
}

func renderRuleReference(infos []core.RuleInfo) []byte {
	w := NewMarkdownWriter()

	w.Frontmatter("Rule Reference", "Every csmstyle rule with examples")
	w.GeneratedMarker()

	w.Header(1, "Rule Reference")

	grouped := groupRulesByGroup(infos)
	titleCaser := cases.Title(language.English)
	for _, group := range groupOrder {
		groupRules := grouped[group]
		if len(groupRules) == 0 {
			continue
		}

		w.Line(fmt.Sprintf("## %s {#%s}", titleCaser.String(group), group))
		w.Newline()
		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}

		for _, info := range groupRules {
			writeRuleDoc(w, info)
		}
	}

	return w.Bytes()
}

// groupRulesByGroup organizes rules by their Group field, sorted by ID.
func groupRulesByGroup(infos []core.RuleInfo) map[string][]core.RuleInfo {
	grouped := make(map[string][]core.RuleInfo)
	for _, info := range infos {
		grouped[info.Group] = append(grouped[info.Group], info)
	}
	for group := range grouped {
		sort.Slice(grouped[group], func(i, j int) bool {
			return grouped[group][i].ID < grouped[group][j].ID
		})
	}
	return grouped
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, info core.RuleInfo) {
	// ### CSM1 - spacing.top_level_before {#csm1}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", info.ID, info.Name, strings.ToLower(info.ID)))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s", InlineCode(info.DefaultSeverity.String())))
	w.Newline()

	w.Paragraph(info.Description)

	if info.Rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(info.Rationale)
	}
	if info.BadExample != "" {
		w.Header(4, "Bad")
		w.CodeBlock("python", info.BadExample)
	}
	if info.GoodExample != "" {
		w.Header(4, "Good")
		w.CodeBlock("python", info.GoodExample)
	}
	if info.Fix != "" {
		w.Header(4, "How to Fix")
		w.Paragraph(info.Fix)
	}
	if len(info.ConfigKeys) > 0 {
		w.Header(4, "Configuration")
		w.Paragraph(fmt.Sprintf("This rule accepts the following configuration options: %s",
			InlineCode(strings.Join(info.ConfigKeys, ", "))))
	}

	w.Line("---")
	w.Newline()
}
