package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/csmstyle/internal/cli/config"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Flag        string
	Description string
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "select", Type: "[]string", Flag: "--select", Description: "Rule code prefixes to run; empty runs every rule"},
		{Name: "severity", Type: "string", Default: config.DefaultSeverity, Flag: "--severity", Description: "Minimum severity reported"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Flag: "--output", Description: "Output format: auto, text, markdown, json"},
		{Name: "verbose", Type: "bool", Default: "false", Flag: "--verbose", Description: "Print the config file in use"},
		{Name: "log_level", Type: "string", Default: config.DefaultLogLevel, Flag: "--log-level", Description: "Log level: debug, info, warn, error"},
		{Name: "explain", Type: "bool", Default: "false", Flag: "--explain", Description: "Append rule explanations to messages"},
		{Name: "explanations", Type: "string", Flag: "--explanations", Description: "YAML or JSON file with extra explanations"},
		{Name: "rules_dir", Type: "string", Default: config.DefaultRulesDir, Flag: "--rules-dir", Description: "Directory of user rule scripts"},
		{Name: "state_path", Type: "string", Default: config.DefaultStateFile, Flag: "--state", Description: "State database of ignored violations"},
		{Name: "docs_base_url", Type: "string", Flag: "--docs-url", Description: "Base URL for rule documentation links"},
		{Name: "lint.disabled", Type: "[]string", Flag: "--disable", Description: "Rule code prefixes to skip"},
		{Name: "lint.severity", Type: "map[string]string", Description: "Severity override per rule code"},
		{Name: "lint.rules", Type: "map[string]map[string]any", Description: "Rule-specific options per rule code"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(outDir, "configuration.md"), renderConfigDoc(), 0600); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

func renderConfigDoc() []byte {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "csmstyle configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("csmstyle reads the first of %s found in the working directory or its parents. "+
		"That directory is the project root; relative paths are resolved against it.",
		joinCode(config.ConfigFileNames)))

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags",
		fmt.Sprintf("Environment variables prefixed with %s", InlineCode(config.EnvPrefix)),
		"The configuration file",
		"Built-in defaults",
	})

	w.Header(2, "Fields")
	var rows [][]string
	for _, f := range getConfigSchema() {
		defVal, flagName := "-", "-"
		if f.Default != "" {
			defVal = InlineCode(f.Default)
		}
		if f.Flag != "" {
			flagName = InlineCode(f.Flag)
		}
		rows = append(rows, []string{InlineCode(f.Name), f.Type, defVal, flagName, f.Description})
	}
	w.Table([]string{"Field", "Type", "Default", "Flag", "Description"}, rows)

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Field names map to upper case variables, with %s separating nested keys: %s sets %s.",
		InlineCode("__"), InlineCode(config.EnvPrefix+"LINT__DISABLED=CSM2"), InlineCode("lint.disabled")))

	w.Header(2, "Example")
	w.CodeBlock("yaml", `severity: warning
select: [CSM]
explain: true
lint:
  disabled: [CSM2]
  severity:
    CSM3: error
  rules:
    CSM4:
      require_after_docstring: true`)

	return w.Bytes()
}

func joinCode(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = InlineCode(item)
	}
	return strings.Join(quoted, ", ")
}
