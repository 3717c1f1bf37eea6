package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/csmstyle/internal/cli"
	"github.com/leapstack-labs/csmstyle/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCLIDocs writes an index page plus one page per visible subcommand.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rootCmd := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": renderCLIIndex(rootCmd)}
	for _, cmd := range documentedCommands(rootCmd) {
		pages[cmd.Name()+".md"] = renderCommandPage(cmd)
	}

	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// documentedCommands returns the subcommands that get a page.
func documentedCommands(parent *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, cmd := range parent.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func renderCLIIndex(rootCmd *cobra.Command) []byte {
	w := NewMarkdownWriter()

	w.Frontmatter("CLI Reference", "Command-line interface reference for csmstyle")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(rootCmd.Long)

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/leapstack-labs/csmstyle/cmd/csmstyle@latest")

	w.Header(2, "Basic Usage")
	w.CodeBlock("bash", "csmstyle [options] <filename.py>\ncsmstyle <command> [options]")
	if rootCmd.Example != "" {
		w.CodeBlock("bash", dedent(rootCmd.Example))
	}

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documentedCommands(rootCmd) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	writeFlagsTable(w, rootCmd.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every configuration field can be set with a %s variable. "+
		"Command-line flags take precedence over environment variables.", InlineCode(config.EnvPrefix+"*")))
	w.Table([]string{"Variable", "Description"}, [][]string{
		{InlineCode(config.EnvPrefix + "SEVERITY"), "Minimum severity reported"},
		{InlineCode(config.EnvPrefix + "SELECT"), "Comma separated rule code prefixes to run"},
		{InlineCode(config.EnvPrefix + "RULES_DIR"), "Directory of user rule scripts"},
		{InlineCode(config.EnvPrefix + "STATE_PATH"), "State database path"},
		{InlineCode(config.EnvPrefix + "LINT__DISABLED"), "Comma separated rule code prefixes to skip"},
	})

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode(fmt.Sprint(cli.ExitOK)), "No violations"},
		{InlineCode(fmt.Sprint(cli.ExitError)), "Violations found, or an error (check stderr for details)"},
		{InlineCode(fmt.Sprint(cli.ExitUsage)), "No file given"},
	})

	return w.Bytes()
}

func renderCommandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()

	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", usageLine(cmd))

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, alias := range cmd.Aliases {
			aliases[i] = InlineCode(alias)
		}
		w.Header(2, "Aliases")
		w.BulletList(aliases)
	}

	if subs := documentedCommands(cmd); len(subs) > 0 {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range subs {
			rows = append(rows, []string{InlineCode(sub.Use), cleanDescription(sub.Short)})
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	return w.Bytes()
}

// usageLine is the invocation shown on a command page.
func usageLine(cmd *cobra.Command) string {
	if cmd.HasSubCommands() {
		return fmt.Sprintf("csmstyle %s <subcommand> [options]", cmd.Name())
	}
	line := cmd.UseLine()
	if !strings.HasPrefix(line, "csmstyle") {
		line = "csmstyle " + line
	}
	return line
}

// writeFlagsTable writes one row per visible flag.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		rows = append(rows, []string{
			InlineCode("--" + f.Name),
			short,
			flagDefault(f),
			cleanDescription(f.Usage),
		})
	})
	w.Table([]string{"Option", "Short", "Default", "Description"}, rows)
}

// flagDefault formats a flag default; empty values and empty lists print nothing.
func flagDefault(f *pflag.Flag) string {
	switch f.DefValue {
	case "", "[]":
		return ""
	case "true", "false":
		return f.DefValue
	}
	return InlineCode(f.DefValue)
}

// dedent strips the indentation shared by all non-blank lines.
func dedent(text string) string {
	lines := strings.Split(text, "\n")

	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if common == -1 || indent < common {
			common = indent
		}
	}

	for i, line := range lines {
		if len(line) >= common && common > 0 {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
