package commands

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/csmstyle/internal/cli/output"
	"github.com/leapstack-labs/csmstyle/internal/state"
	"github.com/spf13/cobra"
)

// NewIgnoreCommand creates the ignore command and its subcommands.
func NewIgnoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Manage ignored violations",
		Long: `Record violations that should no longer be reported.

An ignored violation matches on file, line and full message; it reappears
as soon as any of them changes. Ignored violations are kept in the state
database (state_path, default .csmstyle/state.db).`,
	}

	cmd.AddCommand(newIgnoreAddCommand())
	cmd.AddCommand(newIgnoreListCommand())
	cmd.AddCommand(newIgnoreRemoveCommand())
	cmd.AddCommand(newIgnoreClearCommand())

	return cmd
}

func newIgnoreAddCommand() *cobra.Command {
	var line int
	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Ignore the current violations of a file",
		Example: `  # Ignore every violation currently reported for app.py
  csmstyle ignore add app.py

  # Ignore only the violations on line 12
  csmstyle ignore add app.py --line 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIgnoreAdd(cmd, args[0], line)
		},
	}
	cmd.Flags().IntVar(&line, "line", 0, "Only ignore violations on this line")
	return cmd
}

func runIgnoreAdd(cmd *cobra.Command, path string, line int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := contextOrBackground(cmd)

	checker, err := NewChecker(cmdCtx)
	if err != nil {
		return err
	}
	diags, err := checker.Check(ctx, path)
	_ = checker.Close()
	if err != nil {
		return err
	}

	store, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	key := cmdCtx.storeKey(path)
	var added []state.IgnoredViolation
	for _, d := range diags {
		if line > 0 && d.Pos.Line != line {
			continue
		}
		v, err := store.AddIgnored(ctx, key, d.Pos.Line, d.Message)
		if err != nil {
			return err
		}
		added = append(added, *v)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(nonNil(added))
	}
	if len(added) == 0 {
		r.Println("No violations to ignore")
		return nil
	}
	r.Success(fmt.Sprintf("Ignored %d %s in %s", len(added), plural(len(added), "violation", "violations"), key))
	return nil
}

func newIgnoreListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [file]",
		Short: "List ignored violations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			store, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var key string
			if len(args) > 0 {
				key = cmdCtx.storeKey(args[0])
			}
			ignored, err := store.ListIgnored(contextOrBackground(cmd), key)
			if err != nil {
				return err
			}
			return renderIgnored(cmdCtx.Renderer, ignored)
		},
	}
}

func renderIgnored(r *output.Renderer, ignored []state.IgnoredViolation) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(nonNil(ignored))
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Ignored Violations"))
		r.Println("")
		if len(ignored) == 0 {
			r.Println("None.")
			return nil
		}
		r.Println("| ID | File | Line | Message |")
		r.Println("| --- | --- | --- | --- |")
		for _, v := range ignored {
			r.Printf("| `%s` | %s | %d | %s |\n", v.ID, v.Path, v.Line, v.Message)
		}
		return nil
	default:
		if len(ignored) == 0 {
			r.Println(r.Styles().Muted.Render("No ignored violations"))
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ID", "File", "Line", "Message", "Added"})
		for _, v := range ignored {
			t.AppendRow(table.Row{v.ID, v.Path, strconv.Itoa(v.Line), v.Message, v.CreatedAt.Local().Format("2006-01-02 15:04")})
		}
		t.Render()
		return nil
	}
}

func newIgnoreRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Stop ignoring a violation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			store, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.RemoveIgnored(contextOrBackground(cmd), args[0]); err != nil {
				return err
			}
			cmdCtx.Renderer.Success("Removed " + args[0])
			return nil
		},
	}
}

func newIgnoreClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [file]",
		Short: "Remove ignored violations for a file, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			store, err := cmdCtx.OpenStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var key string
			if len(args) > 0 {
				key = cmdCtx.storeKey(args[0])
			}
			n, err := store.ClearIgnored(contextOrBackground(cmd), key)
			if err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Cleared %d ignored %s", n, plural(int(n), "violation", "violations")))
			return nil
		},
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
