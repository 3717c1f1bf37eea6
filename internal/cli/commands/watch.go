package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leapstack-labs/csmstyle/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-check a file whenever it changes",
		Long: `Check a file, then keep watching it and check it again after every save.

Runs until interrupted.`,
		Example: `  csmstyle watch app.py`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, args[0], debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Delay before re-checking after a change")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, debounce time.Duration) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	styles := r.Styles()

	checker, err := NewChecker(cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = checker.Close() }()

	w, err := watch.New(watch.Config{
		Path:     path,
		Debounce: debounce,
		Logger:   cmdCtx.Logger,
		Check: func(ctx context.Context, path string) error {
			diags, err := checker.Check(ctx, path)
			if err != nil {
				return err
			}
			r.Println(styles.Muted.Render("checked " + path + " at " + time.Now().Format(time.TimeOnly)))
			return checker.Render(r, diags)
		},
	})
	if err != nil {
		return err
	}

	r.Println(styles.Info.Render("Watching " + w.Path() + " (Ctrl+C to stop)"))
	return w.Run(ctx)
}
