package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/csmstyle/internal/cli/config"
	"github.com/leapstack-labs/csmstyle/internal/cli/output"
	"github.com/leapstack-labs/csmstyle/internal/plugin"
	"github.com/leapstack-labs/csmstyle/internal/state"
	"github.com/leapstack-labs/csmstyle/pkg/lint"
	"github.com/leapstack-labs/csmstyle/pkg/lint/explain"
	"github.com/leapstack-labs/csmstyle/pkg/lint/rules"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when the root
// command did not load one.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// Registry builds the built-in rules plus the user rules found in the
// configured rules directory.
func (c *CommandContext) Registry() (*lint.Registry, error) {
	extra, err := plugin.NewLoader(c.Cfg.RulesDir).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load user rules: %w", err)
	}
	if len(extra) > 0 {
		c.Logger.Debug("loaded user rules", "dir", c.Cfg.RulesDir, "count", len(extra))
	}

	registry, err := rules.NewRegistry(extra...)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule registry: %w", err)
	}
	return registry, nil
}

// Catalog builds the explanation catalog for registry, merged with the
// configured explanations file.
func (c *CommandContext) Catalog(registry *lint.Registry) (*explain.Catalog, error) {
	catalog := explain.FromRegistry(registry)
	if c.Cfg.Explanations != "" {
		if err := catalog.LoadFile(c.Cfg.Explanations); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// OpenStore opens the ignored-violation store, creating it when needed.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	store, err := state.OpenAndMigrate(c.Cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return store, nil
}

// openExistingStore opens the store only if its file already exists, so a
// plain check never creates state on disk.
func (c *CommandContext) openExistingStore() (*state.SQLiteStore, error) {
	if c.Cfg.StatePath == "" || c.Cfg.StatePath == ":memory:" {
		return nil, nil
	}
	if _, err := os.Stat(c.Cfg.StatePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access state store: %w", err)
	}
	return c.OpenStore()
}

// storeKey returns the path under which ignored violations of path are
// recorded: relative to the project root when possible, slash separated.
func (c *CommandContext) storeKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	if c.Cfg.ProjectRoot != "" {
		if rel, err := filepath.Rel(c.Cfg.ProjectRoot, abs); err == nil && filepath.IsLocal(rel) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(abs)
}

// contextOrBackground guards commands executed without a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
