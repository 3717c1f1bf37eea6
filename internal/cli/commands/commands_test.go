package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csmstyle/internal/cli/config"
)

const compactModule = "import os\ndef f():\n    return 1\n"

// useProject switches to an empty project directory and loads its default
// configuration. The returned config can be adjusted before running commands.
func useProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(config.ResetConfig)

	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	return dir, cfg
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		configure func(cfg *config.Config)
		wantLines []string
	}{
		{
			name:    "reports violations in file order",
			content: compactModule,
			wantLines: []string{
				"2:1: CSM1 top-level function/class should be preceded by two blank lines",
				"3:5: CSM3 top-level function/class at end of file should be followed by two blank lines",
			},
		},
		{
			name:    "select limits rules",
			content: compactModule,
			configure: func(cfg *config.Config) {
				cfg.Select = []string{"CSM3", "E501"}
			},
			wantLines: []string{
				"3:5: CSM3 top-level function/class at end of file should be followed by two blank lines",
			},
		},
		{
			name:    "disabled rule is skipped",
			content: compactModule,
			configure: func(cfg *config.Config) {
				cfg.Lint = &config.LintConfig{Disabled: []string{"CSM3"}}
			},
			wantLines: []string{
				"2:1: CSM1 top-level function/class should be preceded by two blank lines",
			},
		},
		{
			name:    "severity threshold drops warnings",
			content: compactModule,
			configure: func(cfg *config.Config) {
				cfg.Severity = "error"
			},
		},
		{
			name:    "clean file",
			content: "import os\n\n\ndef f():\n    return 1\n\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, cfg := useProject(t)
			if tt.configure != nil {
				tt.configure(cfg)
			}
			path := writeFile(t, dir, "mod.py", tt.content)

			out, err := execute(t, NewCheckCommand(), path)

			if len(tt.wantLines) == 0 {
				require.NoError(t, err)
				assert.Empty(t, out)
				return
			}
			require.ErrorIs(t, err, ErrViolationsFound)

			want := make([]string, len(tt.wantLines))
			for i, line := range tt.wantLines {
				want[i] = path + ":" + line
			}
			assert.Equal(t, want, strings.Split(strings.TrimRight(out, "\n"), "\n"))
		})
	}
}

func TestCheckCommand_JSON(t *testing.T) {
	dir, cfg := useProject(t)
	cfg.OutputFormat = "json"
	path := writeFile(t, dir, "mod.py", compactModule)

	out, err := execute(t, NewCheckCommand(), path)
	require.ErrorIs(t, err, ErrViolationsFound)

	var diags []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &diags))
	require.Len(t, diags, 2)
	assert.Equal(t, "CSM1", diags[0]["rule_id"])
	assert.Equal(t, "warning", diags[0]["severity"])
	assert.Equal(t, map[string]any{"line": 2.0, "column": 1.0}, diags[0]["position"])
	assert.Contains(t, diags[0]["documentation_url"], "/csm1")
	assert.Equal(t, "CSM3", diags[1]["rule_id"])
}

func TestCheckCommand_JSONClean(t *testing.T) {
	dir, cfg := useProject(t)
	cfg.OutputFormat = "json"
	path := writeFile(t, dir, "mod.py", "x = 1\n")

	out, err := execute(t, NewCheckCommand(), path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestCheckCommand_Explain(t *testing.T) {
	dir, cfg := useProject(t)
	cfg.Explain = true
	cfg.Select = []string{"CSM1"}
	cfg.Explanations = writeFile(t, dir, "explanations.yaml", `
CSM1:
  description: Separate top-level definitions.
  rationale: Custom rationale.
`)
	path := writeFile(t, dir, "mod.py", compactModule)

	out, err := execute(t, NewCheckCommand(), path)
	require.ErrorIs(t, err, ErrViolationsFound)

	assert.Contains(t, out, path+":2:1: CSM1 top-level function/class")
	assert.Contains(t, out, "\n\n---\n\nSeparate top-level definitions.")
	assert.Contains(t, out, "**Rationale:** Custom rationale.")
}

func TestCheckCommand_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		dir, _ := useProject(t)
		_, err := execute(t, NewCheckCommand(), filepath.Join(dir, "nope.py"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read source file")
	})

	t.Run("missing argument", func(t *testing.T) {
		useProject(t)
		_, err := execute(t, NewCheckCommand())
		require.Error(t, err)
	})

	t.Run("broken user rule", func(t *testing.T) {
		dir, _ := useProject(t)
		writeFile(t, dir, ".csmstyle/rules/bad.star", "code = 1\n")
		path := writeFile(t, dir, "mod.py", compactModule)

		_, err := execute(t, NewCheckCommand(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load user rules")
	})

	t.Run("user rule clashes with builtin", func(t *testing.T) {
		dir, _ := useProject(t)
		writeFile(t, dir, ".csmstyle/rules/dup.star", "code = \"CSM1\"\ndef check(line):\n    return None\n")
		path := writeFile(t, dir, "mod.py", compactModule)

		_, err := execute(t, NewCheckCommand(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate rule")
	})
}

func TestCheckCommand_UserRules(t *testing.T) {
	dir, _ := useProject(t)
	writeFile(t, dir, ".csmstyle/rules/print.star", `
code = "PRJ1"
description = "avoid print calls"

def check(line):
    if line.text.startswith("print("):
        return ["avoid print"]
`)
	path := writeFile(t, dir, "mod.py", "x = 1\nprint(x)\n")

	out, err := execute(t, NewCheckCommand(), path)
	require.ErrorIs(t, err, ErrViolationsFound)
	assert.Equal(t, path+":2:1: PRJ1 avoid print\n", out)
}

func TestIgnoreWorkflow(t *testing.T) {
	dir, cfg := useProject(t)
	path := writeFile(t, dir, "mod.py", compactModule)

	// a plain check never creates the state database
	_, err := execute(t, NewCheckCommand(), path)
	require.ErrorIs(t, err, ErrViolationsFound)
	assert.NoFileExists(t, cfg.StatePath)

	out, err := execute(t, NewIgnoreCommand(), "add", path, "--line", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Ignored 1 violation in mod.py")
	assert.FileExists(t, cfg.StatePath)

	out, err = execute(t, NewCheckCommand(), path)
	require.ErrorIs(t, err, ErrViolationsFound)
	assert.NotContains(t, out, "CSM1")
	assert.Contains(t, out, "CSM3")

	_, err = execute(t, NewIgnoreCommand(), "add", path)
	require.NoError(t, err)

	out, err = execute(t, NewCheckCommand(), path)
	require.NoError(t, err)
	assert.Empty(t, out)

	cfg.OutputFormat = "json"
	out, err = execute(t, NewIgnoreCommand(), "list")
	require.NoError(t, err)
	var ignored []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &ignored))
	require.Len(t, ignored, 2)
	assert.Equal(t, "mod.py", ignored[0]["path"])
	assert.EqualValues(t, 2, ignored[0]["line"])
	assert.EqualValues(t, 3, ignored[1]["line"])

	id, ok := ignored[0]["id"].(string)
	require.True(t, ok)
	cfg.OutputFormat = "auto"
	out, err = execute(t, NewIgnoreCommand(), "remove", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed "+id)

	_, err = execute(t, NewIgnoreCommand(), "remove", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	out, err = execute(t, NewIgnoreCommand(), "list", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Ignored Violations")
	assert.Contains(t, out, "| mod.py | 3 | CSM3")

	out, err = execute(t, NewIgnoreCommand(), "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 1 ignored violation")

	out, err = execute(t, NewCheckCommand(), path)
	require.ErrorIs(t, err, ErrViolationsFound)
	assert.Contains(t, out, "CSM1")
}

func TestIgnoreAdd_NothingToIgnore(t *testing.T) {
	dir, _ := useProject(t)
	path := writeFile(t, dir, "mod.py", "x = 1\n")

	out, err := execute(t, NewIgnoreCommand(), "add", path)
	require.NoError(t, err)
	assert.Equal(t, "No violations to ignore\n", out)
}

func TestNewWatchCommand(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch <file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("debounce"))

	_, err := execute(t, cmd)
	require.Error(t, err)
}

func TestStoreKey(t *testing.T) {
	dir, _ := useProject(t)
	cmdCtx := NewCommandContext(&cobra.Command{})

	assert.Equal(t, "pkg/mod.py", cmdCtx.storeKey(filepath.Join(dir, "pkg", "mod.py")))
	assert.Equal(t, "mod.py", cmdCtx.storeKey("mod.py"))

	outside := filepath.Join(filepath.Dir(dir), "elsewhere.py")
	assert.Equal(t, filepath.ToSlash(outside), cmdCtx.storeKey(outside))
}
