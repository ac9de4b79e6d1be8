package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ma595/ffcx"
	"github.com/ma595/ffcx/internal/codegen"
)

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })
	require.NoError(t, os.Chdir(dir))
}

// repoRoot creates an empty directory marked as a repository root.
func repoRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	return root
}

func TestFindConfigFile_ExplicitPath(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("scalar_type: float"), 0o644))

	path, err := findConfigFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, tmpFile, path)
}

func TestFindConfigFile_ExplicitPathNotFound(t *testing.T) {
	_, err := findConfigFile("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestFindConfigFile_AutoDiscovery(t *testing.T) {
	root := repoRoot(t)
	configPath := filepath.Join(root, "ffcx.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("scalar_type: float"), 0o644))

	nested := filepath.Join(root, "deep", "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	path, err := findConfigFile("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(configPath)
	actualPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, expectedPath, actualPath)
}

func TestFindConfigFile_PrefersYamlOverYml(t *testing.T) {
	root := repoRoot(t)
	yamlPath := filepath.Join(root, "ffcx.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("scalar_type: float"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ffcx.yml"), []byte("scalar_type: double"), 0o644))
	chdir(t, root)

	path, err := findConfigFile("")
	require.NoError(t, err)

	expectedPath, _ := filepath.EvalSymlinks(yamlPath)
	actualPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, expectedPath, actualPath)
}

func TestFindConfigFile_StopsAtGitRoot(t *testing.T) {
	// Config above .git should not be found
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ffcx.yaml"), []byte("scalar_type: float"), 0o644))

	project := filepath.Join(root, "project")
	require.NoError(t, os.MkdirAll(filepath.Join(project, ".git"), 0o755))
	chdir(t, project)

	path, err := findConfigFile("")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, repoRoot(t))

	cfg, configPath, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, configPath)

	assert.Equal(t, "double", cfg.ScalarType)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "c", cfg.Language)
	assert.True(t, cfg.IgnoreTerminalModifiers)
	assert.Equal(t, "A", cfg.Permute.Array)
	assert.Equal(t, 1, cfg.Permute.Rows)
	assert.Equal(t, "ascending", cfg.Permute.Cursor)
	assert.Zero(t, cfg.Batch.Concurrency)
}

func TestLoadConfig_FromFile(t *testing.T) {
	root := repoRoot(t)
	configPath := filepath.Join(root, "ffcx.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
scalar_type: float
ignore_terminal_modifiers: false
permute:
  rows: 4
  cursor: descending
batch:
  concurrency: 2
`), 0o644))
	chdir(t, root)

	cfg, foundPath, err := LoadConfig("")
	require.NoError(t, err)

	expectedPath, _ := filepath.EvalSymlinks(configPath)
	actualPath, _ := filepath.EvalSymlinks(foundPath)
	assert.Equal(t, expectedPath, actualPath)

	assert.Equal(t, "float", cfg.ScalarType)
	assert.False(t, cfg.IgnoreTerminalModifiers)
	assert.Equal(t, 4, cfg.Permute.Rows)
	assert.Equal(t, 2, cfg.Batch.Concurrency)

	// Defaults still apply for unset values
	assert.Equal(t, "A", cfg.Permute.Array)
	assert.Equal(t, "c", cfg.Language)

	assert.Equal(t, codegen.Options{
		ScalarType: "float",
		Array:      "A",
		Rows:       4,
		Cursor:     codegen.CursorDescending,
	}, cfg.EmitOptions())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	root := repoRoot(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "ffcx.yaml"), []byte("scalar_type: float"), 0o644))
	chdir(t, root)

	t.Setenv("FFCX_SCALAR_TYPE", "double _Complex")
	t.Setenv("FFCX_PERMUTE_ROWS", "3")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "double _Complex", cfg.ScalarType)
	assert.Equal(t, 3, cfg.Permute.Rows)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"language", "language: fortran", ffcx.ErrUnsupportedOption},
		{"cursor", "permute:\n  cursor: sideways", ffcx.ErrUnsupportedOption},
		{"rows", "permute:\n  rows: -2", ffcx.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := repoRoot(t)
			require.NoError(t, os.WriteFile(filepath.Join(root, "ffcx.yaml"), []byte(tt.content), 0o644))
			chdir(t, root)

			_, _, err := LoadConfig("")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, ExitInput, ExitCode(err))
		})
	}
}

func TestResolvedOutputDir(t *testing.T) {
	cfg := &Config{OutputDir: "generated"}
	assert.Equal(t, "flag", cfg.ResolvedOutputDir("flag"))
	assert.Equal(t, "generated", cfg.ResolvedOutputDir(""))
}
