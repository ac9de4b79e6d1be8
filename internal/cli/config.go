package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ma595/ffcx"
	"github.com/ma595/ffcx/internal/codegen"
)

const (
	maxWalkDepth = 25
)

// Config represents the ffcx configuration from ffcx.yaml.
type Config struct {
	// Top-level convenience fields
	ScalarType string `mapstructure:"scalar_type" json:"scalar_type"`
	OutputDir  string `mapstructure:"output_dir" json:"output_dir"`
	Language   string `mapstructure:"language" json:"language"`

	// Analysis configuration
	IgnoreTerminalModifiers bool `mapstructure:"ignore_terminal_modifiers" json:"ignore_terminal_modifiers"`

	// Per-command configuration
	Permute PermuteConfig `mapstructure:"permute" json:"permute"`
	Batch   BatchConfig   `mapstructure:"batch" json:"batch"`
}

// PermuteConfig holds in-place permutation emission settings.
type PermuteConfig struct {
	Array     string `mapstructure:"array" json:"array"`
	Rows      int    `mapstructure:"rows" json:"rows"`
	RowStride int    `mapstructure:"row_stride" json:"row_stride"`
	Cursor    string `mapstructure:"cursor" json:"cursor"`
}

// BatchConfig holds batch compilation settings.
type BatchConfig struct {
	Concurrency int  `mapstructure:"concurrency" json:"concurrency"`
	Verify      bool `mapstructure:"verify" json:"verify"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	// 1. Set defaults first (lowest precedence)
	setDefaults(v)

	// 2. Set up environment variable binding
	v.SetEnvPrefix("FFCX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 3. Find and load config file
	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	// 4. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, configPath, err
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	// Top-level defaults
	v.SetDefault("scalar_type", "double")
	v.SetDefault("output_dir", ".")
	v.SetDefault("language", "c")
	v.SetDefault("ignore_terminal_modifiers", true)

	// Permute defaults
	v.SetDefault("permute.array", "A")
	v.SetDefault("permute.rows", 1)
	v.SetDefault("permute.row_stride", 0)
	v.SetDefault("permute.cursor", "ascending")

	// Batch defaults
	v.SetDefault("batch.concurrency", 0)
	v.SetDefault("batch.verify", false)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for ffcx.yaml or ffcx.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	// Auto-discovery: walk up to .git or maxWalkDepth
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		// Try ffcx.yaml then ffcx.yml
		for _, name := range []string{"ffcx.yaml", "ffcx.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Check for repo boundary (.git file or directory)
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break // Stop at repo root
		}

		// Move up
		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// Validate rejects settings no command can honor.
func (c *Config) Validate() error {
	if !strings.EqualFold(c.Language, "c") {
		return fmt.Errorf("language %q: %w", c.Language, ffcx.ErrUnsupportedOption)
	}
	if _, err := codegen.ParseCursorMode(c.Permute.Cursor); err != nil {
		return fmt.Errorf("permute.cursor: %w", err)
	}
	if c.Permute.Rows < 0 {
		return fmt.Errorf("permute.rows %d: %w", c.Permute.Rows, ffcx.ErrInvalidInput)
	}
	return nil
}

// EmitOptions returns the emitter options the config describes.
func (c *Config) EmitOptions() codegen.Options {
	cursor, _ := codegen.ParseCursorMode(c.Permute.Cursor)
	return codegen.Options{
		ScalarType: c.ScalarType,
		Array:      c.Permute.Array,
		Rows:       c.Permute.Rows,
		RowStride:  c.Permute.RowStride,
		Cursor:     cursor,
	}
}

// ResolvedOutputDir returns the effective output directory for a command,
// with the command flag taking precedence over output_dir.
func (c *Config) ResolvedOutputDir(flagDir string) string {
	if flagDir != "" {
		return flagDir
	}
	return c.OutputDir
}
