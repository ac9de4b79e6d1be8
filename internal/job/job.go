// Package job compiles batches of named permutations into C headers.
//
// A job file lists permutations with the options used to emit them. Files
// are read as TOML when their extension is .toml and as YAML or JSON
// otherwise:
//
//	[[jobs]]
//	name = "transpose_4x3"
//	perm = [0, 3, 6, 9, 1, 4, 7, 10, 2, 5, 8, 11]
//	direction = "both"
//	rows = 2
//
// Every job produces <name>.h holding <name>_forward and/or <name>_reverse.
package job

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"sigs.k8s.io/yaml"

	"github.com/ma595/ffcx"
	"github.com/ma595/ffcx/internal/codegen"
	"github.com/ma595/ffcx/internal/permute"
)

// Job is one permutation to compile.
type Job struct {
	Name string `toml:"name" json:"name"`
	Perm []int  `toml:"perm" json:"perm"`
	// Direction is "forward", "reverse" or "both". Empty means "both".
	Direction  string `toml:"direction" json:"direction,omitempty"`
	ScalarType string `toml:"scalar_type" json:"scalar_type,omitempty"`
	Array      string `toml:"array" json:"array,omitempty"`
	Rows       int    `toml:"rows" json:"rows,omitempty"`
	RowStride  int    `toml:"row_stride" json:"row_stride,omitempty"`
	Cursor     string `toml:"cursor" json:"cursor,omitempty"`
	// Prefix names the generated symbols. Empty means Name.
	Prefix string `toml:"prefix" json:"prefix,omitempty"`
}

// File is the on-disk layout of a job file.
type File struct {
	Jobs []Job `toml:"jobs" json:"jobs"`
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Directions returns the directions j emits, forward first.
func (j Job) Directions() ([]permute.Direction, error) {
	switch strings.ToLower(j.Direction) {
	case "", "both":
		return []permute.Direction{permute.Forward, permute.Reverse}, nil
	default:
		dir, err := permute.ParseDirection(strings.ToLower(j.Direction))
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", j.Name, err)
		}
		return []permute.Direction{dir}, nil
	}
}

// Options converts j into emitter options, filling unset fields from
// defaults.
func (j Job) Options(defaults codegen.Options) (codegen.Options, error) {
	opts := defaults
	if j.ScalarType != "" {
		opts.ScalarType = j.ScalarType
	}
	if j.Array != "" {
		opts.Array = j.Array
	}
	if j.Rows != 0 {
		opts.Rows = j.Rows
	}
	if j.RowStride != 0 {
		opts.RowStride = j.RowStride
	}
	if j.Cursor != "" {
		mode, err := codegen.ParseCursorMode(j.Cursor)
		if err != nil {
			return opts, fmt.Errorf("job %s: %w", j.Name, err)
		}
		opts.Cursor = mode
	}
	// Symbols are prefixed per job so several headers can share one
	// translation unit.
	opts.Prefix = j.Name
	if j.Prefix != "" {
		if !identifier.MatchString(j.Prefix) {
			return opts, fmt.Errorf("job %s: prefix %q is not a C identifier: %w", j.Name, j.Prefix, ffcx.ErrInvalidInput)
		}
		opts.Prefix = j.Prefix
	}
	return opts, nil
}

// Validate checks names and permutations of every job.
func Validate(jobs []Job) error {
	seen := make(map[string]bool, len(jobs))
	for i, j := range jobs {
		if !identifier.MatchString(j.Name) {
			return fmt.Errorf("job %d: name %q is not a C identifier: %w", i, j.Name, ffcx.ErrInvalidInput)
		}
		if seen[j.Name] {
			return fmt.Errorf("job %d: duplicate name %q: %w", i, j.Name, ffcx.ErrInvalidInput)
		}
		seen[j.Name] = true
		if err := permute.Validate(j.Perm); err != nil {
			return fmt.Errorf("job %s: %w", j.Name, err)
		}
		if _, err := j.Directions(); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a job file, choosing the format from its extension.
func LoadFile(path string) ([]Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	jobs, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}

// Load decodes jobs from r in the given format ("toml", "yaml" or "json")
// and validates them. Unknown keys are rejected.
func Load(r io.Reader, format string) ([]Job, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file File
	switch strings.ToLower(format) {
	case "toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&file)
		if err != nil {
			return nil, fmt.Errorf("parsing jobs: %v: %w", err, ffcx.ErrInvalidInput)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown job key %q: %w", undecoded[0].String(), ffcx.ErrInvalidInput)
		}
	case "yaml", "yml", "json":
		if err := yaml.UnmarshalStrict(data, &file); err != nil {
			return nil, fmt.Errorf("parsing jobs: %v: %w", err, ffcx.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("job format %q: %w", format, ffcx.ErrUnsupportedOption)
	}

	if err := Validate(file.Jobs); err != nil {
		return nil, err
	}
	return file.Jobs, nil
}
