// Package doctor provides health checks for an ffcx project.
//
// The doctor command validates that a project is ready to generate kernels
// by checking the configuration, the output directory, job files and graph
// files.
//
// Example usage:
//
//	d := doctor.New(cfg, configPath)
//	d.JobsPath = "jobs.toml"
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ma595/ffcx/internal/analysis"
	"github.com/ma595/ffcx/internal/cli"
	"github.com/ma595/ffcx/internal/codegen"
	"github.com/ma595/ffcx/internal/expr"
	"github.com/ma595/ffcx/internal/job"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	case StatusFail:
		return "✗"
	default:
		return "?"
	}
}

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Configuration", "Jobs").
	Category string

	// Name is a short identifier for the check.
	Name string

	// Status is the check outcome.
	Status Status

	// Message is a human-readable description of the result.
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	// Group checks by category
	categories := make(map[string][]CheckResult)
	var categoryOrder []string
	for _, check := range r.Checks {
		if _, exists := categories[check.Category]; !exists {
			categoryOrder = append(categoryOrder, check.Category)
		}
		categories[check.Category] = append(categories[check.Category], check)
	}

	for _, cat := range categoryOrder {
		_, _ = fmt.Fprintf(w, "\n%s\n", cat)
		for _, check := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
			if verbose && check.Details != "" {
				for _, line := range strings.Split(check.Details, "\n") {
					_, _ = fmt.Fprintf(w, "      %s\n", line)
				}
			}
			if check.Status != StatusPass && check.FixHint != "" {
				_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor performs health checks on an ffcx project.
type Doctor struct {
	cfg        *cli.Config
	configPath string

	// OutputDir overrides the configured output directory.
	OutputDir string
	// JobsPath is an optional job file to load and verify.
	JobsPath string
	// GraphPath is an optional expression graph file to analyze.
	GraphPath string
}

// New creates a new Doctor for the loaded configuration. configPath is the
// file cfg was read from, empty when defaults are in use.
func New(cfg *cli.Config, configPath string) *Doctor {
	return &Doctor{cfg: cfg, configPath: configPath}
}

// Run executes all health checks and returns a report. Job verification
// stops early when ctx is cancelled.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	if d.cfg == nil {
		return nil, errors.New("doctor: no configuration")
	}
	report := &Report{}

	d.checkConfig(report)
	d.checkOutputDir(report)
	if d.JobsPath != "" {
		if err := d.checkJobs(ctx, report); err != nil {
			return nil, fmt.Errorf("checking jobs: %w", err)
		}
	}
	if d.GraphPath != "" {
		d.checkGraph(report)
	}

	return report, nil
}

func (d *Doctor) checkConfig(report *Report) {
	if d.configPath == "" {
		report.AddCheck(CheckResult{
			Category: "Configuration",
			Name:     "file",
			Status:   StatusWarn,
			Message:  "No ffcx.yaml found, using defaults",
			FixHint:  "Create ffcx.yaml at the repository root to pin settings",
		})
	} else {
		report.AddCheck(CheckResult{
			Category: "Configuration",
			Name:     "file",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Config file loaded from %s", d.configPath),
		})
	}

	opts := d.cfg.EmitOptions()
	report.AddCheck(CheckResult{
		Category: "Configuration",
		Name:     "emit",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Emitting %s code for %s buffers", d.cfg.Language, opts.ScalarType),
		Details: fmt.Sprintf("array=%s rows=%d row_stride=%d cursor=%s",
			opts.Array, opts.Rows, opts.RowStride, opts.Cursor),
	})
}

func (d *Doctor) checkOutputDir(report *Report) {
	dir := d.cfg.ResolvedOutputDir(d.OutputDir)

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		report.AddCheck(CheckResult{
			Category: "Output",
			Name:     "exists",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("Output directory %s does not exist", dir),
			FixHint:  "It is created by 'ffcx batch'; create it now to check permissions",
		})
		return
	case err != nil:
		report.AddCheck(CheckResult{
			Category: "Output",
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Cannot stat output directory %s", dir),
			Details:  err.Error(),
		})
		return
	case !info.IsDir():
		report.AddCheck(CheckResult{
			Category: "Output",
			Name:     "exists",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Output path %s is not a directory", dir),
			FixHint:  "Point output_dir at a directory",
		})
		return
	}

	probe, err := os.CreateTemp(dir, ".ffcx-doctor-*")
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Output",
			Name:     "writable",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Output directory %s is not writable", dir),
			Details:  err.Error(),
		})
		return
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	report.AddCheck(CheckResult{
		Category: "Output",
		Name:     "writable",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Output directory %s is writable", dir),
	})
}

func (d *Doctor) checkJobs(ctx context.Context, report *Report) error {
	jobs, err := job.LoadFile(d.JobsPath)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Jobs",
			Name:     "valid",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Job file %s is invalid", d.JobsPath),
			Details:  err.Error(),
			FixHint:  "Check names are C identifiers and every perm is a bijection",
		})
		return nil
	}
	report.AddCheck(CheckResult{
		Category: "Jobs",
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Job file %s is valid (%d jobs)", d.JobsPath, len(jobs)),
	})

	defaults := d.cfg.EmitOptions()
	var failed []string
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := verifyJob(j, defaults); err != nil {
			failed = append(failed, err.Error())
		}
	}

	if len(failed) > 0 {
		report.AddCheck(CheckResult{
			Category: "Jobs",
			Name:     "verified",
			Status:   StatusFail,
			Message:  fmt.Sprintf("%d of %d jobs cannot be generated", len(failed), len(jobs)),
			Details:  strings.Join(failed, "\n"),
			FixHint:  "Run with -v for details; row_stride must be at least the permutation length",
		})
		return nil
	}
	report.AddCheck(CheckResult{
		Category: "Jobs",
		Name:     "verified",
		Status:   StatusPass,
		Message:  fmt.Sprintf("All %d jobs verified by execution", len(jobs)),
	})
	return nil
}

func verifyJob(j job.Job, defaults codegen.Options) error {
	opts, err := j.Options(defaults)
	if err != nil {
		return err
	}
	dirs, err := j.Directions()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := codegen.Verify(j.Perm, dir, opts); err != nil {
			return fmt.Errorf("job %s %s: %w", j.Name, dir, err)
		}
	}
	return nil
}

func (d *Doctor) checkGraph(report *Report) {
	name := filepath.Base(d.GraphPath)
	g, err := loadGraph(d.GraphPath)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Graph",
			Name:     "valid",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Graph %s is invalid", name),
			Details:  err.Error(),
			FixHint:  "List operands before the nodes that use them",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: "Graph",
		Name:     "valid",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Graph %s is valid (%d nodes)", name, len(g.Nodes)),
	})
	if len(g.Nodes) == 0 {
		return
	}

	deps, err := analysis.BuildDependencies(g.Nodes, g.Index, analysis.IgnoreTerminalModifiers(d.cfg.IgnoreTerminalModifiers))
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Graph",
			Name:     "dependencies",
			Status:   StatusFail,
			Message:  "Cannot build dependency graph",
			Details:  err.Error(),
		})
		return
	}

	last := len(g.Nodes) - 1
	active, count, err := analysis.MarkActive(deps, []int{last})
	if err != nil {
		report.AddCheck(CheckResult{
			Category: "Graph",
			Name:     "dead",
			Status:   StatusFail,
			Message:  "Cannot mark live nodes",
			Details:  err.Error(),
		})
		return
	}
	if count == len(g.Nodes) {
		report.AddCheck(CheckResult{
			Category: "Graph",
			Name:     "dead",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Every node contributes to %s", g.Nodes[last].Name),
		})
		return
	}

	var dead []string
	for i, n := range g.Nodes {
		if !active[i] {
			dead = append(dead, n.Name)
		}
	}
	report.AddCheck(CheckResult{
		Category: "Graph",
		Name:     "dead",
		Status:   StatusWarn,
		Message:  fmt.Sprintf("%d nodes do not contribute to %s", len(dead), g.Nodes[last].Name),
		Details:  strings.Join(dead, "\n"),
		FixHint:  "Remove the nodes or pass them as --target to 'ffcx analyze'",
	})
}

func loadGraph(path string) (*expr.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return expr.Load(f)
}
