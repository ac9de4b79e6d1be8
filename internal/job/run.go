package job

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ma595/ffcx/internal/codegen"
)

// RunOptions configures Run.
type RunOptions struct {
	// OutputDir receives one header per job. Created if missing.
	OutputDir string
	// Concurrency bounds the number of jobs compiled at once. Zero or less
	// uses GOMAXPROCS.
	Concurrency int
	// Defaults fills options a job leaves unset.
	Defaults codegen.Options
	// Verify executes every emitted function against the permutation before
	// writing it.
	Verify bool
	// Logger receives per-job progress. Nil discards it.
	Logger *log.Logger
}

// Result describes one written header.
type Result struct {
	Name  string
	Path  string
	Bytes int
}

// Run compiles jobs concurrently and writes their headers. Results are in
// input order. The first failure cancels the jobs that have not started.
func Run(ctx context.Context, jobs []Job, opts RunOptions) ([]Result, error) {
	if err := Validate(jobs); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := runOne(j, opts)
			if err != nil {
				logger.Error("job failed", "job", j.Name, "err", err)
				return err
			}
			logger.Debug("wrote header", "job", j.Name, "path", res.Path, "bytes", res.Bytes)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("batch complete", "jobs", len(jobs), "dir", opts.OutputDir)
	return results, nil
}

func runOne(j Job, opts RunOptions) (Result, error) {
	if opts.Verify {
		emitOpts, err := j.Options(opts.Defaults)
		if err != nil {
			return Result{}, err
		}
		dirs, err := j.Directions()
		if err != nil {
			return Result{}, err
		}
		for _, dir := range dirs {
			if err := codegen.Verify(j.Perm, dir, emitOpts); err != nil {
				return Result{}, fmt.Errorf("job %s %s: %w", j.Name, dir, err)
			}
		}
	}

	src, err := Source(j, opts.Defaults)
	if err != nil {
		return Result{}, err
	}

	path := filepath.Join(opts.OutputDir, j.Name+".h")
	// A failed write never leaves a truncated header at path.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(src), 0o644); err != nil {
		return Result{}, fmt.Errorf("job %s: %w", j.Name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Result{}, fmt.Errorf("job %s: %w", j.Name, err)
	}
	return Result{Name: j.Name, Path: path, Bytes: len(src)}, nil
}
