package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ma595/ffcx/internal/cli"
	"github.com/ma595/ffcx/internal/job"
)

var (
	batchOutputDir   string
	batchConcurrency int
	batchVerify      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Compile a job file into C headers",
	Long: `Compile every permutation listed in a job file into its own header.

Job files are TOML when named *.toml and YAML or JSON otherwise. Jobs run
concurrently; the first failure stops the batch.`,
	Example: `  # Compile jobs into ./generated
  ffcx batch jobs.toml --output-dir generated

  # Check every kernel before writing it
  ffcx batch jobs.yaml --verify`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cli.LoggerFromContext(cmd.Context())

		jobs, err := job.LoadFile(args[0])
		if err != nil {
			return cli.InputError("loading jobs", err)
		}

		progress := cli.NewProgress(logger)
		results, err := job.Run(cmd.Context(), jobs, job.RunOptions{
			OutputDir:   cfg.ResolvedOutputDir(batchOutputDir),
			Concurrency: resolveInt(batchConcurrency, cfg.Batch.Concurrency),
			Defaults:    cfg.EmitOptions(),
			Verify:      batchVerify || cfg.Batch.Verify,
			Logger:      logger,
		})
		if err != nil {
			if cli.ExitCode(err) == cli.ExitInput {
				return cli.InputError("running batch", err)
			}
			return cli.GeneralError("running batch", err)
		}

		if !quiet {
			for _, res := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", res.Name, res.Path)
			}
		}
		progress.Done("batch finished", "jobs", len(results))
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "", "directory for generated headers (default from config)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "jobs compiled at once (default: number of CPUs)")
	batchCmd.Flags().BoolVar(&batchVerify, "verify", false, "execute every kernel against its permutation before writing")
}
