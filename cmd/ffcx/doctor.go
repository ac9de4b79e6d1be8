package main

import (
	"github.com/spf13/cobra"

	"github.com/ma595/ffcx/internal/cli"
	"github.com/ma595/ffcx/internal/doctor"
)

var (
	doctorJobs   string
	doctorGraph  string
	doctorOutput string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the project setup",
	Long: `Run health checks on the ffcx setup.

Checks the configuration and the output directory. With --jobs, the job file
is loaded and every kernel is executed against its permutation. With
--graph, the expression graph is loaded and nodes that do not contribute to
the last node are reported.`,
	Example: `  # Check configuration and output directory
  ffcx doctor

  # Also verify every job and show details
  ffcx doctor --jobs jobs.toml -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := doctor.New(cfg, configPath)
		d.OutputDir = doctorOutput
		d.JobsPath = doctorJobs
		d.GraphPath = doctorGraph

		report, err := d.Run(cmd.Context())
		if err != nil {
			return cli.GeneralError("running health checks", err)
		}

		report.Print(cmd.OutOrStdout(), verbose > 0)

		if report.HasErrors() {
			return cli.GeneralError("health checks failed", nil)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringVar(&doctorJobs, "jobs", "", "job file to verify")
	doctorCmd.Flags().StringVar(&doctorGraph, "graph", "", "expression graph file to analyze")
	doctorCmd.Flags().StringVar(&doctorOutput, "output-dir", "", "output directory to check (default from config)")
}
