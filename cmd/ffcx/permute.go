package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ma595/ffcx/internal/cli"
	"github.com/ma595/ffcx/internal/codegen"
	"github.com/ma595/ffcx/internal/job"
)

var (
	permutePerm      []int
	permuteDirection string
	permuteScalar    string
	permuteRows      int
	permuteStride    int
	permuteArray     string
	permuteName      string
	permutePrefix    string
	permuteCursor    string
	permuteOutput    string
	permuteCheck     bool
)

var permuteCmd = &cobra.Command{
	Use:   "permute",
	Short: "Generate in-place permutation code",
	Long: `Generate C code that applies a permutation to a buffer in place.

The permutation is given as A[i] = A_old[perm[i]]. The forward function
applies it, the reverse function undoes it. Each function stores the cycle
decomposition in two constant arrays and rotates every cycle with a single
scratch value.`,
	Example: `  # Emit forward and reverse functions for a 3-cycle
  ffcx permute --perm 2,0,1

  # Emit only the reverse for 4 rows of complex data and check it
  ffcx permute --perm 2,0,1 --direction reverse --rows 4 --scalar "double _Complex" --check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cli.LoggerFromContext(cmd.Context())
		if !cmd.Flags().Changed("perm") {
			return cli.InputError("--perm is required", nil)
		}

		j := job.Job{
			Name:       permuteName,
			Perm:       permutePerm,
			Direction:  permuteDirection,
			ScalarType: permuteScalar,
			Array:      permuteArray,
			Rows:       permuteRows,
			RowStride:  permuteStride,
			Cursor:     permuteCursor,
			Prefix:     resolveString(permutePrefix, "perm"),
		}
		if err := job.Validate([]job.Job{j}); err != nil {
			return cli.InputError("invalid permutation", err)
		}
		defaults := cfg.EmitOptions()

		if permuteCheck {
			opts, err := j.Options(defaults)
			if err != nil {
				return cli.InputError("invalid options", err)
			}
			dirs, err := j.Directions()
			if err != nil {
				return cli.InputError("invalid direction", err)
			}
			for _, dir := range dirs {
				if err := codegen.Verify(j.Perm, dir, opts); err != nil {
					return cli.GeneralError(fmt.Sprintf("checking %s code", dir), err)
				}
				logger.Info("verified", "direction", dir, "rows", resolveInt(opts.Rows, 1))
			}
		}

		src, err := job.Source(j, defaults)
		if err != nil {
			return cli.InputError("generating code", err)
		}

		if permuteOutput == "" || permuteOutput == "-" {
			fmt.Fprint(cmd.OutOrStdout(), src)
			return nil
		}
		if err := os.WriteFile(permuteOutput, []byte(src), 0o644); err != nil {
			return cli.GeneralError("writing output", err)
		}
		if !quiet {
			logger.Info("wrote", "path", permuteOutput, "bytes", len(src))
		}
		return nil
	},
}

func init() {
	f := permuteCmd.Flags()
	f.IntSliceVar(&permutePerm, "perm", nil, "permutation as comma separated indices, A[i] = A_old[perm[i]]")
	f.StringVar(&permuteDirection, "direction", "both", "forward, reverse or both")
	f.StringVar(&permuteScalar, "scalar", "", "scalar type of the buffer (default from config, double)")
	f.IntVar(&permuteRows, "rows", 0, "number of rows permuted independently (default from config, 1)")
	f.IntVar(&permuteStride, "stride", 0, "distance between row starts (default: permutation length)")
	f.StringVar(&permuteArray, "array", "", "buffer parameter name (default from config, A)")
	f.StringVar(&permuteName, "name", "apply_perm", "function name stem; functions are <name>_forward and <name>_reverse")
	f.StringVar(&permutePrefix, "prefix", "", "prefix of generated local symbols (default: perm)")
	f.StringVar(&permuteCursor, "cursor", "", "member traversal: ascending or descending (default from config)")
	f.StringVarP(&permuteOutput, "output", "o", "", "output file (default: stdout)")
	f.BoolVar(&permuteCheck, "check", false, "execute the generated code against the permutation before printing")
}
