package codegen

import (
	"errors"
	"fmt"

	"github.com/ma595/ffcx/internal/codegen/interp"
	"github.com/ma595/ffcx/internal/permute"
)

// ErrMismatch is returned by Verify when the emitted code does not apply
// the requested permutation.
var ErrMismatch = errors.New("codegen: generated code does not match permutation")

// Verify emits the code for perm and dir with opts, executes it on a buffer
// of distinct values and compares the result with permute.Apply row by row.
// Padding between rows must be left untouched.
func Verify(perm []int, dir permute.Direction, opts Options) error {
	prog, err := PermuteInPlace[interp.Expr[float64], interp.Stmt[float64]](interp.Language[float64]{}, perm, dir, opts)
	if err != nil {
		return err
	}
	o, err := opts.Resolve(len(perm))
	if err != nil {
		return err
	}

	applied := perm
	if dir == permute.Reverse {
		if applied, err = permute.Inverse(perm); err != nil {
			return err
		}
	}

	buf := make([]float64, o.Length)
	for i := range buf {
		buf[i] = float64(i)
	}
	if _, err := interp.Run(prog, o.Array, buf); err != nil {
		return fmt.Errorf("executing %s permutation: %w", dir, err)
	}

	for r := range o.Rows {
		base := r * o.RowStride
		for i := range o.RowStride {
			want := float64(base + i)
			if i < len(applied) {
				want = float64(base + applied[i])
			}
			if got := buf[base+i]; got != want {
				return fmt.Errorf("row %d element %d holds %v, want %v: %w", r, i, got, want, ErrMismatch)
			}
		}
	}
	return nil
}
