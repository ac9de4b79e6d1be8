package codegen_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ma595/ffcx"
	"github.com/ma595/ffcx/internal/codegen"
	"github.com/ma595/ffcx/internal/codegen/cnodes"
	"github.com/ma595/ffcx/internal/codegen/interp"
	"github.com/ma595/ffcx/internal/permute"
)

// execute emits the kernel for perm through the interpreter and runs it on a
// copy of data.
func execute[T interp.Scalar](t *testing.T, perm []int, dir permute.Direction, opts codegen.Options, data []T) ([]T, interp.Stats) {
	t.Helper()
	prog, err := codegen.PermuteInPlace[interp.Expr[T], interp.Stmt[T]](interp.Language[T]{}, perm, dir, opts)
	require.NoError(t, err)

	array := opts.Array
	if array == "" {
		array = "A"
	}
	buf := slices.Clone(data)
	stats, err := interp.Run(prog, array, buf)
	require.NoError(t, err)
	return buf, stats
}

func renderC(t *testing.T, perm []int, dir permute.Direction, opts codegen.Options) string {
	t.Helper()
	stmt, err := codegen.PermuteInPlace(cnodes.C, perm, dir, opts)
	require.NoError(t, err)
	return stmt.CStmt()
}

// expected applies perm (or its inverse) to every row of data.
func expected[T any](t *testing.T, perm []int, dir permute.Direction, rows, stride int, data []T) []T {
	t.Helper()
	p := perm
	if dir == permute.Reverse {
		var err error
		p, err = permute.Inverse(perm)
		require.NoError(t, err)
	}
	out := slices.Clone(data)
	for r := range rows {
		row := data[r*stride : r*stride+len(perm)]
		moved, err := permute.Apply(p, row)
		require.NoError(t, err)
		copy(out[r*stride:], moved)
	}
	return out
}

func sequence(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(100 + i)
	}
	return out
}

func allPermutations(n int) [][]int {
	var out [][]int
	perm := permute.Identity(n)
	var generate func(k int)
	generate = func(k int) {
		if k <= 1 {
			out = append(out, slices.Clone(perm))
			return
		}
		for i := range k - 1 {
			generate(k - 1)
			if k%2 == 0 {
				perm[i], perm[k-1] = perm[k-1], perm[i]
			} else {
				perm[0], perm[k-1] = perm[k-1], perm[0]
			}
		}
		generate(k - 1)
	}
	generate(n)
	return out
}

var cursors = []codegen.CursorMode{codegen.CursorAscending, codegen.CursorDescending}

func TestEmitMatchesApply(t *testing.T) {
	for n := 0; n <= 5; n++ {
		for _, perm := range allPermutations(n) {
			for _, cursor := range cursors {
				for _, dir := range []permute.Direction{permute.Forward, permute.Reverse} {
					name := fmt.Sprintf("%v/%s/%s", perm, dir, cursor)
					t.Run(name, func(t *testing.T) {
						data := sequence(n)
						got, _ := execute(t, perm, dir, codegen.Options{Cursor: cursor}, data)
						assert.Equal(t, expected(t, perm, dir, 1, n, data), got)
					})
				}
			}
		}
	}
}

func TestForwardThenReverseIsIdentity(t *testing.T) {
	for _, perm := range allPermutations(5) {
		for _, cursor := range cursors {
			opts := codegen.Options{Cursor: cursor}
			data := sequence(5)
			moved, _ := execute(t, perm, permute.Forward, opts, data)
			back, _ := execute(t, perm, permute.Reverse, opts, moved)
			assert.Equal(t, data, back, "perm %v cursor %s", perm, cursor)
		}
	}
}

func TestReversal(t *testing.T) {
	const n = 21
	perm := make([]int, n)
	for i := range perm {
		perm[i] = n - 1 - i
	}

	d, err := permute.Decompose(perm, permute.Forward)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Len())

	data := sequence(n)
	got, stats := execute(t, perm, permute.Forward, codegen.Options{}, data)
	want := slices.Clone(data)
	slices.Reverse(want)
	assert.Equal(t, want, got)
	assert.Equal(t, 20, stats.Writes)
}

func TestTranspose(t *testing.T) {
	// Row major 4x3 to row major 3x4.
	const rows, cols = 4, 3
	perm := make([]int, rows*cols)
	for c := range cols {
		for r := range rows {
			perm[c*rows+r] = r*cols + c
		}
	}

	data := sequence(rows * cols)
	for _, cursor := range cursors {
		got, _ := execute(t, perm, permute.Forward, codegen.Options{Cursor: cursor}, data)
		for c := range cols {
			for r := range rows {
				assert.Equal(t, data[r*cols+c], got[c*rows+r])
			}
		}

		back, _ := execute(t, perm, permute.Reverse, codegen.Options{Cursor: cursor}, got)
		assert.Equal(t, data, back)
	}
}

func TestRotation(t *testing.T) {
	const n = 12
	perm := make([]int, n)
	for i := range perm {
		perm[i] = (i + 4) % n
	}

	d, err := permute.Decompose(perm, permute.Forward)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 3, 3}, d.Sizes())

	data := sequence(n)
	got, stats := execute(t, perm, permute.Forward, codegen.Options{}, data)
	assert.Equal(t, expected(t, perm, permute.Forward, 1, n, data), got)
	assert.Equal(t, interp.Stats{Reads: 12, Writes: 12}, stats)
}

func TestMultipleRows(t *testing.T) {
	perm := []int{2, 0, 3, 1}

	tests := []struct {
		name   string
		rows   int
		stride int
	}{
		{"contiguous", 3, 4},
		{"padded", 3, 6},
		{"single row stride", 1, 5},
	}

	for _, tt := range tests {
		for _, cursor := range cursors {
			for _, dir := range []permute.Direction{permute.Forward, permute.Reverse} {
				t.Run(fmt.Sprintf("%s/%s/%s", tt.name, cursor, dir), func(t *testing.T) {
					opts := codegen.Options{Rows: tt.rows, RowStride: tt.stride, Cursor: cursor}
					data := sequence(tt.rows * tt.stride)
					got, stats := execute(t, perm, dir, opts, data)
					assert.Equal(t, expected(t, perm, dir, tt.rows, tt.stride, data), got)
					assert.Equal(t, 4*tt.rows, stats.Writes)
				})
			}
		}
	}
}

func TestComplexScalars(t *testing.T) {
	perm := []int{1, 2, 0, 4, 3}
	data := []complex128{1 + 1i, 2 - 1i, 3i, 4, -5i}

	got, _ := execute(t, perm, permute.Forward, codegen.Options{ScalarType: "double _Complex"}, data)
	want, err := permute.Apply(perm, data)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	src := renderC(t, perm, permute.Forward, codegen.Options{ScalarType: "double _Complex"})
	assert.Contains(t, src, "const double _Complex perm_tmp = A[perm_values[perm_c]];")
}

func TestIdentityEmitsNothing(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		perm := permute.Identity(n)
		for _, dir := range []permute.Direction{permute.Forward, permute.Reverse} {
			assert.Empty(t, renderC(t, perm, dir, codegen.Options{}))
			assert.Empty(t, renderC(t, perm, dir, codegen.Options{Rows: 4}))

			data := sequence(n)
			got, stats := execute(t, perm, dir, codegen.Options{}, data)
			assert.Equal(t, data, got)
			assert.Zero(t, stats)
		}
	}
}

func TestCustomNames(t *testing.T) {
	perm := []int{1, 0}
	opts := codegen.Options{Array: "coeffs", Prefix: "p0", ScalarType: "float"}

	src := renderC(t, perm, permute.Forward, opts)
	assert.Contains(t, src, "static const int p0_sizes[1] = {2};")
	assert.Contains(t, src, "const float p0_tmp = coeffs[p0_values[p0_c]];")
	assert.NotContains(t, src, "perm_")

	got, _ := execute(t, perm, permute.Forward, opts, []float32{1, 2})
	assert.Equal(t, []float32{2, 1}, got)
}

func TestGoldenC(t *testing.T) {
	tests := []struct {
		name string
		perm []int
		opts codegen.Options
		want string
	}{
		{
			name: "three cycle",
			perm: []int{1, 2, 0},
			want: `static const int perm_sizes[1] = {3};
static const int perm_values[3] = {0, 1, 2};
int perm_c = 0;
for (int perm_i = 0; perm_i < 1; ++perm_i)
{
    const double perm_tmp = A[perm_values[perm_c]];
    for (int perm_j = 1; perm_j < perm_sizes[perm_i]; ++perm_j)
    {
        A[perm_values[perm_c]] = A[perm_values[perm_c + 1]];
        ++perm_c;
    }
    A[perm_values[perm_c]] = perm_tmp;
    ++perm_c;
}`,
		},
		{
			name: "descending cursor",
			perm: []int{1, 2, 0},
			opts: codegen.Options{Cursor: codegen.CursorDescending},
			want: `static const int perm_sizes[1] = {3};
static const int perm_values[3] = {2, 1, 0};
int perm_c = 2;
for (int perm_i = 0; perm_i < 1; ++perm_i)
{
    const double perm_tmp = A[perm_values[perm_c]];
    for (int perm_j = 1; perm_j < perm_sizes[0 - perm_i]; ++perm_j)
    {
        A[perm_values[perm_c]] = A[perm_values[perm_c - 1]];
        --perm_c;
    }
    A[perm_values[perm_c]] = perm_tmp;
    --perm_c;
}`,
		},
		{
			name: "rows",
			perm: []int{1, 0},
			opts: codegen.Options{Rows: 2, RowStride: 3},
			want: `static const int perm_sizes[1] = {2};
static const int perm_values[2] = {0, 1};
for (int perm_r = 0; perm_r < 2; ++perm_r)
{
    double* perm_row = A + perm_r * 3;
    int perm_c = 0;
    for (int perm_i = 0; perm_i < 1; ++perm_i)
    {
        const double perm_tmp = perm_row[perm_values[perm_c]];
        for (int perm_j = 1; perm_j < perm_sizes[perm_i]; ++perm_j)
        {
            perm_row[perm_values[perm_c]] = perm_row[perm_values[perm_c + 1]];
            ++perm_c;
        }
        perm_row[perm_values[perm_c]] = perm_tmp;
        ++perm_c;
    }
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderC(t, tt.perm, permute.Forward, tt.opts))
		})
	}
}

func TestReverseDiffersOnlyInMemberOrder(t *testing.T) {
	perm := []int{1, 2, 0, 4, 3}
	fwd := renderC(t, perm, permute.Forward, codegen.Options{})
	rev := renderC(t, perm, permute.Reverse, codegen.Options{})

	assert.Contains(t, fwd, "perm_values[5] = {0, 1, 2, 3, 4};")
	assert.Contains(t, rev, "perm_values[5] = {2, 1, 0, 4, 3};")
	assert.Equal(t,
		fwd[len("static const int perm_sizes[2] = {3, 2};\nstatic const int perm_values[5] = {0, 1, 2, 3, 4};"):],
		rev[len("static const int perm_sizes[2] = {3, 2};\nstatic const int perm_values[5] = {2, 1, 0, 4, 3};"):],
	)
}

func TestEmitErrors(t *testing.T) {
	perm := []int{1, 2, 0}

	tests := []struct {
		name string
		opts codegen.Options
		want error
	}{
		{"negative rows", codegen.Options{Rows: -1}, ffcx.ErrInvalidInput},
		{"negative stride", codegen.Options{RowStride: -3}, ffcx.ErrInvalidInput},
		{"short stride", codegen.Options{RowStride: 2}, ffcx.ErrDimensionMismatch},
		{"extent mismatch", codegen.Options{Rows: 2, Length: 7}, ffcx.ErrDimensionMismatch},
		{"unknown cursor", codegen.Options{Cursor: codegen.CursorMode(7)}, ffcx.ErrUnsupportedOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codegen.PermuteInPlace(cnodes.C, perm, permute.Forward, tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("invalid permutation", func(t *testing.T) {
		_, err := codegen.PermuteInPlace(cnodes.C, []int{0, 0}, permute.Forward, codegen.Options{})
		assert.ErrorIs(t, err, ffcx.ErrInvalidInput)
	})

	t.Run("nil decomposition", func(t *testing.T) {
		_, err := codegen.EmitInPlace(cnodes.C, nil, codegen.Options{})
		assert.ErrorIs(t, err, ffcx.ErrInvalidInput)
	})

	t.Run("hand built overlap", func(t *testing.T) {
		d := &permute.Decomposition{N: 3, Cycles: [][]int{{0, 1}, {1, 2}}}
		_, err := codegen.EmitInPlace(cnodes.C, d, codegen.Options{})
		assert.ErrorIs(t, err, ffcx.ErrInvalidInput)
	})

	t.Run("explicit extent", func(t *testing.T) {
		_, err := codegen.PermuteInPlace(cnodes.C, perm, permute.Forward, codegen.Options{Rows: 2, RowStride: 4, Length: 8})
		assert.NoError(t, err)
	})
}

func TestParseCursorMode(t *testing.T) {
	for _, m := range cursors {
		got, err := codegen.ParseCursorMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := codegen.ParseCursorMode("")
	require.NoError(t, err)
	assert.Equal(t, codegen.CursorAscending, got)

	_, err = codegen.ParseCursorMode("sideways")
	assert.ErrorIs(t, err, ffcx.ErrUnsupportedOption)
}

func TestVerify(t *testing.T) {
	perm := []int{3, 0, 1, 2, 5, 4}
	for _, cursor := range cursors {
		for _, dir := range []permute.Direction{permute.Forward, permute.Reverse} {
			assert.NoError(t, codegen.Verify(perm, dir, codegen.Options{Cursor: cursor}))
			assert.NoError(t, codegen.Verify(perm, dir, codegen.Options{Cursor: cursor, Rows: 3, RowStride: 8}))
		}
	}

	err := codegen.Verify([]int{0, 2}, permute.Forward, codegen.Options{})
	assert.ErrorIs(t, err, ffcx.ErrInvalidInput)

	err = codegen.Verify(perm, permute.Forward, codegen.Options{RowStride: 4})
	assert.ErrorIs(t, err, ffcx.ErrDimensionMismatch)
}
