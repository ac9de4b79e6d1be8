// Package codegen emits in-place permutation code through a lang.Language.
//
// The generated code stores the cycle decomposition of the permutation in
// two constant arrays (cycle sizes and concatenated cycle members) and
// rotates every cycle by one position using a single scratch scalar:
//
//	static const int perm_sizes[K] = {...};
//	static const int perm_values[M] = {...};
//	int perm_c = 0;
//	for (int perm_i = 0; perm_i < K; ++perm_i)
//	{
//	    const double perm_tmp = A[perm_values[perm_c]];
//	    for (int perm_j = 1; perm_j < perm_sizes[perm_i]; ++perm_j)
//	    {
//	        A[perm_values[perm_c]] = A[perm_values[perm_c + 1]];
//	        ++perm_c;
//	    }
//	    A[perm_values[perm_c]] = perm_tmp;
//	    ++perm_c;
//	}
//
// Both directions share this template; the reverse direction only differs
// in the order of the members inside each cycle.
package codegen

import (
	"fmt"

	"github.com/ma595/ffcx"
	"github.com/ma595/ffcx/internal/codegen/lang"
	"github.com/ma595/ffcx/internal/permute"
)

// CursorMode selects how the generated code walks the member array.
type CursorMode int

const (
	// CursorAscending starts at the first member and rotates each cycle
	// left. This is the default.
	CursorAscending CursorMode = iota
	// CursorDescending starts past the last member, visits cycles from last
	// to first and rotates each cycle right over the oppositely ordered
	// members. It produces the same permutation as CursorAscending.
	CursorDescending
)

// String returns "ascending" or "descending".
func (m CursorMode) String() string {
	switch m {
	case CursorAscending:
		return "ascending"
	case CursorDescending:
		return "descending"
	default:
		return fmt.Sprintf("CursorMode(%d)", int(m))
	}
}

// ParseCursorMode parses "ascending" or "descending".
func ParseCursorMode(s string) (CursorMode, error) {
	switch s {
	case "ascending", "":
		return CursorAscending, nil
	case "descending":
		return CursorDescending, nil
	default:
		return 0, fmt.Errorf("cursor mode %q: %w", s, ffcx.ErrUnsupportedOption)
	}
}

// Options configures EmitInPlace. The zero value emits code for a single
// row of doubles in a buffer named A.
type Options struct {
	// ScalarType is the element type of the buffer, used verbatim for the
	// scratch variable and row pointers. Defaults to "double".
	ScalarType string
	// Array is the buffer symbol. Defaults to "A".
	Array string
	// Rows is the number of rows permuted independently. Defaults to 1.
	Rows int
	// RowStride is the distance between the starts of consecutive rows.
	// Defaults to the permutation length.
	RowStride int
	// Length is the declared extent of the whole buffer. Defaults to
	// Rows*RowStride; any other value is a dimension mismatch.
	Length int
	// Prefix names the generated symbols. Defaults to "perm".
	Prefix string
	// Cursor selects the member traversal order.
	Cursor CursorMode
}

// Resolve fills defaults and validates opts against a permutation of
// length n.
func (o Options) Resolve(n int) (Options, error) {
	if o.ScalarType == "" {
		o.ScalarType = "double"
	}
	if o.Array == "" {
		o.Array = "A"
	}
	if o.Prefix == "" {
		o.Prefix = "perm"
	}
	if o.Cursor != CursorAscending && o.Cursor != CursorDescending {
		return o, fmt.Errorf("cursor mode %s: %w", o.Cursor, ffcx.ErrUnsupportedOption)
	}

	if o.Rows < 0 {
		return o, fmt.Errorf("row count %d: %w", o.Rows, ffcx.ErrInvalidInput)
	}
	if o.Rows == 0 {
		o.Rows = 1
	}
	if o.RowStride < 0 {
		return o, fmt.Errorf("row stride %d: %w", o.RowStride, ffcx.ErrInvalidInput)
	}
	if o.RowStride == 0 {
		o.RowStride = n
	}
	if o.RowStride < n {
		return o, fmt.Errorf("row stride %d shorter than permutation length %d: %w", o.RowStride, n, ffcx.ErrDimensionMismatch)
	}
	if o.Length == 0 {
		o.Length = o.Rows * o.RowStride
	}
	if o.Length != o.Rows*o.RowStride {
		return o, fmt.Errorf("array extent %d does not match %d rows of stride %d: %w",
			o.Length, o.Rows, o.RowStride, ffcx.ErrDimensionMismatch)
	}
	return o, nil
}

// symbols holds the generated names for one emission.
type symbols struct {
	sizes, values, cursor, cycle, member, tmp, row, rowPtr string
}

func newSymbols(prefix string) symbols {
	return symbols{
		sizes:  prefix + "_sizes",
		values: prefix + "_values",
		cursor: prefix + "_c",
		cycle:  prefix + "_i",
		member: prefix + "_j",
		tmp:    prefix + "_tmp",
		row:    prefix + "_r",
		rowPtr: prefix + "_row",
	}
}

// EmitInPlace returns the statements that permute the buffer in place
// according to d.
//
// On error the zero statement is returned and must be discarded. A
// decomposition without cycles yields an empty statement list.
func EmitInPlace[E, S any](L lang.Language[E, S], d *permute.Decomposition, opts Options) (S, error) {
	var zero S
	if d == nil {
		return zero, fmt.Errorf("nil decomposition: %w", ffcx.ErrInvalidInput)
	}
	if err := d.Check(); err != nil {
		return zero, err
	}
	o, err := opts.Resolve(d.N)
	if err != nil {
		return zero, err
	}
	if d.Len() == 0 {
		return L.StatementList(), nil
	}

	// The descending walk rotates right, which needs the members in the
	// opposite order to produce the same permutation.
	data := d
	if o.Cursor == CursorDescending {
		data = d.Oriented(d.Direction.Opposite())
	}

	names := newSymbols(o.Prefix)
	code := []S{
		L.ArrayDecl("static const int", names.sizes, data.Sizes()),
		L.ArrayDecl("static const int", names.values, data.Values()),
	}

	if o.Rows == 1 {
		code = append(code, emitRow(L, data, o, names, L.Symbol(o.Array))...)
		return L.StatementList(code...), nil
	}

	// Each row gets its own pointer so the cycle template indexes it the
	// same way as a flat buffer.
	rowStart := L.Add(L.Symbol(o.Array), L.Mul(L.Symbol(names.row), L.Int(o.RowStride)))
	body := []S{L.VariableDecl(o.ScalarType+"*", names.rowPtr, rowStart)}
	body = append(body, emitRow(L, data, o, names, L.Symbol(names.rowPtr))...)
	code = append(code, L.ForRange(names.row, L.Int(0), L.Int(o.Rows), body...))

	return L.StatementList(code...), nil
}

// emitRow emits the cursor declaration and the loop over all cycles of one
// row addressed through w.
func emitRow[E, S any](L lang.Language[E, S], d *permute.Decomposition, o Options, names symbols, w E) []S {
	values := L.Symbol(names.values)
	sizes := L.Symbol(names.sizes)
	c := L.Symbol(names.cursor)
	at := func(pos E) E {
		return L.Index(w, L.Index(values, pos))
	}
	numCycles := d.Len()

	if o.Cursor == CursorDescending {
		// Cycle numCycles-1-i, from its last member back to its first.
		size := L.Index(sizes, L.Sub(L.Int(numCycles-1), L.Symbol(names.cycle)))
		body := []S{
			L.VariableDecl("const "+o.ScalarType, names.tmp, at(c)),
			L.ForRange(names.member, L.Int(1), size,
				L.Assign(at(c), at(L.Sub(c, L.Int(1)))),
				L.PreDecrement(c),
			),
			L.Assign(at(c), L.Symbol(names.tmp)),
			L.PreDecrement(c),
		}
		return []S{
			L.VariableDecl("int", names.cursor, L.Int(d.Moved()-1)),
			L.ForRange(names.cycle, L.Int(0), L.Int(numCycles), body...),
		}
	}

	size := L.Index(sizes, L.Symbol(names.cycle))
	body := []S{
		L.VariableDecl("const "+o.ScalarType, names.tmp, at(c)),
		L.ForRange(names.member, L.Int(1), size,
			L.Assign(at(c), at(L.Add(c, L.Int(1)))),
			L.PreIncrement(c),
		),
		L.Assign(at(c), L.Symbol(names.tmp)),
		L.PreIncrement(c),
	}
	return []S{
		L.VariableDecl("int", names.cursor, L.Int(0)),
		L.ForRange(names.cycle, L.Int(0), L.Int(numCycles), body...),
	}
}

// PermuteInPlace decomposes perm for dir and emits the in-place code.
func PermuteInPlace[E, S any](L lang.Language[E, S], perm []int, dir permute.Direction, opts Options) (S, error) {
	d, err := permute.Decompose(perm, dir)
	if err != nil {
		var zero S
		return zero, err
	}
	return EmitInPlace(L, d, opts)
}
