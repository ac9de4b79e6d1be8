// Package permute decomposes index permutations into disjoint cycles for
// in-place application.
//
// A permutation perm of length n is applied as out[i] = in[perm[i]]. Applying
// it in place needs one scratch value per cycle: each cycle is rotated left
// by one position. Fixed points need no code and are dropped from the
// decomposition.
package permute

import (
	"fmt"
	"slices"

	"github.com/ma595/ffcx"
)

// Direction selects whether a permutation or its inverse is applied.
type Direction int

const (
	// Forward applies out[i] = in[perm[i]].
	Forward Direction = iota
	// Reverse applies the inverse permutation, undoing Forward.
	Reverse
)

// String returns "forward" or "reverse".
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Opposite returns the direction that undoes d.
func (d Direction) Opposite() Direction {
	if d == Forward {
		return Reverse
	}
	return Forward
}

// Valid reports whether d is Forward or Reverse.
func (d Direction) Valid() bool {
	return d == Forward || d == Reverse
}

// ParseDirection parses "forward" or "reverse". Any other value, including
// the empty string, fails with ffcx.ErrUnsupportedOption.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward":
		return Forward, nil
	case "reverse":
		return Reverse, nil
	default:
		return 0, fmt.Errorf("invalid permutation direction %q: %w", s, ffcx.ErrUnsupportedOption)
	}
}

// Validate checks that perm is a bijection on [0, len(perm)).
func Validate(perm []int) error {
	seen := make([]bool, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) {
			return fmt.Errorf("perm[%d] = %d outside [0, %d): %w", i, p, len(perm), ffcx.ErrInvalidInput)
		}
		if seen[p] {
			return fmt.Errorf("perm[%d] = %d repeats an earlier entry: %w", i, p, ffcx.ErrInvalidInput)
		}
		seen[p] = true
	}
	return nil
}

// Identity returns the identity permutation [0, 1, ..., n-1].
func Identity(n int) []int {
	if n < 0 {
		n = 0
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// Inverse returns the permutation undoing perm.
func Inverse(perm []int) ([]int, error) {
	if err := Validate(perm); err != nil {
		return nil, err
	}
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv, nil
}

// Apply returns out with out[i] = data[perm[i]]. It is the reference
// semantics the generated code is checked against.
func Apply[T any](perm []int, data []T) ([]T, error) {
	if err := Validate(perm); err != nil {
		return nil, err
	}
	if len(data) != len(perm) {
		return nil, fmt.Errorf("permutation of length %d applied to %d values: %w", len(perm), len(data), ffcx.ErrDimensionMismatch)
	}
	out := make([]T, len(data))
	for i, p := range perm {
		out[i] = data[p]
	}
	return out, nil
}

// Decomposition is the cycle structure of a permutation.
//
// Each cycle c satisfies perm[c[k]] == c[k+1] (Forward) or the same relation
// with the cycle read backwards (Reverse), with the last member wrapping to
// the first. Cycles are listed in increasing order of their smallest
// member, which is where the trace of each cycle started.
type Decomposition struct {
	// N is the length of the permutation.
	N int
	// Direction is the orientation of the member order inside each cycle.
	Direction Direction
	// Cycles holds every cycle of length two or more.
	Cycles [][]int
}

// Decompose splits perm into disjoint cycles.
//
// Tracing starts at index 0 and follows perm until it returns to a used
// index; the next cycle starts at the lowest index not yet used. This keeps
// the cycle order deterministic for identical input. Cycles of length one
// are discarded. For Reverse the members of each cycle are reversed; the
// order of the cycles is kept.
//
// perm is validated first and is never retained.
func Decompose(perm []int, dir Direction) (*Decomposition, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid permutation direction %s: %w", dir, ffcx.ErrUnsupportedOption)
	}
	if err := Validate(perm); err != nil {
		return nil, err
	}

	n := len(perm)
	d := &Decomposition{N: n, Direction: dir}
	if n == 0 {
		return d, nil
	}

	used := make([]bool, n)
	// Every index below lowest is used, so the restart scan resumes there
	// and still finds the lowest unused index.
	lowest := 0
	numUsed := 0
	idx := 0
	var cycle []int
	for numUsed < n {
		used[idx] = true
		numUsed++
		cycle = append(cycle, idx)
		idx = perm[idx]

		if used[idx] {
			if len(cycle) > 1 {
				d.Cycles = append(d.Cycles, cycle)
			}
			cycle = nil
			for lowest < n && used[lowest] {
				lowest++
			}
			idx = lowest
		}
	}

	if dir == Reverse {
		for _, c := range d.Cycles {
			slices.Reverse(c)
		}
	}
	return d, nil
}

// Len returns the number of retained cycles.
func (d *Decomposition) Len() int {
	return len(d.Cycles)
}

// Sizes returns the length of every cycle, in order.
func (d *Decomposition) Sizes() []int {
	sizes := make([]int, len(d.Cycles))
	for i, c := range d.Cycles {
		sizes[i] = len(c)
	}
	return sizes
}

// Values returns the members of all cycles concatenated in order.
func (d *Decomposition) Values() []int {
	values := make([]int, 0, d.Moved())
	for _, c := range d.Cycles {
		values = append(values, c...)
	}
	return values
}

// Moved returns the number of indices that are not fixed points.
func (d *Decomposition) Moved() int {
	m := 0
	for _, c := range d.Cycles {
		m += len(c)
	}
	return m
}

// Oriented returns a copy of d whose cycles are ordered for dir.
func (d *Decomposition) Oriented(dir Direction) *Decomposition {
	out := &Decomposition{N: d.N, Direction: dir, Cycles: make([][]int, len(d.Cycles))}
	for i, c := range d.Cycles {
		out.Cycles[i] = slices.Clone(c)
		if dir != d.Direction {
			slices.Reverse(out.Cycles[i])
		}
	}
	return out
}

// Check verifies that the cycles are disjoint, of length two or more, and
// lie in [0, N). Decompose always produces a decomposition that passes;
// Check guards hand-built values.
func (d *Decomposition) Check() error {
	if !d.Direction.Valid() {
		return fmt.Errorf("decomposition direction %s: %w", d.Direction, ffcx.ErrUnsupportedOption)
	}
	if d.N < 0 {
		return fmt.Errorf("decomposition length %d: %w", d.N, ffcx.ErrInvalidInput)
	}
	seen := make([]bool, d.N)
	for k, c := range d.Cycles {
		if len(c) < 2 {
			return fmt.Errorf("cycle %d has length %d: %w", k, len(c), ffcx.ErrInvalidInput)
		}
		for _, v := range c {
			if v < 0 || v >= d.N {
				return fmt.Errorf("cycle %d member %d outside [0, %d): %w", k, v, d.N, ffcx.ErrInvalidInput)
			}
			if seen[v] {
				return fmt.Errorf("index %d appears in more than one cycle position: %w", v, ffcx.ErrInvalidInput)
			}
			seen[v] = true
		}
	}
	return nil
}

// Permutation rebuilds the forward permutation the decomposition
// represents, with fixed points for every index not in a cycle.
func (d *Decomposition) Permutation() []int {
	perm := Identity(d.N)
	fwd := d
	if d.Direction != Forward {
		fwd = d.Oriented(Forward)
	}
	for _, c := range fwd.Cycles {
		for k, v := range c {
			perm[v] = c[(k+1)%len(c)]
		}
	}
	return perm
}
