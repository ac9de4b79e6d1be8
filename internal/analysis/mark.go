package analysis

import (
	"fmt"

	"github.com/ma595/ffcx"
	"github.com/ma595/ffcx/internal/crs"
	"github.com/ma595/ffcx/internal/expr"
)

// MarkActive returns a vector marking the targets and everything they
// recursively depend on, and the number of marked entries.
//
// deps maps each node to its dependencies, which must all have a smaller
// index than the node. Symbols are scanned from the last to the first, so a
// node is final by the time the scan reaches it.
func MarkActive(deps *crs.CRS, targets []int) ([]bool, int, error) {
	if deps == nil {
		return nil, 0, fmt.Errorf("nil dependency graph: %w", ffcx.ErrInvalidInput)
	}
	n := deps.Len()
	if err := checkSeeds(n, targets); err != nil {
		return nil, 0, err
	}
	if err := checkOrientation(deps, true); err != nil {
		return nil, 0, err
	}

	active := make([]bool, n)
	for _, t := range targets {
		active[t] = true
	}

	numUsed := 0
	for s := n - 1; s >= 0; s-- {
		if !active[s] {
			continue
		}
		numUsed++
		for _, d := range deps.Row(s) {
			active[d] = true
		}
	}

	return active, numUsed, nil
}

// MarkImage returns a vector marking the sources and everything that
// recursively depends on them, and the number of marked entries.
//
// inverseDeps maps each node to its dependants, which must all have a larger
// index than the node (see crs.CRS.Invert). Symbols are scanned from the
// first to the last.
func MarkImage(inverseDeps *crs.CRS, sources []int) ([]bool, int, error) {
	if inverseDeps == nil {
		return nil, 0, fmt.Errorf("nil inverse dependency graph: %w", ffcx.ErrInvalidInput)
	}
	n := inverseDeps.Len()
	if err := checkSeeds(n, sources); err != nil {
		return nil, 0, err
	}
	if err := checkOrientation(inverseDeps, false); err != nil {
		return nil, 0, err
	}

	image := make([]bool, n)
	for _, s := range sources {
		image[s] = true
	}

	numUsed := 0
	for s := 0; s < n; s++ {
		if !image[s] {
			continue
		}
		numUsed++
		for _, d := range inverseDeps.Row(s) {
			image[d] = true
		}
	}

	return image, numUsed, nil
}

// ActiveNodes returns the nodes whose entry in active is set, in order.
func ActiveNodes(nodes []*expr.Node, active []bool) ([]*expr.Node, error) {
	if len(nodes) != len(active) {
		return nil, fmt.Errorf("%d nodes, %d liveness entries: %w", len(nodes), len(active), ffcx.ErrDimensionMismatch)
	}
	out := make([]*expr.Node, 0, len(nodes))
	for i, v := range nodes {
		if active[i] {
			out = append(out, v)
		}
	}
	return out, nil
}

func checkSeeds(n int, seeds []int) error {
	for _, s := range seeds {
		if s < 0 || s >= n {
			return fmt.Errorf("seed %d outside [0, %d): %w", s, n, ffcx.ErrInvalidInput)
		}
	}
	return nil
}

// checkOrientation verifies the topological precondition of the markers:
// every edge points to a smaller index (backward) or a larger one (forward).
func checkOrientation(g *crs.CRS, backward bool) error {
	if !g.Complete() {
		return fmt.Errorf("graph has %d of %d rows: %w", g.Len(), g.NumRows(), ffcx.ErrInvalidInput)
	}
	for s := 0; s < g.Len(); s++ {
		for _, d := range g.Row(s) {
			if backward && d >= s {
				return fmt.Errorf("dependency %d of node %d is not earlier in the order: %w", d, s, ffcx.ErrInvalidInput)
			}
			if !backward && d <= s {
				return fmt.Errorf("dependant %d of node %d is not later in the order: %w", d, s, ffcx.ErrInvalidInput)
			}
		}
	}
	return nil
}
