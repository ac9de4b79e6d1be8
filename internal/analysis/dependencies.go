// Package analysis computes dependency graphs over linearized expression
// nodes and marks the nodes that are live for a set of outputs.
//
// The node sequence must be topologically ordered: every operand of the node
// at position i has an index smaller than i. This is what allows the markers
// to run as a single linear scan instead of a work-list traversal.
package analysis

import (
	"fmt"

	"github.com/ma595/ffcx"
	"github.com/ma595/ffcx/internal/crs"
	"github.com/ma595/ffcx/internal/expr"
)

type buildOptions struct {
	ignoreTerminalModifiers bool
}

// Option configures BuildDependencies.
type Option func(*buildOptions)

// IgnoreTerminalModifiers controls whether terminal modifiers are treated as
// terminals (the default) or as operators of their wrapped operand.
func IgnoreTerminalModifiers(ignore bool) Option {
	return func(o *buildOptions) {
		o.ignoreTerminalModifiers = ignore
	}
}

// BuildDependencies returns the CRS graph mapping each node index to the
// indices of its direct operands, in operand order. Terminal-like nodes get
// an empty row.
//
// indexOf must map every node in nodes, and every operand of a non-terminal
// node, to a distinct index in [0, len(nodes)). Operands must precede their
// users. Violations are reported as ffcx.ErrInvalidInput before the graph is
// built.
func BuildDependencies(nodes []*expr.Node, indexOf map[*expr.Node]int, opts ...Option) (*crs.CRS, error) {
	o := buildOptions{ignoreTerminalModifiers: true}
	for _, opt := range opts {
		opt(&o)
	}

	n := len(nodes)
	if err := validateIndex(nodes, indexOf); err != nil {
		return nil, err
	}

	// Size the column storage once; rows are fixed at push time.
	numNonzeros := 0
	for _, v := range nodes {
		numNonzeros += len(v.Operands)
	}
	deps := crs.New(n, numNonzeros)

	row := make([]int, 0, maxOperands(nodes))
	for i, v := range nodes {
		row = row[:0]
		if !v.IsTerminalLike(o.ignoreTerminalModifiers) {
			for k, op := range v.Operands {
				if op == nil {
					return nil, fmt.Errorf("operand %d of node %d (%s) is nil: %w", k, i, v.Name, ffcx.ErrInvalidInput)
				}
				j, ok := indexOf[op]
				if !ok {
					return nil, fmt.Errorf("operand %s of node %d (%s) has no index: %w", op.Name, i, v.Name, ffcx.ErrInvalidInput)
				}
				if j >= i {
					return nil, fmt.Errorf("operand %s of node %d (%s) has index %d, not topologically ordered: %w",
						op.Name, i, v.Name, j, ffcx.ErrInvalidInput)
				}
				row = append(row, j)
			}
		}
		if err := deps.PushRow(row); err != nil {
			return nil, err
		}
	}

	return deps, nil
}

// validateIndex checks that indexOf is injective into [0, n) and agrees with
// the node order, and that every node has a known kind.
func validateIndex(nodes []*expr.Node, indexOf map[*expr.Node]int) error {
	n := len(nodes)
	seen := make([]bool, n)
	for node, i := range indexOf {
		if node == nil {
			return fmt.Errorf("index %d assigned to a nil node: %w", i, ffcx.ErrInvalidInput)
		}
		if i < 0 || i >= n {
			return fmt.Errorf("node %s mapped to %d, outside [0, %d): %w", node.Name, i, n, ffcx.ErrInvalidInput)
		}
		if seen[i] {
			return fmt.Errorf("index %d assigned to more than one node: %w", i, ffcx.ErrInvalidInput)
		}
		seen[i] = true
	}

	for i, v := range nodes {
		if v == nil {
			return fmt.Errorf("node %d is nil: %w", i, ffcx.ErrInvalidInput)
		}
		if !v.Kind.Valid() {
			return fmt.Errorf("node %d (%s) has unknown kind %d: %w", i, v.Name, int(v.Kind), ffcx.ErrInvalidInput)
		}
		if j, ok := indexOf[v]; ok && j != i {
			return fmt.Errorf("node %d (%s) mapped to index %d: %w", i, v.Name, j, ffcx.ErrInvalidInput)
		}
	}
	return nil
}

func maxOperands(nodes []*expr.Node) int {
	m := 0
	for _, v := range nodes {
		m = max(m, len(v.Operands))
	}
	return m
}
