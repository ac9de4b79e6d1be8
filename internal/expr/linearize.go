package expr

import (
	"fmt"

	"github.com/ma595/ffcx"
)

// Linearize flattens the DAGs rooted at roots into a sequence in which every
// node appears after all of its operands, together with the index map from
// node to position. Shared sub-expressions appear once.
//
// Roots are visited in order and operands depth-first in operand order, so
// the result is deterministic for identical input.
func Linearize(roots ...*Node) ([]*Node, map[*Node]int, error) {
	index := make(map[*Node]int)
	var nodes []*Node

	// onStack detects cycles, which cannot be linearized.
	onStack := make(map[*Node]bool)

	type frame struct {
		node *Node
		next int
	}

	for _, root := range roots {
		if root == nil {
			return nil, nil, fmt.Errorf("nil root: %w", ffcx.ErrInvalidInput)
		}
		if _, done := index[root]; done {
			continue
		}

		stack := []frame{{node: root}}
		onStack[root] = true
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.node.Operands) {
				o := top.node.Operands[top.next]
				top.next++
				if o == nil {
					return nil, nil, fmt.Errorf("nil operand of %s: %w", top.node.Name, ffcx.ErrInvalidInput)
				}
				if _, done := index[o]; done {
					continue
				}
				if onStack[o] {
					return nil, nil, fmt.Errorf("expression cycle through %s: %w", o.Name, ffcx.ErrInvalidInput)
				}
				onStack[o] = true
				stack = append(stack, frame{node: o})
				continue
			}

			index[top.node] = len(nodes)
			nodes = append(nodes, top.node)
			delete(onStack, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	return nodes, index, nil
}

// IndexOf builds the position map of an already ordered node sequence.
func IndexOf(nodes []*Node) map[*Node]int {
	index := make(map[*Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}
	return index
}
