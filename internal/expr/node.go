// Package expr models the symbolic scalar expression nodes consumed by the
// dependency analysis.
//
// Nodes form a closed set of three kinds: terminals (leaves such as
// coefficients, arguments and constants), terminal modifiers (thin wrappers
// around a terminal such as derivatives or restrictions), and operators with
// an ordered operand list. The dependency builder only needs the operand list
// and the terminal-like classification.
package expr

import (
	"fmt"
	"strings"

	"github.com/ma595/ffcx"
)

// Kind classifies an expression node.
type Kind int

const (
	// Terminal is a leaf node with no operands.
	Terminal Kind = iota
	// Modifier wraps exactly one operand, normally a terminal.
	Modifier
	// Operator combines any number of operands.
	Operator
)

var kindNames = map[Kind]string{
	Terminal: "terminal",
	Modifier: "modifier",
	Operator: "operator",
}

// String returns the lowercase kind name used in graph files.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind parses a kind name as written in graph files.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("node kind %q: %w", s, ffcx.ErrUnsupportedOption)
}

// Node is a single expression node.
//
// Nodes are compared by identity: two structurally equal operators are
// distinct nodes unless they are the same *Node.
type Node struct {
	Kind     Kind
	Name     string
	Operands []*Node
}

// NewTerminal returns a leaf node.
func NewTerminal(name string) *Node {
	return &Node{Kind: Terminal, Name: name}
}

// NewModifier returns a modifier wrapping operand.
func NewModifier(name string, operand *Node) *Node {
	return &Node{Kind: Modifier, Name: name, Operands: []*Node{operand}}
}

// NewOperator returns an operator node over operands, in order.
func NewOperator(name string, operands ...*Node) *Node {
	return &Node{Kind: Operator, Name: name, Operands: operands}
}

// IsTerminalLike reports whether the node is treated as having no
// dependencies. Terminals always are. Modifiers are when includeModifiers
// is set; otherwise they behave as operators of their single operand.
// It panics on a Kind that is not Valid.
func (n *Node) IsTerminalLike(includeModifiers bool) bool {
	switch n.Kind {
	case Terminal:
		return true
	case Modifier:
		return includeModifiers
	case Operator:
		return false
	default:
		panic(fmt.Sprintf("expr: unknown node kind %d", int(n.Kind)))
	}
}

// String renders the node as name(operand names...).
func (n *Node) String() string {
	if len(n.Operands) == 0 {
		return n.Name
	}
	names := make([]string, len(n.Operands))
	for i, o := range n.Operands {
		names[i] = o.Name
	}
	return n.Name + "(" + strings.Join(names, ", ") + ")"
}
