// Package analysis provides public APIs for dependency analysis of
// expression graphs.
//
// This is a thin wrapper around internal/expr, internal/crs and
// internal/analysis that exposes only the types and functions needed by
// external consumers.
package analysis

import (
	"github.com/ma595/ffcx/internal/analysis"
	"github.com/ma595/ffcx/internal/crs"
	"github.com/ma595/ffcx/internal/expr"
)

// Node is an expression node.
type Node = expr.Node

// Kind classifies a node as terminal, modifier or operator.
type Kind = expr.Kind

// Node kinds.
const (
	Terminal = expr.Terminal
	Modifier = expr.Modifier
	Operator = expr.Operator
)

// Graph is a loaded, topologically ordered node sequence.
type Graph = expr.Graph

// CRS is a compressed row storage adjacency structure.
type CRS = crs.CRS

// Option configures BuildDependencies.
type Option = analysis.Option

// NewTerminal, NewModifier and NewOperator construct nodes.
var (
	NewTerminal = expr.NewTerminal
	NewModifier = expr.NewModifier
	NewOperator = expr.NewOperator
)

// Linearize orders the nodes reachable from roots so operands precede users.
var Linearize = expr.Linearize

// LoadGraph reads a YAML or JSON graph file.
var LoadGraph = expr.Load

// IgnoreTerminalModifiers controls whether modifiers of terminals count as
// terminals.
var IgnoreTerminalModifiers = analysis.IgnoreTerminalModifiers

// BuildDependencies returns the operand adjacency of a topologically ordered
// node list.
var BuildDependencies = analysis.BuildDependencies

// MarkActive marks the nodes targets depend on.
var MarkActive = analysis.MarkActive

// MarkImage marks the nodes depending on sources.
var MarkImage = analysis.MarkImage

// ActiveNodes filters nodes by a marker vector.
var ActiveNodes = analysis.ActiveNodes
