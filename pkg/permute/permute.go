// Package permute provides public APIs for permutation cycle decomposition
// and in-place permutation code generation.
//
// This is a thin wrapper around internal/permute and internal/codegen.
// GenerateC renders C directly; EmitInPlace accepts any lang.Language
// implementation.
package permute

import (
	"github.com/ma595/ffcx/internal/codegen"
	"github.com/ma595/ffcx/internal/codegen/cnodes"
	"github.com/ma595/ffcx/internal/codegen/lang"
	"github.com/ma595/ffcx/internal/permute"
)

// Direction selects a permutation or its inverse.
type Direction = permute.Direction

// Directions.
const (
	Forward = permute.Forward
	Reverse = permute.Reverse
)

// Decomposition is the cycle structure of a permutation.
type Decomposition = permute.Decomposition

// Options configures code emission.
type Options = codegen.Options

// CursorMode selects the member traversal of the emitted code.
type CursorMode = codegen.CursorMode

// Cursor modes.
const (
	CursorAscending  = codegen.CursorAscending
	CursorDescending = codegen.CursorDescending
)

// Language is the code-AST vocabulary the emitter builds through.
type Language[E, S any] = lang.Language[E, S]

// Decompose splits perm into disjoint cycles.
var Decompose = permute.Decompose

// Validate checks that perm is a bijection.
var Validate = permute.Validate

// Verify executes the emitted code against the permutation.
var Verify = codegen.Verify

// EmitInPlace builds the statements permuting a buffer in place.
func EmitInPlace[E, S any](L Language[E, S], d *Decomposition, opts Options) (S, error) {
	return codegen.EmitInPlace(L, d, opts)
}

// GenerateC returns C statements applying perm in place for dir.
func GenerateC(perm []int, dir Direction, opts Options) (string, error) {
	stmt, err := codegen.PermuteInPlace(cnodes.C, perm, dir, opts)
	if err != nil {
		return "", err
	}
	return stmt.CStmt(), nil
}
