// Package cnodes provides C syntax nodes for generated kernels.
//
// Every node renders its own C text; builders compose nodes and never
// concatenate code by hand. Language adapts the nodes to lang.Language so the
// emitters in package codegen can target C.
package cnodes

import (
	"strconv"
)

// Expr is a C expression.
type Expr interface {
	C() string
}

// Symbol references a variable, array or function parameter by name.
type Symbol string

// C renders the symbol name.
func (s Symbol) C() string {
	return string(s)
}

// Literal is an integer literal.
type Literal int

// C renders the integer.
func (l Literal) C() string {
	return strconv.Itoa(int(l))
}

// Binary operators.
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
)

// BinOp applies an arithmetic operator. Operands are parenthesized only
// where C precedence requires it.
type BinOp struct {
	Op    string
	Left  Expr
	Right Expr
}

// C renders the operation.
func (b BinOp) C() string {
	p := precedence(b)
	left := b.Left.C()
	if precedence(b.Left) < p {
		left = "(" + left + ")"
	}
	right := b.Right.C()
	// a - (b + c) and a * (b * c) keep their grouping.
	if rp := precedence(b.Right); rp < p || (rp == p && b.Op != OpAdd) {
		right = "(" + right + ")"
	}
	return left + " " + b.Op + " " + right
}

// Index subscripts an array expression.
type Index struct {
	Array Expr
	Index Expr
}

// C renders array[index].
func (i Index) C() string {
	arr := i.Array.C()
	if _, ok := i.Array.(BinOp); ok {
		arr = "(" + arr + ")"
	}
	return arr + "[" + i.Index.C() + "]"
}

const atomPrecedence = 100

func precedence(e Expr) int {
	b, ok := e.(BinOp)
	if !ok {
		return atomPrecedence
	}
	switch b.Op {
	case OpMul:
		return 2
	default:
		return 1
	}
}
