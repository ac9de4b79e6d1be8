package cnodes

import (
	"slices"

	"github.com/ma595/ffcx/internal/codegen/lang"
)

// Language builds cnodes for the codegen emitters.
type Language struct{}

var _ lang.Language[Expr, Stmt] = Language{}

// C is the C implementation of lang.Language.
var C lang.Language[Expr, Stmt] = Language{}

func (Language) Symbol(name string) Expr { return Symbol(name) }
func (Language) Int(v int) Expr          { return Literal(v) }
func (Language) Add(a, b Expr) Expr      { return BinOp{Op: OpAdd, Left: a, Right: b} }
func (Language) Sub(a, b Expr) Expr      { return BinOp{Op: OpSub, Left: a, Right: b} }
func (Language) Mul(a, b Expr) Expr      { return BinOp{Op: OpMul, Left: a, Right: b} }

func (Language) Index(array, index Expr) Expr {
	return Index{Array: array, Index: index}
}

func (Language) ArrayDecl(typ, name string, values []int) Stmt {
	return ArrayDecl{Type: typ, Name: name, Values: slices.Clone(values)}
}

func (Language) VariableDecl(typ, name string, init Expr) Stmt {
	return VariableDecl{Type: typ, Name: name, Init: init}
}

func (Language) ForRange(index string, start, end Expr, body ...Stmt) Stmt {
	return ForRange{Index: index, Start: start, End: end, Body: slices.Clone(body)}
}

func (Language) Assign(target, value Expr) Stmt {
	return Assign{Target: target, Value: value}
}

func (Language) PreIncrement(target Expr) Stmt { return PreIncrement{Target: target} }
func (Language) PreDecrement(target Expr) Stmt { return PreDecrement{Target: target} }

func (Language) StatementList(stmts ...Stmt) Stmt {
	return StatementList{Stmts: slices.Clone(stmts)}
}
