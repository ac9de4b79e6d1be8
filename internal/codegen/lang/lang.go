// Package lang defines the code-AST vocabulary used by the code emitters.
//
// Emitters never produce target text. They build statements through a
// Language, whose implementation decides what a statement is: a C syntax
// node (package cnodes), an executable closure (package interp), or anything
// else with the same small vocabulary.
package lang

// Language constructs expressions of type E and statements of type S.
//
// Implementations must treat every argument as immutable and must accept
// statements and expressions they created themselves in any position the
// signatures allow.
type Language[E, S any] interface {
	// Symbol references a named variable, array or buffer.
	Symbol(name string) E
	// Int is an integer literal.
	Int(v int) E
	// Add, Sub and Mul are integer arithmetic. Add also offsets a buffer
	// symbol by an integer.
	Add(a, b E) E
	Sub(a, b E) E
	Mul(a, b E) E
	// Index subscripts an array or buffer.
	Index(array, index E) E

	// ArrayDecl declares a constant integer array initialized with values.
	ArrayDecl(typ, name string, values []int) S
	// VariableDecl declares a scalar, integer or pointer variable. A zero
	// init declares the variable without an initializer.
	VariableDecl(typ, name string, init E) S
	// ForRange loops index over [start, end) with step one.
	ForRange(index string, start, end E, body ...S) S
	// Assign stores value into target.
	Assign(target, value E) S
	// PreIncrement and PreDecrement step an integer variable by one.
	PreIncrement(target E) S
	PreDecrement(target E) S
	// StatementList sequences statements.
	StatementList(stmts ...S) S
}
