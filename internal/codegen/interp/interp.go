// Package interp executes statements built through lang.Language against an
// in-memory buffer.
//
// It exists so generated kernels can be checked without a C toolchain. The
// machine understands exactly the vocabulary of lang.Language: integer
// variables and arithmetic, constant integer arrays, scalars of type T, and
// pointers into the single buffer the program runs on.
package interp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ma595/ffcx"
	"github.com/ma595/ffcx/internal/codegen/lang"
)

// Scalar is the element type of the buffer.
type Scalar interface {
	~float32 | ~float64 | ~complex64 | ~complex128
}

// ErrReadOnly is returned when a program writes to a constant.
var ErrReadOnly = errors.New("interp: assignment to constant")

type kind int

const (
	kindInt kind = iota
	kindScalar
	kindPointer
	kindIntArray
)

func (k kind) String() string {
	switch k {
	case kindInt:
		return "int"
	case kindScalar:
		return "scalar"
	case kindPointer:
		return "pointer"
	case kindIntArray:
		return "int array"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type value[T Scalar] struct {
	kind kind
	i    int // integer value or pointer offset
	s    T
	arr  []int
}

type binding[T Scalar] struct {
	v        value[T]
	readonly bool
}

// Stats counts buffer traffic of one run.
type Stats struct {
	Reads  int
	Writes int
}

type frame[T Scalar] struct {
	scopes []map[string]*binding[T]
	buf    []T
	stats  Stats
}

func (f *frame[T]) push() { f.scopes = append(f.scopes, map[string]*binding[T]{}) }
func (f *frame[T]) pop()  { f.scopes = f.scopes[:len(f.scopes)-1] }

func (f *frame[T]) lookup(name string) (*binding[T], error) {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if b, ok := f.scopes[i][name]; ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("undeclared symbol %q: %w", name, ffcx.ErrInvalidInput)
}

func (f *frame[T]) declare(name string, b *binding[T]) error {
	scope := f.scopes[len(f.scopes)-1]
	if _, ok := scope[name]; ok {
		return fmt.Errorf("symbol %q redeclared: %w", name, ffcx.ErrInvalidInput)
	}
	scope[name] = b
	return nil
}

// element resolves a pointer plus index to a buffer position.
func (f *frame[T]) element(ptr value[T], idx int) (int, error) {
	pos := ptr.i + idx
	if pos < 0 || pos >= len(f.buf) {
		return 0, fmt.Errorf("buffer access at %d outside [0, %d): %w", pos, len(f.buf), ffcx.ErrDimensionMismatch)
	}
	return pos, nil
}

// Expr is an interpreted expression. The zero Expr is the empty initializer
// accepted by VariableDecl.
type Expr[T Scalar] struct {
	eval  func(*frame[T]) (value[T], error)
	store func(*frame[T], value[T]) error
}

// Stmt is an interpreted statement.
type Stmt[T Scalar] func(*frame[T]) error

// Run executes program with buffer bound to data. data is modified in place.
func Run[T Scalar](program Stmt[T], buffer string, data []T) (Stats, error) {
	f := &frame[T]{buf: data}
	f.push()
	if err := f.declare(buffer, &binding[T]{v: value[T]{kind: kindPointer}, readonly: true}); err != nil {
		return Stats{}, err
	}
	if program == nil {
		return Stats{}, nil
	}
	err := program(f)
	return f.stats, err
}

// Language implements lang.Language for buffers of T.
type Language[T Scalar] struct{}

var _ lang.Language[Expr[float64], Stmt[float64]] = Language[float64]{}

func (Language[T]) Symbol(name string) Expr[T] {
	return Expr[T]{
		eval: func(f *frame[T]) (value[T], error) {
			b, err := f.lookup(name)
			if err != nil {
				return value[T]{}, err
			}
			return b.v, nil
		},
		store: func(f *frame[T], v value[T]) error {
			b, err := f.lookup(name)
			if err != nil {
				return err
			}
			if b.readonly {
				return fmt.Errorf("%s: %w", name, ErrReadOnly)
			}
			if b.v.kind != v.kind {
				return mismatch("assign", b.v.kind, v.kind)
			}
			b.v = v
			return nil
		},
	}
}

func (Language[T]) Int(v int) Expr[T] {
	return Expr[T]{eval: func(*frame[T]) (value[T], error) {
		return value[T]{kind: kindInt, i: v}, nil
	}}
}

func (l Language[T]) Add(a, b Expr[T]) Expr[T] {
	return l.arith("+", a, b, func(x, y int) int { return x + y }, true)
}

func (l Language[T]) Sub(a, b Expr[T]) Expr[T] {
	return l.arith("-", a, b, func(x, y int) int { return x - y }, true)
}

func (l Language[T]) Mul(a, b Expr[T]) Expr[T] {
	return l.arith("*", a, b, func(x, y int) int { return x * y }, false)
}

// arith combines two integers, or a pointer and an integer when offsets is
// set.
func (Language[T]) arith(op string, a, b Expr[T], fn func(x, y int) int, offsets bool) Expr[T] {
	return Expr[T]{eval: func(f *frame[T]) (value[T], error) {
		x, err := evalExpr(f, a)
		if err != nil {
			return value[T]{}, err
		}
		y, err := evalExpr(f, b)
		if err != nil {
			return value[T]{}, err
		}
		switch {
		case x.kind == kindInt && y.kind == kindInt:
			return value[T]{kind: kindInt, i: fn(x.i, y.i)}, nil
		case offsets && x.kind == kindPointer && y.kind == kindInt:
			return value[T]{kind: kindPointer, i: fn(x.i, y.i)}, nil
		case offsets && op == "+" && x.kind == kindInt && y.kind == kindPointer:
			return value[T]{kind: kindPointer, i: fn(x.i, y.i)}, nil
		default:
			return value[T]{}, mismatch(op, x.kind, y.kind)
		}
	}}
}

func (Language[T]) Index(array, index Expr[T]) Expr[T] {
	locate := func(f *frame[T]) (value[T], int, error) {
		arr, err := evalExpr(f, array)
		if err != nil {
			return value[T]{}, 0, err
		}
		idx, err := evalExpr(f, index)
		if err != nil {
			return value[T]{}, 0, err
		}
		if idx.kind != kindInt {
			return value[T]{}, 0, mismatch("[]", arr.kind, idx.kind)
		}
		switch arr.kind {
		case kindPointer:
			pos, err := f.element(arr, idx.i)
			return arr, pos, err
		case kindIntArray:
			if idx.i < 0 || idx.i >= len(arr.arr) {
				return arr, 0, fmt.Errorf("array index %d outside [0, %d): %w", idx.i, len(arr.arr), ffcx.ErrDimensionMismatch)
			}
			return arr, idx.i, nil
		default:
			return arr, 0, mismatch("[]", arr.kind, idx.kind)
		}
	}

	return Expr[T]{
		eval: func(f *frame[T]) (value[T], error) {
			arr, pos, err := locate(f)
			if err != nil {
				return value[T]{}, err
			}
			if arr.kind == kindIntArray {
				return value[T]{kind: kindInt, i: arr.arr[pos]}, nil
			}
			f.stats.Reads++
			return value[T]{kind: kindScalar, s: f.buf[pos]}, nil
		},
		store: func(f *frame[T], v value[T]) error {
			arr, pos, err := locate(f)
			if err != nil {
				return err
			}
			if arr.kind == kindIntArray {
				return fmt.Errorf("array element: %w", ErrReadOnly)
			}
			if v.kind != kindScalar {
				return mismatch("assign", kindScalar, v.kind)
			}
			f.stats.Writes++
			f.buf[pos] = v.s
			return nil
		},
	}
}

func (Language[T]) ArrayDecl(typ, name string, values []int) Stmt[T] {
	arr := append([]int(nil), values...)
	return func(f *frame[T]) error {
		if _, _, isInt := parseType(typ); !isInt {
			return fmt.Errorf("array %s of type %q: %w", name, typ, ffcx.ErrUnsupportedOption)
		}
		return f.declare(name, &binding[T]{v: value[T]{kind: kindIntArray, arr: arr}, readonly: true})
	}
}

func (Language[T]) VariableDecl(typ, name string, init Expr[T]) Stmt[T] {
	return func(f *frame[T]) error {
		readonly, k, _ := parseType(typ)
		v := value[T]{kind: k}
		if init.eval != nil {
			iv, err := init.eval(f)
			if err != nil {
				return err
			}
			if iv.kind != k {
				return mismatch("init "+name, k, iv.kind)
			}
			v = iv
		}
		return f.declare(name, &binding[T]{v: v, readonly: readonly})
	}
}

func (Language[T]) ForRange(index string, start, end Expr[T], body ...Stmt[T]) Stmt[T] {
	body = append([]Stmt[T](nil), body...)
	return func(f *frame[T]) error {
		lo, err := evalInt(f, start)
		if err != nil {
			return err
		}
		hi, err := evalInt(f, end)
		if err != nil {
			return err
		}
		for i := lo; i < hi; i++ {
			f.push()
			err := f.declare(index, &binding[T]{v: value[T]{kind: kindInt, i: i}, readonly: true})
			if err == nil {
				err = execAll(f, body)
			}
			f.pop()
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func (Language[T]) Assign(target, src Expr[T]) Stmt[T] {
	return func(f *frame[T]) error {
		if target.store == nil {
			return fmt.Errorf("assignment target is not an lvalue: %w", ffcx.ErrInvalidInput)
		}
		v, err := evalExpr(f, src)
		if err != nil {
			return err
		}
		return target.store(f, v)
	}
}

func (l Language[T]) PreIncrement(target Expr[T]) Stmt[T] { return l.step(target, 1) }
func (l Language[T]) PreDecrement(target Expr[T]) Stmt[T] { return l.step(target, -1) }

func (Language[T]) step(target Expr[T], delta int) Stmt[T] {
	return func(f *frame[T]) error {
		if target.store == nil {
			return fmt.Errorf("step target is not an lvalue: %w", ffcx.ErrInvalidInput)
		}
		v, err := evalInt(f, target)
		if err != nil {
			return err
		}
		return target.store(f, value[T]{kind: kindInt, i: v + delta})
	}
}

func (Language[T]) StatementList(stmts ...Stmt[T]) Stmt[T] {
	stmts = append([]Stmt[T](nil), stmts...)
	return func(f *frame[T]) error {
		return execAll(f, stmts)
	}
}

func execAll[T Scalar](f *frame[T], stmts []Stmt[T]) error {
	for _, s := range stmts {
		if err := s(f); err != nil {
			return err
		}
	}
	return nil
}

func evalExpr[T Scalar](f *frame[T], e Expr[T]) (value[T], error) {
	if e.eval == nil {
		return value[T]{}, fmt.Errorf("empty expression: %w", ffcx.ErrInvalidInput)
	}
	return e.eval(f)
}

func evalInt[T Scalar](f *frame[T], e Expr[T]) (int, error) {
	v, err := evalExpr(f, e)
	if err != nil {
		return 0, err
	}
	if v.kind != kindInt {
		return 0, mismatch("int", kindInt, v.kind)
	}
	return v.i, nil
}

// parseType maps a C declaration type onto the machine's kinds.
func parseType(typ string) (readonly bool, k kind, isInt bool) {
	t := strings.TrimSpace(typ)
	for {
		switch {
		case strings.HasPrefix(t, "static "):
			t = strings.TrimSpace(strings.TrimPrefix(t, "static "))
			continue
		case strings.HasPrefix(t, "const "):
			readonly = true
			t = strings.TrimSpace(strings.TrimPrefix(t, "const "))
			continue
		}
		break
	}
	switch {
	case strings.HasSuffix(t, "*"):
		return readonly, kindPointer, false
	case t == "int":
		return readonly, kindInt, true
	default:
		return readonly, kindScalar, false
	}
}

func mismatch(op string, want, got kind) error {
	return fmt.Errorf("%s: %s and %s: %w", op, want, got, ffcx.ErrInvalidInput)
}
