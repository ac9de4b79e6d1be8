package cnodes

import (
	"strconv"
	"strings"
)

// Stmt is a C statement. CStmt may return several lines separated by "\n",
// without a trailing newline.
type Stmt interface {
	CStmt() string
}

const indentUnit = "    "

// indent prefixes every non-empty line of s with one indentation unit.
func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indentUnit + line
		}
	}
	return strings.Join(lines, "\n")
}

// ArrayDecl declares an initialized array.
type ArrayDecl struct {
	Type   string
	Name   string
	Values []int
}

// CStmt renders type name[n] = {v0, v1, ...};
func (a ArrayDecl) CStmt() string {
	vals := make([]string, len(a.Values))
	for i, v := range a.Values {
		vals[i] = strconv.Itoa(v)
	}
	return a.Type + " " + a.Name + "[" + strconv.Itoa(len(a.Values)) + "] = {" + strings.Join(vals, ", ") + "};"
}

// VariableDecl declares a variable, with an initializer when Init is set.
type VariableDecl struct {
	Type string
	Name string
	Init Expr
}

// CStmt renders type name [= init];
func (v VariableDecl) CStmt() string {
	if v.Init == nil {
		return v.Type + " " + v.Name + ";"
	}
	return v.Type + " " + v.Name + " = " + v.Init.C() + ";"
}

// ForRange loops an int index over [Start, End).
type ForRange struct {
	Index string
	Start Expr
	End   Expr
	Body  []Stmt
}

// CStmt renders the loop with the body in its own block.
func (f ForRange) CStmt() string {
	var sb strings.Builder
	sb.WriteString("for (int ")
	sb.WriteString(f.Index)
	sb.WriteString(" = ")
	sb.WriteString(f.Start.C())
	sb.WriteString("; ")
	sb.WriteString(f.Index)
	sb.WriteString(" < ")
	sb.WriteString(f.End.C())
	sb.WriteString("; ++")
	sb.WriteString(f.Index)
	sb.WriteString(")\n{\n")
	for _, stmt := range f.Body {
		if body := indent(stmt.CStmt()); body != "" {
			sb.WriteString(body)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// Assign renders target = value;
type Assign struct {
	Target Expr
	Value  Expr
}

func (a Assign) CStmt() string {
	return a.Target.C() + " = " + a.Value.C() + ";"
}

// PreIncrement renders ++target;
type PreIncrement struct {
	Target Expr
}

func (p PreIncrement) CStmt() string {
	return "++" + p.Target.C() + ";"
}

// PreDecrement renders --target;
type PreDecrement struct {
	Target Expr
}

func (p PreDecrement) CStmt() string {
	return "--" + p.Target.C() + ";"
}

// Comment renders a single line comment.
type Comment struct {
	Text string
}

func (c Comment) CStmt() string {
	return "// " + c.Text
}

// StatementList renders its statements one after another.
type StatementList struct {
	Stmts []Stmt
}

func (l StatementList) CStmt() string {
	parts := make([]string, 0, len(l.Stmts))
	for _, stmt := range l.Stmts {
		if s := stmt.CStmt(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

// Param is a function parameter.
type Param struct {
	Type string
	Name string
}

// Function is a complete void C function definition.
type Function struct {
	Name   string
	Params []Param
	Body   Stmt
	Header []string // comment lines above the definition
}

// C renders the function definition.
func (f Function) C() string {
	var sb strings.Builder
	for _, line := range f.Header {
		sb.WriteString("// ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type + " " + p.Name
	}
	sb.WriteString("void ")
	sb.WriteString(f.Name)
	sb.WriteString("(")
	sb.WriteString(strings.Join(params, ", "))
	sb.WriteString(")\n{\n")
	if f.Body != nil {
		if body := indent(f.Body.CStmt()); body != "" {
			sb.WriteString(body)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
