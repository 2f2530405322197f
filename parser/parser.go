// Package parser turns source text into the evaluator's syntax tree. Scanning
// and parsing are delegated to otto; this package lowers otto's tree into the
// node kinds in package ast and rejects constructs the evaluator does not run.
package parser

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/example/ack/ast"
	"github.com/example/ack/runtime"
	oast "github.com/robertkrimen/otto/ast"
	ofile "github.com/robertkrimen/otto/file"
	oparser "github.com/robertkrimen/otto/parser"
	"github.com/robertkrimen/otto/token"
)

// SyntaxError reports source that could not be parsed or lowered.
type SyntaxError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("SyntaxError: %s (%d:%d)", e.Msg, e.Line, e.Column)
	}
	return fmt.Sprintf("SyntaxError: %s (%s:%d:%d)", e.Msg, e.File, e.Line, e.Column)
}

// ParseProgram parses source and returns the lowered program. name is used in
// error messages and recorded on the program.
func ParseProgram(name, source string) (*ast.Program, error) {
	prog, err := oparser.ParseFile(nil, name, source, 0)
	if err != nil {
		return nil, convertError(name, err)
	}

	l := newLowerer(name, source)
	program := &ast.Program{Pos: ast.Pos{Line: 1, Column: 1}, Name: name}
	for _, s := range prog.Body {
		stmt := l.statement(s)
		if l.err != nil {
			return nil, l.err
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	return program, nil
}

func convertError(name string, err error) error {
	var list *oparser.ErrorList
	if errors.As(err, &list) && list != nil && len(*list) > 0 {
		first := (*list)[0]
		return &SyntaxError{
			File:   name,
			Line:   first.Position.Line,
			Column: first.Position.Column,
			Msg:    first.Message,
		}
	}
	var single *oparser.Error
	if errors.As(err, &single) {
		return &SyntaxError{File: name, Line: single.Position.Line, Column: single.Position.Column, Msg: single.Message}
	}
	return &SyntaxError{File: name, Line: 1, Column: 1, Msg: err.Error()}
}

type lowerer struct {
	name       string
	src        string
	lineStarts []int
	err        error
}

func newLowerer(name, src string) *lowerer {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lowerer{name: name, src: src, lineStarts: starts}
}

// pos maps an otto index (1-based byte offset) to line and column.
func (l *lowerer) pos(idx ofile.Idx) ast.Pos {
	off := int(idx) - 1
	if off < 0 {
		return ast.Pos{Line: 1, Column: 1}
	}
	line := sort.Search(len(l.lineStarts), func(i int) bool { return l.lineStarts[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	return ast.Pos{Line: line + 1, Column: off - l.lineStarts[line] + 1}
}

func (l *lowerer) fail(idx ofile.Idx, format string, args ...interface{}) {
	if l.err != nil {
		return
	}
	p := l.pos(idx)
	l.err = &SyntaxError{File: l.name, Line: p.Line, Column: p.Column, Msg: fmt.Sprintf(format, args...)}
}

// ---------- Statements ----------

func (l *lowerer) statement(s oast.Statement) ast.Statement {
	if l.err != nil {
		return nil
	}
	switch s := s.(type) {
	case *oast.EmptyStatement:
		return &ast.EmptyStatement{Pos: l.pos(s.Idx0())}
	case *oast.ExpressionStatement:
		return &ast.ExpressionStatement{Pos: l.pos(s.Idx0()), Expression: l.expression(s.Expression)}
	case *oast.BlockStatement:
		return l.block(s)
	case *oast.VariableStatement:
		return l.varStatement(s)
	case *oast.FunctionStatement:
		fn := l.function(s.Function)
		if fn == nil {
			return nil
		}
		if fn.Name == nil {
			l.fail(s.Idx0(), "function statement requires a name")
			return nil
		}
		return &ast.FunctionDeclaration{Pos: fn.Pos, Name: fn.Name, Params: fn.Params, Body: fn.Body, Source: fn.Source}
	case *oast.IfStatement:
		stmt := &ast.IfStatement{
			Pos:         l.pos(s.Idx0()),
			Condition:   l.expression(s.Test),
			Consequence: l.statement(s.Consequent),
		}
		if s.Alternate != nil {
			stmt.Alternative = l.statement(s.Alternate)
		}
		return stmt
	case *oast.ReturnStatement:
		stmt := &ast.ReturnStatement{Pos: l.pos(s.Idx0())}
		if s.Argument != nil {
			stmt.Value = l.expression(s.Argument)
		}
		return stmt
	case *oast.ThrowStatement:
		return &ast.ThrowStatement{Pos: l.pos(s.Idx0()), Argument: l.expression(s.Argument)}
	default:
		l.fail(s.Idx0(), "unsupported statement %s", nodeName(s))
		return nil
	}
}

func (l *lowerer) block(s *oast.BlockStatement) *ast.BlockStatement {
	block := &ast.BlockStatement{Pos: l.pos(s.Idx0())}
	for _, inner := range s.List {
		stmt := l.statement(inner)
		if l.err != nil {
			return block
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	return block
}

func (l *lowerer) varStatement(s *oast.VariableStatement) *ast.VariableDeclaration {
	decl := &ast.VariableDeclaration{Pos: l.pos(s.Idx0())}
	for _, e := range s.List {
		ve, ok := e.(*oast.VariableExpression)
		if !ok {
			l.fail(e.Idx0(), "unsupported declaration target %s", nodeName(e))
			return decl
		}
		d := &ast.VariableDeclarator{
			Pos:  l.pos(ve.Idx0()),
			Name: &ast.Identifier{Pos: l.pos(ve.Idx0()), Value: ve.Name},
		}
		if ve.Initializer != nil {
			d.Value = l.expression(ve.Initializer)
		}
		decl.Declarations = append(decl.Declarations, d)
	}
	return decl
}

func (l *lowerer) function(f *oast.FunctionLiteral) *ast.FunctionExpression {
	fn := &ast.FunctionExpression{Pos: l.pos(f.Idx0()), Source: f.Source}
	if f.Name != nil {
		fn.Name = &ast.Identifier{Pos: l.pos(f.Name.Idx0()), Value: f.Name.Name}
	}
	if f.ParameterList != nil {
		for _, p := range f.ParameterList.List {
			fn.Params = append(fn.Params, &ast.Identifier{Pos: l.pos(p.Idx0()), Value: p.Name})
		}
	}
	body, ok := f.Body.(*oast.BlockStatement)
	if !ok {
		l.fail(f.Idx0(), "function body must be a block")
		return nil
	}
	fn.Body = l.block(body)
	if fn.Source == "" {
		fn.Source = l.slice(f.Idx0(), f.Idx1())
	}
	return fn
}

func (l *lowerer) slice(from, to ofile.Idx) string {
	a, b := int(from)-1, int(to)-1
	if a < 0 || b > len(l.src) || a >= b {
		return ""
	}
	return l.src[a:b]
}

// ---------- Expressions ----------

var binaryOps = map[token.Token]string{
	token.PLUS:             "+",
	token.MINUS:            "-",
	token.MULTIPLY:         "*",
	token.SLASH:            "/",
	token.REMAINDER:        "%",
	token.STRICT_EQUAL:     "===",
	token.STRICT_NOT_EQUAL: "!==",
	token.EQUAL:            "==",
	token.NOT_EQUAL:        "!=",
	token.LESS:             "<",
	token.LESS_OR_EQUAL:    "<=",
	token.GREATER:          ">",
	token.GREATER_OR_EQUAL: ">=",
}

var assignOps = map[token.Token]string{
	token.ASSIGN:   "=",
	token.PLUS:     "+=",
	token.MINUS:    "-=",
	token.MULTIPLY: "*=",
	token.SLASH:    "/=",
}

var unaryOps = map[token.Token]string{
	token.NOT:    "!",
	token.MINUS:  "-",
	token.PLUS:   "+",
	token.TYPEOF: "typeof",
	token.VOID:   "void",
}

func (l *lowerer) expression(e oast.Expression) ast.Expression {
	if l.err != nil || e == nil {
		return nil
	}
	p := l.pos(e.Idx0())
	switch e := e.(type) {
	case *oast.Identifier:
		return &ast.Identifier{Pos: p, Value: e.Name}
	case *oast.NumberLiteral:
		switch v := e.Value.(type) {
		case float64:
			return &ast.NumberLiteral{Pos: p, Value: v}
		case int64:
			return &ast.NumberLiteral{Pos: p, Value: float64(v)}
		default:
			l.fail(e.Idx0(), "invalid number literal %q", e.Literal)
			return &ast.NumberLiteral{Pos: p, Value: math.NaN()}
		}
	case *oast.StringLiteral:
		return &ast.StringLiteral{Pos: p, Value: e.Value}
	case *oast.BooleanLiteral:
		return &ast.BooleanLiteral{Pos: p, Value: e.Value}
	case *oast.NullLiteral:
		return &ast.NullLiteral{Pos: p}
	case *oast.ThisExpression:
		return &ast.ThisExpression{Pos: p}
	case *oast.ObjectLiteral:
		obj := &ast.ObjectLiteral{Pos: p}
		for _, prop := range e.Value {
			if prop.Kind != "value" && prop.Kind != "init" {
				l.fail(e.Idx0(), "unsupported %s accessor in object literal", prop.Kind)
				return obj
			}
			value := l.expression(prop.Value)
			if l.err != nil {
				return obj
			}
			key := prop.Key
			if canonical, ok := l.numericKey(key, prop.Value.Idx0()); ok {
				key = canonical
			}
			obj.Properties = append(obj.Properties, &ast.Property{Pos: value.Position(), Key: key, Value: value})
		}
		return obj
	case *oast.FunctionLiteral:
		fn := l.function(e)
		if fn == nil {
			return nil
		}
		return fn
	case *oast.UnaryExpression:
		op, ok := unaryOps[e.Operator]
		if !ok || e.Postfix {
			l.fail(e.Idx0(), "unsupported unary operator %s", e.Operator)
			return nil
		}
		return &ast.UnaryExpression{Pos: p, Operator: op, Operand: l.expression(e.Operand)}
	case *oast.BinaryExpression:
		switch e.Operator {
		case token.LOGICAL_AND, token.LOGICAL_OR:
			op := "&&"
			if e.Operator == token.LOGICAL_OR {
				op = "||"
			}
			return &ast.LogicalExpression{
				Pos:      p,
				Operator: op,
				Left:     l.expression(e.Left),
				Right:    l.expression(e.Right),
			}
		}
		op, ok := binaryOps[e.Operator]
		if !ok {
			l.fail(e.Idx0(), "unsupported binary operator %s", e.Operator)
			return nil
		}
		return &ast.BinaryExpression{Pos: p, Operator: op, Left: l.expression(e.Left), Right: l.expression(e.Right)}
	case *oast.AssignExpression:
		op, ok := assignOps[e.Operator]
		if !ok {
			l.fail(e.Idx0(), "unsupported assignment operator %s=", e.Operator)
			return nil
		}
		left := l.expression(e.Left)
		switch left.(type) {
		case *ast.Identifier, *ast.MemberExpression:
		default:
			if l.err == nil {
				l.fail(e.Idx0(), "invalid assignment target")
			}
			return nil
		}
		return &ast.AssignmentExpression{Pos: p, Operator: op, Left: left, Right: l.expression(e.Right)}
	case *oast.ConditionalExpression:
		return &ast.ConditionalExpression{
			Pos:        p,
			Test:       l.expression(e.Test),
			Consequent: l.expression(e.Consequent),
			Alternate:  l.expression(e.Alternate),
		}
	case *oast.DotExpression:
		return &ast.MemberExpression{
			Pos:      p,
			Object:   l.expression(e.Left),
			Property: &ast.Identifier{Pos: l.pos(e.Identifier.Idx0()), Value: e.Identifier.Name},
		}
	case *oast.BracketExpression:
		return &ast.MemberExpression{Pos: p, Object: l.expression(e.Left), Property: l.expression(e.Member), Computed: true}
	case *oast.CallExpression:
		return &ast.CallExpression{Pos: p, Callee: l.expression(e.Callee), Arguments: l.expressions(e.ArgumentList)}
	case *oast.NewExpression:
		return &ast.NewExpression{Pos: p, Callee: l.expression(e.Callee), Arguments: l.expressions(e.ArgumentList)}
	case *oast.SequenceExpression:
		return &ast.SequenceExpression{Pos: p, Expressions: l.expressions(e.Sequence)}
	default:
		l.fail(e.Idx0(), "unsupported expression %s", nodeName(e))
		return nil
	}
}

func (l *lowerer) expressions(list []oast.Expression) []ast.Expression {
	out := make([]ast.Expression, 0, len(list))
	for _, e := range list {
		out = append(out, l.expression(e))
	}
	return out
}

// nodeName renders an otto node type as "ForStatement", "ArrayLiteral", ...
func nodeName(n oast.Node) string {
	name := fmt.Sprintf("%T", n)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// numericKey reports whether an object literal key was written as an unquoted
// number and returns its canonical string form, so {1.0: x} and {0x10: x}
// define "1" and "16". otto keeps only the key text, so the source before the
// value at valueIdx is checked for a closing quote.
func (l *lowerer) numericKey(key string, valueIdx ofile.Idx) (string, bool) {
	if key == "" || !(key[0] >= '0' && key[0] <= '9' || key[0] == '.') {
		return "", false
	}
	i := int(valueIdx) - 2
	for i >= 0 && i < len(l.src) && (isSpace(l.src[i]) || l.src[i] == '(') {
		i--
	}
	if i < 0 || i >= len(l.src) || l.src[i] != ':' {
		return "", false
	}
	i--
	for i >= 0 && isSpace(l.src[i]) {
		i--
	}
	if i < 0 || l.src[i] == '"' || l.src[i] == '\'' {
		return "", false
	}
	n, ok := parseNumber(key)
	if !ok {
		return "", false
	}
	return runtime.NumberToString(n), true
}

// parseNumber reads a numeric literal the way otto's scanner values it.
func parseNumber(lit string) (float64, bool) {
	if v, err := strconv.ParseInt(lit, 0, 64); err == nil {
		return float64(v), true
	}
	if v, err := strconv.ParseFloat(lit, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		return v, true
	}
	if len(lit) > 2 && lit[0] == '0' && (lit[1] == 'x' || lit[1] == 'X') {
		var v float64
		for i := 2; i < len(lit); i++ {
			d, err := strconv.ParseUint(lit[i:i+1], 16, 8)
			if err != nil {
				return 0, false
			}
			v = v*16 + float64(d)
		}
		return v, true
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
