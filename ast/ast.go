package ast

import "fmt"

// Node is the interface all AST nodes implement.
type Node interface {
	Position() Pos
	nodeType() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Pos is a 1-based source location.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) Position() Pos { return p }

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Type returns the node kind name, e.g. "IfStatement".
func Type(n Node) string {
	if n == nil {
		return "nil"
	}
	return n.nodeType()
}

// Program is the root node of every AST.
type Program struct {
	Pos
	Name       string
	Statements []Statement
}

func (p *Program) nodeType() string { return "Program" }

// ---------- Statements ----------

type VariableDeclaration struct {
	Pos
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	Pos
	Name  *Identifier
	Value Expression // may be nil
}

type ExpressionStatement struct {
	Pos
	Expression Expression
}

type BlockStatement struct {
	Pos
	Statements []Statement
}

type ReturnStatement struct {
	Pos
	Value Expression // may be nil
}

type IfStatement struct {
	Pos
	Condition   Expression
	Consequence Statement
	Alternative Statement // may be nil
}

type ThrowStatement struct {
	Pos
	Argument Expression
}

type FunctionDeclaration struct {
	Pos
	Name   *Identifier
	Params []*Identifier
	Body   *BlockStatement
	Source string
}

type EmptyStatement struct {
	Pos
}

// ---------- Expressions ----------

type Identifier struct {
	Pos
	Value string
}

type NumberLiteral struct {
	Pos
	Value float64
}

type StringLiteral struct {
	Pos
	Value string
}

type BooleanLiteral struct {
	Pos
	Value bool
}

type NullLiteral struct {
	Pos
}

type ObjectLiteral struct {
	Pos
	Properties []*Property
}

type Property struct {
	Pos
	Key   string
	Value Expression
}

type FunctionExpression struct {
	Pos
	Name   *Identifier // may be nil
	Params []*Identifier
	Body   *BlockStatement
	Source string
}

type UnaryExpression struct {
	Pos
	Operator string // "!", "-", "+", "typeof", "void"
	Operand  Expression
}

type BinaryExpression struct {
	Pos
	Operator string
	Left     Expression
	Right    Expression
}

type LogicalExpression struct {
	Pos
	Operator string // "&&" or "||"
	Left     Expression
	Right    Expression
}

type AssignmentExpression struct {
	Pos
	Operator string // "=", "+=", "-=", "*=", "/="
	Left     Expression
	Right    Expression
}

type ConditionalExpression struct {
	Pos
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type CallExpression struct {
	Pos
	Callee    Expression
	Arguments []Expression
}

// MemberExpression covers both obj.key (Computed false, Property is an
// *Identifier) and obj[expr] (Computed true).
type MemberExpression struct {
	Pos
	Object   Expression
	Property Expression
	Computed bool
}

type NewExpression struct {
	Pos
	Callee    Expression
	Arguments []Expression
}

type SequenceExpression struct {
	Pos
	Expressions []Expression
}

type ThisExpression struct {
	Pos
}

// Statement markers
func (s *VariableDeclaration) statementNode() {}
func (s *ExpressionStatement) statementNode() {}
func (s *BlockStatement) statementNode()      {}
func (s *ReturnStatement) statementNode()     {}
func (s *IfStatement) statementNode()         {}
func (s *ThrowStatement) statementNode()      {}
func (s *FunctionDeclaration) statementNode() {}
func (s *EmptyStatement) statementNode()      {}

// Expression markers
func (e *Identifier) expressionNode()            {}
func (e *NumberLiteral) expressionNode()         {}
func (e *StringLiteral) expressionNode()         {}
func (e *BooleanLiteral) expressionNode()        {}
func (e *NullLiteral) expressionNode()           {}
func (e *ObjectLiteral) expressionNode()         {}
func (e *FunctionExpression) expressionNode()    {}
func (e *UnaryExpression) expressionNode()       {}
func (e *BinaryExpression) expressionNode()      {}
func (e *LogicalExpression) expressionNode()     {}
func (e *AssignmentExpression) expressionNode()  {}
func (e *ConditionalExpression) expressionNode() {}
func (e *CallExpression) expressionNode()        {}
func (e *MemberExpression) expressionNode()      {}
func (e *NewExpression) expressionNode()         {}
func (e *SequenceExpression) expressionNode()    {}
func (e *ThisExpression) expressionNode()        {}

// nodeType implementations
func (s *VariableDeclaration) nodeType() string { return "VariableDeclaration" }
func (s *VariableDeclarator) nodeType() string  { return "VariableDeclarator" }
func (s *ExpressionStatement) nodeType() string { return "ExpressionStatement" }
func (s *BlockStatement) nodeType() string      { return "BlockStatement" }
func (s *ReturnStatement) nodeType() string     { return "ReturnStatement" }
func (s *IfStatement) nodeType() string         { return "IfStatement" }
func (s *ThrowStatement) nodeType() string      { return "ThrowStatement" }
func (s *FunctionDeclaration) nodeType() string { return "FunctionDeclaration" }
func (s *EmptyStatement) nodeType() string      { return "EmptyStatement" }

func (e *Identifier) nodeType() string            { return "Identifier" }
func (e *NumberLiteral) nodeType() string         { return "NumberLiteral" }
func (e *StringLiteral) nodeType() string         { return "StringLiteral" }
func (e *BooleanLiteral) nodeType() string        { return "BooleanLiteral" }
func (e *NullLiteral) nodeType() string           { return "NullLiteral" }
func (e *ObjectLiteral) nodeType() string         { return "ObjectLiteral" }
func (e *Property) nodeType() string              { return "Property" }
func (e *FunctionExpression) nodeType() string    { return "FunctionExpression" }
func (e *UnaryExpression) nodeType() string       { return "UnaryExpression" }
func (e *BinaryExpression) nodeType() string      { return "BinaryExpression" }
func (e *LogicalExpression) nodeType() string     { return "LogicalExpression" }
func (e *AssignmentExpression) nodeType() string  { return "AssignmentExpression" }
func (e *ConditionalExpression) nodeType() string { return "ConditionalExpression" }
func (e *CallExpression) nodeType() string        { return "CallExpression" }
func (e *MemberExpression) nodeType() string      { return "MemberExpression" }
func (e *NewExpression) nodeType() string         { return "NewExpression" }
func (e *SequenceExpression) nodeType() string    { return "SequenceExpression" }
func (e *ThisExpression) nodeType() string        { return "ThisExpression" }
