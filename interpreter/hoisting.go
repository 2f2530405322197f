package interpreter

import (
	"github.com/example/ack/ast"
	"github.com/example/ack/runtime"
)

// hoist prepares a function body or program in env:
// 1. every var declared anywhere in stmts, including nested blocks and if
//    branches, is bound to undefined unless already bound in env
// 2. names of function declarations nested in blocks are bound the same way
// 3. function declarations at this level are created and bound
func (interp *Interpreter) hoist(stmts []ast.Statement, env *runtime.Environment) {
	interp.collectVarDecls(stmts, env)
	interp.hoistFunctions(stmts, env)
}

// hoistFunctions binds the function declarations directly in stmts. Blocks
// call it on entry so nested declarations are usable before they appear.
func (interp *Interpreter) hoistFunctions(stmts []ast.Statement, env *runtime.Environment) {
	for _, stmt := range stmts {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			fnVal := interp.createFunction(fd.Name, fd.Params, fd.Body, fd.Source, env)
			env.Declare(fd.Name.Value, fnVal)
		}
	}
}

// collectVarDecls recursively walks nested statements to find var
// declarations and binds them in the function scope env.
func (interp *Interpreter) collectVarDecls(stmts []ast.Statement, env *runtime.Environment) {
	for _, stmt := range stmts {
		interp.collectVarDeclsFromStmt(stmt, env, false)
	}
}

func (interp *Interpreter) collectVarDeclsFromStmt(stmt ast.Statement, env *runtime.Environment, nested bool) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		for _, decl := range s.Declarations {
			env.DeclareVar(decl.Name.Value)
		}
	case *ast.FunctionDeclaration:
		if nested {
			env.DeclareVar(s.Name.Value)
		}
	case *ast.BlockStatement:
		for _, inner := range s.Statements {
			interp.collectVarDeclsFromStmt(inner, env, true)
		}
	case *ast.IfStatement:
		if s.Consequence != nil {
			interp.collectVarDeclsFromStmt(s.Consequence, env, true)
		}
		if s.Alternative != nil {
			interp.collectVarDeclsFromStmt(s.Alternative, env, true)
		}
	}
}
