package runtime

import (
	"strings"

	"github.com/example/ack/ast"
)

// NativeFunc is the Go signature of host-provided functions.
type NativeFunc func(this Value, args []Value) (Value, error)

// Function is the callable slot of a function object. Script functions carry
// Params, Body and the captured Env; host functions carry Native and,
// when they can be used with new, Construct. Values a host function closes
// over go in Bound so the store keeps them alive.
type Function struct {
	Name   string
	Params []string
	Body   *ast.BlockStatement
	Env    *Environment
	Source string

	Native    NativeFunc
	Construct NativeFunc
	Bound     []Value
}

func (f *Function) IsNative() bool {
	return f.Native != nil
}

// Constructible reports whether new may be applied to the function.
func (f *Function) Constructible() bool {
	return !f.IsNative() || f.Construct != nil
}

// SourceText is what Function.prototype.toString returns.
func (f *Function) SourceText() string {
	if !f.IsNative() && f.Source != "" {
		return f.Source
	}
	if f.IsNative() {
		return "function " + f.Name + "() {\n    [native code]\n}"
	}
	var sb strings.Builder
	sb.WriteString("function ")
	sb.WriteString(f.Name)
	sb.WriteString("(")
	sb.WriteString(strings.Join(f.Params, ", "))
	sb.WriteString(") { [code] }")
	return sb.String()
}
