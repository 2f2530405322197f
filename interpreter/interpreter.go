package interpreter

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"unicode/utf16"

	"github.com/example/ack/ast"
	"github.com/example/ack/parser"
	"github.com/example/ack/runtime"
)

// Signal types for control flow
type signalType int

const (
	sigNone signalType = iota
	sigReturn
	sigThrow
)

type signal struct {
	typ   signalType
	value runtime.Value // return value
	err   error         // set for sigThrow
}

func throw(err error) signal {
	return signal{typ: sigThrow, err: err}
}

const (
	DefaultMaxCallDepth = 512
	DefaultGCThreshold  = 4096
)

// ErrInterrupted is returned by a run stopped with Interrupt.
var ErrInterrupted = errors.New("execution interrupted")

// Interpreter evaluates a program tree against an object store and a root
// environment. An Interpreter is not safe for concurrent use; separate
// instances share nothing.
type Interpreter struct {
	store  *runtime.Store
	global *runtime.Environment
	coerce *runtime.Coercer
	logger *slog.Logger

	maxDepth    int
	gcThreshold int

	depth  int
	frames []*runtime.Environment
	// environments handed to Run by the host, rooted until Release
	hostEnvs []*runtime.Environment

	interrupted atomic.Bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(interp *Interpreter) {
		if l != nil {
			interp.logger = l
		}
	}
}

// WithStrictAssignment makes assignment to an undeclared name a
// ReferenceError instead of creating a root binding.
func WithStrictAssignment(strict bool) Option {
	return func(interp *Interpreter) {
		interp.global.SetStrict(strict)
	}
}

// WithMaxCallDepth bounds nested calls; n <= 0 keeps the default.
func WithMaxCallDepth(n int) Option {
	return func(interp *Interpreter) {
		if n > 0 {
			interp.maxDepth = n
		}
	}
}

// WithGCThreshold sets how many allocations trigger a store collection at
// the next top-level statement boundary. 0 disables collection.
func WithGCThreshold(n int) Option {
	return func(interp *Interpreter) {
		if n >= 0 {
			interp.gcThreshold = n
		}
	}
}

func New(opts ...Option) *Interpreter {
	interp := &Interpreter{
		store:       runtime.NewStore(),
		global:      runtime.NewEnvironment(nil, runtime.Undefined),
		logger:      slog.Default(),
		maxDepth:    DefaultMaxCallDepth,
		gcThreshold: DefaultGCThreshold,
	}
	interp.coerce = &runtime.Coercer{Store: interp.store, Invoker: interp}
	for _, opt := range opts {
		opt(interp)
	}
	return interp
}

// Store returns the interpreter's object store.
func (interp *Interpreter) Store() *runtime.Store {
	return interp.store
}

// Global returns the root environment.
func (interp *Interpreter) Global() *runtime.Environment {
	return interp.global
}

// Coercer returns the conversion engine bound to this interpreter.
func (interp *Interpreter) Coercer() *runtime.Coercer {
	return interp.coerce
}

// Logger returns the interpreter's logger.
func (interp *Interpreter) Logger() *slog.Logger {
	return interp.logger
}

// RegisterNative installs a host function as a root binding.
func (interp *Interpreter) RegisterNative(name string, fn runtime.NativeFunc) {
	h := interp.store.NewNative(name, fn)
	interp.global.Declare(name, runtime.NewObject(h))
}

// Lookup reads a binding visible from the root environment.
func (interp *Interpreter) Lookup(name string) (runtime.Value, bool) {
	return interp.global.Lookup(name)
}

// Eval parses and runs source in the root environment.
func (interp *Interpreter) Eval(source string) (runtime.Value, error) {
	return interp.EvalNamed("<eval>", source)
}

// EvalNamed is Eval with a source name for error messages.
func (interp *Interpreter) EvalNamed(name, source string) (runtime.Value, error) {
	program, err := parser.ParseProgram(name, source)
	if err != nil {
		return runtime.Undefined, err
	}
	return interp.Run(program, interp.global)
}

// Run executes program in env (the root environment when nil) and returns
// the completion value of the last statement that produced one. Values
// returned to the host stay valid until the next run may collect the store.
func (interp *Interpreter) Run(program *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	if env == nil {
		env = interp.global
	}
	if env != interp.global && !slices.Contains(interp.hostEnvs, env) {
		interp.hostEnvs = append(interp.hostEnvs, env)
	}
	interp.logger.Debug("run program", "name", program.Name, "statements", len(program.Statements))

	interp.hoist(program.Statements, env)

	result := runtime.Undefined
	for _, stmt := range program.Statements {
		val, sig := interp.execStatement(stmt, env)
		switch sig.typ {
		case sigThrow:
			return runtime.Undefined, sig.err
		case sigReturn:
			return sig.value, nil
		}
		if val != nil {
			result = *val
		}
		interp.maybeCollect(env, result)
	}
	return result, nil
}

// Collect runs a store collection now. The root environment, environments
// passed to Run, active frames and the pinned values stay alive. It returns
// the number of objects freed.
func (interp *Interpreter) Collect(pinned ...runtime.Value) int {
	return interp.collect(nil, pinned...)
}

// Release stops rooting an environment previously passed to Run.
func (interp *Interpreter) Release(env *runtime.Environment) {
	interp.hostEnvs = slices.DeleteFunc(interp.hostEnvs, func(e *runtime.Environment) bool {
		return e == env
	})
}

// Interrupt makes the running program, and any later one, fail with
// ErrInterrupted at its next statement. It is safe to call from another
// goroutine.
func (interp *Interpreter) Interrupt() {
	interp.interrupted.Store(true)
}

func (interp *Interpreter) maybeCollect(env *runtime.Environment, pinned ...runtime.Value) {
	if interp.gcThreshold <= 0 || interp.depth > 0 || interp.store.Allocations() < interp.gcThreshold {
		return
	}
	interp.collect(env, pinned...)
}

func (interp *Interpreter) collect(env *runtime.Environment, pinned ...runtime.Value) int {
	roots := make([]*runtime.Environment, 0, len(interp.frames)+len(interp.hostEnvs)+2)
	roots = append(roots, interp.global)
	roots = append(roots, interp.hostEnvs...)
	if env != nil {
		roots = append(roots, env)
	}
	roots = append(roots, interp.frames...)
	freed := interp.store.Collect(roots, pinned...)
	interp.logger.Debug("store collection", "freed", freed, "live", interp.store.Len())
	return freed
}

// ---------- Statements ----------

// execStatement returns the statement's completion value, nil when it has
// none. Errors leaving a statement are stamped with its position unless an
// inner statement already did so.
func (interp *Interpreter) execStatement(stmt ast.Statement, env *runtime.Environment) (*runtime.Value, signal) {
	if interp.interrupted.Load() {
		return nil, throw(ErrInterrupted)
	}
	val, sig := interp.dispatchStatement(stmt, env)
	if sig.typ == sigThrow {
		var rerr *runtime.Error
		if errors.As(sig.err, &rerr) && rerr.Line == 0 {
			pos := stmt.Position()
			rerr.Line, rerr.Column = pos.Line, pos.Column
		}
	}
	return val, sig
}

func (interp *Interpreter) dispatchStatement(stmt ast.Statement, env *runtime.Environment) (*runtime.Value, signal) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		val, sig := interp.evalExpression(s.Expression, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		return &val, sig
	case *ast.VariableDeclaration:
		return interp.execVarDecl(s, env)
	case *ast.BlockStatement:
		return interp.execBlock(s, env)
	case *ast.ReturnStatement:
		return interp.execReturn(s, env)
	case *ast.IfStatement:
		return interp.execIf(s, env)
	case *ast.ThrowStatement:
		return interp.execThrow(s, env)
	case *ast.FunctionDeclaration:
		// already hoisted
		return nil, signal{}
	case *ast.EmptyStatement:
		return nil, signal{}
	default:
		return nil, throw(runtime.NewTypeError("unsupported statement: %s", ast.Type(stmt)))
	}
}

func (interp *Interpreter) execVarDecl(s *ast.VariableDeclaration, env *runtime.Environment) (*runtime.Value, signal) {
	for _, decl := range s.Declarations {
		if decl.Value == nil {
			// already hoisted, don't overwrite
			continue
		}
		val, sig := interp.evalExpression(decl.Value, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		env.Declare(decl.Name.Value, val)
	}
	return nil, signal{}
}

// execBlock runs statements in the enclosing environment; blocks never get
// a scope of their own.
func (interp *Interpreter) execBlock(s *ast.BlockStatement, env *runtime.Environment) (*runtime.Value, signal) {
	interp.hoistFunctions(s.Statements, env)
	var result *runtime.Value
	for _, stmt := range s.Statements {
		val, sig := interp.execStatement(stmt, env)
		if sig.typ != sigNone {
			return val, sig
		}
		if val != nil {
			result = val
		}
	}
	return result, signal{}
}

func (interp *Interpreter) execReturn(s *ast.ReturnStatement, env *runtime.Environment) (*runtime.Value, signal) {
	if s.Value == nil {
		return nil, signal{typ: sigReturn, value: runtime.Undefined}
	}
	val, sig := interp.evalExpression(s.Value, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	return nil, signal{typ: sigReturn, value: val}
}

func (interp *Interpreter) execIf(s *ast.IfStatement, env *runtime.Environment) (*runtime.Value, signal) {
	cond, sig := interp.evalExpression(s.Condition, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	if cond.ToBoolean() {
		return interp.execBranch(s.Consequence, env)
	}
	if s.Alternative != nil {
		return interp.execBranch(s.Alternative, env)
	}
	return nil, signal{}
}

// execBranch binds a function declaration used directly as an if body.
func (interp *Interpreter) execBranch(stmt ast.Statement, env *runtime.Environment) (*runtime.Value, signal) {
	if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
		interp.hoistFunctions([]ast.Statement{fd}, env)
		return nil, signal{}
	}
	return interp.execStatement(stmt, env)
}

func (interp *Interpreter) execThrow(s *ast.ThrowStatement, env *runtime.Environment) (*runtime.Value, signal) {
	val, sig := interp.evalExpression(s.Argument, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	return nil, throw(runtime.NewThrown(val, interp.store.Inspect(val)))
}

// ---------- Expressions ----------

func (interp *Interpreter) evalExpression(expr ast.Expression, env *runtime.Environment) (runtime.Value, signal) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return runtime.NewNumber(e.Value), signal{}
	case *ast.StringLiteral:
		return runtime.NewString(e.Value), signal{}
	case *ast.BooleanLiteral:
		return runtime.NewBool(e.Value), signal{}
	case *ast.NullLiteral:
		return runtime.Null, signal{}
	case *ast.Identifier:
		return interp.evalIdentifier(e, env)
	case *ast.ThisExpression:
		return env.This(), signal{}
	case *ast.ObjectLiteral:
		return interp.evalObjectLiteral(e, env)
	case *ast.FunctionExpression:
		return interp.evalFunctionExpression(e, env), signal{}
	case *ast.UnaryExpression:
		return interp.evalUnary(e, env)
	case *ast.BinaryExpression:
		return interp.evalBinary(e, env)
	case *ast.LogicalExpression:
		return interp.evalLogical(e, env)
	case *ast.AssignmentExpression:
		return interp.evalAssignment(e, env)
	case *ast.ConditionalExpression:
		return interp.evalConditional(e, env)
	case *ast.CallExpression:
		return interp.evalCall(e, env)
	case *ast.MemberExpression:
		return interp.evalMember(e, env)
	case *ast.NewExpression:
		return interp.evalNew(e, env)
	case *ast.SequenceExpression:
		return interp.evalSequence(e, env)
	default:
		return runtime.Undefined, throw(runtime.NewTypeError("unsupported expression: %s", ast.Type(expr)))
	}
}

func (interp *Interpreter) evalIdentifier(e *ast.Identifier, env *runtime.Environment) (runtime.Value, signal) {
	val, err := env.Get(e.Value)
	if err != nil {
		return runtime.Undefined, throw(err)
	}
	return val, signal{}
}

func (interp *Interpreter) evalObjectLiteral(e *ast.ObjectLiteral, env *runtime.Environment) (runtime.Value, signal) {
	obj := interp.store.Create(interp.store.ObjectPrototype)
	for _, prop := range e.Properties {
		val, sig := interp.evalExpression(prop.Value, env)
		if sig.typ != sigNone {
			return runtime.Undefined, sig
		}
		interp.store.Set(obj, prop.Key, val)
	}
	return runtime.NewObject(obj), signal{}
}

// evalFunctionExpression creates a closure over env. A named expression gets
// an intermediate scope binding its own name.
func (interp *Interpreter) evalFunctionExpression(e *ast.FunctionExpression, env *runtime.Environment) runtime.Value {
	if e.Name == nil {
		return interp.createFunction(nil, e.Params, e.Body, e.Source, env)
	}
	scope := runtime.NewEnvironment(env, env.This())
	fnVal := interp.createFunction(e.Name, e.Params, e.Body, e.Source, scope)
	scope.Declare(e.Name.Value, fnVal)
	return fnVal
}

func (interp *Interpreter) createFunction(name *ast.Identifier, params []*ast.Identifier, body *ast.BlockStatement, source string, env *runtime.Environment) runtime.Value {
	fn := &runtime.Function{
		Body:   body,
		Env:    env,
		Source: source,
	}
	if name != nil {
		fn.Name = name.Value
	}
	for _, p := range params {
		fn.Params = append(fn.Params, p.Value)
	}
	return runtime.NewObject(interp.store.NewFunction(fn))
}

func (interp *Interpreter) evalUnary(e *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, signal) {
	if e.Operator == "typeof" {
		if ident, ok := e.Operand.(*ast.Identifier); ok && !env.Has(ident.Value) {
			return runtime.NewString("undefined"), signal{}
		}
	}

	operand, sig := interp.evalExpression(e.Operand, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}

	switch e.Operator {
	case "!":
		return runtime.NewBool(!operand.ToBoolean()), signal{}
	case "-", "+":
		n, err := interp.coerce.ToNumber(operand)
		if err != nil {
			return runtime.Undefined, throw(err)
		}
		if e.Operator == "-" {
			n = -n
		}
		return runtime.NewNumber(n), signal{}
	case "typeof":
		return runtime.NewString(interp.store.TypeOf(operand)), signal{}
	case "void":
		return runtime.Undefined, signal{}
	}
	return runtime.Undefined, throw(runtime.NewTypeError("unsupported unary operator %s", e.Operator))
}

func (interp *Interpreter) evalBinary(e *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, signal) {
	left, sig := interp.evalExpression(e.Left, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}
	right, sig := interp.evalExpression(e.Right, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}
	val, err := interp.binaryOp(e.Operator, left, right)
	if err != nil {
		return runtime.Undefined, throw(err)
	}
	return val, signal{}
}

func (interp *Interpreter) binaryOp(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+":
		return interp.coerce.Add(left, right)
	case "-", "*", "/", "%":
		return interp.coerce.Arithmetic(op, left, right)
	case "===":
		return runtime.NewBool(runtime.StrictEquals(left, right)), nil
	case "!==":
		return runtime.NewBool(!runtime.StrictEquals(left, right)), nil
	case "==", "!=":
		eq, err := interp.coerce.LooseEquals(left, right)
		if err != nil {
			return runtime.Undefined, err
		}
		return runtime.NewBool(eq == (op == "==")), nil
	case "<", "<=", ">", ">=":
		ok, err := interp.coerce.Compare(op, left, right)
		if err != nil {
			return runtime.Undefined, err
		}
		return runtime.NewBool(ok), nil
	}
	return runtime.Undefined, runtime.NewTypeError("unsupported binary operator %s", op)
}

func (interp *Interpreter) evalLogical(e *ast.LogicalExpression, env *runtime.Environment) (runtime.Value, signal) {
	left, sig := interp.evalExpression(e.Left, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}

	switch e.Operator {
	case "&&":
		if !left.ToBoolean() {
			return left, signal{}
		}
		return interp.evalExpression(e.Right, env)
	case "||":
		if left.ToBoolean() {
			return left, signal{}
		}
		return interp.evalExpression(e.Right, env)
	}
	return left, signal{}
}

func (interp *Interpreter) evalAssignment(e *ast.AssignmentExpression, env *runtime.Environment) (runtime.Value, signal) {
	switch target := e.Left.(type) {
	case *ast.Identifier:
		// The old value is read before the right side runs.
		var old runtime.Value
		if e.Operator != "=" {
			var err error
			if old, err = env.Get(target.Value); err != nil {
				return runtime.Undefined, throw(err)
			}
		}
		right, sig := interp.evalExpression(e.Right, env)
		if sig.typ != sigNone {
			return runtime.Undefined, sig
		}
		if e.Operator != "=" {
			var err error
			if right, err = interp.applyCompoundOp(e.Operator, old, right); err != nil {
				return runtime.Undefined, throw(err)
			}
		}
		if err := env.Set(target.Value, right); err != nil {
			return runtime.Undefined, throw(err)
		}
		return right, signal{}

	case *ast.MemberExpression:
		obj, key, sig := interp.evalMemberTarget(target, env)
		if sig.typ != sigNone {
			return runtime.Undefined, sig
		}
		var old runtime.Value
		if e.Operator != "=" {
			var err error
			if old, err = interp.getMember(obj, key); err != nil {
				return runtime.Undefined, throw(err)
			}
		}
		right, sig := interp.evalExpression(e.Right, env)
		if sig.typ != sigNone {
			return runtime.Undefined, sig
		}
		if e.Operator != "=" {
			var err error
			if right, err = interp.applyCompoundOp(e.Operator, old, right); err != nil {
				return runtime.Undefined, throw(err)
			}
		}
		if err := interp.setMember(obj, key, right); err != nil {
			return runtime.Undefined, throw(err)
		}
		return right, signal{}
	}
	return runtime.Undefined, throw(runtime.NewReferenceError("Invalid left-hand side in assignment"))
}

func (interp *Interpreter) applyCompoundOp(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+=":
		return interp.coerce.Add(left, right)
	case "-=", "*=", "/=":
		return interp.coerce.Arithmetic(op[:1], left, right)
	}
	return runtime.Undefined, runtime.NewTypeError("unsupported assignment operator %s", op)
}

func (interp *Interpreter) evalConditional(e *ast.ConditionalExpression, env *runtime.Environment) (runtime.Value, signal) {
	test, sig := interp.evalExpression(e.Test, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}
	if test.ToBoolean() {
		return interp.evalExpression(e.Consequent, env)
	}
	return interp.evalExpression(e.Alternate, env)
}

// evalMemberTarget evaluates the object and the normalized key of a member
// expression, each exactly once.
func (interp *Interpreter) evalMemberTarget(e *ast.MemberExpression, env *runtime.Environment) (runtime.Value, string, signal) {
	obj, sig := interp.evalExpression(e.Object, env)
	if sig.typ != sigNone {
		return runtime.Undefined, "", sig
	}
	if !e.Computed {
		return obj, e.Property.(*ast.Identifier).Value, signal{}
	}
	keyVal, sig := interp.evalExpression(e.Property, env)
	if sig.typ != sigNone {
		return runtime.Undefined, "", sig
	}
	key, err := interp.coerce.ToPropertyKey(keyVal)
	if err != nil {
		return runtime.Undefined, "", throw(err)
	}
	return obj, key, signal{}
}

func (interp *Interpreter) evalMember(e *ast.MemberExpression, env *runtime.Environment) (runtime.Value, signal) {
	obj, key, sig := interp.evalMemberTarget(e, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}
	val, err := interp.getMember(obj, key)
	if err != nil {
		return runtime.Undefined, throw(err)
	}
	return val, signal{}
}

// getMember reads key from any value. Objects use the prototype walk;
// strings expose length; other primitives have no properties.
func (interp *Interpreter) getMember(obj runtime.Value, key string) (runtime.Value, error) {
	switch obj.Type {
	case runtime.TypeObject:
		return interp.store.Get(obj.Ref, key), nil
	case runtime.TypeUndefined, runtime.TypeNull:
		return runtime.Undefined, runtime.NewTypeError("Cannot read properties of %s (reading '%s')", obj.ToString(), key)
	case runtime.TypeString:
		if key == "length" {
			return runtime.NewNumber(float64(len(utf16.Encode([]rune(obj.Str))))), nil
		}
	}
	return runtime.Undefined, nil
}

// setMember writes an own property. Writes to primitives are dropped.
func (interp *Interpreter) setMember(obj runtime.Value, key string, val runtime.Value) error {
	switch obj.Type {
	case runtime.TypeObject:
		interp.store.Set(obj.Ref, key, val)
	case runtime.TypeUndefined, runtime.TypeNull:
		return runtime.NewTypeError("Cannot set properties of %s (setting '%s')", obj.ToString(), key)
	}
	return nil
}

func (interp *Interpreter) evalCall(e *ast.CallExpression, env *runtime.Environment) (runtime.Value, signal) {
	var thisVal, callee runtime.Value

	// determine this binding
	if member, ok := e.Callee.(*ast.MemberExpression); ok {
		obj, key, sig := interp.evalMemberTarget(member, env)
		if sig.typ != sigNone {
			return runtime.Undefined, sig
		}
		val, err := interp.getMember(obj, key)
		if err != nil {
			return runtime.Undefined, throw(err)
		}
		thisVal, callee = obj, val
	} else {
		val, sig := interp.evalExpression(e.Callee, env)
		if sig.typ != sigNone {
			return runtime.Undefined, sig
		}
		thisVal, callee = runtime.Undefined, val
	}

	if _, ok := interp.store.Callable(callee); !ok {
		return runtime.Undefined, throw(runtime.NewTypeError("%s is not a function", calleeName(e.Callee)))
	}

	// evaluate arguments
	args, sig := interp.evalArguments(e.Arguments, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}

	result, err := interp.Invoke(callee, thisVal, args)
	if err != nil {
		return runtime.Undefined, throw(err)
	}
	return result, signal{}
}

func (interp *Interpreter) evalArguments(arguments []ast.Expression, env *runtime.Environment) ([]runtime.Value, signal) {
	args := make([]runtime.Value, 0, len(arguments))
	for _, arg := range arguments {
		val, sig := interp.evalExpression(arg, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		args = append(args, val)
	}
	return args, signal{}
}

func (interp *Interpreter) evalNew(e *ast.NewExpression, env *runtime.Environment) (runtime.Value, signal) {
	callee, sig := interp.evalExpression(e.Callee, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}
	if fn, ok := interp.store.Callable(callee); !ok || !fn.Constructible() {
		return runtime.Undefined, throw(runtime.NewTypeError("%s is not a constructor", calleeName(e.Callee)))
	}

	args, sig := interp.evalArguments(e.Arguments, env)
	if sig.typ != sigNone {
		return runtime.Undefined, sig
	}

	result, err := interp.Construct(callee, args)
	if err != nil {
		return runtime.Undefined, throw(err)
	}
	return result, signal{}
}

func (interp *Interpreter) evalSequence(e *ast.SequenceExpression, env *runtime.Environment) (runtime.Value, signal) {
	result := runtime.Undefined
	for _, expr := range e.Expressions {
		var sig signal
		result, sig = interp.evalExpression(expr, env)
		if sig.typ != sigNone {
			return runtime.Undefined, sig
		}
	}
	return result, signal{}
}

// ---------- Invocation ----------

// Invoke calls fn with the given this and arguments.
func (interp *Interpreter) Invoke(fnVal, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	fn, ok := interp.store.Callable(fnVal)
	if !ok {
		return runtime.Undefined, runtime.NewTypeError("%s is not a function", interp.store.Inspect(fnVal))
	}
	if interp.depth >= interp.maxDepth {
		return runtime.Undefined, runtime.NewRangeError("Maximum call stack size exceeded")
	}
	interp.depth++
	defer func() { interp.depth-- }()

	if fn.IsNative() {
		return fn.Native(this, args)
	}

	fnEnv := runtime.NewEnvironment(fn.Env, this)
	for i, name := range fn.Params {
		arg := runtime.Undefined
		if i < len(args) {
			arg = args[i]
		}
		fnEnv.Declare(name, arg)
	}
	interp.hoist(fn.Body.Statements, fnEnv)

	interp.frames = append(interp.frames, fnEnv)
	defer func() { interp.frames = interp.frames[:len(interp.frames)-1] }()

	for _, stmt := range fn.Body.Statements {
		_, sig := interp.execStatement(stmt, fnEnv)
		switch sig.typ {
		case sigReturn:
			return sig.value, nil
		case sigThrow:
			return runtime.Undefined, sig.err
		}
	}
	return runtime.Undefined, nil
}

// Construct implements new: the instance inherits from the constructor's
// prototype property (Object.prototype when that is not an object) and an
// object returned by the body replaces it.
func (interp *Interpreter) Construct(fnVal runtime.Value, args []runtime.Value) (runtime.Value, error) {
	fn, ok := interp.store.Callable(fnVal)
	if !ok || !fn.Constructible() {
		return runtime.Undefined, runtime.NewTypeError("%s is not a constructor", interp.store.Inspect(fnVal))
	}
	if fn.IsNative() {
		if interp.depth >= interp.maxDepth {
			return runtime.Undefined, runtime.NewRangeError("Maximum call stack size exceeded")
		}
		interp.depth++
		defer func() { interp.depth-- }()
		return fn.Construct(runtime.Undefined, args)
	}

	proto := interp.store.ObjectPrototype
	if p := interp.store.Get(fnVal.Ref, "prototype"); p.IsObject() {
		proto = p.Ref
	}
	instance := runtime.NewObject(interp.store.Create(proto))

	result, err := interp.Invoke(fnVal, instance, args)
	if err != nil {
		return runtime.Undefined, err
	}
	if result.IsObject() {
		return result, nil
	}
	return instance, nil
}

// calleeName renders a callee for error messages: "f", "obj.m" or
// "expression".
func calleeName(e ast.Expression) string {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Value
	case *ast.MemberExpression:
		if ident, ok := e.Property.(*ast.Identifier); ok && !e.Computed {
			return fmt.Sprintf("%s.%s", calleeName(e.Object), ident.Value)
		}
		return calleeName(e.Object) + "[...]"
	case *ast.ThisExpression:
		return "this"
	default:
		return "expression"
	}
}
