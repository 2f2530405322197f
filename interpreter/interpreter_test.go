package interpreter

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ack/builtins"
	"github.com/example/ack/parser"
	"github.com/example/ack/runtime"
)

func newTestInterp(opts ...Option) *Interpreter {
	interp := New(opts...)
	builtins.RegisterAll(interp)
	return interp
}

func evalExpect(t *testing.T, source string) runtime.Value {
	t.Helper()
	interp := newTestInterp()
	val, err := interp.Eval(source)
	if err != nil {
		t.Fatalf("Eval error for %q: %v", source, err)
	}
	return val
}

func evalExpectError(t *testing.T, source string) error {
	t.Helper()
	interp := newTestInterp()
	_, err := interp.Eval(source)
	if err == nil {
		t.Fatalf("expected error for %q but got none", source)
	}
	return err
}

func expectNumber(t *testing.T, source string, expected float64) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeNumber {
		t.Fatalf("expected number for %q, got %v (type=%v)", source, val, val.Type)
	}
	if math.IsNaN(expected) {
		if !math.IsNaN(val.Number) {
			t.Fatalf("expected NaN for %q, got %v", source, val.Number)
		}
		return
	}
	if val.Number != expected {
		t.Fatalf("expected %v for %q, got %v", expected, source, val.Number)
	}
}

func expectString(t *testing.T, source string, expected string) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeString {
		t.Fatalf("expected string for %q, got type=%v val=%v", source, val.Type, val)
	}
	if val.Str != expected {
		t.Fatalf("expected %q for %q, got %q", expected, source, val.Str)
	}
}

func expectBool(t *testing.T, source string, expected bool) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeBoolean {
		t.Fatalf("expected boolean for %q, got type=%v", source, val.Type)
	}
	if val.Bool != expected {
		t.Fatalf("expected %v for %q, got %v", expected, source, val.Bool)
	}
}

func expectUndefined(t *testing.T, source string) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeUndefined {
		t.Fatalf("expected undefined for %q, got type=%v", source, val.Type)
	}
}

func expectNull(t *testing.T, source string) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeNull {
		t.Fatalf("expected null for %q, got type=%v", source, val.Type)
	}
}

// --- Literals ---

func TestLiterals(t *testing.T) {
	expectNumber(t, "42", 42)
	expectNumber(t, "3.14", 3.14)
	expectNumber(t, "0x10", 16)
	expectString(t, `"hello"`, "hello")
	expectString(t, "'world'", "world")
	expectBool(t, "true", true)
	expectBool(t, "false", false)
	expectNull(t, "null")
	expectUndefined(t, "undefined")
	expectUndefined(t, "var a = 1;")
}

// --- Arithmetic ---

func TestArithmetic(t *testing.T) {
	expectNumber(t, "2 + 3", 5)
	expectNumber(t, "10 - 3", 7)
	expectNumber(t, "4 * 5", 20)
	expectNumber(t, "10 / 3", 10.0/3.0)
	expectNumber(t, "10 % 3", 1)
	expectNumber(t, "-5", -5)
	expectNumber(t, "+true", 1)
	expectNumber(t, `"6" * "7"`, 42)
	expectNumber(t, "null + 1", 1)
	expectNumber(t, "undefined + 1", math.NaN())
	expectNumber(t, "1 / 0", math.Inf(1))
}

// --- String concatenation ---

func TestStringConcat(t *testing.T) {
	expectString(t, `"hello" + " " + "world"`, "hello world")
	expectString(t, `"num: " + 42`, "num: 42")
	expectString(t, `1 + "2"`, "12")
	expectString(t, `"x" + null + undefined + true`, "xnullundefinedtrue")
	expectString(t, `0.1 + 0.2 + ""`, "0.30000000000000004")
	expectString(t, `1e21 + ""`, "1e+21")
}

// --- Comparison operators ---

func TestComparison(t *testing.T) {
	expectBool(t, "1 < 2", true)
	expectBool(t, "2 <= 2", true)
	expectBool(t, "3 > 4", false)
	expectBool(t, `"a" < "b"`, true)
	expectBool(t, `"10" < "9"`, true)
	expectBool(t, `"10" < 9`, false)
	expectBool(t, "NaN < 1", false)
}

func TestStrictEquality(t *testing.T) {
	expectBool(t, "1 === 1", true)
	expectBool(t, `1 === "1"`, false)
	expectBool(t, "true === 1", false)
	expectBool(t, "NaN === NaN", false)
	expectBool(t, "null === undefined", false)
	expectBool(t, "var o = {}; o === o", true)
	expectBool(t, "({}) === ({})", false)
	expectBool(t, "1 !== 2", true)
}

func TestLooseEquality(t *testing.T) {
	expectBool(t, `1 == "1"`, true)
	expectBool(t, "true == 1", true)
	expectBool(t, "null == undefined", true)
	expectBool(t, "null == 0", false)
	expectBool(t, `({toString: function () { return "k"; }}) == "k"`, true)
	expectBool(t, `"a" != "b"`, true)
}

// --- Unary ---

func TestUnary(t *testing.T) {
	expectBool(t, `!""`, true)
	expectBool(t, "!0", true)
	expectBool(t, "!{}", false)
	expectUndefined(t, "void 1")
	expectString(t, "typeof 1", "number")
	expectString(t, `typeof "s"`, "string")
	expectString(t, "typeof null", "object")
	expectString(t, "typeof {}", "object")
	expectString(t, "typeof function () {}", "function")
	expectString(t, "typeof notDeclared", "undefined")
	expectNumber(t, `+"  12  "`, 12)
	expectNumber(t, `+"12px"`, math.NaN())
}

// --- Logical operators ---

func TestLogical(t *testing.T) {
	expectNumber(t, "true && 10", 10)
	expectNumber(t, "false || 15", 15)
	expectBool(t, "false && 10", false)
	expectString(t, `"" || "fallback"`, "fallback")
	expectNumber(t, "0 && explode()", 0)
	expectNumber(t, "1 || explode()", 1)
}

func TestLogicalShortCircuitSideEffects(t *testing.T) {
	src := `
		var calls = 0;
		function touch() { calls = calls + 1; return true; }
		false && touch();
		true || touch();
		true && touch();
		false || touch();
		calls
	`
	expectNumber(t, src, 2)
}

func TestConditional(t *testing.T) {
	expectString(t, `1 ? "yes" : "no"`, "yes")
	expectString(t, `"" ? "yes" : "no"`, "no")
	expectNumber(t, `var n = 0; function inc() { n = n + 1; return n; } true ? inc() : inc(); n`, 1)
}

// --- Statements ---

func TestIfElse(t *testing.T) {
	expectNumber(t, `var res = 1; if ("") {} else { res = 256; } res`, 256)
	expectString(t, `var r; if (1) r = "a"; else r = "b"; r`, "a")
	expectNumber(t, `if (false) 1; else 2`, 2)
}

func TestVarHoisting(t *testing.T) {
	expectUndefined(t, `var before = x; var x = 5; before`)
	expectString(t, `if (false) var hey = "twenty"; else var hey = "thirty"; hey`, "thirty")
	expectUndefined(t, `if (false) { var inner = 1; } inner`)
	expectNumber(t, `var k = 3; var k; k`, 3)
}

func TestFunctionHoisting(t *testing.T) {
	expectNumber(t, `early(); function early() { return 7; } early()`, 7)
	expectNumber(t, `function outer() { return inner(); function inner() { return 11; } } outer()`, 11)
	expectBool(t, `function isEven(n) { return n === 0 ? true : isOdd(n - 1); }
		function isOdd(n) { return n === 0 ? false : isEven(n - 1); }
		isEven(10)`, true)
}

func TestImplicitGlobal(t *testing.T) {
	interp := newTestInterp()
	_, err := interp.Eval(`function setIt(a) { hello = a; } setIt("there");`)
	require.NoError(t, err)
	v, ok := interp.Lookup("hello")
	require.True(t, ok)
	assert.Equal(t, "there", v.Str)
}

func TestStrictAssignment(t *testing.T) {
	interp := newTestInterp(WithStrictAssignment(true))
	_, err := interp.Eval(`undeclared = 1;`)
	require.Error(t, err)
	assert.ErrorIs(t, err, runtime.ErrReference)
}

func TestAssignmentExpression(t *testing.T) {
	expectNumber(t, "var a; var b = (a = 4); a + b", 8)
	expectBool(t, "var c; (c = 3) === 3", true)
	expectNumber(t, "var x = 10; x += 5; x -= 3; x *= 2; x /= 4; x", 6)
	expectString(t, `var s = "a"; s += 1; s`, "a1")
	expectNumber(t, "var o = {n: 1}; o.n += 2; o.n", 3)
}

func TestCompoundAssignmentReadsTargetFirst(t *testing.T) {
	expectNumber(t, "var x = 1; x += (x = 5); x", 6)
	expectNumber(t, "var o = {n: 1}; o.n += (o.n = 5); o.n", 6)
	expectString(t, `var s = "a"; s += (s = "b"); s`, "ab")
}

func TestSequence(t *testing.T) {
	expectNumber(t, "var a = 0; (a = 1, a + 1)", 2)
}

// --- Functions and closures ---

func TestCounterClosure(t *testing.T) {
	interp := newTestInterp()
	_, err := interp.Eval(`
		function makeCounter() {
			var count = 0;
			return function () {
				var current = count;
				count = count + 1;
				return current;
			};
		}
		var next = makeCounter();
	`)
	require.NoError(t, err)
	for want := 0; want < 3; want++ {
		v, err := interp.Eval("next()")
		require.NoError(t, err)
		assert.Equal(t, float64(want), v.Number)
	}
}

func TestClosureSharesEnvironment(t *testing.T) {
	expectNumber(t, `
		function pair() {
			var n = 1;
			var o = {};
			o.get = function () { return n; };
			o.set = function (v) { n = v; };
			return o;
		}
		var p = pair();
		p.set(9);
		p.get()
	`, 9)
}

func TestMissingArgumentsAreUndefined(t *testing.T) {
	expectUndefined(t, "function f(a, b) { return b; } f(1)")
	expectNumber(t, "function f(a) { return a; } f(1, 2, 3)", 1)
}

func TestReturnWithoutValue(t *testing.T) {
	expectUndefined(t, "function f() { return; } f()")
	expectUndefined(t, "function f() { 1; } f()")
}

func TestNamedFunctionExpression(t *testing.T) {
	expectNumber(t, `var fact = function self(n) { return n <= 1 ? 1 : n * self(n - 1); }; fact(5)`, 120)
	expectString(t, `var g = function inner() {}; typeof inner`, "undefined")
}

func TestThisBinding(t *testing.T) {
	expectString(t, `var o = {name: "o", who: function () { return this.name; }}; o.who()`, "o")
	expectString(t, `var o = {name: "o", who: function () { return this.name; }}; o["who"]()`, "o")
	expectUndefined(t, `function plain() { return this; } plain()`)
	expectUndefined(t, `this`)
}

// --- Objects ---

func TestObjectLiteral(t *testing.T) {
	expectNumber(t, "var o = {a: 1, b: {c: 2}}; o.b.c", 2)
	expectUndefined(t, "({}).missing")
	expectNumber(t, `var o = {"quoted key": 5}; o["quoted key"]`, 5)
}

func TestNumericKeysAreStrings(t *testing.T) {
	expectString(t, `var o = {}; o[0] = "zero"; o["0"]`, "zero")
	expectString(t, `var o = {}; o["1"] = "one"; o[1]`, "one")
	expectString(t, `function f() {} f[0] = "fn"; f["0"]`, "fn")
	expectString(t, `var o = {}; o[1.5] = "x"; o["1.5"]`, "x")
}

func TestNumericLiteralKeysAreCanonical(t *testing.T) {
	expectString(t, `({1.0: "a"})[1]`, "a")
	expectString(t, `({0x10: "a"})[16]`, "a")
	expectString(t, `({1e3: "a"})[1000]`, "a")
	expectString(t, `({0: "a"})["0"]`, "a")
	expectUndefined(t, `({"1.0": "a"})[1]`)
	expectString(t, `({"1.0": "a"})["1.0"]`, "a")
}

func TestPrototypeLookup(t *testing.T) {
	expectNumber(t, `var p = {x: 1}; var c = Object.create(p); c.x`, 1)
	expectNumber(t, `var p = {x: 1}; var c = Object.create(p); c.x = 2; p.x`, 1)
	expectNumber(t, `var p = {inner: {v: 1}}; var c = Object.create(p); c.inner.v = 5; p.inner.v`, 5)
	expectUndefined(t, `Object.create(null).toString`)
}

func TestStringLength(t *testing.T) {
	expectNumber(t, `"hello".length`, 5)
	expectNumber(t, `"😀".length`, 2)
	expectUndefined(t, `(5).length`)
}

// --- Construction ---

func TestNewPerson(t *testing.T) {
	expectString(t, `
		function Person(name, age) {
			this.name = name;
			this.age = age;
		}
		Person.prototype.toString = function () {
			return "Name: " + this.name + "; Age: " + this.age;
		};
		var luke = new Person("Luke", 24);
		luke + ""
	`, "Name: Luke; Age: 24")
}

func TestNewSharedPrototype(t *testing.T) {
	src := `
		function F() { this.own = 1; }
		var a = new F();
		var b = new F();
		F.prototype.shared = "late";
		a.own = 2;
		b.own + a.shared + b.shared
	`
	expectString(t, src, "1latelate")
}

func TestNewReturnsObjectOverride(t *testing.T) {
	expectNumber(t, `function F() { this.a = 1; return {a: 2}; } new F().a`, 2)
	expectNumber(t, `function F() { this.a = 1; return 5; } new F().a`, 1)
	expectBool(t, `function F() {} var f = new F(); F.prototype.constructor === F && Object.getPrototypeOf(f) === F.prototype`, true)
}

func TestValueOfPreferredForNumbers(t *testing.T) {
	expectNumber(t, `var o = {valueOf: function () { return 4; }, toString: function () { return "x"; }}; o * 2`, 8)
	expectString(t, `var o = {valueOf: function () { return 4; }, toString: function () { return "x"; }}; o + ""`, "x")
}

// --- Errors ---

func TestReferenceError(t *testing.T) {
	err := evalExpectError(t, "missing + 1")
	assert.ErrorIs(t, err, runtime.ErrReference)
	assert.Contains(t, err.Error(), "missing is not defined")
}

func TestNotAFunction(t *testing.T) {
	err := evalExpectError(t, "var o = {}; o.nope()")
	assert.ErrorIs(t, err, runtime.ErrType)
	assert.Contains(t, err.Error(), "o.nope is not a function")

	err = evalExpectError(t, "var n = 1; n()")
	assert.ErrorIs(t, err, runtime.ErrType)
}

func TestNotAConstructor(t *testing.T) {
	err := evalExpectError(t, "var o = {}; new o()")
	assert.ErrorIs(t, err, runtime.ErrType)
	assert.Contains(t, err.Error(), "is not a constructor")
}

func TestPropertyOfUndefined(t *testing.T) {
	err := evalExpectError(t, "var u; u.x")
	assert.ErrorIs(t, err, runtime.ErrType)
	assert.Contains(t, err.Error(), "Cannot read properties of undefined (reading 'x')")

	err = evalExpectError(t, "null.y = 1")
	assert.ErrorIs(t, err, runtime.ErrType)
}

func TestThrow(t *testing.T) {
	err := evalExpectError(t, `throw "bad";`)
	assert.ErrorIs(t, err, runtime.ErrThrown)

	var rerr *runtime.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "bad", rerr.Value.Str)
}

func TestErrorPosition(t *testing.T) {
	err := evalExpectError(t, "var a = 1;\nvar b = 2;\n  a();")
	var rerr *runtime.Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, 3, rerr.Line)
	assert.Equal(t, 3, rerr.Column)
}

func TestErrorAbortsRun(t *testing.T) {
	interp := newTestInterp()
	_, err := interp.Eval(`var reached = false; missing(); reached = true;`)
	require.Error(t, err)
	v, ok := interp.Lookup("reached")
	require.True(t, ok)
	assert.False(t, v.Bool)
}

func TestSyntaxError(t *testing.T) {
	err := evalExpectError(t, "var = ;")
	assert.True(t, strings.HasPrefix(err.Error(), "SyntaxError"), err.Error())

	interp := newTestInterp()
	_, err = interp.EvalNamed("broken.js", "var a = 1;\nif (a {\n")
	var se *parser.SyntaxError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, "broken.js", se.File)
	assert.Equal(t, 2, se.Line)
}

func TestInterrupt(t *testing.T) {
	interp := newTestInterp()
	done := make(chan error, 1)
	go func() {
		_, err := interp.Eval(`function spin(n) { return n === 0 ? 0 : spin(n - 1) + spin(n - 1); } spin(40);`)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	interp.Interrupt()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after Interrupt")
	}

	_, err := interp.Eval("1")
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestMaxCallDepth(t *testing.T) {
	interp := newTestInterp(WithMaxCallDepth(50))
	_, err := interp.Eval(`function down(n) { return down(n + 1); } down(0);`)
	require.Error(t, err)
	assert.ErrorIs(t, err, runtime.ErrRange)
	assert.Contains(t, err.Error(), "Maximum call stack size exceeded")

	v, err := interp.Eval(`function ok(n) { return n === 0 ? 0 : ok(n - 1); } ok(40)`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.Number)
}

// --- Host surface ---

func TestRegisterNative(t *testing.T) {
	interp := newTestInterp()
	var seen []string
	interp.RegisterNative("record", func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		for _, a := range args {
			seen = append(seen, a.ToString())
		}
		return runtime.NewNumber(float64(len(args))), nil
	})
	v, err := interp.Eval(`record("a", 1, true)`)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Number)
	assert.Equal(t, []string{"a", "1", "true"}, seen)
}

func TestInvokeFromHost(t *testing.T) {
	interp := newTestInterp()
	_, err := interp.Eval(`function add(a, b) { return a + b; }`)
	require.NoError(t, err)
	fn, ok := interp.Lookup("add")
	require.True(t, ok)
	v, err := interp.Invoke(fn, runtime.Undefined, []runtime.Value{runtime.NewNumber(2), runtime.NewNumber(3)})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v.Number)

	_, err = interp.Invoke(runtime.NewNumber(1), runtime.Undefined, nil)
	assert.ErrorIs(t, err, runtime.ErrType)
}

func TestInstancesAreIsolated(t *testing.T) {
	a := newTestInterp()
	b := newTestInterp()
	_, err := a.Eval("var only = 1;")
	require.NoError(t, err)
	_, ok := b.Lookup("only")
	assert.False(t, ok)
}

// --- Collection ---

func TestCollectionAtStatementBoundary(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	interp := newTestInterp(WithGCThreshold(4), WithLogger(logger))
	before := interp.Store().Len()

	v, err := interp.Eval(`
		function garbage() { var o = {a: {}, b: {}}; return 1; }
		garbage(); garbage(); garbage();
		function keep() { return {kept: true}; }
		var held = keep();
		held.kept
	`)
	require.NoError(t, err)
	assert.True(t, v.Bool)
	assert.Contains(t, logs.String(), "store collection")

	held, ok := interp.Lookup("held")
	require.True(t, ok)
	require.True(t, interp.Store().Valid(held.Ref))
	assert.True(t, interp.Store().Get(held.Ref, "kept").Bool)

	interp.Collect()
	// two function objects, their prototypes and held remain
	assert.Equal(t, before+5, interp.Store().Len())
}

func TestCollectionKeepsClosures(t *testing.T) {
	interp := newTestInterp(WithGCThreshold(1))
	_, err := interp.Eval(`
		var next = (function () {
			var box = {n: 0};
			return function () { box.n = box.n + 1; return box.n; };
		})();
		var junk = {}; junk = {}; junk = {};
	`)
	require.NoError(t, err)
	interp.Collect()
	v, err := interp.Eval("next() + next()")
	require.NoError(t, err)
	assert.Equal(t, 3.0, v.Number)
}

func TestCollectKeepsRunEnvironment(t *testing.T) {
	interp := newTestInterp()
	env := runtime.NewEnvironment(interp.Global(), runtime.Undefined)
	program, err := parser.ParseProgram("host.js", "var o = {a: 1};")
	require.NoError(t, err)
	_, err = interp.Run(program, env)
	require.NoError(t, err)

	o, ok := env.Lookup("o")
	require.True(t, ok)
	interp.Collect()
	require.True(t, interp.Store().Valid(o.Ref))
	assert.Equal(t, 1.0, interp.Store().Get(o.Ref, "a").Number)

	reused := interp.Store().Create(runtime.NoHandle)
	assert.NotEqual(t, o.Ref, reused)

	interp.Release(env)
	interp.Collect()
	assert.False(t, interp.Store().Valid(o.Ref))
}

func TestCollectionDisabled(t *testing.T) {
	interp := newTestInterp(WithGCThreshold(0))
	before := interp.Store().Len()
	_, err := interp.Eval(`var a = {}; a = {}; a = {};`)
	require.NoError(t, err)
	assert.Equal(t, before+3, interp.Store().Len())
}

// --- Function source ---

func TestFunctionToString(t *testing.T) {
	expectString(t, "function f(a, b) { return a; } f.toString()", "function f(a, b) { return a; }")
	expectString(t, "var g = function (x) { return x; }; g + ''", "function (x) { return x; }")
}
