package testrunner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/example/ack/interpreter"
	"github.com/example/ack/runtime"
)

// AssertCountName is the root binding assert_eq increments on every call.
const AssertCountName = "__assert_eq_call_count"

// installHarness registers assert_eq(actual, expected). It compares with
// strict equality and throws "actual !== expected" on a mismatch.
func installHarness(interp *interpreter.Interpreter) {
	interp.RegisterNative("assert_eq", func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		global := interp.Global()
		calls := 0.0
		if v, ok := global.Lookup(AssertCountName); ok && v.Type == runtime.TypeNumber {
			calls = v.Number
		}
		global.Declare(AssertCountName, runtime.NewNumber(calls+1))

		a, b := runtime.Undefined, runtime.Undefined
		if len(args) > 0 {
			a = args[0]
		}
		if len(args) > 1 {
			b = args[1]
		}
		if runtime.StrictEquals(a, b) {
			return runtime.Undefined, nil
		}

		store := interp.Store()
		msg := fmt.Sprintf("%s !== %s", debugString(store, a), debugString(store, b))
		if a.Type == runtime.TypeString && b.Type == runtime.TypeString {
			msg += "\n" + stringDiff(a.Str, b.Str)
		}
		return runtime.Undefined, runtime.NewThrown(runtime.NewString(msg), msg)
	})
}

func assertionCount(interp *interpreter.Interpreter) int {
	v, ok := interp.Lookup(AssertCountName)
	if !ok || v.Type != runtime.TypeNumber {
		return 0
	}
	return int(v.Number)
}

func debugString(store *runtime.Store, v runtime.Value) string {
	if v.Type == runtime.TypeString {
		return strconv.Quote(v.Str)
	}
	return store.Inspect(v)
}

// stringDiff marks deletions as [-text-] and insertions as {+text+}.
func stringDiff(actual, expected string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(actual, expected, false))

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}
