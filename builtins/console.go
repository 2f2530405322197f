package builtins

import (
	"fmt"
	"strings"

	"github.com/example/ack/runtime"
)

func (r *realm) createConsoleObject() runtime.Value {
	console := r.store.Create(r.store.ObjectPrototype)

	r.setMethod(console, "log", r.consoleLog)
	r.setMethod(console, "info", r.consoleLog)
	r.setMethod(console, "debug", r.consoleLog)

	return runtime.NewObject(console)
}

// formatArgs joins the arguments with spaces. Strings print raw, everything
// else goes through the store's inspector.
func (r *realm) formatArgs(args []runtime.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = r.store.Inspect(a)
	}
	return strings.Join(parts, " ")
}

func (r *realm) consoleLog(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	fmt.Fprintln(r.stdout, r.formatArgs(args))
	return runtime.Undefined, nil
}
