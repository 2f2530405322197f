package builtins

import (
	"github.com/example/ack/runtime"
)

func (r *realm) createBooleanFunction() runtime.Value {
	return runtime.NewObject(r.newFunc("Boolean", booleanCall))
}

func booleanCall(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return runtime.NewBool(argAt(args, 0).ToBoolean()), nil
}
