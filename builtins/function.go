package builtins

import (
	"github.com/example/ack/runtime"
)

func (r *realm) createFunctionConstructor() runtime.Value {
	proto := r.store.FunctionPrototype

	r.setMethod(proto, "call", r.functionCall)
	r.setMethod(proto, "apply", r.functionApply)
	r.setMethod(proto, "bind", r.functionBind)
	r.setMethod(proto, "toString", r.functionToString)

	ctor := r.newConstructor("Function", r.functionConstructorCall, r.functionConstructorCall, proto)
	return runtime.NewObject(ctor)
}

func (r *realm) functionConstructorCall(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return runtime.Undefined, runtime.NewTypeError("Function constructor is not supported")
}

func (r *realm) callable(this runtime.Value, method string) (*runtime.Function, error) {
	fn, ok := r.store.Callable(this)
	if !ok {
		return nil, runtime.NewTypeError("Function.prototype.%s called on non-function", method)
	}
	return fn, nil
}

func (r *realm) functionCall(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if _, err := r.callable(this, "call"); err != nil {
		return runtime.Undefined, err
	}
	var rest []runtime.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	return r.host.Invoke(this, argAt(args, 0), rest)
}

func (r *realm) functionApply(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if _, err := r.callable(this, "apply"); err != nil {
		return runtime.Undefined, err
	}
	callArgs, err := r.fromArrayLike(argAt(args, 1))
	if err != nil {
		return runtime.Undefined, err
	}
	return r.host.Invoke(this, argAt(args, 0), callArgs)
}

func (r *realm) functionBind(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	target, err := r.callable(this, "bind")
	if err != nil {
		return runtime.Undefined, err
	}
	thisArg := argAt(args, 0)
	var boundArgs []runtime.Value
	if len(args) > 1 {
		boundArgs = append(boundArgs, args[1:]...)
	}
	targetVal := this
	call := func(_ runtime.Value, callArgs []runtime.Value) (runtime.Value, error) {
		all := make([]runtime.Value, 0, len(boundArgs)+len(callArgs))
		all = append(all, boundArgs...)
		all = append(all, callArgs...)
		return r.host.Invoke(targetVal, thisArg, all)
	}
	bound := &runtime.Function{
		Name:   "bound " + target.Name,
		Native: call,
		Bound:  append([]runtime.Value{targetVal, thisArg}, boundArgs...),
	}
	return runtime.NewObject(r.store.NewFunction(bound)), nil
}

func (r *realm) functionToString(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	fn, err := r.callable(this, "toString")
	if err != nil {
		return runtime.Undefined, err
	}
	return runtime.NewString(fn.SourceText()), nil
}
