package builtins

import (
	"github.com/example/ack/runtime"
)

func (r *realm) registerErrors() {
	r.errorProto = r.store.Create(r.store.ObjectPrototype)
	r.store.Set(r.errorProto, "name", runtime.NewString("Error"))
	r.store.Set(r.errorProto, "message", runtime.NewString(""))
	r.setMethod(r.errorProto, "toString", r.errorToString)
	r.declare("Error", runtime.NewObject(r.createErrorType("Error", r.errorProto)))

	for _, name := range []string{"TypeError", "ReferenceError", "RangeError", "SyntaxError"} {
		proto := r.store.Create(r.errorProto)
		r.store.Set(proto, "name", runtime.NewString(name))
		r.store.Set(proto, "message", runtime.NewString(""))
		r.declare(name, runtime.NewObject(r.createErrorType(name, proto)))
	}
}

// createErrorType returns a constructor whose instances inherit from proto.
// Calling it without new behaves the same as with new.
func (r *realm) createErrorType(name string, proto runtime.Handle) runtime.Handle {
	r.store.Pin(proto)
	construct := func(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.makeError(proto, argAt(args, 0))
	}
	return r.newConstructor(name, construct, construct, proto)
}

func (r *realm) makeError(proto runtime.Handle, message runtime.Value) (runtime.Value, error) {
	obj := r.store.Create(proto)
	if !message.IsUndefined() {
		msg, err := r.coerce.ToString(message)
		if err != nil {
			return runtime.Undefined, err
		}
		r.store.Set(obj, "message", runtime.NewString(msg))
	}
	return runtime.NewObject(obj), nil
}

func (r *realm) errorToString(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if !this.IsObject() {
		return runtime.Undefined, runtime.NewTypeError("Error.prototype.toString requires that 'this' be an Object")
	}
	name, msg := "Error", ""
	if v := r.store.Get(this.Ref, "name"); !v.IsUndefined() {
		s, err := r.coerce.ToString(v)
		if err != nil {
			return runtime.Undefined, err
		}
		name = s
	}
	if v := r.store.Get(this.Ref, "message"); !v.IsUndefined() {
		s, err := r.coerce.ToString(v)
		if err != nil {
			return runtime.Undefined, err
		}
		msg = s
	}
	switch {
	case name == "":
		return runtime.NewString(msg), nil
	case msg == "":
		return runtime.NewString(name), nil
	}
	return runtime.NewString(name + ": " + msg), nil
}
