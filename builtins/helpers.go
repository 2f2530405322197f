package builtins

import (
	"io"

	"github.com/example/ack/runtime"
)

// Host is what the built-ins need from an interpreter.
type Host interface {
	Store() *runtime.Store
	Global() *runtime.Environment
	Coercer() *runtime.Coercer
	Invoke(fn, this runtime.Value, args []runtime.Value) (runtime.Value, error)
	Construct(fn runtime.Value, args []runtime.Value) (runtime.Value, error)
}

// realm carries the per-interpreter state shared by the built-ins.
type realm struct {
	host   Host
	store  *runtime.Store
	coerce *runtime.Coercer
	stdout io.Writer

	errorProto runtime.Handle
}

func (r *realm) newFunc(name string, fn runtime.NativeFunc) runtime.Handle {
	return r.store.NewNative(name, fn)
}

// newConstructor creates a native usable with new. Its prototype property
// is proto and proto.constructor points back at it.
func (r *realm) newConstructor(name string, call, construct runtime.NativeFunc, proto runtime.Handle) runtime.Handle {
	h := r.store.NewFunction(&runtime.Function{Name: name, Native: call, Construct: construct})
	r.store.Set(h, "prototype", runtime.NewObject(proto))
	r.store.Set(proto, "constructor", runtime.NewObject(h))
	return h
}

func (r *realm) setMethod(obj runtime.Handle, name string, fn runtime.NativeFunc) {
	r.store.Set(obj, name, runtime.NewObject(r.newFunc(name, fn)))
}

func (r *realm) declare(name string, v runtime.Value) {
	r.host.Global().Declare(name, v)
}

// arrayLike builds {"0": v0, ..., "length": n}.
func (r *realm) arrayLike(values []runtime.Value) runtime.Value {
	h := r.store.Create(r.store.ObjectPrototype)
	for i, v := range values {
		r.store.Set(h, runtime.NumberToString(float64(i)), v)
	}
	r.store.Set(h, "length", runtime.NewNumber(float64(len(values))))
	return runtime.NewObject(h)
}

// fromArrayLike reads the indexed elements of an array-like object.
func (r *realm) fromArrayLike(v runtime.Value) ([]runtime.Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, runtime.NewTypeError("CreateListFromArrayLike called on non-object")
	}
	n, err := r.coerce.ToNumber(r.store.Get(v.Ref, "length"))
	if err != nil {
		return nil, err
	}
	if n != n || n <= 0 {
		return nil, nil
	}
	out := make([]runtime.Value, 0, int(n))
	for i := 0; i < int(n); i++ {
		out = append(out, r.store.Get(v.Ref, runtime.NumberToString(float64(i))))
	}
	return out, nil
}

func argAt(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined
}
