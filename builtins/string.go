package builtins

import (
	"unicode/utf16"

	"github.com/example/ack/runtime"
)

func (r *realm) createStringFunction() runtime.Value {
	fn := r.newFunc("String", r.stringCall)
	r.setMethod(fn, "fromCharCode", r.stringFromCharCode)
	return runtime.NewObject(fn)
}

func (r *realm) stringCall(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewString(""), nil
	}
	s, err := r.coerce.ToString(args[0])
	if err != nil {
		return runtime.Undefined, err
	}
	return runtime.NewString(s), nil
}

func (r *realm) stringFromCharCode(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	units := make([]uint16, len(args))
	for i, a := range args {
		n, err := r.coerce.ToNumber(a)
		if err != nil {
			return runtime.Undefined, err
		}
		if n != n {
			n = 0
		}
		units[i] = uint16(int64(n))
	}
	return runtime.NewString(string(utf16.Decode(units))), nil
}
