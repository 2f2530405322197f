package builtins

import (
	"math"

	"github.com/example/ack/runtime"
)

func (r *realm) createNumberFunction() runtime.Value {
	fn := r.newFunc("Number", r.numberCall)

	r.setMethod(fn, "isInteger", numberIsInteger)
	r.setMethod(fn, "isFinite", numberIsFinite)
	r.setMethod(fn, "isNaN", numberIsNaN)
	r.setMethod(fn, "parseInt", r.globalParseInt)
	r.setMethod(fn, "parseFloat", r.globalParseFloat)

	r.store.Set(fn, "MAX_SAFE_INTEGER", runtime.NewNumber(9007199254740991))
	r.store.Set(fn, "MIN_SAFE_INTEGER", runtime.NewNumber(-9007199254740991))
	r.store.Set(fn, "MAX_VALUE", runtime.NewNumber(math.MaxFloat64))
	r.store.Set(fn, "MIN_VALUE", runtime.NewNumber(math.SmallestNonzeroFloat64))
	r.store.Set(fn, "NaN", runtime.NaN)
	r.store.Set(fn, "POSITIVE_INFINITY", runtime.NewNumber(math.Inf(1)))
	r.store.Set(fn, "NEGATIVE_INFINITY", runtime.NewNumber(math.Inf(-1)))

	return runtime.NewObject(fn)
}

func (r *realm) numberCall(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewNumber(0), nil
	}
	n, err := r.coerce.ToNumber(args[0])
	if err != nil {
		return runtime.Undefined, err
	}
	return runtime.NewNumber(n), nil
}

func numberIsInteger(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	v := argAt(args, 0)
	if v.Type != runtime.TypeNumber || math.IsInf(v.Number, 0) {
		return runtime.False, nil
	}
	return runtime.NewBool(v.Number == math.Trunc(v.Number)), nil
}

func numberIsFinite(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	v := argAt(args, 0)
	return runtime.NewBool(v.Type == runtime.TypeNumber && !math.IsNaN(v.Number) && !math.IsInf(v.Number, 0)), nil
}

func numberIsNaN(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	v := argAt(args, 0)
	return runtime.NewBool(v.Type == runtime.TypeNumber && math.IsNaN(v.Number)), nil
}
