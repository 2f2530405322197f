package builtins

import (
	"github.com/example/ack/runtime"
)

func (r *realm) createObjectConstructor() runtime.Value {
	proto := r.store.ObjectPrototype

	// Object.prototype methods
	r.setMethod(proto, "hasOwnProperty", r.objectProtoHasOwnProperty)
	r.setMethod(proto, "toString", r.objectProtoToString)
	r.setMethod(proto, "valueOf", r.objectProtoValueOf)
	r.setMethod(proto, "isPrototypeOf", r.objectProtoIsPrototypeOf)

	// Object constructor
	ctor := r.newConstructor("Object", r.objectConstructorCall, r.objectConstructorCall, proto)
	r.setMethod(ctor, "create", r.objectCreate)
	r.setMethod(ctor, "getPrototypeOf", r.objectGetPrototypeOf)
	r.setMethod(ctor, "setPrototypeOf", r.objectSetPrototypeOf)
	r.setMethod(ctor, "keys", r.objectKeys)

	return runtime.NewObject(ctor)
}

func (r *realm) objectConstructorCall(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	arg := argAt(args, 0)
	if arg.IsObject() {
		return arg, nil
	}
	return runtime.NewObject(r.store.Create(r.store.ObjectPrototype)), nil
}

func (r *realm) objectProtoHasOwnProperty(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	key, err := r.coerce.ToPropertyKey(argAt(args, 0))
	if err != nil {
		return runtime.Undefined, err
	}
	if !this.IsObject() {
		return runtime.False, nil
	}
	return runtime.NewBool(r.store.HasOwn(this.Ref, key)), nil
}

func (r *realm) objectProtoToString(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	switch this.Type {
	case runtime.TypeUndefined:
		return runtime.NewString("[object Undefined]"), nil
	case runtime.TypeNull:
		return runtime.NewString("[object Null]"), nil
	}
	tag := "Object"
	switch this.Type {
	case runtime.TypeBoolean:
		tag = "Boolean"
	case runtime.TypeNumber:
		tag = "Number"
	case runtime.TypeString:
		tag = "String"
	case runtime.TypeObject:
		if r.store.Function(this.Ref) != nil {
			tag = "Function"
		} else if r.store.IsPrototypeOf(r.errorProto, this.Ref) {
			tag = "Error"
		}
	}
	return runtime.NewString("[object " + tag + "]"), nil
}

func (r *realm) objectProtoValueOf(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return this, nil
}

func (r *realm) objectProtoIsPrototypeOf(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	target := argAt(args, 0)
	if !this.IsObject() || !target.IsObject() {
		return runtime.False, nil
	}
	return runtime.NewBool(r.store.IsPrototypeOf(this.Ref, target.Ref)), nil
}

// protoArg accepts an object or null as a prototype.
func protoArg(v runtime.Value) (runtime.Handle, error) {
	switch v.Type {
	case runtime.TypeObject:
		return v.Ref, nil
	case runtime.TypeNull:
		return runtime.NoHandle, nil
	}
	return runtime.NoHandle, runtime.NewTypeError("Object prototype may only be an Object or null: %s", v.ToString())
}

func (r *realm) objectCreate(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	proto, err := protoArg(argAt(args, 0))
	if err != nil {
		return runtime.Undefined, err
	}
	obj := r.store.Create(proto)
	if props := argAt(args, 1); props.IsObject() {
		for _, key := range r.store.Keys(props.Ref) {
			desc := r.store.Get(props.Ref, key)
			if desc.IsObject() {
				r.store.Set(obj, key, r.store.Get(desc.Ref, "value"))
			}
		}
	}
	return runtime.NewObject(obj), nil
}

func (r *realm) objectGetPrototypeOf(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj := argAt(args, 0)
	if obj.IsNullish() {
		return runtime.Undefined, runtime.NewTypeError("Cannot convert undefined or null to object")
	}
	if !obj.IsObject() {
		return runtime.Null, nil
	}
	proto := r.store.Proto(obj.Ref)
	if proto == runtime.NoHandle {
		return runtime.Null, nil
	}
	return runtime.NewObject(proto), nil
}

func (r *realm) objectSetPrototypeOf(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj := argAt(args, 0)
	if obj.IsNullish() {
		return runtime.Undefined, runtime.NewTypeError("Object.setPrototypeOf called on null or undefined")
	}
	proto, err := protoArg(argAt(args, 1))
	if err != nil {
		return runtime.Undefined, err
	}
	if !obj.IsObject() {
		return obj, nil
	}
	if err := r.store.SetProto(obj.Ref, proto); err != nil {
		return runtime.Undefined, err
	}
	return obj, nil
}

func (r *realm) objectKeys(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	obj := argAt(args, 0)
	if obj.IsNullish() {
		return runtime.Undefined, runtime.NewTypeError("Cannot convert undefined or null to object")
	}
	var keys []runtime.Value
	if obj.IsObject() {
		for _, k := range r.store.Keys(obj.Ref) {
			keys = append(keys, runtime.NewString(k))
		}
	}
	return r.arrayLike(keys), nil
}
