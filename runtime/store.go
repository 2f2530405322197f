package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Object is a heap object: an insertion-ordered property table, an optional
// prototype link and, for functions, a callable slot.
type Object struct {
	props  *linkedhashmap.Map
	proto  Handle
	Fn     *Function
	marked bool
}

// Store owns every heap object. Objects are addressed by Handle; slot 0 is
// never used so the zero Handle can mean "none".
type Store struct {
	objects []*Object
	free    []Handle
	live    int
	allocs  int

	// Intrinsics, always reachable.
	ObjectPrototype   Handle
	FunctionPrototype Handle
	pinned            []Handle
}

// NewStore creates a store holding the two intrinsic prototypes.
func NewStore() *Store {
	s := &Store{objects: []*Object{nil}}
	s.ObjectPrototype = s.Create(NoHandle)
	s.FunctionPrototype = s.Create(s.ObjectPrototype)
	s.object(s.FunctionPrototype).Fn = &Function{
		Name:   "",
		Native: func(Value, []Value) (Value, error) { return Undefined, nil },
	}
	s.allocs = 0
	return s
}

func (s *Store) alloc(obj *Object) Handle {
	s.live++
	s.allocs++
	if n := len(s.free); n > 0 {
		h := s.free[n-1]
		s.free = s.free[:n-1]
		s.objects[h] = obj
		return h
	}
	s.objects = append(s.objects, obj)
	slot, err := safecast.Conv[uint32](len(s.objects) - 1)
	if err != nil {
		panic(fmt.Errorf("object store overflow: %w", err))
	}
	return Handle(slot)
}

func (s *Store) object(h Handle) *Object {
	if h == NoHandle || int(h) >= len(s.objects) {
		return nil
	}
	return s.objects[h]
}

// Valid reports whether h addresses a live object.
func (s *Store) Valid(h Handle) bool {
	return s.object(h) != nil
}

// Create allocates an empty object with the given prototype (NoHandle for
// none).
func (s *Store) Create(proto Handle) Handle {
	return s.alloc(&Object{props: linkedhashmap.New(), proto: proto})
}

// NewFunction allocates a function object for fn. Script functions also get
// an own "prototype" object whose "constructor" points back at the function.
func (s *Store) NewFunction(fn *Function) Handle {
	h := s.alloc(&Object{props: linkedhashmap.New(), proto: s.FunctionPrototype, Fn: fn})
	if !fn.IsNative() {
		proto := s.Create(s.ObjectPrototype)
		s.Set(proto, "constructor", NewObject(h))
		s.Set(h, "prototype", NewObject(proto))
	}
	return h
}

// NewNative allocates a host function object.
func (s *Store) NewNative(name string, call NativeFunc) Handle {
	return s.NewFunction(&Function{Name: name, Native: call})
}

// Get reads key from h, walking the prototype chain. Missing keys read as
// Undefined.
func (s *Store) Get(h Handle, key string) Value {
	for obj := s.object(h); obj != nil; obj = s.object(obj.proto) {
		if v, ok := obj.props.Get(key); ok {
			return v.(Value)
		}
	}
	return Undefined
}

// GetOwn reads key from h's own table only.
func (s *Store) GetOwn(h Handle, key string) (Value, bool) {
	obj := s.object(h)
	if obj == nil {
		return Undefined, false
	}
	v, ok := obj.props.Get(key)
	if !ok {
		return Undefined, false
	}
	return v.(Value), true
}

// Set writes key into h's own table. Inherited slots are shadowed, never
// overwritten.
func (s *Store) Set(h Handle, key string, v Value) {
	if obj := s.object(h); obj != nil {
		obj.props.Put(key, v)
	}
}

// Delete removes an own property and reports whether it existed.
func (s *Store) Delete(h Handle, key string) bool {
	obj := s.object(h)
	if obj == nil {
		return false
	}
	if _, ok := obj.props.Get(key); !ok {
		return false
	}
	obj.props.Remove(key)
	return true
}

func (s *Store) HasOwn(h Handle, key string) bool {
	_, ok := s.GetOwn(h, key)
	return ok
}

// Keys returns h's own keys in insertion order.
func (s *Store) Keys(h Handle) []string {
	obj := s.object(h)
	if obj == nil {
		return nil
	}
	keys := make([]string, 0, obj.props.Size())
	it := obj.props.Iterator()
	for it.Next() {
		keys = append(keys, it.Key().(string))
	}
	return keys
}

// Proto returns h's prototype link, NoHandle when it has none.
func (s *Store) Proto(h Handle) Handle {
	if obj := s.object(h); obj != nil {
		return obj.proto
	}
	return NoHandle
}

// SetProto relinks h. A link that would make h its own ancestor is rejected.
func (s *Store) SetProto(h, proto Handle) error {
	obj := s.object(h)
	if obj == nil {
		return NewTypeError("invalid object")
	}
	for p := proto; p != NoHandle; p = s.Proto(p) {
		if p == h {
			return NewTypeError("Cyclic __proto__ value")
		}
	}
	obj.proto = proto
	return nil
}

// IsPrototypeOf reports whether proto appears on h's prototype chain.
func (s *Store) IsPrototypeOf(proto, h Handle) bool {
	for p := s.Proto(h); p != NoHandle; p = s.Proto(p) {
		if p == proto {
			return true
		}
	}
	return false
}

// Function returns h's callable slot, or nil.
func (s *Store) Function(h Handle) *Function {
	if obj := s.object(h); obj != nil {
		return obj.Fn
	}
	return nil
}

// Callable returns the callable slot of v when v is a function object.
func (s *Store) Callable(v Value) (*Function, bool) {
	if v.Type != TypeObject {
		return nil, false
	}
	fn := s.Function(v.Ref)
	return fn, fn != nil
}

// TypeOf implements the typeof operator.
func (s *Store) TypeOf(v Value) string {
	switch v.Type {
	case TypeNull:
		return "object"
	case TypeObject:
		if s.Function(v.Ref) != nil {
			return "function"
		}
		return "object"
	default:
		return v.Type.String()
	}
}

// Len is the number of live objects.
func (s *Store) Len() int {
	return s.live
}

// Allocations is the number of objects created since the last Collect.
func (s *Store) Allocations() int {
	return s.allocs
}

// Pin keeps h alive across collections. Host code pins objects it holds
// outside the store, such as prototypes captured by native functions.
func (s *Store) Pin(h Handle) {
	if s.Valid(h) {
		s.pinned = append(s.pinned, h)
	}
}

// Collect frees every object not reachable from the intrinsics, pinned
// handles, the given environments (with their outer chains) or the given
// values. Function objects keep their captured environment alive. It returns
// the number of objects freed.
func (s *Store) Collect(envs []*Environment, values ...Value) int {
	var work []Handle
	seenEnv := make(map[*Environment]bool)

	markValue := func(v Value) {
		if v.Type == TypeObject {
			work = append(work, v.Ref)
		}
	}
	var markEnv func(env *Environment)
	markEnv = func(env *Environment) {
		for ; env != nil && !seenEnv[env]; env = env.outer {
			seenEnv[env] = true
			markValue(env.this)
			for _, v := range env.vars {
				markValue(v)
			}
		}
	}

	work = append(work, s.ObjectPrototype, s.FunctionPrototype)
	work = append(work, s.pinned...)
	for _, env := range envs {
		markEnv(env)
	}
	for _, v := range values {
		markValue(v)
	}

	for len(work) > 0 {
		h := work[len(work)-1]
		work = work[:len(work)-1]
		obj := s.object(h)
		if obj == nil || obj.marked {
			continue
		}
		obj.marked = true
		if obj.proto != NoHandle {
			work = append(work, obj.proto)
		}
		for _, v := range obj.props.Values() {
			markValue(v.(Value))
		}
		if obj.Fn != nil {
			if obj.Fn.Env != nil {
				markEnv(obj.Fn.Env)
			}
			for _, v := range obj.Fn.Bound {
				markValue(v)
			}
		}
	}

	freed := 0
	for i := 1; i < len(s.objects); i++ {
		obj := s.objects[i]
		if obj == nil {
			continue
		}
		if obj.marked {
			obj.marked = false
			continue
		}
		s.objects[i] = nil
		s.free = append(s.free, Handle(i))
		freed++
	}
	s.live -= freed
	s.allocs = 0
	return freed
}

// Inspect renders v for diagnostics: numbers and strings as-is, objects as
// {"key": value} and functions as function name().
func (s *Store) Inspect(v Value) string {
	var sb strings.Builder
	s.inspect(&sb, v, make(map[Handle]bool))
	return sb.String()
}

func (s *Store) inspect(sb *strings.Builder, v Value, seen map[Handle]bool) {
	if v.Type != TypeObject {
		sb.WriteString(v.ToString())
		return
	}
	if fn := s.Function(v.Ref); fn != nil {
		sb.WriteString("function " + fn.Name + "()")
		return
	}
	if seen[v.Ref] {
		sb.WriteString("[Circular]")
		return
	}
	seen[v.Ref] = true
	defer delete(seen, v.Ref)

	keys := s.Keys(v.Ref)
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		val, _ := s.GetOwn(v.Ref, k)
		s.inspect(sb, val, seen)
	}
	sb.WriteString("}")
}

// Handles returns the live handles in ascending order.
func (s *Store) Handles() []Handle {
	out := make([]Handle, 0, s.live)
	for i, obj := range s.objects {
		if obj != nil {
			out = append(out, Handle(i))
		}
	}
	return out
}
