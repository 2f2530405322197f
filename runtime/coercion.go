package runtime

import (
	"math"
)

// Invoker calls a function value. The interpreter implements it so coercion
// can run script-defined toString and valueOf methods.
type Invoker interface {
	Invoke(fn Value, this Value, args []Value) (Value, error)
}

// Hint selects the method order of ToPrimitive.
type Hint uint8

const (
	HintDefault Hint = iota
	HintNumber
	HintString
)

// Coercer implements the conversions that may call back into script code.
type Coercer struct {
	Store   *Store
	Invoker Invoker
}

// ToPrimitive converts an object by calling its toString then valueOf (the
// other way round for HintNumber), using the first method that returns a
// primitive. An object with neither method renders as "[object Object]"; one
// whose methods only return objects is a TypeError.
func (c *Coercer) ToPrimitive(v Value, hint Hint) (Value, error) {
	if v.Type != TypeObject {
		return v, nil
	}
	order := [2]string{"toString", "valueOf"}
	if hint == HintNumber {
		order = [2]string{"valueOf", "toString"}
	}
	found := false
	for _, name := range order {
		method := c.Store.Get(v.Ref, name)
		if _, ok := c.Store.Callable(method); !ok {
			continue
		}
		found = true
		res, err := c.Invoker.Invoke(method, v, nil)
		if err != nil {
			return Undefined, err
		}
		if res.Type != TypeObject {
			return res, nil
		}
	}
	if !found {
		return NewString("[object Object]"), nil
	}
	return Undefined, NewTypeError("Cannot convert object to primitive value")
}

func (c *Coercer) ToString(v Value) (string, error) {
	p, err := c.ToPrimitive(v, HintString)
	if err != nil {
		return "", err
	}
	return p.ToString(), nil
}

func (c *Coercer) ToNumber(v Value) (float64, error) {
	p, err := c.ToPrimitive(v, HintNumber)
	if err != nil {
		return 0, err
	}
	return p.ToNumber(), nil
}

// ToPropertyKey normalizes a key: numbers use their canonical string form,
// so o[1] and o["1"] name the same property.
func (c *Coercer) ToPropertyKey(v Value) (string, error) {
	return c.ToString(v)
}

// Add implements binary +. A string or object operand makes it string
// concatenation; otherwise both sides are added as numbers.
func (c *Coercer) Add(a, b Value) (Value, error) {
	if a.Type == TypeNumber && b.Type == TypeNumber {
		return NewNumber(a.Number + b.Number), nil
	}
	if isStringish(a) || isStringish(b) {
		left, err := c.ToString(a)
		if err != nil {
			return Undefined, err
		}
		right, err := c.ToString(b)
		if err != nil {
			return Undefined, err
		}
		return NewString(left + right), nil
	}
	return NewNumber(a.ToNumber() + b.ToNumber()), nil
}

func isStringish(v Value) bool {
	return v.Type == TypeString || v.Type == TypeObject
}

// Arithmetic applies -, *, / or % after numeric coercion.
func (c *Coercer) Arithmetic(op string, a, b Value) (Value, error) {
	x, err := c.ToNumber(a)
	if err != nil {
		return Undefined, err
	}
	y, err := c.ToNumber(b)
	if err != nil {
		return Undefined, err
	}
	switch op {
	case "-":
		return NewNumber(x - y), nil
	case "*":
		return NewNumber(x * y), nil
	case "/":
		return NewNumber(x / y), nil
	case "%":
		return NewNumber(math.Mod(x, y)), nil
	default:
		return Undefined, NewTypeError("unknown arithmetic operator %s", op)
	}
}

// LooseEquals implements ==.
func (c *Coercer) LooseEquals(a, b Value) (bool, error) {
	if a.Type == b.Type {
		return StrictEquals(a, b), nil
	}
	if a.IsNullish() && b.IsNullish() {
		return true, nil
	}
	if a.IsNullish() || b.IsNullish() {
		return false, nil
	}
	if a.Type == TypeObject {
		p, err := c.ToPrimitive(a, HintDefault)
		if err != nil {
			return false, err
		}
		return c.LooseEquals(p, b)
	}
	if b.Type == TypeObject {
		p, err := c.ToPrimitive(b, HintDefault)
		if err != nil {
			return false, err
		}
		return c.LooseEquals(a, p)
	}
	return a.ToNumber() == b.ToNumber(), nil
}

// Compare implements <, <=, > and >=. Two strings compare by code units,
// anything else numerically; NaN makes every comparison false.
func (c *Coercer) Compare(op string, a, b Value) (bool, error) {
	pa, err := c.ToPrimitive(a, HintNumber)
	if err != nil {
		return false, err
	}
	pb, err := c.ToPrimitive(b, HintNumber)
	if err != nil {
		return false, err
	}
	if pa.Type == TypeString && pb.Type == TypeString {
		switch op {
		case "<":
			return pa.Str < pb.Str, nil
		case "<=":
			return pa.Str <= pb.Str, nil
		case ">":
			return pa.Str > pb.Str, nil
		default:
			return pa.Str >= pb.Str, nil
		}
	}
	x, y := pa.ToNumber(), pb.ToNumber()
	switch op {
	case "<":
		return x < y, nil
	case "<=":
		return x <= y, nil
	case ">":
		return x > y, nil
	default:
		return x >= y, nil
	}
}
