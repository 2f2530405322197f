package runtime

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ValueType represents the type of a runtime value.
type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
)

func (t ValueType) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Handle addresses a HeapObject in a Store. The zero Handle means "no object".
type Handle uint32

// NoHandle is the absent prototype link.
const NoHandle Handle = 0

// Value is a tagged runtime value. It is copied by value; an object value
// carries a non-owning Handle into the Store. The zero Value is Undefined.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Str    string
	Ref    Handle
}

var (
	Undefined = Value{}
	Null      = Value{Type: TypeNull}
	True      = Value{Type: TypeBoolean, Bool: true}
	False     = Value{Type: TypeBoolean}
	NaN       = Value{Type: TypeNumber, Number: math.NaN()}
)

func NewNumber(n float64) Value {
	return Value{Type: TypeNumber, Number: n}
}

func NewString(s string) Value {
	return Value{Type: TypeString, Str: s}
}

func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

func NewObject(h Handle) Value {
	return Value{Type: TypeObject, Ref: h}
}

func (v Value) IsUndefined() bool { return v.Type == TypeUndefined }
func (v Value) IsNullish() bool   { return v.Type == TypeUndefined || v.Type == TypeNull }
func (v Value) IsObject() bool    { return v.Type == TypeObject }

// ToBoolean is false for undefined, null, +0, -0, NaN and "", true otherwise.
// Every object is truthy.
func (v Value) ToBoolean() bool {
	switch v.Type {
	case TypeBoolean:
		return v.Bool
	case TypeNumber:
		return v.Number != 0 && !math.IsNaN(v.Number)
	case TypeString:
		return v.Str != ""
	case TypeObject:
		return true
	default:
		return false
	}
}

// ToNumber converts a primitive. Objects must go through Coercer.ToNumber;
// here they yield NaN.
func (v Value) ToNumber() float64 {
	switch v.Type {
	case TypeNull:
		return 0
	case TypeBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case TypeNumber:
		return v.Number
	case TypeString:
		return StringToNumber(v.Str)
	default:
		return math.NaN()
	}
}

// ToString converts a primitive. Objects render as "[object Object]"; use
// Coercer.ToString to honour toString/valueOf.
func (v Value) ToString() string {
	switch v.Type {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeNumber:
		return NumberToString(v.Number)
	case TypeString:
		return v.Str
	default:
		return "[object Object]"
	}
}

// StringToNumber parses a trimmed decimal literal. The empty string is 0 and
// anything unparseable is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	// ParseFloat accepts forms such as "inf", "0x1p3" and "1_0" that are not
	// numeric literals here.
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return n
}

// NumberToString renders n with the shortest round-tripping digits, using
// exponent notation outside [1e-7, 1e21).
func NumberToString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	case n < 0:
		return "-" + NumberToString(-n)
	}

	// "d.ddde±XX": k significant digits and decimal exponent e = n-1.
	formatted := strconv.FormatFloat(n, 'e', -1, 64)
	mantissa, expPart, _ := strings.Cut(formatted, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, _ := strconv.Atoi(expPart)
	k := len(digits)
	point := exp + 1

	switch {
	case k <= point && point <= 21:
		return digits + strings.Repeat("0", point-k)
	case 0 < point && point <= 21:
		return digits[:point] + "." + digits[point:]
	case -6 < point && point <= 0:
		return "0." + strings.Repeat("0", -point) + digits
	}

	sign := "+"
	e := point - 1
	if e < 0 {
		sign = "-"
		e = -e
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(e)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(e)
}

// StrictEquals implements ===. Values of different types are never equal,
// objects compare by handle and NaN is unequal to itself.
func StrictEquals(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.Bool == b.Bool
	case TypeNumber:
		return a.Number == b.Number
	case TypeString:
		return a.Str == b.Str
	case TypeObject:
		return a.Ref == b.Ref
	default:
		return false
	}
}
