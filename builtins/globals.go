package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/example/ack/runtime"
)

func (r *realm) registerGlobals() {
	r.declare("undefined", runtime.Undefined)
	r.declare("NaN", runtime.NaN)
	r.declare("Infinity", runtime.NewNumber(math.Inf(1)))

	r.declareFunc("parseInt", r.globalParseInt)
	r.declareFunc("parseFloat", r.globalParseFloat)
	r.declareFunc("isNaN", r.globalIsNaN)
	r.declareFunc("isFinite", r.globalIsFinite)
}

func (r *realm) declareFunc(name string, fn runtime.NativeFunc) {
	r.declare(name, runtime.NewObject(r.newFunc(name, fn)))
}

func (r *realm) globalParseInt(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	str, err := r.coerce.ToString(argAt(args, 0))
	if err != nil {
		return runtime.Undefined, err
	}
	s := strings.TrimSpace(str)
	radix := 0
	if rv := argAt(args, 1); !rv.IsUndefined() {
		n, err := r.coerce.ToNumber(rv)
		if err != nil {
			return runtime.Undefined, err
		}
		if !math.IsNaN(n) && !math.IsInf(n, 0) {
			radix = int(n)
		}
	}
	if s == "" || radix != 0 && (radix < 2 || radix > 36) {
		return runtime.NaN, nil
	}
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	if (radix == 16 || radix == 0) && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		radix = 16
		s = s[2:]
	}
	if radix == 0 {
		radix = 10
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return runtime.NaN, nil
	}
	var n float64
	if v, err := strconv.ParseInt(s[:end], radix, 64); err == nil {
		n = float64(v)
	} else {
		for i := 0; i < end; i++ {
			n = n*float64(radix) + float64(digitValue(s[i]))
		}
	}
	if neg {
		n = -n
	}
	return runtime.NewNumber(n), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}

func (r *realm) globalParseFloat(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	str, err := r.coerce.ToString(argAt(args, 0))
	if err != nil {
		return runtime.Undefined, err
	}
	s := strings.TrimSpace(str)
	switch {
	case strings.HasPrefix(s, "Infinity"), strings.HasPrefix(s, "+Infinity"):
		return runtime.NewNumber(math.Inf(1)), nil
	case strings.HasPrefix(s, "-Infinity"):
		return runtime.NewNumber(math.Inf(-1)), nil
	}
	// Find the longest prefix that is a valid float
	end := 0
	digits := false
	hasDecimal, hasE := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = true
			end = i + 1
			continue
		case c == '.' && !hasDecimal && !hasE:
			hasDecimal = true
			continue
		case (c == 'e' || c == 'E') && !hasE && digits:
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
			if i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
				hasE = true
				continue
			}
		case (c == '+' || c == '-') && i == 0:
			continue
		}
		break
	}
	if !digits {
		return runtime.NaN, nil
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(f), nil
}

func (r *realm) globalIsNaN(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	n, err := r.coerce.ToNumber(argAt(args, 0))
	if err != nil {
		return runtime.Undefined, err
	}
	return runtime.NewBool(math.IsNaN(n)), nil
}

func (r *realm) globalIsFinite(this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	n, err := r.coerce.ToNumber(argAt(args, 0))
	if err != nil {
		return runtime.Undefined, err
	}
	return runtime.NewBool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
}
