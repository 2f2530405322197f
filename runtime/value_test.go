package runtime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBoolean(t *testing.T) {
	falsy := []Value{Undefined, Null, False, NewNumber(0), NewNumber(math.Copysign(0, -1)), NaN, NewString("")}
	for _, v := range falsy {
		if v.ToBoolean() {
			t.Errorf("expected %#v to be falsy", v)
		}
	}
	truthy := []Value{True, NewNumber(1), NewNumber(-0.5), NewNumber(math.Inf(1)), NewString("0"), NewString(" "), NewString("false"), NewObject(1)}
	for _, v := range truthy {
		if !v.ToBoolean() {
			t.Errorf("expected %#v to be truthy", v)
		}
	}
}

func TestNumberToString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-1, "-1"},
		{1.5, "1.5"},
		{0.1, "0.1"},
		{100, "100"},
		{123456789, "123456789"},
		{1e21, "1e+21"},
		{1.5e21, "1.5e+21"},
		{1e20, "100000000000000000000"},
		{1e-6, "0.000001"},
		{1e-7, "1e-7"},
		{1.25e-7, "1.25e-7"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumberToString(tt.in), "NumberToString(%v)", tt.in)
	}

	a, b := 0.1, 0.2
	assert.Equal(t, "0.30000000000000004", NumberToString(a+b))
}

func TestStringToNumber(t *testing.T) {
	assert.Equal(t, 0.0, StringToNumber(""))
	assert.Equal(t, 0.0, StringToNumber("   "))
	assert.Equal(t, 42.0, StringToNumber(" 42 "))
	assert.Equal(t, -1.5, StringToNumber("-1.5"))
	assert.Equal(t, 255.0, StringToNumber("0xff"))
	assert.Equal(t, 1000.0, StringToNumber("1e3"))
	assert.True(t, math.IsInf(StringToNumber("Infinity"), 1))
	assert.True(t, math.IsInf(StringToNumber("1e400"), 1))
	assert.True(t, math.IsNaN(StringToNumber("abc")))
	assert.True(t, math.IsNaN(StringToNumber("inf")))
	assert.True(t, math.IsNaN(StringToNumber("1_000")))
}

func TestPrimitiveToNumber(t *testing.T) {
	assert.True(t, math.IsNaN(Undefined.ToNumber()))
	assert.Equal(t, 0.0, Null.ToNumber())
	assert.Equal(t, 1.0, True.ToNumber())
	assert.Equal(t, 0.0, False.ToNumber())
}

func TestStrictEquals(t *testing.T) {
	assert.True(t, StrictEquals(Undefined, Undefined))
	assert.True(t, StrictEquals(Null, Null))
	assert.False(t, StrictEquals(Undefined, Null))
	assert.False(t, StrictEquals(True, NewNumber(1)))
	assert.False(t, StrictEquals(NewString("1"), NewNumber(1)))
	assert.True(t, StrictEquals(NewNumber(0), NewNumber(math.Copysign(0, -1))))
	assert.False(t, StrictEquals(NaN, NaN))
	assert.True(t, StrictEquals(NewString("a"), NewString("a")))
	assert.True(t, StrictEquals(NewObject(3), NewObject(3)))
	assert.False(t, StrictEquals(NewObject(3), NewObject(4)))
}
