package value

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b Value) (Value, error)
		a, b Value
		want Value
	}{
		{"int+int", Add, Int(2), Int(3), Int(5)},
		{"int+float", Add, Int(1), Float(2.0), Float(3.0)},
		{"float+int", Add, Float(0.5), Int(2), Float(2.5)},
		{"string+string", Add, String("ab"), String("cd"), String("abcd")},
		{"int-int", Subtract, Int(2), Int(5), Int(-3)},
		{"int*int", Multiply, Int(2), Int(3), Int(6)},
		{"string*int", Multiply, String("ab"), Int(3), String("ababab")},
		{"string*zero", Multiply, String("ab"), Int(0), String("")},
		{"int/int truncates", Divide, Int(7), Int(2), Int(3)},
		{"int/float", Divide, Int(1), Float(4), Float(0.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestArithmeticTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a, b Value) (Value, error)
		a, b Value
		msg  string
	}{
		{"string-int", Subtract, String("a"), Int(1), "cannot subtract types string and int"},
		{"string+int", Add, String("a"), Int(1), "cannot add types string and int"},
		{"bool*int", Multiply, Bool(true), Int(1), "cannot multiply types bool and int"},
		{"none/int", Divide, None(), Int(1), "cannot divide types none and int"},
		{"int*string", Multiply, Int(2), String("a"), "cannot multiply types int and string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn(tt.a, tt.b)
			if !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("expected type mismatch, got %v", err)
			}
			if err.Error() != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, err.Error())
			}
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	if _, err := Divide(Int(1), Int(0)); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
	got, err := Divide(Float(1), Int(0))
	if err != nil {
		t.Fatalf("float division should follow IEEE-754, got %v", err)
	}
	if !math.IsInf(got.Float, 1) {
		t.Fatalf("expected +Inf, got %v", got)
	}
	got, err = Divide(Int(math.MinInt64), Int(-1))
	if err != nil || got.Int != math.MinInt64 {
		t.Fatalf("expected wrapping division, got %v, %v", got, err)
	}
}

func TestNegateAndNot(t *testing.T) {
	if v, err := Negate(Int(3)); err != nil || v != Int(-3) {
		t.Fatalf("negate int: %v %v", v, err)
	}
	if v, err := Negate(Float(1.5)); err != nil || v != Float(-1.5) {
		t.Fatalf("negate float: %v %v", v, err)
	}
	if _, err := Negate(String("x")); err == nil || err.Error() != "cannot negate type string" {
		t.Fatalf("expected negate error, got %v", err)
	}
	cases := map[string]struct {
		in   Value
		want bool
	}{
		"none":         {None(), true},
		"zero":         {Int(0), true},
		"one":          {Int(1), false},
		"zero float":   {Float(0), true},
		"empty string": {String(""), true},
		"string":       {String("a"), false},
		"false":        {Bool(false), true},
	}
	for name, c := range cases {
		if got := Not(c.in); got != Bool(c.want) {
			t.Fatalf("%s: expected %v, got %v", name, c.want, got)
		}
	}
}

func TestEquality(t *testing.T) {
	tests := []struct {
		a, b      Value
		equatable bool
		equal     bool
	}{
		{None(), None(), true, true},
		{None(), Int(0), true, false},
		{String("a"), None(), true, false},
		{Int(1), Float(1.0), true, true},
		{Bool(true), Int(1), true, true},
		{Int(0), Bool(false), true, true},
		{Bool(true), Bool(false), true, false},
		{String("ab"), String("ab"), true, true},
		{String("ab"), String("ba"), true, false},
		{String("1"), Int(1), false, false},
		{Float(1), Bool(true), false, false},
	}
	for _, tt := range tests {
		err := Equatable(tt.a, tt.b)
		if (err == nil) != tt.equatable {
			t.Fatalf("Equatable(%#v, %#v) = %v, want equatable=%v", tt.a, tt.b, err, tt.equatable)
		}
		if got := Equal(tt.a, tt.b); got != tt.equal {
			t.Fatalf("Equal(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.equal)
		}
	}
}

func TestComparison(t *testing.T) {
	if !Less(Int(1), Float(1.5)) || !Greater(Float(2), Int(1)) {
		t.Fatalf("mixed numeric comparison failed")
	}
	if !Less(Bool(false), Int(1)) || !GreaterEqual(Bool(true), Bool(true)) {
		t.Fatalf("bool comparison failed")
	}
	// strings order by length, not content
	if !Less(String("zz"), String("aaa")) || !LessEqual(String("b"), String("a")) {
		t.Fatalf("string comparison should order by length")
	}
	if err := Comparable(None(), None()); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("none should not be comparable, got %v", err)
	}
	if err := Comparable(String("a"), Int(1)); err == nil || err.Error() != "cannot compare types string and int" {
		t.Fatalf("unexpected comparable error %v", err)
	}
}

func TestCanonicalText(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{None(), "none"},
		{Bool(true), "true"},
		{Int(-42), "-42"},
		{Float(3.0), "3"},
		{Float(2.5), "2.5"},
		{Float(math.Inf(1)), "inf"},
		{Float(math.Inf(-1)), "-inf"},
		{String("hi there"), "hi there"},
		{Variable("x"), "x"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestPropertyNumericPromotion(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("int op int stays int", prop.ForAll(
		func(a, b int64) bool {
			for _, fn := range []func(Value, Value) (Value, error){Add, Subtract, Multiply} {
				v, err := fn(Int(a), Int(b))
				if err != nil || v.Kind != KindInt {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.Property("int op float widens to float", prop.ForAll(
		func(a int64, b float64) bool {
			for _, fn := range []func(Value, Value) (Value, error){Add, Subtract, Multiply, Divide} {
				l, err := fn(Int(a), Float(b))
				if err != nil || l.Kind != KindFloat {
					return false
				}
				r, err := fn(Float(b), Int(a))
				if err != nil || r.Kind != KindFloat {
					return false
				}
			}
			return true
		},
		gen.Int64Range(-1_000_000, 1_000_000),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("comparison is antisymmetric across numeric kinds", prop.ForAll(
		func(a int64, b float64) bool {
			x, y := Int(a), Float(b)
			return Less(x, y) == Greater(y, x) && LessEqual(x, y) == GreaterEqual(y, x)
		},
		gen.Int64Range(-1000, 1000),
		gen.Float64Range(-1000, 1000),
	))

	properties.Property("equality is reflexive for non-NaN scalars", prop.ForAll(
		func(i int64, f float64, s string, b bool) bool {
			for _, v := range []Value{Int(i), Float(f), String(s), Bool(b), None()} {
				if !Equal(v, v) {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.Float64Range(-1e9, 1e9),
		gen.AnyString(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
