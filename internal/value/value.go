// Package value implements the dynamic value model shared by the compiler's
// constant pool and the virtual machine's operand stack.
package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the active field of a Value.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	// KindVariable only lives in the constant pool, carrying a global name.
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindVariable:
		return "identifier"
	default:
		return "unknown"
	}
}

// Value is a tagged union; only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	B     bool
	Int   int64
	Float float64
	// Str holds string contents, or the name for KindVariable.
	Str string
}

func None() Value { return Value{Kind: KindNone} }
func Bool(b bool) Value {
	return Value{Kind: KindBool, B: b}
}
func Int(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}
func Float(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}
func Variable(name string) Value {
	return Value{Kind: KindVariable, Str: name}
}

var (
	// ErrTypeMismatch is the cause of every operator applied to incompatible kinds.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrDivisionByZero is returned for integer division by zero.
	ErrDivisionByZero = errors.New("division by zero")
)

const maxRepeatLen = 1 << 30

// TypeError describes an operator applied to operands it does not accept.
type TypeError struct {
	Op    string
	Left  Kind
	Right Kind
	Unary bool
}

func (e *TypeError) Error() string {
	if e.Unary {
		return fmt.Sprintf("cannot %s type %s", e.Op, e.Left)
	}
	return fmt.Sprintf("cannot %s types %s and %s", e.Op, e.Left, e.Right)
}

// Unwrap lets callers match with errors.Is(err, ErrTypeMismatch).
func (e *TypeError) Unwrap() error {
	return ErrTypeMismatch
}

// TypeName reports the dynamic type name of v.
func (v Value) TypeName() string {
	return v.Kind.String()
}

// String renders the canonical text form used by print.
func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "none"
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		switch {
		case math.IsInf(v.Float, 1):
			return "inf"
		case math.IsInf(v.Float, -1):
			return "-inf"
		}
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindString, KindVariable:
		return v.Str
	default:
		return "<unknown>"
	}
}

// Truthy reports the boolean interpretation of v.
func Truthy(v Value) bool {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != ""
	default:
		return false
	}
}

// Not is logical negation under Truthy.
func Not(v Value) Value {
	return Bool(!Truthy(v))
}

// Negate is arithmetic negation.
func Negate(v Value) (Value, error) {
	switch v.Kind {
	case KindInt:
		return Int(-v.Int), nil
	case KindFloat:
		return Float(-v.Float), nil
	default:
		return None(), &TypeError{Op: "negate", Left: v.Kind, Unary: true}
	}
}

// Equatable reports whether a and b may be compared with == and !=.
// none is equatable with everything.
func Equatable(a, b Value) error {
	switch {
	case a.Kind == KindNone || b.Kind == KindNone:
		return nil
	case a.Kind == KindString && b.Kind == KindString:
		return nil
	}
	if _, ok := order(a, b); ok && a.Kind != KindString && b.Kind != KindString {
		return nil
	}
	return &TypeError{Op: "equate", Left: a.Kind, Right: b.Kind}
}

// Comparable reports whether a and b may be ordered with <, <=, >, >=.
func Comparable(a, b Value) error {
	if _, ok := order(a, b); ok {
		return nil
	}
	return &TypeError{Op: "compare", Left: a.Kind, Right: b.Kind}
}

// Equal is value equality. Int and Float compare numerically, Bool compares
// with Int as 0/1, and none equals only none.
func Equal(a, b Value) bool {
	switch {
	case a.Kind == KindNone || b.Kind == KindNone:
		return a.Kind == b.Kind
	case a.Kind == KindString || b.Kind == KindString:
		return a.Kind == b.Kind && a.Str == b.Str
	}
	o, ok := order(a, b)
	if !ok {
		return false
	}
	if o.float {
		return o.f1 == o.f2
	}
	return o.i1 == o.i2
}

// Less, LessEqual, Greater and GreaterEqual assume Comparable(a, b) == nil and
// return false otherwise. Strings order by length.
func Less(a, b Value) bool {
	o, ok := order(a, b)
	if !ok {
		return false
	}
	if o.float {
		return o.f1 < o.f2
	}
	return o.i1 < o.i2
}

func LessEqual(a, b Value) bool {
	o, ok := order(a, b)
	if !ok {
		return false
	}
	if o.float {
		return o.f1 <= o.f2
	}
	return o.i1 <= o.i2
}

func Greater(a, b Value) bool {
	o, ok := order(a, b)
	if !ok {
		return false
	}
	if o.float {
		return o.f1 > o.f2
	}
	return o.i1 > o.i2
}

func GreaterEqual(a, b Value) bool {
	o, ok := order(a, b)
	if !ok {
		return false
	}
	if o.float {
		return o.f1 >= o.f2
	}
	return o.i1 >= o.i2
}

// Add sums numbers (Int op Float widens to Float) and concatenates strings.
func Add(a, b Value) (Value, error) {
	if a.Kind == KindString && b.Kind == KindString {
		return String(a.Str + b.Str), nil
	}
	return arith("add", a, b)
}

func Subtract(a, b Value) (Value, error) {
	return arith("subtract", a, b)
}

// Multiply multiplies numbers and repeats a string an Int number of times.
func Multiply(a, b Value) (Value, error) {
	if a.Kind == KindString && b.Kind == KindInt {
		if b.Int < 0 {
			return None(), fmt.Errorf("cannot repeat string a negative number of times (%d)", b.Int)
		}
		if b.Int > 0 && int64(len(a.Str)) > maxRepeatLen/b.Int {
			return None(), fmt.Errorf("string repetition exceeds %d bytes", maxRepeatLen)
		}
		return String(strings.Repeat(a.Str, int(b.Int))), nil
	}
	return arith("multiply", a, b)
}

// Divide divides numbers. Int / Int truncates and fails on a zero divisor.
func Divide(a, b Value) (Value, error) {
	return arith("divide", a, b)
}

func arith(op string, a, b Value) (Value, error) {
	if a.Kind == KindInt && b.Kind == KindInt {
		x, y := a.Int, b.Int
		switch op {
		case "add":
			return Int(x + y), nil
		case "subtract":
			return Int(x - y), nil
		case "multiply":
			return Int(x * y), nil
		case "divide":
			if y == 0 {
				return None(), ErrDivisionByZero
			}
			return Int(x / y), nil
		}
	}
	x, okA := asFloat(a)
	y, okB := asFloat(b)
	if !okA || !okB {
		return None(), &TypeError{Op: op, Left: a.Kind, Right: b.Kind}
	}
	switch op {
	case "add":
		return Float(x + y), nil
	case "subtract":
		return Float(x - y), nil
	case "multiply":
		return Float(x * y), nil
	default:
		return Float(x / y), nil
	}
}

// ordered holds a pair of operands lifted into one comparison domain.
type ordered struct {
	i1, i2 int64
	f1, f2 float64
	float  bool
}

func order(a, b Value) (ordered, bool) {
	switch {
	case a.Kind == KindString && b.Kind == KindString:
		return ordered{i1: int64(len(a.Str)), i2: int64(len(b.Str))}, true
	case a.Kind == KindFloat || b.Kind == KindFloat:
		x, okA := asFloat(a)
		y, okB := asFloat(b)
		return ordered{f1: x, f2: y, float: true}, okA && okB
	default:
		x, okA := asInt(a)
		y, okB := asInt(b)
		return ordered{i1: x, i2: y}, okA && okB
	}
}

func asFloat(v Value) (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func asInt(v Value) (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindBool:
		if v.B {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
