package value

import (
	"math"
	"strconv"
)

// Kind discriminates the Value union.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a small tagged union. Copying a Value is always a shallow,
// bitwise copy — heap data lives behind Obj and is never duplicated by
// assignment; only the Obj reference participates in GC.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Obj    Obj
}

func Null() Value            { return Value{Kind: KindNull} }
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func Num(n float64) Value    { return Value{Kind: KindNumber, Number: n} }
func FromObj(o Obj) Value    { return Value{Kind: KindObj, Obj: o} }

func (v Value) IsObj(t ObjType) bool { return v.Kind == KindObj && TypeOf(v.Obj) == t }

// Truthy implements spec.md §3: null and false are false, everything
// else is true.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equal implements the value-equality rule of spec.md §3: same-kind
// structural equality; heap strings compare by content, which — since
// they are interned — degenerates to pointer equality; every other heap
// object compares by reference identity.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindObj:
		return a.Obj == b.Obj
	}
	return false
}

// ToDisplayString renders a value the way the CLI prints a program's
// result, per spec.md §6.
func ToDisplayString(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return FormatNumber(v.Number)
	case KindObj:
		return v.Obj.DisplayString()
	}
	return "<unknown>"
}

// FormatNumber mirrors the host's shortest-round-trip %g formatting.
func FormatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "+Inf"
	}
	if math.IsInf(n, -1) {
		return "-Inf"
	}
	if math.IsNaN(n) {
		return "NaN"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
