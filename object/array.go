package object

import "github.com/thistle-lang/thistle/value"

// ObjArray is a growable ordered sequence of values.
type ObjArray struct {
	value.Header
	Elements []value.Value
}

func (a *ObjArray) DisplayString() string { return "<object>" }

// NewArray allocates an unregistered array object holding a copy of
// elements (the caller's slice is not aliased).
func NewArray(elements []value.Value) *ObjArray {
	cp := make([]value.Value, len(elements))
	copy(cp, elements)
	a := &ObjArray{Elements: cp}
	a.Type = value.ObjArrayType
	return a
}
