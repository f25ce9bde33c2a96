package object

import (
	"fmt"

	"github.com/thistle-lang/thistle/chunk"
	"github.com/thistle-lang/thistle/value"
)

// ObjFunction is a compiled function: its declared arity, the number of
// registers its frame needs, its bytecode chunk, and an optional name.
// IsInitializer marks a class's `constructor` method so the compiler's
// default-return emission can return the receiver instead of null
// (spec.md §4.3, Constructor return).
type ObjFunction struct {
	value.Header
	Name          *ObjString
	Arity         int
	RegisterCount int
	Chunk         *chunk.Chunk
	IsInitializer bool
}

func (f *ObjFunction) DisplayString() string {
	if f.Name != nil {
		return fmt.Sprintf("<function %s>", f.Name.Chars)
	}
	return "<fn>"
}

// NewFunction allocates an unregistered function object with an empty
// chunk ready for the compiler to emit into. Callers are responsible for
// threading it onto the heap's object list.
func NewFunction(name *ObjString) *ObjFunction {
	fn := &ObjFunction{Name: name, Chunk: chunk.New()}
	fn.Type = value.ObjFunctionType
	return fn
}
