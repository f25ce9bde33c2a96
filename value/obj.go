// Package value defines the tagged Value union at the bottom of the
// layering (spec.md §3) and the Obj interface every heap object variant
// satisfies. Concrete variants (strings, functions, arrays, classes,
// instances, bound methods) live in package object, which depends on
// this package — not the other way around — so that the bytecode chunk
// (package chunk, which stores Values in its constant pool) and this
// package stay free of a dependency on the higher-level object shapes.
package value

// ObjType discriminates the heap object variants of spec.md §3.
type ObjType uint8

const (
	ObjStringType ObjType = iota
	ObjFunctionType
	ObjArrayType
	ObjClassType
	ObjInstanceType
	ObjBoundMethodType
)

// Header is the heap-object header shared by every variant: a mark bit
// for the tracing GC and a forward link into the VM's intrusive
// allocation list. New objects are prepended; the list is the complete
// allocation set.
type Header struct {
	Type   ObjType
	Marked bool
	Next   Obj
}

// ObjHeader returns the receiver's own header; it is how the generic
// Obj interface reaches into a concrete variant without package `value`
// knowing that variant's shape.
func (h *Header) ObjHeader() *Header { return h }

// Obj is any heap object. Concrete variants embed Header (which
// supplies ObjHeader) and implement DisplayString themselves.
type Obj interface {
	ObjHeader() *Header
	DisplayString() string
}

func TypeOf(o Obj) ObjType      { return o.ObjHeader().Type }
func IsMarked(o Obj) bool       { return o.ObjHeader().Marked }
func SetMarked(o Obj, m bool)   { o.ObjHeader().Marked = m }
func NextOf(o Obj) Obj          { return o.ObjHeader().Next }
func SetNext(o Obj, next Obj)   { o.ObjHeader().Next = next }
