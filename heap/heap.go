// Package heap owns the VM's object list and intern table and implements
// the tracing garbage collector of spec.md §4.5: mark-and-sweep with an
// explicit gray stack (tri-color), intern-table pruning between mark and
// sweep, and a trigger policy that, after every collection, sets the
// threshold to twice the bytes still allocated (never below 1024).
package heap

import (
	"github.com/thistle-lang/thistle/object"
	"github.com/thistle-lang/thistle/value"
)

const minThreshold = 1024

// Heap is owned by exactly one VM instance; every object allocated while
// compiling and running one program lives here and is reclaimable by its
// collector (spec.md §3, Lifecycle).
type Heap struct {
	objects        value.Obj
	bytesAllocated int
	nextGC         int
	Strings        *object.InternTable

	// Collections counts completed GC cycles; exposed for tests and
	// diagnostics.
	Collections int
}

func New() *Heap {
	return &Heap{
		Strings: object.NewInternTable(),
		nextGC:  minThreshold,
	}
}

// approxSize is a coarse per-object byte estimate used only to drive the
// collection trigger; it need not be exact.
func approxSize(o value.Obj) int {
	switch v := o.(type) {
	case *object.ObjString:
		return 32 + len(v.Chars)
	case *object.ObjArray:
		return 24 + len(v.Elements)*24
	case *object.ObjFunction:
		return 64
	case *object.ObjClass:
		return 32 + len(v.Methods)*24
	case *object.ObjInstance:
		return 32 + len(v.Fields)*24
	case *object.ObjBoundMethod:
		return 32
	default:
		return 16
	}
}

// track links o onto the object list and updates the byte count. Every
// constructor in package object produces an object that must be threaded
// in here exactly once before it can be treated as live.
func (h *Heap) track(o value.Obj) {
	value.SetNext(o, h.objects)
	h.objects = o
	h.bytesAllocated += approxSize(o)
}

// NewString interns chars, allocating a new ObjString only if no
// equal-content string already lives on the heap (spec.md's interning
// uniqueness invariant).
func (h *Heap) NewString(chars string) *object.ObjString {
	return h.Strings.Intern(chars, func(s *object.ObjString) { h.track(s) })
}

func (h *Heap) NewArray(elements []value.Value) *object.ObjArray {
	a := object.NewArray(elements)
	h.track(a)
	return a
}

func (h *Heap) NewFunction(name *object.ObjString) *object.ObjFunction {
	fn := object.NewFunction(name)
	h.track(fn)
	return fn
}

func (h *Heap) NewClass(name *object.ObjString) *object.ObjClass {
	c := object.NewClass(name)
	h.track(c)
	return c
}

func (h *Heap) NewInstance(class *object.ObjClass) *object.ObjInstance {
	inst := object.NewInstance(class)
	h.track(inst)
	return inst
}

func (h *Heap) NewBoundMethod(receiver value.Value, method *object.ObjFunction) *object.ObjBoundMethod {
	b := object.NewBoundMethod(receiver, method)
	h.track(b)
	return b
}

// ShouldCollect reports whether the next allocation should be preceded
// by a collection, per the trigger policy in spec.md §4.5.
func (h *Heap) ShouldCollect() bool {
	return h.bytesAllocated > h.nextGC
}

// BytesAllocated exposes the running total for tests and diagnostics.
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }
