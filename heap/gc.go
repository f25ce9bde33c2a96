package heap

import (
	"github.com/thistle-lang/thistle/object"
	"github.com/thistle-lang/thistle/value"
)

// Roots is everything the VM considers a GC root at the moment of
// collection (spec.md §4.5, "Roots"): every value currently live on the
// register stack, every function referenced by an active call frame, and
// every defined global.
type Roots struct {
	Stack   []value.Value
	Frames  []*object.ObjFunction
	Globals []value.Value
}

// Collect runs one full mark-and-sweep cycle. The gray stack is expected
// to be empty on entry and is guaranteed empty on exit (spec.md §5).
func (h *Heap) Collect(roots Roots) {
	var gray []value.Obj

	mark := func(o value.Obj) {
		if o == nil || value.IsMarked(o) {
			return
		}
		value.SetMarked(o, true)
		gray = append(gray, o)
	}
	markValue := func(v value.Value) {
		if v.Kind == value.KindObj {
			mark(v.Obj)
		}
	}

	for _, v := range roots.Stack {
		markValue(v)
	}
	for _, fn := range roots.Frames {
		mark(fn)
	}
	for _, v := range roots.Globals {
		markValue(v)
	}

	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		blacken(o, mark, markValue)
	}

	// The intern table holds weak references: prune before sweep frees
	// their objects, or a later lookup would return a dangling entry
	// (spec.md §4.5, "Intern-table cleanup"; §9, "Interning discipline").
	h.Strings.Prune()
	h.sweep()

	h.nextGC = max(minThreshold, 2*h.bytesAllocated)
	h.Collections++
}

// blacken marks every object directly reachable from o: string names
// inside functions, constants in a chunk's constant pool, elements of an
// array, method/field names and values of a class or instance, and a
// bound method's receiver and function (spec.md §4.5, "Trace").
func blacken(o value.Obj, mark func(value.Obj), markValue func(value.Value)) {
	switch v := o.(type) {
	case *object.ObjString:
		// no outgoing references
	case *object.ObjFunction:
		if v.Name != nil {
			mark(v.Name)
		}
		for _, c := range v.Chunk.Constants {
			markValue(c)
		}
	case *object.ObjArray:
		for _, elem := range v.Elements {
			markValue(elem)
		}
	case *object.ObjClass:
		mark(v.Name)
		for _, f := range v.Methods {
			mark(f.Name)
			markValue(f.Value)
		}
	case *object.ObjInstance:
		mark(v.Class)
		for _, f := range v.Fields {
			mark(f.Name)
			markValue(f.Value)
		}
	case *object.ObjBoundMethod:
		markValue(v.Receiver)
		mark(v.Method)
	}
}

// sweep frees every unmarked object from the allocation list and clears
// the mark bit on every survivor.
func (h *Heap) sweep() {
	var prev value.Obj
	cur := h.objects
	for cur != nil {
		next := value.NextOf(cur)
		if value.IsMarked(cur) {
			value.SetMarked(cur, false)
			prev = cur
		} else {
			h.bytesAllocated -= approxSize(cur)
			if prev == nil {
				h.objects = next
			} else {
				value.SetNext(prev, next)
			}
		}
		cur = next
	}
}
