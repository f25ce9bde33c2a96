package object

// InternTable is the set of canonical string objects, looked up by
// (bytes, length, hash) as spec.md's Glossary describes. Entries are
// weak: the table never keeps a string alive on its own, and the GC
// prunes dead entries before sweeping their objects (spec.md §4.5).
type InternTable struct {
	buckets map[uint32][]*ObjString
}

func NewInternTable() *InternTable {
	return &InternTable{buckets: make(map[uint32][]*ObjString)}
}

// Intern returns the canonical *ObjString for chars, allocating and
// registering a new one via alloc if none exists yet. alloc is the
// caller's heap-allocation hook so the new object is threaded onto the
// VM's object list exactly like any other allocation.
func (t *InternTable) Intern(chars string, alloc func(*ObjString)) *ObjString {
	h := HashString(chars)
	for _, s := range t.buckets[h] {
		if s.Chars == chars {
			return s
		}
	}
	s := newObjString(chars)
	alloc(s)
	t.buckets[h] = append(t.buckets[h], s)
	return s
}

// Prune removes every entry whose object was not marked by the last GC
// trace. This MUST run before sweep frees the underlying objects, or a
// later Intern call could return a dangling pointer (spec.md §4.5,
// "Intern-table cleanup").
func (t *InternTable) Prune() {
	for h, bucket := range t.buckets {
		kept := bucket[:0]
		for _, s := range bucket {
			if s.Marked {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(t.buckets, h)
		} else {
			t.buckets[h] = kept
		}
	}
}
