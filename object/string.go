// Package object defines the heap object variants referenced from a
// value.Value: interned strings, compiled functions, arrays, classes,
// instances, and bound methods.
package object

import (
	"hash/fnv"

	"github.com/thistle-lang/thistle/value"
)

// ObjString is an interned string: every reachable string with distinct
// byte content exists exactly once on the heap (spec.md §3, invariant 1).
// Hash is precomputed with FNV-1a so the intern table can bucket by hash
// before falling back to a byte comparison.
type ObjString struct {
	value.Header
	Chars string
	Hash  uint32
}

func (s *ObjString) DisplayString() string { return s.Chars }

// HashString computes the FNV-1a hash spec.md §3 calls for.
func HashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// newObjString allocates a raw string object; callers go through the
// intern table (InternTable.Intern) rather than calling this directly, so that
// the uniqueness invariant holds.
func newObjString(chars string) *ObjString {
	s := &ObjString{Chars: chars, Hash: HashString(chars)}
	s.Type = value.ObjStringType
	return s
}
