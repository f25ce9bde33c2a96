package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thistle-lang/thistle/value"
)

func TestNewString_Interns(t *testing.T) {
	h := New()
	a := h.NewString("hello")
	b := h.NewString("hello")
	require.Same(t, a, b)

	c := h.NewString("world")
	require.NotSame(t, a, c)
}

func TestCollect_FreesUnreachableAndKeepsRoots(t *testing.T) {
	h := New()
	kept := h.NewString("kept")
	garbage := h.NewString("garbage")
	_ = garbage

	h.Collect(Roots{Stack: []value.Value{value.FromObj(kept)}})

	// the garbage string's bucket should be gone, the kept one should remain
	// reachable via re-interning to the exact same object.
	again := h.NewString("kept")
	require.Same(t, kept, again)

	again2 := h.NewString("garbage")
	require.NotNil(t, again2)
	require.NotSame(t, garbage, again2)
}

func TestCollect_ArrayElementsKeepStringsAlive(t *testing.T) {
	h := New()
	s := h.NewString("alive")
	arr := h.NewArray([]value.Value{value.FromObj(s)})

	h.Collect(Roots{Stack: []value.Value{value.FromObj(arr)}})

	again := h.NewString("alive")
	require.Same(t, s, again)
}

func TestCollect_UnreferencedObjectsAreSwept(t *testing.T) {
	h := New()
	h.NewArray(nil)
	before := h.BytesAllocated()
	require.Greater(t, before, 0)

	h.Collect(Roots{})
	require.Equal(t, 0, h.BytesAllocated())
}
