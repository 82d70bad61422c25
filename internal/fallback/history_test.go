package fallback

import (
	"slices"
	"testing"
)

func TestHistory(t *testing.T) {
	h := NewHistory(3)
	if h.Len() != 0 || h.Contains("a") {
		t.Fatal("new history should be empty")
	}

	for _, s := range []string{"a", "b", "c", "d"} {
		h.Push(s)
	}

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	if h.Contains("a") {
		t.Error("oldest entry should have been evicted")
	}
	if got := h.Entries(); !slices.Equal(got, []string{"b", "c", "d"}) {
		t.Errorf("Entries() = %v, want [b c d]", got)
	}

	h.Clear()
	if h.Len() != 0 || h.Contains("d") {
		t.Error("Clear() should forget every entry")
	}
	h.Push("e")
	if got := h.Entries(); !slices.Equal(got, []string{"e"}) {
		t.Errorf("Entries() after Clear = %v, want [e]", got)
	}
}

func TestHistory_ZeroCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Push("a")
	if h.Len() != 0 || h.Contains("a") {
		t.Error("zero-capacity history should record nothing")
	}
}
