package fallback

// History is a fixed-capacity FIFO of recently shown messages. Pushing onto a full
// history evicts the oldest entry.
type History struct {
	items []string
	next  int
	full  bool
}

// NewHistory creates a history holding at most capacity entries.
func NewHistory(capacity int) *History {
	return &History{items: make([]string, max(capacity, 0))}
}

// Push records s, evicting the oldest entry when full.
func (h *History) Push(s string) {
	if len(h.items) == 0 {
		return
	}
	h.items[h.next] = s
	h.next = (h.next + 1) % len(h.items)
	if h.next == 0 {
		h.full = true
	}
}

// Contains reports whether s is among the recorded entries.
func (h *History) Contains(s string) bool {
	for i := 0; i < h.Len(); i++ {
		if h.items[i] == s {
			return true
		}
	}
	return false
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	if h.full {
		return len(h.items)
	}
	return h.next
}

// Clear forgets every entry.
func (h *History) Clear() {
	clear(h.items)
	h.next = 0
	h.full = false
}

// Entries returns the recorded entries, oldest first.
func (h *History) Entries() []string {
	if !h.full {
		return append([]string(nil), h.items[:h.next]...)
	}
	out := make([]string, 0, len(h.items))
	out = append(out, h.items[h.next:]...)
	return append(out, h.items[:h.next]...)
}
