package fallback

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
)

func pool(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i)
	}
	return out
}

func newTestSelector(base, hints []string) *Selector {
	return NewSelector(base, hints, "Contact us at help@example.com.", WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestSelector_Select_Format(t *testing.T) {
	s := newTestSelector([]string{"Not found."}, []string{"Add detail."})

	if got := s.Select(0); got != "Not found.\n\nAdd detail." {
		t.Errorf("Select(0) = %q", got)
	}
	if got := s.Select(1); strings.Contains(got, "Contact us") {
		t.Errorf("Select(1) should not include the contact line: %q", got)
	}
	if got := s.Select(2); !strings.HasSuffix(got, "\n\nContact us at help@example.com.") {
		t.Errorf("Select(2) should end with the contact line: %q", got)
	}
	if got := s.Select(5); !strings.Contains(got, "Contact us") {
		t.Errorf("Select(5) should include the contact line: %q", got)
	}
}

func TestSelector_NoRepeatWithinWindow(t *testing.T) {
	s := newTestSelector(pool("base", 7), pool("hint", 6))

	var bases, hints []string
	for i := 0; i < 20; i++ {
		parts := strings.SplitN(s.Select(0), "\n\n", 2)
		bases = append(bases, parts[0])
		hints = append(hints, parts[1])
	}

	assertNoRepeat(t, "base", bases, DefaultBaseHistory)
	assertNoRepeat(t, "hint", hints, DefaultHintHistory)
}

func assertNoRepeat(t *testing.T, kind string, seq []string, window int) {
	t.Helper()
	for i := range seq {
		for j := i + 1; j < len(seq) && j < i+window+1; j++ {
			if seq[i] == seq[j] {
				t.Errorf("%s %q repeated at selections %d and %d", kind, seq[i], i, j)
			}
		}
	}
}

func TestSelector_SmallPoolStillProgresses(t *testing.T) {
	s := newTestSelector([]string{"a", "b"}, nil)

	seen := map[string]int{}
	for i := 0; i < 10; i++ {
		got := s.Select(0)
		if got != "a" && got != "b" {
			t.Fatalf("Select() = %q, want a pool entry", got)
		}
		seen[got]++
	}
	if len(seen) != 2 {
		t.Errorf("expected both messages to be used, got %v", seen)
	}
}

func TestSelector_EmptyPools(t *testing.T) {
	s := newTestSelector(nil, nil)
	if got := s.Select(3); got != "Contact us at help@example.com." {
		t.Errorf("Select() with empty pools = %q, want only the contact line", got)
	}
}

func TestSelector_Concurrent(t *testing.T) {
	s := NewSelector(pool("base", 20), pool("hint", 6), "contact")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if s.Select(j%3) == "" {
					t.Error("Select() returned an empty message")
				}
			}
		}()
	}
	wg.Wait()

	if s.recentBase.Len() != DefaultBaseHistory {
		t.Errorf("base history length = %d, want %d", s.recentBase.Len(), DefaultBaseHistory)
	}
}
