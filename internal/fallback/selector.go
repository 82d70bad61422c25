// Package fallback builds the reply shown when no confident answer is available.
package fallback

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Default history sizes: a message is not reused until this many others were shown.
const (
	DefaultBaseHistory = 6
	DefaultHintHistory = 3
	// ContactAfter is the fail count from which the contact sentence is appended.
	ContactAfter = 2
)

// Selector picks fallback messages without repeating recent ones. It is safe for
// concurrent use; its history is shared by every caller.
type Selector struct {
	mu          sync.Mutex
	rng         *rand.Rand
	base        []string
	hints       []string
	recentBase  *History
	recentHints *History
	contact     string
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand sets the random source, for reproducible selection.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) { s.rng = rng }
}

// WithHistory sets how many base messages and hints are remembered.
func WithHistory(base, hints int) Option {
	return func(s *Selector) {
		s.recentBase = NewHistory(base)
		s.recentHints = NewHistory(hints)
	}
}

// NewSelector creates a selector over the base message and hint pools. contact is
// appended once a session has failed ContactAfter times.
func NewSelector(base, hints []string, contact string, opts ...Option) *Selector {
	seed := uint64(time.Now().UnixNano())
	s := &Selector{
		rng:         rand.New(rand.NewPCG(seed, seed>>1|1)),
		base:        base,
		hints:       hints,
		recentBase:  NewHistory(DefaultBaseHistory),
		recentHints: NewHistory(DefaultHintHistory),
		contact:     contact,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns a base message and a refinement hint separated by a blank line,
// followed by the contact sentence when failCount >= ContactAfter.
func (s *Selector) Select(failCount int) string {
	s.mu.Lock()
	base := s.pick(s.base, s.recentBase)
	hint := s.pick(s.hints, s.recentHints)
	s.mu.Unlock()

	msg := base
	if hint != "" {
		msg = join(msg, hint)
	}
	if failCount >= ContactAfter && s.contact != "" {
		msg = join(msg, s.contact)
	}
	return msg
}

// pick chooses uniformly among pool entries missing from recent. When every entry is
// recent the history is cleared and the whole pool is eligible. Callers hold s.mu.
func (s *Selector) pick(pool []string, recent *History) string {
	if len(pool) == 0 {
		return ""
	}

	fresh := make([]string, 0, len(pool))
	for _, p := range pool {
		if !recent.Contains(p) {
			fresh = append(fresh, p)
		}
	}
	if len(fresh) == 0 {
		recent.Clear()
		fresh = pool
	}

	choice := fresh[s.rng.IntN(len(fresh))]
	recent.Push(choice)
	return choice
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n\n" + b
}
