// Package effects schedules timed power-up effects.
//
// Each effect kind has at most one pending expiry. Scheduling a kind that is
// already pending cancels the old entry first, so a re-triggered effect
// never reverts early and never stacks.
package effects

import (
	"container/heap"
	"fmt"
	"time"
)

// Kind identifies a timed effect.
type Kind uint8

const (
	Invulnerability Kind = iota
	Shrink
)

func (k Kind) String() string {
	switch k {
	case Invulnerability:
		return "invulnerability"
	case Shrink:
		return "shrink"
	default:
		return fmt.Sprintf("effect(%d)", uint8(k))
	}
}

type entry struct {
	kind  Kind
	at    time.Duration
	seq   uint64
	fn    func()
	index int // Index in heap
}

// entryHeap orders entries by expiry, then by scheduling order.
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Scheduler runs expiry callbacks against an externally advanced clock.
type Scheduler struct {
	queue  entryHeap
	byKind map[Kind]*entry
	seq    uint64
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{byKind: make(map[Kind]*entry)}
}

// Schedule arranges for fn to run once the clock reaches at. A pending entry
// of the same kind is cancelled.
func (s *Scheduler) Schedule(kind Kind, at time.Duration, fn func()) {
	s.Cancel(kind)
	s.seq++
	e := &entry{kind: kind, at: at, seq: s.seq, fn: fn}
	heap.Push(&s.queue, e)
	s.byKind[kind] = e
}

// Cancel drops the pending entry for kind. It reports whether one existed.
func (s *Scheduler) Cancel(kind Kind) bool {
	e, ok := s.byKind[kind]
	if !ok {
		return false
	}
	heap.Remove(&s.queue, e.index)
	delete(s.byKind, kind)
	return true
}

// Advance runs every entry due at or before now, earliest first, and
// returns how many ran. Callbacks may schedule new entries.
func (s *Scheduler) Advance(now time.Duration) int {
	fired := 0
	for s.queue.Len() > 0 && s.queue[0].at <= now {
		e := heap.Pop(&s.queue).(*entry)
		delete(s.byKind, e.kind)
		if e.fn != nil {
			e.fn()
		}
		fired++
	}
	return fired
}

// Pending reports whether kind has a scheduled expiry.
func (s *Scheduler) Pending(kind Kind) bool {
	_, ok := s.byKind[kind]
	return ok
}

// Expiry returns the scheduled expiry for kind.
func (s *Scheduler) Expiry(kind Kind) (time.Duration, bool) {
	e, ok := s.byKind[kind]
	if !ok {
		return 0, false
	}
	return e.at, true
}

// Len returns the number of pending entries.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// Reset drops every pending entry without running it.
func (s *Scheduler) Reset() {
	s.queue = nil
	s.byKind = make(map[Kind]*entry)
}
