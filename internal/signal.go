package internal

import (
	"iter"
	"sync"
)

// Signal is the base read/write reactive cell. A Computed embeds one too -
// its "value" is just the computed's last settled result, and its listener
// list is exactly the set of other Computeds that read it while tracking.
type Signal struct {
	mu sync.Mutex

	value        any
	pendingValue *any // non-nil only mid-write, before Commit

	subsHead *depLink

	// height/flags are meaningless on a bare Signal (always 0/FlagNone) and
	// live here only so Computed, which embeds *Signal, gets them promoted
	// without a second embedded struct.
	height int
	flags  NodeFlags
}

func NewSignal(initial any) *Signal {
	return &Signal{value: initial}
}

// NewSignal is the constructor form used by the public API, which always
// goes through GetRuntime() to reach every other constructor - a bare
// Signal needs no runtime state of its own, but keeping the same call
// shape (Runtime method, not a free function) is what lets sig.go treat
// every node type identically.
func (r *Runtime) NewSignal(initial any) *Signal {
	return NewSignal(initial)
}

// Read registers the current tracking context (if any) as a dependent of
// this signal, then returns its current value.
func (s *Signal) Read() any {
	GetRuntime().tracker.track(s)
	return s.peek()
}

// Peek returns the current value without registering any dependency.
func (s *Signal) Peek() any {
	return s.peek()
}

func (s *Signal) peek() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valueLocked()
}

func (s *Signal) valueLocked() any {
	if s.pendingValue != nil {
		return *s.pendingValue
	}
	return s.value
}

// Write stores v if it differs from the current value under the equality
// oracle, marks every current listener dirty immediately, and either hands
// the notification pass to the active batch or runs it inline.
func (s *Signal) Write(v any) {
	r := GetRuntime()

	s.mu.Lock()
	if Same(s.valueLocked(), v) {
		s.mu.Unlock()
		return
	}
	s.pendingValue = &v
	listeners := s.snapshotListenersLocked()
	s.mu.Unlock()

	for _, c := range listeners {
		c.markDirty()
	}

	r.batcher.enqueueCommit(s)
	if !r.batcher.isBatching() {
		r.Flush()
	}
}

// Commit folds a pending value into the settled one. Called once the write
// that produced it has been fully propagated.
func (s *Signal) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingValue != nil {
		s.value = *s.pendingValue
		s.pendingValue = nil
	}
}

func (s *Signal) snapshotListenersLocked() []*Computed {
	var out []*Computed
	for link := s.subsHead; link != nil; link = link.nextSub {
		out = append(out, link.sub)
	}
	return out
}

// Subs iterates this signal's current listeners.
func (s *Signal) Subs() iter.Seq[*Computed] {
	return func(yield func(*Computed) bool) {
		s.mu.Lock()
		listeners := s.snapshotListenersLocked()
		s.mu.Unlock()

		for _, c := range listeners {
			if !yield(c) {
				return
			}
		}
	}
}

func (s *Signal) HasFlag(flag NodeFlags) bool { return s.flags&flag != 0 }
func (s *Signal) AddFlag(flag NodeFlags)      { s.flags |= flag }
func (s *Signal) RemoveFlag(flag NodeFlags)   { s.flags &^= flag }
func (s *Signal) Height() int                 { return s.height }
