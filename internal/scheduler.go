package internal

import (
	"errors"
	"sync/atomic"
)

// maxFlushRounds bounds how many times a single Flush will drain the
// recompute queue and pending effects before giving up. A legitimate flush
// settles in a handful of rounds; anything beyond this is almost certainly a
// cycle that slipped past the optional cycle check (e.g. an effect writing
// back to one of its own sources) rather than real work.
const maxFlushRounds = 100

type Tick int64

// Scheduler serializes Flush against reentrant calls (a recompute's own
// Signal.Write can trigger another Flush while the first is still
// unwinding) and counts rounds so a runaway update loop fails loudly instead
// of hanging.
type Scheduler struct {
	clock   atomic.Int64
	running atomic.Bool
}

func newScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) Time() Tick {
	return Tick(s.clock.Load())
}

// Run drives round until it reports no work remains. A call made while
// another Run is already active for this scheduler is a no-op: the active
// call's next round will observe whatever new work was just enqueued.
func (s *Scheduler) Run(round func() bool) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	defer s.running.Store(false)

	count := 0
	for {
		count++
		if count > maxFlushRounds {
			return errors.New("sig: possible infinite update loop (exceeded max flush rounds)")
		}

		s.clock.Add(1)
		if !round() {
			return nil
		}
	}
}
