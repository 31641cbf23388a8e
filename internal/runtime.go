package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// runtimes holds one Runtime per goroutine, keyed by goroutine id. Each
// goroutine's signal graph, tracker, batch depth and scheduler are entirely
// independent of every other's - the only cross-goroutine contract is a raw
// Signal's own mutex, which lets one be shared and written from multiple
// goroutines each running their own Runtime concurrently. There is no wasm
// build variant: goroutines exist under wasm too (the runtime just never
// schedules more than one onto an OS thread), so the single-threaded case
// falls out of this same design rather than needing a separate code path.
var runtimes sync.Map

func GetRuntime() *Runtime {
	gid := goid.Get()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := newRuntime()
	runtimes.Store(gid, r)
	return r
}

// Runtime is the per-goroutine reactive graph: a tracker for the current
// observer, a batcher for NewBatch nesting and deferred work, a scheduler
// guarding Flush against reentrancy, and the recompute worklist.
type Runtime struct {
	tracker        *Tracker
	batcher        *Batcher
	scheduler      *Scheduler
	recomputeQueue *recomputeQueue
}

func newRuntime() *Runtime {
	return &Runtime{
		tracker:        newTracker(),
		batcher:        newBatcher(),
		scheduler:      newScheduler(),
		recomputeQueue: newRecomputeQueue(),
	}
}

// Flush settles the graph: eagerly recompute every dirty Computed waiting in
// the recompute queue, in height order, commit the resulting signal values, then run
// whatever effects that settled, repeating until nothing new was produced.
// A diamond graph's shared dependency is fully resolved before any effect
// that observes both branches reruns (§7).
func (r *Runtime) Flush() {
	if r.batcher.isBatching() {
		return
	}

	err := r.scheduler.Run(func() bool {
		r.recomputeQueue.drain(func(c *Computed) {
			r.recomputeNow(c)
		})

		for _, s := range r.batcher.drainCommits() {
			s.Commit()
		}

		for _, e := range r.batcher.drainEffects() {
			e.runNow()
		}

		return !r.recomputeQueue.empty() || r.batcher.effectsPending()
	})
	if err != nil {
		panic(err)
	}
}

func (r *Runtime) CurrentOwner() *Owner {
	return r.tracker.CurrentOwner()
}

// OnCleanup registers fn against whatever owner is currently active for
// this goroutine; outside of any Owner.Run/Computed/Effect scope there is
// nothing to register against, so it is a no-op.
func (r *Runtime) OnCleanup(fn func()) {
	if owner := r.CurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}

// OnError registers fn against the currently active owner, same caveat as
// OnCleanup.
func (r *Runtime) OnError(fn func(any)) {
	if owner := r.CurrentOwner(); owner != nil {
		owner.OnError(fn)
	}
}

// Untrack runs fn with dependency tracking suspended, returning whatever it
// returns.
func (r *Runtime) Untrack(fn func() any) any {
	var result any
	r.tracker.runUntracked(func() { result = fn() })
	return result
}
