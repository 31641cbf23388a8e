package internal

import "iter"

// Computed is a lazily-recomputed, memoized derivation. It embeds a Signal
// (its settled value and the listener list of whoever reads it) and an
// Owner (so nested Signals/Computeds/Effects created inside its thunk, and
// the thunk's own OnCleanup registrations, get torn down before each
// recompute and on disposal).
type Computed struct {
	*Owner
	*Signal

	dirty       bool
	initialized bool

	// explicitDeps is true when the source list was fixed at creation
	// (§6 "explicit-dependencies mode"): the thunk runs untracked and
	// ClearDeps/relink never happens.
	explicitDeps bool

	compute func(*Computed) any

	depsHead *depLink

	// wake runs once, synchronously, whenever a dependency's notification
	// pass marks this node dirty. Plain computeds queue themselves for
	// eager recompute in the same flush (defaultWake); Effect installs its
	// own wake that enqueues onto the pending-effects queue instead.
	wake func()

	// stableRuns counts consecutive recomputes whose dependency list was
	// structurally identical to the previous run's (§4.4.11) - a pure
	// optimization hint, never consulted for correctness.
	stableRuns int
	prevDeps   []*Signal
}

func (r *Runtime) NewComputed(compute func(*Computed) any) *Computed {
	return r.newComputed(compute, nil)
}

// NewComputedWithDeps builds a Computed in explicit-dependency mode: deps is
// linked once and the thunk never auto-tracks.
func (r *Runtime) NewComputedWithDeps(compute func(*Computed) any, deps []*Signal) *Computed {
	return r.newComputed(compute, deps)
}

func (r *Runtime) newComputed(compute func(*Computed) any, deps []*Signal) *Computed {
	c := &Computed{
		Owner:        r.NewOwner(),
		Signal:       NewSignal(notComputed),
		compute:      compute,
		dirty:        true,
		explicitDeps: deps != nil,
	}
	c.wake = c.defaultWake

	// Detach from the dependency graph exactly once, when this node is torn
	// down for good - never on the per-run reset in recomputeNow.
	c.Owner.onFinalDispose = func() {
		r.recomputeQueue.remove(c)
		c.RemoveFlag(FlagInHeap)
		ClearDeps(c)
	}

	if c.explicitDeps {
		for _, dep := range deps {
			Link(c, dep)
		}
	}

	r.recomputeNow(c)

	return c
}

// defaultWake joins the height-ordered recompute worklist so this node
// settles within the same flush that dirtied it - whether or not anything
// currently listens to it. A subscribed-to value changing only stops the
// cascade when Signal.Write's Same gate decides the new value is
// unchanged, never because nobody further downstream is watching.
func (c *Computed) defaultWake() {
	GetRuntime().recomputeQueue.insert(c)
}

// markDirty is called by a dependency's notification pass. It always flips
// the dirty flag (even if already set) and always re-invokes wake, since
// wake's own flag checks handle dedup - a node can go from "dirty, not
// queued" to "dirty, queued" across two separate writes in the same flush.
func (c *Computed) markDirty() {
	c.dirty = true
	c.wake()
}

// Read lazily recomputes if dirty, then delegates to the embedded Signal's
// Read to register the tracking edge and return the value.
func (c *Computed) Read() any {
	if c.dirty || !c.initialized {
		GetRuntime().recomputeNow(c)
	}
	return c.Signal.Read()
}

// Peek returns the settled value without tracking, recomputing first if
// dirty - peeking a stale computed should never observe a stale value.
func (c *Computed) Peek() any {
	if c.dirty || !c.initialized {
		GetRuntime().recomputeNow(c)
	}
	return c.Signal.Peek()
}

// recomputeNow is the single recompute path, reached either eagerly (from
// the runtime's recompute queue during a flush) or lazily (from Read/Peek
// outside of one). It reuses Signal.Write to fold the new value in and
// propagate - that single code path is what gates propagation on Same and
// schedules the notification pass, whether or not a batch is open.
func (r *Runtime) recomputeNow(c *Computed) {
	r.recomputeQueue.remove(c)
	c.RemoveFlag(FlagInHeap)

	if !c.dirty && c.initialized {
		return
	}

	if c.initialized {
		c.Owner.disposeChildrenAndCleanups()
	}

	var newValue any
	runThunk := func() {
		if !c.explicitDeps {
			ClearDeps(c)
		}
		newValue = c.compute(c)
	}

	if c.explicitDeps {
		r.tracker.runWithOwner(c.Owner, func() { r.tracker.runUntracked(runThunk) })
	} else {
		r.tracker.runWithComputation(c, runThunk)
	}

	c.dirty = false
	c.initialized = true

	newDeps := depsSnapshot(c)
	if sameDeps(c.prevDeps, newDeps) {
		c.stableRuns++
	} else {
		c.stableRuns = 0
		c.prevDeps = newDeps
	}

	c.Signal.Write(newValue)
}

// StableRuns reports how many consecutive recomputes kept an identical
// dependency list (§4.4.11).
func (c *Computed) StableRuns() int { return c.stableRuns }

// Deps iterates this computed's current dependencies.
func (c *Computed) Deps() iter.Seq[*Signal] {
	return func(yield func(*Signal) bool) {
		for link := c.depsHead; link != nil; link = link.nextDep {
			if !yield(link.dep) {
				return
			}
		}
	}
}
