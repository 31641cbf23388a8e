package internal

// Effect is a Computed whose thunk runs for side effects rather than for its
// return value; it is still a Computed (lazy dirty/recompute plumbing is
// identical) but wakes differently - instead of joining the height-ordered
// recompute worklist, it queues itself on the runtime's pending-effects
// list, so every affected Computed settles before any effect body reruns
// (§7's "effects observe settled values" guarantee, exercised by diamond
// dependency graphs where an effect depends on two siblings of a shared
// source).
type Effect struct {
	*Computed
	cancelled bool
}

// NewEffect runs fn synchronously once, then reruns it whenever a signal it
// read (directly or transitively) changes. Register per-run teardown with
// the ambient OnCleanup inside fn; it fires before the next run and once
// more when the effect is finally disposed.
func (r *Runtime) NewEffect(fn func()) *Effect {
	return r.newEffect(fn, nil)
}

// NewEffectWithDeps builds an effect in explicit-dependency mode: fn runs
// untracked and only reruns when one of deps changes.
func (r *Runtime) NewEffectWithDeps(fn func(), deps []*Signal) *Effect {
	return r.newEffect(fn, deps)
}

func (r *Runtime) newEffect(fn func(), deps []*Signal) *Effect {
	e := &Effect{}

	compute := func(c *Computed) any {
		fn()
		return nil
	}

	var c *Computed
	if deps != nil {
		c = r.NewComputedWithDeps(compute, deps)
	} else {
		c = r.NewComputed(compute)
	}
	e.Computed = c

	base := c.Owner.onFinalDispose
	c.Owner.onFinalDispose = func() {
		if base != nil {
			base()
		}
		e.cancelled = true
	}

	c.wake = func() {
		if e.cancelled || c.HasFlag(FlagQueued) {
			return
		}
		c.AddFlag(FlagQueued)
		GetRuntime().batcher.enqueueEffect(e)
	}

	return e
}

// runNow is invoked by Runtime.Flush when this effect is drained from the
// batcher's pending-effects list. Recomputing re-dirties nothing by itself - dirty was
// already set by markDirty before wake queued it.
func (e *Effect) runNow() {
	e.RemoveFlag(FlagQueued)
	if e.cancelled {
		return
	}
	GetRuntime().recomputeNow(e.Computed)
}

// Stop permanently disposes the effect - no further reruns, even if it is
// still registered as a child of a live owner.
func (e *Effect) Stop() {
	e.Computed.Dispose()
}
