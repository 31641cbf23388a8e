package internal

import "iter"

// Owner is a disposal scope: a tree of cleanup callbacks and panic handlers
// that cascades depth-first, reverse-creation-order among siblings, when
// Dispose is called. Every Signal-adjacent node that carries lifecycle
// (Computed, Effect) embeds one; OnCleanup/OnError are also exposed as free
// functions operating on "whatever owner is currently active" (see
// runtime.go's OnCleanup/OnError).
type Owner struct {
	cleanups []func()
	catchers []func(any)

	context map[any]any

	// onFinalDispose runs once, after cleanups, only when this owner is torn
	// down for good - never on a Computed/Effect's per-run reset (see
	// disposeChildrenAndCleanups). Computed uses it to detach from the
	// dependency graph exactly once.
	onFinalDispose func()

	parent       *Owner
	prevSibling  *Owner
	nextSibling  *Owner
	childrenHead *Owner
}

// NewOwner creates an owner parented under whatever owner is currently
// active for this goroutine, so it is torn down automatically when that
// ancestor disposes.
func (r *Runtime) NewOwner() *Owner {
	o := &Owner{context: make(map[any]any)}
	if parent := r.tracker.CurrentOwner(); parent != nil {
		parent.AddChild(o)
	}
	return o
}

// Run activates o as the current owner for the duration of fn, so any
// Computed/Effect/Owner created inside becomes one of o's children (a bare
// Signal carries no lifecycle and is not attached to any owner). A
// panic inside fn is handled by o's own OnError handlers, or propagated up
// o's ancestor chain, or re-panicked to the caller if nothing claims it.
func (o *Owner) Run(fn func()) {
	GetRuntime().tracker.runWithOwner(o, fn)
}

func (parent *Owner) AddChild(child *Owner) {
	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

// Children iterates direct children in reverse creation order (most
// recently added first) - Dispose relies on this order for
// sibling-teardown tests.
func (o *Owner) Children() iter.Seq[*Owner] {
	return func(yield func(*Owner) bool) {
		child := o.childrenHead
		for child != nil {
			if !yield(child) {
				return
			}
			child = child.nextSibling
		}
	}
}

// Dispose tears down every child (depth-first), then runs this owner's own
// cleanups in registration order, then (only here, not on a per-run reset)
// its final-dispose hook, if any.
func (o *Owner) Dispose() {
	o.disposeChildrenAndCleanups()

	if o.onFinalDispose != nil {
		fn := o.onFinalDispose
		o.onFinalDispose = nil
		fn()
	}
}

// disposeChildrenAndCleanups is the reusable part of Dispose: it's also what
// a Computed/Effect runs before each recompute to reset state left over from
// the previous run, without tripping the node's final graph-detach hook.
func (o *Owner) disposeChildrenAndCleanups() {
	o.DisposeChildren()

	cleanups := o.cleanups
	o.cleanups = nil
	for _, cleanup := range cleanups {
		cleanup()
	}
}

func (o *Owner) DisposeChildren() {
	for child := range o.Children() {
		child.Dispose()
	}
	o.childrenHead = nil
}

func (o *Owner) OnCleanup(fn func()) {
	o.cleanups = append(o.cleanups, fn)
}

func (o *Owner) OnError(fn func(any)) {
	o.catchers = append(o.catchers, fn)
}

// handlePanic is the recover-side counterpart: a panic recovered while
// running this owner's subtree is offered to its own catchers first, then
// walked up the ancestor chain, and re-panicked if nobody claims it (§7).
func (o *Owner) handlePanic(r any) {
	if len(o.catchers) > 0 {
		for _, catch := range o.catchers {
			catch(r)
		}
		return
	}
	if o.parent != nil {
		o.parent.handlePanic(r)
		return
	}
	panic(r)
}
