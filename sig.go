// Package sig implements a fine-grained reactive runtime: signals, lazily
// memoized computeds, auto-disposing effects, and the disposal/context
// plumbing that ties them to an owner tree.
package sig

import "github.com/nodegraph/sig/internal"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// Source is any reactive node that can be named as an explicit dependency
// (§6's "explicit-dependencies mode") or watched with Subscribe. Both
// Signal[T] and Computed[T] satisfy it.
type Source interface {
	linkSignal() *internal.Signal
	peekAny() any
}

type Signal[T any] struct {
	signal *internal.Signal
}

// NewSignal creates your tipical read/write signal.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		internal.GetRuntime().NewSignal(initial),
	}
}

// Read the current value of the signal, tracking the dependency if within a reactive context.
func (s *Signal[T]) Read() T {
	return as[T](s.signal.Read())
}

// Peek returns the current value without tracking, even inside a reactive context.
func (s *Signal[T]) Peek() T {
	return as[T](s.signal.Peek())
}

// Write a new value to the signal, triggering updates to any dependents.
func (s *Signal[T]) Write(v T) {
	s.signal.Write(v)
}

// Subscribe watches this signal without creating a derived value: cb runs
// once per change (never on registration), receiving the new and previous
// values.
func (s *Signal[T]) Subscribe(cb func(newValue, oldValue T)) *Effect {
	e := internal.GetRuntime().Subscribe(s.signal, s.signal.Peek, func(n, o any) {
		cb(as[T](n), as[T](o))
	})
	return &Effect{e}
}

func (s *Signal[T]) linkSignal() *internal.Signal { return s.signal }
func (s *Signal[T]) peekAny() any                 { return s.signal.Peek() }

type Computed[T any] struct {
	computed *internal.Computed
}

// NewComputed creates a computed signal that derives its value from other signals (its a memo).
func NewComputed[T any](compute func() T) *Computed[T] {
	return &Computed[T]{
		internal.GetRuntime().NewComputed(func(c *internal.Computed) any {
			return compute()
		}),
	}
}

// NewComputedWithDeps creates a computed in explicit-dependency mode: its
// source list is fixed to deps at creation instead of being discovered by
// auto-tracking compute's reads.
func NewComputedWithDeps[T any](compute func() T, deps ...Source) *Computed[T] {
	return &Computed[T]{
		internal.GetRuntime().NewComputedWithDeps(func(c *internal.Computed) any {
			return compute()
		}, linkAll(deps)),
	}
}

// Read the current value of the computed signal, recomputing first if
// stale, and tracking the dependency if within a reactive context.
func (c *Computed[T]) Read() T {
	return as[T](c.computed.Read())
}

// Peek returns the current value without tracking, recomputing first if
// stale.
func (c *Computed[T]) Peek() T {
	return as[T](c.computed.Peek())
}

// Subscribe watches this computed's settled value; cb runs once per change
// (never on registration), receiving the new and previous values.
func (c *Computed[T]) Subscribe(cb func(newValue, oldValue T)) *Effect {
	e := internal.GetRuntime().Subscribe(c.computed.Signal, c.computed.Peek, func(n, o any) {
		cb(as[T](n), as[T](o))
	})
	return &Effect{e}
}

// StableRuns reports how many consecutive recomputes in a row kept an
// identical dependency list (§4.4.11's static-dependency hint). Pure
// diagnostic/optimization signal; never consulted for correctness.
func (c *Computed[T]) StableRuns() int { return c.computed.StableRuns() }

func (c *Computed[T]) linkSignal() *internal.Signal { return c.computed.Signal }
func (c *Computed[T]) peekAny() any                 { return c.computed.Peek() }

func linkAll(deps []Source) []*internal.Signal {
	sigs := make([]*internal.Signal, len(deps))
	for i, d := range deps {
		sigs[i] = d.linkSignal()
	}
	return sigs
}

// NewBatch batches multiple signal writes into a single update cycle,
// instead of triggering updates after each write. Nested calls only flush
// once the outermost NewBatch returns.
func NewBatch(fn func()) {
	internal.GetRuntime().NewBatch(fn)
}

// Effect is a handle to a running effect, letting the caller stop it before
// its owner would otherwise dispose it.
type Effect struct {
	effect *internal.Effect
}

// Stop permanently disposes the effect.
func (e *Effect) Stop() { e.effect.Stop() }

// NewEffect runs fn once synchronously, then reruns it whenever a signal it
// read changes. Register per-run teardown with OnCleanup inside fn.
func NewEffect(fn func()) *Effect {
	return &Effect{internal.GetRuntime().NewEffect(fn)}
}

// NewEffectWithDeps creates an effect in explicit-dependency mode: fn only
// reruns when one of deps changes, and runs untracked so reads of anything
// else never register an edge.
func NewEffectWithDeps(fn func(), deps ...Source) *Effect {
	return &Effect{internal.GetRuntime().NewEffectWithDeps(fn, linkAll(deps))}
}

// Subscribe watches src without creating a derived value: cb runs once per
// change (never on registration), receiving the new and previous values.
// Equivalent to src's own Subscribe method; exists so Subscribe can be
// called generically over a Source whose concrete type isn't known.
func Subscribe[T any](src Source, cb func(newValue, oldValue T)) *Effect {
	e := internal.GetRuntime().Subscribe(src.linkSignal(), src.peekAny, func(n, o any) {
		cb(as[T](n), as[T](o))
	})
	return &Effect{e}
}

// Untrack runs the given function without tracking any reactive dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() any { result = fn(); return nil })
	return result
}

// OnCleanup registers a function to be called when the current owner is disposed.
func OnCleanup(fn func()) {
	internal.GetRuntime().OnCleanup(fn)
}

// OnError registers a function to be called when a panic reaches the
// current owner without being claimed by a more specific handler.
func OnError(fn func(any)) {
	internal.GetRuntime().OnError(fn)
}

type Context[T any] struct {
	ctx *internal.Context
}

// NewContext creates a new reactive context with an initial value.
func NewContext[T any](initial T) *Context[T] {
	return &Context[T]{
		internal.GetRuntime().NewContext(initial),
	}
}

// Value retrieves the current value of the context,
// inheriting from parent owners if not set in the current owner.
func (c *Context[T]) Value() T {
	return as[T](c.ctx.Value())
}

// Set a new value for the context in the current owner.
func (c *Context[T]) Set(value T) {
	c.ctx.Set(value)
}

type Owner struct {
	owner *internal.Owner
}

// NewOwner creates a new reactive owner.
// An owner manages the lifecycle of reactive nodes created within its context.
func NewOwner() *Owner {
	return &Owner{
		internal.GetRuntime().NewOwner(),
	}
}

// Run a function within the context of this owner.
// Each reactive node created within the function will be a child of this owner,
// and will be disposed when owner.Dispose() is called on this owner.
func (o *Owner) Run(fn func() error) (err error) {
	o.owner.Run(func() { err = fn() })
	return
}

// Dispose this owner and all its children.
func (o *Owner) Dispose() { o.owner.Dispose() }

// OnCleanup registers a function to be called once when the owner is disposed.
func (o *Owner) OnCleanup(fn func()) { o.owner.OnCleanup(fn) }

// OnDispose is an alias for OnCleanup.
func (o *Owner) OnDispose(fn func()) { o.owner.OnCleanup(fn) }

// OnError registers a function to be called when a panic occurs within this owner.
// If no error listener is registered, the panic propagates to the parent owner.
func (o *Owner) OnError(fn func(any)) { o.owner.OnError(fn) }
