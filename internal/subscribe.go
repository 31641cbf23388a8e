package internal

// Subscribe watches a single source without creating a derived value: it is
// an explicit-dependency Effect whose thunk peeks the source (never
// tracking anything else), skips invoking cb on its first run to record a
// baseline, and thereafter calls cb(new, old) only when the value actually
// changed under the equality oracle - mirroring the Same-gated propagation
// every other node in the graph already gets via Signal.Write.
//
// linkTo is the node to depend on (a plain Signal, or a Computed's embedded
// Signal); peek returns its current settled value - for a Computed this must
// be the lazy Peek (recomputing first if dirty), never the raw embedded
// Signal's Peek, so Subscribe never observes a stale value.
func (r *Runtime) Subscribe(linkTo *Signal, peek func() any, cb func(newValue, oldValue any)) *Effect {
	first := true
	var last any

	fn := func() {
		current := peek()
		if first {
			first = false
			last = current
			return
		}
		if Same(current, last) {
			return
		}
		old := last
		last = current
		cb(current, old)
	}

	return r.NewEffectWithDeps(fn, []*Signal{linkTo})
}
