package internal

// Batcher tracks nested NewBatch scopes and the work a write inside one
// defers until the outermost scope closes: pending value commits and
// pending effect reruns. Outside of any batch, depth is 0 and every write
// flushes inline.
type Batcher struct {
	depth int

	pendingCommits []*Signal
	pendingEffects []*Effect
}

func newBatcher() *Batcher {
	return &Batcher{}
}

func (b *Batcher) isBatching() bool {
	return b.depth > 0
}

// Batch runs fn with the batch depth incremented, then - only once depth
// returns to zero - invokes onComplete. Nested NewBatch calls share the same
// depth counter, so only the outermost close triggers a flush.
func (b *Batcher) Batch(fn, onComplete func()) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth == 0 && onComplete != nil {
			onComplete()
		}
	}()

	fn()
}

func (b *Batcher) enqueueCommit(s *Signal) {
	b.pendingCommits = append(b.pendingCommits, s)
}

func (b *Batcher) enqueueEffect(e *Effect) {
	b.pendingEffects = append(b.pendingEffects, e)
}

// drainCommits returns and clears every signal written since the last
// drain. Duplicates are harmless - Commit is idempotent - so no dedup.
func (b *Batcher) drainCommits() []*Signal {
	pending := b.pendingCommits
	b.pendingCommits = nil
	return pending
}

func (b *Batcher) drainEffects() []*Effect {
	pending := b.pendingEffects
	b.pendingEffects = nil
	return pending
}

func (b *Batcher) effectsPending() bool {
	return len(b.pendingEffects) > 0
}

// NewBatch defers propagation until fn (and any nested NewBatch inside it)
// returns, then flushes once with the coalesced final values.
func (r *Runtime) NewBatch(fn func()) {
	r.batcher.Batch(fn, r.Flush)
}
