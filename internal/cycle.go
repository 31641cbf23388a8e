package internal

import "fmt"

// CycleError is raised when a computed's recompute re-enters itself via its
// own dependency chain. Cycle detection is optional per spec (undefined
// behavior is also an acceptable implementation choice); this converts the
// otherwise-likely stack overflow into a catchable panic that any owner's
// OnError can handle, without changing the graph's required semantics.
type CycleError struct {
	Chain []*Computed
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("sig: cyclic dependency detected (%d frames deep)", len(e.Chain))
}

func (t *Tracker) checkCycle(node *Computed) error {
	for _, frame := range t.stack {
		if frame == node {
			chain := make([]*Computed, len(t.stack))
			copy(chain, t.stack)
			return &CycleError{Chain: append(chain, node)}
		}
	}
	return nil
}
