package internal

// NodeFlags tracks per-node engine state that lives for a flush, layered on
// top of whatever the node itself stores.
type NodeFlags int

const (
	FlagNone NodeFlags = 0

	// FlagInHeap marks a Computed as currently sitting in the runtime's
	// recompute queue, so a diamond-shaped graph doesn't queue it twice.
	FlagInHeap NodeFlags = 1 << iota

	// FlagQueued marks an effect-backed Computed as already present on the
	// pending-effects queue, collapsing a wake-up storm to one run.
	FlagQueued
)

// depLink is one edge of the dependency graph: dep is read during sub's
// thunk, so a write to dep must eventually wake sub. Both ends keep their
// own doubly linked, circular-tailed list of links (depsHead on the
// subscriber side, subsHead on the dependency side) so insertion and
// single-link removal are O(1); full teardown (ClearDeps) is linear in the
// number of dependencies.
type depLink struct {
	dep *Signal
	sub *Computed

	prevDep, nextDep *depLink
	prevSub, nextSub *depLink
}

func addDepLink(sub *Computed, link *depLink) {
	if sub.depsHead == nil {
		sub.depsHead = link
		link.prevDep = link
		link.nextDep = nil
		return
	}
	tail := sub.depsHead.prevDep
	tail.nextDep = link
	link.prevDep = tail
	link.nextDep = nil
	sub.depsHead.prevDep = link
}

func addSubLink(dep *Signal, link *depLink) {
	if dep.subsHead == nil {
		dep.subsHead = link
		link.prevSub = link
		link.nextSub = nil
		return
	}
	tail := dep.subsHead.prevSub
	tail.nextSub = link
	link.prevSub = tail
	link.nextSub = nil
	dep.subsHead.prevSub = link
}

func removeSubLink(dep *Signal, link *depLink) {
	if link.prevSub == link {
		dep.subsHead = nil
		link.prevSub = nil
		link.nextSub = nil
		return
	}

	if link == dep.subsHead {
		dep.subsHead = link.nextSub
	} else {
		link.prevSub.nextSub = link.nextSub
	}

	if link.nextSub != nil {
		link.nextSub.prevSub = link.prevSub
	} else {
		dep.subsHead.prevSub = link.prevSub
	}

	link.prevSub = nil
	link.nextSub = nil
}

// Link attaches sub as a listener of dep, updating sub's topological height
// so the recompute queue can later process dirtied computeds bottom-up. A
// dep already among sub's dependencies is not linked a second time, so a
// thunk that reads the same source more than once still leaves exactly one
// edge for it.
func Link(sub *Computed, dep *Signal) {
	for link := sub.depsHead; link != nil; link = link.nextDep {
		if link.dep == dep {
			return
		}
	}

	link := &depLink{dep: dep, sub: sub}
	addDepLink(sub, link)
	addSubLink(dep, link)

	if dep.height >= sub.height {
		sub.height = dep.height + 1
	}
}

// ClearDeps detaches sub from every one of its current dependencies. Called
// before every auto-tracked recompute so the thunk's reads rebuild the
// dependency list from scratch - a branch that stops reading a signal this
// run genuinely stops depending on it.
func ClearDeps(sub *Computed) {
	for link := sub.depsHead; link != nil; {
		next := link.nextDep
		removeSubLink(link.dep, link)
		link = next
	}
	sub.depsHead = nil
}

// depsSnapshot returns the current dependency list as a plain slice, used
// by the static-dependency-stability check (§4.4.11) to compare this run's
// source list against the previous one without walking two linked lists by
// hand at the call site.
func depsSnapshot(sub *Computed) []*Signal {
	if sub.depsHead == nil {
		return nil
	}
	var out []*Signal
	for link := sub.depsHead; link != nil; link = link.nextDep {
		out = append(out, link.dep)
	}
	return out
}

func sameDeps(a, b []*Signal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
