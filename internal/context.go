package internal

// Context is pure lexical-scope plumbing layered over the Owner tree: it
// never touches the dependency graph, so Set/Value neither track nor
// dirty anything.
type Context struct {
	key     *struct{} // distinct pointer per Context, used as the map key
	initial any
}

func (r *Runtime) NewContext(initial any) *Context {
	return &Context{key: new(struct{}), initial: initial}
}

// Set stores value in the currently active owner. Outside of any Owner.Run
// scope there is no owner to store it in, so Set is a no-op.
func (c *Context) Set(value any) {
	owner := GetRuntime().tracker.CurrentOwner()
	if owner == nil {
		return
	}
	owner.context[c.key] = value
}

// Value looks up the nearest ancestor owner, starting at the current one,
// that has a value set for this Context, falling back to its initial value.
func (c *Context) Value() any {
	for o := GetRuntime().tracker.CurrentOwner(); o != nil; o = o.parent {
		if v, ok := o.context[c.key]; ok {
			return v
		}
	}
	return c.initial
}
