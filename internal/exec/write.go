package exec

// response is the tagged result of one execution: either a tree of data,
// or null once a non-null failure reaches the root. Once nulled, every
// later write is a no-op.
type response struct {
	data   map[string]any
	nulled bool
}

// Write stores value at the context's current path.
//
// A nil written where the committed type is non-null is relocated to the
// parent position and retried there as a propagating write, repeating
// until a nullable ancestor absorbs it; if the propagation reaches the
// root, the whole response collapses to null. Propagating writes may
// overwrite occupied slots; an ordinary write to an occupied slot panics
// with *InvariantError, since each position is written exactly once by
// the resolution chain that owns it. Every write consults the type
// committed at its position, so writing where no type was entered panics
// too.
func (c *Context) Write(value any) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.write(c.path, value, false)
}

// FinalValue returns the completed tree, or nil when the whole response
// collapsed to null.
func (c *Context) FinalValue() map[string]any {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if c.st.response.nulled {
		return nil
	}
	return c.st.response.data
}

// CompletelyNulled reports whether a non-null failure reached the root.
// It is monotonic within one execution.
func (c *Context) CompletelyNulled() bool {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.st.response.nulled
}

func (st *state) write(path Path, value any, propagating bool) {
	if st.response.nulled {
		return
	}
	if len(path) == 0 {
		return
	}
	typ := st.types.lookup(path)
	if value == nil && typ.IsNonNull() {
		parent := path[:len(path)-1]
		if len(parent) == 0 {
			st.response.nulled = true
			return
		}
		st.write(parent, nil, true)
		return
	}
	st.store(path, value, propagating)
}

// store walks the tree to path and places value at the final slot,
// creating intermediate containers on the way. An intermediate slot
// holding nil was cleared by an inner propagation; the write is then
// superseded and stops silently.
func (st *state) store(path Path, value any, propagating bool) {
	container := any(st.response.data)
	// writeBack re-seats the current container in its parent slot after a
	// slice grows, since growth replaces the slice header.
	writeBack := func(c any) { st.response.data = c.(map[string]any) }

	for i := 0; i < len(path)-1; i++ {
		switch cur := container.(type) {
		case map[string]any:
			key, ok := path[i].(string)
			if !ok {
				panic(&InvariantError{Message: "list index used at an object position", Path: path[:i+1]})
			}
			child, present := cur[key]
			if present && child == nil {
				return
			}
			if !present {
				child = newContainer(path[i+1])
				cur[key] = child
			}
			container = child
			m, k := cur, key
			writeBack = func(v any) { m[k] = v }
		case []any:
			idx, ok := path[i].(int)
			if !ok {
				panic(&InvariantError{Message: "field name used at a list position", Path: path[:i+1]})
			}
			if idx < len(cur) && cur[idx] == nil {
				return
			}
			if idx >= len(cur) {
				for len(cur) <= idx {
					cur = append(cur, nil)
				}
				cur[idx] = newContainer(path[i+1])
				writeBack(cur)
			}
			container = cur[idx]
			s, j := cur, idx
			writeBack = func(v any) { s[j] = v }
		default:
			panic(&InvariantError{Message: "cannot descend into a non-container value", Path: path[:i+1], Old: container, New: value})
		}
	}

	switch cur := container.(type) {
	case map[string]any:
		key, ok := path[len(path)-1].(string)
		if !ok {
			panic(&InvariantError{Message: "list index used at an object position", Path: path})
		}
		if old, present := cur[key]; present && old != nil && !propagating {
			panic(&InvariantError{Message: "duplicate write to occupied slot", Path: path, Old: old, New: value})
		}
		cur[key] = value
	case []any:
		idx, ok := path[len(path)-1].(int)
		if !ok {
			panic(&InvariantError{Message: "field name used at a list position", Path: path})
		}
		if idx >= len(cur) {
			for len(cur) <= idx {
				cur = append(cur, nil)
			}
			writeBack(cur)
		} else if cur[idx] != nil && !propagating {
			panic(&InvariantError{Message: "duplicate write to occupied slot", Path: path, Old: cur[idx], New: value})
		}
		cur[idx] = value
	default:
		panic(&InvariantError{Message: "cannot write into a non-container value", Path: path, Old: container, New: value})
	}
}

func newContainer(next PathElement) any {
	if _, ok := next.(int); ok {
		return make([]any, 0)
	}
	return make(map[string]any)
}
