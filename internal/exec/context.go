package exec

import (
	"sync"
	"sync/atomic"

	schema "github.com/graphmill/graphmill/internal/schema"
)

// Path addresses one position in the response tree.
type Path []PathElement

// PathElement is a field name (string) or a list index (int).
type PathElement any

// Context tracks where execution currently is: the response path, the
// active output type, and the active source object. A Context may be
// forked; a fork copies the position stacks and shares the response tree,
// the deferred-task queue and the type-at-path cache with its originator,
// so position changes on one never show on the other while their writes
// land in the same tree.
type Context struct {
	id     uint64
	parent *Context

	path        Path
	typeStack   []*schema.TypeRef
	objectStack []any

	st *state
}

// state is shared by a root context and every fork created from it.
type state struct {
	query  *Query
	queue  *Queue
	nextID atomic.Uint64

	// mu guards the response tree and the type trie; the queue carries its
	// own lock so tasks can be pushed while a write is in flight.
	mu       sync.Mutex
	response response
	types    *typeTrie
}

// Query carries the per-request inputs shared by every fork: the schema,
// the coerced variable values, and the opaque context bag handed through
// to custom input coercers.
type Query struct {
	Schema    *schema.Schema
	Variables map[string]any
	Context   map[string]any
}

// NewContext returns the root execution context for one query execution,
// seeded with empty position stacks and an empty response tree.
func NewContext(q *Query) *Context {
	st := &state{
		query:    q,
		queue:    NewQueue(),
		response: response{data: make(map[string]any)},
		types:    newTypeTrie(),
	}
	c := &Context{st: st}
	c.id = st.nextID.Add(1)
	return c
}

// Fork returns a context at the same position whose later position changes
// do not affect c. The response tree, deferred queue and type cache stay
// shared with c and all other forks of the same execution.
func (c *Context) Fork() *Context {
	f := &Context{
		id:          c.st.nextID.Add(1),
		parent:      c,
		path:        make(Path, len(c.path)),
		typeStack:   make([]*schema.TypeRef, len(c.typeStack)),
		objectStack: make([]any, len(c.objectStack)),
		st:          c.st,
	}
	copy(f.path, c.path)
	copy(f.typeStack, c.typeStack)
	copy(f.objectStack, c.objectStack)
	return f
}

// EnterPath pushes segment onto the path for the duration of fn, popping on
// every exit path including panics.
func (c *Context) EnterPath(segment PathElement, fn func()) {
	c.path = append(c.path, segment)
	defer func() { c.path = c.path[:len(c.path)-1] }()
	fn()
}

// EnterType pushes the output type governing the position just entered and
// commits it to the type-at-path cache under the current path, so writes at
// this position can decide nullability later. Late-bound references are
// resolved against the schema before anything is committed.
func (c *Context) EnterType(typ *schema.TypeRef, fn func()) {
	resolved, err := c.st.query.Schema.ResolveLateBound(typ)
	if err != nil {
		panic(&InvariantError{Message: err.Error(), Path: c.Path()})
	}
	c.st.mu.Lock()
	c.st.types.commit(c.path, resolved)
	c.st.mu.Unlock()

	c.typeStack = append(c.typeStack, resolved)
	defer func() { c.typeStack = c.typeStack[:len(c.typeStack)-1] }()
	fn()
}

// EnterObject pushes the source object for the duration of fn.
func (c *Context) EnterObject(object any, fn func()) {
	c.objectStack = append(c.objectStack, object)
	defer func() { c.objectStack = c.objectStack[:len(c.objectStack)-1] }()
	fn()
}

// Path returns a copy of the current response path.
func (c *Context) Path() Path {
	out := make(Path, len(c.path))
	copy(out, c.path)
	return out
}

// CurrentType returns the output type of the innermost entered scope, or
// nil outside any type scope.
func (c *Context) CurrentType() *schema.TypeRef {
	if len(c.typeStack) == 0 {
		return nil
	}
	return c.typeStack[len(c.typeStack)-1]
}

// CurrentObject returns the source object of the innermost entered scope.
func (c *Context) CurrentObject() any {
	if len(c.objectStack) == 0 {
		return nil
	}
	return c.objectStack[len(c.objectStack)-1]
}

// ID returns the context's identifier, unique within one execution.
func (c *Context) ID() uint64 { return c.id }

// Parent returns the context this one was forked from, or nil for the
// root. It serves diagnostics only; no state flows through it.
func (c *Context) Parent() *Context { return c.parent }

// Query returns the per-request inputs this execution runs under.
func (c *Context) Query() *Query { return c.st.query }

// Queue returns the shared deferred-task queue for this execution.
func (c *Context) Queue() *Queue { return c.st.queue }
