package exec

import (
	"context"
	"sync"

	schema "github.com/graphmill/graphmill/internal/schema"
)

// AfterLazy runs fn against the current context when value is concrete.
// When the schema reports value as deferred, the context is forked to
// capture the position and a task forcing the value is enqueued instead;
// forcing re-enters AfterLazy on the fork, so chains of deferred values
// grow the queue rather than the call stack.
func (c *Context) AfterLazy(value any, fn func(*Context, any)) {
	if !c.st.query.Schema.IsDeferred(value) {
		fn(c, value)
		return
	}
	fork := c.Fork()
	c.st.queue.Push(&Task{ctx: fork, value: value, fn: fn})
}

// Task is a suspended continuation: a fork captured at the position where
// a deferred value was discovered, the value itself, and the continuation
// to run once it is forced.
type Task struct {
	ctx   *Context
	value any
	fn    func(*Context, any)
}

// Run forces the deferred value one step and hands the outcome onward.
// A recognized resolution error becomes the delivered value, so it can be
// recorded at the position that scheduled it; any other error is returned
// to the scheduler as a process failure. A result that is itself deferred
// is scheduled again instead of recursing.
func (t *Task) Run(ctx context.Context) error {
	value, err := t.ctx.st.query.Schema.ResolveDeferred(ctx, t.value)
	if err != nil {
		if !schema.IsResolutionError(err) {
			return err
		}
		t.fn(t.ctx, err)
		return nil
	}
	t.ctx.AfterLazy(value, t.fn)
	return nil
}

// Context returns the fork that captured the deferred value's position.
func (t *Task) Context() *Context { return t.ctx }

// Value returns the deferred value awaiting forcing.
func (t *Task) Value() any { return t.value }

// Accessor returns the schema-registered accessor name used to force the
// task's value, for diagnostics and tracing.
func (t *Task) Accessor() string {
	name, _ := t.ctx.st.query.Schema.LazyAccessor(t.value)
	return name
}

// Queue is the deferred-task queue shared by every fork of one execution.
// The scheduler drains it depth-wise: each batch holds every task enqueued
// so far, and tasks enqueued while a batch runs form the next batch.
type Queue struct {
	mu    sync.Mutex
	tasks []*Task
}

func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Push(t *Task) {
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

// TakeBatch removes and returns every task queued so far, in enqueue order.
func (q *Queue) TakeBatch() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.tasks
	q.tasks = nil
	return batch
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
