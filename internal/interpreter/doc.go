// Package interpreter executes parsed GraphQL operations by walking the
// query depth-first over an exec.Context, with runtime hooks for field
// resolution, abstract-type resolution, and leaf serialization.
//
// # Overview
//
// The interpreter separates deciding what a position holds from recording
// it. The walk resolves fields and completes values; every completed value
// is handed to the execution core (internal/exec), which owns the response
// tree, the type-at-path record, and non-null propagation. The interpreter
// itself never edits the tree and never relocates a null.
//
// # Walk
//
// For each object the interpreter collects fields (aliases, fragment
// spreads, inline fragments, @skip/@include, possible-type matching for
// abstract type conditions), then executes each collected field:
//
//  1. EnterPath with the response name and EnterType with the field's
//     declared type, committing the type for later nullability decisions.
//  2. Coerce arguments against the field's definitions; a coercion failure
//     records a located error and writes null.
//  3. Call Runtime.Resolve. A resolver error records a located error and
//     writes null; the writer relocates the null if the position is
//     non-null.
//  4. Hand the resolved value to AfterLazy. Concrete values complete
//     immediately; deferred values fork the context and suspend completion
//     into the shared queue.
//
// Value completion follows the GraphQL specification: non-null wrappers
// unwrap after the null check, lists write a pre-sized sequence and then
// complete each element at its own position (elements may themselves be
// deferred), leaves serialize through Runtime.SerializeLeaf, objects write
// their container and recurse, and abstract types resolve their concrete
// type through Runtime.ResolveType first.
//
// # Deferred work
//
// After the synchronous walk, the interpreter drains the shared queue in
// depth-wise batches: all currently queued tasks form one batch, and tasks
// a batch enqueues run in the next. Forcing one value one step is Task.Run;
// a chain of deferred values therefore costs one batch per link and grows
// the queue, not the call stack. Within a batch tasks may be forced
// concurrently (WithParallelism); writes land in the shared tree under the
// core's lock, so the final tree is the same either way.
//
// Forcing failures split by kind: a resolution error (schema.ExecutionError,
// schema.UnauthorizedError) is delivered to the suspended continuation as
// the value and recorded at the position that scheduled it; any other error
// is a process failure that stops the drain.
//
// Mutations execute their root fields serially, draining the queue between
// fields, so each root field observes the side effects of the previous one.
//
// # Errors and partial success
//
// Errors accumulate as located GraphQL errors (message, path, optional
// extensions) while execution continues. A null written at a non-null
// position is relocated by the core to the nearest nullable ancestor; when
// the relocation reaches the root the response data collapses to null but
// the collected errors survive.
package interpreter
