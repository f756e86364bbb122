package interpreter

import (
	"context"
)

// Runtime defines the host integration surface for field resolution,
// abstract type resolution, and leaf-value serialization used by the
// Interpreter.
//
// General contract
//   - The Interpreter walks the query depth-first and calls Resolve once per
//     field occurrence. A resolver may return an ordinary value, or a value
//     registered as deferred on the schema; deferred values are not forced
//     inline but captured with their position and forced later in depth-wise
//     batches from the shared task queue.
//   - Errors returned from any method become located GraphQL errors. If the
//     field's return type is Non-Null, the null is propagated to the nearest
//     nullable ancestor per GraphQL spec.
//   - schema.ExecutionError and schema.UnauthorizedError returned while a
//     deferred value is forced are not process failures: they are recorded at
//     the field's position and the field becomes null.
//   - Implementations should be stateless or otherwise concurrency-safe: when
//     the deferred drain runs with parallelism > 1, forced values from one
//     batch complete on separate goroutines.
//   - Implementations must not mutate source or args values.
//
// Object/field identifiers
//   - objectType is the GraphQL type name (e.g. "User").
//   - field is the GraphQL field name on that type (e.g. "posts").
//   - For root fields, objectType is the root type name (e.g. "Query").
//   - source is the parent object value (nil for root).
//   - args is the map of argument keywords to already-coerced Go values.
//
// Abstract types and leaf values
//   - ResolveType must return the concrete type name for interface/union
//     values.
//   - SerializeLeaf must coerce scalars and enums into JSON-safe Go values
//     (string, float64, int, bool, ...). For enums, return the name string.
type Runtime interface {
	// Resolve produces the raw value for one field occurrence. Returning a
	// value registered as deferred on the schema suspends completion at the
	// current position until the shared queue forces it.
	Resolve(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// ResolveType determines the concrete object type name for a value of an
	// abstract GraphQL type (interface or union). The returned name must be a
	// possible type of abstractType in the schema.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeaf serializes a scalar or enum value to a JSON-safe Go value
	// according to the schema and custom scalar mappings.
	SerializeLeaf(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}
