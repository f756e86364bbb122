package schema

import (
	"context"
	"reflect"
)

type lazyResolver struct {
	accessor string
	resolve  func(context.Context, any) (any, error)
}

// RegisterLazy declares that values with prototype's dynamic type are
// deferred. accessor names the forcing operation for diagnostics and
// tracing; resolve forces the value one step. Forcing may itself return
// another registered deferred value, which is scheduled again.
func (s *Schema) RegisterLazy(prototype any, accessor string, resolve func(context.Context, any) (any, error)) *Schema {
	if s.lazyResolvers == nil {
		s.lazyResolvers = make(map[reflect.Type]lazyResolver)
	}
	s.lazyResolvers[reflect.TypeOf(prototype)] = lazyResolver{accessor: accessor, resolve: resolve}
	return s
}

// IsDeferred reports whether v is a value of a registered deferred type.
func (s *Schema) IsDeferred(v any) bool {
	if v == nil {
		return false
	}
	_, ok := s.lazyResolvers[reflect.TypeOf(v)]
	return ok
}

// LazyAccessor returns the accessor name registered for v's dynamic type.
func (s *Schema) LazyAccessor(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	r, ok := s.lazyResolvers[reflect.TypeOf(v)]
	return r.accessor, ok
}

// ResolveDeferred forces a deferred value one step. Values of unregistered
// types are returned unchanged.
func (s *Schema) ResolveDeferred(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	r, ok := s.lazyResolvers[reflect.TypeOf(v)]
	if !ok {
		return v, nil
	}
	return r.resolve(ctx, v)
}
