package interpreter

import "context"

// bagKey is the context key for the per-query context bag.
type bagKey struct{}

// WithQueryContext returns a copy of parent carrying the per-query context
// bag. The bag travels into execution and is handed to custom input
// coercers and to resolvers that read request-scoped values such as
// authentication data.
func WithQueryContext(parent context.Context, bag map[string]any) context.Context {
	return context.WithValue(parent, bagKey{}, bag)
}

// QueryContextFrom extracts the per-query context bag from ctx, or nil when
// none was attached.
func QueryContextFrom(ctx context.Context) map[string]any {
	bag, _ := ctx.Value(bagKey{}).(map[string]any)
	return bag
}
