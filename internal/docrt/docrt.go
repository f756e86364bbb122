// Package docrt serves GraphQL fields out of a static JSON-like document.
//
// The runtime backs demos and integration tests: it loads a document into a
// structpb.Struct and resolves every field by key lookup on the current
// struct value. Nested objects stay *structpb.Struct values so the
// interpreter can hand them back as the source for deeper lookups; lists and
// scalars become plain Go values.
package docrt

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	interpreter "github.com/graphmill/graphmill/internal/interpreter"
	schema "github.com/graphmill/graphmill/internal/schema"
)

// Runtime implements interpreter.Runtime over a static document.
// Invariants and boundaries:
//   - Source shape: for object fields, source must be a *structpb.Struct.
//     Root fields receive a nil source and read the document root.
//     Violations cause panic rather than being hidden behind recoverable
//     errors.
//   - Missing keys: a field absent from the current struct resolves to
//     (nil, nil), which produces a GraphQL null for nullable fields.
//   - Deferred fields: fields marked @lazy in the schema resolve to a
//     pending value whose type is registered on the schema, so they are
//     forced through the shared queue instead of inline.
type Runtime struct {
	schema *schema.Schema
	root   *structpb.Struct
	delay  time.Duration
}

var _ interpreter.Runtime = (*Runtime)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithDelay makes every deferred field wait d before producing its value,
// which makes queue batches observable in demos and traces.
func WithDelay(d time.Duration) Option {
	return func(r *Runtime) { r.delay = d }
}

// New loads document and registers the runtime's deferred value type on sch.
// Registration must happen before the schema is cloned (for example by the
// introspection wrapper), or deferred values will not be recognized there.
func New(sch *schema.Schema, document map[string]any, opts ...Option) (*Runtime, error) {
	root, err := structpb.NewStruct(document)
	if err != nil {
		return nil, fmt.Errorf("docrt: load document: %w", err)
	}
	r := &Runtime{schema: sch, root: root}
	for _, opt := range opts {
		opt(r)
	}
	sch.RegisterLazy(&pending{}, "docrt.lookup", forcePending)
	return r, nil
}

// pending holds a looked-up value until the queue forces it.
type pending struct {
	value any
	delay time.Duration
}

func forcePending(ctx context.Context, v any) (any, error) {
	p := v.(*pending)
	if p.delay > 0 {
		t := time.NewTimer(p.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return p.value, nil
}

// Resolve looks field up on the current struct value. The document is
// static, so arguments select rather than compute: a `first: Int` argument
// trims list values and anything else is ignored.
func (r *Runtime) Resolve(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	src := r.root
	if source != nil {
		s, ok := source.(*structpb.Struct)
		if !ok {
			panic(fmt.Sprintf("docrt: source for %s.%s must be *structpb.Struct, got %T", objectType, field, source))
		}
		src = s
	}

	sv, ok := src.Fields[field]
	if !ok {
		return nil, nil
	}
	value := goValue(sv)

	if items, ok := value.([]any); ok {
		if n, ok := args["first"].(int); ok && n >= 0 && n < len(items) {
			value = items[:n]
		}
	}

	if def := r.fieldDef(objectType, field); def != nil && def.Lazy {
		return &pending{value: value, delay: r.delay}, nil
	}
	return value, nil
}

func (r *Runtime) fieldDef(objectType, field string) *schema.Field {
	t := r.schema.Types[objectType]
	if t == nil {
		return nil
	}
	return t.Field(field)
}

// ResolveType reads the concrete type name from the value's __typename key.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	msg, ok := value.(*structpb.Struct)
	if !ok || msg == nil {
		return "", fmt.Errorf("ResolveType expects *structpb.Struct, got %T", value)
	}
	sv, ok := msg.Fields["__typename"]
	if !ok {
		return "", fmt.Errorf("document value for abstract type %s carries no __typename", abstractType)
	}
	name, ok := sv.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("__typename for abstract type %s must be a string", abstractType)
	}
	return name.StringValue, nil
}

// SerializeLeaf renders scalar and enum values as JSON-safe Go values.
// Document numbers arrive as float64: Int narrows integral values and ID
// stringifies them. Values of unknown scalar or enum types pass through
// unchanged, so wrapping runtimes can delegate their leaves here.
func (r *Runtime) SerializeLeaf(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch scalarOrEnumTypeName {
	case "Int":
		switch v := value.(type) {
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
			return nil, fmt.Errorf("cannot serialize %v as Int", v)
		case int, int32, int64:
			return v, nil
		}
	case "ID":
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10), nil
			}
		case int:
			return strconv.Itoa(v), nil
		}
	}
	switch v := value.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	default:
		return v, nil
	}
}

// goValue converts a document value for interpreter consumption. Struct
// values stay *structpb.Struct so they can serve as the source of nested
// lookups; everything else becomes a plain Go value.
func goValue(v *structpb.Value) any {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil
	case *structpb.Value_NumberValue:
		return k.NumberValue
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_BoolValue:
		return k.BoolValue
	case *structpb.Value_StructValue:
		return k.StructValue
	case *structpb.Value_ListValue:
		items := k.ListValue.GetValues()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = goValue(it)
		}
		return out
	default:
		return nil
	}
}
