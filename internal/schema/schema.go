package schema

import (
	"fmt"
	"reflect"
)

// Schema is the executable description of a service: every named type,
// every directive, and the root operation bindings.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string

	lazyResolvers map[reflect.Type]lazyResolver
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// Clone returns a copy of s that owns its Types map, so callers can add
// types without mutating s. Type and directive definitions are shared, and
// lazy registrations made so far carry over.
func (s *Schema) Clone() *Schema {
	c := &Schema{
		QueryType:        s.QueryType,
		MutationType:     s.MutationType,
		SubscriptionType: s.SubscriptionType,
		Types:            make(map[string]*Type, len(s.Types)),
		Directives:       s.Directives,
		Description:      s.Description,
		lazyResolvers:    s.lazyResolvers,
	}
	for name, t := range s.Types {
		c.Types[name] = t
	}
	return c
}

// ResolveLateBound replaces late-bound references inside t with named
// references, verifying that each target is registered. References without
// late-bound parts are returned unchanged.
func (s *Schema) ResolveLateBound(t *TypeRef) (*TypeRef, error) {
	switch {
	case t == nil:
		return nil, nil
	case t.Kind == TypeRefKindLateBound:
		if s.Types[t.Named] == nil {
			return nil, fmt.Errorf("late-bound type %q is not registered", t.Named)
		}
		return &TypeRef{Kind: TypeRefKindNamed, Named: t.Named}, nil
	case t.OfType != nil:
		inner, err := s.ResolveLateBound(t.OfType)
		if err != nil {
			return nil, err
		}
		if inner == t.OfType {
			return t, nil
		}
		return &TypeRef{Kind: t.Kind, OfType: inner}, nil
	default:
		return t, nil
	}
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For INTERFACE and UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	SpecifiedByURL *string
	OneOf          bool

	// CoerceInput overrides input coercion for SCALAR and ENUM types. It
	// receives the raw input value and the per-query context bag and returns
	// the coerced value. When nil, builtin coercion rules apply.
	CoerceInput func(value any, queryContext map[string]any) (any, error)
}

// Field returns the field definition with the given name, or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InputField returns the input field definition with the given name, or nil.
func (t *Type) InputField(name string) *InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasEnumValue reports whether name is a declared value of the enum.
func (t *Type) HasEnumValue(name string) bool {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return true
		}
	}
	return false
}

// Field represents a field on an object or interface
type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue
	// Lazy marks fields whose resolution produces a deferred value that is
	// forced later, when the execution queue reaches its depth.
	Lazy              bool
	IsDeprecated      bool
	DeprecationReason string
}

// Argument returns the argument definition with the given name, or nil.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named and late-bound types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
	// TypeRefKindLateBound names a type that may not be registered yet, so
	// that mutually recursive types can be declared in any order. Late-bound
	// references are resolved against the schema before execution uses them.
	TypeRefKindLateBound TypeRefKind = "LATE_BOUND"
)

// Helper functions for TypeRef
func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue describes an argument or input object field.
type InputValue struct {
	Name string
	// Keyword is the key under which the coerced value is delivered to the
	// resolver. It defaults to Name.
	Keyword     string
	Description string
	Type        *TypeRef
	// DefaultValue applies only when HasDefault is set; a nil DefaultValue
	// with HasDefault means an explicit null default.
	DefaultValue      any
	HasDefault        bool
	IsDeprecated      bool
	DeprecationReason string
}

// KeywordName returns the key under which the coerced value is delivered.
func (v *InputValue) KeywordName() string {
	if v.Keyword != "" {
		return v.Keyword
	}
	return v.Name
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// LateBoundType references a type by name without requiring it to be
// registered yet.
func LateBoundType(name string) *TypeRef {
	return &TypeRef{Kind: TypeRefKindLateBound, Named: name}
}

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
