package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	language "github.com/graphmill/graphmill/internal/language"
)

// BuildFromSDL parses an SDL document and returns the executable schema.
// Type extensions are merged into their base definitions. The @lazy,
// @deprecated, @specifiedBy and @oneOf directives are consumed into the
// corresponding schema attributes rather than kept as directives.
func BuildFromSDL(sdl string) (*Schema, error) {
	// Add schema definition if missing
	if !strings.Contains(sdl, "schema {") {
		sdl = "schema { query: Query }\n" + sdl
	}
	doc, err := language.ParseSchema("schema.graphql", sdl)
	if err != nil {
		return nil, err
	}

	s := NewSchema("")
	for _, def := range doc.Schema {
		if def.Description != "" {
			s.Description = def.Description
		}
		applyOperationTypes(s, def.OperationTypes)
	}
	for _, ext := range doc.SchemaExtension {
		applyOperationTypes(s, ext.OperationTypes)
	}

	for _, def := range doc.Definitions {
		t, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for _, ext := range doc.Extensions {
		base := s.Types[ext.Name]
		if base == nil {
			return nil, fmt.Errorf("extension of undefined type %q", ext.Name)
		}
		if err := mergeExtension(base, ext); err != nil {
			return nil, err
		}
	}
	for _, dd := range doc.Directives {
		d, err := buildDirectiveDefinition(dd)
		if err != nil {
			return nil, err
		}
		s.AddDirective(d)
	}

	indexPossibleTypes(s)
	return s, nil
}

func applyOperationTypes(s *Schema, ops []*language.OperationTypeDefinition) {
	for _, op := range ops {
		switch op.Operation {
		case language.Query:
			s.SetQueryType(op.Type)
		case language.Mutation:
			s.SetMutationType(op.Type)
		case language.Subscription:
			s.SetSubscriptionType(op.Type)
		}
	}
}

func buildDefinition(def *language.Definition) (*Type, error) {
	switch def.Kind {
	case language.Object:
		return buildCompositeType(def, TypeKindObject)
	case language.Interface:
		return buildCompositeType(def, TypeKindInterface)
	case language.Union:
		return buildUnion(def), nil
	case language.Scalar:
		return buildScalar(def), nil
	case language.Enum:
		return buildEnum(def), nil
	case language.InputObject:
		return buildInput(def)
	}
	return nil, fmt.Errorf("unsupported definition kind %q for type %q", def.Kind, def.Name)
}

func buildCompositeType(def *language.Definition, kind TypeKind) (*Type, error) {
	t := NewType(def.Name, kind, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		f, err := buildField(fd)
		if err != nil {
			return nil, err
		}
		t.AddField(f)
	}
	return t, nil
}

func buildField(def *language.FieldDefinition) (*Field, error) {
	f := NewField(def.Name, def.Description, typeRefFromAST(def.Type))
	if def.Directives.ForName("lazy") != nil {
		f.SetLazy(true)
	}
	if reason, ok := deprecationReason(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		iv, err := buildInputValueDefinition(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives)
		if err != nil {
			return nil, err
		}
		f.AddArgument(iv)
	}
	return f, nil
}

func buildInputValueDefinition(name, description string, typ *language.Type, defaultValue *language.Value, directives language.DirectiveList) (*InputValue, error) {
	iv := NewInputValue(name, description, typeRefFromAST(typ))
	if defaultValue != nil {
		v, err := literalValue(defaultValue)
		if err != nil {
			return nil, fmt.Errorf("default for %q: %w", name, err)
		}
		iv.SetDefault(v)
	}
	if reason, ok := deprecationReason(directives); ok {
		iv.Deprecate(reason)
	}
	return iv, nil
}

func buildEnum(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, v := range def.EnumValues {
		ev := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecationReason(v.Directives); ok {
			ev.Deprecate(reason)
		}
		t.AddEnumValue(ev)
	}
	return t
}

func buildInput(def *language.Definition) (*Type, error) {
	t := NewType(def.Name, TypeKindInputObject, def.Description)
	if def.Directives.ForName("oneOf") != nil {
		t.SetOneOf(true)
	}
	for _, fd := range def.Fields {
		iv, err := buildInputValueDefinition(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives)
		if err != nil {
			return nil, err
		}
		t.AddInputField(iv)
	}
	return t, nil
}

func buildUnion(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindUnion, def.Description)
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	return t
}

func buildScalar(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindScalar, def.Description)
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			t.SetSpecifiedByURL(arg.Value.Raw)
		}
	}
	return t
}

func buildDirectiveDefinition(def *language.DirectiveDefinition) (*Directive, error) {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.AddLocation(string(loc))
	}
	for _, arg := range def.Arguments {
		iv, err := buildInputValueDefinition(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives)
		if err != nil {
			return nil, err
		}
		d.AddArgument(iv)
	}
	return d, nil
}

func mergeExtension(base *Type, ext *language.Definition) error {
	if kindOf(ext.Kind) != base.Kind {
		return fmt.Errorf("cannot extend %s %q as %s", base.Kind, base.Name, ext.Kind)
	}
	switch base.Kind {
	case TypeKindObject, TypeKindInterface:
		for _, name := range ext.Interfaces {
			base.AddInterface(name)
		}
		for _, fd := range ext.Fields {
			f, err := buildField(fd)
			if err != nil {
				return err
			}
			base.AddField(f)
		}
	case TypeKindEnum:
		for _, v := range ext.EnumValues {
			ev := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecationReason(v.Directives); ok {
				ev.Deprecate(reason)
			}
			base.AddEnumValue(ev)
		}
	case TypeKindUnion:
		for _, name := range ext.Types {
			base.AddPossibleType(name)
		}
	case TypeKindInputObject:
		for _, fd := range ext.Fields {
			iv, err := buildInputValueDefinition(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives)
			if err != nil {
				return err
			}
			base.AddInputField(iv)
		}
	case TypeKindScalar:
		// scalar extensions only attach directives; nothing to merge
	}
	return nil
}

func kindOf(kind language.DefinitionKind) TypeKind {
	switch kind {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Scalar:
		return TypeKindScalar
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	}
	return ""
}

// indexPossibleTypes records, on every interface, the object types that
// declare it. Union membership is taken from the union definition itself.
func indexPossibleTypes(s *Schema) {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := s.Types[name]
		if t.Kind != TypeKindObject {
			continue
		}
		for _, ifaceName := range t.Interfaces {
			if iface := s.Types[ifaceName]; iface != nil && iface.Kind == TypeKindInterface {
				iface.AddPossibleType(name)
			}
		}
	}
}

func deprecationReason(directives language.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "No longer supported", true
}

func typeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return NonNullType(typeRefFromAST(&inner))
	}
	if t.Elem != nil {
		return ListType(typeRefFromAST(t.Elem))
	}
	return NamedType(t.NamedType)
}

// literalValue converts a schema-document literal into its Go value.
func literalValue(v *language.Value) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch v.Kind {
	case language.IntValue:
		n, err := strconv.Atoi(v.Raw)
		if err != nil {
			return nil, fmt.Errorf("invalid Int literal %q", v.Raw)
		}
		return n, nil
	case language.FloatValue:
		f, err := strconv.ParseFloat(v.Raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Float literal %q", v.Raw)
		}
		return f, nil
	case language.StringValue, language.BlockValue:
		return v.Raw, nil
	case language.BooleanValue:
		return v.Raw == "true", nil
	case language.NullValue:
		return nil, nil
	case language.EnumValue:
		return v.Raw, nil
	case language.ListValue:
		out := make([]any, 0, len(v.Children))
		for _, c := range v.Children {
			cv, err := literalValue(c.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, cv)
		}
		return out, nil
	case language.ObjectValue:
		m := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			cv, err := literalValue(c.Value)
			if err != nil {
				return nil, err
			}
			m[c.Name] = cv
		}
		return m, nil
	case language.Variable:
		return nil, fmt.Errorf("variable $%s is not allowed in a schema document", v.Raw)
	}
	return nil, fmt.Errorf("unsupported literal kind %d", v.Kind)
}
