package exec

import (
	"errors"
	"fmt"
	"strconv"

	language "github.com/graphmill/graphmill/internal/language"
	schema "github.com/graphmill/graphmill/internal/schema"
)

// errOmitArgument signals that an argument referenced a variable the
// request did not bind, so the argument must be left out of the coerced
// map entirely. Omission stays distinguishable from an explicit null.
var errOmitArgument = errors.New("omit argument")

// InputObject is the coerced form of an input-object literal: the declared
// type, the coerced field values keyed by keyword name, and the query the
// coercion ran under.
type InputObject struct {
	Type   *schema.Type
	Fields map[string]any
	Query  *Query
}

// Get returns the coerced value stored under the given keyword name.
func (o *InputObject) Get(keyword string) any { return o.Fields[keyword] }

// CoerceArguments converts literal arguments into a map keyed by each
// argument definition's keyword name. Arguments referencing unbound
// variables are omitted rather than set to null; afterward, every absent
// definition that declares a default receives it.
func (c *Context) CoerceArguments(defs []*schema.InputValue, args language.ArgumentList) (map[string]any, error) {
	coerced := make(map[string]any, len(defs))
	for _, arg := range args {
		def := argumentDefinition(defs, arg.Name)
		if def == nil {
			continue
		}
		value, err := c.coerceValue(def.Type, arg.Value)
		if errors.Is(err, errOmitArgument) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		coerced[def.KeywordName()] = value
	}
	for _, def := range defs {
		if _, ok := coerced[def.KeywordName()]; ok {
			continue
		}
		if def.HasDefault {
			coerced[def.KeywordName()] = def.DefaultValue
		}
	}
	return coerced, nil
}

// coerceValue coerces one literal against its declared type. Non-null
// wrappers are transparent here: nullability violations are the writer's
// concern, not the coercion engine's.
func (c *Context) coerceValue(t *schema.TypeRef, value *language.Value) (any, error) {
	if value != nil && value.Kind == language.Variable {
		v, ok := c.st.query.Variables[value.Raw]
		if !ok {
			return nil, errOmitArgument
		}
		return v, nil
	}

	switch {
	case t.IsNonNull():
		return c.coerceValue(schema.Unwrap(t), value)

	case t.IsList():
		if value == nil || value.Kind == language.NullValue {
			return nil, nil
		}
		elemType := schema.Unwrap(t)
		if value.Kind == language.ListValue {
			out := make([]any, 0, len(value.Children))
			for _, child := range value.Children {
				cv, err := c.coerceValue(elemType, child.Value)
				if err != nil {
					return nil, err
				}
				out = append(out, cv)
			}
			return out, nil
		}
		// A single literal where a list is expected becomes a list of one.
		cv, err := c.coerceValue(elemType, value)
		if err != nil {
			return nil, err
		}
		return []any{cv}, nil
	}

	named := c.st.query.Schema.Types[schema.GetNamedType(t)]
	if named != nil && named.Kind == schema.TypeKindInputObject {
		if value == nil || value.Kind == language.NullValue {
			return nil, nil
		}
		args := make(language.ArgumentList, 0, len(value.Children))
		for _, child := range value.Children {
			args = append(args, &language.Argument{Name: child.Name, Value: child.Value})
		}
		fields, err := c.CoerceArguments(named.InputFields, args)
		if err != nil {
			return nil, err
		}
		return &InputObject{Type: named, Fields: fields, Query: c.st.query}, nil
	}

	flat, err := c.flattenValue(value)
	if err != nil {
		return nil, err
	}
	if flat == nil {
		return nil, nil
	}
	if named == nil {
		return flat, nil
	}
	if named.CoerceInput != nil {
		return named.CoerceInput(flat, c.st.query.Context)
	}
	if named.Kind == schema.TypeKindEnum {
		name, ok := flat.(string)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v (%T) to enum %s", flat, flat, named.Name)
		}
		if !named.HasEnumValue(name) {
			return nil, fmt.Errorf("%q is not a value of enum %s", name, named.Name)
		}
		return name, nil
	}
	return flat, nil
}

// flattenValue lowers a literal AST into a plain Go value: enums become
// their name strings, object literals become plain maps, lists flatten
// element-wise, and variable references resolve from the query's bindings.
func (c *Context) flattenValue(value *language.Value) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch value.Kind {
	case language.Variable:
		v, ok := c.st.query.Variables[value.Raw]
		if !ok {
			return nil, errOmitArgument
		}
		return v, nil
	case language.IntValue:
		n, err := strconv.Atoi(value.Raw)
		if err != nil {
			return nil, fmt.Errorf("invalid Int literal %q", value.Raw)
		}
		return n, nil
	case language.FloatValue:
		f, err := strconv.ParseFloat(value.Raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Float literal %q", value.Raw)
		}
		return f, nil
	case language.StringValue, language.BlockValue:
		return value.Raw, nil
	case language.BooleanValue:
		return value.Raw == "true", nil
	case language.NullValue:
		return nil, nil
	case language.EnumValue:
		return value.Raw, nil
	case language.ListValue:
		out := make([]any, 0, len(value.Children))
		for _, child := range value.Children {
			cv, err := c.flattenValue(child.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, cv)
		}
		return out, nil
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, child := range value.Children {
			cv, err := c.flattenValue(child.Value)
			if err != nil {
				return nil, err
			}
			m[child.Name] = cv
		}
		return m, nil
	}
	return nil, fmt.Errorf("unsupported literal kind %d", value.Kind)
}

func argumentDefinition(defs []*schema.InputValue, name string) *schema.InputValue {
	for _, def := range defs {
		if def.Name == name {
			return def
		}
	}
	return nil
}
