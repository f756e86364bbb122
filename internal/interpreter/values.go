package interpreter

import (
	"fmt"
	"strconv"

	exec "github.com/graphmill/graphmill/internal/exec"
	language "github.com/graphmill/graphmill/internal/language"
	schema "github.com/graphmill/graphmill/internal/schema"
)

// coerceVariableValues coerces request-supplied variable values against the
// operation's variable definitions. Unlike literal argument coercion, the
// values arrive as plain JSON-decoded Go values, so scalar strictness,
// enum membership and input-object field checks all apply here. Any failure
// aborts the request before execution starts.
func coerceVariableValues(
	sch *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
	query *exec.Query,
) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		declared := typeRefFromAST(varDef.Type)

		value, provided := variableValues[name]
		if !provided {
			if varDef.DefaultValue != nil {
				value = astValueToGo(varDef.DefaultValue)
			} else if varDef.Type.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, varDef.Type.String())
			} else {
				continue
			}
		}
		if value == nil && varDef.Type.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, varDef.Type.String())
		}
		cv, err := coerceVariableValue(sch, declared, value, query)
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %v", name, varDef.Type.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceVariableValue coerces one runtime value against a declared type.
func coerceVariableValue(sch *schema.Schema, t *schema.TypeRef, value any, query *exec.Query) (any, error) {
	if t.IsNonNull() {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceVariableValue(sch, schema.Unwrap(t), value, query)
	}
	if value == nil {
		return nil, nil
	}
	if t.IsList() {
		inner := schema.Unwrap(t)
		items, ok := value.([]any)
		if !ok {
			// A single value where a list is expected becomes a list of one.
			cv, err := coerceVariableValue(sch, inner, value, query)
			if err != nil {
				return nil, err
			}
			return []any{cv}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := coerceVariableValue(sch, inner, item, query)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}

	named := sch.Types[schema.GetNamedType(t)]
	if named == nil {
		return value, nil
	}

	switch named.Kind {
	case schema.TypeKindInputObject:
		return coerceInputObjectVariable(sch, named, value, query)
	case schema.TypeKindEnum:
		ev, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v (%T) to enum %s", value, value, named.Name)
		}
		if !named.HasEnumValue(ev) {
			return nil, fmt.Errorf("'%s' is not a value of enum %s", ev, named.Name)
		}
		return ev, nil
	default:
		if named.CoerceInput != nil {
			return named.CoerceInput(value, query.Context)
		}
		return value, nil
	}
}

// coerceInputObjectVariable checks an input-object variable field by field:
// unknown fields are rejected, declared fields are coerced recursively,
// absent fields pick up declared defaults, and required fields must be
// present and non-null.
func coerceInputObjectVariable(sch *schema.Schema, inputType *schema.Type, value any, query *exec.Query) (any, error) {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to input object %s", value, value, inputType.Name)
	}

	coerced := make(map[string]any, len(inputType.InputFields))
	for name, raw := range fields {
		def := inputType.InputField(name)
		if def == nil {
			return nil, fmt.Errorf("input object %s: unknown field '%s'", inputType.Name, name)
		}
		cv, err := coerceVariableValue(sch, def.Type, raw, query)
		if err != nil {
			return nil, fmt.Errorf("input object %s: field '%s': %v", inputType.Name, name, err)
		}
		coerced[def.KeywordName()] = cv
	}
	for _, def := range inputType.InputFields {
		if _, ok := coerced[def.KeywordName()]; ok {
			continue
		}
		if def.HasDefault {
			coerced[def.KeywordName()] = def.DefaultValue
			continue
		}
		if def.Type.IsNonNull() {
			return nil, fmt.Errorf("input object %s: required field '%s' was not provided", inputType.Name, def.Name)
		}
	}
	for _, def := range inputType.InputFields {
		if v, ok := coerced[def.KeywordName()]; ok && v == nil && def.Type.IsNonNull() {
			return nil, fmt.Errorf("input object %s: required field '%s' must not be null", inputType.Name, def.Name)
		}
	}
	return &exec.InputObject{Type: inputType, Fields: coerced, Query: query}, nil
}

// astValueToGo converts an AST literal to a plain Go value. Variable
// references inside variable defaults are not legal and lower to nil.
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		return schema.NonNullType(typeRefFromAST(&inner))
	}
	if t.Elem != nil {
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return schema.NamedType(t.NamedType)
}
