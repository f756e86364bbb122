package interpreter

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	exec "github.com/graphmill/graphmill/internal/exec"
	language "github.com/graphmill/graphmill/internal/language"
	schema "github.com/graphmill/graphmill/internal/schema"
)

func TestCoerceVariableValues_InputObjectValidation(t *testing.T) {
	sch := schema.NewSchema("")

	input := schema.NewType("FilterInput", schema.TypeKindInputObject, "")
	input.AddInputField(schema.NewInputValue("required", "", schema.NonNullType(schema.NamedType("String"))))
	input.AddInputField(schema.NewInputValue("optional", "", schema.NamedType("Int")))
	sch.AddType(input)

	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "input",
				Type:     &ast.Type{NamedType: "FilterInput", NonNull: true},
			},
		},
	}

	_, err := coerceVariableValues(sch, op, map[string]any{
		"input": map[string]any{
			"optional": 10,
		},
	}, &exec.Query{Schema: sch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "required field 'required'")
}

func TestCoerceVariableValues_InputObjectUnknownField(t *testing.T) {
	sch := schema.NewSchema("")

	input := schema.NewType("FilterInput", schema.TypeKindInputObject, "")
	input.AddInputField(schema.NewInputValue("text", "", schema.NamedType("String")))
	sch.AddType(input)

	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "input",
				Type:     &ast.Type{NamedType: "FilterInput"},
			},
		},
	}

	_, err := coerceVariableValues(sch, op, map[string]any{
		"input": map[string]any{
			"text":  "hi",
			"bogus": 1,
		},
	}, &exec.Query{Schema: sch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field 'bogus'")
}

func TestCoerceVariableValues_InputObjectNullRequiredField(t *testing.T) {
	sch := schema.NewSchema("")

	input := schema.NewType("FilterInput", schema.TypeKindInputObject, "")
	input.AddInputField(schema.NewInputValue("required", "", schema.NonNullType(schema.NamedType("String"))))
	sch.AddType(input)

	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "input",
				Type:     &ast.Type{NamedType: "FilterInput"},
			},
		},
	}

	_, err := coerceVariableValues(sch, op, map[string]any{
		"input": map[string]any{
			"required": nil,
		},
	}, &exec.Query{Schema: sch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-null")
}

func TestCoerceVariableValues_InputObjectDefaultsAndKeywords(t *testing.T) {
	sch := schema.NewSchema("")

	input := schema.NewType("PageInput", schema.TypeKindInputObject, "")
	input.AddInputField(schema.NewInputValue("first", "", schema.NamedType("Int")).SetKeyword("first_n"))
	input.AddInputField(schema.NewInputValue("mode", "", schema.NamedType("String")).SetDefault("fast"))
	sch.AddType(input)

	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "page",
				Type:     &ast.Type{NamedType: "PageInput"},
			},
		},
	}

	coerced, err := coerceVariableValues(sch, op, map[string]any{
		"page": map[string]any{"first": 2},
	}, &exec.Query{Schema: sch})
	require.NoError(t, err)

	obj, ok := coerced["page"].(*exec.InputObject)
	require.True(t, ok, "expected *exec.InputObject, got %T", coerced["page"])
	require.Equal(t, 2, obj.Get("first_n"))
	require.Equal(t, "fast", obj.Get("mode"))
}

func TestCoerceVariableValues_ScalarTypeMismatch(t *testing.T) {
	sch := schema.NewSchema("")

	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "count",
				Type:     &ast.Type{NamedType: "Int", NonNull: true},
			},
		},
	}

	_, err := coerceVariableValues(sch, op, map[string]any{
		"count": "42",
	}, &exec.Query{Schema: sch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot coerce")
}

func TestCoerceVariableValues_IntRejectsFractional(t *testing.T) {
	sch := schema.NewSchema("")

	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "count",
				Type:     &ast.Type{NamedType: "Int"},
			},
		},
	}

	// JSON numbers decode as float64; integral ones coerce, fractional
	// ones do not.
	coerced, err := coerceVariableValues(sch, op, map[string]any{"count": float64(7)}, &exec.Query{Schema: sch})
	require.NoError(t, err)
	require.Equal(t, 7, coerced["count"])

	_, err = coerceVariableValues(sch, op, map[string]any{"count": 7.5}, &exec.Query{Schema: sch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot coerce")
}

func TestCoerceVariableValues_EnumMembership(t *testing.T) {
	sch := schema.NewSchema("")
	sch.AddType(schema.NewType("Color", schema.TypeKindEnum, "").
		AddEnumValue(schema.NewEnumValue("RED", "")).
		AddEnumValue(schema.NewEnumValue("BLUE", "")))

	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "color",
				Type:     &ast.Type{NamedType: "Color"},
			},
		},
	}

	coerced, err := coerceVariableValues(sch, op, map[string]any{"color": "RED"}, &exec.Query{Schema: sch})
	require.NoError(t, err)
	require.Equal(t, "RED", coerced["color"])

	_, err = coerceVariableValues(sch, op, map[string]any{"color": "GREEN"}, &exec.Query{Schema: sch})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a value of enum Color")
}

func TestCoerceVariableValues_SingleValueAsList(t *testing.T) {
	sch := schema.NewSchema("")

	op := &language.OperationDefinition{
		Operation: language.Query,
		VariableDefinitions: ast.VariableDefinitionList{
			&ast.VariableDefinition{
				Variable: "ids",
				Type:     &ast.Type{Elem: &ast.Type{NamedType: "Int"}},
			},
		},
	}

	coerced, err := coerceVariableValues(sch, op, map[string]any{"ids": 3}, &exec.Query{Schema: sch})
	require.NoError(t, err)
	require.Equal(t, []any{3}, coerced["ids"])
}
