package interpreter

import (
	language "github.com/graphmill/graphmill/internal/language"
	schema "github.com/graphmill/graphmill/internal/schema"
)

// collectedFieldMap preserves field order from the original query.
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{
		fields: make([]collectedField, 0),
		index:  make(map[string]int),
	}
}

func (cfm *collectedFieldMap) add(responseName string, field *language.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
	} else {
		cfm.index[responseName] = len(cfm.fields)
		cfm.fields = append(cfm.fields, collectedField{
			ResponseName: responseName,
			Fields:       []*language.Field{field},
		})
	}
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields groups the selections that apply to objectType by response
// name, expanding fragment spreads and inline fragments and honoring the
// @skip and @include directives.
func (r *run) collectFields(objectType *schema.Type, selectionSet language.SelectionSet) *collectedFieldMap {
	grouped := newCollectedFieldMap()
	visitedFragments := make(map[string]bool)
	r.collectFieldsImpl(objectType, selectionSet, grouped, visitedFragments)
	return grouped
}

func (r *run) collectFieldsImpl(objectType *schema.Type, selectionSet language.SelectionSet, grouped *collectedFieldMap, visitedFragments map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !r.shouldIncludeNode(sel.Directives) {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}
			grouped.add(responseName, sel)

		case *language.InlineFragment:
			if !r.shouldIncludeNode(sel.Directives) {
				continue
			}
			if !r.fragmentApplies(objectType, sel.TypeCondition) {
				continue
			}
			r.collectFieldsImpl(objectType, sel.SelectionSet, grouped, visitedFragments)

		case *language.FragmentSpread:
			if !r.shouldIncludeNode(sel.Directives) {
				continue
			}
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := r.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil {
				continue
			}
			if !r.fragmentApplies(objectType, fragmentDef.TypeCondition) {
				continue
			}
			if !r.shouldIncludeNode(fragmentDef.Directives) {
				continue
			}
			r.collectFieldsImpl(objectType, fragmentDef.SelectionSet, grouped, visitedFragments)
		}
	}
}

// fragmentApplies reports whether a fragment with the given type condition
// selects into objectType: the condition names the type itself, an
// interface it implements, or a union it belongs to.
func (r *run) fragmentApplies(objectType *schema.Type, typeCondition string) bool {
	if typeCondition == "" || typeCondition == objectType.Name {
		return true
	}
	cond := r.in.schema.Types[typeCondition]
	if cond == nil {
		return false
	}
	switch cond.Kind {
	case schema.TypeKindInterface, schema.TypeKindUnion:
		for _, name := range cond.PossibleTypes {
			if name == objectType.Name {
				return true
			}
		}
	}
	return false
}

// shouldIncludeNode evaluates the @skip and @include directives.
func (r *run) shouldIncludeNode(directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := r.directiveArgument(skip, "if").(bool); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := r.directiveArgument(include, "if").(bool); ok && !v {
			return false
		}
	}
	return true
}

func (r *run) directiveArgument(directive *language.Directive, argName string) any {
	for _, arg := range directive.Arguments {
		if arg.Name == argName {
			return r.valueFromAST(arg.Value)
		}
	}
	return nil
}

// valueFromAST converts an AST value to a runtime value, resolving variable
// references against the coerced variable values.
func (r *run) valueFromAST(value *language.Value) any {
	if value == nil {
		return nil
	}
	if value.Kind == language.Variable {
		return r.variables[value.Raw]
	}
	return astValueToGo(value)
}
