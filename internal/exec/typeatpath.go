package exec

import (
	schema "github.com/graphmill/graphmill/internal/schema"
)

// typeTrie records the output type committed at every position entered.
// List indices are normalized to a single canonical slot because all
// elements of a list share one output type.
type typeTrie struct {
	typ      *schema.TypeRef
	children map[PathElement]*typeTrie
}

func newTypeTrie() *typeTrie { return &typeTrie{} }

func (t *typeTrie) commit(path Path, typ *schema.TypeRef) {
	node := t
	for _, seg := range path {
		seg = normalizeSegment(seg)
		child := node.children[seg]
		if child == nil {
			if node.children == nil {
				node.children = make(map[PathElement]*typeTrie)
			}
			child = &typeTrie{}
			node.children[seg] = child
		}
		node = child
	}
	node.typ = typ
}

// lookup returns the type committed at path. Asking about a position never
// entered is a caller-sequencing defect and panics.
func (t *typeTrie) lookup(path Path) *schema.TypeRef {
	node := t
	for i, seg := range path {
		child := node.children[normalizeSegment(seg)]
		if child == nil {
			panic(&InvariantError{Message: "no type committed for position", Path: path[:i+1]})
		}
		node = child
	}
	return node.typ
}

func normalizeSegment(seg PathElement) PathElement {
	if _, ok := seg.(int); ok {
		return 0
	}
	return seg
}
