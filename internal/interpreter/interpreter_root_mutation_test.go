package interpreter

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	exec "github.com/graphmill/graphmill/internal/exec"
	schema "github.com/graphmill/graphmill/internal/schema"
)

// Pattern: Result comparison
func TestMutation_Serial_Evaluation_Order_Result(t *testing.T) {
	sch := schema.NewSchema("")
	sch.SetQueryType("Query")
	sch.SetMutationType("Mutation")
	sch.AddType(newObjectType("Query"))
	sch.AddType(newObjectType(
		"Mutation",
		schema.NewField("m1", "", schema.NamedType("String")),
		schema.NewField("m2", "", schema.NamedType("String")),
		schema.NewField("m3", "", schema.NamedType("String")),
	))
	sch.AddType(newScalarType("String"))
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.m1": NewMockValueResolver("1"),
		"Mutation.m2": NewMockErrorResolver(fmt.Errorf("boom")),
		"Mutation.m3": NewMockValueResolver("3"),
	})
	in := New(rt, sch)
	doc := mustParseQuery(t, "mutation { m1 m2 m3 }")

	gotRes := in.Execute(context.Background(), doc, "", nil, nil)
	gotCalls := rt.GetCalls()

	wantRes := &Result{Data: map[string]any{"m1": "1", "m2": nil, "m3": "3"}, Errors: []GraphQLError{{Message: "boom", Path: exec.Path{"m2"}}}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("Result mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []Call{
		{ObjectType: "Mutation", Field: "m1", Source: nil, Args: map[string]any{}},
		{ObjectType: "Mutation", Field: "m2", Source: nil, Args: map[string]any{}},
		{ObjectType: "Mutation", Field: "m3", Source: nil, Args: map[string]any{}},
	}
	if diff := cmp.Diff(wantCalls, gotCalls); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Calls comparison
func TestMutation_DrainBetweenRootFields_Calls(t *testing.T) {
	sch := schema.NewSchema("")
	sch.SetQueryType("Query")
	sch.SetMutationType("Mutation")
	sch.AddType(newObjectType("Query"))
	sch.AddType(newObjectType(
		"Mutation",
		schema.NewField("m1", "", schema.NamedType("String")).SetLazy(true),
		schema.NewField("m2", "", schema.NamedType("String")),
	))
	sch.AddType(newScalarType("String"))
	registerThunks(sch)

	log := &forceLog{}
	rt := NewMockRuntime(map[string]MockResolver{
		"Mutation.m1": func(ctx context.Context, src any, args map[string]any) (any, error) {
			log.add("resolve:m1")
			return newThunk(log, "force:m1", "1"), nil
		},
		"Mutation.m2": func(ctx context.Context, src any, args map[string]any) (any, error) {
			log.add("resolve:m2")
			return "2", nil
		},
	})
	in := New(rt, sch)
	doc := mustParseQuery(t, "mutation { m1 m2 }")

	gotRes := in.Execute(context.Background(), doc, "", nil, nil)

	wantRes := &Result{Data: map[string]any{"m1": "1", "m2": "2"}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("Result mismatch (-want +got):\n%s", diff)
	}

	// m1's deferred work drains to completion before m2 starts, so later
	// root fields observe earlier side effects.
	want := []string{"resolve:m1", "force:m1", "resolve:m2"}
	if diff := cmp.Diff(want, log.snapshot()); diff != "" {
		t.Fatalf("evaluation order mismatch (-want +got):\n%s", diff)
	}
}
