package exec_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	exec "github.com/graphmill/graphmill/internal/exec"
	schema "github.com/graphmill/graphmill/internal/schema"
)

func TestContext_ScopedEnterRestoresOnExit(t *testing.T) {
	ctx := newTestContext(t)

	ctx.EnterPath("a", func() {
		ctx.EnterType(schema.NamedType("Obj"), func() {
			ctx.EnterObject("source-a", func() {
				if diff := cmp.Diff(exec.Path{"a"}, ctx.Path()); diff != "" {
					t.Fatalf("path mismatch (-want +got):\n%s", diff)
				}
				require.Equal(t, "Obj", ctx.CurrentType().GetNamedType())
				require.Equal(t, "source-a", ctx.CurrentObject())
			})
		})
	})

	require.Empty(t, ctx.Path())
	require.Nil(t, ctx.CurrentType())
	require.Nil(t, ctx.CurrentObject())
}

func TestContext_ScopedEnterRestoresOnPanic(t *testing.T) {
	ctx := newTestContext(t)

	func() {
		defer func() { _ = recover() }()
		ctx.EnterPath("a", func() {
			ctx.EnterObject("src", func() {
				panic("resolver blew up")
			})
		})
	}()

	require.Empty(t, ctx.Path())
	require.Nil(t, ctx.CurrentObject())
}

func TestContext_EnterTypeResolvesLateBound(t *testing.T) {
	sch := schema.NewSchema("")
	sch.AddType(schema.NewType("Item", schema.TypeKindObject, ""))
	ctx := exec.NewContext(&exec.Query{Schema: sch})

	ctx.EnterPath("item", func() {
		ctx.EnterType(schema.LateBoundType("Item"), func() {
			if diff := cmp.Diff(schema.NamedType("Item"), ctx.CurrentType()); diff != "" {
				t.Fatalf("resolved type mismatch (-want +got):\n%s", diff)
			}
			// The committed type is the resolved one; a write here consults it.
			ctx.Write(map[string]any{})
		})
	})

	want := map[string]any{"item": map[string]any{}}
	if diff := cmp.Diff(want, ctx.FinalValue()); diff != "" {
		t.Fatalf("final value mismatch (-want +got):\n%s", diff)
	}
}

func TestContext_EnterTypeUnregisteredLateBoundPanics(t *testing.T) {
	ctx := newTestContext(t)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic for unregistered late-bound type")
		}
		_, ok := r.(*exec.InvariantError)
		require.True(t, ok, "panic value should be *InvariantError, got %T", r)
	}()
	ctx.EnterPath("ghost", func() {
		ctx.EnterType(schema.LateBoundType("Ghost"), func() {})
	})
}

func TestContext_ForkIsolatesPositionSharesTree(t *testing.T) {
	ctx := newTestContext(t)

	var fork *exec.Context
	ctx.EnterPath("parent", func() {
		ctx.EnterType(schema.NamedType("Obj"), func() {
			ctx.EnterObject("src", func() {
				ctx.Write(map[string]any{})
				fork = ctx.Fork()
			})
		})
	})

	// The original popped back to the root; the fork keeps the position it
	// captured.
	require.Empty(t, ctx.Path())
	if diff := cmp.Diff(exec.Path{"parent"}, fork.Path()); diff != "" {
		t.Fatalf("fork path mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "src", fork.CurrentObject())

	// Moving the fork deeper never shows on the original.
	fork.EnterPath("child", func() {
		fork.EnterType(schema.NamedType("String"), func() {
			if diff := cmp.Diff(exec.Path{"parent", "child"}, fork.Path()); diff != "" {
				t.Fatalf("fork path mismatch (-want +got):\n%s", diff)
			}
			require.Empty(t, ctx.Path())
			fork.Write("from fork")
		})
	})

	ctx.EnterPath("sibling", func() {
		ctx.EnterType(schema.NamedType("String"), func() {
			ctx.Write("from original")
		})
	})

	// Both writes landed in the one shared tree.
	want := map[string]any{
		"parent":  map[string]any{"child": "from fork"},
		"sibling": "from original",
	}
	if diff := cmp.Diff(want, ctx.FinalValue()); diff != "" {
		t.Fatalf("final value mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, fork.FinalValue()); diff != "" {
		t.Fatalf("fork final value mismatch (-want +got):\n%s", diff)
	}
}

func TestContext_ForkParentAndIDs(t *testing.T) {
	ctx := newTestContext(t)

	fork := ctx.Fork()
	forkOfFork := fork.Fork()

	require.Nil(t, ctx.Parent())
	require.Same(t, ctx, fork.Parent())
	require.Same(t, fork, forkOfFork.Parent())

	require.NotEqual(t, ctx.ID(), fork.ID())
	require.NotEqual(t, fork.ID(), forkOfFork.ID())
}

func TestContext_ForkSharesTypeCache(t *testing.T) {
	ctx := newTestContext(t)

	// The fork commits a non-null type; the original's write at the same
	// position must observe it and propagate.
	fork := ctx.Fork()
	fork.EnterPath("a", func() {
		fork.EnterType(schema.NonNullType(schema.NamedType("String")), func() {})
	})

	ctx.EnterPath("a", func() {
		ctx.Write(nil)
	})

	require.True(t, ctx.CompletelyNulled())
	require.Nil(t, ctx.FinalValue())
}
