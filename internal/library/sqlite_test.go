package library

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepviz/internal/spec"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "specs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func storedSpec(id string) *spec.Specification {
	return &spec.Specification{
		ID:     id,
		Title:  "Stored " + id,
		Layout: spec.Layout{Kind: spec.LayoutSequence},
		Nodes:  []spec.Node{{ID: id + "-n1", Label: "Node", Kind: spec.NodeClient}},
		Edges:  []spec.Edge{},
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSpecification(ctx, storedSpec("quorum")))

	got, err := store.GetSpecification(ctx, "quorum")
	require.NoError(t, err)
	assert.Equal(t, "quorum", got.ID)
	assert.Equal(t, "Stored quorum", got.Title)
	assert.Equal(t, spec.LayoutSequence, got.Layout.Kind)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "quorum-n1", got.Nodes[0].ID)
}

func TestSQLiteStore_SaveIsUpsert(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first := storedSpec("quorum")
	require.NoError(t, store.SaveSpecification(ctx, first))

	second := storedSpec("quorum")
	second.Title = "Rewritten"
	require.NoError(t, store.SaveSpecification(ctx, second))

	got, err := store.GetSpecification(ctx, "quorum")
	require.NoError(t, err)
	assert.Equal(t, "Rewritten", got.Title)

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStore_SaveAllAndLoadAll(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	batch := []*spec.Specification{
		storedSpec("zeta"),
		storedSpec("alpha"),
		storedSpec("mid"),
	}
	require.NoError(t, store.SaveAll(ctx, batch))

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)
	assert.Equal(t, "zeta", all[2].ID)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSpecification(ctx, storedSpec("quorum")))
	require.NoError(t, store.DeleteSpecification(ctx, "quorum"))

	_, err := store.GetSpecification(ctx, "quorum")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
