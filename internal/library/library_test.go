package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepviz/internal/spec"
)

func TestLibrary_PutGetRemove(t *testing.T) {
	l := New(nil)

	s := &spec.Specification{ID: "quorum", Title: "Quorum Writes"}
	l.Put(s)

	got, ok := l.Get("quorum")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = l.Get("missing")
	assert.False(t, ok)

	l.Remove("quorum")
	_, ok = l.Get("quorum")
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
}

func TestLibrary_ListSortedSummaries(t *testing.T) {
	l := New(nil)
	l.Put(&spec.Specification{
		ID:     "zeta",
		Title:  "Zeta",
		Layout: spec.Layout{Kind: spec.LayoutFlow},
		Nodes:  []spec.Node{{ID: "a"}, {ID: "b"}},
		Edges:  []spec.Edge{{ID: "e1", From: "a", To: "b"}},
		Scenes: []spec.Scene{{ID: "s1", Overlays: []string{}}},
	})
	l.Put(&spec.Specification{ID: "alpha", Title: "Alpha"})

	list := l.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].ID)
	assert.Equal(t, "zeta", list[1].ID)
	assert.Equal(t, 2, list[1].NodeCount)
	assert.Equal(t, 1, list[1].EdgeCount)
	assert.Equal(t, 1, list[1].Scenes)
}

func TestLibrary_LoadDir(t *testing.T) {
	dir := t.TempDir()

	good := `{"id": "replication", "nodes": [{"id": "n1"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "replication.json"), []byte(good), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tour.yaml"), []byte("id: tour\n"), 0o644))
	// Fails schema validation: edges need from/to. Must be skipped, not fatal.
	bad := `{"id": "broken", "edges": [{"id": "e1"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(bad), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	l := New(nil)
	loaded, err := l.LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, loaded)
	assert.Equal(t, 2, l.Len())
	_, ok := l.Get("replication")
	assert.True(t, ok)
	_, ok = l.Get("tour")
	assert.True(t, ok)
	_, ok = l.Get("broken")
	assert.False(t, ok)
}

func TestLibrary_LoadDirMissing(t *testing.T) {
	l := New(nil)
	_, err := l.LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}

func TestSpecFile(t *testing.T) {
	assert.True(t, specFile("a.json"))
	assert.True(t, specFile("a.YAML"))
	assert.True(t, specFile("a.yml"))
	assert.False(t, specFile("a.toml"))
	assert.False(t, specFile("json"))
}
