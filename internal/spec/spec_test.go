package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "id": "replication",
  "title": "Write Replication",
  "layout": {"type": "sequence"},
  "nodes": [
    {"id": "client", "label": "Client", "type": "client"},
    {"id": "coord", "label": "Coordinator", "type": "coordinator", "rack": "rack-a",
     "meta": {"zone": "eu-1"}}
  ],
  "edges": [
    {"id": "e1", "from": "client", "to": "coord", "kind": "control",
     "metrics": {"size": "4 KiB", "latency": "1 ms"}}
  ],
  "overlays": [
    {"id": "fail-coord", "diff": {"remove": {"nodeIds": ["coord"]}}}
  ],
  "scenes": [
    {"id": "s1", "name": "Failure", "overlays": ["fail-coord"]}
  ]
}`

func TestParseJSON(t *testing.T) {
	s, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "replication", s.ID)
	assert.Equal(t, "Write Replication", s.Title)
	assert.Equal(t, LayoutSequence, s.Layout.Kind)
	require.Len(t, s.Nodes, 2)
	assert.Equal(t, NodeCoordinator, s.Nodes[1].Kind)
	assert.Equal(t, "eu-1", s.Nodes[1].Meta["zone"])
	require.Len(t, s.Edges, 1)
	assert.Equal(t, "4 KiB", s.Edges[0].Metrics.Size)
	require.Len(t, s.Overlays, 1)
	assert.Equal(t, []string{"coord"}, s.Overlays[0].Diff.Remove.NodeIDs)
	require.Len(t, s.Scenes, 1)
	assert.Equal(t, []string{"fail-coord"}, s.Scenes[0].Overlays)
}

func TestParseJSON_Defaults(t *testing.T) {
	s, err := ParseJSON([]byte(`{"id": "bare"}`))
	require.NoError(t, err)

	assert.Equal(t, LayoutFlow, s.Layout.Kind, "missing layout defaults to flow")
	assert.Equal(t, "bare", s.Title, "missing title falls back to the id")
	assert.NotNil(t, s.Nodes)
	assert.NotNil(t, s.Edges)
	assert.Empty(t, s.Nodes)
}

func TestParseJSON_MissingID(t *testing.T) {
	_, err := ParseJSON([]byte(`{"title": "anonymous"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestParseYAML(t *testing.T) {
	doc := `
id: cache-tour
layout:
  type: flow
nodes:
  - id: edge-cache
    label: Edge Cache
    type: storage-node
edges:
  - id: e1
    from: edge-cache
    to: edge-cache
    kind: cache
    label: refresh
`
	s, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "cache-tour", s.ID)
	assert.Equal(t, LayoutFlow, s.Layout.Kind)
	require.Len(t, s.Nodes, 1)
	assert.Equal(t, NodeStorage, s.Nodes[0].Kind)
	assert.Equal(t, EdgeCache, s.Edges[0].Kind)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json with schema validation", func(t *testing.T) {
		path := filepath.Join(dir, "replication.json")
		require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

		s, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "replication", s.ID)
	})

	t.Run("schema violation is reported", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		bad := `{"id": "broken", "edges": [{"id": "e1"}]}`
		require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema")
	})

	t.Run("yaml skips schema validation", func(t *testing.T) {
		path := filepath.Join(dir, "tour.yaml")
		require.NoError(t, os.WriteFile(path, []byte("id: tour\n"), 0o644))

		s, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "tour", s.ID)
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := filepath.Join(dir, "spec.toml")
		require.NoError(t, os.WriteFile(path, []byte("id = 'nope'"), 0o644))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported")
	})
}

func TestValidateDocument(t *testing.T) {
	assert.NoError(t, ValidateDocument([]byte(sampleJSON)))
	assert.Error(t, ValidateDocument([]byte(`{"title": "no id"}`)))
	assert.Error(t, ValidateDocument([]byte(`{"id": "x", "layout": {"type": "mosaic"}}`)))
	assert.Error(t, ValidateDocument([]byte(`not json`)))
}

func TestClone_Independence(t *testing.T) {
	s, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)

	c := s.Clone()
	require.True(t, StructurallyEqual(s, c))

	c.Nodes[1].Meta["zone"] = "us-2"
	c.Edges[0].Metrics.Size = "8 KiB"
	c.Nodes[0].Highlighted = true
	c.Scenes[0].Overlays[0] = "other"

	assert.Equal(t, "eu-1", s.Nodes[1].Meta["zone"])
	assert.Equal(t, "4 KiB", s.Edges[0].Metrics.Size)
	assert.False(t, s.Nodes[0].Highlighted)
	assert.Equal(t, "fail-coord", s.Scenes[0].Overlays[0])
}

func TestStructurallyEqual(t *testing.T) {
	a := Node{ID: "n1", Label: "Node", Kind: NodeClient}
	b := Node{ID: "n1", Label: "Node", Kind: NodeClient}
	assert.True(t, StructurallyEqual(a, b))

	b.Label = "Renamed"
	assert.False(t, StructurallyEqual(a, b))

	// Markers participate in the canonical form, so a highlight-only
	// change is a structural change.
	c := a
	c.Highlighted = true
	assert.False(t, StructurallyEqual(a, c))
}

func TestLookups(t *testing.T) {
	s, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)

	n, ok := s.Node("coord")
	require.True(t, ok)
	assert.Equal(t, "Coordinator", n.Label)

	_, ok = s.Node("ghost")
	assert.False(t, ok)

	o, ok := s.Overlay("fail-coord")
	require.True(t, ok)
	assert.NotNil(t, o.Diff.Remove)

	sc, ok := s.Scene("s1")
	require.True(t, ok)
	assert.Equal(t, "Failure", sc.Name)

	_, ok = s.Scene("s9")
	assert.False(t, ok)
}
