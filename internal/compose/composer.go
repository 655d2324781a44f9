package compose

import (
	"go.uber.org/zap"

	"stepviz/internal/spec"
)

// Composer applies ordered overlay patches to a base specification,
// producing materialized copies. It is pure with respect to its
// inputs; diagnostics for unknown overlay ids are logged, never
// returned as errors.
type Composer struct {
	log *zap.Logger
}

// New returns a Composer. A nil logger disables diagnostics.
func New(logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{log: logger}
}

// elementTable keeps nodes or edges addressable by id while preserving
// insertion order, the way the source's id-indexed maps behave.
type nodeTable struct {
	order []string
	items map[string]spec.Node
}

type edgeTable struct {
	order []string
	items map[string]spec.Edge
}

func newNodeTable(nodes []spec.Node) *nodeTable {
	t := &nodeTable{items: make(map[string]spec.Node, len(nodes))}
	for _, n := range nodes {
		t.set(n)
	}
	return t
}

func (t *nodeTable) set(n spec.Node) {
	if _, ok := t.items[n.ID]; !ok {
		t.order = append(t.order, n.ID)
	}
	t.items[n.ID] = n
}

func (t *nodeTable) delete(id string) {
	if _, ok := t.items[id]; !ok {
		return
	}
	delete(t.items, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *nodeTable) slice() []spec.Node {
	out := make([]spec.Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.items[id])
	}
	return out
}

func newEdgeTable(edges []spec.Edge) *edgeTable {
	t := &edgeTable{items: make(map[string]spec.Edge, len(edges))}
	for _, e := range edges {
		t.set(e)
	}
	return t
}

func (t *edgeTable) set(e spec.Edge) {
	if _, ok := t.items[e.ID]; !ok {
		t.order = append(t.order, e.ID)
	}
	t.items[e.ID] = e
}

func (t *edgeTable) delete(id string) {
	if _, ok := t.items[id]; !ok {
		return
	}
	delete(t.items, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *edgeTable) slice() []spec.Edge {
	out := make([]spec.Edge, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.items[id])
	}
	return out
}

// Compose applies the named overlays, in order, to a structural copy
// of the base specification. Unknown overlay ids are logged and
// skipped. The returned specification records which overlays were
// applied.
func (c *Composer) Compose(base *spec.Specification, overlayIDs []string) *spec.Specification {
	work := base.Clone()
	nodes := newNodeTable(work.Nodes)
	edges := newEdgeTable(work.Edges)

	var applied []string
	for _, id := range overlayIDs {
		overlay, ok := base.Overlay(id)
		if !ok {
			c.log.Warn("unknown overlay id, skipping",
				zap.String("spec", base.ID),
				zap.String("overlay", id))
			continue
		}
		applyDiff(nodes, edges, overlay.Diff)
		applied = append(applied, id)
	}

	work.Nodes = nodes.slice()
	work.Edges = edges.slice()
	work.AppliedOverlays = applied
	return work
}

// MergeScenes expands each scene to its overlay id list, concatenates
// across scenes, deduplicates preserving first occurrence, and
// composes the result. Unknown scene ids are logged and skipped.
func (c *Composer) MergeScenes(base *spec.Specification, sceneIDs []string) *spec.Specification {
	var overlayIDs []string
	seen := make(map[string]bool)
	for _, id := range sceneIDs {
		scene, ok := base.Scene(id)
		if !ok {
			c.log.Warn("unknown scene id, skipping",
				zap.String("spec", base.ID),
				zap.String("scene", id))
			continue
		}
		for _, oid := range scene.Overlays {
			if seen[oid] {
				continue
			}
			seen[oid] = true
			overlayIDs = append(overlayIDs, oid)
		}
	}
	return c.Compose(base, overlayIDs)
}

// applyDiff applies one overlay's phases in the fixed order
// remove, add, highlight, modify. Removing a node cascades to every
// edge touching it, evaluated before explicit edge removals.
func applyDiff(nodes *nodeTable, edges *edgeTable, d spec.Diff) {
	if d.Remove != nil {
		for _, id := range d.Remove.NodeIDs {
			nodes.delete(id)
			for _, eid := range append([]string(nil), edges.order...) {
				e := edges.items[eid]
				if e.From == id || e.To == id {
					edges.delete(eid)
				}
			}
		}
		for _, id := range d.Remove.EdgeIDs {
			edges.delete(id)
		}
	}

	if d.Add != nil {
		for _, n := range d.Add.Nodes {
			added := n.Clone()
			added.Added = true
			nodes.set(added)
		}
		for _, e := range d.Add.Edges {
			added := e.Clone()
			added.Added = true
			edges.set(added)
		}
	}

	if d.Highlight != nil {
		for _, id := range d.Highlight.NodeIDs {
			if n, ok := nodes.items[id]; ok {
				n.Highlighted = true
				nodes.items[id] = n
			}
		}
		for _, id := range d.Highlight.EdgeIDs {
			if e, ok := edges.items[id]; ok {
				e.Highlighted = true
				edges.items[id] = e
			}
		}
	}

	if d.Modify != nil {
		for _, p := range d.Modify.Nodes {
			n, ok := nodes.items[p.ID]
			if !ok {
				continue
			}
			if p.Label != nil {
				n.Label = *p.Label
			}
			if p.Kind != nil {
				n.Kind = *p.Kind
			}
			if p.Rack != nil {
				n.Rack = *p.Rack
			}
			for k, v := range p.Meta {
				if n.Meta == nil {
					n.Meta = make(map[string]string)
				}
				n.Meta[k] = v
			}
			n.Modified = true
			nodes.items[p.ID] = n
		}
		for _, p := range d.Modify.Edges {
			e, ok := edges.items[p.ID]
			if !ok {
				continue
			}
			if p.From != nil {
				e.From = *p.From
			}
			if p.To != nil {
				e.To = *p.To
			}
			if p.Kind != nil {
				e.Kind = *p.Kind
			}
			if p.Label != nil {
				e.Label = *p.Label
			}
			if p.Phase != nil {
				e.Phase = *p.Phase
			}
			if p.Metrics != nil {
				m := *p.Metrics
				e.Metrics = &m
			}
			e.Modified = true
			edges.items[p.ID] = e
		}
	}
}
