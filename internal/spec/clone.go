package spec

import "encoding/json"

// Clone returns a structural deep copy of the specification. Compositions
// mutate the copy and never the authored input.
func (s *Specification) Clone() *Specification {
	if s == nil {
		return nil
	}
	out := &Specification{
		ID:     s.ID,
		Title:  s.Title,
		Layout: s.Layout,
	}
	out.Nodes = make([]Node, len(s.Nodes))
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Edges = make([]Edge, len(s.Edges))
	for i, e := range s.Edges {
		out.Edges[i] = e.Clone()
	}
	if s.Overlays != nil {
		out.Overlays = append([]Overlay(nil), s.Overlays...)
	}
	if s.Scenes != nil {
		out.Scenes = make([]Scene, len(s.Scenes))
		for i, sc := range s.Scenes {
			out.Scenes[i] = sc
			out.Scenes[i].Overlays = append([]string(nil), sc.Overlays...)
		}
	}
	if s.AppliedOverlays != nil {
		out.AppliedOverlays = append([]string(nil), s.AppliedOverlays...)
	}
	return out
}

// Clone copies the node including its metadata map.
func (n Node) Clone() Node {
	out := n
	if n.Meta != nil {
		out.Meta = make(map[string]string, len(n.Meta))
		for k, v := range n.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

// Clone copies the edge including its metrics record.
func (e Edge) Clone() Edge {
	out := e
	if e.Metrics != nil {
		m := *e.Metrics
		out.Metrics = &m
	}
	return out
}

// Canonical returns the canonical JSON serialization of v. Structural
// equality throughout the composer is equality of canonical forms: a
// coarse, serialization-based comparison kept deliberately, since a
// field-aware comparison would change observable diff results.
func Canonical(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// StructurallyEqual reports whether two values share a canonical form.
func StructurallyEqual(a, b any) bool {
	return Canonical(a) == Canonical(b)
}
