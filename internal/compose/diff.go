package compose

import "stepviz/internal/spec"

// ElementSet carries full node and edge values grouped by a diff
// category.
type ElementSet struct {
	Nodes []spec.Node `json:"nodes,omitempty"`
	Edges []spec.Edge `json:"edges,omitempty"`
}

// DiffResult is the outcome of comparing two materialized
// specifications.
type DiffResult struct {
	Add    ElementSet       `json:"add"`
	Remove spec.RemovePatch `json:"remove"`
	Modify ElementSet       `json:"modify"`
}

// CalculateDiff set-differences two specifications by element id. An
// id present in both counts as modified iff its canonical
// serialization differs; the comparison is structural, not
// field-aware.
func CalculateDiff(before, after *spec.Specification) DiffResult {
	var out DiffResult

	beforeNodes := make(map[string]spec.Node, len(before.Nodes))
	for _, n := range before.Nodes {
		beforeNodes[n.ID] = n
	}
	afterNodes := make(map[string]spec.Node, len(after.Nodes))
	for _, n := range after.Nodes {
		afterNodes[n.ID] = n
	}

	for _, n := range after.Nodes {
		prev, ok := beforeNodes[n.ID]
		switch {
		case !ok:
			out.Add.Nodes = append(out.Add.Nodes, n)
		case !spec.StructurallyEqual(prev, n):
			out.Modify.Nodes = append(out.Modify.Nodes, n)
		}
	}
	for _, n := range before.Nodes {
		if _, ok := afterNodes[n.ID]; !ok {
			out.Remove.NodeIDs = append(out.Remove.NodeIDs, n.ID)
		}
	}

	beforeEdges := make(map[string]spec.Edge, len(before.Edges))
	for _, e := range before.Edges {
		beforeEdges[e.ID] = e
	}
	afterEdges := make(map[string]spec.Edge, len(after.Edges))
	for _, e := range after.Edges {
		afterEdges[e.ID] = e
	}

	for _, e := range after.Edges {
		prev, ok := beforeEdges[e.ID]
		switch {
		case !ok:
			out.Add.Edges = append(out.Add.Edges, e)
		case !spec.StructurallyEqual(prev, e):
			out.Modify.Edges = append(out.Modify.Edges, e)
		}
	}
	for _, e := range before.Edges {
		if _, ok := afterEdges[e.ID]; !ok {
			out.Remove.EdgeIDs = append(out.Remove.EdgeIDs, e.ID)
		}
	}

	return out
}
