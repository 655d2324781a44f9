package generator

import "stepviz/internal/spec"

func generateState(s *spec.Specification) string {
	var d doc
	d.line(0, "stateDiagram-v2")

	for _, n := range s.Nodes {
		if n.Kind != spec.NodeState {
			continue
		}
		d.line(1, "state \"%s\" as %s", nodeLabel(n), sanitizeID(n.ID))
		if desc := n.Meta["description"]; desc != "" {
			d.line(1, "%s : %s", sanitizeID(n.ID), desc)
		}
	}

	for _, e := range s.Edges {
		if e.Label != "" {
			d.line(1, "%s --> %s : %s", sanitizeID(e.From), sanitizeID(e.To), e.Label)
		} else {
			d.line(1, "%s --> %s", sanitizeID(e.From), sanitizeID(e.To))
		}
	}

	return d.String()
}
