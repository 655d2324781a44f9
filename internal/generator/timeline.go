package generator

import "stepviz/internal/spec"

func generateTimeline(s *spec.Specification) string {
	var d doc
	d.line(0, "timeline")
	if s.Title != "" {
		d.line(1, "title %s", s.Title)
	}

	// One entry per event node in input order. A branch marker in the
	// node metadata opens a new section.
	current := ""
	for _, n := range s.Nodes {
		if n.Kind != spec.NodeEvent {
			continue
		}
		if branch := n.Meta["branch"]; branch != "" && branch != current {
			current = branch
			d.line(1, "section %s", branch)
		}
		if desc := n.Meta["description"]; desc != "" {
			d.line(1, "%s : %s", nodeLabel(n), desc)
		} else {
			d.line(1, "%s", nodeLabel(n))
		}
	}

	return d.String()
}
