package generator

import (
	"sort"
	"strings"

	"stepviz/internal/spec"
)

// participantRank orders sequence participants by canonical kind
// precedence. Unknown kinds sort after the known ones; ties keep
// input order.
var participantRank = map[spec.NodeKind]int{
	spec.NodeClient:      0,
	spec.NodeCoordinator: 1,
	spec.NodeStorage:     2,
	spec.NodeRack:        3,
	spec.NodeSwitch:      4,
	spec.NodeNote:        5,
}

const unknownRank = 6

// sequenceArrow maps an edge kind to its message arrow. The default
// arm covers authored kinds the table does not know.
func sequenceArrow(kind spec.EdgeKind) string {
	switch kind {
	case spec.EdgeControl:
		return "->>"
	case spec.EdgeData:
		return "-->>"
	case spec.EdgeCache:
		return "-)"
	case spec.EdgeHeartbeat:
		return "--)"
	default:
		return "->>"
	}
}

// kindGlyph prefixes a message label with a marker for its kind.
func kindGlyph(kind spec.EdgeKind) string {
	switch kind {
	case spec.EdgeControl:
		return "⚙ "
	case spec.EdgeData:
		return "📦 "
	case spec.EdgeCache:
		return "⚡ "
	case spec.EdgeHeartbeat:
		return "💓 "
	default:
		return ""
	}
}

func generateSequence(s *spec.Specification) string {
	var d doc
	d.line(0, "sequenceDiagram")

	// Participants in canonical kind order, input order within a kind.
	ordered := make([]spec.Node, len(s.Nodes))
	copy(ordered, s.Nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rankOf(ordered[i].Kind) < rankOf(ordered[j].Kind)
	})
	for _, n := range ordered {
		d.line(1, "participant %s as %s", sanitizeID(n.ID), nodeLabel(n))
	}

	// Group edges by phase: default phase first, then non-default
	// phases in first-appearance order, each wrapped in a labeled
	// block.
	phases := []string{""}
	seen := map[string]bool{"": true}
	for _, e := range s.Edges {
		if !seen[e.Phase] {
			seen[e.Phase] = true
			phases = append(phases, e.Phase)
		}
	}

	for _, phase := range phases {
		depth := 1
		if phase != "" {
			d.line(1, "rect rgb(240, 242, 247)")
			d.line(2, "note over %s: %s", firstParticipant(ordered), phase)
			depth = 2
		}
		for _, e := range s.Edges {
			if e.Phase != phase {
				continue
			}
			if e.Highlighted || e.Current {
				d.line(depth, "rect rgb(255, 237, 213)")
				writeMessage(&d, depth+1, e)
				d.line(depth, "end")
			} else {
				writeMessage(&d, depth, e)
			}
		}
		if phase != "" {
			d.line(1, "end")
		}
	}

	return d.String()
}

func rankOf(kind spec.NodeKind) int {
	if r, ok := participantRank[kind]; ok {
		return r
	}
	return unknownRank
}

func firstParticipant(nodes []spec.Node) string {
	if len(nodes) == 0 {
		return "diagram"
	}
	return sanitizeID(nodes[0].ID)
}

func writeMessage(d *doc, depth int, e spec.Edge) {
	label := e.Label
	if label == "" {
		label = string(e.Kind)
	}
	text := kindGlyph(e.Kind) + label + metricSuffix(e.Metrics)
	text = strings.TrimSpace(text)
	d.line(depth, "%s%s%s: %s", sanitizeID(e.From), sequenceArrow(e.Kind), sanitizeID(e.To), text)
}
