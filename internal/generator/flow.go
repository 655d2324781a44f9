package generator

import (
	"strings"

	"stepviz/internal/spec"
)

// flowBrackets maps a node kind to the bracket pair selecting its
// flowchart shape.
func flowBrackets(kind spec.NodeKind) (string, string) {
	switch kind {
	case spec.NodeClient:
		return "([", "])"
	case spec.NodeCoordinator:
		return "{{", "}}"
	case spec.NodeStorage:
		return "[(", ")]"
	case spec.NodeRack:
		return "[[", "]]"
	case spec.NodeSwitch:
		return "{", "}"
	case spec.NodeNote:
		return "(", ")"
	default:
		return "[", "]"
	}
}

// flowArrow maps an edge kind to a flowchart connector.
func flowArrow(kind spec.EdgeKind) string {
	switch kind {
	case spec.EdgeControl:
		return "-->"
	case spec.EdgeData:
		return "==>"
	case spec.EdgeCache:
		return "-.->"
	case spec.EdgeHeartbeat:
		return "-.-"
	default:
		return "-->"
	}
}

// flowClassDefs is the fixed style-class block every flow diagram
// carries. Highlight wins over added; everything else gets a
// kind-based class.
var flowClassDefs = []string{
	"classDef highlighted fill:#fed7aa,stroke:#ea580c,stroke-width:3px",
	"classDef added fill:#bbf7d0,stroke:#16a34a,stroke-dasharray: 5 5",
	"classDef client fill:#dbeafe,stroke:#2563eb",
	"classDef coordinator fill:#fef3c7,stroke:#d97706",
	"classDef storage fill:#e0e7ff,stroke:#4f46e5",
	"classDef rack fill:#f3f4f6,stroke:#6b7280",
	"classDef switch fill:#fce7f3,stroke:#db2777",
	"classDef note fill:#fef9c3,stroke:#ca8a04",
	"classDef plain fill:#f8fafc,stroke:#64748b",
}

func flowClassName(kind spec.NodeKind) string {
	switch kind {
	case spec.NodeClient:
		return "client"
	case spec.NodeCoordinator:
		return "coordinator"
	case spec.NodeStorage:
		return "storage"
	case spec.NodeRack:
		return "rack"
	case spec.NodeSwitch:
		return "switch"
	case spec.NodeNote:
		return "note"
	default:
		return "plain"
	}
}

func generateFlow(s *spec.Specification) string {
	var d doc
	d.line(0, "graph TD")
	writeFlowNodes(&d, 1, s.Nodes)
	writeFlowEdges(&d, 1, s.Edges)
	writeFlowClasses(&d, 1, s.Nodes)
	return d.String()
}

func writeFlowNodes(d *doc, depth int, nodes []spec.Node) {
	for _, n := range nodes {
		open, shut := flowBrackets(n.Kind)
		line := sanitizeID(n.ID) + open + `"` + sanitizeLabel(nodeLabel(n)) + `"` + shut
		switch {
		case n.Highlighted:
			line += ":::highlighted"
		case n.Added:
			line += ":::added"
		}
		d.line(depth, "%s", line)
	}
}

func writeFlowEdges(d *doc, depth int, edges []spec.Edge) {
	for _, e := range edges {
		arrow := flowArrow(e.Kind)
		if label := sanitizeLabel(e.Label); label != "" {
			d.line(depth, "%s %s|%s| %s", sanitizeID(e.From), arrow, label, sanitizeID(e.To))
		} else {
			d.line(depth, "%s %s %s", sanitizeID(e.From), arrow, sanitizeID(e.To))
		}
	}
}

func writeFlowClasses(d *doc, depth int, nodes []spec.Node) {
	for _, def := range flowClassDefs {
		d.line(depth, "%s", def)
	}
	// Kind classes in first-appearance order of their members.
	byClass := map[string][]string{}
	var classOrder []string
	for _, n := range nodes {
		if n.Highlighted || n.Added {
			continue
		}
		name := flowClassName(n.Kind)
		if _, ok := byClass[name]; !ok {
			classOrder = append(classOrder, name)
		}
		byClass[name] = append(byClass[name], sanitizeID(n.ID))
	}
	for _, name := range classOrder {
		d.line(depth, "class %s %s", strings.Join(byClass[name], ","), name)
	}
}
