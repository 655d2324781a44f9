package generator

import "stepviz/internal/spec"

// defaultRack groups nodes without a rack attribute.
const defaultRack = "ungrouped"

func generateMatrix(s *spec.Specification) string {
	var d doc
	d.line(0, "graph TD")

	// Racks in first-appearance order, members in input order.
	members := map[string][]spec.Node{}
	var rackOrder []string
	for _, n := range s.Nodes {
		rack := n.Rack
		if rack == "" {
			rack = defaultRack
		}
		if _, ok := members[rack]; !ok {
			rackOrder = append(rackOrder, rack)
		}
		members[rack] = append(members[rack], n)
	}

	for _, rack := range rackOrder {
		d.line(1, "subgraph %s[\"%s\"]", sanitizeID(rack), rack)
		writeFlowNodes(&d, 2, members[rack])
		d.line(1, "end")
	}

	writeFlowEdges(&d, 1, s.Edges)
	writeFlowClasses(&d, 1, s.Nodes)
	return d.String()
}
