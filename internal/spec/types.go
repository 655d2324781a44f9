package spec

// LayoutKind selects the diagram strategy a specification is rendered with.
type LayoutKind string

const (
	LayoutSequence LayoutKind = "sequence"
	LayoutFlow     LayoutKind = "flow"
	LayoutState    LayoutKind = "state"
	LayoutMatrix   LayoutKind = "matrix"
	LayoutTimeline LayoutKind = "timeline"
)

// NodeKind tags a node for shape, icon and ordering decisions.
// The set is open: authored documents may carry kinds the renderer
// does not know, which fall through to default styling.
type NodeKind string

const (
	NodeClient      NodeKind = "client"
	NodeCoordinator NodeKind = "coordinator"
	NodeStorage     NodeKind = "storage-node"
	NodeRack        NodeKind = "rack"
	NodeSwitch      NodeKind = "switch"
	NodeNote        NodeKind = "note"
	NodeState       NodeKind = "state"
	NodeEvent       NodeKind = "event"
)

// EdgeKind tags an edge for arrow style and caption verb selection.
type EdgeKind string

const (
	EdgeControl   EdgeKind = "control"
	EdgeData      EdgeKind = "data"
	EdgeCache     EdgeKind = "cache"
	EdgeHeartbeat EdgeKind = "heartbeat"
)

// Layout carries the layout kind of a specification.
type Layout struct {
	Kind LayoutKind `json:"type" yaml:"type"`
}

// Metrics holds optional descriptive annotations on an edge.
// All fields are free-form authored strings.
type Metrics struct {
	Size       string `json:"size,omitempty" yaml:"size,omitempty"`
	Latency    string `json:"latency,omitempty" yaml:"latency,omitempty"`
	Throughput string `json:"throughput,omitempty" yaml:"throughput,omitempty"`
	Frequency  string `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Payload    string `json:"payload,omitempty" yaml:"payload,omitempty"`
	Purpose    string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
}

// Markers are transient presentation flags set on materialized copies.
// They are never authored; the composer and step builder set them and
// the generator reads them. The underscore JSON names keep the wire
// format shared with the UI layer.
type Markers struct {
	Highlighted bool `json:"_highlighted,omitempty" yaml:"-"`
	Added       bool `json:"_added,omitempty" yaml:"-"`
	Modified    bool `json:"_modified,omitempty" yaml:"-"`
	Current     bool `json:"_current,omitempty" yaml:"-"`
}

// Node is a single diagram element.
type Node struct {
	ID    string            `json:"id" yaml:"id"`
	Label string            `json:"label" yaml:"label"`
	Kind  NodeKind          `json:"type" yaml:"type"`
	Rack  string            `json:"rack,omitempty" yaml:"rack,omitempty"`
	Meta  map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`

	Markers `yaml:"-"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID      string   `json:"id" yaml:"id"`
	From    string   `json:"from" yaml:"from"`
	To      string   `json:"to" yaml:"to"`
	Kind    EdgeKind `json:"kind" yaml:"kind"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Phase   string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	Metrics *Metrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	Markers `yaml:"-"`
}

// RemovePatch lists elements an overlay deletes. Removing a node also
// removes every edge touching it, before explicit edge removals are
// evaluated.
type RemovePatch struct {
	NodeIDs []string `json:"nodeIds,omitempty" yaml:"nodeIds,omitempty"`
	EdgeIDs []string `json:"edgeIds,omitempty" yaml:"edgeIds,omitempty"`
}

// AddPatch lists elements an overlay introduces.
type AddPatch struct {
	Nodes []Node `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Edges []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// HighlightPatch lists elements an overlay emphasizes.
type HighlightPatch struct {
	NodeIDs []string `json:"nodeIds,omitempty" yaml:"nodeIds,omitempty"`
	EdgeIDs []string `json:"edgeIds,omitempty" yaml:"edgeIds,omitempty"`
}

// NodePatch is a partial node update keyed by id. Nil fields are
// left untouched.
type NodePatch struct {
	ID    string            `json:"id" yaml:"id"`
	Label *string           `json:"label,omitempty" yaml:"label,omitempty"`
	Kind  *NodeKind         `json:"type,omitempty" yaml:"type,omitempty"`
	Rack  *string           `json:"rack,omitempty" yaml:"rack,omitempty"`
	Meta  map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// EdgePatch is a partial edge update keyed by id.
type EdgePatch struct {
	ID      string    `json:"id" yaml:"id"`
	From    *string   `json:"from,omitempty" yaml:"from,omitempty"`
	To      *string   `json:"to,omitempty" yaml:"to,omitempty"`
	Kind    *EdgeKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Label   *string   `json:"label,omitempty" yaml:"label,omitempty"`
	Phase   *string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	Metrics *Metrics  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// ModifyPatch lists partial updates an overlay applies.
type ModifyPatch struct {
	Nodes []NodePatch `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Edges []EdgePatch `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Diff is the four-phase patch carried by an overlay. Absent phases
// are no-ops. Regardless of authoring order the phases apply as
// remove, add, highlight, modify.
type Diff struct {
	Remove    *RemovePatch    `json:"remove,omitempty" yaml:"remove,omitempty"`
	Add       *AddPatch       `json:"add,omitempty" yaml:"add,omitempty"`
	Highlight *HighlightPatch `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Modify    *ModifyPatch    `json:"modify,omitempty" yaml:"modify,omitempty"`
}

// Overlay is a named, reusable patch over a specification.
type Overlay struct {
	ID   string `json:"id" yaml:"id"`
	Diff Diff   `json:"diff" yaml:"diff"`
}

// Scene is one narrative beat: an ordered list of overlay ids applied
// cumulatively on top of the base specification.
type Scene struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	Narrative string   `json:"narrative,omitempty" yaml:"narrative,omitempty"`
	Overlays  []string `json:"overlays" yaml:"overlays"`
}

// Specification is the authored, declarative description of a diagram.
// It is treated as immutable input per render cycle; every composition
// works on a structural copy.
type Specification struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Layout   Layout    `json:"layout" yaml:"layout"`
	Nodes    []Node    `json:"nodes" yaml:"nodes"`
	Edges    []Edge    `json:"edges" yaml:"edges"`
	Overlays []Overlay `json:"overlays,omitempty" yaml:"overlays,omitempty"`
	Scenes   []Scene   `json:"scenes,omitempty" yaml:"scenes,omitempty"`

	// AppliedOverlays records, on a materialized copy, which overlay
	// ids produced it. Empty on authored documents.
	AppliedOverlays []string `json:"appliedOverlays,omitempty" yaml:"-"`
}

// Overlay returns the overlay with the given id, or false.
func (s *Specification) Overlay(id string) (Overlay, bool) {
	for _, o := range s.Overlays {
		if o.ID == id {
			return o, true
		}
	}
	return Overlay{}, false
}

// Scene returns the scene with the given id, or false.
func (s *Specification) Scene(id string) (Scene, bool) {
	for _, sc := range s.Scenes {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scene{}, false
}

// Node returns the node with the given id, or false.
func (s *Specification) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
