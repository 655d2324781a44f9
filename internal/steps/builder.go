package steps

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stepviz/internal/compose"
	"stepviz/internal/spec"
)

// StepType classifies a derived presentation step.
type StepType string

const (
	StepInitial    StepType = "initial"
	StepEdge       StepType = "edge"
	StepScene      StepType = "scene"
	StepState      StepType = "state"
	StepTransition StepType = "transition"
	StepFinal      StepType = "final"
)

// Step is one derived, navigable unit of presentation. The embedded
// specification is fully materialized, with transient markers on
// affected elements.
type Step struct {
	Type    StepType            `json:"type"`
	Index   int                 `json:"index"`
	Caption string              `json:"caption"`
	Focus   []string            `json:"focus,omitempty"`
	Spec    *spec.Specification `json:"spec"`
}

// Builder derives the ordered step sequence for a specification.
type Builder struct {
	composer *compose.Composer
	log      *zap.Logger
}

// NewBuilder returns a Builder. The composer is required for
// scene-based specifications; a nil logger disables diagnostics.
func NewBuilder(composer *compose.Composer, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if composer == nil {
		composer = compose.New(logger)
	}
	return &Builder{composer: composer, log: logger}
}

// Build derives the ordered steps for a specification. Scene-based
// specifications step through their scenes regardless of layout kind;
// sequence and state layouts step per edge; other layouts produce no
// automatic per-element steps. Whenever any steps exist, a trailing
// final step holds the unmodified full specification.
func (b *Builder) Build(s *spec.Specification) []Step {
	var out []Step

	if len(s.Scenes) > 0 {
		out = b.sceneSteps(s)
	} else {
		switch s.Layout.Kind {
		case spec.LayoutSequence:
			out = b.sequenceSteps(s)
		case spec.LayoutState:
			out = b.stateSteps(s)
		}
	}

	if len(out) > 0 {
		out = append(out, Step{
			Type:    StepFinal,
			Caption: "Final state",
			Spec:    s.Clone(),
		})
	}

	for i := range out {
		out[i].Index = i
	}
	return out
}

func (b *Builder) sceneSteps(s *spec.Specification) []Step {
	out := make([]Step, 0, len(s.Scenes))
	for _, scene := range s.Scenes {
		caption := scene.Narrative
		if caption == "" {
			caption = scene.Name
		}
		out = append(out, Step{
			Type:    StepScene,
			Caption: caption,
			Spec:    b.composer.Compose(s, scene.Overlays),
		})
	}
	return out
}

func (b *Builder) sequenceSteps(s *spec.Specification) []Step {
	out := []Step{{
		Type:    StepInitial,
		Caption: "Initial state",
		Spec:    withEdges(s, nil),
	}}

	for i, edge := range s.Edges {
		visible := make([]spec.Edge, i+1)
		for j := 0; j <= i; j++ {
			visible[j] = s.Edges[j].Clone()
		}
		visible[i].Current = true
		visible[i].Highlighted = true

		out = append(out, Step{
			Type:    StepEdge,
			Caption: EdgeCaption(s, edge),
			Focus:   []string{edge.From, edge.To},
			Spec:    withEdges(s, visible),
		})
	}
	return out
}

func (b *Builder) stateSteps(s *spec.Specification) []Step {
	out := []Step{{
		Type:    StepInitial,
		Caption: "Initial state",
		Spec:    withEdges(s, nil),
	}}

	for i, edge := range s.Edges {
		visible := make([]spec.Edge, i+1)
		for j := 0; j <= i; j++ {
			visible[j] = s.Edges[j].Clone()
		}
		visible[i].Highlighted = true

		caption := edge.Label
		if caption == "" {
			caption = fmt.Sprintf("%s → %s", labelFor(s, edge.From), labelFor(s, edge.To))
		}
		out = append(out, Step{
			Type:    StepTransition,
			Caption: caption,
			Focus:   []string{edge.From, edge.To},
			Spec:    withEdges(s, visible),
		})
	}
	return out
}

// withEdges builds a materialized copy carrying only the given edges.
func withEdges(s *spec.Specification, edges []spec.Edge) *spec.Specification {
	out := s.Clone()
	if edges == nil {
		edges = []spec.Edge{}
	}
	out.Edges = edges
	return out
}

// captionVerb maps an edge kind to its caption verb. The default arm
// covers unknown authored kinds.
func captionVerb(kind spec.EdgeKind) string {
	switch kind {
	case spec.EdgeControl:
		return "requests"
	case spec.EdgeData:
		return "transfers"
	case spec.EdgeCache:
		return "caches"
	case spec.EdgeHeartbeat:
		return "heartbeats to"
	default:
		return "sends to"
	}
}

// EdgeCaption composes the caption for a sequence edge step:
// "<from> <verb> <to>", overridden by "<from>: <label>" when the edge
// carries a label, followed by the size/latency metric suffix.
func EdgeCaption(s *spec.Specification, e spec.Edge) string {
	from := labelFor(s, e.From)
	var caption string
	if e.Label != "" {
		caption = fmt.Sprintf("%s: %s", from, e.Label)
	} else {
		caption = fmt.Sprintf("%s %s %s", from, captionVerb(e.Kind), labelFor(s, e.To))
	}
	return caption + captionMetrics(e.Metrics)
}

func captionMetrics(m *spec.Metrics) string {
	if m == nil {
		return ""
	}
	var parts []string
	if m.Size != "" {
		parts = append(parts, m.Size)
	}
	if m.Latency != "" {
		parts = append(parts, m.Latency)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func labelFor(s *spec.Specification, nodeID string) string {
	if n, ok := s.Node(nodeID); ok && n.Label != "" {
		return n.Label
	}
	return nodeID
}
