package generator

import (
	"fmt"
	"regexp"
	"strings"

	"stepviz/internal/spec"
)

// Generate converts a materialized specification into Mermaid
// description text, dispatched by layout kind. Unknown kinds fall
// back to the flow strategy. Identical input yields byte-identical
// output; the render cache and the golden tests depend on that.
func Generate(s *spec.Specification) string {
	switch s.Layout.Kind {
	case spec.LayoutSequence:
		return generateSequence(s)
	case spec.LayoutFlow:
		return generateFlow(s)
	case spec.LayoutState:
		return generateState(s)
	case spec.LayoutMatrix:
		return generateMatrix(s)
	case spec.LayoutTimeline:
		return generateTimeline(s)
	default:
		return generateFlow(s)
	}
}

// doc builds indented diagram text line by line, so every strategy
// shares one formatting discipline instead of ad hoc concatenation.
type doc struct {
	sb strings.Builder
}

func (d *doc) line(depth int, format string, args ...any) {
	for i := 0; i < depth; i++ {
		d.sb.WriteString("    ")
	}
	if len(args) == 0 {
		d.sb.WriteString(format)
	} else {
		fmt.Fprintf(&d.sb, format, args...)
	}
	d.sb.WriteByte('\n')
}

func (d *doc) String() string {
	return d.sb.String()
}

var (
	labelStrip    = regexp.MustCompile(`[()|\[\]]`)
	labelCollapse = regexp.MustCompile(`\s+`)
)

// sanitizeLabel strips characters that break the flowchart grammar
// and collapses runs of whitespace.
func sanitizeLabel(v string) string {
	v = labelStrip.ReplaceAllString(v, "")
	v = labelCollapse.ReplaceAllString(v, " ")
	return strings.TrimSpace(v)
}

var idSanitize = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// sanitizeID makes an authored element id safe to use as a Mermaid
// identifier.
func sanitizeID(v string) string {
	v = idSanitize.ReplaceAllString(strings.ReplaceAll(v, "-", "_"), "_")
	if v == "" {
		return "node"
	}
	if v[0] >= '0' && v[0] <= '9' {
		v = "n_" + v
	}
	return v
}

// metricSuffix renders the parenthesized size/latency annotation
// appended to edge labels and captions, in that fixed order.
func metricSuffix(m *spec.Metrics) string {
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

// nodeLabel falls back to the id when no label is authored.
func nodeLabel(n spec.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}
