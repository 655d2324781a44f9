package render

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Artifact is the visual output for one specification: the generated
// description text plus the rendered bytes from the external engine.
type Artifact struct {
	Fingerprint string `json:"fingerprint"`
	Target      string `json:"target"`
	Format      string `json:"format"`
	Description string `json:"description"`
	Data        []byte `json:"data"`
	Failed      bool   `json:"failed,omitempty"`
}

// Renderer turns diagram description text into a visual artifact. It
// is an opaque asynchronous boundary; implementations may call out
// over the network and must honor the context.
type Renderer interface {
	Render(ctx context.Context, description, target string) (*Artifact, error)
}

// FuncRenderer adapts a function to the Renderer interface.
type FuncRenderer func(ctx context.Context, description, target string) (*Artifact, error)

func (f FuncRenderer) Render(ctx context.Context, description, target string) (*Artifact, error) {
	return f(ctx, description, target)
}

// KrokiRenderer renders Mermaid text through a Kroki-compatible HTTP
// endpoint.
type KrokiRenderer struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// NewKrokiRenderer returns a renderer posting to
// <endpoint>/mermaid/svg. A zero timeout defaults to 15s.
func NewKrokiRenderer(endpoint string, timeout time.Duration, logger *zap.Logger) *KrokiRenderer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KrokiRenderer{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		log:      logger,
	}
}

func (r *KrokiRenderer) Render(ctx context.Context, description, target string) (*Artifact, error) {
	url := r.endpoint + "/mermaid/svg"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(description))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read render response for %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		r.log.Warn("render engine rejected diagram",
			zap.String("target", target),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("render %s: engine returned %d", target, resp.StatusCode)
	}

	return &Artifact{
		Target:      target,
		Format:      "svg",
		Description: description,
		Data:        body,
	}, nil
}

// errorArtifact is the inline placeholder handed to callers when the
// external engine fails. It never enters the cache.
func errorArtifact(description, target string, err error) *Artifact {
	msg := html.EscapeString(err.Error())
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="420" height="80">`+
		`<rect width="420" height="80" fill="#fef2f2" stroke="#dc2626"/>`+
		`<text x="12" y="34" font-family="monospace" font-size="13" fill="#dc2626">diagram render failed</text>`+
		`<text x="12" y="58" font-family="monospace" font-size="11" fill="#7f1d1d">%s</text>`+
		`</svg>`, msg)
	return &Artifact{
		Target:      target,
		Format:      "svg",
		Description: description,
		Data:        []byte(svg),
		Failed:      true,
	}
}
