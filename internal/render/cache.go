package render

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"stepviz/internal/generator"
	"stepviz/internal/spec"
)

// DefaultCapacity bounds the cache entry count.
const DefaultCapacity = 20

// ErrNoTarget is returned when GetOrRender is handed no
// specification to render.
var ErrNoTarget = errors.New("render: no specification")

// Fingerprint summarizes a specification for cache keying. It is a
// weak structural summary, not a content hash: two specifications
// sharing id, node count, edge count and layout kind collide. Kept
// source-compatible on purpose; strengthening it would change
// observable cache behavior.
func Fingerprint(s *spec.Specification) string {
	return fmt.Sprintf("%s|%d|%d|%s", s.ID, len(s.Nodes), len(s.Edges), s.Layout.Kind)
}

// Cache wraps the generator and the external renderer with a bounded,
// fingerprint-keyed cache. Eviction is strict FIFO on arrival order,
// irrespective of access recency. Failed renders never populate the
// cache.
//
// The cache is safe for concurrent use and coalesces duplicate
// in-flight renders per fingerprint, a guard the single-threaded
// source never needed.
type Cache struct {
	renderer Renderer
	log      *zap.Logger
	capacity int

	mu       sync.Mutex
	entries  map[string]*Artifact
	order    []string
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done chan struct{}
	art  *Artifact
	err  error
}

// NewCache wraps a renderer. A non-positive capacity falls back to
// DefaultCapacity; a nil logger disables diagnostics.
func NewCache(renderer Renderer, capacity int, logger *zap.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		renderer: renderer,
		log:      logger,
		capacity: capacity,
		entries:  make(map[string]*Artifact),
		inflight: make(map[string]*inflightCall),
	}
}

// GetOrRender returns the cached artifact for the specification's
// fingerprint, or generates the description text, renders it through
// the external engine and caches the result. On render failure the
// cache is left unmodified and the caller receives an inline error
// artifact alongside the error.
func (c *Cache) GetOrRender(ctx context.Context, s *spec.Specification) (*Artifact, error) {
	if s == nil || s.ID == "" {
		c.log.Warn("render requested without a target specification")
		return nil, ErrNoTarget
	}
	fp := Fingerprint(s)

	c.mu.Lock()
	if art, ok := c.entries[fp]; ok {
		c.mu.Unlock()
		return art, nil
	}
	if call, ok := c.inflight[fp]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.art, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[fp] = call
	c.mu.Unlock()

	description := generator.Generate(s)
	art, err := c.renderer.Render(ctx, description, s.ID)
	if err != nil {
		c.log.Warn("external render failed",
			zap.String("spec", s.ID),
			zap.String("fingerprint", fp),
			zap.Error(err))
		art = errorArtifact(description, s.ID, err)
	} else {
		art.Fingerprint = fp
	}

	c.mu.Lock()
	delete(c.inflight, fp)
	if err == nil {
		c.store(fp, art)
	}
	call.art, call.err = art, err
	c.mu.Unlock()
	close(call.done)

	return art, err
}

// store inserts in arrival order and evicts the single oldest entry
// once the bound is exceeded.
func (c *Cache) store(fp string, art *Artifact) {
	if _, ok := c.entries[fp]; !ok {
		c.order = append(c.order, fp)
	}
	c.entries[fp] = art
	if len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.log.Debug("evicted render cache entry", zap.String("fingerprint", oldest))
	}
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Contains reports whether a fingerprint is cached.
func (c *Cache) Contains(fp string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[fp]
	return ok
}

// Clear drops every cache entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Artifact)
	c.order = nil
}
