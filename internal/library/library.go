package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"stepviz/internal/spec"
)

// Library is the content-loading collaborator: it holds the authored
// specification documents the presentation core consumes. The core
// itself owns no persisted state.
type Library struct {
	mu    sync.RWMutex
	specs map[string]*spec.Specification
	log   *zap.Logger
}

// Summary is the listing view of a stored specification.
type Summary struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Layout    spec.LayoutKind `json:"layout"`
	NodeCount int             `json:"nodeCount"`
	EdgeCount int             `json:"edgeCount"`
	Scenes    int             `json:"scenes"`
}

// New returns an empty library.
func New(logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Library{
		specs: make(map[string]*spec.Specification),
		log:   logger,
	}
}

// Put stores a specification, replacing any previous document with
// the same id.
func (l *Library) Put(s *spec.Specification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specs[s.ID] = s
}

// Get returns the specification with the given id.
func (l *Library) Get(id string) (*spec.Specification, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.specs[id]
	return s, ok
}

// Remove drops a specification from the catalog.
func (l *Library) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.specs, id)
}

// List returns summaries of every stored specification, sorted by id.
func (l *Library) List() []Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Summary, 0, len(l.specs))
	for _, s := range l.specs {
		out = append(out, Summary{
			ID:        s.ID,
			Title:     s.Title,
			Layout:    s.Layout.Kind,
			NodeCount: len(s.Nodes),
			EdgeCount: len(s.Edges),
			Scenes:    len(s.Scenes),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of stored specifications.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.specs)
}

// LoadDir loads every .json/.yaml specification document under dir.
// Documents that fail to parse or validate are logged and skipped;
// loading continues. Returns the number of loaded documents.
func (l *Library) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read spec directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !specFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		s, err := spec.LoadFile(path)
		if err != nil {
			l.log.Warn("skipping specification document",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		l.Put(s)
		loaded++
	}
	return loaded, nil
}

func specFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
