package render

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepviz/internal/spec"
)

func okRenderer(calls *atomic.Int32) FuncRenderer {
	return func(_ context.Context, description, target string) (*Artifact, error) {
		if calls != nil {
			calls.Add(1)
		}
		return &Artifact{
			Target:      target,
			Format:      "svg",
			Description: description,
			Data:        []byte("<svg/>"),
		}, nil
	}
}

func cacheSpec(id string, nodes int) *spec.Specification {
	s := &spec.Specification{
		ID:     id,
		Layout: spec.Layout{Kind: spec.LayoutFlow},
	}
	for i := 0; i < nodes; i++ {
		s.Nodes = append(s.Nodes, spec.Node{
			ID:   fmt.Sprintf("%s-n%d", id, i),
			Kind: spec.NodeStorage,
		})
	}
	return s
}

func TestCache_HitSkipsRenderer(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(okRenderer(&calls), 0, nil)
	s := cacheSpec("quorum", 3)

	first, err := c.GetOrRender(context.Background(), s)
	require.NoError(t, err)

	second, err := c.GetOrRender(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "second lookup must be served from the cache")
	assert.Same(t, first, second)
	assert.Equal(t, Fingerprint(s), first.Fingerprint)
}

func TestCache_EvictsOldestBeyondCapacity(t *testing.T) {
	c := NewCache(okRenderer(nil), 0, nil)

	for i := 0; i < DefaultCapacity+1; i++ {
		s := cacheSpec(fmt.Sprintf("spec-%02d", i), 1)
		_, err := c.GetOrRender(context.Background(), s)
		require.NoError(t, err)
	}

	assert.Equal(t, DefaultCapacity, c.Len())
	assert.False(t, c.Contains(Fingerprint(cacheSpec("spec-00", 1))),
		"first arrival is evicted first")
	assert.True(t, c.Contains(Fingerprint(cacheSpec("spec-01", 1))))
	assert.True(t, c.Contains(Fingerprint(cacheSpec("spec-20", 1))))
}

func TestCache_FingerprintIsStructuralSummary(t *testing.T) {
	a := cacheSpec("quorum", 2)
	b := cacheSpec("quorum", 2)
	b.Nodes[0].Label = "renamed"

	// Same id, counts and layout collide on purpose.
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(cacheSpec("quorum", 3)))

	c := cacheSpec("quorum", 2)
	c.Layout.Kind = spec.LayoutSequence
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}

func TestCache_FailureLeavesCacheUnmodified(t *testing.T) {
	var calls atomic.Int32
	boom := FuncRenderer(func(context.Context, string, string) (*Artifact, error) {
		calls.Add(1)
		return nil, errors.New("engine unreachable")
	})
	c := NewCache(boom, 0, nil)
	s := cacheSpec("quorum", 3)

	art, err := c.GetOrRender(context.Background(), s)
	require.Error(t, err)
	require.NotNil(t, art, "caller still receives an inline placeholder")
	assert.True(t, art.Failed)
	assert.Contains(t, string(art.Data), "engine unreachable")
	assert.NotEmpty(t, art.Description, "description text is generated before the engine call")

	assert.Equal(t, 0, c.Len())

	// The next request retries instead of serving the failure.
	_, err = c.GetOrRender(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCache_NoTarget(t *testing.T) {
	c := NewCache(okRenderer(nil), 0, nil)

	_, err := c.GetOrRender(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoTarget)

	_, err = c.GetOrRender(context.Background(), &spec.Specification{})
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestCache_CoalescesConcurrentRenders(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	slow := FuncRenderer(func(_ context.Context, description, target string) (*Artifact, error) {
		calls.Add(1)
		<-gate
		return &Artifact{Target: target, Format: "svg", Description: description}, nil
	})
	c := NewCache(slow, 0, nil)
	s := cacheSpec("quorum", 3)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			art, err := c.GetOrRender(context.Background(), s)
			assert.NoError(t, err)
			assert.NotNil(t, art)
		}()
	}
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "duplicate in-flight renders coalesce")
	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(okRenderer(nil), 0, nil)
	_, err := c.GetOrRender(context.Background(), cacheSpec("quorum", 1))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestKrokiRenderer(t *testing.T) {
	t.Run("posts description and returns svg", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/mermaid/svg", r.URL.Path)
			assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
			fmt.Fprint(w, "<svg>ok</svg>")
		}))
		defer srv.Close()

		r := NewKrokiRenderer(srv.URL, 0, nil)
		art, err := r.Render(context.Background(), "graph TD\n", "quorum")
		require.NoError(t, err)
		assert.Equal(t, "svg", art.Format)
		assert.Equal(t, "quorum", art.Target)
		assert.Equal(t, "graph TD\n", art.Description)
		assert.Equal(t, []byte("<svg>ok</svg>"), art.Data)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		r := NewKrokiRenderer(srv.URL, 0, nil)
		_, err := r.Render(context.Background(), "graph TD\n", "quorum")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})
}
