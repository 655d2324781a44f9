package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"stepviz/internal/compose"
	"stepviz/internal/library"
	"stepviz/internal/render"
	"stepviz/internal/steps"
)

// Server exposes the presentation core to the UI layer: the spec
// catalog, derived step sequences, rendered artifacts and
// session-scoped navigation.
type Server struct {
	lib      *library.Library
	cache    *render.Cache
	composer *compose.Composer
	builder  *steps.Builder
	sessions *SessionManager
	interval time.Duration
	origins  []string
	logger   *zap.Logger
}

// New creates a server over the given collaborators. interval is the
// autoplay default handed to new sessions; zero keeps the player's own
// default.
func New(lib *library.Library, cache *render.Cache, composer *compose.Composer, builder *steps.Builder, interval time.Duration, origins []string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		lib:      lib,
		cache:    cache,
		composer: composer,
		builder:  builder,
		sessions: NewSessionManager(builder, logger),
		interval: interval,
		origins:  origins,
		logger:   logger,
	}
}

// Setup configures all routes and middleware.
func (s *Server) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(s.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", s.healthCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/specs", func(r chi.Router) {
			r.Get("/", s.listSpecs)
			r.Get("/{specID}", s.getSpec)
			r.Get("/{specID}/steps", s.getSteps)
			r.Get("/{specID}/steps/{index}", s.getStep)
			r.Get("/{specID}/materialized", s.getMaterialized)
			r.Get("/{specID}/description", s.getDescription)
			r.Post("/{specID}/render", s.renderSpec)
		})

		r.Delete("/cache", s.clearCache)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Get("/{sessionID}", s.getSession)
			r.Delete("/{sessionID}", s.closeSession)
			r.Post("/{sessionID}/next", s.navigate(navNext))
			r.Post("/{sessionID}/prev", s.navigate(navPrev))
			r.Post("/{sessionID}/first", s.navigate(navFirst))
			r.Post("/{sessionID}/last", s.navigate(navLast))
			r.Post("/{sessionID}/goto", s.gotoStep)
			r.Post("/{sessionID}/autoplay", s.toggleAutoplay)
			r.Post("/{sessionID}/speed", s.setSpeed)
		})
	})

	return router
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"specs":  s.lib.Len(),
	})
}
