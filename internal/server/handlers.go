package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"stepviz/internal/generator"
	"stepviz/internal/spec"
	"stepviz/internal/steps"
)

func (s *Server) listSpecs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.lib.List())
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	sp, ok := s.specFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sp)
}

func (s *Server) getSteps(w http.ResponseWriter, r *http.Request) {
	sp, ok := s.specFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.builder.Build(sp))
}

func (s *Server) getStep(w http.ResponseWriter, r *http.Request) {
	sp, ok := s.specFromRequest(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INDEX", "step index must be an integer")
		return
	}
	built := s.builder.Build(sp)
	if index < 0 || index >= len(built) {
		respondError(w, http.StatusNotFound, "STEP_NOT_FOUND", "step index out of range")
		return
	}
	respondJSON(w, http.StatusOK, built[index])
}

// getMaterialized applies the overlays or scenes named in the query
// string and returns the materialized specification.
func (s *Server) getMaterialized(w http.ResponseWriter, r *http.Request) {
	sp, ok := s.specFromRequest(w, r)
	if !ok {
		return
	}
	materialized := s.materialize(sp, r)
	respondJSON(w, http.StatusOK, materialized)
}

func (s *Server) getDescription(w http.ResponseWriter, r *http.Request) {
	sp, ok := s.specFromRequest(w, r)
	if !ok {
		return
	}
	materialized := s.materialize(sp, r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(generator.Generate(materialized)))
}

func (s *Server) renderSpec(w http.ResponseWriter, r *http.Request) {
	sp, ok := s.specFromRequest(w, r)
	if !ok {
		return
	}
	materialized := s.materialize(sp, r)
	artifact, err := s.cache.GetOrRender(r.Context(), materialized)
	if err != nil && artifact == nil {
		respondError(w, http.StatusBadRequest, "RENDER_FAILED", err.Error())
		return
	}
	// A failed render still yields an inline placeholder artifact;
	// the Failed flag is the caller's signal.
	respondJSON(w, http.StatusOK, artifact)
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	s.logger.Info("render cache cleared")
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) specFromRequest(w http.ResponseWriter, r *http.Request) (*spec.Specification, bool) {
	specID := chi.URLParam(r, "specID")
	sp, ok := s.lib.Get(specID)
	if !ok {
		respondError(w, http.StatusNotFound, "SPEC_NOT_FOUND", "no specification with id "+specID)
		return nil, false
	}
	return sp, true
}

// materialize applies ?scenes= or ?overlays= (comma-separated ids) to
// the base specification. Scenes win when both are given.
func (s *Server) materialize(sp *spec.Specification, r *http.Request) *spec.Specification {
	if scenes := splitParam(r.URL.Query().Get("scenes")); len(scenes) > 0 {
		return s.composer.MergeScenes(sp, scenes)
	}
	if overlays := splitParam(r.URL.Query().Get("overlays")); len(overlays) > 0 {
		return s.composer.Compose(sp, overlays)
	}
	return sp
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// --- session navigation ---

type navOp int

const (
	navNext navOp = iota
	navPrev
	navFirst
	navLast
)

type createSessionRequest struct {
	SpecID string `json:"specId"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	sp, ok := s.lib.Get(req.SpecID)
	if !ok {
		respondError(w, http.StatusNotFound, "SPEC_NOT_FOUND", "no specification with id "+req.SpecID)
		return
	}
	session, err := s.sessions.Open(sp, s.interval)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "NO_STEPS", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, session.snapshot())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, session.snapshot())
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Close(chi.URLParam(r, "sessionID"))
	respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *Server) navigate(op navOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := s.sessionFromRequest(w, r)
		if !ok {
			return
		}
		session.player.Do(func(nav *steps.Navigator) {
			switch op {
			case navNext:
				nav.Next()
			case navPrev:
				nav.Prev()
			case navFirst:
				nav.First()
			case navLast:
				nav.Last()
			}
		})
		respondJSON(w, http.StatusOK, session.snapshot())
	}
}

type gotoRequest struct {
	Index int `json:"index"`
}

func (s *Server) gotoStep(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	var req gotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	// Out-of-range indexes are a silent no-op, matching the cursor
	// contract.
	session.player.Do(func(nav *steps.Navigator) {
		nav.GoToStep(req.Index)
	})
	respondJSON(w, http.StatusOK, session.snapshot())
}

func (s *Server) toggleAutoplay(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	playing := session.player.Toggle()
	s.logger.Debug("autoplay toggled",
		zap.String("session", session.ID),
		zap.Bool("playing", playing))
	respondJSON(w, http.StatusOK, session.snapshot())
}

type speedRequest struct {
	IntervalMS int `json:"intervalMs"`
}

func (s *Server) setSpeed(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	var req speedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if req.IntervalMS <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_INTERVAL", "intervalMs must be positive")
		return
	}
	session.player.SetSpeed(time.Duration(req.IntervalMS) * time.Millisecond)
	respondJSON(w, http.StatusOK, session.snapshot())
}

func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := chi.URLParam(r, "sessionID")
	session, ok := s.sessions.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "no session with id "+id)
		return nil, false
	}
	return session, true
}
