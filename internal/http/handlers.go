package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"intake-chatbot/internal/engine"
	"intake-chatbot/internal/llm"
	"intake-chatbot/internal/metrics"
	"intake-chatbot/internal/store"
	"intake-chatbot/pkg"
)

// Server bundles the dependencies required by the HTTP handlers.
type Server struct {
	Store   store.ProfileStore
	LLM     llm.Client
	Metrics *metrics.Metrics
	Log     zerolog.Logger
}

// NewServer constructs a Server.
func NewServer(st store.ProfileStore, client llm.Client, m *metrics.Metrics, log zerolog.Logger) *Server {
	return &Server{Store: st, LLM: client, Metrics: m, Log: log}
}

// Router builds the API routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Put("/profile", s.handleUpdateProfile)
			r.Get("/messages", s.handleListMessages)
			r.Post("/messages", s.handlePostMessage)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.Store.Create(r.Context())
	if err != nil {
		s.Log.Error().Err(err).Msg("create session failed")
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":  profile,
		"complete": profile.Complete(),
		"tracking": profile.Tracking.Summary(),
	})
}

// handleUpdateProfile accepts the wizard answers. Transcript and coverage
// state are server-owned and never overwritten from the request body.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.loadProfile(w, r)
	if !ok {
		return
	}

	var update pkg.Profile
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	applyProfileUpdate(profile, &update)

	if err := profile.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.Store.Save(r.Context(), chi.URLParam(r, "sessionID"), profile); err != nil {
		s.Log.Error().Err(err).Msg("save profile failed")
		writeError(w, http.StatusInternalServerError, "could not save profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"complete": profile.Complete()})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": profile.ChatHistory})
}

// handlePostMessage processes one conversation turn. A model failure is
// surfaced as a fixed apology and nothing is persisted, so the user can
// retry by re-sending the same input.
func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	if !profile.Complete() {
		writeError(w, http.StatusConflict, "profile is incomplete")
		return
	}

	var req pkg.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	log := s.Log.With().Str("session_id", chi.URLParam(r, "sessionID")).Logger()
	session := engine.NewSession(profile, s.LLM, log, s.Metrics)

	result, err := session.ProcessTurn(r.Context(), req.Content)
	switch {
	case errors.Is(err, engine.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "empty message")
		return
	case errors.Is(err, engine.ErrModelUnavailable):
		writeJSON(w, http.StatusBadGateway, pkg.ChatResponse{
			Replies: []pkg.ChatMessage{{
				Content: engine.ApologyMessage,
				Role:    pkg.RoleAssistant,
			}},
			Tracking: profile.Tracking.Summary(),
		})
		return
	case err != nil:
		log.Error().Err(err).Msg("turn processing failed")
		writeError(w, http.StatusInternalServerError, "could not process message")
		return
	}

	if err := s.Store.Save(r.Context(), chi.URLParam(r, "sessionID"), profile); err != nil {
		log.Error().Err(err).Msg("persist turn failed")
		writeError(w, http.StatusInternalServerError, "could not persist conversation")
		return
	}

	writeJSON(w, http.StatusOK, pkg.ChatResponse{
		Replies:   result.Replies,
		Diagnosis: result.Diagnosis,
		Tracking:  profile.Tracking.Summary(),
	})
}

func (s *Server) loadProfile(w http.ResponseWriter, r *http.Request) (*pkg.Profile, bool) {
	id := chi.URLParam(r, "sessionID")
	profile, err := s.Store.Load(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		s.Log.Error().Err(err).Str("session_id", id).Msg("load profile failed")
		writeError(w, http.StatusInternalServerError, "could not load session")
		return nil, false
	}
	return profile, true
}

func applyProfileUpdate(dst, src *pkg.Profile) {
	dst.Gender = src.Gender
	dst.Age = src.Age
	dst.Country = src.Country
	dst.State = src.State
	dst.Location = src.Location
	dst.Conditions = src.Conditions
	dst.OtherConditionText = src.OtherConditionText
	dst.Medication = src.Medication
	dst.Allergies = src.Allergies
	dst.AllergyTypes = src.AllergyTypes
	dst.SmokeDrink = src.SmokeDrink
	dst.Exercise = src.Exercise
	dst.Sleep = src.Sleep
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
