package api

// Package api is the thin HTTP layer over the dialogue, expressions, sharing
// and recommendation services. Handlers only decode requests, call one
// service operation and encode the result; all domain logic lives in the
// services. Authentication is handled upstream; the acting user arrives in
// the X-User-ID header set by the auth proxy.

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-go-golems/parley/pkg/dialogue"
	"github.com/go-go-golems/parley/pkg/expressions"
	"github.com/go-go-golems/parley/pkg/recommend"
	"github.com/go-go-golems/parley/pkg/sharing"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/rs/zerolog/log"
)

const userIDHeader = "X-User-ID"

type Server struct {
	dialogue    *dialogue.Service
	expressions *expressions.Service
	sharing     *sharing.Service
	recommend   *recommend.Service
	scenarios   store.ScenarioStore
	router      chi.Router
	listen      string
}

func NewServer(
	listen string,
	dialogueSvc *dialogue.Service,
	expressionsSvc *expressions.Service,
	sharingSvc *sharing.Service,
	recommendSvc *recommend.Service,
	scenarios store.ScenarioStore,
) *Server {
	srv := &Server{
		dialogue:    dialogueSvc,
		expressions: expressionsSvc,
		sharing:     sharingSvc,
		recommend:   recommendSvc,
		scenarios:   scenarios,
		listen:      listen,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/health", srv.handleHealth)

	r.Route("/scenario", func(r chi.Router) {
		r.Get("/", srv.handleListScenarios)
		r.Get("/{scenarioID}", srv.handleGetScenario)
	})

	r.Route("/conversation", func(r chi.Router) {
		r.Get("/{scenarioID}", srv.handleGetConversation)
		r.Post("/{scenarioID}", srv.handleTurn)
		r.Delete("/{scenarioID}", srv.handleDeleteConversation)
		r.Post("/{scenarioID}/share", srv.handleShare)
	})

	r.Route("/message", func(r chi.Router) {
		r.Post("/", srv.handleToggleSaved)
		r.Get("/", srv.handleListSaved)
		r.Delete("/{messageID}", srv.handleDeleteSaved)
	})

	r.Route("/shared", func(r chi.Router) {
		r.Get("/scenario/{scenarioID}", srv.handleListShared)
		r.Get("/{sharedID}", srv.handleViewShared)
		r.Delete("/{sharedID}", srv.handleDeleteShared)
	})

	r.Route("/recommendation", func(r chi.Router) {
		r.Get("/expression/{scenarioID}", srv.handleRecommendExpression)
		r.Post("/expression/{scenarioID}", srv.handleSaveExpression)
		r.Get("/vocab/{scenarioID}", srv.handleRecommendVocab)
		r.Post("/vocab/{scenarioID}", srv.handleSaveVocab)
	})

	srv.router = r
	return srv
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	log.Info().Str("listen", s.listen).Msg("starting HTTP API")
	return http.ListenAndServe(s.listen, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "parley",
	})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.scenarios.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": scenarios})
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scenarios.Get(r.Context(), chi.URLParam(r, "scenarioID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenario": sc})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	t, err := s.dialogue.GetTranscript(r.Context(), userID, chi.URLParam(r, "scenarioID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": t.Entries,
		"goalMet": t.GoalMet,
	})
}

type turnRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	result, err := s.dialogue.SubmitTurn(r.Context(), userID, chi.URLParam(r, "scenarioID"), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := s.dialogue.DeleteTranscript(r.Context(), userID, chi.URLParam(r, "scenarioID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "conversation deleted"})
}

type toggleRequest struct {
	EntryID     string `json:"entryId,omitempty"`
	ScenarioID  string `json:"scenarioId"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	Translation string `json:"translation,omitempty"`
}

func (s *Server) handleToggleSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	entry, err := s.expressions.Toggle(r.Context(), userID, req.ScenarioID, expressions.ToggleRequest{
		EntryID:     req.EntryID,
		Role:        req.Role,
		Content:     req.Content,
		Translation: req.Translation,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "message saved/deleted successfully",
		"data":    entry,
	})
}

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	messages, err := s.expressions.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := s.expressions.Delete(r.Context(), userID, chi.URLParam(r, "messageID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "message deleted successfully"})
}

type shareRequest struct {
	Title    string `json:"title"`
	Nickname string `json:"nickname"`
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	id, err := s.sharing.Share(r.Context(), userID, chi.URLParam(r, "scenarioID"), req.Title, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListShared(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	summaries, err := s.sharing.List(r.Context(), chi.URLParam(r, "scenarioID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shared": summaries})
}

func (s *Server) handleViewShared(w http.ResponseWriter, r *http.Request) {
	entries, err := s.sharing.View(r.Context(), chi.URLParam(r, "sharedID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleDeleteShared(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := s.sharing.Delete(r.Context(), chi.URLParam(r, "sharedID"), userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "shared conversation deleted"})
}

func (s *Server) handleRecommendExpression(w http.ResponseWriter, r *http.Request) {
	expr, err := s.recommend.Expression(r.Context(), chi.URLParam(r, "scenarioID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expr)
}

func (s *Server) handleRecommendVocab(w http.ResponseWriter, r *http.Request) {
	items, err := s.recommend.Vocab(r.Context(), chi.URLParam(r, "scenarioID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type saveContentRequest struct {
	Content     string `json:"content"`
	Translation string `json:"translation,omitempty"`
}

func (s *Server) handleSaveExpression(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req saveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	e, err := s.recommend.SaveExpression(r.Context(), userID, chi.URLParam(r, "scenarioID"), req.Content, req.Translation)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "expression saved successfully",
		"data":    e,
	})
}

func (s *Server) handleSaveVocab(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req saveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	v, err := s.recommend.SaveVocab(r.Context(), userID, chi.URLParam(r, "scenarioID"), req.Content, req.Translation)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "vocab saved successfully",
		"data":    v,
	})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return "", false
	}
	return userID, true
}
