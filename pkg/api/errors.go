package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-go-golems/parley/pkg/chat"
	"github.com/go-go-golems/parley/pkg/dialogue"
	"github.com/go-go-golems/parley/pkg/expressions"
	"github.com/go-go-golems/parley/pkg/recommend"
	"github.com/go-go-golems/parley/pkg/sharing"
	"github.com/go-go-golems/parley/pkg/store"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("could not encode response")
	}
}

// writeError maps service error kinds onto HTTP statuses: NotFound → 404,
// Forbidden → 403, InvalidInput → 400, upstream failures → 502, everything
// else → 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, sharing.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, dialogue.ErrInvalidInput),
		errors.Is(err, expressions.ErrInvalidInput),
		errors.Is(err, sharing.ErrInvalidInput),
		errors.Is(err, recommend.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, chat.ErrUpstream):
		log.Error().Err(err).Msg("upstream service failure")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "language service unavailable"})
	default:
		log.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
