package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"fpl-live-draft/internal/constants"
	"fpl-live-draft/internal/poller"
)

type startLeagueRequest struct {
	LeagueID string `json:"league_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *DraftServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *DraftServer) handleGetLeague(w http.ResponseWriter, r *http.Request) {
	view, ok := s.views.Latest()
	if !ok {
		writeError(w, r, http.StatusNotFound, "No league is being tracked")
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *DraftServer) handleStartLeague(w http.ResponseWriter, r *http.Request) {
	var req startLeagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, constants.MsgInvalidLeagueID)
		return
	}

	view, err := s.tracker.Start(req.LeagueID)
	switch {
	case errors.Is(err, poller.ErrInvalidLeagueID):
		writeError(w, r, http.StatusBadRequest, constants.MsgInvalidLeagueID)
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to start polling")
		writeError(w, r, http.StatusInternalServerError, "Failed to start polling")
		return
	}
	writeJSON(w, r, http.StatusAccepted, view)
}

func (s *DraftServer) handleStopLeague(w http.ResponseWriter, r *http.Request) {
	s.tracker.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}
