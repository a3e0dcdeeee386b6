package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/badminton-tournament/internal/domain/tournament"
	"github.com/riskibarqy/badminton-tournament/internal/usecase"
)

func (h *Handler) GenerateRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateRound")
	defer span.End()

	generated, err := h.tournaments.GenerateRound(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "generate round failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, generatedRoundToDTO(generated))
}

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds")
	defer span.End()

	rounds := h.tournaments.Rounds(ctx)
	items := make([]roundDTO, 0, len(rounds))
	for _, round := range rounds {
		items = append(items, roundToDTO(round))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentRound")
	defer span.End()

	round, err := h.tournaments.CurrentRound(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(round))
}

func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRound")
	defer span.End()

	raw := r.PathValue("number")
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		writeError(ctx, w, fmt.Errorf("%w: round number must be a positive integer, got %q", usecase.ErrInvalidInput, raw))
		return
	}

	round, err := h.tournaments.Round(ctx, number)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(round))
}

// ListCurrentMatches filters the current round by ?status=pending|completed.
func (h *Handler) ListCurrentMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCurrentMatches")
	defer span.End()

	var matches []*tournament.Match
	switch status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))); status {
	case "":
		matches = h.tournaments.CurrentRoundMatches(ctx)
	case string(tournament.MatchStatusPending):
		matches = h.tournaments.PendingMatches(ctx)
	case string(tournament.MatchStatusCompleted):
		matches = h.tournaments.CompletedMatches(ctx)
	default:
		writeError(ctx, w, fmt.Errorf("%w: unknown match status %q", usecase.ErrInvalidInput, status))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(matches))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	match, err := h.tournaments.Match(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(match))
}

func (h *Handler) RecordMatchResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatchResult")
	defer span.End()

	matchID := r.PathValue("matchID")
	var req recordResultRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	match, err := h.tournaments.RecordMatchResult(ctx, matchID, tournament.Winner(req.Winner))
	if err != nil {
		h.logger.WarnContext(ctx, "record match result failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(match))
}

func (h *Handler) ResetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	match, err := h.tournaments.ResetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "reset match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(match))
}
