package httpapi

import (
	"net/http"
)

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	current, err := h.tournaments.Tournament(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(current))
}

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTournament")
	defer span.End()

	var req createTournamentRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.tournaments.CreateTournament(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "create tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tournamentToDTO(created))
}

func (h *Handler) GetTournamentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournamentStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, statusDTO{
		Status:   h.tournaments.Status(ctx),
		CanStart: h.tournaments.CanStartTournament(ctx),
	})
}

func (h *Handler) StartTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartTournament")
	defer span.End()

	if err := h.tournaments.StartTournament(ctx); err != nil {
		h.logger.WarnContext(ctx, "start tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeTournament(w, r)
}

func (h *Handler) CompleteTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteTournament")
	defer span.End()

	if err := h.tournaments.CompleteTournament(ctx); err != nil {
		h.logger.WarnContext(ctx, "complete tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeTournament(w, r)
}

func (h *Handler) ResetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetTournament")
	defer span.End()

	if err := h.tournaments.ResetTournament(ctx); err != nil {
		h.logger.WarnContext(ctx, "reset tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.writeTournament(w, r)
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(h.tournaments.Players(ctx)))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	p, err := h.tournaments.Player(ctx, r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
}

func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPlayer")
	defer span.End()

	var req playerRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.tournaments.AddPlayer(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "add player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(p))
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	var req playerRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.tournaments.UpdatePlayer(ctx, playerID, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "update player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
}

func (h *Handler) SetPlayerActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetPlayerActive")
	defer span.End()

	playerID := r.PathValue("playerID")
	var req playerActiveRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.tournaments.SetPlayerActive(ctx, playerID, *req.Active)
	if err != nil {
		h.logger.WarnContext(ctx, "set player active failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(p))
}

func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayer")
	defer span.End()

	playerID := r.PathValue("playerID")
	if err := h.tournaments.RemovePlayer(ctx, playerID); err != nil {
		h.logger.WarnContext(ctx, "remove player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": playerID})
}

func (h *Handler) GetRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRankings")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, rankingsToDTO(h.tournaments.Rankings(ctx)))
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStats")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, statsToDTO(h.tournaments.TournamentStats(ctx)))
}

func (h *Handler) GetPairingStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPairingStats")
	defer span.End()

	stats, err := h.tournaments.PairingStats(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pairingStatsToDTO(stats))
}

func (h *Handler) ValidateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateTournament")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, validationToDTO(h.tournaments.ValidateTournament(ctx)))
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSettings")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(h.tournaments.Settings(ctx)))
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSettings")
	defer span.End()

	var req updateSettingsRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	settings, err := h.tournaments.UpdateSettings(ctx, req.toUpdate())
	if err != nil {
		h.logger.WarnContext(ctx, "update settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settingsToDTO(settings))
}

// writeTournament answers a lifecycle command with the resulting state.
func (h *Handler) writeTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := h.tournaments.Tournament(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(current))
}
