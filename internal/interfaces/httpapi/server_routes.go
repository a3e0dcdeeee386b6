package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerTournamentRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/tournament", handler.GetTournament)
	mux.HandleFunc("POST /v1/tournament", handler.CreateTournament)
	mux.HandleFunc("GET /v1/tournament/status", handler.GetTournamentStatus)
	mux.HandleFunc("POST /v1/tournament/start", handler.StartTournament)
	mux.HandleFunc("POST /v1/tournament/complete", handler.CompleteTournament)
	mux.HandleFunc("POST /v1/tournament/reset", handler.ResetTournament)

	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("POST /v1/players", handler.AddPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("PUT /v1/players/{playerID}", handler.UpdatePlayer)
	mux.HandleFunc("DELETE /v1/players/{playerID}", handler.RemovePlayer)
	mux.HandleFunc("PUT /v1/players/{playerID}/active", handler.SetPlayerActive)

	mux.HandleFunc("GET /v1/rankings", handler.GetRankings)
	mux.HandleFunc("GET /v1/stats", handler.GetStats)
	mux.HandleFunc("GET /v1/stats/pairings", handler.GetPairingStats)
	mux.HandleFunc("GET /v1/validation", handler.ValidateTournament)
	mux.HandleFunc("GET /v1/settings", handler.GetSettings)
	mux.HandleFunc("PUT /v1/settings", handler.UpdateSettings)
}

func registerRoundRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/rounds", handler.GenerateRound)
	mux.HandleFunc("GET /v1/rounds", handler.ListRounds)
	mux.HandleFunc("GET /v1/rounds/current", handler.GetCurrentRound)
	mux.HandleFunc("GET /v1/rounds/{number}", handler.GetRound)

	mux.HandleFunc("GET /v1/matches", handler.ListCurrentMatches)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	mux.HandleFunc("POST /v1/matches/{matchID}/result", handler.RecordMatchResult)
	mux.HandleFunc("DELETE /v1/matches/{matchID}/result", handler.ResetMatch)
}

func registerStorageRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/export", handler.Export)
	mux.HandleFunc("POST /v1/import", handler.Import)

	mux.HandleFunc("GET /v1/backups", handler.ListBackups)
	mux.HandleFunc("POST /v1/backups", handler.CreateBackup)
	mux.HandleFunc("POST /v1/backups/{key}/restore", handler.RestoreBackup)
	mux.HandleFunc("DELETE /v1/backups/{key}", handler.DeleteBackup)

	mux.HandleFunc("GET /v1/storage/stats", handler.GetStorageStats)
	mux.HandleFunc("PUT /v1/storage/autosave", handler.SetAutoSave)
}
