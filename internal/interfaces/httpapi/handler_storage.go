package httpapi

import "net/http"

// Export returns the raw tournament document so it can be imported again.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Export")
	defer span.End()

	data, err := h.tournaments.Export(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "export tournament failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tournament.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Import")
	defer span.End()

	data, err := readBody(r, maxImportBytes)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	imported, err := h.tournaments.Import(ctx, data)
	if err != nil {
		h.logger.WarnContext(ctx, "import tournament failed", "size_bytes", len(data), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(imported))
}

func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBackups")
	defer span.End()

	backups, err := h.tournaments.ListBackups(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list backups failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, backupsToDTO(backups))
}

func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateBackup")
	defer span.End()

	var req createBackupRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	key, err := h.tournaments.CreateBackup(ctx, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "create backup failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, map[string]string{"key": key})
}

func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RestoreBackup")
	defer span.End()

	key := r.PathValue("key")
	restored, err := h.tournaments.RestoreFromBackup(ctx, key)
	if err != nil {
		h.logger.WarnContext(ctx, "restore backup failed", "key", key, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(restored))
}

func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteBackup")
	defer span.End()

	key := r.PathValue("key")
	if err := h.tournaments.DeleteBackup(ctx, key); err != nil {
		h.logger.WarnContext(ctx, "delete backup failed", "key", key, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"key": key})
}

func (h *Handler) GetStorageStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStorageStats")
	defer span.End()

	stats, err := h.tournaments.StorageStats(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "storage stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, storageStatsToDTO(stats, h.tournaments.AutoSaveEnabled()))
}

func (h *Handler) SetAutoSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetAutoSave")
	defer span.End()

	var req autoSaveRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.tournaments.SetAutoSave(*req.Enabled)
	h.logger.InfoContext(ctx, "autosave toggled", "enabled", *req.Enabled)
	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"autosave": *req.Enabled})
}
