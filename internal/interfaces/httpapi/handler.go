package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/riskibarqy/badminton-tournament/internal/usecase"
)

const (
	maxRequestBytes = 1 << 20
	maxImportBytes  = 16 << 20
)

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

type Handler struct {
	tournaments *usecase.TournamentService
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(tournaments *usecase.TournamentService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		tournaments: tournaments,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it. An empty body is
// accepted when optional is set, leaving dst at its zero value.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any, optional bool) error {
	body, err := readBody(r, maxRequestBytes)
	if err != nil {
		return err
	}
	if len(body) == 0 && optional {
		return h.validateRequest(ctx, dst)
	}
	if err := strictJSON.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: request body exceeds %d bytes", usecase.ErrInvalidInput, limit)
	}
	return bytes.TrimSpace(body), nil
}
