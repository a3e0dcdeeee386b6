package httpapi

import (
	"net/http"

	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
)

// RouterConfig carries the edge settings applied around the API routes.
type RouterConfig struct {
	CORSAllowedOrigins  []string
	CaptureRequestBody  bool
	RequestBodyMaxBytes int
}

func NewRouter(handler *Handler, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerTournamentRoutes(mux, handler)
	registerRoundRoutes(mux, handler)
	registerStorageRoutes(mux, handler)

	var next http.Handler = RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux)))
	if cfg.CaptureRequestBody {
		next = CaptureRequestBody(cfg.RequestBodyMaxBytes, next)
	}
	return RequestTracing(next)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
