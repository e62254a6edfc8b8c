package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/league-night/internal/platform/logging"
)

// NewRouter mounts every route and wraps the mux with, from the outside in,
// tracing, access logging, CORS and panic recovery.
func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerNightRoutes(mux, handler)
	registerSessionRoutes(mux, handler)

	var h http.Handler = mux
	h = recoverPanic(logger, h)
	h = CORS(corsAllowedOrigins, h)
	h = RequestLogging(logger, h)
	return RequestTracing(h)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			ctx := r.Context()
			logger.ErrorContext(ctx, "panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
			markSpanFailed(ctx, fmt.Errorf("panic: %v", rec))
			writeInternalError(ctx, w)
		}()
		next.ServeHTTP(w, r)
	})
}
