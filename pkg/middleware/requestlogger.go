package middleware

import (
	"log/slog"
	"net/http"

	"github.com/briannzioki/qwiksale-listings/pkg/logger"
)

// RequestLogger stores a request-scoped logger, enriched with correlation and
// trace attributes, in the request context so handlers and repositories can
// retrieve it with logger.FromContext.
func RequestLogger(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, l))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
