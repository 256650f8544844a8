package middlewarex

import (
	"log/slog"
	"net/http"

	"propinvest/pkg/contextx"
	"propinvest/pkg/logx"
)

// Logger кладёт в контекст запроса логгер с trace-id, метод и путь.
// Должен стоять после TraceID.
func Logger(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := base.With(
				slog.String(logx.FieldHTTPMethod, r.Method),
				slog.String(logx.FieldURL, r.URL.Path),
			)

			if traceID, err := contextx.TraceIDFromContext(ctx); err == nil {
				log = log.With(logx.Stringer(logx.FieldTraceID, traceID))
			}

			next.ServeHTTP(w, r.WithContext(contextx.WithLogger(ctx, log)))
		})
	}
}
