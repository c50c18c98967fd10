package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
)

// Logging кладёт логгер запроса (с request_id) в контекст и по завершении
// пишет одну запись "http". Уровень по статусу: 5xx — Error, 4xx — Warn.
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := l
			if rid := r.Header.Get(HeaderRequestID); rid != "" {
				reqLogger = reqLogger.With(slog.String("request_id", rid))
			}
			r = r.WithContext(log.Into(r.Context(), reqLogger))

			rec := newRecorder(w)
			start := time.Now()
			next.ServeHTTP(rec, r)

			status := rec.code()
			reqLogger.LogAttrs(r.Context(), statusLevel(status), "http",
				slog.String("method", r.Method),
				slog.String("route", routePattern(r)),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("dur", time.Since(start)),
				slog.Int("bytes", rec.bytes),
			)
		})
	}
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
