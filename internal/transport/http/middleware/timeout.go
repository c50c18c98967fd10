package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/go-maps-harvester/internal/transport/http/errors"
)

// Timeout ограничивает запросы чтения дедлайном d (более ранний дедлайн
// родителя сохраняется). Если обработчик вернулся, ничего не ответив, а
// дедлайн истёк, клиент получает 504 deadline_exceeded. d <= 0 — no-op.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			rec := newRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if !rec.wrote() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				apierrors.WriteError(rec, r, ctx.Err())
			}
		})
	}
}
