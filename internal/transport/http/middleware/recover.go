package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	apierrors "github.com/pribylovaa/go-maps-harvester/internal/transport/http/errors"
)

var errPanic = errors.New("handler panic")

// Recover перехватывает панику обработчика и отвечает 500 в формате ошибок API.
//
// Стоит первым в цепочке, поэтому логгер запроса ещё не в контексте:
// запись panic_recovered пишется в base с request_id из заголовка.
// Если ответ уже начат, тело не дописывается. http.ErrAbortHandler
// пробрасывается дальше, как это делает net/http.
func Recover(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newRecorder(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				base.Error("panic_recovered",
					slog.String("request_id", r.Header.Get(HeaderRequestID)),
					slog.String("method", r.Method),
					slog.String("route", routePattern(r)),
					slog.Any("panic", v),
					slog.String("stack", string(debug.Stack())),
				)

				if !rec.wrote() {
					apierrors.WriteError(rec, r, errPanic)
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
