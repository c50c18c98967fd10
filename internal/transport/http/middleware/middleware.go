// middleware — net/http мидлвары HTTP API харвестера.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware — стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// routeUnmatched — метка запросов, не попавших ни в один маршрут.
const routeUnmatched = "unmatched"

// recorder запоминает статус и размер ответа.
// status == 0 означает, что ответ ещё не начат.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w}
}

func (w *recorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *recorder) wrote() bool { return w.status != 0 }

// code — итоговый статус; обработчик, не писавший ничего, отвечает 200.
func (w *recorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// routePattern возвращает шаблон маршрута chi ("/listings/{id}").
// Корректен только после того, как chi выбрал маршрут.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return routeUnmatched
}
