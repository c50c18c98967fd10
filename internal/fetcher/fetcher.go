// fetcher загружает страницы выдачи с ретраями, бэкоффом и общим лимитером.
//
// Один Fetcher разделяется всеми конкурентными запросами харвеста:
// единственное общее состояние — токен-бакет лимитера.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/pribylovaa/go-maps-harvester/internal/metrics"
	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
)

// DefaultMaxAttempts — попыток на один адрес, включая первую.
const DefaultMaxAttempts = 3

// NewLimiter создаёт лимитер на requests запросов за окно window.
// Burst равен requests: в пустом окне можно отправить всю квоту сразу.
func NewLimiter(requests int, window time.Duration) *rate.Limiter {
	if requests <= 0 || window <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	return rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests)
}

// Fetcher — устойчивый загрузчик страниц.
type Fetcher struct {
	transport   Transport
	limiter     *rate.Limiter
	maxAttempts int
	backoff     Backoff
	metrics     *metrics.Metrics
}

// Option настраивает Fetcher.
type Option func(*Fetcher)

// WithLimiter задаёт общий лимитер.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.limiter = l
		}
	}
}

// WithMaxAttempts задаёт число попыток (>= 1).
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithBackoff задаёт параметры ожидания между попытками.
func WithBackoff(b Backoff) Option {
	return func(f *Fetcher) {
		f.backoff = b
	}
}

// WithMetrics подключает prometheus-метрики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// New создаёт Fetcher поверх транспорта t.
// По умолчанию: 3 попытки, 4..10s бэкофф, 100 запросов в минуту.
func New(t Transport, opts ...Option) *Fetcher {
	f := &Fetcher{
		transport:   t,
		limiter:     NewLimiter(100, time.Minute),
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch загружает address.
//
// Ошибки:
//   - *TransportError (ErrTransport) — все попытки исчерпаны, последняя причина внутри;
//   - *RelayAuthError (ErrRelayAuth) — relay отверг ключ, повторов нет.
func (f *Fetcher) Fetch(ctx context.Context, address string) (models.RawPage, error) {
	const op = "fetcher.Fetch"

	lg := log.From(ctx)

	var page models.RawPage
	attempts := 0

	operation := func() error {
		attempts++

		if err := f.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate_limit: %w", err))
		}

		start := time.Now()
		p, err := f.transport.Do(ctx, address)
		f.metrics.ObserveAttempt(f.transport.Name(), outcome(err), time.Since(start))

		if err != nil {
			if errors.Is(err, ErrRelayAuth) {
				return backoff.Permanent(err)
			}
			return err
		}

		page = p
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newRandomExponential(f.backoff), uint64(f.maxAttempts-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		lg.Warn("fetch_retry",
			slog.String("op", op),
			slog.String("url", address),
			slog.Int("attempt", attempts),
			slog.Duration("wait", wait),
			slog.String("err", err.Error()),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if errors.Is(err, ErrRelayAuth) {
			lg.Error("fetch_relay_auth_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			return models.RawPage{}, fmt.Errorf("%s: %w", op, err)
		}

		lg.Warn("fetch_failed",
			slog.String("op", op),
			slog.String("url", address),
			slog.Int("attempts", attempts),
			slog.String("err", err.Error()),
		)
		return models.RawPage{}, &TransportError{Address: address, Attempts: attempts, Err: err}
	}

	lg.Debug("fetch_ok",
		slog.String("op", op),
		slog.String("url", address),
		slog.Int("attempts", attempts),
		slog.Int("bytes", len(page.Text)),
	)

	return page, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrRelayAuth):
		return metrics.OutcomeAuth
	case errors.Is(err, ErrUnexpectedStatus):
		return metrics.OutcomeStatus
	default:
		return metrics.OutcomeError
	}
}
