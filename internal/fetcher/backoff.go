package fetcher

import (
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Backoff — параметры рандомизированного экспоненциального ожидания.
// Перед попыткой n ожидание равномерно в [Min, clamp(Multiplier*2^(n-1), Min, Max)].
type Backoff struct {
	Min        time.Duration
	Max        time.Duration
	Multiplier time.Duration
}

// DefaultBackoff — 4..10 секунд с единицей в 1 секунду.
var DefaultBackoff = Backoff{Min: 4 * time.Second, Max: 10 * time.Second, Multiplier: time.Second}

// randomExponential реализует backoff.BackOff.
type randomExponential struct {
	cfg     Backoff
	attempt int
	rnd     func() float64
}

var _ backoff.BackOff = (*randomExponential)(nil)

func newRandomExponential(cfg Backoff) *randomExponential {
	return &randomExponential{cfg: cfg, rnd: rand.Float64}
}

// NextBackOff возвращает паузу перед следующей попыткой.
func (b *randomExponential) NextBackOff() time.Duration {
	b.attempt++

	high := b.cfg.Max
	if b.attempt <= 30 {
		if exp := b.cfg.Multiplier * time.Duration(1<<(b.attempt-1)); exp > 0 && exp < high {
			high = exp
		}
	}

	if high <= b.cfg.Min {
		return b.cfg.Min
	}

	return b.cfg.Min + time.Duration(b.rnd()*float64(high-b.cfg.Min))
}

// Reset сбрасывает счётчик попыток.
func (b *randomExponential) Reset() {
	b.attempt = 0
}
