package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jkilzi/taskqueue/internal/models"
	srvErrors "github.com/jkilzi/taskqueue/pkg/errors"
)

const defaultTickInterval = 50 * time.Millisecond

// FaultyTick reports whether a tick firing at t fails.
type FaultyTick func(t time.Time) bool

// DivisibleBy5 fails ticks whose millisecond timestamp is divisible by 5.
func DivisibleBy5(t time.Time) bool {
	return t.UnixMilli()%5 == 0
}

type TickerOption func(*Ticker)

func WithTickInterval(d time.Duration) TickerOption {
	return func(t *Ticker) {
		t.interval = d
	}
}

func WithFaultyTick(fn FaultyTick) TickerOption {
	return func(t *Ticker) {
		t.faulty = fn
	}
}

// Ticker emits a tick every interval until a maximum duration has elapsed.
type Ticker struct {
	interval time.Duration
	faulty   FaultyTick
	log      *zap.SugaredLogger
}

func NewTickerService(opts ...TickerOption) *Ticker {
	t := &Ticker{
		interval: defaultTickInterval,
		faulty:   DivisibleBy5,
		log:      zap.S().Named("ticker_service"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run ticks every interval for up to maxDuration. onTick receives every successful
// tick, onError every faulty one; either may be nil. A faulty tick does not
// stop the ticker. Run returns the number of successful ticks.
func (t *Ticker) Run(ctx context.Context, maxDuration time.Duration, onTick func(models.Tick), onError func(error)) (int, error) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	var (
		count   int
		start   = time.Now()
		elapsed time.Duration
	)
	for seq := 1; elapsed+t.interval <= maxDuration; seq++ {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		case now := <-ticker.C:
			elapsed += t.interval
			if t.faulty(now) {
				err := srvErrors.NewTickError(seq, now)
				t.log.Debugw("faulty tick", "seq", seq, "error", err)
				if onError != nil {
					onError(err)
				}
				continue
			}

			count++
			if onTick != nil {
				onTick(models.Tick{Seq: count, Elapsed: elapsed, At: now})
			}
		}
	}

	t.log.Debugw("ticker done", "ticks", count, "duration", time.Since(start))
	return count, nil
}
