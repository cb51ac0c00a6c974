package app

import (
	"context"
	"log/slog"
	"time"
)

// ReservationExpirer is the slice of the ledger the sweeper drives.
type ReservationExpirer interface {
	ExpireReservations(ctx context.Context) (int64, error)
}

// Sweeper periodically reclaims abandoned soft holds so they stop
// consuming capacity. It is the only background actor in the engine;
// each tick is one set-based update, so it needs no coordination with
// request traffic beyond normal transaction isolation.
type Sweeper struct {
	ledger   ReservationExpirer
	interval time.Duration
	logger   *slog.Logger
}

const defaultSweepInterval = time.Minute

func NewSweeper(ledger ReservationExpirer, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		ledger:   ledger,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps at a fixed rate until ctx is cancelled. A failed tick is
// logged and retried on the next tick; expiry is not latency-critical.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ledger.ExpireReservations(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("reservation expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("expired stale reservations", "count", n)
			}
		}
	}
}
