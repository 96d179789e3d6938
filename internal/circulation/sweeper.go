// internal/circulation/sweeper.go
package circulation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"libris/internal/loans"
	"libris/internal/reservations"
)

// Sweeper periodically expires reservations past their hold window and flips
// overdue loans. Expiry goes through the facade so per-book serialization
// holds; explicit ExpireReservation calls remain the authoritative path.
type Sweeper struct {
	service      Service
	reservations reservations.Service
	loans        loans.Service
	interval     time.Duration
	log          *zap.Logger
	stop         chan struct{}
	done         chan struct{}
}

// NewSweeper creates a sweeper running every interval.
func NewSweeper(service Service, resSvc reservations.Service, loanSvc loans.Service, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		service:      service,
		reservations: resSvc,
		loans:        loanSvc,
		interval:     interval,
		log:          log,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(context.Background())
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

// Sweep runs one pass. It is safe to call directly, e.g. from tests.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := time.Now()

	expired, err := s.reservations.ExpiredReservations(ctx, now)
	if err != nil {
		s.log.Error("failed to list expired reservations", zap.Error(err))
	} else {
		for _, r := range expired {
			if _, err := s.service.ExpireReservation(ctx, r.ID); err != nil {
				s.log.Error("failed to expire reservation",
					zap.String("reservation_id", r.ID.String()),
					zap.Error(err),
				)
			}
		}
		if len(expired) > 0 {
			s.log.Info("expired reservations", zap.Int("count", len(expired)))
		}
	}

	if _, err := s.loans.MarkOverdueLoans(ctx, now); err != nil {
		s.log.Error("failed to mark overdue loans", zap.Error(err))
	}
}
