// Package scheduler периодически перепроверяет срок действия подписки,
// чтобы она истекала без действий пользователя.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Rechecker гейт подписки.
type Rechecker interface {
	Recheck(now time.Time) bool
}

// SchedulerService запускает перепроверку по таймеру.
type SchedulerService struct {
	gate     Rechecker
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(gate Rechecker, log *slog.Logger, interval time.Duration) *SchedulerService {
	return &SchedulerService{
		gate:     gate,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run проверяет подписку сразу, затем каждые interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.recheck()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("subscription recheck stopped")
			return
		case <-ticker.C:
			s.recheck()
		}
	}
}

func (s *SchedulerService) recheck() {
	if s.gate.Recheck(s.now()) {
		s.log.Info("subscription expired on recheck")
	}
}
