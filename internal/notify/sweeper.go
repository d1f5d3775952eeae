package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/videotube/backend/internal/logging"
)

// ExpiredDeleter purges notification rows whose TTL elapsed.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically deletes expired notifications.
type Sweeper struct {
	deleter  ExpiredDeleter
	interval time.Duration
	logger   *slog.Logger
}

// NewSweeper constructs a sweeper running at the given interval.
func NewSweeper(deleter ExpiredDeleter, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{deleter: deleter, interval: interval, logger: logger}
}

// Run blocks until the context is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(ctx, now)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context, now time.Time) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sweepCtx, span := logging.StartSpan(logging.WithLogger(sweepCtx, s.logger), "notification.sweep")
	defer span.End()
	logger := logging.FromContext(sweepCtx)

	purged, err := s.deleter.DeleteExpired(sweepCtx, now)
	if err != nil {
		logger.Error("sweep expired notifications", "error", err)
		return
	}
	if purged > 0 {
		logger.Info("swept expired notifications", slog.Int64("purged", purged))
	}
}
