package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/email"
	"github.com/videotube/backend/internal/handlers"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/notify"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/storage"
)

// buildDependencies wires together the concrete implementations used by
// the HTTP handlers, plus the background collaborators the caller owns.
func buildDependencies(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, *notify.Publisher, *notify.Sweeper, error) {
	sessionStore := repositories.NewPostgresSessionStore(pool)
	sessions := auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore)

	engagement := repositories.NewPostgresEngagementRepository(pool)
	notifications := repositories.NewPostgresNotificationRepository(pool)

	publisher := notify.NewPublisher(engagement, notifications, notify.PublisherConfig{
		QueueSize: cfg.FanoutQueueSize,
		Workers:   cfg.FanoutWorkers,
		TTL:       cfg.NotificationTTL,
	}, logger)
	sweeper := notify.NewSweeper(notifications, cfg.SweepInterval, logger)

	var media handlers.MediaStore
	if cfg.ObjectStore.Bucket != "" {
		s3Store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, nil, err
		}
		media = s3Store
	}

	var mailer handlers.Mailer
	if cfg.SMTP.Addr != "" {
		mailer = email.NewSMTPMailer(cfg.SMTP.Addr, cfg.SMTP.From)
	}

	deps := handlers.Dependencies{
		DB:            pool,
		Users:         repositories.NewPostgresUserRepository(pool),
		Sessions:      sessions,
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Engagement:    engagement,
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Notifications: notifications,
		History:       repositories.NewPostgresHistoryRepository(pool),
		Media:         media,
		Fanout:        publisher,
		Mailer:        mailer,
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateRequests, cfg.AuthRateWindow, cfg.AuthRateBurst, 10*time.Minute),
		RequireAuth:   middleware.RequireAuth(sessions),
		OptionalAuth:  middleware.OptionalAuth(sessions),
	}

	return deps, publisher, sweeper, nil
}
