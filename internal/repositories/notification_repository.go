package repositories

import (
	"context"
	"time"

	"github.com/videotube/backend/internal/models"
)

// NotificationRepository defines data access for fan-out notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification models.Notification) error
	// ListForUser returns the user's unexpired notifications, newest first.
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	// DeleteExpired purges rows whose TTL elapsed before now and reports
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
