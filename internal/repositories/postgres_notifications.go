package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

// PostgresNotificationRepository provides PostgreSQL-backed persistence
// for fan-out notifications.
type PostgresNotificationRepository struct {
	pool db.Pool
}

// NewPostgresNotificationRepository constructs a notification repository backed by PostgreSQL.
func NewPostgresNotificationRepository(pool db.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{pool: pool}
}

// Create persists a notification row.
func (r *PostgresNotificationRepository) Create(ctx context.Context, n models.Notification) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO notifications (id, user_id, video_title, channel_avatar, channel_name, is_read, created_at, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, n.ID, n.UserID, n.VideoTitle, n.ChannelAvatar, n.ChannelName, n.IsRead, n.CreatedAt, n.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// ListForUser returns the user's unexpired notifications, newest first.
// Expired rows are filtered here even before the sweeper removes them.
func (r *PostgresNotificationRepository) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, user_id, video_title, channel_avatar, channel_name, is_read, created_at, expires_at
        FROM notifications
        WHERE user_id = $1 AND expires_at > NOW()
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.VideoTitle, &n.ChannelAvatar, &n.ChannelName, &n.IsRead, &n.CreatedAt, &n.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a single notification as read. The user id guards
// against marking another user's rows.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
    `, notificationID, userID)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkAllRead flags all of a user's notifications as read.
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read
    `, userID); err != nil {
		return fmt.Errorf("update notifications: %w", err)
	}

	return nil
}

// DeleteExpired purges rows whose TTL elapsed before now.
func (r *PostgresNotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM notifications WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}

var _ NotificationRepository = (*PostgresNotificationRepository)(nil)
