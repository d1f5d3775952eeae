package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/videotube/backend/internal/db"
)

// PostgresHistoryRepository persists per-user watch history. One row per
// (user, video): each view updates viewed_at in place, which bounds
// storage and makes the read side naturally deduplicated.
type PostgresHistoryRepository struct {
	pool db.Pool
}

// NewPostgresHistoryRepository constructs a history repository backed by PostgreSQL.
func NewPostgresHistoryRepository(pool db.Pool) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{pool: pool}
}

// RecordView upserts the (user, video) row with the latest view time.
// Concurrent views race harmlessly: whichever timestamp lands last wins,
// and both are "most recent" to within the race window.
func (r *PostgresHistoryRepository) RecordView(ctx context.Context, userID, videoID string, viewedAt time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, viewed_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET viewed_at = GREATEST(watch_history.viewed_at, EXCLUDED.viewed_at)
    `, userID, videoID, viewedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("upsert watch history: %w", err)
	}

	return nil
}

// ListForUser materializes the user's watch history: one entry per video,
// most recently viewed first, joined with the video's current owner
// projection. Videos deleted since being watched drop out via the join.
func (r *PostgresHistoryRepository) ListForUser(ctx context.Context, userID string) ([]VideoSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.media_url, v.thumbnail_url,
               v.duration_seconds, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM watch_history h
        JOIN videos v ON v.id = h.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE h.user_id = $1
        ORDER BY h.viewed_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var history []VideoSummary
	for rows.Next() {
		var s VideoSummary
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.Title, &s.Description, &s.MediaURL, &s.ThumbnailURL,
			&s.DurationSeconds, &s.Views, &s.IsPublished, &s.CreatedAt, &s.UpdatedAt,
			&s.Owner.ID, &s.Owner.Username, &s.Owner.FullName, &s.Owner.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan watch history row: %w", err)
		}
		history = append(history, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return history, nil
}

var _ HistoryRepository = (*PostgresHistoryRepository)(nil)
