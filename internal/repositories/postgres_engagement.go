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

// PostgresEngagementRepository manages like and subscription edges.
type PostgresEngagementRepository struct {
	pool db.Pool
}

// NewPostgresEngagementRepository constructs an engagement repository backed by PostgreSQL.
func NewPostgresEngagementRepository(pool db.Pool) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{pool: pool}
}

// toggleAttempts bounds retries when a toggle interleaves with a
// concurrent toggle on the same key, or when the database aborts the
// transaction to preserve serializability.
const toggleAttempts = 5

// retryableToggle reports whether err is a serialization abort or a
// deadlock, both of which resolve by rerunning the toggle transaction.
func retryableToggle(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// ToggleLike flips the like edge for (actorID, kind, targetID).
func (r *PostgresEngagementRepository) ToggleLike(ctx context.Context, actorID string, kind models.LikeTarget, targetID string) (bool, error) {
	return r.toggleEdge(ctx,
		`INSERT INTO likes (liked_by_id, target_kind, target_id, created_at)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (liked_by_id, target_kind, target_id) DO NOTHING`,
		`DELETE FROM likes WHERE liked_by_id = $1 AND target_kind = $2 AND target_id = $3`,
		[]any{actorID, string(kind), targetID, time.Now().UTC()},
		[]any{actorID, string(kind), targetID},
	)
}

// ToggleSubscription flips the (subscriberID, channelID) edge.
func (r *PostgresEngagementRepository) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	return r.toggleEdge(ctx,
		`INSERT INTO subscriptions (subscriber_id, channel_id, created_at)
         VALUES ($1, $2, $3)
         ON CONFLICT (subscriber_id, channel_id) DO NOTHING`,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		[]any{subscriberID, channelID, time.Now().UTC()},
		[]any{subscriberID, channelID},
	)
}

// toggleEdge performs an atomic create-or-remove on a unique-constrained
// edge. The conditional insert and the fallback delete run in one
// transaction; the unique index linearizes concurrent toggles on the same
// key. When both statements touch zero rows a concurrent toggle interleaved,
// so the operation retries against the fresh state. The returned bool is
// the edge's state after the operation.
func (r *PostgresEngagementRepository) toggleEdge(ctx context.Context, insertSQL, deleteSQL string, insertArgs, deleteArgs []any) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	for attempt := 0; attempt < toggleAttempts; attempt++ {
		tx, err := conn.Begin(ctx)
		if err != nil {
			return false, fmt.Errorf("begin toggle: %w", err)
		}

		tag, err := tx.Exec(ctx, insertSQL, insertArgs...)
		if err != nil {
			_ = tx.Rollback(ctx)
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return false, ErrNotFound
			}
			if retryableToggle(err) {
				continue
			}
			return false, fmt.Errorf("insert edge: %w", err)
		}

		if tag.RowsAffected() == 1 {
			if err := tx.Commit(ctx); err != nil {
				if retryableToggle(err) {
					continue
				}
				return false, fmt.Errorf("commit toggle: %w", err)
			}
			return true, nil
		}

		tag, err = tx.Exec(ctx, deleteSQL, deleteArgs...)
		if err != nil {
			_ = tx.Rollback(ctx)
			if retryableToggle(err) {
				continue
			}
			return false, fmt.Errorf("delete edge: %w", err)
		}

		if tag.RowsAffected() >= 1 {
			if err := tx.Commit(ctx); err != nil {
				if retryableToggle(err) {
					continue
				}
				return false, fmt.Errorf("commit toggle: %w", err)
			}
			return false, nil
		}

		// Neither statement touched a row: a concurrent toggle removed the
		// edge between our insert and delete. Start over.
		_ = tx.Rollback(ctx)
	}

	return false, fmt.Errorf("toggle edge: exceeded %d attempts", toggleAttempts)
}

// ListSubscriberIDs enumerates the ids of every subscriber of a channel.
func (r *PostgresEngagementRepository) ListSubscriberIDs(ctx context.Context, channelID string) ([]string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT subscriber_id FROM subscriptions WHERE channel_id = $1
    `, channelID)
	if err != nil {
		return nil, fmt.Errorf("query subscriber ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriber ids: %w", err)
	}

	return ids, nil
}

// LikedVideos returns the videos the viewer has liked, filtered through
// the visibility predicate (the viewer keeps seeing their own unpublished
// videos), each joined with the owner's public projection.
func (r *PostgresEngagementRepository) LikedVideos(ctx context.Context, viewerID string) ([]VideoSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.media_url, v.thumbnail_url,
               v.duration_seconds, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by_id = $1
          AND l.target_kind = 'video'
          AND (v.is_published OR v.owner_id = $1)
        ORDER BY l.created_at DESC
    `, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var liked []VideoSummary
	for rows.Next() {
		var s VideoSummary
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.Title, &s.Description, &s.MediaURL, &s.ThumbnailURL,
			&s.DurationSeconds, &s.Views, &s.IsPublished, &s.CreatedAt, &s.UpdatedAt,
			&s.Owner.ID, &s.Owner.Username, &s.Owner.FullName, &s.Owner.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		liked = append(liked, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return liked, nil
}

// Subscribers lists a channel's subscribers with each subscriber's own
// subscriber count and whether the queried channel subscribes back. The
// total is counted independently of the page so pagination metadata stays
// exact.
func (r *PostgresEngagementRepository) Subscribers(ctx context.Context, channelID string, opts ListOptions) (SubscriberPage, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return SubscriberPage{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	opts = opts.Normalize()

	var page SubscriberPage
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1
    `, channelID).Scan(&page.Total); err != nil {
		return SubscriberPage{}, fmt.Errorf("count subscribers: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url,
               (SELECT COUNT(*) FROM subscriptions x WHERE x.channel_id = u.id) AS subscribers_count,
               EXISTS (
                   SELECT 1 FROM subscriptions x
                   WHERE x.channel_id = u.id AND x.subscriber_id = $1
               ) AS subscribed_back
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
        LIMIT $2 OFFSET $3
    `, channelID, opts.Limit, opts.Offset())
	if err != nil {
		return SubscriberPage{}, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row SubscriberRow
		if err := rows.Scan(
			&row.Profile.ID, &row.Profile.Username, &row.Profile.FullName, &row.Profile.AvatarURL,
			&row.SubscribersCount, &row.SubscribedBack,
		); err != nil {
			return SubscriberPage{}, fmt.Errorf("scan subscriber: %w", err)
		}
		page.Subscribers = append(page.Subscribers, row)
	}

	if err := rows.Err(); err != nil {
		return SubscriberPage{}, fmt.Errorf("iterate subscribers: %w", err)
	}

	return page, nil
}

// SubscribedChannels lists the channels a user subscribes to, each with
// its subscriber count and most recently created video.
func (r *PostgresEngagementRepository) SubscribedChannels(ctx context.Context, subscriberID string, opts ListOptions) (ChannelPage, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return ChannelPage{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	opts = opts.Normalize()

	var page ChannelPage
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1
    `, subscriberID).Scan(&page.Total); err != nil {
		return ChannelPage{}, fmt.Errorf("count subscribed channels: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url,
               (SELECT COUNT(*) FROM subscriptions x WHERE x.channel_id = u.id) AS subscribers_count,
               lv.id, lv.owner_id, lv.title, lv.description, lv.media_url, lv.thumbnail_url,
               lv.duration_seconds, lv.views, lv.is_published, lv.created_at, lv.updated_at
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        LEFT JOIN LATERAL (
            SELECT `+videoColumns+`
            FROM videos
            WHERE owner_id = u.id AND is_published
            ORDER BY created_at DESC
            LIMIT 1
        ) lv ON true
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
        LIMIT $2 OFFSET $3
    `, subscriberID, opts.Limit, opts.Offset())
	if err != nil {
		return ChannelPage{}, fmt.Errorf("query subscribed channels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row ChannelRow
			lv  nullableVideo
		)
		if err := rows.Scan(
			&row.Profile.ID, &row.Profile.Username, &row.Profile.FullName, &row.Profile.AvatarURL,
			&row.SubscribersCount,
			&lv.ID, &lv.OwnerID, &lv.Title, &lv.Description, &lv.MediaURL, &lv.ThumbnailURL,
			&lv.DurationSeconds, &lv.Views, &lv.IsPublished, &lv.CreatedAt, &lv.UpdatedAt,
		); err != nil {
			return ChannelPage{}, fmt.Errorf("scan subscribed channel: %w", err)
		}
		row.LatestVideo = lv.toVideo()
		page.Channels = append(page.Channels, row)
	}

	if err := rows.Err(); err != nil {
		return ChannelPage{}, fmt.Errorf("iterate subscribed channels: %w", err)
	}

	return page, nil
}

// nullableVideo scans the LEFT JOINed latest-video columns, which are all
// NULL for channels with no published videos.
type nullableVideo struct {
	ID              *string
	OwnerID         *string
	Title           *string
	Description     *string
	MediaURL        *string
	ThumbnailURL    *string
	DurationSeconds *int
	Views           *int64
	IsPublished     *bool
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

func (n nullableVideo) toVideo() *models.Video {
	if n.ID == nil {
		return nil
	}
	return &models.Video{
		ID:              *n.ID,
		OwnerID:         *n.OwnerID,
		Title:           *n.Title,
		Description:     *n.Description,
		MediaURL:        *n.MediaURL,
		ThumbnailURL:    *n.ThumbnailURL,
		DurationSeconds: *n.DurationSeconds,
		Views:           *n.Views,
		IsPublished:     *n.IsPublished,
		CreatedAt:       *n.CreatedAt,
		UpdatedAt:       *n.UpdatedAt,
	}
}

var _ EngagementRepository = (*PostgresEngagementRepository)(nil)
