package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence and
// aggregation for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, media_url, thumbnail_url,
                            duration_seconds, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.MediaURL,
		video.ThumbnailURL, video.DurationSeconds, video.Views, video.IsPublished,
		video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

const videoColumns = `id, owner_id, title, description, media_url, thumbnail_url, duration_seconds, views, is_published, created_at, updated_at`

func scanVideo(row pgx.Row) (models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.MediaURL, &v.ThumbnailURL,
		&v.DurationSeconds, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

// FindByID fetches a video by id without applying visibility rules.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// Update modifies a video's mutable fields.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, updated_at = $5
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.ThumbnailURL, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPublished flips a video's publish flag.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos SET is_published = $2, updated_at = NOW() WHERE id = $1
    `, id, published)
	if err != nil {
		return fmt.Errorf("update video publish status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video together with its like edges and the like edges
// of its comments. Comments, playlist references, and history rows cascade
// through foreign keys; likes cannot (polymorphic target), so they are
// removed in the same transaction.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin video delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
        DELETE FROM likes
        WHERE target_kind = 'comment'
          AND target_id IN (SELECT id FROM comments WHERE video_id = $1)
    `, id); err != nil {
		return fmt.Errorf("delete comment likes: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        DELETE FROM likes WHERE target_kind = 'video' AND target_id = $1
    `, id); err != nil {
		return fmt.Errorf("delete video likes: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit video delete: %w", err)
	}

	return nil
}

// Detail returns the visibility-gated single-video view joining the owner
// card and the viewer's engagement flags. Absent and invisible videos are
// indistinguishable: both yield ErrNotFound.
func (r *PostgresVideoRepository) Detail(ctx context.Context, videoID, viewerID string) (VideoDetail, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return VideoDetail{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.media_url, v.thumbnail_url,
               v.duration_seconds, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS owner_subscribers,
               EXISTS (
                   SELECT 1 FROM subscriptions s
                   WHERE s.channel_id = u.id AND s.subscriber_id = $2
               ) AS is_subscribed,
               (SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'video' AND l.target_id = v.id) AS likes_count,
               EXISTS (
                   SELECT 1 FROM likes l
                   WHERE l.target_kind = 'video' AND l.target_id = v.id AND l.liked_by_id = $2
               ) AS is_liked
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1 AND (v.is_published OR v.owner_id = $2)
    `, videoID, viewerID)

	var d VideoDetail
	err = row.Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.Description, &d.MediaURL, &d.ThumbnailURL,
		&d.DurationSeconds, &d.Views, &d.IsPublished, &d.CreatedAt, &d.UpdatedAt,
		&d.Owner.ID, &d.Owner.Username, &d.Owner.FullName, &d.Owner.AvatarURL,
		&d.Owner.SubscribersCount, &d.Owner.IsSubscribed,
		&d.LikesCount, &d.IsLiked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VideoDetail{}, ErrNotFound
		}
		return VideoDetail{}, fmt.Errorf("select video detail: %w", err)
	}

	return d, nil
}

// IncrementViews bumps the view counter. The increment is a single atomic
// UPDATE so concurrent views from any number of callers each count.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, videoID)
	if err != nil {
		return fmt.Errorf("increment video views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Feed returns the public video feed: published rows only, optionally
// filtered by owner and case-insensitive title match, sorted by the
// whitelisted sort clause and paginated.
func (r *PostgresVideoRepository) Feed(ctx context.Context, filter VideoFilter, opts ListOptions) ([]VideoSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	opts = opts.Normalize()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.media_url, v.thumbnail_url,
               v.duration_seconds, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.is_published
          AND ($1 = '' OR v.owner_id = $1)
          AND ($2 = '' OR v.title ILIKE '%' || $2 || '%')
        ORDER BY `+filter.OrderClause()+`
        LIMIT $3 OFFSET $4
    `, filter.OwnerID, filter.Query, opts.Limit, opts.Offset())
	if err != nil {
		return nil, fmt.Errorf("query video feed: %w", err)
	}
	defer rows.Close()

	var feed []VideoSummary
	for rows.Next() {
		var s VideoSummary
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.Title, &s.Description, &s.MediaURL, &s.ThumbnailURL,
			&s.DurationSeconds, &s.Views, &s.IsPublished, &s.CreatedAt, &s.UpdatedAt,
			&s.Owner.ID, &s.Owner.Username, &s.Owner.FullName, &s.Owner.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan feed row: %w", err)
		}
		feed = append(feed, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video feed: %w", err)
	}

	return feed, nil
}

// DashboardStats aggregates a channel's totals in one pass over its
// videos. Every field is zero-valued when the channel has no rows.
func (r *PostgresVideoRepository) DashboardStats(ctx context.Context, ownerID string) (DashboardStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = $1) AS total_subscribers,
               COUNT(v.id) AS total_videos,
               COALESCE(SUM(v.views), 0) AS total_views,
               COALESCE(SUM((
                   SELECT COUNT(*) FROM likes l
                   WHERE l.target_kind = 'video' AND l.target_id = v.id
               )), 0) AS total_likes
        FROM videos v
        WHERE v.owner_id = $1
    `, ownerID)

	var stats DashboardStats
	if err := row.Scan(&stats.TotalSubscribers, &stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes); err != nil {
		return DashboardStats{}, fmt.Errorf("select dashboard stats: %w", err)
	}

	return stats, nil
}

// DashboardVideos lists all of a channel's videos, published or not, with
// per-video like counts, newest first. The owner's own management view
// deliberately skips the visibility filter.
func (r *PostgresVideoRepository) DashboardVideos(ctx context.Context, ownerID string) ([]DashboardVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`,
               (SELECT COUNT(*) FROM likes l WHERE l.target_kind = 'video' AND l.target_id = videos.id) AS likes_count
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query dashboard videos: %w", err)
	}
	defer rows.Close()

	var list []DashboardVideo
	for rows.Next() {
		var dv DashboardVideo
		if err := rows.Scan(
			&dv.ID, &dv.OwnerID, &dv.Title, &dv.Description, &dv.MediaURL, &dv.ThumbnailURL,
			&dv.DurationSeconds, &dv.Views, &dv.IsPublished, &dv.CreatedAt, &dv.UpdatedAt,
			&dv.LikesCount,
		); err != nil {
			return nil, fmt.Errorf("scan dashboard video: %w", err)
		}
		list = append(list, dv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dashboard videos: %w", err)
	}

	return list, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
