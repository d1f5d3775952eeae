package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// VideoRepository exposes data access and aggregation for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error

	// Detail returns the visibility-gated single-video view. Invisible or
	// absent videos yield ErrNotFound so existence does not leak.
	Detail(ctx context.Context, videoID, viewerID string) (VideoDetail, error)
	// IncrementViews bumps the monotonic view counter by one.
	IncrementViews(ctx context.Context, videoID string) error

	Feed(ctx context.Context, filter VideoFilter, opts ListOptions) ([]VideoSummary, error)
	DashboardStats(ctx context.Context, ownerID string) (DashboardStats, error)
	DashboardVideos(ctx context.Context, ownerID string) ([]DashboardVideo, error)
}
