package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// TweetRepository defines data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ListForOwner(ctx context.Context, ownerID, viewerID string, opts ListOptions) ([]TweetView, error)
}
