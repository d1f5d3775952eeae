package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// PlaylistRepository defines data access for playlists and their videos.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error

	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error

	// Detail returns the visibility-gated playlist with its videos, each
	// filtered through the same visibility predicate for the viewer.
	Detail(ctx context.Context, playlistID, viewerID string) (PlaylistDetail, error)
	ListForOwner(ctx context.Context, ownerID, viewerID string) ([]models.Playlist, error)
}
