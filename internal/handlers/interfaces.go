package handlers

import (
	"context"
	"io"
	"time"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/notify"
	"github.com/videotube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the auth and
// channel handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	ChannelProfile(ctx context.Context, username, viewerID string) (repositories.ChannelProfile, error)
}

// SessionManager issues, refreshes, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// VideoStore captures persistence and aggregation for videos.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	Detail(ctx context.Context, videoID, viewerID string) (repositories.VideoDetail, error)
	IncrementViews(ctx context.Context, videoID string) error
	Feed(ctx context.Context, filter repositories.VideoFilter, opts repositories.ListOptions) ([]repositories.VideoSummary, error)
	DashboardStats(ctx context.Context, ownerID string) (repositories.DashboardStats, error)
	DashboardVideos(ctx context.Context, ownerID string) ([]repositories.DashboardVideo, error)
}

// EngagementStore captures the like and subscription edge operations.
type EngagementStore interface {
	ToggleLike(ctx context.Context, actorID string, kind models.LikeTarget, targetID string) (bool, error)
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
	LikedVideos(ctx context.Context, viewerID string) ([]repositories.VideoSummary, error)
	Subscribers(ctx context.Context, channelID string, opts repositories.ListOptions) (repositories.SubscriberPage, error)
	SubscribedChannels(ctx context.Context, subscriberID string, opts repositories.ListOptions) (repositories.ChannelPage, error)
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID, viewerID string, opts repositories.ListOptions) ([]repositories.CommentView, error)
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	ListForOwner(ctx context.Context, ownerID, viewerID string, opts repositories.ListOptions) ([]repositories.TweetView, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	Detail(ctx context.Context, playlistID, viewerID string) (repositories.PlaylistDetail, error)
	ListForOwner(ctx context.Context, ownerID, viewerID string) ([]models.Playlist, error)
}

// NotificationStore captures the viewer-facing notification operations.
type NotificationStore interface {
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// HistoryStore records and materializes watch history.
type HistoryStore interface {
	RecordView(ctx context.Context, userID, videoID string, viewedAt time.Time) error
	ListForUser(ctx context.Context, userID string) ([]repositories.VideoSummary, error)
}

// MediaStore persists uploaded media assets.
type MediaStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, location string) error
}

// FanoutQueue accepts publish events for background subscriber fan-out.
type FanoutQueue interface {
	Enqueue(ctx context.Context, event notify.Event) error
}

// Mailer delivers transactional mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
