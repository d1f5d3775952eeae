package repositories

import (
	"context"

	"github.com/videotube/backend/internal/models"
)

// EngagementRepository manages like and subscription edges and the views
// derived from them. Toggles are atomic per edge key: the store's unique
// constraints linearize concurrent toggles, never application-level
// check-then-act.
type EngagementRepository interface {
	// ToggleLike flips the like edge for (actorID, kind, targetID) and
	// reports the edge's state after the operation.
	ToggleLike(ctx context.Context, actorID string, kind models.LikeTarget, targetID string) (bool, error)
	// ToggleSubscription flips the (subscriberID, channelID) edge and
	// reports the edge's state after the operation.
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)

	ListSubscriberIDs(ctx context.Context, channelID string) ([]string, error)
	LikedVideos(ctx context.Context, viewerID string) ([]VideoSummary, error)
	Subscribers(ctx context.Context, channelID string, opts ListOptions) (SubscriberPage, error)
	SubscribedChannels(ctx context.Context, subscriberID string, opts ListOptions) (ChannelPage, error)
}
