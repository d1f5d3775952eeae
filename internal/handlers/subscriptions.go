package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/repositories"
)

// SubscriptionHandler implements the channel subscription endpoints.
type SubscriptionHandler struct {
	Engagement EngagementStore
	Users      UserStore
}

type subscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}

// Toggle handles POST /api/v1/channels/{id}/subscribe. Subscribing to
// yourself is rejected.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channelID := r.PathValue("id")
	viewer := viewerID(ctx)

	if channelID == viewer {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	subscribed, err := h.Engagement.ToggleSubscription(ctx, viewer, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	message := "unsubscribed"
	if subscribed {
		message = "subscribed"
	}
	respond(ctx, w, http.StatusOK, subscriptionResponse{Subscribed: subscribed}, message)
}

// Subscribers handles GET /api/v1/channels/{id}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channelID := r.PathValue("id")

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	page, err := h.Engagement.Subscribers(ctx, channelID, parseListOptions(r))
	if err != nil {
		respondStoreError(ctx, w, err, "subscribers unavailable")
		return
	}
	if page.Subscribers == nil {
		page.Subscribers = []repositories.SubscriberRow{}
	}

	respond(ctx, w, http.StatusOK, page, "subscribers")
}

// Channels handles GET /api/v1/users/{id}/channels, the channels the user
// subscribes to.
func (h SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("id")

	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	page, err := h.Engagement.SubscribedChannels(ctx, userID, parseListOptions(r))
	if err != nil {
		respondStoreError(ctx, w, err, "subscriptions unavailable")
		return
	}
	if page.Channels == nil {
		page.Channels = []repositories.ChannelRow{}
	}

	respond(ctx, w, http.StatusOK, page, "subscribed channels")
}
