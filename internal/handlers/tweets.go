package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Users   UserStore
	NowFunc func() time.Time
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tweetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   viewerID(ctx),
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "owner not found")
		return
	}

	respond(ctx, w, http.StatusCreated, tweet, "tweet created")
}

// ListForChannel handles GET /api/v1/channels/{username}/tweets.
func (h TweetHandler) ListForChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := h.Users.FindByUsername(ctx, r.PathValue("username"))
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	tweets, err := h.Tweets.ListForOwner(ctx, owner.ID, viewerID(ctx), parseListOptions(r))
	if err != nil {
		respondStoreError(ctx, w, err, "tweets unavailable")
		return
	}
	if tweets == nil {
		tweets = []repositories.TweetView{}
	}

	respond(ctx, w, http.StatusOK, tweets, "tweets")
}

// Update handles PATCH /api/v1/tweets/{id}. Owner only.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, ok := h.ownedTweet(w, r)
	if !ok {
		return
	}

	var req tweetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	if err := h.Tweets.UpdateContent(ctx, tweet.ID, req.Content); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "tweet updated")
}

// Delete handles DELETE /api/v1/tweets/{id}. Owner only.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, ok := h.ownedTweet(w, r)
	if !ok {
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "tweet deleted")
}

func (h TweetHandler) ownedTweet(w http.ResponseWriter, r *http.Request) (models.Tweet, bool) {
	ctx := r.Context()

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return models.Tweet{}, false
	}

	if tweet.OwnerID != viewerID(ctx) {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify a tweet")
		return models.Tweet{}, false
	}

	return tweet, true
}
