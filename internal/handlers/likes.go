package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// LikeHandler implements the like toggle and liked-video endpoints.
type LikeHandler struct {
	Engagement EngagementStore
	Videos     VideoStore
	Comments   CommentStore
	Tweets     TweetStore
}

type likeResponse struct {
	Liked bool `json:"liked"`
}

// ToggleVideo handles POST /api/v1/videos/{id}/like. Invisible videos
// read as absent, so they cannot be liked either.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("id")

	if _, err := h.Videos.Detail(ctx, videoID, viewerID(ctx)); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	h.toggle(w, r, models.LikeTargetVideo, videoID)
}

// ToggleComment handles POST /api/v1/comments/{id}/like.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID := r.PathValue("id")

	if _, err := h.Comments.FindByID(ctx, commentID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	h.toggle(w, r, models.LikeTargetComment, commentID)
}

// ToggleTweet handles POST /api/v1/tweets/{id}/like.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID := r.PathValue("id")

	if _, err := h.Tweets.FindByID(ctx, tweetID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	h.toggle(w, r, models.LikeTargetTweet, tweetID)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeTarget, targetID string) {
	ctx := r.Context()

	liked, err := h.Engagement.ToggleLike(ctx, viewerID(ctx), kind, targetID)
	if err != nil {
		respondStoreError(ctx, w, err, "target not found")
		return
	}

	message := "like removed"
	if liked {
		message = "like added"
	}
	respond(ctx, w, http.StatusOK, likeResponse{Liked: liked}, message)
}

// LikedVideos handles GET /api/v1/users/me/liked-videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videos, err := h.Engagement.LikedVideos(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "liked videos unavailable")
		return
	}
	if videos == nil {
		videos = []repositories.VideoSummary{}
	}

	respond(ctx, w, http.StatusOK, videos, "liked videos")
}
