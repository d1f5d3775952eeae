package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/videotube/backend/internal/models"
)

func TestToggleVideoLike(t *testing.T) {
	videos := newFakeVideoStore()
	videos.videos["v1"] = models.Video{ID: "v1", OwnerID: "owner", IsPublished: true}
	handler := LikeHandler{Engagement: newFakeEngagementStore(), Videos: videos}

	toggle := func() (int, bool) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/v1/like", nil)
		req.SetPathValue("id", "v1")
		req = asViewer(req, "watcher")
		rec := newRecorder()

		handler.ToggleVideo(rec, req)

		var resp likeResponse
		decodeEnvelope(t, rec, &resp)
		return rec.Code, resp.Liked
	}

	if code, liked := toggle(); code != http.StatusOK || !liked {
		t.Fatalf("expected first toggle to like (200/true), got %d/%v", code, liked)
	}
	if code, liked := toggle(); code != http.StatusOK || liked {
		t.Fatalf("expected second toggle to unlike (200/false), got %d/%v", code, liked)
	}
	if code, liked := toggle(); code != http.StatusOK || !liked {
		t.Fatalf("expected third toggle to like again (200/true), got %d/%v", code, liked)
	}
}

func TestToggleVideoLikeHiddenVideo(t *testing.T) {
	videos := newFakeVideoStore()
	videos.videos["v1"] = models.Video{ID: "v1", OwnerID: "owner", IsPublished: false}
	engagement := newFakeEngagementStore()
	handler := LikeHandler{Engagement: engagement, Videos: videos}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/v1/like", nil)
	req.SetPathValue("id", "v1")
	req = asViewer(req, "watcher")
	rec := newRecorder()

	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if len(engagement.likes) != 0 {
		t.Fatalf("expected no like edges, got %v", engagement.likes)
	}
}

func TestToggleCommentLike(t *testing.T) {
	comments := newFakeCommentStore()
	comments.comments["c1"] = models.Comment{ID: "c1", VideoID: "v1", CommentByID: "author"}
	handler := LikeHandler{Engagement: newFakeEngagementStore(), Comments: comments}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/c1/like", nil)
	req.SetPathValue("id", "c1")
	req = asViewer(req, "watcher")
	rec := newRecorder()

	handler.ToggleComment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp likeResponse
	decodeEnvelope(t, rec, &resp)
	if !resp.Liked {
		t.Fatal("expected comment to be liked")
	}
}

func TestToggleTweetLikeUnknownTweet(t *testing.T) {
	handler := LikeHandler{Engagement: newFakeEngagementStore(), Tweets: newFakeTweetStore()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets/missing/like", nil)
	req.SetPathValue("id", "missing")
	req = asViewer(req, "watcher")
	rec := newRecorder()

	handler.ToggleTweet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
