package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// CommentHandler implements comment endpoints for videos.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

// List handles GET /api/v1/videos/{id}/comments. The video must be
// visible to the viewer.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("id")
	viewer := viewerID(ctx)

	if _, err := h.Videos.Detail(ctx, videoID, viewer); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID, viewer, parseListOptions(r))
	if err != nil {
		respondStoreError(ctx, w, err, "comments unavailable")
		return
	}
	if comments == nil {
		comments = []repositories.CommentView{}
	}

	respond(ctx, w, http.StatusOK, comments, "comments")
}

type commentRequest struct {
	Content string `json:"content"`
}

// Add handles POST /api/v1/videos/{id}/comments.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("id")
	viewer := viewerID(ctx)

	var req commentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	if _, err := h.Videos.Detail(ctx, videoID, viewer); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:          uuid.NewString(),
		VideoID:     videoID,
		CommentByID: viewer,
		Content:     req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respond(ctx, w, http.StatusCreated, comment, "comment added")
}

// Update handles PATCH /api/v1/comments/{id}. Author only.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.ownedComment(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	if err := h.Comments.UpdateContent(ctx, comment.ID, req.Content); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "comment updated")
}

// Delete handles DELETE /api/v1/comments/{id}. Author only.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, ok := h.ownedComment(w, r)
	if !ok {
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "comment deleted")
}

func (h CommentHandler) ownedComment(w http.ResponseWriter, r *http.Request) (models.Comment, bool) {
	ctx := r.Context()

	comment, err := h.Comments.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return models.Comment{}, false
	}

	if comment.CommentByID != viewerID(ctx) {
		respondError(ctx, w, http.StatusForbidden, "only the author may modify a comment")
		return models.Comment{}, false
	}

	return comment, true
}
