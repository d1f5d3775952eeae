package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/notify"
	"github.com/videotube/backend/internal/repositories"
)

// VideoHandler implements the video CRUD, feed, and detail endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	History HistoryStore
	Media   MediaStore
	Fanout  FanoutQueue
	NowFunc func() time.Time
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

func parseListOptions(r *http.Request) repositories.ListOptions {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return repositories.ListOptions{Page: page, Limit: limit}.Normalize()
}

// Feed handles GET /api/v1/videos. Only published videos are listed.
func (h VideoHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := repositories.VideoFilter{
		OwnerID:       strings.TrimSpace(q.Get("ownerId")),
		Query:         strings.TrimSpace(q.Get("query")),
		SortField:     q.Get("sortBy"),
		SortDirection: q.Get("sortDirection"),
	}

	videos, err := h.Videos.Feed(ctx, filter, parseListOptions(r))
	if err != nil {
		respondStoreError(ctx, w, err, "feed unavailable")
		return
	}
	if videos == nil {
		videos = []repositories.VideoSummary{}
	}

	respond(ctx, w, http.StatusOK, videos, "video feed")
}

type createVideoRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	MediaURL        string `json:"mediaUrl"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	DurationSeconds int    `json:"durationSeconds"`
	Publish         bool   `json:"publish"`
}

// Create handles POST /api/v1/videos. Media is uploaded first through the
// media endpoint; this call records the metadata.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createVideoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(req.MediaURL) == "" {
		respondError(ctx, w, http.StatusBadRequest, "mediaUrl is required")
		return
	}
	if req.DurationSeconds < 0 {
		respondError(ctx, w, http.StatusBadRequest, "durationSeconds must not be negative")
		return
	}

	now := h.now()
	video := models.Video{
		ID:              uuid.NewString(),
		OwnerID:         viewerID(ctx),
		Title:           req.Title,
		Description:     req.Description,
		MediaURL:        req.MediaURL,
		ThumbnailURL:    req.ThumbnailURL,
		DurationSeconds: req.DurationSeconds,
		IsPublished:     req.Publish,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "owner not found")
		return
	}

	if video.IsPublished {
		h.enqueueFanout(r, video)
	}

	respond(ctx, w, http.StatusCreated, video, "video created")
}

// Detail handles GET /api/v1/videos/{id}. A successful read bumps the view
// counter and, for authenticated viewers, records watch history. Invisible
// videos read as absent.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	videoID := r.PathValue("id")
	viewer := viewerID(ctx)

	detail, err := h.Videos.Detail(ctx, videoID, viewer)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	// Side effects only after a successful visibility-gated read. Neither
	// failure degrades the response.
	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Error("increment views", "videoId", videoID, "error", err)
	} else {
		detail.Views++
	}
	if viewer != "" && h.History != nil {
		if err := h.History.RecordView(ctx, viewer, videoID, h.now()); err != nil {
			logger.Error("record watch history", "videoId", videoID, "userId", viewer, "error", err)
		}
	}

	respond(ctx, w, http.StatusOK, detail, "video detail")
}

type updateVideoRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// Update handles PATCH /api/v1/videos/{id}. Owner only.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	var req updateVideoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondError(ctx, w, http.StatusBadRequest, "title must not be empty")
			return
		}
		video.Title = title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.ThumbnailURL != nil {
		video.ThumbnailURL = *req.ThumbnailURL
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respond(ctx, w, http.StatusOK, video, "video updated")
}

// Delete handles DELETE /api/v1/videos/{id}. Owner only. Stored objects
// are removed best effort after the row is gone.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if h.Media != nil {
		for _, location := range []string{video.MediaURL, video.ThumbnailURL} {
			if location == "" {
				continue
			}
			if err := h.Media.Remove(ctx, location); err != nil {
				logger.Warn("remove stored object", "location", location, "error", err)
			}
		}
	}

	respond(ctx, w, http.StatusOK, nil, "video deleted")
}

// TogglePublish handles PATCH /api/v1/videos/{id}/publish. Owner only.
// Fan-out fires when the video transitions to published.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, ok := h.ownedVideo(w, r)
	if !ok {
		return
	}

	video.IsPublished = !video.IsPublished
	if err := h.Videos.SetPublished(ctx, video.ID, video.IsPublished); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if video.IsPublished {
		h.enqueueFanout(r, video)
	}

	respond(ctx, w, http.StatusOK, video, "publish status updated")
}

// ownedVideo loads the path video and enforces ownership. Videos the
// caller does not own respond 403 when published, 404 otherwise.
func (h VideoHandler) ownedVideo(w http.ResponseWriter, r *http.Request) (models.Video, bool) {
	ctx := r.Context()

	video, err := h.Videos.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return models.Video{}, false
	}

	if video.OwnerID != viewerID(ctx) {
		if video.IsPublished {
			respondError(ctx, w, http.StatusForbidden, "only the owner may modify a video")
		} else {
			respondError(ctx, w, http.StatusNotFound, "video not found")
		}
		return models.Video{}, false
	}

	return video, true
}

// enqueueFanout schedules subscriber notification. Failures are logged;
// the publish response does not depend on fan-out.
func (h VideoHandler) enqueueFanout(r *http.Request, video models.Video) {
	if h.Fanout == nil {
		return
	}
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	owner, err := h.Users.FindByID(ctx, video.OwnerID)
	if err != nil {
		logger.Error("load channel for fan-out", "channelId", video.OwnerID, "error", err)
		return
	}

	event := notify.Event{
		ChannelID:     owner.ID,
		ChannelName:   owner.Username,
		ChannelAvatar: owner.AvatarURL,
		VideoTitle:    video.Title,
	}
	if err := h.Fanout.Enqueue(ctx, event); err != nil {
		logger.Error("enqueue fan-out", "channelId", owner.ID, "error", err)
	}
}
