package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/models"
)

// PlaylistHandler implements the playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Users     UserStore
	NowFunc   func() time.Time
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Publish     bool   `json:"publish"`
}

// Create handles POST /api/v1/playlists. Names are unique per owner.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req playlistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     viewerID(ctx),
		Name:        req.Name,
		Description: req.Description,
		IsPublished: req.Publish,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "owner not found")
		return
	}

	respond(ctx, w, http.StatusCreated, playlist, "playlist created")
}

// Detail handles GET /api/v1/playlists/{id}. Invisible playlists read as
// absent; member videos are filtered by the viewer's visibility.
func (h PlaylistHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	detail, err := h.Playlists.Detail(ctx, r.PathValue("id"), viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respond(ctx, w, http.StatusOK, detail, "playlist detail")
}

// ListForUser handles GET /api/v1/users/{id}/playlists.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("id")

	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	playlists, err := h.Playlists.ListForOwner(ctx, userID, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "playlists unavailable")
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	respond(ctx, w, http.StatusOK, playlists, "playlists")
}

type updatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Publish     *bool   `json:"publish"`
}

// Update handles PATCH /api/v1/playlists/{id}. Owner only.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req updatePlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(ctx, w, http.StatusBadRequest, "name must not be empty")
			return
		}
		playlist.Name = name
	}
	if req.Description != nil {
		playlist.Description = *req.Description
	}
	if req.Publish != nil {
		playlist.IsPublished = *req.Publish
	}
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respond(ctx, w, http.StatusOK, playlist, "playlist updated")
}

// Delete handles DELETE /api/v1/playlists/{id}. Owner only.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "playlist deleted")
}

// AddVideo handles POST /api/v1/playlists/{id}/videos/{videoId}. Owner
// only; the video must be visible to the owner.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.Detail(ctx, videoID, viewerID(ctx)); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondStoreError(ctx, w, err, "playlist or video not found")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo handles DELETE /api/v1/playlists/{id}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, r.PathValue("videoId")); err != nil {
		respondStoreError(ctx, w, err, "video not in playlist")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "video removed from playlist")
}

// ownedPlaylist loads the path playlist and enforces ownership. Playlists
// the caller does not own respond 403 when published, 404 otherwise.
func (h PlaylistHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request) (models.Playlist, bool) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return models.Playlist{}, false
	}

	if playlist.OwnerID != viewerID(ctx) {
		if playlist.IsPublished {
			respondError(ctx, w, http.StatusForbidden, "only the owner may modify a playlist")
		} else {
			respondError(ctx, w, http.StatusNotFound, "playlist not found")
		}
		return models.Playlist{}, false
	}

	return playlist, true
}
