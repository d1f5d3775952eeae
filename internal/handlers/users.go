package handlers

import (
	"fmt"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// UserHandler implements account management and channel profile endpoints.
type UserHandler struct {
	Users   UserStore
	History HistoryStore
	Media   MediaStore
	NowFunc func() time.Time
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Users.FindByID(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "account not found")
		return
	}

	respond(ctx, w, http.StatusOK, user, "current user")
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

// UpdateAccount handles PATCH /api/v1/users/me. Absent fields keep their
// current values.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FullName == nil && req.Email == nil {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	user, err := h.Users.FindByID(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "account not found")
		return
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid email address")
			return
		}
		user.Email = email
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		respondStoreError(ctx, w, err, "account not found")
		return
	}

	respond(ctx, w, http.StatusOK, user, "account updated")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword handles POST /api/v1/users/me/password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.Users.FindByID(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "account not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.FromContext(ctx).Error("hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to change password")
		return
	}

	user.Password = string(hash)
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		respondStoreError(ctx, w, err, "account not found")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "password changed")
}

// UploadAvatar handles POST /api/v1/users/me/avatar. The request body is
// the raw image; Content-Type names its format.
func (h UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "avatars", func(user *models.User, url string) string {
		old := user.AvatarURL
		user.AvatarURL = url
		return old
	})
}

// UploadCover handles POST /api/v1/users/me/cover.
func (h UserHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, "covers", func(user *models.User, url string) string {
		old := user.CoverImageURL
		user.CoverImageURL = url
		return old
	})
}

func (h UserHandler) uploadImage(w http.ResponseWriter, r *http.Request, prefix string, apply func(*models.User, string) string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Media == nil {
		respondError(ctx, w, http.StatusInternalServerError, "media storage unavailable")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(ctx, w, http.StatusBadRequest, "body must be an image")
		return
	}

	user, err := h.Users.FindByID(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "account not found")
		return
	}

	ext := path.Base(contentType)
	name := fmt.Sprintf("%s/%s-%s.%s", prefix, user.ID, uuid.NewString(), ext)
	url, err := h.Media.Save(ctx, name, contentType, r.Body)
	if err != nil {
		logger.Error("store image", "userId", user.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to store image")
		return
	}

	old := apply(&user, url)
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		respondStoreError(ctx, w, err, "account not found")
		return
	}

	// Old objects are removed best effort; a leak is preferable to a
	// failed update.
	if old != "" {
		if err := h.Media.Remove(ctx, old); err != nil {
			logger.Warn("remove previous image", "location", old, "error", err)
		}
	}

	respond(ctx, w, http.StatusOK, user, "image updated")
}

// Channel handles GET /api/v1/channels/{username}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respond(ctx, w, http.StatusOK, profile, "channel profile")
}

// WatchHistory handles GET /api/v1/users/me/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.History.ListForUser(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "history unavailable")
		return
	}
	if entries == nil {
		entries = []repositories.VideoSummary{}
	}

	respond(ctx, w, http.StatusOK, entries, "watch history")
}
