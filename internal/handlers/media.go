package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/logging"
)

// MediaHandler implements the raw upload endpoint.
type MediaHandler struct {
	Media MediaStore
}

var allowedMediaPrefixes = []string{"video/", "image/"}

// Upload handles POST /api/v1/media. The body is streamed to the object
// store and a stable public URL is returned for later metadata calls.
func (h MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Media == nil {
		respondError(ctx, w, http.StatusInternalServerError, "media storage unavailable")
		return
	}

	contentType := r.Header.Get("Content-Type")
	allowed := false
	for _, prefix := range allowedMediaPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		respondError(ctx, w, http.StatusBadRequest, "body must be a video or image")
		return
	}

	ext := path.Base(contentType)
	name := fmt.Sprintf("media/%s/%s.%s", viewerID(ctx), uuid.NewString(), ext)
	url, err := h.Media.Save(ctx, name, contentType, r.Body)
	if err != nil {
		logging.FromContext(ctx).Error("store media", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to store media")
		return
	}

	respond(ctx, w, http.StatusCreated, map[string]string{"url": url}, "media stored")
}
