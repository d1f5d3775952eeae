package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/models"
)

// NotificationHandler implements the viewer-facing notification endpoints.
type NotificationHandler struct {
	Notifications NotificationStore
}

// List handles GET /api/v1/notifications. Expired rows never appear.
func (h NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notifications, err := h.Notifications.ListForUser(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "notifications unavailable")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	respond(ctx, w, http.StatusOK, notifications, "notifications")
}

// MarkRead handles PATCH /api/v1/notifications/{id}/read.
func (h NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Notifications.MarkRead(ctx, viewerID(ctx), r.PathValue("id")); err != nil {
		respondStoreError(ctx, w, err, "notification not found")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "notification marked read")
}

// MarkAllRead handles POST /api/v1/notifications/read-all.
func (h NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Notifications.MarkAllRead(ctx, viewerID(ctx)); err != nil {
		respondStoreError(ctx, w, err, "notifications unavailable")
		return
	}

	respond(ctx, w, http.StatusOK, nil, "all notifications marked read")
}
