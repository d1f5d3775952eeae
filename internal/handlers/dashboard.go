package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/repositories"
)

// DashboardHandler implements the owner-facing channel dashboard.
type DashboardHandler struct {
	Videos VideoStore
}

// Stats handles GET /api/v1/dashboard/stats. All totals are zero for a
// channel with no activity.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.Videos.DashboardStats(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "stats unavailable")
		return
	}

	respond(ctx, w, http.StatusOK, stats, "channel stats")
}

// dashboardVideo decorates the management row with a decomposed creation
// date for direct rendering.
type dashboardVideo struct {
	repositories.DashboardVideo
	CreatedAtParts createdAtParts `json:"createdAtParts"`
}

type createdAtParts struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// VideoList handles GET /api/v1/dashboard/videos. Every owned video is
// listed, published or not, newest first.
func (h DashboardHandler) VideoList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.Videos.DashboardVideos(ctx, viewerID(ctx))
	if err != nil {
		respondStoreError(ctx, w, err, "videos unavailable")
		return
	}

	videos := make([]dashboardVideo, 0, len(rows))
	for _, row := range rows {
		created := row.CreatedAt
		videos = append(videos, dashboardVideo{
			DashboardVideo: row,
			CreatedAtParts: createdAtParts{
				Year:   created.Year(),
				Month:  int(created.Month()),
				Day:    created.Day(),
				Hour:   created.Hour(),
				Minute: created.Minute(),
			},
		})
	}

	respond(ctx, w, http.StatusOK, videos, "channel videos")
}
