package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

func TestDashboardStatsZeroDefaults(t *testing.T) {
	handler := DashboardHandler{Videos: newFakeVideoStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	req = asViewer(req, "owner")
	rec := newRecorder()

	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var stats repositories.DashboardStats
	decodeEnvelope(t, rec, &stats)
	if stats != (repositories.DashboardStats{}) {
		t.Fatalf("expected zero stats for an empty channel, got %+v", stats)
	}
}

func TestDashboardStats(t *testing.T) {
	videos := newFakeVideoStore()
	videos.stats = repositories.DashboardStats{
		TotalSubscribers: 3,
		TotalVideos:      2,
		TotalViews:       150,
		TotalLikes:       7,
	}
	handler := DashboardHandler{Videos: videos}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	req = asViewer(req, "owner")
	rec := newRecorder()

	handler.Stats(rec, req)

	var stats repositories.DashboardStats
	decodeEnvelope(t, rec, &stats)
	if stats != videos.stats {
		t.Fatalf("expected %+v, got %+v", videos.stats, stats)
	}
}

func TestDashboardVideoListIncludesDrafts(t *testing.T) {
	created := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	videos := newFakeVideoStore()
	videos.videos["v1"] = models.Video{ID: "v1", OwnerID: "owner", Title: "Draft", IsPublished: false, CreatedAt: created}
	handler := DashboardHandler{Videos: videos}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/videos", nil)
	req = asViewer(req, "owner")
	rec := newRecorder()

	handler.VideoList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var rows []struct {
		ID             string         `json:"id"`
		IsPublished    bool           `json:"isPublished"`
		CreatedAtParts createdAtParts `json:"createdAtParts"`
	}
	decodeEnvelope(t, rec, &rows)

	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].ID != "v1" || rows[0].IsPublished {
		t.Fatalf("expected unpublished v1, got %+v", rows[0])
	}
	want := createdAtParts{Year: 2024, Month: 3, Day: 15, Hour: 9, Minute: 30}
	if rows[0].CreatedAtParts != want {
		t.Fatalf("expected %+v, got %+v", want, rows[0].CreatedAtParts)
	}
}

func TestDashboardVideoListEmpty(t *testing.T) {
	handler := DashboardHandler{Videos: newFakeVideoStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/videos", nil)
	req = asViewer(req, "owner")
	rec := newRecorder()

	handler.VideoList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var rows []struct{}
	decodeEnvelope(t, rec, &rows)
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
