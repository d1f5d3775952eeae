package repositories

import (
	"context"
	"time"
)

// HistoryRepository records and materializes per-user watch history.
// Storage keeps at most one row per (user, video), updated in place on
// each view, so reads are already deduplicated and bounded.
type HistoryRepository interface {
	RecordView(ctx context.Context, userID, videoID string, viewedAt time.Time) error
	// ListForUser returns the user's history ordered by most recent view,
	// joining each video's current owner projection. Entries whose video
	// no longer resolves are silently dropped.
	ListForUser(ctx context.Context, userID string) ([]VideoSummary, error)
}
