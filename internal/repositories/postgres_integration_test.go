package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		// Database-backed tests skip via resetDatabase; pure tests still run.
		fmt.Fprintf(os.Stderr, "cockroach test server unavailable: %v\n", err)
		os.Exit(m.Run())
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateFindAndUpdate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "alice", "alice@example.com")

	dup := models.User{
		ID:        uuid.NewString(),
		Username:  "ALICE",
		Email:     "other@example.com",
		Password:  "hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}

	fetched, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if fetched.ID != user.ID || fetched.Email != user.Email {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}

	if _, err := repo.FindByEmail(ctx, "alice@example.com"); err != nil {
		t.Fatalf("find by email: %v", err)
	}

	updated := fetched
	updated.FullName = "Alice Updated"
	updated.AvatarURL = "media/alice.png"
	updated.UpdatedAt = time.Now().UTC()
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("update user: %v", err)
	}

	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.FullName != "Alice Updated" || fetched.AvatarURL != "media/alice.png" {
		t.Fatalf("expected updated fields to persist, got %+v", fetched)
	}

	missing := updated
	missing.ID = uuid.NewString()
	if err := repo.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}
}

func TestPostgresVideoRepository_FeedVisibility(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	owner := createTestUser(t, userRepo, "owner", "owner@example.com")
	published := createTestVideo(t, videoRepo, owner.ID, "Published", true)
	draft := createTestVideo(t, videoRepo, owner.ID, "Draft", false)

	feed, err := videoRepo.Feed(ctx, VideoFilter{}, ListOptions{}.Normalize())
	if err != nil {
		t.Fatalf("list feed: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != published.ID {
		t.Fatalf("expected only the published video in the feed, got %+v", feed)
	}
	if feed[0].Owner.Username != "owner" {
		t.Fatalf("expected owner projection in feed row, got %+v", feed[0].Owner)
	}

	// Drafts read as absent to everyone but the owner.
	if _, err := videoRepo.Detail(ctx, draft.ID, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for anonymous draft read, got %v", err)
	}
	if _, err := videoRepo.Detail(ctx, draft.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stranger draft read, got %v", err)
	}
	detail, err := videoRepo.Detail(ctx, draft.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner draft read: %v", err)
	}
	if detail.ID != draft.ID {
		t.Fatalf("unexpected detail: %+v", detail)
	}

	if err := videoRepo.IncrementViews(ctx, published.ID); err != nil {
		t.Fatalf("increment views: %v", err)
	}
	detail, err = videoRepo.Detail(ctx, published.ID, "")
	if err != nil {
		t.Fatalf("read published video: %v", err)
	}
	if detail.Views != 1 {
		t.Fatalf("expected 1 view, got %d", detail.Views)
	}
}

func TestPostgresEngagementRepository_ToggleLike(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	repo := NewPostgresEngagementRepository(testPool)

	owner := createTestUser(t, userRepo, "owner", "owner@example.com")
	watcher := createTestUser(t, userRepo, "watcher", "watcher@example.com")
	video := createTestVideo(t, videoRepo, owner.ID, "Published", true)

	liked, err := repo.ToggleLike(ctx, watcher.ID, models.LikeTargetVideo, video.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked {
		t.Fatal("expected first toggle to create the like")
	}

	liked, err = repo.ToggleLike(ctx, watcher.ID, models.LikeTargetVideo, video.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked {
		t.Fatal("expected second toggle to remove the like")
	}

	liked, err = repo.ToggleLike(ctx, watcher.ID, models.LikeTargetVideo, video.ID)
	if err != nil {
		t.Fatalf("third toggle: %v", err)
	}
	if !liked {
		t.Fatal("expected third toggle to restore the like")
	}

	videos, err := repo.LikedVideos(ctx, watcher.ID)
	if err != nil {
		t.Fatalf("list liked videos: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != video.ID {
		t.Fatalf("expected liked video list to hold the toggled video, got %+v", videos)
	}

	detail, err := videoRepo.Detail(ctx, video.ID, watcher.ID)
	if err != nil {
		t.Fatalf("read video detail: %v", err)
	}
	if detail.LikesCount != 1 || !detail.IsLiked {
		t.Fatalf("expected likesCount 1 and isLiked, got %+v", detail)
	}
}

func TestPostgresEngagementRepository_ConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	repo := NewPostgresEngagementRepository(testPool)

	owner := createTestUser(t, userRepo, "owner", "owner@example.com")
	watcher := createTestUser(t, userRepo, "watcher", "watcher@example.com")
	video := createTestVideo(t, videoRepo, owner.ID, "Published", true)

	// Racing toggles on one key must each succeed and leave the edge
	// either present or absent, never duplicated.
	const toggles = 6
	var wg sync.WaitGroup
	errs := make(chan error, 2*toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := repo.ToggleLike(ctx, watcher.ID, models.LikeTargetVideo, video.ID); err != nil {
				errs <- fmt.Errorf("toggle like: %w", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := repo.ToggleSubscription(ctx, watcher.ID, owner.ID); err != nil {
				errs <- fmt.Errorf("toggle subscription: %w", err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	var likeEdges int
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM likes
        WHERE liked_by_id = $1 AND target_kind = 'video' AND target_id = $2
    `, watcher.ID, video.ID).Scan(&likeEdges); err != nil {
		t.Fatalf("count like edges: %v", err)
	}
	if likeEdges > 1 {
		t.Fatalf("expected at most one like edge, got %d", likeEdges)
	}

	var subEdges int
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, watcher.ID, owner.ID).Scan(&subEdges); err != nil {
		t.Fatalf("count subscription edges: %v", err)
	}
	if subEdges > 1 {
		t.Fatalf("expected at most one subscription edge, got %d", subEdges)
	}
}

func TestPostgresEngagementRepository_Subscriptions(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	repo := NewPostgresEngagementRepository(testPool)

	channel := createTestUser(t, userRepo, "channel", "channel@example.com")
	first := createTestUser(t, userRepo, "first", "first@example.com")
	second := createTestUser(t, userRepo, "second", "second@example.com")

	for _, subscriber := range []models.User{first, second} {
		subscribed, err := repo.ToggleSubscription(ctx, subscriber.ID, channel.ID)
		if err != nil {
			t.Fatalf("subscribe %s: %v", subscriber.Username, err)
		}
		if !subscribed {
			t.Fatalf("expected %s to be subscribed", subscriber.Username)
		}
	}

	page, err := repo.Subscribers(ctx, channel.ID, ListOptions{Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list subscribers: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected exact total 2 independent of page size, got %d", page.Total)
	}
	if len(page.Subscribers) != 1 {
		t.Fatalf("expected one row on the first page, got %d", len(page.Subscribers))
	}

	ids, err := repo.ListSubscriberIDs(ctx, channel.ID)
	if err != nil {
		t.Fatalf("list subscriber ids: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 subscriber ids, got %d", len(ids))
	}

	if _, err := repo.ToggleSubscription(ctx, first.ID, channel.ID); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	page, err = repo.Subscribers(ctx, channel.ID, ListOptions{}.Normalize())
	if err != nil {
		t.Fatalf("list subscribers after unsubscribe: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected total 1 after unsubscribe, got %d", page.Total)
	}
}

func TestPostgresHistoryRepository_RecordViewKeepsLatest(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	repo := NewPostgresHistoryRepository(testPool)

	owner := createTestUser(t, userRepo, "owner", "owner@example.com")
	watcher := createTestUser(t, userRepo, "watcher", "watcher@example.com")
	video := createTestVideo(t, videoRepo, owner.ID, "Published", true)

	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	later := first.Add(30 * time.Minute)

	if err := repo.RecordView(ctx, watcher.ID, video.ID, first); err != nil {
		t.Fatalf("record first view: %v", err)
	}
	if err := repo.RecordView(ctx, watcher.ID, video.ID, later); err != nil {
		t.Fatalf("record later view: %v", err)
	}
	// An out-of-order replay must not move the timestamp backwards.
	if err := repo.RecordView(ctx, watcher.ID, video.ID, first); err != nil {
		t.Fatalf("record stale view: %v", err)
	}

	entries, err := repo.ListForUser(ctx, watcher.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single deduplicated history entry, got %d", len(entries))
	}
	if entries[0].ID != video.ID {
		t.Fatalf("unexpected history entry: %+v", entries[0])
	}

	var viewedAt time.Time
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()
	row := conn.QueryRow(ctx, `SELECT viewed_at FROM watch_history WHERE user_id = $1 AND video_id = $2`, watcher.ID, video.ID)
	if err := row.Scan(&viewedAt); err != nil {
		t.Fatalf("read viewed_at: %v", err)
	}
	if !timesClose(viewedAt.UTC(), later, time.Millisecond) {
		t.Fatalf("expected viewed_at %v, got %v", later, viewedAt.UTC())
	}
}

func TestPostgresNotificationRepository_ExpiryAndReadState(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	repo := NewPostgresNotificationRepository(testPool)

	user := createTestUser(t, userRepo, "watcher", "watcher@example.com")
	other := createTestUser(t, userRepo, "other", "other@example.com")

	now := time.Now().UTC()
	live := models.Notification{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		VideoTitle:  "Fresh upload",
		ChannelName: "channel",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}
	expired := models.Notification{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		VideoTitle:  "Old upload",
		ChannelName: "channel",
		CreatedAt:   now.Add(-48 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	}

	for _, n := range []models.Notification{live, expired} {
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("create notification %s: %v", n.ID, err)
		}
	}

	listed, err := repo.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != live.ID {
		t.Fatalf("expected only the live notification, got %+v", listed)
	}

	// Another user must not be able to mark the notification read.
	if err := repo.MarkRead(ctx, other.ID, live.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign mark-read, got %v", err)
	}
	if err := repo.MarkRead(ctx, user.ID, live.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	listed, err = repo.ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list notifications after mark-read: %v", err)
	}
	if !listed[0].IsRead {
		t.Fatal("expected notification to be read")
	}

	purged, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged notification, got %d", purged)
	}
}

func TestPostgresVideoRepository_DashboardStats(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	engagement := NewPostgresEngagementRepository(testPool)

	owner := createTestUser(t, userRepo, "owner", "owner@example.com")
	watcher := createTestUser(t, userRepo, "watcher", "watcher@example.com")

	// A channel with no rows reports zeroes, not an error.
	stats, err := videoRepo.DashboardStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("stats for empty channel: %v", err)
	}
	if stats != (DashboardStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}

	published := createTestVideo(t, videoRepo, owner.ID, "Published", true)
	createTestVideo(t, videoRepo, owner.ID, "Draft", false)

	if err := videoRepo.IncrementViews(ctx, published.ID); err != nil {
		t.Fatalf("increment views: %v", err)
	}
	if _, err := engagement.ToggleLike(ctx, watcher.ID, models.LikeTargetVideo, published.ID); err != nil {
		t.Fatalf("like video: %v", err)
	}
	if _, err := engagement.ToggleSubscription(ctx, watcher.ID, owner.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	stats, err = videoRepo.DashboardStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := DashboardStats{TotalSubscribers: 1, TotalVideos: 2, TotalViews: 1, TotalLikes: 1}
	if stats != want {
		t.Fatalf("expected %+v, got %+v", want, stats)
	}
}

func TestPostgresPlaylistRepository_MembershipAndDetail(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	repo := NewPostgresPlaylistRepository(testPool)

	owner := createTestUser(t, userRepo, "owner", "owner@example.com")
	published := createTestVideo(t, videoRepo, owner.ID, "Published", true)
	draft := createTestVideo(t, videoRepo, owner.ID, "Draft", false)

	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        "Favourites",
		IsPublished: true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	dup := playlist
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate playlist name, got %v", err)
	}

	for _, videoID := range []string{published.ID, draft.ID} {
		if err := repo.AddVideo(ctx, playlist.ID, videoID); err != nil {
			t.Fatalf("add video %s: %v", videoID, err)
		}
	}
	// Re-adding is a no-op, not an error.
	if err := repo.AddVideo(ctx, playlist.ID, published.ID); err != nil {
		t.Fatalf("re-add video: %v", err)
	}

	// Anonymous readers see the playlist but not the draft member.
	detail, err := repo.Detail(ctx, playlist.ID, "")
	if err != nil {
		t.Fatalf("anonymous detail: %v", err)
	}
	if len(detail.Videos) != 1 || detail.Videos[0].ID != published.ID {
		t.Fatalf("expected only the published member, got %+v", detail.Videos)
	}

	detail, err = repo.Detail(ctx, playlist.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner detail: %v", err)
	}
	if len(detail.Videos) != 2 {
		t.Fatalf("expected both members for the owner, got %d", len(detail.Videos))
	}
	if detail.Videos[0].ID != published.ID || detail.Videos[1].ID != draft.ID {
		t.Fatalf("expected insertion order, got %+v", detail.Videos)
	}

	if err := repo.RemoveVideo(ctx, playlist.ID, draft.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	detail, err = repo.Detail(ctx, playlist.ID, owner.ID)
	if err != nil {
		t.Fatalf("detail after removal: %v", err)
	}
	if len(detail.Videos) != 1 {
		t.Fatalf("expected one member after removal, got %d", len(detail.Videos))
	}
}

func TestPostgresSessionStore_SaveFindAndDelete(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, userRepo, "owner", "owner@example.com")

	store := NewPostgresSessionStore(testPool)
	now := time.Now().UTC().Truncate(time.Millisecond)
	session := auth.Session{
		RefreshToken:     uuid.NewString(),
		AccessToken:      uuid.NewString(),
		UserID:           user.ID,
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshExpiresAt: now.Add(24 * time.Hour),
	}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}

	loaded, err := store.FindByRefresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("find by refresh: %v", err)
	}
	if loaded.UserID != user.ID || loaded.AccessToken != session.AccessToken {
		t.Fatalf("unexpected session loaded: %+v", loaded)
	}

	loaded, err = store.FindByAccess(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("find by access: %v", err)
	}
	if loaded.RefreshToken != session.RefreshToken {
		t.Fatalf("unexpected session loaded by access token: %+v", loaded)
	}

	if err := store.Delete(ctx, session.RefreshToken); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := store.FindByRefresh(ctx, session.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, session.RefreshToken); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound deleting twice, got %v", err)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("cockroach test server unavailable")
	}
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `TRUNCATE TABLE notifications, watch_history, playlist_videos,
        playlists, tweets, comments, likes, subscriptions, sessions, videos, users CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username, email string) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  "password-hash",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user %s: %v", username, err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerID, title string, published bool) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		MediaURL:    "media/" + uuid.NewString() + ".mp4",
		IsPublished: published,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video %s: %v", title, err)
	}
	return video
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
