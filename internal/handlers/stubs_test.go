package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/notify"
	"github.com/videotube/backend/internal/repositories"
)

// fakeVideoStore implements VideoStore over an in-memory map with
// visibility semantics matching the SQL implementations.
type fakeVideoStore struct {
	videos    map[string]models.Video
	stats     repositories.DashboardStats
	statsErr  error
	feedCalls []repositories.ListOptions
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video)}
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.IsPublished = published
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeVideoStore) Detail(_ context.Context, videoID, viewerID string) (repositories.VideoDetail, error) {
	video, ok := s.videos[videoID]
	if !ok || !models.VideoVisibleTo(video, viewerID) {
		return repositories.VideoDetail{}, repositories.ErrNotFound
	}
	return repositories.VideoDetail{Video: video}, nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, videoID string) error {
	video, ok := s.videos[videoID]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	s.videos[videoID] = video
	return nil
}

func (s *fakeVideoStore) Feed(_ context.Context, _ repositories.VideoFilter, opts repositories.ListOptions) ([]repositories.VideoSummary, error) {
	s.feedCalls = append(s.feedCalls, opts)
	var out []repositories.VideoSummary
	for _, video := range s.videos {
		if video.IsPublished {
			out = append(out, repositories.VideoSummary{Video: video})
		}
	}
	return out, nil
}

func (s *fakeVideoStore) DashboardStats(context.Context, string) (repositories.DashboardStats, error) {
	return s.stats, s.statsErr
}

func (s *fakeVideoStore) DashboardVideos(_ context.Context, ownerID string) ([]repositories.DashboardVideo, error) {
	var out []repositories.DashboardVideo
	for _, video := range s.videos {
		if video.OwnerID == ownerID {
			out = append(out, repositories.DashboardVideo{Video: video})
		}
	}
	return out, nil
}

// fakeUserStore implements UserStore over a map keyed by user id.
type fakeUserStore struct {
	users   map[string]models.User
	profile repositories.ChannelProfile
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) Update(_ context.Context, user models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) ChannelProfile(_ context.Context, username, _ string) (repositories.ChannelProfile, error) {
	if _, err := s.FindByUsername(context.Background(), username); err != nil {
		return repositories.ChannelProfile{}, err
	}
	return s.profile, nil
}

// fakeEngagementStore tracks like and subscription edges in maps.
type fakeEngagementStore struct {
	likes         map[string]bool
	subscriptions map[string]bool
}

func newFakeEngagementStore() *fakeEngagementStore {
	return &fakeEngagementStore{likes: make(map[string]bool), subscriptions: make(map[string]bool)}
}

func likeKey(actorID string, kind models.LikeTarget, targetID string) string {
	return actorID + "|" + string(kind) + "|" + targetID
}

func (s *fakeEngagementStore) ToggleLike(_ context.Context, actorID string, kind models.LikeTarget, targetID string) (bool, error) {
	key := likeKey(actorID, kind, targetID)
	s.likes[key] = !s.likes[key]
	return s.likes[key], nil
}

func (s *fakeEngagementStore) ToggleSubscription(_ context.Context, subscriberID, channelID string) (bool, error) {
	key := subscriberID + "|" + channelID
	s.subscriptions[key] = !s.subscriptions[key]
	return s.subscriptions[key], nil
}

func (s *fakeEngagementStore) LikedVideos(context.Context, string) ([]repositories.VideoSummary, error) {
	return nil, nil
}

func (s *fakeEngagementStore) Subscribers(context.Context, string, repositories.ListOptions) (repositories.SubscriberPage, error) {
	return repositories.SubscriberPage{}, nil
}

func (s *fakeEngagementStore) SubscribedChannels(context.Context, string, repositories.ListOptions) (repositories.ChannelPage, error) {
	return repositories.ChannelPage{}, nil
}

// fakeHistoryStore records RecordView calls.
type fakeHistoryStore struct {
	recorded []models.WatchEntry
}

func (s *fakeHistoryStore) RecordView(_ context.Context, userID, videoID string, viewedAt time.Time) error {
	s.recorded = append(s.recorded, models.WatchEntry{UserID: userID, VideoID: videoID, ViewedAt: viewedAt})
	return nil
}

func (s *fakeHistoryStore) ListForUser(context.Context, string) ([]repositories.VideoSummary, error) {
	return nil, nil
}

// fakeCommentStore implements CommentStore over a map.
type fakeCommentStore struct {
	comments  map[string]models.Comment
	listCalls []repositories.ListOptions
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment)}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) UpdateContent(_ context.Context, id, content string) error {
	comment, ok := s.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, videoID, _ string, opts repositories.ListOptions) ([]repositories.CommentView, error) {
	s.listCalls = append(s.listCalls, opts)
	var out []repositories.CommentView
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			out = append(out, repositories.CommentView{Comment: comment})
		}
	}
	return out, nil
}

// fakeTweetStore implements TweetStore over a map.
type fakeTweetStore struct {
	tweets map[string]models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) UpdateContent(_ context.Context, id, content string) error {
	tweet, ok := s.tweets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

func (s *fakeTweetStore) ListForOwner(_ context.Context, ownerID, _ string, _ repositories.ListOptions) ([]repositories.TweetView, error) {
	var out []repositories.TweetView
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, repositories.TweetView{Tweet: tweet})
		}
	}
	return out, nil
}

// fakeSessionManager issues deterministic tokens.
type fakeSessionManager struct {
	issued     int
	refreshErr error
	revoked    []string
}

func (m *fakeSessionManager) Issue(_ context.Context, userID string) (models.SessionTokens, error) {
	m.issued++
	return models.SessionTokens{
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
	}, nil
}

func (m *fakeSessionManager) Refresh(_ context.Context, _ string) (models.SessionTokens, error) {
	if m.refreshErr != nil {
		return models.SessionTokens{}, m.refreshErr
	}
	return models.SessionTokens{AccessToken: "access-rotated", RefreshToken: "refresh-rotated"}, nil
}

func (m *fakeSessionManager) Revoke(_ context.Context, refreshToken string) {
	m.revoked = append(m.revoked, refreshToken)
}

// denyLimiter rejects every request.
type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }

type fakeFanout struct {
	events []notify.Event
	err    error
}

func (f *fakeFanout) Enqueue(_ context.Context, event notify.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// asViewer builds a request carrying an authenticated viewer id, the way
// the auth middleware would.
func asViewer(r *http.Request, viewerID string) *http.Request {
	if viewerID == "" {
		return r
	}
	return r.WithContext(logging.WithViewerID(r.Context(), viewerID))
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
}

// decodeEnvelope unmarshals the response envelope and, when dst is non-nil,
// the data payload into dst.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()

	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	if dst != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode response data: %v", err)
		}
	}
	return env
}
