package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/videotube/backend/internal/models"
)

type staticSource struct {
	subscribers []string
	err         error
}

func (s *staticSource) ListSubscriberIDs(context.Context, string) ([]string, error) {
	return s.subscribers, s.err
}

type recordingSink struct {
	mu      sync.Mutex
	created []models.Notification
	failFor map[string]bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{failFor: make(map[string]bool)}
}

func (s *recordingSink) Create(_ context.Context, n models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[n.UserID] {
		return errors.New("sink unavailable")
	}
	s.created = append(s.created, n)
	return nil
}

func TestPublisherFanOut(t *testing.T) {
	source := &staticSource{subscribers: []string{"a", "b", "c"}}
	sink := newRecordingSink()

	publisher := NewPublisher(source, sink, PublisherConfig{Workers: 1, QueueSize: 4, TTL: time.Hour}, nil)

	err := publisher.Enqueue(context.Background(), Event{
		ChannelID:   "chan-1",
		ChannelName: "alice",
		VideoTitle:  "first video",
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := publisher.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.created) != 3 {
		t.Fatalf("expected 3 notifications got %d", len(sink.created))
	}
	for _, n := range sink.created {
		if n.VideoTitle != "first video" || n.ChannelName != "alice" {
			t.Fatalf("unexpected notification: %+v", n)
		}
		if !n.ExpiresAt.After(n.CreatedAt) {
			t.Fatalf("expected expiry after creation: %+v", n)
		}
	}
}

func TestPublisherFanOutEmitsSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	source := &staticSource{subscribers: []string{"a"}}
	sink := newRecordingSink()
	publisher := NewPublisher(source, sink, PublisherConfig{Workers: 1, QueueSize: 1, TTL: time.Hour}, logger)

	if err := publisher.Enqueue(context.Background(), Event{ChannelID: "chan-1", VideoTitle: "v"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := publisher.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"span_name":"notification.fanout"`) {
		t.Fatalf("expected fan-out logs to carry the span name, got %q", logs)
	}
	if !strings.Contains(logs, "span completed") {
		t.Fatalf("expected a span completion entry, got %q", logs)
	}
}

func TestPublisherIsolatesFailures(t *testing.T) {
	source := &staticSource{subscribers: []string{"a", "b", "c", "d", "e"}}
	sink := newRecordingSink()
	sink.failFor["c"] = true

	publisher := NewPublisher(source, sink, PublisherConfig{Workers: 2, QueueSize: 4}, nil)

	if err := publisher.Enqueue(context.Background(), Event{ChannelID: "chan-1", VideoTitle: "v"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := publisher.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.created) != 4 {
		t.Fatalf("expected 4 delivered notifications got %d", len(sink.created))
	}
	for _, n := range sink.created {
		if n.UserID == "c" {
			t.Fatal("failed subscriber should not have a notification")
		}
	}
}

func TestPublisherEnqueueAfterShutdown(t *testing.T) {
	publisher := NewPublisher(&staticSource{}, newRecordingSink(), PublisherConfig{}, nil)
	if err := publisher.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := publisher.Enqueue(context.Background(), Event{ChannelID: "chan-1"}); err == nil {
		t.Fatal("expected enqueue to fail after shutdown")
	}
}

func TestSweeper(t *testing.T) {
	deleter := &fakeDeleter{swept: make(chan time.Time, 1)}
	sweeper := NewSweeper(deleter, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Run(ctx)

	select {
	case <-deleter.swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}
	cancel()
}

type fakeDeleter struct {
	swept chan time.Time
}

func (d *fakeDeleter) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	select {
	case d.swept <- now:
	default:
	}
	return 1, nil
}
