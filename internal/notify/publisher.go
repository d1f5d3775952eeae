package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
)

// SubscriberSource lists the subscriber ids of a channel.
type SubscriberSource interface {
	ListSubscriberIDs(ctx context.Context, channelID string) ([]string, error)
}

// NotificationSink persists one notification row.
type NotificationSink interface {
	Create(ctx context.Context, n models.Notification) error
}

// Event describes one published video to announce to subscribers.
type Event struct {
	ChannelID     string
	ChannelName   string
	ChannelAvatar string
	VideoTitle    string
}

// PublisherConfig controls the concurrency characteristics of the publisher.
type PublisherConfig struct {
	QueueSize int
	Workers   int
	TTL       time.Duration
}

// Publisher fans a publish event out to every subscriber of the channel in
// the background. Delivery is best effort: a failure for one subscriber is
// logged and never blocks the rest, and the publishing request never waits
// on the fan-out.
type Publisher struct {
	source SubscriberSource
	sink   NotificationSink
	logger *slog.Logger
	ttl    time.Duration

	jobs   chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	// NowFunc allows tests to control notification timestamps.
	NowFunc func() time.Time
}

var errPublisherClosed = errors.New("notification publisher closed")

// NewPublisher constructs a background worker pool that writes notifications.
func NewPublisher(source SubscriberSource, sink NotificationSink, cfg PublisherConfig, logger *slog.Logger) *Publisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 72 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Publisher{
		source:  source,
		sink:    sink,
		logger:  logger,
		ttl:     cfg.TTL,
		jobs:    make(chan Event, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		NowFunc: time.Now,
	}

	p.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go p.worker()
	}

	return p
}

// Enqueue schedules fan-out for a publish event.
func (p *Publisher) Enqueue(ctx context.Context, event Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return errPublisherClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return errPublisherClosed
	case p.jobs <- event:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding events.
func (p *Publisher) Shutdown(ctx context.Context) error {
	p.once.Do(func() {
		p.cancel()
		close(p.jobs)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// worker drains the queue until it is closed. Cancellation only stops new
// Enqueue calls; events already accepted are still delivered on shutdown.
func (p *Publisher) worker() {
	defer p.wg.Done()

	for event := range p.jobs {
		p.fanOut(event)
	}
}

func (p *Publisher) fanOut(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ctx, span := logging.StartSpan(logging.WithLogger(ctx, p.logger), "notification.fanout")
	defer span.End()
	logger := logging.FromContext(ctx)

	subscribers, err := p.source.ListSubscriberIDs(ctx, event.ChannelID)
	if err != nil {
		logger.Error("list subscribers for fan-out", "channelId", event.ChannelID, "error", err)
		return
	}

	now := p.NowFunc().UTC()
	delivered := 0
	for _, subscriberID := range subscribers {
		n := models.Notification{
			ID:            uuid.NewString(),
			UserID:        subscriberID,
			VideoTitle:    event.VideoTitle,
			ChannelAvatar: event.ChannelAvatar,
			ChannelName:   event.ChannelName,
			CreatedAt:     now,
			ExpiresAt:     now.Add(p.ttl),
		}
		if err := p.sink.Create(ctx, n); err != nil {
			logger.Error("deliver notification", "userId", subscriberID, "channelId", event.ChannelID, "error", err)
			continue
		}
		delivered++
	}

	logger.Info("fan-out completed",
		slog.String("channelId", event.ChannelID),
		slog.Int("subscribers", len(subscribers)),
		slog.Int("delivered", delivered),
	)
}
