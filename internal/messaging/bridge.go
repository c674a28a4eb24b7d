package messaging

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/flagquest/flagnode/internal/events"
	"github.com/flagquest/flagnode/internal/logger"
)

// Bridge forwards committed registry events from the in-process bus to a
// broker publisher. Events are queued and delivered by a background
// goroutine with exponential-backoff retries, so a broker outage never
// stalls the transaction commit path that feeds the bus.
type Bridge struct {
	publisher Publisher
	queue     chan events.Event
	done      chan struct{}
	closeOnce sync.Once
}

const deliveryQueueSize = 1024

var errQueueFull = errors.New("delivery queue full, event dropped")

// NewBridge creates a bridge around a publisher and starts its delivery
// goroutine.
func NewBridge(publisher Publisher) *Bridge {
	b := &Bridge{
		publisher: publisher,
		queue:     make(chan events.Event, deliveryQueueSize),
		done:      make(chan struct{}),
	}
	go b.deliverLoop()
	return b
}

// Attach subscribes the bridge to a bus
func (b *Bridge) Attach(bus *events.Bus) {
	bus.Subscribe(b.handle)
}

// Close stops accepting events and waits for the queue to drain.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.queue) })
	<-b.done
}

// handle enqueues an event for delivery. It never blocks the caller: a
// full queue drops the event with an error record instead of holding up
// the transaction that emitted it.
func (b *Bridge) handle(ctx context.Context, event events.Event) {
	select {
	case b.queue <- event:
	default:
		logger.ErrorCtx(ctx, errQueueFull,
			zap.String("type", string(event.Type)),
			zap.String("flag_id", event.FlagID),
		)
	}
}

func (b *Bridge) deliverLoop() {
	defer close(b.done)
	// Delivery outlives the request that produced the event, so retries
	// run on a background context.
	ctx := context.Background()
	for event := range b.queue {
		b.deliver(ctx, event)
	}
}

func (b *Bridge) deliver(ctx context.Context, event events.Event) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 5 * time.Minute
	bo.RandomizationFactor = 0.5 // jitter to prevent thundering herd

	operation := func() error {
		return b.publisher.PublishEvent(ctx, &event)
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Event publish failed, retrying",
			zap.Error(err),
			zap.String("type", string(event.Type)),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notifyOnError); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("type", string(event.Type)),
			zap.String("flag_id", event.FlagID),
		)
	}
}
