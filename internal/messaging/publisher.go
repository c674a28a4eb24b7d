package messaging

import (
	"context"

	"github.com/flagquest/flagnode/internal/events"
)

// Publisher defines the interface for publishing registry events to a
// message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a registry event to the message broker
	PublishEvent(ctx context.Context, event *events.Event) error
	// Close closes the connection
	Close()
}
