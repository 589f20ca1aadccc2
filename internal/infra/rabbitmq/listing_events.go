package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ListingEvents announces submitted listings to downstream consumers.
type ListingEvents struct {
	pub        publisher
	routingKey string
	timeout    time.Duration
}

func NewListingEvents(pub publisher, routingKey string) (*ListingEvents, error) {
	if pub == nil {
		return nil, errors.New("publisher is nil")
	}
	if routingKey == "" {
		return nil, errors.New("routing key is empty")
	}
	return &ListingEvents{pub: pub, routingKey: routingKey, timeout: 5 * time.Second}, nil
}

func (e *ListingEvents) ListingSubmitted(ctx context.Context, event model.ListingSubmittedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode listing submitted event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.pub.Publish(publishCtx, e.routingKey, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Unix(event.At, 0).UTC(),
		MessageId:    fmt.Sprintf("listing-%s-%d", event.ListingID, event.At),
		Body:         body,
	})
}
