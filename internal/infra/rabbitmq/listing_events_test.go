package rabbitmq

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

type capturePublisher struct {
	routingKey  string
	msg         amqp.Publishing
	hasDeadline bool
}

func (c *capturePublisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	c.routingKey = routingKey
	c.msg = msg
	_, c.hasDeadline = ctx.Deadline()
	return nil
}

func TestListingSubmittedPublishesJSON(t *testing.T) {
	pub := &capturePublisher{}
	events, err := NewListingEvents(pub, "listing.submitted")
	if err != nil {
		t.Fatalf("new listing events: %v", err)
	}

	event := model.ListingSubmittedEvent{ListingID: "501", OwnerID: 4, Edited: true, Images: 3, At: 1767225600}
	if err := events.ListingSubmitted(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if pub.routingKey != "listing.submitted" {
		t.Fatalf("unexpected routing key: %s", pub.routingKey)
	}
	if pub.msg.DeliveryMode != amqp.Persistent || pub.msg.ContentType != "application/json" {
		t.Fatalf("unexpected message properties: %+v", pub.msg)
	}
	if !pub.hasDeadline {
		t.Fatalf("publish must be bounded by a timeout")
	}

	var decoded model.ListingSubmittedEvent
	if err := json.Unmarshal(pub.msg.Body, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded != event {
		t.Fatalf("unexpected event: %+v", decoded)
	}
}

func TestNewListingEventsValidates(t *testing.T) {
	if _, err := NewListingEvents(nil, "k"); err == nil {
		t.Fatalf("expected error for nil publisher")
	}
	if _, err := NewListingEvents(&capturePublisher{}, ""); err == nil {
		t.Fatalf("expected error for empty routing key")
	}
}
