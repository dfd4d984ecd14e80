package events_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cultivated-hq/pulse-service/internal/events"
)

// A downstream notifier consumes the topic and reacts on the event type.
func ExampleNewGoChannelEventPublisher() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, pubSub := events.NewGoChannelEventPublisher(events.PublisherConfig{
		TopicName: "pulse_notifications",
		Logger:    logger,
	})
	defer publisher.Close()

	ctx := context.Background()
	messages, err := pubSub.Subscribe(ctx, "pulse_notifications")
	if err != nil {
		fmt.Println(err)
		return
	}

	_ = publisher.PublishNotificationEvent(ctx, events.NewSessionCreatedEvent(events.SessionCreatedEvent{
		SessionID:    "3f0e",
		Title:        "Team pulse",
		ManagerEmail: "manager@example.com",
	}, false))

	msg := <-messages
	msg.Ack()

	event, err := events.DecodeEvent(msg)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(event.Type, msg.Metadata.Get("source"))
	// Output: session.created pulse-service
}
