package config

import (
	"log/slog"
	"strings"

	"github.com/cultivated-hq/pulse-service/internal/events"
)

const (
	PublisherKafka     = "kafka"
	PublisherGoChannel = "gochannel"
	PublisherMock      = "mock"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled           bool
	Publisher         string // kafka, gochannel or mock
	KafkaBrokers      string
	NotificationTopic string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	publisherConfig := events.PublisherConfig{
		KafkaBrokers: c.GetKafkaBrokers(),
		TopicName:    c.NotificationTopic,
		Logger:       logger,
	}

	switch c.Publisher {
	case PublisherKafka:
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.NotificationTopic)
		return events.NewKafkaEventPublisher(publisherConfig)
	case PublisherGoChannel:
		logger.Info("Creating in-process event publisher", "topic", c.NotificationTopic)
		publisher, _ := events.NewGoChannelEventPublisher(publisherConfig)
		return publisher, nil
	case PublisherMock:
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
