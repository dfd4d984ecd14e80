package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cultivated-hq/pulse-service/internal/events"
	"github.com/cultivated-hq/pulse-service/internal/models"
)

func TestNotificationEventService_PublishEvents(t *testing.T) {
	logger := testLogger()
	mockPublisher := events.NewMockEventPublisher(logger)
	service := NewNotificationEventService(mockPublisher, logger)
	ctx := context.Background()

	t.Run("SessionCreated", func(t *testing.T) {
		mockPublisher.ClearEvents()
		session := pulseSession(fixedNow.Add(time.Hour), true)

		err := service.NotifySessionCreated(ctx, session, "https://pulse.example.com/surveys/"+session.ID.String())
		require.NoError(t, err)

		published := mockPublisher.GetPublishedEvents()
		require.Len(t, published, 2)
		assert.Equal(t, events.EventSessionCreated, published[0].Type)
		assert.Equal(t, events.EventSessionPublicCreated, published[1].Type)

		data, ok := published[0].Data.(events.SessionCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, session.ID.String(), data.SessionID)
		assert.Equal(t, "likert_5", data.ScaleType)
	})

	t.Run("PrivateSessionSkipsPublicEvent", func(t *testing.T) {
		mockPublisher.ClearEvents()
		session := pulseSession(fixedNow.Add(time.Hour), true)
		session.IsPublic = false

		require.NoError(t, service.NotifySessionCreated(ctx, session, ""))
		assert.Len(t, mockPublisher.GetPublishedEvents(), 1)
	})

	t.Run("Event_Structure_Validation", func(t *testing.T) {
		mockPublisher.ClearEvents()
		comment := "keep going"

		err := service.NotifyResponseSubmitted(ctx, &models.FeedbackResponse{
			ID:          uuid.New(),
			SessionID:   uuid.New(),
			Comment:     &comment,
			SubmittedAt: fixedNow,
		}, 4)
		require.NoError(t, err)

		published := mockPublisher.GetPublishedEvents()
		require.Len(t, published, 1)

		event := published[0]
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, "pulse-service", event.Source)
		assert.Equal(t, "1.0", event.Version)
		assert.False(t, event.Timestamp.IsZero())

		data, ok := event.Data.(events.ResponseSubmittedEvent)
		require.True(t, ok)
		assert.True(t, data.HasComment)
		assert.Equal(t, 4, data.ResponseCount)
	})

	t.Run("ReportFailedCarriesCause", func(t *testing.T) {
		mockPublisher.ClearEvents()

		err := service.NotifyReportFailed(ctx, events.ReportKindAudit, "abc", []string{"a@example.com"}, errors.New("bounced"))
		require.NoError(t, err)

		data, ok := mockPublisher.GetPublishedEvents()[0].Data.(events.ReportEvent)
		require.True(t, ok)
		assert.Equal(t, "bounced", data.Error)
		assert.Equal(t, events.ReportKindAudit, data.Kind)
	})

	t.Run("PublisherErrorIsReturned", func(t *testing.T) {
		mockPublisher.Err = errors.New("broker unavailable")
		defer func() { mockPublisher.Err = nil }()

		err := service.NotifyReportSent(ctx, events.ReportKindSession, "abc", nil)
		assert.Error(t, err)
	})
}

// Integration test example (would require actual Kafka)
func TestNotificationEventService_KafkaIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Skip("requires a running Kafka broker")
}

func BenchmarkNotificationEventService_PublishEvent(b *testing.B) {
	logger := testLogger()
	mockPublisher := events.NewMockEventPublisher(logger)
	service := NewNotificationEventService(mockPublisher, logger)

	ctx := context.Background()
	response := &models.FeedbackResponse{ID: uuid.New(), SessionID: uuid.New(), SubmittedAt: fixedNow}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := service.NotifyResponseSubmitted(ctx, response, i); err != nil {
			b.Fatalf("Failed to publish event: %v", err)
		}
	}
}
