package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cultivated-hq/pulse-service/internal/delivery"
	"github.com/cultivated-hq/pulse-service/internal/events"
	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

func assignAuditID(args mock.Arguments) {
	args.Get(2).(*models.AuditResult).ID = uuid.New()
}

func TestAuditService_Score(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("complete answers", func(t *testing.T) {
		answers := fullAuditAnswers(4)
		answers[0], answers[1], answers[2], answers[3] = 5, 5, 5, 5

		score, err := env.manager.Audit().Score(ctx, &ScoreAuditRequest{Answers: answers})
		require.NoError(t, err)

		assert.Equal(t, 5.0, score.CategoryScores["team-performance"])
		assert.Equal(t, 4.0, score.CategoryScores["people-retention"])
		assert.Equal(t, 4.3, score.OverallScore)
		assert.Equal(t, "team-performance", score.HighestCategory)
		assert.Equal(t, "values-culture", score.LowestCategory)
		assert.Equal(t, "Very Strong", score.Band)
		assert.Equal(t, "Exceptional", score.CategoryBands["team-performance"])
		assert.NotEmpty(t, score.SummaryMarkdown)
	})

	t.Run("unanswered question", func(t *testing.T) {
		answers := fullAuditAnswers(3)
		answers[7] = 0

		_, err := env.manager.Audit().Score(ctx, &ScoreAuditRequest{Answers: answers})
		require.Error(t, err)

		var incomplete *IncompleteResponsesError
		require.True(t, errors.As(err, &incomplete))
		assert.Equal(t, 15, incomplete.Answered)
		assert.Equal(t, 16, incomplete.Expected)
		assert.True(t, IsValidation(err))
	})

	t.Run("out of range answer", func(t *testing.T) {
		answers := fullAuditAnswers(3)
		answers[2] = 6

		_, err := env.manager.Audit().Score(ctx, &ScoreAuditRequest{Answers: answers})
		require.Error(t, err)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, "answers[2]", verrs[0].Field)
	})
}

func TestAuditService_SubmitResults(t *testing.T) {
	ctx := context.Background()

	t.Run("saves and emails the report", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.audits.On("Create", ctx, (*gorm.DB)(nil), mock.AnythingOfType("*models.AuditResult")).
			Run(assignAuditID).Return(nil)

		name := "  Jamie Lee "
		result, err := env.manager.Audit().SubmitResults(ctx, &SubmitAuditRequest{
			Email:   " Jamie@Example.com ",
			Name:    &name,
			Answers: fullAuditAnswers(4),
		})
		require.NoError(t, err)

		assert.True(t, result.EmailSent)
		assert.False(t, result.MinimalMode)
		assert.Equal(t, "sent", result.Status)
		assert.NotEqual(t, uuid.Nil, result.AuditID)

		saved := env.repo.audits.Calls[0].Arguments.Get(2).(*models.AuditResult)
		assert.Equal(t, "jamie@example.com", saved.Email)
		require.NotNil(t, saved.Name)
		assert.Equal(t, "Jamie Lee", *saved.Name)
		assert.Equal(t, 4.0, saved.TotalScore)

		sent := env.mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "jamie@example.com", sent[0].To)
		assert.Equal(t, []string{"coach@example.com"}, sent[0].Cc)
		assert.Equal(t, "Your Leadership Clarity Audit Results", sent[0].Subject)
		assert.Contains(t, sent[0].HTMLBody, "Jamie Lee")

		assert.Len(t, env.publisher.EventsOfType(events.EventAuditSubmitted), 1)
		assert.Len(t, env.publisher.EventsOfType(events.EventReportSent), 1)
		env.repo.AssertExpectations(t)
	})

	t.Run("email failure keeps the saved result", func(t *testing.T) {
		env := newTestEnv(t)
		env.mailer.Err = errors.New("smtp down")
		env.repo.audits.On("Create", ctx, (*gorm.DB)(nil), mock.AnythingOfType("*models.AuditResult")).
			Run(assignAuditID).Return(nil)

		result, err := env.manager.Audit().SubmitResults(ctx, &SubmitAuditRequest{
			Email:   "jamie@example.com",
			Answers: fullAuditAnswers(2),
		})
		require.NoError(t, err)

		assert.False(t, result.EmailSent)
		assert.Equal(t, "saved, but email pending", result.Status)
		assert.Len(t, env.publisher.EventsOfType(events.EventReportFailed), 1)
	})

	t.Run("minimal mode without a mail provider", func(t *testing.T) {
		env := newTestEnv(t, func(d *Dependencies) {
			d.Mailer = delivery.DisabledMailer{Logger: d.Logger}
		})
		env.repo.audits.On("Create", ctx, (*gorm.DB)(nil), mock.AnythingOfType("*models.AuditResult")).
			Run(assignAuditID).Return(nil)

		result, err := env.manager.Audit().SubmitResults(ctx, &SubmitAuditRequest{
			Email:   "jamie@example.com",
			Answers: fullAuditAnswers(3),
		})
		require.NoError(t, err)

		assert.True(t, result.MinimalMode)
		assert.False(t, result.EmailSent)
		assert.Empty(t, env.publisher.EventsOfType(events.EventReportFailed))
	})

	t.Run("invalid email", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.Audit().SubmitResults(ctx, &SubmitAuditRequest{
			Email:   "not-an-email",
			Answers: fullAuditAnswers(3),
		})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		env.repo.audits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("database failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.audits.On("Create", ctx, (*gorm.DB)(nil), mock.Anything).Return(errors.New("connection refused"))

		_, err := env.manager.Audit().SubmitResults(ctx, &SubmitAuditRequest{
			Email:   "jamie@example.com",
			Answers: fullAuditAnswers(3),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save audit result")
		assert.Empty(t, env.mailer.Sent())
	})
}

func TestAuditService_DeliverReport(t *testing.T) {
	ctx := context.Background()
	stored := models.NewAuditResult("sam@example.com", nil, fullAuditAnswers(3), &scoring.Result{
		CategoryScores: map[string]float64{
			"team-performance":     3,
			"values-culture":       3,
			"leadership-alignment": 3,
			"people-retention":     3,
		},
		OverallScore:    3,
		HighestCategory: "team-performance",
		LowestCategory:  "team-performance",
	})
	stored.ID = uuid.New()

	t.Run("by id", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.audits.On("GetByID", ctx, (*gorm.DB)(nil), stored.ID).Return(stored, nil)

		audit, err := env.manager.Audit().DeliverReport(ctx, &AuditReportRequest{SessionID: stored.ID.String()})
		require.NoError(t, err)
		assert.Equal(t, stored.ID, audit.ID)
		require.Len(t, env.mailer.Sent(), 1)
		assert.Equal(t, "sam@example.com", env.mailer.Sent()[0].To)
	})

	t.Run("latest by email", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.audits.On("GetLatestByEmail", ctx, (*gorm.DB)(nil), "sam@example.com").Return(stored, nil)

		_, err := env.manager.Audit().DeliverReport(ctx, &AuditReportRequest{Email: "Sam@Example.com"})
		require.NoError(t, err)
		env.repo.AssertExpectations(t)
	})

	t.Run("missing key", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.Audit().DeliverReport(ctx, &AuditReportRequest{})
		assert.ErrorIs(t, err, ErrMissingAuditKey)
	})

	t.Run("not found", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.audits.On("GetLatestByEmail", ctx, (*gorm.DB)(nil), "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		_, err := env.manager.Audit().DeliverReport(ctx, &AuditReportRequest{Email: "nobody@example.com"})
		assert.ErrorIs(t, err, ErrAuditNotFound)
		assert.True(t, IsNotFound(err))
	})

	t.Run("send failure", func(t *testing.T) {
		env := newTestEnv(t)
		env.mailer.Err = errors.New("quota exceeded")
		env.repo.audits.On("GetByID", ctx, (*gorm.DB)(nil), stored.ID).Return(stored, nil)

		_, err := env.manager.Audit().DeliverReport(ctx, &AuditReportRequest{SessionID: stored.ID.String()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send audit report")
	})
}

func TestAuditService_Questionnaire(t *testing.T) {
	env := newTestEnv(t)

	q := env.manager.Audit().Questionnaire()
	assert.Len(t, q.Questions, 16)
	assert.Len(t, q.ScaleLabels, 5)
}
