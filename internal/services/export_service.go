package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/cultivated-hq/pulse-service/internal/models"
	"github.com/cultivated-hq/pulse-service/internal/repositories"
	"github.com/cultivated-hq/pulse-service/internal/scoring"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	responsesSheet   = "Responses"
	summarySheet     = "Summary"
	exportTimeLayout = "2006-01-02 15:04:05"
)

type exportService struct {
	repo      repositories.Repository
	analytics AnalyticsService
	logger    *slog.Logger
}

func NewExportService(repo repositories.Repository, analytics AnalyticsService, logger *slog.Logger) ExportService {
	return &exportService{
		repo:      repo,
		analytics: analytics,
		logger:    logger,
	}
}

// ExportSession builds a workbook with one row per response and a per question summary
func (s *exportService) ExportSession(ctx context.Context, sessionID uuid.UUID) (*ExportFile, error) {
	results, err := s.analytics.GetSessionResults(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", responsesSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeResponsesSheet(f, results.Session, results.Responses); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	if err := writeSummarySheet(f, results.Analytics); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Session exported", "session_id", sessionID, "responses", len(results.Responses))
	return &ExportFile{
		Filename:    fmt.Sprintf("pulse-%s-responses.xlsx", sessionID.String()[:8]),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}

func writeResponsesSheet(f *excelize.File, session *models.FeedbackSession, responses []*models.FeedbackResponse) error {
	questions := session.LikertQuestions()

	header := make([]interface{}, 0, len(questions)+2)
	header = append(header, "Submitted At")
	for i := range questions {
		header = append(header, fmt.Sprintf("Q%d", i+1))
	}
	header = append(header, "Comment")
	if err := f.SetSheetRow(responsesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, r := range responses {
		row := make([]interface{}, 0, len(header))
		row = append(row, r.SubmittedAt.UTC().Format(exportTimeLayout))
		for q := range questions {
			if q < len(r.Responses) {
				row = append(row, r.Responses[q])
			} else {
				row = append(row, nil)
			}
		}
		if r.Comment != nil {
			row = append(row, *r.Comment)
		} else {
			row = append(row, "")
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(responsesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write response row: %w", err)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, a *scoring.SessionAnalytics) error {
	header := []interface{}{"#", "Question", "Average", "Median", "Answered"}
	for v := 1; v <= a.ScaleMax; v++ {
		header = append(header, fmt.Sprintf("Count %d", v))
	}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	for i, text := range a.Questions {
		row := []interface{}{i + 1, text, a.QuestionAverages[i], a.QuestionMedians[i], a.QuestionAnswered[i]}
		for _, count := range a.ResponseDistributions[i] {
			row = append(row, count)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	// Overall block below the questions
	totals := [][]interface{}{
		{"Total Responses", a.TotalResponses},
		{"Overall Average", a.OverallAverage},
		{"Overall Percentage", a.OverallPercentage},
		{"Performance", a.PerformanceCategory},
		{"Comments", a.CommentCount},
	}
	start := len(a.Questions) + 3
	for i, t := range totals {
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		row := t
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary totals: %w", err)
		}
	}
	return nil
}
