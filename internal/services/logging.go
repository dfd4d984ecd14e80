package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", service),
	}
}

// LogOperation logs the outcome of an operation at a level chosen by the error class
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, resourceID, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	switch {
	case err == nil:
	case IsValidation(err):
		level = slog.LevelWarn
		status = "validation_error"
	case IsGone(err):
		level = slog.LevelInfo
		status = "closed"
	case IsConflict(err):
		level = slog.LevelWarn
		status = "conflict"
	case IsNotFound(err):
		level = slog.LevelInfo
		status = "not_found"
	default:
		level = slog.LevelError
		status = "error"
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErrs ValidationErrors
		var incomplete *IncompleteResponsesError
		if errors.As(err, &validationErrs) {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErrs)))
		} else if errors.As(err, &incomplete) {
			attrs = append(attrs,
				slog.Int("answered", incomplete.Answered),
				slog.Int("expected", incomplete.Expected))
		}
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// ContextualLogger times a single operation
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, resourceID, resourceType, time.Since(cl.startTime), err)
}

// MaskEmail keeps the domain and the first character of the local part
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "[REDACTED]"
	}
	return email[:1] + "***" + email[at:]
}
