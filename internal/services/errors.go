package services

import (
	"errors"
	"fmt"

	apperrors "github.com/cultivated-hq/pulse-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Session errors
	ErrSessionNotFound = errors.New("feedback session not found")
	ErrSessionExpired  = errors.New("feedback session has expired")
	ErrSessionInactive = errors.New("feedback session is no longer accepting responses")

	// Submission errors
	ErrIncompleteResponses = errors.New("please answer all questions before submitting")

	// Audit errors
	ErrAuditNotFound   = errors.New("audit result not found")
	ErrMissingAuditKey = errors.New("either email or sessionId is required")

	// Report errors
	ErrReportNotAllowed = errors.New("final report already sent for this session")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot %s %s (%s)", pe.Action, pe.Resource, pe.Reason)
}

// IncompleteResponsesError carries the answered and expected counts of a rejected submission
type IncompleteResponsesError struct {
	Answered int `json:"answered"`
	Expected int `json:"expected"`
}

func (e *IncompleteResponsesError) Error() string {
	return fmt.Sprintf("%s: answered %d of %d", ErrIncompleteResponses, e.Answered, e.Expected)
}

func (e *IncompleteResponsesError) Unwrap() error {
	return ErrIncompleteResponses
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(resource, action, reason string) *PermissionError {
	return &PermissionError{
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrAuditNotFound)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrIncompleteResponses) || errors.Is(err, ErrMissingAuditKey) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrReportNotAllowed)
}

// IsGone reports whether the session no longer accepts responses
func IsGone(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrSessionInactive)
}
