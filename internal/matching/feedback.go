// internal/matching/feedback.go
package matching

import (
	"encoding/json"
	"errors"
	"strings"

	"supplier-matching/internal/common/validation"
	"supplier-matching/internal/models"
)

var ErrInvalidFeedback = errors.New("invalid feedback")

const feedbackSchema = `{
	"type": "object",
	"required": ["rfqId", "supplierId", "wasSuccessful"],
	"properties": {
		"rfqId":            {"type": "integer", "minimum": 1},
		"supplierId":       {"type": "integer", "minimum": 1},
		"wasSuccessful":    {"type": "boolean"},
		"buyerFeedback":    {"type": ["integer", "null"], "minimum": 1, "maximum": 5},
		"supplierFeedback": {"type": ["integer", "null"], "minimum": 1, "maximum": 5},
		"feedbackNotes":    {"type": ["string", "null"], "maxLength": 2000}
	}
}`

var feedbackValidator = validation.MustCompile(feedbackSchema)

// FeedbackValidationError lists every field that failed validation.
type FeedbackValidationError struct {
	Errors []validation.ValidationError
}

func (e *FeedbackValidationError) Error() string {
	result := validation.ValidationResult{Errors: e.Errors}
	return ErrInvalidFeedback.Error() + ": " + result.Error()
}

func (e *FeedbackValidationError) Unwrap() error {
	return ErrInvalidFeedback
}

// DecodeFeedback validates and decodes a feedback payload. Nothing is
// persisted here; a rejected payload never reaches storage.
func DecodeFeedback(raw []byte) (*models.FeedbackRecord, error) {
	result := feedbackValidator.Validate(raw)
	if !result.Valid {
		return nil, &FeedbackValidationError{Errors: result.Errors}
	}

	var record models.FeedbackRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, &FeedbackValidationError{Errors: []validation.ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "INVALID_JSON",
		}}}
	}

	record.ID = ""
	record.FeedbackNotes = strings.TrimSpace(record.FeedbackNotes)
	return &record, nil
}

// ValidateFeedback checks an already decoded record, for callers that do not
// hold the raw payload.
func ValidateFeedback(record *models.FeedbackRecord) error {
	if record == nil {
		return &FeedbackValidationError{Errors: []validation.ValidationError{{
			Field: "(root)", Message: "feedback is required", Code: "REQUIRED",
		}}}
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return &FeedbackValidationError{Errors: []validation.ValidationError{{
			Field: "(root)", Message: err.Error(), Code: "INVALID_JSON",
		}}}
	}
	_, err = DecodeFeedback(raw)
	return err
}
