// internal/workers/matching/record-match-feedback/models.go
package recordmatchfeedback

import "time"

// The job input is the feedback document itself (rfqId, supplierId,
// wasSuccessful, buyerFeedback, supplierFeedback, feedbackNotes). It is
// validated as raw JSON so that missing required fields are not masked by
// zero values.

type Output struct {
	FeedbackID string    `json:"feedbackId"`
	Recorded   bool      `json:"recorded"`
	RecordedAt time.Time `json:"recordedAt"`
}
