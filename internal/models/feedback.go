// internal/models/feedback.go
package models

import "time"

// FeedbackRecord is the outcome of a concluded RFQ/supplier engagement.
// Records are append-only.
type FeedbackRecord struct {
	ID               string    `json:"id,omitempty"`
	RFQID            int64     `json:"rfqId"`
	SupplierID       int64     `json:"supplierId"`
	WasSuccessful    bool      `json:"wasSuccessful"`
	BuyerFeedback    *int      `json:"buyerFeedback,omitempty"`
	SupplierFeedback *int      `json:"supplierFeedback,omitempty"`
	FeedbackNotes    string    `json:"feedbackNotes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
