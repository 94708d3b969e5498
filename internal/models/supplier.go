// internal/models/supplier.go
package models

import "github.com/shopspring/decimal"

type SupplierProfile struct {
	ID               int64               `json:"id"`
	CompanyName      string              `json:"companyName"`
	Description      string              `json:"description,omitempty"`
	Categories       []string            `json:"categories"`
	Keywords         []string            `json:"keywords,omitempty"`
	Location         Location            `json:"location"`
	Verified         bool                `json:"verified"`
	RiskScore        *float64            `json:"riskScore,omitempty"`
	RiskGrade        string              `json:"riskGrade,omitempty"`
	OnTimeRate       *float64            `json:"onTimeRate,omitempty"`
	PastOrderCount   int                 `json:"pastOrderCount"`
	TypicalUnitPrice decimal.NullDecimal `json:"typicalUnitPrice"`
	AvgLeadTimeDays  *int                `json:"avgLeadTimeDays,omitempty"`
	Email            string              `json:"email,omitempty"`
	Phone            string              `json:"phone,omitempty"`
	Stats            *SupplierStats      `json:"stats,omitempty"`
}

// SupplierStats aggregates recorded match feedback for one supplier.
type SupplierStats struct {
	FeedbackCount     int      `json:"feedbackCount"`
	SuccessCount      int      `json:"successCount"`
	RecentSuccessRate *float64 `json:"recentSuccessRate,omitempty"`
	PriorSuccessRate  *float64 `json:"priorSuccessRate,omitempty"`
	SimilarRFQCount   int      `json:"similarRfqCount"`
	SimilarRFQWins    int      `json:"similarRfqWins"`
}
