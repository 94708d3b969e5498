// internal/models/rfq.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Location struct {
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// IsEmpty reports whether no part of the location is known.
func (l Location) IsEmpty() bool {
	return l.City == "" && l.State == "" && l.Country == "" && !l.HasCoordinates()
}

// RFQ is a buyer's request for quotation. The matching engine only reads it.
type RFQ struct {
	ID             int64               `json:"id"`
	BuyerID        string              `json:"buyerId,omitempty"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Category       string              `json:"category"`
	Quantity       int                 `json:"quantity"`
	Unit           string              `json:"unit,omitempty"`
	Deadline       *time.Time          `json:"deadline,omitempty"`
	Location       Location            `json:"location"`
	BudgetMin      decimal.NullDecimal `json:"budgetMin"`
	BudgetMax      decimal.NullDecimal `json:"budgetMax"`
	Specifications []string            `json:"specifications,omitempty"`
	Status         string              `json:"status,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

// HasBudget reports whether at least one budget bound is known.
func (r *RFQ) HasBudget() bool {
	return r.BudgetMin.Valid || r.BudgetMax.Valid
}
