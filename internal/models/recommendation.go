// internal/models/recommendation.go
package models

import (
	"math"
	"strings"
	"time"
)

// FactorOrigin identifies the scoring method that produced a match factor.
type FactorOrigin string

const (
	OriginBasic         FactorOrigin = "basic"
	OriginAISemantic    FactorOrigin = "ai_semantic"
	OriginCollaborative FactorOrigin = "collaborative"
	OriginTimeSeries    FactorOrigin = "time_series"
	OriginFeatureBased  FactorOrigin = "feature_based"
)

// Valid reports whether o is one of the known origins.
func (o FactorOrigin) Valid() bool {
	switch o {
	case OriginBasic, OriginAISemantic, OriginCollaborative, OriginTimeSeries, OriginFeatureBased:
		return true
	}
	return false
}

// OriginFromFactorName maps the legacy factor-name prefixes onto an origin.
// Stored recommendations written before origins existed only carry the name.
func OriginFromFactorName(name string) FactorOrigin {
	switch {
	case strings.HasPrefix(name, "algorithm_aiSemantic"):
		return OriginAISemantic
	case strings.HasPrefix(name, "algorithm_collaborative"), strings.HasPrefix(name, "similar_rfq"):
		return OriginCollaborative
	case strings.HasPrefix(name, "algorithm_timeSeries"), strings.HasPrefix(name, "feedback_trend"):
		return OriginTimeSeries
	case strings.HasPrefix(name, "algorithm_featureBased"):
		return OriginFeatureBased
	default:
		return OriginBasic
	}
}

type MatchFactor struct {
	FactorName  string       `json:"factorName"`
	Weight      float64      `json:"weight"`
	Score       float64      `json:"score"`
	Explanation string       `json:"explanation"`
	Origin      FactorOrigin `json:"origin,omitempty"`
}

// ResolvedOrigin returns the structured origin, falling back to the name prefix.
func (f MatchFactor) ResolvedOrigin() FactorOrigin {
	if f.Origin.Valid() {
		return f.Origin
	}
	return OriginFromFactorName(f.FactorName)
}

// Contribution is the factor's weighted score, with score held to [0,100]
// and weight to [0,1] as in aggregation.
func (f MatchFactor) Contribution() float64 {
	return bounded(f.Score, 100) * bounded(f.Weight, 1)
}

func bounded(v, limit float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, limit)
}

type SupplierRecommendation struct {
	RFQID        int64         `json:"rfqId"`
	SupplierID   int64         `json:"supplierId"`
	SupplierName string        `json:"supplierName,omitempty"`
	MatchScore   int           `json:"matchScore"`
	MatchReason  string        `json:"matchReason"`
	MatchFactors []MatchFactor `json:"matchFactors"`
	Recommended  bool          `json:"recommended"`
	Contacted    bool          `json:"contacted"`
	Responded    bool          `json:"responded"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
