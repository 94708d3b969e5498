// internal/matching/scorer.go
package matching

import (
	"fmt"
	"math"
	"strings"
	"time"

	"supplier-matching/internal/models"

	"github.com/shopspring/decimal"
)

const (
	FactorCategoryMatch          = "category_match"
	FactorLocationProximity      = "location_proximity"
	FactorPriceFit               = "price_fit"
	FactorDeliveryTimeline       = "delivery_timeline"
	FactorHistoricalReliability  = "historical_reliability"
	FactorComplianceVerification = "compliance_verification"
)

// DefaultWeights returns the weight of every factor the scorer can emit.
// Weights need not sum to 1; the aggregator normalizes.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		FactorCategoryMatch:          0.30,
		FactorLocationProximity:      0.20,
		FactorPriceFit:               0.20,
		FactorDeliveryTimeline:       0.10,
		FactorHistoricalReliability:  0.15,
		FactorComplianceVerification: 0.05,
		FactorSemanticSimilarity:     0.15,
		FactorSimilarRFQHistory:      0.10,
		FactorFeedbackTrend:          0.05,
		FactorFeatureCoverage:        0.10,
	}
}

// Scorer turns one RFQ and one supplier into a set of match factors.
// It never fails: missing inputs produce a zero score with an explanation.
type Scorer struct {
	weights map[string]float64
	now     func() time.Time
}

// NewScorer overlays weights on DefaultWeights. Names match case-insensitively
// because config loaders lowercase map keys. Unknown names are kept so callers
// can tune factors added later without a code change.
func NewScorer(weights map[string]float64) *Scorer {
	merged := DefaultWeights()
	for name, w := range weights {
		merged[canonicalFactorName(merged, name)] = clampWeight(w)
	}
	return &Scorer{weights: merged, now: time.Now}
}

func canonicalFactorName(known map[string]float64, name string) string {
	if _, ok := known[name]; ok {
		return name
	}
	for k := range known {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}

// WithClock replaces the clock used for deadline calculations.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Weight returns the configured weight for a factor name.
func (s *Scorer) Weight(name string) float64 {
	return s.weights[name]
}

func (s *Scorer) Score(rfq *models.RFQ, supplier *models.SupplierProfile, useAdvanced bool) []models.MatchFactor {
	if rfq == nil || supplier == nil {
		return nil
	}

	factors := []models.MatchFactor{
		s.categoryMatch(rfq, supplier),
		s.locationProximity(rfq, supplier),
		s.priceFit(rfq, supplier),
		s.deliveryTimeline(rfq, supplier),
		s.historicalReliability(supplier),
		s.complianceVerification(supplier),
	}

	if useAdvanced {
		factors = append(factors, s.advancedFactors(rfq, supplier)...)
	}
	return factors
}

func (s *Scorer) factor(name string, origin models.FactorOrigin, score float64, explanation string) models.MatchFactor {
	return models.MatchFactor{
		FactorName:  name,
		Weight:      s.weights[name],
		Score:       clampScore(score),
		Explanation: explanation,
		Origin:      origin,
	}
}

func (s *Scorer) categoryMatch(rfq *models.RFQ, supplier *models.SupplierProfile) models.MatchFactor {
	want := normalize(rfq.Category)
	if want == "" || len(supplier.Categories) == 0 {
		return s.factor(FactorCategoryMatch, models.OriginBasic, 0, "Category data is missing for this RFQ or supplier")
	}

	related := false
	for _, c := range supplier.Categories {
		have := normalize(c)
		if have == "" {
			continue
		}
		if have == want {
			return s.factor(FactorCategoryMatch, models.OriginBasic, 100,
				fmt.Sprintf("Supplier serves the %s category", rfq.Category))
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			related = true
		}
	}

	if related {
		return s.factor(FactorCategoryMatch, models.OriginBasic, 60,
			fmt.Sprintf("Supplier serves categories related to %s", rfq.Category))
	}
	return s.factor(FactorCategoryMatch, models.OriginBasic, 10,
		fmt.Sprintf("Supplier does not list %s among its categories", rfq.Category))
}

func (s *Scorer) locationProximity(rfq *models.RFQ, supplier *models.SupplierProfile) models.MatchFactor {
	want, have := rfq.Location, supplier.Location

	if want.HasCoordinates() && have.HasCoordinates() {
		km := haversineKm(*want.Latitude, *want.Longitude, *have.Latitude, *have.Longitude)
		return s.factor(FactorLocationProximity, models.OriginBasic, 100-km/20,
			fmt.Sprintf("Supplier location is %dkm from delivery point", int(math.Round(km))))
	}

	if want.IsEmpty() || have.IsEmpty() {
		return s.factor(FactorLocationProximity, models.OriginBasic, 0, "Location data is missing for this RFQ or supplier")
	}

	switch {
	case want.City != "" && strings.EqualFold(want.City, have.City) &&
		(want.State == "" || have.State == "" || strings.EqualFold(want.State, have.State)):
		return s.factor(FactorLocationProximity, models.OriginBasic, 90,
			fmt.Sprintf("Supplier is based in %s, the delivery city", have.City))
	case want.State != "" && strings.EqualFold(want.State, have.State):
		return s.factor(FactorLocationProximity, models.OriginBasic, 70,
			fmt.Sprintf("Supplier is based in the delivery state %s", have.State))
	case want.Country != "" && strings.EqualFold(want.Country, have.Country):
		return s.factor(FactorLocationProximity, models.OriginBasic, 50,
			fmt.Sprintf("Supplier is based in the delivery country %s", have.Country))
	default:
		return s.factor(FactorLocationProximity, models.OriginBasic, 20, "Supplier is located outside the delivery region")
	}
}

func (s *Scorer) priceFit(rfq *models.RFQ, supplier *models.SupplierProfile) models.MatchFactor {
	if !supplier.TypicalUnitPrice.Valid || rfq.Quantity <= 0 || !rfq.HasBudget() {
		return s.factor(FactorPriceFit, models.OriginBasic, 0, "Price data is insufficient to estimate fit")
	}

	estimate := supplier.TypicalUnitPrice.Decimal.Mul(decimal.NewFromInt(int64(rfq.Quantity)))

	if rfq.BudgetMax.Valid && estimate.GreaterThan(rfq.BudgetMax.Decimal) {
		budget := rfq.BudgetMax.Decimal
		if !budget.IsPositive() {
			return s.factor(FactorPriceFit, models.OriginBasic, 0,
				fmt.Sprintf("Estimated cost %s exceeds the budget", estimate.StringFixed(2)))
		}
		over, _ := estimate.Sub(budget).Div(budget).Float64()
		return s.factor(FactorPriceFit, models.OriginBasic, 100-over*200,
			fmt.Sprintf("Estimated cost %s exceeds the budget by %d%%", estimate.StringFixed(2), int(math.Round(over*100))))
	}

	if rfq.BudgetMin.Valid && estimate.LessThan(rfq.BudgetMin.Decimal) {
		return s.factor(FactorPriceFit, models.OriginBasic, 90,
			fmt.Sprintf("Estimated cost %s is below the budget range", estimate.StringFixed(2)))
	}

	return s.factor(FactorPriceFit, models.OriginBasic, 100,
		fmt.Sprintf("Estimated cost %s is within budget", estimate.StringFixed(2)))
}

func (s *Scorer) deliveryTimeline(rfq *models.RFQ, supplier *models.SupplierProfile) models.MatchFactor {
	if rfq.Deadline == nil || supplier.AvgLeadTimeDays == nil {
		return s.factor(FactorDeliveryTimeline, models.OriginBasic, 0, "Delivery timeline data is missing")
	}

	available := rfq.Deadline.Sub(s.now()).Hours() / 24
	if available <= 0 {
		return s.factor(FactorDeliveryTimeline, models.OriginBasic, 0, "RFQ deadline has already passed")
	}

	lead := *supplier.AvgLeadTimeDays
	days := int(math.Floor(available))
	if lead <= 0 || float64(lead) <= available {
		return s.factor(FactorDeliveryTimeline, models.OriginBasic, 100,
			fmt.Sprintf("Typical lead time of %d days meets the %d-day deadline", lead, days))
	}

	return s.factor(FactorDeliveryTimeline, models.OriginBasic, 100*available/float64(lead),
		fmt.Sprintf("Typical lead time of %d days exceeds the %d-day deadline", lead, days))
}

func (s *Scorer) historicalReliability(supplier *models.SupplierProfile) models.MatchFactor {
	if supplier.OnTimeRate == nil && supplier.PastOrderCount <= 0 {
		return s.factor(FactorHistoricalReliability, models.OriginBasic, 0, "No delivery history is available for this supplier")
	}

	experience := math.Min(float64(supplier.PastOrderCount), 50) / 50
	if experience < 0 {
		experience = 0
	}

	if supplier.OnTimeRate == nil {
		return s.factor(FactorHistoricalReliability, models.OriginBasic, experience*20,
			fmt.Sprintf("Supplier has completed %d past orders with no on-time data", supplier.PastOrderCount))
	}

	onTime := math.Max(0, math.Min(1, *supplier.OnTimeRate))
	return s.factor(FactorHistoricalReliability, models.OriginBasic, onTime*80+experience*20,
		fmt.Sprintf("Supplier delivered %d%% of %d past orders on time", int(math.Round(onTime*100)), supplier.PastOrderCount))
}

var riskGradeBonus = map[string]float64{
	"A": 40,
	"B": 30,
	"C": 15,
	"D": 5,
	"E": 0,
}

func (s *Scorer) complianceVerification(supplier *models.SupplierProfile) models.MatchFactor {
	base, status := 20.0, "Unverified supplier"
	if supplier.Verified {
		base, status = 60, "Verified supplier"
	}

	grade := strings.ToUpper(strings.TrimSpace(supplier.RiskGrade))
	if bonus, ok := riskGradeBonus[grade]; ok {
		return s.factor(FactorComplianceVerification, models.OriginBasic, base+bonus,
			fmt.Sprintf("%s with risk grade %s", status, grade))
	}

	if supplier.RiskScore != nil {
		risk := clampScore(*supplier.RiskScore)
		return s.factor(FactorComplianceVerification, models.OriginBasic, base+(100-risk)*0.4,
			fmt.Sprintf("%s with risk score %.0f", status, risk))
	}

	return s.factor(FactorComplianceVerification, models.OriginBasic, base,
		fmt.Sprintf("%s with no risk assessment", status))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
