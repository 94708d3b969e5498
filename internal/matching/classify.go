// internal/matching/classify.go
package matching

import "supplier-matching/internal/models"

// AlgorithmSource is the display bucket a recommendation is grouped under.
type AlgorithmSource string

const (
	SourceAIPowered     AlgorithmSource = "AI Powered"
	SourceCollaborative AlgorithmSource = "Collaborative"
	SourceTrending      AlgorithmSource = "Trending"
	SourceFeatureBased  AlgorithmSource = "Feature Based"
	SourceBasicMatch    AlgorithmSource = "Basic Match"
)

// sourcePriority is checked top to bottom; the first origin present wins.
var sourcePriority = []struct {
	origin models.FactorOrigin
	source AlgorithmSource
}{
	{models.OriginAISemantic, SourceAIPowered},
	{models.OriginCollaborative, SourceCollaborative},
	{models.OriginTimeSeries, SourceTrending},
	{models.OriginFeatureBased, SourceFeatureBased},
}

// Sources lists every bucket in display order.
func Sources() []AlgorithmSource {
	return []AlgorithmSource{SourceAIPowered, SourceCollaborative, SourceTrending, SourceFeatureBased, SourceBasicMatch}
}

type AlgorithmGroup struct {
	Source          AlgorithmSource                 `json:"source"`
	Recommendations []models.SupplierRecommendation `json:"recommendations"`
}

func SourceOf(rec *models.SupplierRecommendation) AlgorithmSource {
	present := make(map[models.FactorOrigin]bool, len(rec.MatchFactors))
	for _, f := range rec.MatchFactors {
		present[f.ResolvedOrigin()] = true
	}

	for _, p := range sourcePriority {
		if present[p.origin] {
			return p.source
		}
	}
	return SourceBasicMatch
}

// Classify partitions recs into the five buckets. Every bucket is present,
// possibly empty, and each recommendation appears in exactly one of them.
func Classify(recs []models.SupplierRecommendation) []AlgorithmGroup {
	sources := Sources()
	groups := make([]AlgorithmGroup, len(sources))
	index := make(map[AlgorithmSource]int, len(sources))
	for i, src := range sources {
		groups[i] = AlgorithmGroup{Source: src, Recommendations: []models.SupplierRecommendation{}}
		index[src] = i
	}

	for i := range recs {
		g := index[SourceOf(&recs[i])]
		groups[g].Recommendations = append(groups[g].Recommendations, recs[i])
	}
	return groups
}
