// internal/workers/matching/generate-supplier-matches/models.go
package generatesuppliermatches

type Input struct {
	RFQID                 int64 `json:"rfqId"`
	UseAdvancedAlgorithms *bool `json:"useAdvancedAlgorithms,omitempty"`
}

type Output struct {
	MatchCount       int            `json:"matchCount"`
	RecommendedCount int            `json:"recommendedCount"`
	TopSupplierIDs   []int64        `json:"topSupplierIds"`
	Groups           map[string]int `json:"groups"`
	UsedAdvanced     bool           `json:"usedAdvancedAlgorithms"`
}

const inputSchema = `{
	"type": "object",
	"required": ["rfqId"],
	"properties": {
		"rfqId":                 {"type": "integer", "minimum": 1},
		"useAdvancedAlgorithms": {"type": ["boolean", "null"]}
	}
}`
