// internal/store/search.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"supplier-matching/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
)

// SupplierSearch finds candidate suppliers for an RFQ in the supplier index.
type SupplierSearch struct {
	client *elasticsearch.Client
	index  string
}

func NewSupplierSearch(client *elasticsearch.Client, index string) *SupplierSearch {
	return &SupplierSearch{client: client, index: index}
}

// Index returns the index name queried.
func (s *SupplierSearch) Index() string {
	return s.index
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				ID int64 `json:"id"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// CandidateIDs returns up to limit supplier ids ordered by relevance.
func (s *SupplierSearch) CandidateIDs(ctx context.Context, rfq *models.RFQ, limit int) ([]int64, error) {
	body, err := json.Marshal(buildCandidateQuery(rfq, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", ErrSearchQueryFailed, err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchQueryFailed, err)
	}

	ids := make([]int64, 0, len(parsed.Hits.Hits))
	seen := make(map[int64]struct{}, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id := hit.Source.ID
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// buildCandidateQuery favours category matches, then free-text relevance, then
// same-country suppliers. At least one clause must match.
func buildCandidateQuery(rfq *models.RFQ, limit int) map[string]interface{} {
	should := []interface{}{}

	if rfq.Category != "" {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{
				"categories": map[string]interface{}{"query": rfq.Category, "boost": 3},
			},
		})
	}

	text := strings.TrimSpace(strings.Join(append([]string{rfq.Title, rfq.Description}, rfq.Specifications...), " "))
	if text != "" {
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"keywords^2", "description", "company_name"},
				"type":   "best_fields",
			},
		})
	}

	if rfq.Location.Country != "" {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"country": strings.ToLower(rfq.Location.Country)},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(should) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		}
	}

	return map[string]interface{}{
		"size":    limit,
		"_source": []string{"id"},
		"query":   query,
	}
}

type supplierDocument struct {
	ID          int64    `json:"id"`
	CompanyName string   `json:"company_name"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories"`
	Keywords    []string `json:"keywords,omitempty"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country,omitempty"`
	Verified    bool     `json:"verified"`
}

// IndexSupplier writes one supplier into the search index, keyed by id. The
// country is lowercased to match the term clause in buildCandidateQuery.
func (s *SupplierSearch) IndexSupplier(ctx context.Context, supplier *models.SupplierProfile, refresh bool) error {
	body, err := json.Marshal(supplierDocument{
		ID:          supplier.ID,
		CompanyName: supplier.CompanyName,
		Description: supplier.Description,
		Categories:  supplier.Categories,
		Keywords:    supplier.Keywords,
		City:        supplier.Location.City,
		Country:     strings.ToLower(supplier.Location.Country),
		Verified:    supplier.Verified,
	})
	if err != nil {
		return fmt.Errorf("encode supplier %d: %w", supplier.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: strconv.FormatInt(supplier.ID, 10),
		Body:       bytes.NewReader(body),
	}
	if refresh {
		req.Refresh = "true"
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index supplier %d: %w", supplier.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index supplier %d: %s", supplier.ID, res.Status())
	}
	return nil
}
