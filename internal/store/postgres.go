// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"supplier-matching/internal/common/database"
	"supplier-matching/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrRFQNotFound = errors.New("rfq not found")
)

// TrendWindow splits feedback into recent and prior periods for trend stats.
const TrendWindow = 90 * 24 * time.Hour

const rfqColumns = `id, buyer_id, title, description, category, quantity, unit, deadline,
	city, state, country, latitude, longitude, budget_min, budget_max,
	specifications, status, created_at`

const supplierColumns = `id, company_name, description, categories, keywords,
	city, state, country, latitude, longitude, verified, risk_score, risk_grade,
	on_time_rate, past_order_count, typical_unit_price, avg_lead_time_days, email, phone`

const recommendationColumns = `rfq_id, supplier_id, supplier_name, match_score, match_reason,
	match_factors, recommended, contacted, responded, created_at, updated_at`

// SupplierContact is a recommended supplier with the details needed to notify it.
type SupplierContact struct {
	SupplierID   int64
	SupplierName string
	Email        string
	Phone        string
	MatchScore   int
	MatchReason  string
}

// PostgresStore reads RFQs and suppliers and persists recommendations and feedback.
type PostgresStore struct {
	client *database.PostgresClient
}

func NewPostgresStore(client *database.PostgresClient) *PostgresStore {
	return &PostgresStore{client: client}
}

// ==========================
// RFQs
// ==========================

func (s *PostgresStore) GetRFQ(ctx context.Context, id int64) (*models.RFQ, error) {
	row := s.client.DB.QueryRowContext(ctx, `SELECT `+rfqColumns+` FROM rfqs WHERE id = $1`, id)

	var (
		rfq                          models.RFQ
		buyerID, description, unit   sql.NullString
		city, state, country, status sql.NullString
		lat, lon                     sql.NullFloat64
		deadline                     sql.NullTime
		specs                        pq.StringArray
	)

	err := row.Scan(
		&rfq.ID, &buyerID, &rfq.Title, &description, &rfq.Category, &rfq.Quantity, &unit, &deadline,
		&city, &state, &country, &lat, &lon, &rfq.BudgetMin, &rfq.BudgetMax,
		&specs, &status, &rfq.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRFQNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query rfq %d: %w", id, err)
	}

	rfq.BuyerID = buyerID.String
	rfq.Description = description.String
	rfq.Unit = unit.String
	rfq.Status = status.String
	rfq.Specifications = []string(specs)
	if deadline.Valid {
		d := deadline.Time
		rfq.Deadline = &d
	}
	rfq.Location = location(city, state, country, lat, lon)

	return &rfq, nil
}

// ==========================
// Suppliers
// ==========================

// ListCandidateSuppliers returns suppliers serving category, verified first.
// An empty category lists every supplier up to limit.
func (s *PostgresStore) ListCandidateSuppliers(ctx context.Context, category string, limit int) ([]models.SupplierProfile, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers
		WHERE $1 = '' OR EXISTS (SELECT 1 FROM unnest(categories) c WHERE lower(c) = lower($1))
		ORDER BY verified DESC, id ASC
		LIMIT $2`

	rows, err := s.client.DB.QueryContext(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("query candidate suppliers: %w", err)
	}
	defer rows.Close()

	return scanSuppliers(rows)
}

// GetSuppliersByIDs loads profiles for ids. Unknown ids are skipped.
func (s *PostgresStore) GetSuppliersByIDs(ctx context.Context, ids []int64) ([]models.SupplierProfile, error) {
	if len(ids) == 0 {
		return []models.SupplierProfile{}, nil
	}

	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = ANY($1) ORDER BY id ASC`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("query suppliers by id: %w", err)
	}
	defer rows.Close()

	return scanSuppliers(rows)
}

func scanSuppliers(rows *sql.Rows) ([]models.SupplierProfile, error) {
	suppliers := []models.SupplierProfile{}
	for rows.Next() {
		var (
			sp                          models.SupplierProfile
			description, riskGrade      sql.NullString
			city, state, country        sql.NullString
			email, phone                sql.NullString
			categories, keywords        pq.StringArray
			lat, lon, riskScore, onTime sql.NullFloat64
			leadTime                    sql.NullInt64
			price                       decimal.NullDecimal
		)

		if err := rows.Scan(
			&sp.ID, &sp.CompanyName, &description, &categories, &keywords,
			&city, &state, &country, &lat, &lon, &sp.Verified, &riskScore, &riskGrade,
			&onTime, &sp.PastOrderCount, &price, &leadTime, &email, &phone,
		); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}

		sp.Description = description.String
		sp.Categories = []string(categories)
		sp.Keywords = []string(keywords)
		sp.Location = location(city, state, country, lat, lon)
		sp.RiskScore = floatPtr(riskScore)
		sp.RiskGrade = riskGrade.String
		sp.OnTimeRate = floatPtr(onTime)
		sp.TypicalUnitPrice = price
		sp.Email = email.String
		sp.Phone = phone.String
		if leadTime.Valid {
			days := int(leadTime.Int64)
			sp.AvgLeadTimeDays = &days
		}

		suppliers = append(suppliers, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suppliers: %w", err)
	}
	return suppliers, nil
}

// GetSupplierStats aggregates match_feedback for the given suppliers. Similar
// RFQs are those sharing category. Suppliers without feedback are absent.
func (s *PostgresStore) GetSupplierStats(ctx context.Context, ids []int64, category string, now time.Time) (map[int64]*models.SupplierStats, error) {
	stats := make(map[int64]*models.SupplierStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	query := `SELECT f.supplier_id,
			COUNT(*),
			COUNT(*) FILTER (WHERE f.was_successful),
			COUNT(*) FILTER (WHERE f.created_at >= $2),
			COUNT(*) FILTER (WHERE f.created_at >= $2 AND f.was_successful),
			COUNT(*) FILTER (WHERE f.created_at < $2),
			COUNT(*) FILTER (WHERE f.created_at < $2 AND f.was_successful),
			COUNT(*) FILTER (WHERE lower(r.category) = lower($3)),
			COUNT(*) FILTER (WHERE lower(r.category) = lower($3) AND f.was_successful)
		FROM match_feedback f
		LEFT JOIN rfqs r ON r.id = f.rfq_id
		WHERE f.supplier_id = ANY($1)
		GROUP BY f.supplier_id`

	rows, err := s.client.DB.QueryContext(ctx, query, pq.Array(ids), now.Add(-TrendWindow), category)
	if err != nil {
		return nil, fmt.Errorf("query supplier stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			supplierID                 int64
			total, success             int
			recentTotal, recentSuccess int
			priorTotal, priorSuccess   int
			similarTotal, similarWins  int
		)
		if err := rows.Scan(&supplierID, &total, &success, &recentTotal, &recentSuccess,
			&priorTotal, &priorSuccess, &similarTotal, &similarWins); err != nil {
			return nil, fmt.Errorf("scan supplier stats: %w", err)
		}

		stats[supplierID] = &models.SupplierStats{
			FeedbackCount:     total,
			SuccessCount:      success,
			RecentSuccessRate: rate(recentSuccess, recentTotal),
			PriorSuccessRate:  rate(priorSuccess, priorTotal),
			SimilarRFQCount:   similarTotal,
			SimilarRFQWins:    similarWins,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supplier stats: %w", err)
	}
	return stats, nil
}

// ==========================
// Recommendations
// ==========================

// SaveRecommendations upserts recs for rfqID in one transaction. contacted and
// responded survive re-generation. Uncontacted rows for suppliers that no
// longer match are removed.
func (s *PostgresStore) SaveRecommendations(ctx context.Context, rfqID int64, recs []models.SupplierRecommendation) error {
	return s.client.WithTx(ctx, func(tx *sql.Tx) error {
		ids := make([]int64, 0, len(recs))
		for i := range recs {
			rec := &recs[i]
			factors, err := json.Marshal(rec.MatchFactors)
			if err != nil {
				return fmt.Errorf("encode factors for supplier %d: %w", rec.SupplierID, err)
			}

			_, err = tx.ExecContext(ctx, `INSERT INTO supplier_recommendations
					(rfq_id, supplier_id, supplier_name, match_score, match_reason, match_factors,
					 recommended, contacted, responded, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, false, false, $8, $8)
				ON CONFLICT (rfq_id, supplier_id) DO UPDATE SET
					supplier_name = EXCLUDED.supplier_name,
					match_score   = EXCLUDED.match_score,
					match_reason  = EXCLUDED.match_reason,
					match_factors = EXCLUDED.match_factors,
					recommended   = EXCLUDED.recommended,
					updated_at    = EXCLUDED.updated_at`,
				rfqID, rec.SupplierID, rec.SupplierName, rec.MatchScore, rec.MatchReason, factors,
				rec.Recommended, rec.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("upsert recommendation for supplier %d: %w", rec.SupplierID, err)
			}
			ids = append(ids, rec.SupplierID)
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM supplier_recommendations
			WHERE rfq_id = $1 AND NOT contacted AND NOT (supplier_id = ANY($2))`,
			rfqID, pq.Array(ids),
		)
		if err != nil {
			return fmt.Errorf("prune stale recommendations: %w", err)
		}
		return nil
	})
}

// ListRecommendations returns stored recommendations, best first.
func (s *PostgresStore) ListRecommendations(ctx context.Context, rfqID int64) ([]models.SupplierRecommendation, error) {
	rows, err := s.client.DB.QueryContext(ctx, `SELECT `+recommendationColumns+`
		FROM supplier_recommendations
		WHERE rfq_id = $1
		ORDER BY match_score DESC, supplier_id ASC`, rfqID)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	recs := []models.SupplierRecommendation{}
	for rows.Next() {
		var (
			rec          models.SupplierRecommendation
			supplierName sql.NullString
			reason       sql.NullString
			factors      []byte
		)
		if err := rows.Scan(&rec.RFQID, &rec.SupplierID, &supplierName, &rec.MatchScore, &reason,
			&factors, &rec.Recommended, &rec.Contacted, &rec.Responded, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}

		rec.SupplierName = supplierName.String
		rec.MatchReason = reason.String
		rec.MatchFactors = []models.MatchFactor{}
		if len(factors) > 0 {
			if err := json.Unmarshal(factors, &rec.MatchFactors); err != nil {
				return nil, fmt.Errorf("decode factors for supplier %d: %w", rec.SupplierID, err)
			}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return recs, nil
}

// ListRecommendedContacts returns the contact details of every recommended
// supplier for rfqID that has not been contacted yet, best first.
func (s *PostgresStore) ListRecommendedContacts(ctx context.Context, rfqID int64) ([]SupplierContact, error) {
	rows, err := s.client.DB.QueryContext(ctx, `SELECT r.supplier_id, s.company_name, s.email, s.phone,
			r.match_score, r.match_reason
		FROM supplier_recommendations r
		JOIN suppliers s ON s.id = r.supplier_id
		WHERE r.rfq_id = $1 AND r.recommended AND NOT r.contacted
		ORDER BY r.match_score DESC, r.supplier_id ASC`, rfqID)
	if err != nil {
		return nil, fmt.Errorf("query recommended contacts: %w", err)
	}
	defer rows.Close()

	contacts := []SupplierContact{}
	for rows.Next() {
		var (
			c                    SupplierContact
			email, phone, reason sql.NullString
		)
		if err := rows.Scan(&c.SupplierID, &c.SupplierName, &email, &phone, &c.MatchScore, &reason); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.Email = email.String
		c.Phone = phone.String
		c.MatchReason = reason.String
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

// MarkContacted flags the given suppliers as contacted for rfqID.
func (s *PostgresStore) MarkContacted(ctx context.Context, rfqID int64, supplierIDs []int64) (int64, error) {
	if len(supplierIDs) == 0 {
		return 0, nil
	}
	res, err := s.client.DB.ExecContext(ctx, `UPDATE supplier_recommendations
		SET contacted = true, updated_at = now()
		WHERE rfq_id = $1 AND supplier_id = ANY($2)`,
		rfqID, pq.Array(supplierIDs),
	)
	if err != nil {
		return 0, fmt.Errorf("mark contacted: %w", err)
	}
	return res.RowsAffected()
}

// ==========================
// Feedback
// ==========================

// InsertFeedback appends one feedback record. The caller assigns ID and CreatedAt.
func (s *PostgresStore) InsertFeedback(ctx context.Context, fb *models.FeedbackRecord) error {
	_, err := s.client.DB.ExecContext(ctx, `INSERT INTO match_feedback
			(id, rfq_id, supplier_id, was_successful, buyer_feedback, supplier_feedback, feedback_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		fb.ID, fb.RFQID, fb.SupplierID, fb.WasSuccessful,
		nullInt(fb.BuyerFeedback), nullInt(fb.SupplierFeedback), nullString(fb.FeedbackNotes), fb.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ==========================
// Helpers
// ==========================

func location(city, state, country sql.NullString, lat, lon sql.NullFloat64) models.Location {
	return models.Location{
		City:      city.String,
		State:     state.String,
		Country:   country.String,
		Latitude:  floatPtr(lat),
		Longitude: floatPtr(lon),
	}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func rate(success, total int) *float64 {
	if total <= 0 {
		return nil
	}
	r := float64(success) / float64(total)
	return &r
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
