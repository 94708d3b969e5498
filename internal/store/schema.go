// internal/store/schema.go
package store

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var Schema string

// EnsureSchema creates the matching tables when they are missing. Every
// statement is idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
