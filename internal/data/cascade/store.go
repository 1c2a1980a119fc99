package cascade

import (
	"context"

	"github.com/google/uuid"
)

// Store is the relational client the orchestrator runs against. Collection
// and column names come from a validated Plan.
type Store interface {
	// FetchIDs returns the distinct values of selectColumn for rows whose
	// filterColumn is in values.
	FetchIDs(ctx context.Context, collection, selectColumn, filterColumn string, values []uuid.UUID) ([]uuid.UUID, error)
	// DeleteWhere removes rows whose filterColumn is in values and returns the affected count.
	DeleteWhere(ctx context.Context, collection, filterColumn string, values []uuid.UUID) (int64, error)
	// CountWhere counts rows whose filterColumn is in values.
	CountWhere(ctx context.Context, collection, filterColumn string, values []uuid.UUID) (int64, error)
}
