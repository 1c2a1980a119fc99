package cascade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

const defaultChunkSize = 500

// GormStore runs cascade statements through gorm. Each call is its own
// statement (or one statement per chunk); nothing is wrapped in a transaction.
type GormStore struct {
	db        *gorm.DB
	log       *logger.Logger
	chunkSize int
}

func NewGormStore(db *gorm.DB, baseLog *logger.Logger) *GormStore {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &GormStore{
		db:        db,
		log:       baseLog.With("store", "CascadeGormStore"),
		chunkSize: defaultChunkSize,
	}
}

// WithChunkSize caps how many ids go into one IN list.
func (s *GormStore) WithChunkSize(n int) *GormStore {
	if n <= 0 {
		n = defaultChunkSize
	}
	cp := *s
	cp.chunkSize = n
	return &cp
}

func (s *GormStore) FetchIDs(ctx context.Context, collection, selectColumn, filterColumn string, values []uuid.UUID) ([]uuid.UUID, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("cascade store not initialized")
	}
	seen := map[uuid.UUID]bool{}
	out := []uuid.UUID{}
	err := s.eachChunk(values, func(chunk []uuid.UUID) error {
		var ids []uuid.UUID
		if err := s.db.WithContext(ctx).
			Table(collection).
			Where(inExpr(filterColumn, chunk)).
			Pluck(selectColumn, &ids).Error; err != nil {
			return fmt.Errorf("fetch %s.%s: %w", collection, selectColumn, err)
		}
		for _, id := range ids {
			if id == uuid.Nil || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteWhere removes matching rows. When values span several chunks the
// chunks share one transaction so the step applies as a whole or not at all.
func (s *GormStore) DeleteWhere(ctx context.Context, collection, filterColumn string, values []uuid.UUID) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("cascade store not initialized")
	}
	run := func(db *gorm.DB) (int64, error) {
		var total int64
		err := s.eachChunk(values, func(chunk []uuid.UUID) error {
			res := db.WithContext(ctx).Exec("DELETE FROM ? WHERE ? IN ?",
				clause.Table{Name: collection}, clause.Column{Name: filterColumn}, chunk)
			if res.Error != nil {
				return fmt.Errorf("delete %s: %w", collection, res.Error)
			}
			total += res.RowsAffected
			return nil
		})
		return total, err
	}
	if len(values) <= s.chunkSize {
		return run(s.db)
	}

	var total int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := run(tx)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug("chunked delete committed", "collection", collection, "rows", total, "chunks", (len(values)+s.chunkSize-1)/s.chunkSize)
	return total, nil
}

func (s *GormStore) CountWhere(ctx context.Context, collection, filterColumn string, values []uuid.UUID) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("cascade store not initialized")
	}
	var total int64
	err := s.eachChunk(values, func(chunk []uuid.UUID) error {
		var n int64
		if err := s.db.WithContext(ctx).
			Table(collection).
			Where(inExpr(filterColumn, chunk)).
			Count(&n).Error; err != nil {
			return fmt.Errorf("count %s: %w", collection, err)
		}
		total += n
		return nil
	})
	return total, err
}

func (s *GormStore) eachChunk(values []uuid.UUID, fn func([]uuid.UUID) error) error {
	size := s.chunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		if err := fn(values[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func inExpr(column string, ids []uuid.UUID) clause.IN {
	vals := make([]interface{}, len(ids))
	for i, id := range ids {
		vals[i] = id
	}
	return clause.IN{Column: clause.Column{Name: column}, Values: vals}
}
