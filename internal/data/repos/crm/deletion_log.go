package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/leadops-backend/internal/domain"
	"github.com/yungbote/leadops-backend/internal/platform/dbctx"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

const defaultDeletionLogLimit = 50

type LeadDeletionLogRepo interface {
	Create(dbc dbctx.Context, entry *types.LeadDeletionLog) (*types.LeadDeletionLog, error)
	ListByLead(dbc dbctx.Context, leadID uuid.UUID, limit int) ([]*types.LeadDeletionLog, error)
	ListRecent(dbc dbctx.Context, since time.Time, limit int) ([]*types.LeadDeletionLog, error)
}

type leadDeletionLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeadDeletionLogRepo(db *gorm.DB, baseLog *logger.Logger) LeadDeletionLogRepo {
	return &leadDeletionLogRepo{
		db:  db,
		log: baseLog.With("repo", "LeadDeletionLogRepo"),
	}
}

func (r *leadDeletionLogRepo) Create(dbc dbctx.Context, entry *types.LeadDeletionLog) (*types.LeadDeletionLog, error) {
	if entry == nil {
		return nil, nil
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByLead returns the runs recorded for leadID, newest first.
func (r *leadDeletionLogRepo) ListByLead(dbc dbctx.Context, leadID uuid.UUID, limit int) ([]*types.LeadDeletionLog, error) {
	out := []*types.LeadDeletionLog{}
	if leadID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("lead_id = ?", leadID).
		Order("started_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *leadDeletionLogRepo) ListRecent(dbc dbctx.Context, since time.Time, limit int) ([]*types.LeadDeletionLog, error) {
	out := []*types.LeadDeletionLog{}
	q := dbc.DB(r.db)
	if !since.IsZero() {
		q = q.Where("started_at >= ?", since)
	}
	if err := q.Order("started_at DESC").Limit(clampLimit(limit)).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultDeletionLogLimit
	}
	if limit > 500 {
		return 500
	}
	return limit
}
