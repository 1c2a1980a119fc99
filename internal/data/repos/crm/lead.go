package crm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/leadops-backend/internal/domain"
	"github.com/yungbote/leadops-backend/internal/platform/dbctx"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

// LeadRepo covers the reads the purge surface needs. Lead writes live in the
// console's intake service.
type LeadRepo interface {
	Create(dbc dbctx.Context, leads []*types.Lead) ([]*types.Lead, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lead, error)
	Exists(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type leadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeadRepo(db *gorm.DB, baseLog *logger.Logger) LeadRepo {
	return &leadRepo{
		db:  db,
		log: baseLog.With("repo", "LeadRepo"),
	}
}

func (r *leadRepo) Create(dbc dbctx.Context, leads []*types.Lead) ([]*types.Lead, error) {
	if len(leads) == 0 {
		return []*types.Lead{}, nil
	}
	for _, l := range leads {
		if l != nil && l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// GetByID returns nil, nil when the lead does not exist.
func (r *leadRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lead, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var lead types.Lead
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&lead).Error; err != nil {
		return nil, err
	}
	if lead.ID == uuid.Nil {
		return nil, nil
	}
	return &lead, nil
}

func (r *leadRepo) Exists(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	var n int64
	if err := dbc.DB(r.db).Model(&types.Lead{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
