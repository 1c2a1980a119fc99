package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/leadops-backend/internal/data/repos/crm"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

type LeadRepo = crm.LeadRepo
type LeadDeletionLogRepo = crm.LeadDeletionLogRepo

func NewLeadRepo(db *gorm.DB, baseLog *logger.Logger) LeadRepo { return crm.NewLeadRepo(db, baseLog) }
func NewLeadDeletionLogRepo(db *gorm.DB, baseLog *logger.Logger) LeadDeletionLogRepo {
	return crm.NewLeadDeletionLogRepo(db, baseLog)
}
