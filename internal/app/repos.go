package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/leadops-backend/internal/data/repos"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

type Repos struct {
	Lead            repos.LeadRepo
	LeadDeletionLog repos.LeadDeletionLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Lead:            repos.NewLeadRepo(db, log),
		LeadDeletionLog: repos.NewLeadDeletionLogRepo(db, log),
	}
}
