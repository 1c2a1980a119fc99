package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LeadDeletionLog records one cascade run. It has no foreign key
// to lead so it outlives the row it describes.
type LeadDeletionLog struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`

	Verdict     string         `gorm:"column:verdict;not null;index" json:"verdict"`
	Status      string         `gorm:"column:status;not null" json:"status"`
	FailedStep  string         `gorm:"column:failed_step;not null;default:''" json:"failed_step,omitempty"`
	RequestedBy string         `gorm:"column:requested_by;not null;default:''" json:"requested_by,omitempty"`
	Outcomes    datatypes.JSON `gorm:"column:outcomes" json:"outcomes"`

	StartedAt  time.Time `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt time.Time `gorm:"column:finished_at;not null" json:"finished_at"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}

func (LeadDeletionLog) TableName() string { return "lead_deletion_log" }
