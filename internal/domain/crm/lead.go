package crm

import (
	"time"

	"github.com/google/uuid"
)

// Lead is the root of the lead aggregate. Every other table in this package
// except LeadTag and LeadDeletionLog hangs off it, directly or through
// Conversation.
type Lead struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	FullName    string `gorm:"column:full_name;not null;default:''" json:"full_name"`
	Email       string `gorm:"column:email;index" json:"email,omitempty"`
	Phone       string `gorm:"column:phone;index" json:"phone,omitempty"`
	Source      string `gorm:"column:source;not null;default:'manual';index" json:"source"`
	Stage       string `gorm:"column:stage;not null;default:'new';index" json:"stage"`
	Temperature string `gorm:"column:temperature;not null;default:'cold'" json:"temperature"`

	OwnerID *uuid.UUID `gorm:"type:uuid;column:owner_id;index" json:"owner_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Lead) TableName() string { return "lead" }

type LeadTag struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Color string    `gorm:"column:color;not null;default:''" json:"color"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LeadTag) TableName() string { return "lead_tag" }
