package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Tables keyed directly by lead_id. None of them is referenced by anything
// else, so they can be cleared in any order before the lead itself.

type LeadInteraction struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Kind       string         `gorm:"column:kind;not null;index" json:"kind"`
	Payload    datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	OccurredAt time.Time      `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
}

func (LeadInteraction) TableName() string { return "lead_interaction" }

type LeadEvaluation struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Score   float64 `gorm:"column:score;not null;default:0" json:"score"`
	Summary string  `gorm:"column:summary;type:text" json:"summary,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LeadEvaluation) TableName() string { return "lead_evaluation" }

type LeadStageHistory struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	FromStage string    `gorm:"column:from_stage;not null;default:''" json:"from_stage"`
	ToStage   string    `gorm:"column:to_stage;not null" json:"to_stage"`
	ChangedAt time.Time `gorm:"column:changed_at;not null;index" json:"changed_at"`
}

func (LeadStageHistory) TableName() string { return "lead_stage_history" }

type LeadFieldChange struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Field     string         `gorm:"column:field;not null" json:"field"`
	OldValue  datatypes.JSON `gorm:"column:old_value" json:"old_value,omitempty"`
	NewValue  datatypes.JSON `gorm:"column:new_value" json:"new_value,omitempty"`
	ChangedBy *uuid.UUID     `gorm:"type:uuid;column:changed_by" json:"changed_by,omitempty"`
	ChangedAt time.Time      `gorm:"column:changed_at;not null;index" json:"changed_at"`
}

func (LeadFieldChange) TableName() string { return "lead_field_change" }

type LeadTagRelation struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index;uniqueIndex:idx_lead_tag_relation_pair,priority:1" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`
	TagID  uuid.UUID `gorm:"type:uuid;column:tag_id;not null;index;uniqueIndex:idx_lead_tag_relation_pair,priority:2" json:"tag_id"`
	Tag    *LeadTag  `gorm:"foreignKey:TagID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LeadTagRelation) TableName() string { return "lead_tag_relation" }

type LeadComment struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	AuthorID *uuid.UUID `gorm:"type:uuid;column:author_id" json:"author_id,omitempty"`
	Body     string     `gorm:"column:body;type:text;not null" json:"body"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (LeadComment) TableName() string { return "lead_comment" }

type LeadTemperatureHistory struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	FromTemperature string    `gorm:"column:from_temperature;not null;default:''" json:"from_temperature"`
	ToTemperature   string    `gorm:"column:to_temperature;not null" json:"to_temperature"`
	ChangedAt       time.Time `gorm:"column:changed_at;not null;index" json:"changed_at"`
}

func (LeadTemperatureHistory) TableName() string { return "lead_temperature_history" }

// LeadPIIToken maps a tokenized field value back to the lead it belongs to.
type LeadPIIToken struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Field string `gorm:"column:field;not null" json:"field"`
	Token string `gorm:"column:token;not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LeadPIIToken) TableName() string { return "lead_pii_token" }

type LeadPersonalData struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;uniqueIndex" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Payload datatypes.JSON `gorm:"column:payload" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LeadPersonalData) TableName() string { return "lead_personal_data" }
