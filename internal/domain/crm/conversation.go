package crm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Conversation struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID uuid.UUID `gorm:"type:uuid;column:lead_id;not null;index" json:"lead_id"`
	Lead   *Lead     `gorm:"foreignKey:LeadID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Channel string `gorm:"column:channel;not null;default:'whatsapp';index" json:"channel"`
	Status  string `gorm:"column:status;not null;default:'open';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversation" }

type Message struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID     `gorm:"type:uuid;column:conversation_id;not null;index" json:"conversation_id"`
	Conversation   *Conversation `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Role     string         `gorm:"column:role;not null;index" json:"role"`
	Content  string         `gorm:"column:content;type:text;not null;default:''" json:"content"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string { return "message" }

type AudioMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;column:message_id;not null;index" json:"message_id"`
	Message   *Message  `gorm:"foreignKey:MessageID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	StoragePath string `gorm:"column:storage_path;not null" json:"storage_path"`
	DurationMS  int64  `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	Transcript  string `gorm:"column:transcript;type:text" json:"transcript,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AudioMessage) TableName() string { return "audio_message" }

// AgentMessage is an automated reply drafted by an agent for a conversation.
type AgentMessage struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID     `gorm:"type:uuid;column:conversation_id;not null;index" json:"conversation_id"`
	Conversation   *Conversation `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	AgentName string `gorm:"column:agent_name;not null;default:''" json:"agent_name"`
	Content   string `gorm:"column:content;type:text;not null;default:''" json:"content"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AgentMessage) TableName() string { return "agent_message" }

type ResponseEvaluation struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID     `gorm:"type:uuid;column:conversation_id;not null;index" json:"conversation_id"`
	Conversation   *Conversation `gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Score float64 `gorm:"column:score;not null;default:0" json:"score"`
	Notes string  `gorm:"column:notes;type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ResponseEvaluation) TableName() string { return "response_evaluation" }

type MessageEvaluation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;column:message_id;not null;index" json:"message_id"`
	Message   *Message  `gorm:"foreignKey:MessageID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`

	Score    float64        `gorm:"column:score;not null;default:0" json:"score"`
	Criteria datatypes.JSON `gorm:"column:criteria" json:"criteria,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MessageEvaluation) TableName() string { return "message_evaluation" }
