package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/leadops-backend/internal/domain/crm"
)

func create(tb testing.TB, ctx context.Context, tx *gorm.DB, what string, v interface{}) {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed %s: %v", what, err)
	}
}

func SeedLead(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *crm.Lead {
	tb.Helper()
	l := &crm.Lead{
		ID:       uuid.New(),
		FullName: name,
		Email:    name + "@example.com",
		Phone:    "+5511999990000",
		Source:   "whatsapp",
		Stage:    "new",
	}
	create(tb, ctx, tx, "lead", l)
	return l
}

func SeedConversation(tb testing.TB, ctx context.Context, tx *gorm.DB, leadID uuid.UUID) *crm.Conversation {
	tb.Helper()
	c := &crm.Conversation{ID: uuid.New(), LeadID: leadID, Channel: "whatsapp", Status: "open"}
	create(tb, ctx, tx, "conversation", c)
	return c
}

func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) *crm.Message {
	tb.Helper()
	m := &crm.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           "lead",
		Content:        "hello",
		Metadata:       datatypes.JSON([]byte("{}")),
	}
	create(tb, ctx, tx, "message", m)
	return m
}

func SeedMessageEvaluation(tb testing.TB, ctx context.Context, tx *gorm.DB, messageID uuid.UUID) *crm.MessageEvaluation {
	tb.Helper()
	e := &crm.MessageEvaluation{ID: uuid.New(), MessageID: messageID, Score: 0.8, Criteria: datatypes.JSON([]byte(`{"tone":"ok"}`))}
	create(tb, ctx, tx, "message evaluation", e)
	return e
}

func SeedAudioMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, messageID uuid.UUID) *crm.AudioMessage {
	tb.Helper()
	a := &crm.AudioMessage{ID: uuid.New(), MessageID: messageID, StoragePath: "audio/" + messageID.String() + ".ogg", DurationMS: 1200}
	create(tb, ctx, tx, "audio message", a)
	return a
}

func SeedAgentMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) *crm.AgentMessage {
	tb.Helper()
	a := &crm.AgentMessage{ID: uuid.New(), ConversationID: conversationID, AgentName: "sdr", Content: "draft"}
	create(tb, ctx, tx, "agent message", a)
	return a
}

func SeedResponseEvaluation(tb testing.TB, ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) *crm.ResponseEvaluation {
	tb.Helper()
	r := &crm.ResponseEvaluation{ID: uuid.New(), ConversationID: conversationID, Score: 0.5}
	create(tb, ctx, tx, "response evaluation", r)
	return r
}

// SeedLeadDependents writes one row into every table keyed directly by lead_id.
func SeedLeadDependents(tb testing.TB, ctx context.Context, tx *gorm.DB, leadID uuid.UUID) {
	tb.Helper()
	now := time.Now().UTC()
	tag := &crm.LeadTag{ID: uuid.New(), Name: "tag-" + uuid.NewString()[:8]}
	create(tb, ctx, tx, "lead tag", tag)

	create(tb, ctx, tx, "lead interaction", &crm.LeadInteraction{ID: uuid.New(), LeadID: leadID, Kind: "page_view", OccurredAt: now})
	create(tb, ctx, tx, "lead evaluation", &crm.LeadEvaluation{ID: uuid.New(), LeadID: leadID, Score: 42})
	create(tb, ctx, tx, "lead stage history", &crm.LeadStageHistory{ID: uuid.New(), LeadID: leadID, ToStage: "qualified", ChangedAt: now})
	create(tb, ctx, tx, "lead field change", &crm.LeadFieldChange{ID: uuid.New(), LeadID: leadID, Field: "stage",
		OldValue: datatypes.JSON([]byte(`"new"`)), NewValue: datatypes.JSON([]byte(`"qualified"`)), ChangedAt: now})
	create(tb, ctx, tx, "lead tag relation", &crm.LeadTagRelation{ID: uuid.New(), LeadID: leadID, TagID: tag.ID})
	create(tb, ctx, tx, "lead comment", &crm.LeadComment{ID: uuid.New(), LeadID: leadID, Body: "called twice"})
	create(tb, ctx, tx, "lead temperature history", &crm.LeadTemperatureHistory{ID: uuid.New(), LeadID: leadID, ToTemperature: "warm", ChangedAt: now})
	create(tb, ctx, tx, "lead pii token", &crm.LeadPIIToken{ID: uuid.New(), LeadID: leadID, Field: "email", Token: "tok_" + uuid.NewString()})
	create(tb, ctx, tx, "lead personal data", &crm.LeadPersonalData{ID: uuid.New(), LeadID: leadID, Payload: datatypes.JSON([]byte(`{"cpf":"x"}`))})
}

type LeadGraph struct {
	Lead          *crm.Lead
	Conversations []*crm.Conversation
	Messages      []*crm.Message
	Evaluated     []uuid.UUID
}

type LeadGraphShape struct {
	Conversations     int
	MessagesPerConv   int
	EvaluatedMessages int
	WithMedia         bool
	WithDependents    bool
}

// SeedLeadGraph seeds a lead with conversations, messages and (optionally)
// every kind of dependent row.
func SeedLeadGraph(tb testing.TB, ctx context.Context, tx *gorm.DB, shape LeadGraphShape) LeadGraph {
	tb.Helper()
	g := LeadGraph{Lead: SeedLead(tb, ctx, tx, "lead-"+uuid.NewString()[:8])}
	for c := 0; c < shape.Conversations; c++ {
		conv := SeedConversation(tb, ctx, tx, g.Lead.ID)
		g.Conversations = append(g.Conversations, conv)
		for m := 0; m < shape.MessagesPerConv; m++ {
			msg := SeedMessage(tb, ctx, tx, conv.ID)
			g.Messages = append(g.Messages, msg)
			if shape.WithMedia {
				SeedAudioMessage(tb, ctx, tx, msg.ID)
			}
		}
		if shape.WithMedia {
			SeedAgentMessage(tb, ctx, tx, conv.ID)
			SeedResponseEvaluation(tb, ctx, tx, conv.ID)
		}
	}
	for i := 0; i < shape.EvaluatedMessages && i < len(g.Messages); i++ {
		SeedMessageEvaluation(tb, ctx, tx, g.Messages[i].ID)
		g.Evaluated = append(g.Evaluated, g.Messages[i].ID)
	}
	if shape.WithDependents {
		SeedLeadDependents(tb, ctx, tx, g.Lead.ID)
	}
	return g
}

// CountRows counts rows of table whose column equals id.
func CountRows(tb testing.TB, ctx context.Context, tx *gorm.DB, table, column string, id uuid.UUID) int64 {
	tb.Helper()
	var n int64
	if err := tx.WithContext(ctx).Table(table).Where(column+" = ?", id).Count(&n).Error; err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	return n
}
