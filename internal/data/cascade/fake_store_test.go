package cascade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type fakeRow map[string]uuid.UUID

type fakeFK struct {
	Column string
	Parent string
}

// fakeStore is an in-memory Store that enforces the lead schema's foreign
// keys on delete and can inject failures per operation and collection.
type fakeStore struct {
	mu          sync.Mutex
	rows        map[string][]fakeRow
	fks         map[string][]fakeFK
	fail        map[string]error
	calls       []string
	delay       time.Duration
	inFlight    map[string]int
	maxInFlight int
	onCall      func(op, collection string)
}

var errFKViolation = errors.New("fake: foreign key violation")

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows: map[string][]fakeRow{},
		fks: map[string][]fakeFK{
			"conversation":             {{"lead_id", "lead"}},
			"message":                  {{"conversation_id", "conversation"}},
			"message_evaluation":       {{"message_id", "message"}},
			"response_evaluation":      {{"conversation_id", "conversation"}},
			"audio_message":            {{"message_id", "message"}},
			"agent_message":            {{"conversation_id", "conversation"}},
			"lead_interaction":         {{"lead_id", "lead"}},
			"lead_evaluation":          {{"lead_id", "lead"}},
			"lead_stage_history":       {{"lead_id", "lead"}},
			"lead_field_change":        {{"lead_id", "lead"}},
			"lead_tag_relation":        {{"lead_id", "lead"}, {"tag_id", "lead_tag"}},
			"lead_comment":             {{"lead_id", "lead"}},
			"lead_temperature_history": {{"lead_id", "lead"}},
			"lead_pii_token":           {{"lead_id", "lead"}},
			"lead_personal_data":       {{"lead_id", "lead"}},
		},
		fail:     map[string]error{},
		inFlight: map[string]int{},
	}
}

func (f *fakeStore) insert(collection string, row fakeRow) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row["id"] == uuid.Nil {
		row["id"] = uuid.New()
	}
	f.rows[collection] = append(f.rows[collection], row)
	return row["id"]
}

func (f *fakeStore) failOn(op, collection string, err error) {
	f.fail[op+":"+collection] = err
}

func (f *fakeStore) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[collection])
}

func (f *fakeStore) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rows := range f.rows {
		n += len(rows)
	}
	return n
}

func (f *fakeStore) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) enter(op, collection string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op+":"+collection)
	f.inFlight[op]++
	if f.inFlight[op] > f.maxInFlight {
		f.maxInFlight = f.inFlight[op]
	}
	err := f.fail[op+":"+collection]
	hook := f.onCall
	delay := f.delay
	f.mu.Unlock()

	if hook != nil {
		hook(op, collection)
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (f *fakeStore) leave(op string) {
	f.mu.Lock()
	f.inFlight[op]--
	f.mu.Unlock()
}

func matches(v uuid.UUID, values []uuid.UUID) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (f *fakeStore) FetchIDs(_ context.Context, collection, selectColumn, filterColumn string, values []uuid.UUID) ([]uuid.UUID, error) {
	defer f.leave("fetch")
	if err := f.enter("fetch", collection); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	out := []uuid.UUID{}
	for _, r := range f.rows[collection] {
		if matches(r[filterColumn], values) && !seen[r[selectColumn]] {
			seen[r[selectColumn]] = true
			out = append(out, r[selectColumn])
		}
	}
	return out, nil
}

func (f *fakeStore) CountWhere(_ context.Context, collection, filterColumn string, values []uuid.UUID) (int64, error) {
	defer f.leave("count")
	if err := f.enter("count", collection); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.rows[collection] {
		if matches(r[filterColumn], values) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeleteWhere(_ context.Context, collection, filterColumn string, values []uuid.UUID) (int64, error) {
	defer f.leave("delete")
	if err := f.enter("delete", collection); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var keep []fakeRow
	var gone []uuid.UUID
	for _, r := range f.rows[collection] {
		if matches(r[filterColumn], values) {
			gone = append(gone, r["id"])
			continue
		}
		keep = append(keep, r)
	}
	for child, fks := range f.fks {
		for _, fk := range fks {
			if fk.Parent != collection {
				continue
			}
			for _, r := range f.rows[child] {
				if matches(r[fk.Column], gone) {
					return 0, fmt.Errorf("%w: %s.%s still references %s", errFKViolation, child, fk.Column, collection)
				}
			}
		}
	}
	f.rows[collection] = keep
	return int64(len(gone)), nil
}

type leadGraph struct {
	LeadID        uuid.UUID
	Conversations []uuid.UUID
	Messages      []uuid.UUID
}

type graphShape struct {
	Conversations        int
	MessagesPerConv      int
	EvaluatedMessages    int
	AudioPerMessage      int
	AgentPerConv         int
	ResponseEvalsPerConv int
	Interactions         int
	Comments             int
	TagRelations         int
	PIITokens            int
	PersonalData         bool
}

func seedLead(f *fakeStore, shape graphShape) leadGraph {
	g := leadGraph{LeadID: f.insert("lead", fakeRow{})}
	for c := 0; c < shape.Conversations; c++ {
		convID := f.insert("conversation", fakeRow{"lead_id": g.LeadID})
		g.Conversations = append(g.Conversations, convID)
		for m := 0; m < shape.MessagesPerConv; m++ {
			msgID := f.insert("message", fakeRow{"conversation_id": convID})
			g.Messages = append(g.Messages, msgID)
			for a := 0; a < shape.AudioPerMessage; a++ {
				f.insert("audio_message", fakeRow{"message_id": msgID})
			}
		}
		for a := 0; a < shape.AgentPerConv; a++ {
			f.insert("agent_message", fakeRow{"conversation_id": convID})
		}
		for r := 0; r < shape.ResponseEvalsPerConv; r++ {
			f.insert("response_evaluation", fakeRow{"conversation_id": convID})
		}
	}
	for i := 0; i < shape.EvaluatedMessages && i < len(g.Messages); i++ {
		f.insert("message_evaluation", fakeRow{"message_id": g.Messages[i]})
	}
	for i := 0; i < shape.Interactions; i++ {
		f.insert("lead_interaction", fakeRow{"lead_id": g.LeadID})
	}
	for i := 0; i < shape.Comments; i++ {
		f.insert("lead_comment", fakeRow{"lead_id": g.LeadID})
	}
	for i := 0; i < shape.TagRelations; i++ {
		tagID := f.insert("lead_tag", fakeRow{})
		f.insert("lead_tag_relation", fakeRow{"lead_id": g.LeadID, "tag_id": tagID})
	}
	for i := 0; i < shape.PIITokens; i++ {
		f.insert("lead_pii_token", fakeRow{"lead_id": g.LeadID})
	}
	if shape.PersonalData {
		f.insert("lead_personal_data", fakeRow{"lead_id": g.LeadID})
	}
	return g
}
