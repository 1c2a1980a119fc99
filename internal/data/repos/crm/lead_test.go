package crm

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/leadops-backend/internal/data/repos/testutil"
	types "github.com/yungbote/leadops-backend/internal/domain"
	"github.com/yungbote/leadops-backend/internal/platform/dbctx"
)

func TestLeadRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewLeadRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.Lead{{FullName: "Ana", Source: "whatsapp", Stage: "new", Temperature: "warm"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected an id to be assigned, got %+v", created)
	}
	if rows, err := repo.Create(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("Create(nil): rows=%v err=%v", rows, err)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || got == nil || got.FullName != "Ana" {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%+v err=%v", missing, err)
	}

	if ok, err := repo.Exists(dbc, created[0].ID); err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.Exists(dbc, uuid.Nil); err != nil || ok {
		t.Fatalf("Exists(nil): ok=%v err=%v", ok, err)
	}
}
