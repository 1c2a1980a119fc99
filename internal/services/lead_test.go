package services

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/leadops-backend/internal/clients/redis"
	types "github.com/yungbote/leadops-backend/internal/domain"
	domainagg "github.com/yungbote/leadops-backend/internal/domain/aggregates"
	"github.com/yungbote/leadops-backend/internal/observability"
	"github.com/yungbote/leadops-backend/internal/platform/dbctx"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

type fakeLeadAggregate struct {
	calls  []domainagg.DeleteLeadCascadeInput
	result domainagg.DeleteLeadCascadeResult
	err    error
	during func()
}

func (f *fakeLeadAggregate) Contract() domainagg.Contract { return domainagg.LeadAggregateContract }

func (f *fakeLeadAggregate) DeleteLeadCascade(_ context.Context, in domainagg.DeleteLeadCascadeInput) (domainagg.DeleteLeadCascadeResult, error) {
	f.calls = append(f.calls, in)
	if f.during != nil {
		f.during()
	}
	res := f.result
	res.LeadID = in.LeadID
	res.DryRun = in.DryRun
	return res, f.err
}

type fakeDeletionLogRepo struct {
	mu      sync.Mutex
	entries []*types.LeadDeletionLog
	err     error
}

func (f *fakeDeletionLogRepo) Create(_ dbctx.Context, entry *types.LeadDeletionLog) (*types.LeadDeletionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeDeletionLogRepo) ListByLead(_ dbctx.Context, leadID uuid.UUID, limit int) ([]*types.LeadDeletionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.LeadDeletionLog
	for _, e := range f.entries {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeDeletionLogRepo) ListRecent(dbctx.Context, time.Time, int) ([]*types.LeadDeletionLog, error) {
	return f.entries, nil
}

type fakePurgeLock struct {
	mu       sync.Mutex
	held     map[uuid.UUID]bool
	err      error
	released int
}

func (f *fakePurgeLock) Acquire(_ context.Context, leadID uuid.UUID) (redis.ReleaseFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.held == nil {
		f.held = map[uuid.UUID]bool{}
	}
	if f.held[leadID] {
		return nil, redis.ErrLockHeld
	}
	f.held[leadID] = true
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.held, leadID)
		f.released++
		return nil
	}, nil
}

func successResult() domainagg.DeleteLeadCascadeResult {
	now := time.Now().UTC()
	return domainagg.DeleteLeadCascadeResult{
		Verdict:     domainagg.LeadDeletionSuccess,
		Status:      "success",
		RootDeleted: true,
		Steps: []domainagg.LeadDeletionStep{
			{Name: "delete_lead", Kind: "root", Collection: "lead", Criticality: "critical", Status: "ok", Rows: 1},
		},
		StartedAt:  now,
		FinishedAt: now,
	}
}

func TestLeadServiceDeleteRecordsAuditLog(t *testing.T) {
	agg := &fakeLeadAggregate{result: successResult()}
	logs := &fakeDeletionLogRepo{}
	lock := &fakePurgeLock{}
	svc := NewLeadService(nil, logger.NewNop(), agg, logs, lock, nil, true)

	leadID := uuid.New()
	res, err := svc.DeleteLead(context.Background(), DeleteLeadInput{LeadID: leadID, RequestedBy: " ops@console "})
	if err != nil {
		t.Fatalf("DeleteLead: %v", err)
	}
	if !res.RootDeleted {
		t.Fatalf("expected root deleted: %+v", res)
	}
	if len(agg.calls) != 1 || !agg.calls[0].RequireExisting || agg.calls[0].RequestedBy != "ops@console" {
		t.Fatalf("unexpected aggregate input: %+v", agg.calls)
	}
	if len(logs.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(logs.entries))
	}
	entry := logs.entries[0]
	if entry.LeadID != leadID || entry.Verdict != "success" || entry.RequestedBy != "ops@console" {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if !strings.Contains(string(entry.Outcomes), `"name":"delete_lead"`) {
		t.Fatalf("outcomes should carry the step list: %s", entry.Outcomes)
	}
	if lock.released != 1 {
		t.Fatalf("lock should be released once, got %d", lock.released)
	}
}

func TestLeadServiceRequireExistingOverride(t *testing.T) {
	agg := &fakeLeadAggregate{result: successResult()}
	svc := NewLeadService(nil, logger.NewNop(), agg, nil, nil, nil, true)

	off := false
	if _, err := svc.DeleteLead(context.Background(), DeleteLeadInput{LeadID: uuid.New(), RequireExisting: &off}); err != nil {
		t.Fatalf("DeleteLead: %v", err)
	}
	if agg.calls[0].RequireExisting {
		t.Fatalf("override should disable strict mode")
	}
}

func TestLeadServiceRejectsConcurrentPurge(t *testing.T) {
	metrics := observability.New()
	lock := &fakePurgeLock{}
	agg := &fakeLeadAggregate{result: successResult()}
	svc := NewLeadService(nil, logger.NewNop(), agg, &fakeDeletionLogRepo{}, lock, metrics, false)

	leadID := uuid.New()
	var inner error
	agg.during = func() {
		agg.during = nil
		_, inner = svc.DeleteLead(context.Background(), DeleteLeadInput{LeadID: leadID})
	}
	if _, err := svc.DeleteLead(context.Background(), DeleteLeadInput{LeadID: leadID}); err != nil {
		t.Fatalf("outer DeleteLead: %v", err)
	}
	if !domainagg.IsCode(inner, domainagg.CodeConflict) {
		t.Fatalf("inner DeleteLead should conflict, got %v", inner)
	}
	if !errors.Is(inner, redis.ErrLockHeld) {
		t.Fatalf("conflict should wrap ErrLockHeld: %v", inner)
	}
	if len(agg.calls) != 1 {
		t.Fatalf("cascade should run once, got %d", len(agg.calls))
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	for _, want := range []string{`result="acquired"} 1`, `result="held"} 1`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}

func TestLeadServiceLockFailureIsRetryable(t *testing.T) {
	agg := &fakeLeadAggregate{result: successResult()}
	svc := NewLeadService(nil, logger.NewNop(), agg, nil, &fakePurgeLock{err: errors.New("connection refused")}, nil, false)

	_, err := svc.DeleteLead(context.Background(), DeleteLeadInput{LeadID: uuid.New()})
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable, got %v", err)
	}
	if len(agg.calls) != 0 {
		t.Fatalf("cascade must not run without the lock")
	}
}

func TestLeadServiceAbortedRunIsStillAudited(t *testing.T) {
	res := successResult()
	res.Verdict = domainagg.LeadDeletionAborted
	res.Status = "aborted"
	res.RootDeleted = false
	res.FailedStep = "delete_messages"
	aggErr := &domainagg.Error{Code: domainagg.CodeInternal, Op: "CRM.Lead.DeleteCascade", Step: "delete_messages", Message: "cascade aborted at delete_messages"}
	agg := &fakeLeadAggregate{result: res, err: aggErr}
	logs := &fakeDeletionLogRepo{}
	svc := NewLeadService(nil, logger.NewNop(), agg, logs, nil, nil, false)

	_, err := svc.DeleteLead(context.Background(), DeleteLeadInput{LeadID: uuid.New()})
	if domainagg.StepOf(err) != "delete_messages" {
		t.Fatalf("expected aggregate error to pass through, got %v", err)
	}
	if len(logs.entries) != 1 || logs.entries[0].FailedStep != "delete_messages" || logs.entries[0].Verdict != "aborted" {
		t.Fatalf("unexpected audit entries: %+v", logs.entries)
	}
}

func TestLeadServiceAuditFailureDoesNotFailDelete(t *testing.T) {
	agg := &fakeLeadAggregate{result: successResult()}
	logs := &fakeDeletionLogRepo{err: errors.New("disk full")}
	svc := NewLeadService(nil, logger.NewNop(), agg, logs, nil, nil, false)

	if _, err := svc.DeleteLead(context.Background(), DeleteLeadInput{LeadID: uuid.New()}); err != nil {
		t.Fatalf("audit failures must not surface: %v", err)
	}
}

func TestLeadServicePreviewSkipsLockAndAudit(t *testing.T) {
	agg := &fakeLeadAggregate{result: successResult()}
	logs := &fakeDeletionLogRepo{}
	lock := &fakePurgeLock{err: errors.New("should not be called")}
	svc := NewLeadService(nil, logger.NewNop(), agg, logs, lock, nil, false)

	res, err := svc.PreviewDeletion(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("PreviewDeletion: %v", err)
	}
	if !res.DryRun || !agg.calls[0].DryRun {
		t.Fatalf("preview must run as a dry run: %+v", agg.calls)
	}
	if len(logs.entries) != 0 {
		t.Fatalf("preview must not be audited")
	}
}

func TestLeadServiceValidation(t *testing.T) {
	agg := &fakeLeadAggregate{}
	svc := NewLeadService(nil, logger.NewNop(), agg, &fakeDeletionLogRepo{}, nil, nil, false)

	if _, err := svc.DeleteLead(context.Background(), DeleteLeadInput{}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("DeleteLead: expected validation, got %v", err)
	}
	if _, err := svc.ListDeletionLogs(dbctx.Context{Ctx: context.Background()}, uuid.Nil, 10); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("ListDeletionLogs: expected validation, got %v", err)
	}
	if len(agg.calls) != 0 {
		t.Fatalf("aggregate should not be called on invalid input")
	}

	bare := NewLeadService(nil, logger.NewNop(), nil, nil, nil, nil, false)
	if _, err := bare.DeleteLead(context.Background(), DeleteLeadInput{LeadID: uuid.New()}); err == nil || err.Error() != "lead aggregate not configured" {
		t.Fatalf("expected missing aggregate error, got %v", err)
	}
}
