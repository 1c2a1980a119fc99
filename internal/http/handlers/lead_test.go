package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/leadops-backend/internal/domain"
	domainagg "github.com/yungbote/leadops-backend/internal/domain/aggregates"
	"github.com/yungbote/leadops-backend/internal/platform/dbctx"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
	"github.com/yungbote/leadops-backend/internal/services"
)

type fakeLeadService struct {
	lastDelete services.DeleteLeadInput
	result     domainagg.DeleteLeadCascadeResult
	err        error
	logs       []*types.LeadDeletionLog
	lastLimit  int
}

func (f *fakeLeadService) DeleteLead(_ context.Context, in services.DeleteLeadInput) (domainagg.DeleteLeadCascadeResult, error) {
	f.lastDelete = in
	res := f.result
	res.LeadID = in.LeadID
	return res, f.err
}

func (f *fakeLeadService) PreviewDeletion(_ context.Context, leadID uuid.UUID) (domainagg.DeleteLeadCascadeResult, error) {
	f.lastDelete = services.DeleteLeadInput{LeadID: leadID, DryRun: true}
	res := f.result
	res.LeadID = leadID
	res.DryRun = true
	return res, f.err
}

func (f *fakeLeadService) ListDeletionLogs(_ dbctx.Context, leadID uuid.UUID, limit int) ([]*types.LeadDeletionLog, error) {
	f.lastLimit = limit
	return f.logs, f.err
}

func newLeadRouter(svc services.LeadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLeadHandler(logger.NewNop(), svc)
	r := gin.New()
	r.DELETE("/api/leads/:id", h.DeleteLead)
	r.GET("/api/leads/:id/deletion-preview", h.PreviewDeletion)
	r.GET("/api/leads/:id/deletion-logs", h.ListDeletionLogs)
	return r
}

func doRequest(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
	Result *domainagg.DeleteLeadCascadeResult `json:"result"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func ranResult(verdict domainagg.LeadDeletionVerdict) domainagg.DeleteLeadCascadeResult {
	return domainagg.DeleteLeadCascadeResult{
		Verdict: verdict,
		Steps:   []domainagg.LeadDeletionStep{{Name: "delete_lead", Status: "ok", Rows: 1}},
	}
}

func TestDeleteLeadOK(t *testing.T) {
	res := ranResult(domainagg.LeadDeletionSuccess)
	res.RootDeleted = true
	svc := &fakeLeadService{result: res}
	r := newLeadRouter(svc)

	id := uuid.New()
	rec := doRequest(r, http.MethodDelete, "/api/leads/"+id.String()+"?strict=true", map[string]string{"X-Requested-By": "ops@console"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body.Result == nil || !body.Result.RootDeleted || body.Result.LeadID != id {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if svc.lastDelete.RequestedBy != "ops@console" {
		t.Fatalf("requested_by not forwarded: %+v", svc.lastDelete)
	}
	if svc.lastDelete.RequireExisting == nil || !*svc.lastDelete.RequireExisting {
		t.Fatalf("strict flag not forwarded: %+v", svc.lastDelete)
	}
}

func TestDeleteLeadErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		result     domainagg.DeleteLeadCascadeResult
		wantStatus int
		wantCode   string
		wantResult bool
	}{
		{
			name:       "not found",
			err:        domainagg.NewError(domainagg.CodeNotFound, "op", "lead not found", nil),
			result:     ranResult(domainagg.LeadDeletionNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "lead_not_found",
			wantResult: true,
		},
		{
			name:       "in progress",
			err:        domainagg.NewError(domainagg.CodeConflict, "op", "lead purge already in progress", nil),
			wantStatus: http.StatusConflict,
			wantCode:   "lead_purge_in_progress",
		},
		{
			name:       "critical failure",
			err:        &domainagg.Error{Code: domainagg.CodePreconditionFailed, Op: "op", Step: "delete_lead", Message: "cascade aborted at delete_lead"},
			result:     ranResult(domainagg.LeadDeletionAborted),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "lead_delete_aborted",
			wantResult: true,
		},
		{
			name:       "retryable",
			err:        domainagg.NewError(domainagg.CodeRetryable, "op", "timeout", nil),
			result:     ranResult(domainagg.LeadDeletionAborted),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "lead_delete_aborted",
			wantResult: true,
		},
		{
			name:       "unclassified",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "lead_delete_failed",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newLeadRouter(&fakeLeadService{result: tc.result, err: tc.err})
			rec := doRequest(r, http.MethodDelete, "/api/leads/"+uuid.NewString(), nil)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status: got %d want %d body=%s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			body := decode(t, rec)
			if body.Error == nil || body.Error.Code != tc.wantCode {
				t.Fatalf("code: want %s body=%s", tc.wantCode, rec.Body.String())
			}
			if (body.Result != nil) != tc.wantResult {
				t.Fatalf("result presence: want %v body=%s", tc.wantResult, rec.Body.String())
			}
		})
	}
}

func TestDeleteLeadRejectsBadInput(t *testing.T) {
	svc := &fakeLeadService{}
	r := newLeadRouter(svc)

	if rec := doRequest(r, http.MethodDelete, "/api/leads/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: got %d", rec.Code)
	}
	if rec := doRequest(r, http.MethodDelete, "/api/leads/"+uuid.NewString()+"?strict=maybe", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad strict: got %d", rec.Code)
	}
	if svc.lastDelete.LeadID != uuid.Nil {
		t.Fatalf("service should not be called on bad input")
	}
}

func TestPreviewDeletion(t *testing.T) {
	svc := &fakeLeadService{result: ranResult(domainagg.LeadDeletionSuccess)}
	r := newLeadRouter(svc)

	rec := doRequest(r, http.MethodGet, "/api/leads/"+uuid.NewString()+"/deletion-preview", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body := decode(t, rec); body.Result == nil || !body.Result.DryRun {
		t.Fatalf("preview should report a dry run: %s", rec.Body.String())
	}
}

func TestListDeletionLogs(t *testing.T) {
	leadID := uuid.New()
	svc := &fakeLeadService{logs: []*types.LeadDeletionLog{{ID: uuid.New(), LeadID: leadID, Verdict: "success"}}}
	r := newLeadRouter(svc)

	rec := doRequest(r, http.MethodGet, "/api/leads/"+leadID.String()+"/deletion-logs?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var body struct {
		DeletionLogs []types.LeadDeletionLog `json:"deletion_logs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.DeletionLogs) != 1 || body.DeletionLogs[0].Verdict != "success" {
		t.Fatalf("unexpected logs: %s", rec.Body.String())
	}
	if svc.lastLimit != 5 {
		t.Fatalf("limit not forwarded: %d", svc.lastLimit)
	}

	if rec := doRequest(r, http.MethodGet, "/api/leads/"+leadID.String()+"/deletion-logs?limit=-1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: got %d", rec.Code)
	}
}

func TestListDeletionLogsErrorMapping(t *testing.T) {
	svc := &fakeLeadService{err: domainagg.NewError(domainagg.CodeValidation, "LeadService.ListDeletionLogs", "missing lead_id", nil)}
	r := newLeadRouter(svc)

	rec := doRequest(r, http.MethodGet, "/api/leads/"+uuid.Nil.String()+"/deletion-logs", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("nil lead id: want 400 got %d", rec.Code)
	}
	if env := decode(t, rec); env.Error == nil || env.Error.Code != "invalid_lead_id" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	svc.err = errors.New("connection refused")
	rec = doRequest(r, http.MethodGet, "/api/leads/"+uuid.New().String()+"/deletion-logs", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("store failure: want 500 got %d", rec.Code)
	}
	if env := decode(t, rec); env.Error == nil || env.Error.Code != "list_deletion_logs_failed" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
