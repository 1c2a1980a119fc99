package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/leadops-backend/internal/clients/redis"
	"github.com/yungbote/leadops-backend/internal/data/repos"
	types "github.com/yungbote/leadops-backend/internal/domain"
	domainagg "github.com/yungbote/leadops-backend/internal/domain/aggregates"
	"github.com/yungbote/leadops-backend/internal/observability"
	"github.com/yungbote/leadops-backend/internal/platform/dbctx"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

const (
	opDeleteLead       = "LeadService.DeleteLead"
	lockReleaseTimeout = 5 * time.Second
	auditWriteTimeout  = 5 * time.Second
)

type DeleteLeadInput struct {
	LeadID      uuid.UUID
	RequestedBy string
	// RequireExisting overrides the service default when set.
	RequireExisting *bool
	DryRun          bool
}

type LeadService interface {
	DeleteLead(ctx context.Context, in DeleteLeadInput) (domainagg.DeleteLeadCascadeResult, error)
	PreviewDeletion(ctx context.Context, leadID uuid.UUID) (domainagg.DeleteLeadCascadeResult, error)
	ListDeletionLogs(dbc dbctx.Context, leadID uuid.UUID, limit int) ([]*types.LeadDeletionLog, error)
}

type leadService struct {
	db              *gorm.DB
	log             *logger.Logger
	leadAgg         domainagg.LeadAggregate
	deletionLogRepo repos.LeadDeletionLogRepo
	lock            redis.PurgeLock
	metrics         *observability.Metrics
	requireExisting bool
}

// NewLeadService wires the cascade behind the purge guard and the audit log.
// lock and deletionLogRepo may be nil.
func NewLeadService(
	db *gorm.DB,
	log *logger.Logger,
	leadAgg domainagg.LeadAggregate,
	deletionLogRepo repos.LeadDeletionLogRepo,
	lock redis.PurgeLock,
	metrics *observability.Metrics,
	requireExisting bool,
) LeadService {
	return &leadService{
		db:              db,
		log:             log.With("service", "LeadService"),
		leadAgg:         leadAgg,
		deletionLogRepo: deletionLogRepo,
		lock:            lock,
		metrics:         metrics,
		requireExisting: requireExisting,
	}
}

func (s *leadService) DeleteLead(ctx context.Context, in DeleteLeadInput) (domainagg.DeleteLeadCascadeResult, error) {
	out := domainagg.DeleteLeadCascadeResult{LeadID: in.LeadID, DryRun: in.DryRun}
	if s.leadAgg == nil {
		return out, errors.New("lead aggregate not configured")
	}
	if in.LeadID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, opDeleteLead, "missing lead_id", nil)
	}

	if !in.DryRun {
		release, err := s.acquire(ctx, in.LeadID)
		if err != nil {
			return out, err
		}
		defer release()
	}

	requireExisting := s.requireExisting
	if in.RequireExisting != nil {
		requireExisting = *in.RequireExisting
	}
	res, err := s.leadAgg.DeleteLeadCascade(ctx, domainagg.DeleteLeadCascadeInput{
		LeadID:          in.LeadID,
		RequireExisting: requireExisting,
		DryRun:          in.DryRun,
		RequestedBy:     strings.TrimSpace(in.RequestedBy),
	})
	if !in.DryRun && len(res.Steps) > 0 {
		s.recordDeletion(ctx, res, in.RequestedBy)
	}
	if res.Verdict == domainagg.LeadDeletionAborted && !s.leadAgg.Contract().RollsBackOnFailure() {
		s.log.Warn("lead deletion aborted; completed steps stay applied",
			"lead_id", in.LeadID, "failed_step", res.FailedStep, "steps_run", len(res.Steps))
	}
	return res, err
}

func (s *leadService) PreviewDeletion(ctx context.Context, leadID uuid.UUID) (domainagg.DeleteLeadCascadeResult, error) {
	return s.DeleteLead(ctx, DeleteLeadInput{LeadID: leadID, DryRun: true})
}

func (s *leadService) ListDeletionLogs(dbc dbctx.Context, leadID uuid.UUID, limit int) ([]*types.LeadDeletionLog, error) {
	if s.deletionLogRepo == nil {
		return nil, errors.New("deletion log repo not configured")
	}
	if leadID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "LeadService.ListDeletionLogs", "missing lead_id", nil)
	}
	if dbc.Tx == nil {
		dbc.Tx = s.db
	}
	return s.deletionLogRepo.ListByLead(dbc, leadID, limit)
}

// acquire takes the per-lead purge lock. Without a lock configured it is a no-op.
func (s *leadService) acquire(ctx context.Context, leadID uuid.UUID) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}
	release, err := s.lock.Acquire(ctx, leadID)
	switch {
	case errors.Is(err, redis.ErrLockHeld):
		s.metrics.IncPurgeLock("held")
		return nil, domainagg.NewError(domainagg.CodeConflict, opDeleteLead, "lead purge already in progress", err)
	case err != nil:
		s.metrics.IncPurgeLock("error")
		s.log.Warn("purge lock unavailable", "lead_id", leadID, "error", err)
		return nil, domainagg.NewError(domainagg.CodeRetryable, opDeleteLead, "purge lock unavailable", err)
	}
	s.metrics.IncPurgeLock("acquired")

	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
		defer cancel()
		if err := release(ctx); err != nil {
			s.log.Warn("purge lock release failed", "lead_id", leadID, "error", err)
		}
	}, nil
}

// recordDeletion appends the run to the audit log. Failures are logged only;
// the cascade outcome already happened.
func (s *leadService) recordDeletion(ctx context.Context, res domainagg.DeleteLeadCascadeResult, requestedBy string) {
	if s.deletionLogRepo == nil {
		return
	}
	outcomes, err := json.Marshal(res.Steps)
	if err != nil {
		s.log.Warn("encode deletion outcomes failed", "lead_id", res.LeadID, "error", err)
		outcomes = []byte("[]")
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	entry := &types.LeadDeletionLog{
		LeadID:      res.LeadID,
		Verdict:     string(res.Verdict),
		Status:      res.Status,
		FailedStep:  res.FailedStep,
		RequestedBy: strings.TrimSpace(requestedBy),
		Outcomes:    datatypes.JSON(outcomes),
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
	}
	if _, err := s.deletionLogRepo.Create(dbctx.Context{Ctx: ctx, Tx: s.db}, entry); err != nil {
		s.log.Warn("write deletion log failed", "lead_id", res.LeadID, "verdict", res.Verdict, "error", err)
	}
}
