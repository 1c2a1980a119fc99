package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/leadops-backend/internal/data/cascade"
	domainagg "github.com/yungbote/leadops-backend/internal/domain/aggregates"
)

const opDeleteLeadCascade = "CRM.Lead.DeleteCascade"

type LeadAggregateDeps struct {
	Base BaseDeps

	// Plan defaults to cascade.LeadPlan.
	Plan *cascade.Plan
	// Store defaults to a cascade.GormStore over Base.DB.
	Store       cascade.Store
	Parallelism int
}

type leadAggregate struct {
	deps LeadAggregateDeps
	orch *cascade.Orchestrator
}

func NewLeadAggregate(deps LeadAggregateDeps) (domainagg.LeadAggregate, error) {
	deps.Base = deps.Base.withDefaults()
	if deps.Plan == nil {
		deps.Plan = cascade.LeadPlan(deps.Base.Log)
	}
	if deps.Store == nil {
		if deps.Base.DB == nil {
			return nil, errors.New("lead aggregate: missing db or store")
		}
		deps.Store = cascade.NewGormStore(deps.Base.DB, deps.Base.Log)
	}
	orch, err := cascade.NewOrchestrator(deps.Plan, deps.Store, deps.Base.Log.With("aggregate", "LeadAggregate"))
	if err != nil {
		return nil, fmt.Errorf("lead aggregate: %w", err)
	}
	hooks := deps.Base.Hooks
	orch = orch.WithStepObserver(func(out cascade.StepOutcome) {
		hooks.ObserveStep(opDeleteLeadCascade, out.Step, string(out.Criticality), string(out.Status), out.Rows)
	})
	return &leadAggregate{deps: deps, orch: orch}, nil
}

func (a *leadAggregate) Contract() domainagg.Contract {
	return domainagg.LeadAggregateContract
}

func (a *leadAggregate) DeleteLeadCascade(ctx context.Context, in domainagg.DeleteLeadCascadeInput) (domainagg.DeleteLeadCascadeResult, error) {
	const op = opDeleteLeadCascade
	out := domainagg.DeleteLeadCascadeResult{LeadID: in.LeadID, DryRun: in.DryRun}
	if in.LeadID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing lead_id", nil)
	}

	log := a.deps.Base.Log.With("lead_id", in.LeadID, "requested_by", strings.TrimSpace(in.RequestedBy))
	err := executeOperation(ctx, a.deps.Base, op, func(ctx context.Context) error {
		res := a.orch.Run(ctx, in.LeadID, cascade.Options{
			RequireExisting: in.RequireExisting,
			DryRun:          in.DryRun,
			Parallelism:     a.deps.Parallelism,
		})
		rep := cascade.BuildReport(res)
		rep.Log(log)
		out = toLeadDeletionResult(rep)
		return reportError(op, rep)
	})
	return out, err
}

// reportError turns a non-success verdict into an aggregate error carrying the
// failing step.
func reportError(op string, rep cascade.Report) error {
	switch rep.Verdict {
	case cascade.VerdictNotFound:
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("lead not found: %s", rep.RootID), rep.Err())
	case cascade.VerdictAborted:
		code := domainagg.CodeRetryable
		if rep.FailedCause != nil && !rep.Cancelled {
			code = classify(rep.FailedCause)
		}
		msg := fmt.Sprintf("cascade aborted at %s", rep.FailedStep)
		if rep.Cancelled {
			msg = fmt.Sprintf("cascade cancelled before %s", rep.FailedStep)
		}
		return &domainagg.Error{Code: code, Op: op, Step: rep.FailedStep, Message: msg, Cause: rep.Err()}
	default:
		return nil
	}
}

func toLeadDeletionResult(rep cascade.Report) domainagg.DeleteLeadCascadeResult {
	out := domainagg.DeleteLeadCascadeResult{
		LeadID:             rep.RootID,
		Verdict:            domainagg.LeadDeletionVerdict(rep.Verdict),
		Status:             string(rep.Status),
		DryRun:             rep.DryRun,
		Cancelled:          rep.Cancelled,
		RootDeleted:        rep.RootDeleted,
		FailedStep:         rep.FailedStep,
		BestEffortFailures: append([]string{}, rep.BestEffortFailures...),
		Steps:              make([]domainagg.LeadDeletionStep, 0, len(rep.Outcomes)),
		Audit:              rep.Audit,
		StartedAt:          rep.StartedAt,
		FinishedAt:         rep.FinishedAt,
	}
	for _, o := range rep.Outcomes {
		step := domainagg.LeadDeletionStep{
			Name:        o.Step,
			Kind:        string(o.Kind),
			Collection:  o.Collection,
			Criticality: string(o.Criticality),
			Status:      string(o.Status),
			Rows:        o.Rows,
			FilterSize:  o.FilterSize,
			DurationMS:  o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			step.Error = o.Err.Error()
		}
		out.Steps = append(out.Steps, step)
	}
	return out
}
