package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

// OutcomeStatus of a single step. OutcomeEmpty means the step matched
// nothing: either it had no filter values and issued no statement, or its
// statement touched zero rows. The root and the existence check report zero
// rows as OutcomeNotFound instead.
type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeEmpty    OutcomeStatus = "ok_empty"
	OutcomeFailed   OutcomeStatus = "failed"
	OutcomeNotFound OutcomeStatus = "not_found"
)

type RunStatus string

const (
	RunSuccess                   RunStatus = "success"
	RunPartialBestEffortFailures RunStatus = "partial_best_effort_failures"
	RunAborted                   RunStatus = "aborted"
)

// StepCheck is the synthesized existence check that runs first when
// Options.RequireExisting is set.
const StepCheck StepKind = "check"

var ErrUpstreamFailed = errors.New("cascade: upstream discover step failed")

type StepOutcome struct {
	Step        string
	Kind        StepKind
	Collection  string
	Criticality Criticality
	Status      OutcomeStatus
	Rows        int64
	FilterSize  int
	Err         error
	Duration    time.Duration
}

func (o StepOutcome) Failed() bool { return o.Status == OutcomeFailed }

type Options struct {
	// RequireExisting checks the root exists before any dependent is touched.
	RequireExisting bool
	// DryRun runs discovery and replaces deletes with counts.
	DryRun bool
	// Parallelism bounds concurrent steps inside a batch. Values <= 1 run batches sequentially.
	Parallelism int
}

type Result struct {
	RootID   uuid.UUID
	Plan     string
	Status   RunStatus
	Outcomes []StepOutcome
	DryRun   bool
	// Cancelled is set when the context ended the run. PendingStep names the
	// step that was about to run.
	Cancelled   bool
	PendingStep string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// StepObserver receives every outcome as it is recorded. Outcomes of a batch
// may be delivered concurrently.
type StepObserver func(StepOutcome)

type Orchestrator struct {
	plan    *Plan
	store   Store
	log     *logger.Logger
	tracer  trace.Tracer
	observe StepObserver
}

func NewOrchestrator(plan *Plan, store Store, baseLog *logger.Logger) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("cascade: store is required")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &Orchestrator{
		plan:   plan,
		store:  store,
		log:    baseLog.With("component", "CascadeOrchestrator", "plan", plan.Name),
		tracer: otel.Tracer("leadops/cascade"),
	}, nil
}

// WithStepObserver returns a copy that reports each outcome to fn.
func (o *Orchestrator) WithStepObserver(fn StepObserver) *Orchestrator {
	cp := *o
	cp.observe = fn
	return &cp
}

func (o *Orchestrator) Plan() *Plan { return o.plan }

// run state shared by the steps of one Run. Keys are only written by
// discover steps, which never run inside a batch.
type runState struct {
	rootID   uuid.UUID
	opts     Options
	keys     map[string][]uuid.UUID
	failedBy map[string]string
}

// Run executes the plan for rootID. Best-effort failures are recorded and the
// run continues; the first critical failure ends it. A Result is always
// returned.
func (o *Orchestrator) Run(ctx context.Context, rootID uuid.UUID, opts Options) Result {
	res := Result{
		RootID:    rootID,
		Plan:      o.plan.Name,
		Status:    RunSuccess,
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
	}
	st := &runState{
		rootID:   rootID,
		opts:     opts,
		keys:     map[string][]uuid.UUID{},
		failedBy: map[string]string{},
	}
	defer func() {
		res.FinishedAt = time.Now().UTC()
	}()

	if opts.RequireExisting {
		check := o.checkStep()
		if err := ctx.Err(); err != nil {
			o.cancel(&res, check.Name, err)
			return res
		}
		out := o.execute(ctx, check, st)
		res.Outcomes = append(res.Outcomes, out)
		switch out.Status {
		case OutcomeFailed:
			o.abort(ctx, &res, out)
			return res
		case OutcomeNotFound:
			o.log.Info("cascade root not found; dependents untouched", "lead_id", rootID)
			return res
		}
	}

	for _, seg := range o.plan.segments() {
		if err := ctx.Err(); err != nil {
			o.cancel(&res, seg[0].Name, err)
			return res
		}
		outs := o.runSegment(ctx, seg, st)
		res.Outcomes = append(res.Outcomes, outs...)
		for _, out := range outs {
			if out.Failed() && out.Criticality == Critical {
				o.abort(ctx, &res, out)
				return res
			}
		}
	}

	for _, out := range res.Outcomes {
		if out.Failed() {
			res.Status = RunPartialBestEffortFailures
			break
		}
	}
	return res
}

func (o *Orchestrator) abort(ctx context.Context, res *Result, out StepOutcome) {
	res.Status = RunAborted
	if ctx.Err() != nil {
		res.Cancelled = true
	}
	o.log.Error("cascade aborted on critical step", "step", out.Step, "collection", out.Collection, "error", out.Err)
}

func (o *Orchestrator) cancel(res *Result, pending string, err error) {
	res.Status = RunAborted
	res.Cancelled = true
	res.PendingStep = pending
	o.log.Warn("cascade cancelled", "pending_step", pending, "error", err)
}

func (o *Orchestrator) runSegment(ctx context.Context, seg []Step, st *runState) []StepOutcome {
	outs := make([]StepOutcome, len(seg))
	if len(seg) == 1 {
		outs[0] = o.execute(ctx, seg[0], st)
		return outs
	}

	limit := st.opts.Parallelism
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := range seg {
		i := i
		g.Go(func() error {
			outs[i] = o.execute(ctx, seg[i], st)
			return nil
		})
	}
	_ = g.Wait()
	return outs
}

func (o *Orchestrator) execute(ctx context.Context, s Step, st *runState) StepOutcome {
	ctx, span := o.tracer.Start(ctx, "cascade.step", trace.WithAttributes(
		attribute.String("cascade.plan", o.plan.Name),
		attribute.String("cascade.step", s.Name),
		attribute.String("cascade.kind", string(s.Kind)),
		attribute.String("cascade.collection", s.Collection),
		attribute.String("cascade.criticality", string(s.Criticality)),
		attribute.Bool("cascade.dry_run", st.opts.DryRun),
	))
	defer span.End()

	start := time.Now()
	out := o.perform(ctx, s, st)
	out.Duration = time.Since(start)

	span.SetAttributes(
		attribute.String("cascade.status", string(out.Status)),
		attribute.Int64("cascade.rows", out.Rows),
		attribute.Int("cascade.filter_size", out.FilterSize),
	)
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}

	switch {
	case out.Failed() && s.Criticality == BestEffort:
		o.log.Warn("cascade best-effort step failed", "step", s.Name, "collection", s.Collection, "error", out.Err)
	case out.Failed():
		o.log.Error("cascade critical step failed", "step", s.Name, "collection", s.Collection, "error", out.Err)
	default:
		o.log.Debug("cascade step done", "step", s.Name, "status", out.Status, "rows", out.Rows, "filter_size", out.FilterSize)
	}
	if o.observe != nil {
		o.observe(out)
	}
	return out
}

func (o *Orchestrator) perform(ctx context.Context, s Step, st *runState) StepOutcome {
	out := StepOutcome{
		Step:        s.Name,
		Kind:        s.Kind,
		Collection:  s.Collection,
		Criticality: s.Criticality,
	}

	var values []uuid.UUID
	if s.Source == SourceRoot {
		values = []uuid.UUID{st.rootID}
	} else {
		if upstream, failed := st.failedBy[s.Source]; failed {
			out.Status = OutcomeFailed
			out.Err = fmt.Errorf("%w: %s", ErrUpstreamFailed, upstream)
			return out
		}
		values = st.keys[s.Source]
	}
	out.FilterSize = len(values)

	if len(values) == 0 {
		if s.Kind == StepDiscover {
			st.keys[s.Produces] = nil
		}
		out.Status = OutcomeEmpty
		return out
	}

	switch s.Kind {
	case StepDiscover:
		ids, err := o.store.FetchIDs(ctx, s.Collection, s.selectColumn(), s.FilterColumn, values)
		if err != nil {
			st.failedBy[s.Produces] = s.Name
			out.Status = OutcomeFailed
			out.Err = err
			return out
		}
		st.keys[s.Produces] = ids
		out.Rows = int64(len(ids))
		out.Status = OutcomeOK
		if len(ids) == 0 {
			out.Status = OutcomeEmpty
		}
	case StepCheck:
		n, err := o.store.CountWhere(ctx, s.Collection, s.FilterColumn, values)
		if err != nil {
			out.Status = OutcomeFailed
			out.Err = err
			return out
		}
		out.Rows = n
		out.Status = OutcomeOK
		if n == 0 {
			out.Status = OutcomeNotFound
		}
	default:
		var (
			n   int64
			err error
		)
		if st.opts.DryRun {
			n, err = o.store.CountWhere(ctx, s.Collection, s.FilterColumn, values)
		} else {
			n, err = o.store.DeleteWhere(ctx, s.Collection, s.FilterColumn, values)
		}
		if err != nil {
			out.Status = OutcomeFailed
			out.Err = err
			return out
		}
		out.Rows = n
		switch {
		case n > 0:
			out.Status = OutcomeOK
		case s.Kind == StepRoot:
			out.Status = OutcomeNotFound
		default:
			out.Status = OutcomeEmpty
		}
	}
	return out
}

func (o *Orchestrator) checkStep() Step {
	root := o.plan.Steps[len(o.plan.Steps)-1]
	return Step{
		Name:         "check_" + o.plan.Root,
		Kind:         StepCheck,
		Collection:   root.Collection,
		FilterColumn: root.FilterColumn,
		Source:       SourceRoot,
		Criticality:  Critical,
	}
}
