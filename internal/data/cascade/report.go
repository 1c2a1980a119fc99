package cascade

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

type Verdict string

const (
	VerdictSuccess  Verdict = "success"
	VerdictNotFound Verdict = "not_found"
	VerdictAborted  Verdict = "aborted"
)

var (
	ErrRootNotFound = errors.New("cascade: root not found")
	ErrAborted      = errors.New("cascade: aborted")
)

// Report is the caller-facing summary of a Result.
type Report struct {
	RootID             uuid.UUID
	Plan               string
	Verdict            Verdict
	Status             RunStatus
	DryRun             bool
	Cancelled          bool
	RootDeleted        bool
	FailedStep         string
	FailedCause        error
	BestEffortFailures []string
	Outcomes           []StepOutcome
	Audit              []string
	StartedAt          time.Time
	FinishedAt         time.Time
}

func BuildReport(res Result) Report {
	rep := Report{
		RootID:             res.RootID,
		Plan:               res.Plan,
		Status:             res.Status,
		DryRun:             res.DryRun,
		Cancelled:          res.Cancelled,
		BestEffortFailures: []string{},
		Outcomes:           res.Outcomes,
		StartedAt:          res.StartedAt,
		FinishedAt:         res.FinishedAt,
	}

	rootNotFound := false
	rootDone := false
	for _, out := range res.Outcomes {
		switch {
		case out.Failed() && out.Criticality == Critical:
			if rep.FailedStep == "" {
				rep.FailedStep = out.Step
				rep.FailedCause = out.Err
			}
		case out.Failed():
			rep.BestEffortFailures = append(rep.BestEffortFailures, out.Step)
		}
		if out.Kind == StepRoot || out.Kind == StepCheck {
			if out.Status == OutcomeNotFound {
				rootNotFound = true
			}
			if out.Kind == StepRoot && out.Status == OutcomeOK {
				rootDone = true
			}
		}
	}

	switch {
	case res.Status == RunAborted:
		rep.Verdict = VerdictAborted
		if rep.FailedStep == "" {
			rep.FailedStep = res.PendingStep
		}
	case rootNotFound:
		rep.Verdict = VerdictNotFound
	default:
		rep.Verdict = VerdictSuccess
		rep.RootDeleted = rootDone && !res.DryRun
	}

	rep.Audit = auditLines(rep)
	return rep
}

// Err maps the verdict to a typed error. Success is nil.
func (r Report) Err() error {
	switch r.Verdict {
	case VerdictNotFound:
		return ErrRootNotFound
	case VerdictAborted:
		if r.FailedCause != nil {
			return fmt.Errorf("%w at %s: %w", ErrAborted, r.FailedStep, r.FailedCause)
		}
		if r.Cancelled {
			return fmt.Errorf("%w before %s: cancelled", ErrAborted, r.FailedStep)
		}
		return fmt.Errorf("%w at %s", ErrAborted, r.FailedStep)
	default:
		return nil
	}
}

func auditLines(r Report) []string {
	lines := make([]string, 0, len(r.Outcomes)+1)
	for _, out := range r.Outcomes {
		line := fmt.Sprintf("%s [%s %s] %s rows=%d filter=%d",
			out.Step, out.Criticality, out.Kind, out.Status, out.Rows, out.FilterSize)
		if out.Err != nil {
			line += " error=" + out.Err.Error()
		}
		lines = append(lines, line)
	}

	verdict := fmt.Sprintf("verdict=%s status=%s", r.Verdict, r.Status)
	if r.DryRun {
		verdict += " dry_run=true"
	}
	if r.FailedStep != "" {
		verdict += " failed_step=" + r.FailedStep
	}
	if r.Cancelled {
		verdict += " cancelled=true"
	}
	if len(r.BestEffortFailures) > 0 {
		verdict += fmt.Sprintf(" best_effort_failures=%d", len(r.BestEffortFailures))
	}
	return append(lines, verdict)
}

// Log writes the audit trail: info on success, a warning per best-effort
// failure, error on abort.
func (r Report) Log(log *logger.Logger) {
	if log == nil {
		return
	}
	l := log.With("lead_id", r.RootID, "plan", r.Plan, "dry_run", r.DryRun)
	for _, out := range r.Outcomes {
		if out.Failed() && out.Criticality == BestEffort {
			l.Warn("cascade best-effort failure", "step", out.Step, "collection", out.Collection, "error", out.Err)
		}
	}
	fields := []interface{}{
		"verdict", r.Verdict,
		"status", r.Status,
		"steps", len(r.Outcomes),
		"best_effort_failures", r.BestEffortFailures,
		"duration_ms", r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
	}
	switch r.Verdict {
	case VerdictAborted:
		l.Error("cascade aborted", append(fields, "failed_step", r.FailedStep, "cancelled", r.Cancelled, "error", r.FailedCause)...)
	case VerdictNotFound:
		l.Info("cascade root not found", fields...)
	default:
		l.Info("cascade complete", fields...)
	}
}
