package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var LeadAggregateContract = Contract{
	Name:             "CRM.LeadAggregate",
	WriteTxOwnership: WriteTxNone,
	Notes:            "Cascade deletion runs one statement per plan step in dependency order; completed steps are never rolled back and every step is reported.",
}

// LeadAggregate owns removal of a lead together with everything that references it.
type LeadAggregate interface {
	Aggregate

	// DeleteLeadCascade removes the lead and its dependents child-first.
	// The result is always populated, including on error.
	//
	// Error codes:
	// - validation: nil lead id
	// - not_found: the lead did not exist (or was already removed)
	// - precondition_failed: a critical step hit a foreign key violation
	// - retryable: timeout, cancellation, serialization or lock failure on a critical step
	// - internal: any other critical step failure
	DeleteLeadCascade(ctx context.Context, in DeleteLeadCascadeInput) (DeleteLeadCascadeResult, error)
}

type DeleteLeadCascadeInput struct {
	LeadID          uuid.UUID
	RequireExisting bool
	DryRun          bool
	RequestedBy     string
}

type LeadDeletionVerdict string

const (
	LeadDeletionSuccess  LeadDeletionVerdict = "success"
	LeadDeletionNotFound LeadDeletionVerdict = "not_found"
	LeadDeletionAborted  LeadDeletionVerdict = "aborted"
)

// LeadDeletionStep is one plan step as executed.
type LeadDeletionStep struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Collection  string `json:"collection"`
	Criticality string `json:"criticality"`
	Status      string `json:"status"`
	Rows        int64  `json:"rows"`
	FilterSize  int    `json:"filter_size"`
	Error       string `json:"error,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

type DeleteLeadCascadeResult struct {
	LeadID             uuid.UUID           `json:"lead_id"`
	Verdict            LeadDeletionVerdict `json:"verdict"`
	Status             string              `json:"status"`
	DryRun             bool                `json:"dry_run"`
	Cancelled          bool                `json:"cancelled"`
	RootDeleted        bool                `json:"root_deleted"`
	FailedStep         string              `json:"failed_step,omitempty"`
	BestEffortFailures []string            `json:"best_effort_failures"`
	Steps              []LeadDeletionStep  `json:"steps"`
	Audit              []string            `json:"audit"`
	StartedAt          time.Time           `json:"started_at"`
	FinishedAt         time.Time           `json:"finished_at"`
}
