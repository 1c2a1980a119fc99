package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/leadops-backend/internal/data/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
	Steps      []StepEvent
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

type StepEvent struct {
	Name        string
	Step        string
	Criticality string
	Status      string
	Rows        int64
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{
		Name:     name,
		Status:   status,
		Duration: dur,
	})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

func (h *HooksRecorder) ObserveStep(name, step, criticality, status string, rows int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Steps = append(h.Steps, StepEvent{
		Name:        name,
		Step:        step,
		Criticality: criticality,
		Status:      status,
		Rows:        rows,
	})
}

// StepStatus returns the recorded status of the named step, or "" if it never ran.
func (h *HooksRecorder) StepStatus(step string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ev := range h.Steps {
		if ev.Step == step {
			return ev.Status
		}
	}
	return ""
}
