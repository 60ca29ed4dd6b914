package provision

import (
	"context"
)

// Step is one idempotent unit of provisioning work. Steps must be safe to
// retry: a re-run after a mid-plan failure executes the failed step again.
type Step struct {
	Name string
	// BestEffort steps may fail without halting the plan (e.g. removing
	// legacy packages that were never installed).
	BestEffort bool
	Run        func(ctx context.Context) error
}

// Plan is an ordered sequence of steps. Order is execution order.
type Plan struct {
	Stage int
	Steps []Step
}

// StepOutcome describes how a single step ended.
type StepOutcome string

const (
	OutcomeCompleted StepOutcome = "completed"
	OutcomeSkipped   StepOutcome = "skipped"
	OutcomeWarned    StepOutcome = "warned"
	OutcomeFailed    StepOutcome = "failed"
)

// StepResult is the recorded result of one step execution.
type StepResult struct {
	Name    string
	Outcome StepOutcome
	Err     error
}

// StageResult summarizes a stage run. FailedStep is empty on success.
type StageResult struct {
	Stage      int
	Steps      []StepResult
	FailedStep string
}

// OK reports whether the stage completed without a fatal step failure.
func (r StageResult) OK() bool { return r.FailedStep == "" }
