package reconciler

import (
	"context"
)

// Job adapts the reconciler to the worker pool so the scheduler can drive
// full cycles on a fixed interval.
type Job struct {
	reconciler *Reconciler
}

// NewJob wraps r as a schedulable job
func NewJob(r *Reconciler) *Job {
	return &Job{reconciler: r}
}

// Process runs one reconciliation cycle
func (j *Job) Process(ctx context.Context) error {
	return j.reconciler.Run(ctx)
}
