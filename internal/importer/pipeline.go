// Package importer runs the admin bulk imports: PDF batches matched to workers
// and worker CSV files.
package importer

import (
	"context"
	"fmt"
	"log/slog"
)

// Step is one side effect of an item import. Rollback, when set, undoes Run.
type Step struct {
	Name     string
	Run      func(ctx context.Context) error
	Rollback func(ctx context.Context) error
}

type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline runs steps in order. When a step fails, the completed steps are
// rolled back in reverse order. Rollback failures are logged and not retried.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

func NewPipeline(logger *slog.Logger, steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, logger: logger}
}

func (p *Pipeline) Run(ctx context.Context) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.rollback(ctx, i)
			return &StepError{Step: step.Name, Err: err}
		}
		if err := step.Run(ctx); err != nil {
			p.rollback(ctx, i)
			return &StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}

// rollback undoes steps[:done]. It runs detached from ctx so a timed out item still cleans up.
func (p *Pipeline) rollback(ctx context.Context, done int) {
	rctx := context.WithoutCancel(ctx)
	for i := done - 1; i >= 0; i-- {
		step := p.steps[i]
		if step.Rollback == nil {
			continue
		}
		if err := step.Rollback(rctx); err != nil {
			p.logger.Error("rollback failed", "step", step.Name, "error", err)
		}
	}
}
