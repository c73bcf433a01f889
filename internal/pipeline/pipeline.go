package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/siteclone/internal/model"
)

// Step is one stage of a clone job.
//
// Design decision: Steps share the job rather than passing results along
// a return value because:
// 1. Later steps (archive, history) read several earlier outputs at once
// 2. A failed job still carries whatever the steps before it produced
// 3. The job's step list doubles as a trace of what actually ran
type Step interface {
	// Do runs the step. A returned error is recorded on the job.
	Do(ctx context.Context, job *model.CloneJob) error

	// Name returns the step's name for logging and the job's step list.
	Name() string
}

// Optional is implemented by steps whose failure must not stop the
// pipeline.
//
// Design decision: Optionality is a property of the step, not of the
// pipeline, so one WithContinueOnError flag does not have to cover every
// step. Recording history or the metadata audit can fail without costing
// the user the clone they asked for, while a failed crawl must still stop
// the run.
type Optional interface {
	Optional() bool
}

// Always is implemented by steps that run even after the pipeline has
// stopped on a fatal error.
//
// Design decision: We use a marker interface instead of a separate list of
// cleanup steps because where a step sits in the order still matters. A step
// that records the outcome has to see the fatal error, so it is placed last
// and runs whatever happened before it. Optional steps that were skipped
// after a failure stay skipped.
type Always interface {
	Always() bool
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError runs every step even after a fatal failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError makes the pipeline run the remaining steps after a
// step fails. The first error is still recorded on the job.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in order against job and returns the fatal error
// that stopped it, if any. The error is also stored in job.Err.
// Cancellation is checked before each step. Steps that implement Always
// still run after a fatal failure or cancellation.
func (p *Pipeline) Execute(ctx context.Context, job *model.CloneJob) error {
	defer func() {
		if job.FinishedAt.IsZero() {
			job.FinishedAt = time.Now()
		}
	}()

	var fatal error
	for _, step := range p.steps {
		if fatal != nil && !runsAlways(step) {
			continue
		}
		if err := ctx.Err(); err != nil && fatal == nil {
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"target", job.Target,
				"reason", err,
			)
			fatal = err
			job.Err = err
			if !runsAlways(step) {
				continue
			}
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"target", job.Target,
		)

		err := step.Do(ctx, job)
		job.PerformedSteps = append(job.PerformedSteps, step.Name())
		if err == nil {
			continue
		}

		if isOptional(step) {
			p.logger.Warn("optional step failed",
				"step", step.Name(),
				"target", job.Target,
				"error", err,
			)
			continue
		}

		p.logger.Error("step failed",
			"step", step.Name(),
			"target", job.Target,
			"error", err,
		)
		if job.Err == nil {
			job.Err = err
		}
		if !p.continueOnError {
			fatal = job.Err
		}
	}

	return job.Err
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

func isOptional(step Step) bool {
	o, ok := step.(Optional)
	return ok && o.Optional()
}

func runsAlways(step Step) bool {
	a, ok := step.(Always)
	return ok && a.Always()
}
