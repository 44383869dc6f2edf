package saga

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is one stage of a saga. Compensate may be nil when a stage has nothing to undo.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// StepError reports which step stopped the saga. It unwraps to the step's error
// so callers can still classify it with errors.Is / errors.As.
type StepError struct {
	Saga string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("saga '%s' failed at step '%s': %v", e.Saga, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Saga runs steps in order and compensates the completed ones in reverse on failure.
type Saga struct {
	name   string
	steps  []Step
	fields []zap.Field
	logger *zap.Logger
}

// New creates a saga. fields are attached to every log line it writes.
func New(name string, logger *zap.Logger, fields ...zap.Field) *Saga {
	return &Saga{
		name:   name,
		fields: fields,
		logger: logger,
	}
}

// AddStep appends a step.
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs every step. The returned error is a *StepError.
func (s *Saga) Execute(ctx context.Context) error {
	log := s.logger.With(append([]zap.Field{zap.String("saga", s.name)}, s.fields...)...)

	done := make([]Step, 0, len(s.steps))
	for _, step := range s.steps {
		log.Debug("executing saga step", zap.String("step", step.Name))

		if err := step.Execute(ctx); err != nil {
			log.Warn("saga step failed", zap.String("step", step.Name), zap.Error(err))
			s.compensate(ctx, log, done)
			return &StepError{Saga: s.name, Step: step.Name, Err: err}
		}
		done = append(done, step)
	}

	log.Debug("saga completed")
	return nil
}

func (s *Saga) compensate(ctx context.Context, log *zap.Logger, done []Step) {
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		log.Info("compensating saga step", zap.String("step", step.Name))
		if err := step.Compensate(ctx); err != nil {
			log.Error("compensation failed", zap.String("step", step.Name), zap.Error(err))
		}
	}
}
