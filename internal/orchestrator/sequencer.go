package orchestrator

import (
	"context"
	"fmt"
	"os"

	"github.com/crateops/cargoship/internal/domain"
	"github.com/crateops/cargoship/internal/repository"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// StepError reports which step failed and the exit code the process
// must terminate with.
type StepError struct {
	Step     domain.StepType
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError wraps err with the step identity and exit code.
func NewStepError(step domain.StepType, exitCode int, err error) *StepError {
	return &StepError{Step: step, ExitCode: exitCode, Err: err}
}

// Step is a single action of the release sequence.
type Step struct {
	Name string
	Type domain.StepType
	// ExitCode is reported when the step fails
	ExitCode int
	// Retryable enables bounded exponential retry for this step
	Retryable bool
	Execute   func(ctx context.Context) error
}

// Sequencer runs release steps strictly in order and stops at the first
// failure. Steps after a failed one never start.
type Sequencer struct {
	sessionID string
	stateRepo repository.StateRepository
	state     *domain.RunState
	steps     []Step
	log       *zap.Logger
}

// NewSequencer creates a sequencer that records its run under a fresh session ID.
func NewSequencer(stateRepo repository.StateRepository, log *zap.Logger) *Sequencer {
	sessionID := uuid.New().String()
	return &Sequencer{
		sessionID: sessionID,
		stateRepo: stateRepo,
		state:     domain.NewRunState(sessionID),
		steps:     []Step{},
		log:       log,
	}
}

// AddStep appends a step to the sequence.
func (s *Sequencer) AddStep(step Step) {
	s.steps = append(s.steps, step)
	s.state.AddStep(step.Type)
}

// State returns the current run state.
func (s *Sequencer) State() *domain.RunState {
	return s.state
}

// SessionID returns the run's session ID.
func (s *Sequencer) SessionID() string {
	return s.sessionID
}

// Run executes the steps in order. The first failure aborts the run and
// is returned as a *StepError; remaining steps are marked skipped.
func (s *Sequencer) Run(ctx context.Context) error {
	s.state.Status = domain.RunStatusRunning
	s.saveState(ctx)
	for i, step := range s.steps {
		if err := s.executeStep(ctx, step); err != nil {
			s.state.MarkStepFailed(step.Type, err)
			for _, skipped := range s.steps[i+1:] {
				s.state.MarkStepSkipped(skipped.Type)
			}
			s.saveState(ctx)
			return NewStepError(step.Type, step.ExitCode, err)
		}
	}
	s.state.Status = domain.RunStatusCompleted
	s.saveState(ctx)
	return nil
}

// executeStep runs a single step, retrying only when the step opts in.
func (s *Sequencer) executeStep(ctx context.Context, step Step) error {
	s.log.Info("running step", zap.String("step", string(step.Type)))
	s.state.MarkStepStarted(step.Type)
	s.saveState(ctx)
	var err error
	if step.Retryable {
		strategy := retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay))
		err = retry.Do(ctx, strategy, func(retryCtx context.Context) error {
			if execErr := step.Execute(retryCtx); execErr != nil {
				s.log.Warn("step attempt failed, retrying",
					zap.String("step", string(step.Type)), zap.Error(execErr))
				return retry.RetryableError(execErr)
			}
			return nil
		})
	} else {
		err = step.Execute(ctx)
	}
	if err != nil {
		s.log.Error("step failed", zap.String("step", string(step.Type)), zap.Error(err))
		return err
	}
	s.state.MarkStepCompleted(step.Type)
	s.saveState(ctx)
	s.log.Info("step completed", zap.String("step", string(step.Type)))
	return nil
}

// saveState persists the current state, best effort.
func (s *Sequencer) saveState(ctx context.Context) {
	if s.stateRepo == nil {
		return
	}
	if err := s.stateRepo.Save(ctx, s.state); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save run state: %v\n", err)
	}
}
