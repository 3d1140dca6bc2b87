package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/druarnfield/archie/internal/prompt"
	"github.com/druarnfield/archie/internal/state"
)

// Store persists the installation state between steps.
type Store interface {
	Load() (state.State, error)
	Save(state.State) error
	Clear() error
}

// StepCallback is invoked after each step is processed. skipped is true when
// the step did not apply. err is non-nil for every reported failure,
// including failures the operator then chose to retry.
type StepCallback func(step *Step, index, total int, skipped bool, err error)

// PreStepCallback is invoked before each step begins processing.
type PreStepCallback func(step *Step, index, total int)

// Sequencer runs a Catalogue from a State's position to the end, persisting
// after every step.
type Sequencer struct {
	steps       Catalogue
	store       Store
	prompter    prompt.Prompter
	logger      *slog.Logger
	callback    StepCallback
	preCallback PreStepCallback
}

// New creates a Sequencer. The prompter is used for the retry and continue
// questions asked by steps with a non-fatal Policy.
func New(steps Catalogue, store Store, p prompt.Prompter, logger *slog.Logger) *Sequencer {
	return &Sequencer{
		steps:    steps,
		store:    store,
		prompter: p,
		logger:   logger,
	}
}

// SetCallback registers a callback that is invoked after each step is
// processed. Pass nil to clear.
func (q *Sequencer) SetCallback(cb StepCallback) {
	q.callback = cb
}

// SetPreStepCallback registers a callback that is invoked before each step
// begins processing. Pass nil to clear.
func (q *Sequencer) SetPreStepCallback(cb PreStepCallback) {
	q.preCallback = cb
}

// Steps returns the catalogue being run.
func (q *Sequencer) Steps() Catalogue {
	return q.steps
}

// Run executes steps starting at s.CurrentStep. After each completed or
// skipped step the position is advanced and the state saved, so that the
// persisted record always names the first step that has not completed. When
// the last step completes the record is cleared.
//
// A step that fails under its Policy stops the run with an *AbortError and
// leaves the persisted position at that step. Run panics if the position
// names a step outside the catalogue, which can only happen if the caller
// skipped validation.
func (q *Sequencer) Run(ctx context.Context, s state.State) (state.State, error) {
	total := q.steps.Len()
	if s.TotalSteps != total {
		return s, fmt.Errorf("state is for %d steps, catalogue has %d", s.TotalSteps, total)
	}

	for !s.Done() {
		index := s.CurrentStep
		step, ok := q.steps.At(index)
		if !ok {
			panic(fmt.Sprintf("sequencer: step %d is not in the catalogue of %d steps", index, total))
		}

		if q.preCallback != nil {
			q.preCallback(step, index, total)
		}

		if !step.Applies(s) {
			q.logger.Info("step does not apply, skipping",
				slog.Int("index", index),
				slog.String("step", step.Name),
			)
			if q.callback != nil {
				q.callback(step, index, total, true, nil)
			}
			next, err := q.advance(s)
			if err != nil {
				return s, &AbortError{Index: index, Step: step.Name, Err: err}
			}
			s = next
			continue
		}

		start := time.Now()
		next, err := q.execute(ctx, step, index, s)
		elapsed := time.Since(start)
		if err != nil {
			q.logger.Error("step failed",
				slog.Int("index", index),
				slog.String("step", step.Name),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
			return s, &AbortError{Index: index, Step: step.Name, Err: err}
		}

		q.logger.Info("step completed",
			slog.Int("index", index),
			slog.String("step", step.Name),
			slog.Duration("elapsed", elapsed),
		)
		if q.callback != nil {
			q.callback(step, index, total, false, nil)
		}

		// The body owns the answers, never the position.
		next.CurrentStep = s.CurrentStep
		next.TotalSteps = s.TotalSteps
		next, err = q.advance(next)
		if err != nil {
			return s, &AbortError{Index: index, Step: step.Name, Err: err}
		}
		s = next
	}

	if err := q.store.Clear(); err != nil {
		return s, fmt.Errorf("clearing saved state: %w", err)
	}
	q.logger.Info("all steps completed", slog.Int("total", total))
	return s, nil
}

func (q *Sequencer) advance(s state.State) (state.State, error) {
	s.CurrentStep++
	if err := q.store.Save(s); err != nil {
		return s, fmt.Errorf("saving state: %w", err)
	}
	return s, nil
}

// execute runs the step body under its policy. Every failure is reported to
// the callback exactly once.
func (q *Sequencer) execute(ctx context.Context, step *Step, index int, s state.State) (state.State, error) {
	report := func(err error) {
		if q.callback != nil {
			q.callback(step, index, q.steps.Len(), false, err)
		}
	}

	switch step.Policy {
	case PolicyAskRetry:
		var next state.State
		err := Attempt(ctx, q.prompter, step.RetryPrompt, report, func(ctx context.Context) error {
			var err error
			next, err = step.Run(ctx, s)
			return err
		})
		return next, err

	case PolicyAskContinue:
		next, err := step.Run(ctx, s)
		if err == nil {
			return next, nil
		}
		report(err)
		if !commandFailed(err) {
			return s, err
		}
		q.logger.Warn("step failed, asking whether to continue",
			slog.String("step", step.Name),
			slog.String("error", err.Error()),
		)
		ok, perr := q.prompter.YesNo(ctx, step.RetryPrompt)
		if perr != nil {
			return s, errors.Join(err, perr)
		}
		if !ok {
			return s, err
		}
		return next, nil

	default:
		next, err := step.Run(ctx, s)
		if err != nil {
			report(err)
		}
		return next, err
	}
}
