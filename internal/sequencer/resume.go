package sequencer

import (
	"context"
	"errors"
	"fmt"

	"github.com/druarnfield/archie/internal/prompt"
	"github.com/druarnfield/archie/internal/state"
)

// Resume decides where a run starts. Without a saved record it returns a
// fresh state at step 1. With one, it asks the operator whether to pick up
// at the saved step; declining clears the record and starts over.
//
// A record written for a catalogue of a different length, or one that is
// missing something a completed step guarantees, is reported as corrupt
// rather than resumed.
func Resume(ctx context.Context, store Store, p prompt.Prompter, cat Catalogue) (state.State, error) {
	total := cat.Len()
	s, err := store.Load()
	if errors.Is(err, state.ErrNotFound) {
		return state.New(total), nil
	}
	if err != nil {
		return state.State{}, err
	}
	if s.TotalSteps != total {
		return state.State{}, fmt.Errorf("%w: saved for %d steps, installer has %d", state.ErrCorrupt, s.TotalSteps, total)
	}
	if err := cat.Check(s); err != nil {
		return state.State{}, fmt.Errorf("%w: %w", state.ErrCorrupt, err)
	}

	question := fmt.Sprintf("An aborted installation was detected. Do you want to continue installation from step (%d/%d)?",
		s.CurrentStep, s.TotalSteps)
	ok, err := p.YesNo(ctx, question)
	if err != nil {
		return state.State{}, err
	}
	if ok {
		return s, nil
	}

	if err := store.Clear(); err != nil {
		return state.State{}, fmt.Errorf("clearing saved state: %w", err)
	}
	return s.Reset(), nil
}
