package sequencer

import (
	"context"
	"errors"

	"github.com/druarnfield/archie/internal/prompt"
)

// Attempt runs action until it succeeds, the error is not Retryable, or the
// operator declines to try again. onFailure, if non-nil, sees every failure
// before the question is asked. The error of the last attempt is returned.
func Attempt(ctx context.Context, p prompt.Prompter, question string, onFailure func(error), action func(context.Context) error) error {
	for {
		err := action(ctx)
		if err == nil {
			return nil
		}
		if onFailure != nil {
			onFailure(err)
		}
		if !Retryable(err) {
			return err
		}

		again, perr := p.YesNo(ctx, question)
		if perr != nil {
			return errors.Join(err, perr)
		}
		if !again {
			return err
		}
	}
}
