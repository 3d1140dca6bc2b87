// Package sequencer runs an installation as a fixed, ordered catalogue of
// steps. Progress is persisted after every completed step, so a run that
// stops for any reason can be resumed at the first step that has not
// completed.
package sequencer

import (
	"context"
	"fmt"

	"github.com/druarnfield/archie/internal/state"
)

// Policy decides what happens when a step body fails.
type Policy int

const (
	// PolicyFatal aborts the run on the first failure.
	PolicyFatal Policy = iota

	// PolicyAskRetry asks the operator whether to run the whole step again
	// after a command failure or invalid input. Declining aborts the run.
	PolicyAskRetry

	// PolicyAskContinue asks the operator whether to carry on as if the step
	// had succeeded after a command failure. Declining aborts the run.
	PolicyAskContinue
)

func (p Policy) String() string {
	switch p {
	case PolicyFatal:
		return "fatal"
	case PolicyAskRetry:
		return "retry"
	case PolicyAskContinue:
		return "continue"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Step is one unit of the installation. It is the unit of resumability:
// a step either completes and is persisted, or the run aborts before it
// counts as done.
type Step struct {
	// Name is shown in progress output.
	Name string

	// Explain describes what the step changes on the system.
	Explain string

	// When reports whether the step applies to the answers collected so
	// far. A nil When always applies. Steps that do not apply are skipped
	// without running, but still advance the persisted position.
	When func(s state.State) bool

	// Run executes the step against a copy of the state and returns the
	// updated copy. The sequencer keeps the returned state only when Run
	// succeeds.
	Run func(ctx context.Context, s state.State) (state.State, error)

	// Ensures checks what the step guarantees about the state once it has
	// completed. Resume runs it for every completed step that applied, so a
	// record that lost a recorded answer is refused instead of resumed.
	Ensures func(s state.State) error

	// Policy selects the failure handling for this step.
	Policy Policy

	// RetryPrompt is asked after a failure under PolicyAskRetry or
	// PolicyAskContinue.
	RetryPrompt string
}

// Applies reports whether the step should run for s.
func (st *Step) Applies(s state.State) bool {
	return st.When == nil || st.When(s)
}

// Catalogue is the ordered list of steps. Step indices are 1-based.
type Catalogue []Step

// Len returns the number of steps.
func (c Catalogue) Len() int {
	return len(c)
}

// At returns the step at the 1-based index.
func (c Catalogue) At(index int) (*Step, bool) {
	if index < 1 || index > len(c) {
		return nil, false
	}
	return &c[index-1], true
}

// Index returns the 1-based index of the step named name, or 0.
func (c Catalogue) Index(name string) int {
	for i := range c {
		if c[i].Name == name {
			return i + 1
		}
	}
	return 0
}

// Check runs Ensures for every step before s.CurrentStep that applies to s.
func (c Catalogue) Check(s state.State) error {
	for i := 1; i < s.CurrentStep && i <= len(c); i++ {
		st := &c[i-1]
		if st.Ensures == nil || !st.Applies(s) {
			continue
		}
		if err := st.Ensures(s); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Name, err)
		}
	}
	return nil
}
