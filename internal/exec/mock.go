package exec

import (
	"context"
	"fmt"
)

// MockRunner is a test double that returns pre-configured results for commands.
// Keys are formed as "name arg1 arg2 ..." (see Key).
type MockRunner struct {
	// Results holds a fixed result per command.
	Results map[string]Result

	// Sequences holds results consumed one per call, taking precedence over
	// Results until exhausted.
	Sequences map[string][]Result

	// AllowUnknown makes commands missing from both maps succeed with an
	// empty result instead of failing.
	AllowUnknown bool

	// Calls records every command run, attached or captured, in order.
	Calls []string
}

// Run looks up the command key and returns the matching result.
func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	key := Key(name, args...)
	m.Calls = append(m.Calls, key)

	result, ok := m.next(key)
	if !ok {
		if m.AllowUnknown {
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("unexpected command: %q", key)
	}
	if result.ExitCode != 0 {
		return result, &CommandError{Name: name, Args: args, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	return result, nil
}

// Attach behaves like Run but discards the output.
func (m *MockRunner) Attach(ctx context.Context, name string, args ...string) error {
	_, err := m.Run(ctx, name, args...)
	return err
}

func (m *MockRunner) next(key string) (Result, bool) {
	if seq := m.Sequences[key]; len(seq) > 0 {
		m.Sequences[key] = seq[1:]
		return seq[0], true
	}
	result, ok := m.Results[key]
	return result, ok
}

// Count returns how many times the command key was run.
func (m *MockRunner) Count(key string) int {
	n := 0
	for _, c := range m.Calls {
		if c == key {
			n++
		}
	}
	return n
}
