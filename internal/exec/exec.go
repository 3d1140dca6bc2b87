// Package exec runs the external tools an installation drives. Most tools
// are attached to the operator's terminal (they print progress or ask for
// passwords themselves); a few are run with their output captured so it can
// be parsed.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Result holds the output and exit code of a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandError reports an external command that exited non-zero or could
// not be started. ExitCode is -1 when the process never ran.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	var exitErr *exec.ExitError
	if e.ExitCode < 0 && !errors.As(e.Err, &exitErr) {
		return fmt.Sprintf("command %q could not be started: %v", e.Command(), e.Err)
	}
	msg := fmt.Sprintf("command %q exited with code %d", e.Command(), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// Command returns the full command line.
func (e *CommandError) Command() string {
	return Key(e.Name, e.Args...)
}

// Key joins a command and its arguments with single spaces. MockRunner uses
// it as the lookup key.
func Key(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Runner is an interface for executing external commands.
// Use DefaultRunner for real commands and MockRunner for tests.
type Runner interface {
	// Run executes the command and captures its stdout and stderr.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// Attach executes the command connected to the operator's terminal.
	Attach(ctx context.Context, name string, args ...string) error
}

// DefaultRunner executes commands on the real system.
type DefaultRunner struct {
	Logger *slog.Logger

	// Stdin, Stdout and Stderr are used by Attach. Nil means the process's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the named command with the given arguments and returns
// the captured stdout, stderr, and exit code.
func (d *DefaultRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		cerr := commandError(name, args, err)
		cerr.Stderr = result.Stderr
		result.ExitCode = cerr.ExitCode
		d.log(name, args, result.ExitCode)
		return result, cerr
	}

	d.log(name, args, 0)
	return result, nil
}

// Attach executes the named command with the terminal attached and blocks
// until it exits.
func (d *DefaultRunner) Attach(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if d.Stdin != nil {
		cmd.Stdin = d.Stdin
	}
	if d.Stdout != nil {
		cmd.Stdout = d.Stdout
	}
	if d.Stderr != nil {
		cmd.Stderr = d.Stderr
	}

	if err := cmd.Run(); err != nil {
		cerr := commandError(name, args, err)
		d.log(name, args, cerr.ExitCode)
		return cerr
	}
	d.log(name, args, 0)
	return nil
}

func (d *DefaultRunner) log(name string, args []string, code int) {
	if d.Logger == nil {
		return
	}
	d.Logger.Debug("command finished",
		slog.String("command", Key(name, args...)),
		slog.Int("exit_code", code),
	)
}

func commandError(name string, args []string, err error) *CommandError {
	cerr := &CommandError{Name: name, Args: args, ExitCode: -1, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
	}
	return cerr
}

// CommandExists checks whether a command is available on the system PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
