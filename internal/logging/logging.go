// Package logging writes the installer's structured log. The log lives on
// the live medium next to the state file, so an aborted run can be
// diagnosed before it is resumed.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const maxLogSize = 5 * 1024 * 1024 // 5MB

// Setup opens logPath for appending and returns a JSON logger on it. With
// verbose set, records are also written to stderr.
func Setup(logPath string, verbose bool) (*slog.Logger, error) {
	return setup(logPath, verbose, os.Stderr)
}

func setup(logPath string, verbose bool, stderr io.Writer) (*slog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, err
	}

	if err := RotateIfNeeded(logPath); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	var w io.Writer = f
	if verbose {
		w = io.MultiWriter(f, stderr)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	return slog.New(handler).With(slog.Int("pid", os.Getpid())), nil
}

// SetupOrDiscard is Setup, except that a log file which cannot be opened
// yields a logger that drops everything along with the error. Logging never
// stops an installation.
func SetupOrDiscard(logPath string, verbose bool) (*slog.Logger, error) {
	logger, err := Setup(logPath, verbose)
	if err != nil {
		return slog.New(NopHandler{}), err
	}
	return logger, nil
}

// RotateIfNeeded moves a log larger than maxLogSize to <path>.old,
// replacing an older backup. Every attempt at an installation appends to
// the same log, so retries are capped at two files on the live medium.
func RotateIfNeeded(logPath string) error {
	info, err := os.Stat(logPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking log size: %w", err)
	}
	if info.Size() <= maxLogSize {
		return nil
	}

	backup := logPath + ".old"
	if err := os.Remove(backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("rotating log: %w", err)
	}
	if err := os.Rename(logPath, backup); err != nil {
		return fmt.Errorf("rotating log: %w", err)
	}
	return nil
}

// NopHandler drops every record. Tests and the no-log fallback use it.
type NopHandler struct{}

func (NopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h NopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h NopHandler) WithGroup(string) slog.Handler            { return h }
