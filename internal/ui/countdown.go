package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCountdownCancelled is returned when the operator interrupts the
// countdown.
var ErrCountdownCancelled = errors.New("countdown cancelled")

// Countdown waits a number of seconds, showing the time left. On a
// terminal it runs a small Bubble Tea program that can be cancelled with
// ctrl+c or q; otherwise it prints "5...4...3...2...1...0".
type Countdown struct {
	Seconds     int
	Out         io.Writer
	In          io.Reader
	Interactive bool

	// tick is the length of one second; tests shorten it.
	tick time.Duration
}

func (c *Countdown) interval() time.Duration {
	if c.tick > 0 {
		return c.tick
	}
	return time.Second
}

// Run blocks until the countdown reaches zero, ctx is done, or the
// operator cancels.
func (c *Countdown) Run(ctx context.Context) error {
	fmt.Fprintln(c.Out, "\nSystem will restart in:")
	if c.Interactive {
		return c.runProgram(ctx)
	}
	return c.runPlain(ctx)
}

func (c *Countdown) runPlain(ctx context.Context) error {
	for left := c.Seconds; left > 0; left-- {
		fmt.Fprintf(c.Out, "%d...", left)
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.Out)
			return ctx.Err()
		case <-time.After(c.interval()):
		}
	}
	fmt.Fprintln(c.Out, "0")
	return nil
}

func (c *Countdown) runProgram(ctx context.Context) error {
	m := newCountdownModel(c.Seconds, c.interval())
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(c.Out)}
	if c.In != nil {
		opts = append(opts, tea.WithInput(c.In))
	}

	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running countdown: %w", err)
	}
	if cm, ok := final.(countdownModel); ok && cm.cancelled {
		return ErrCountdownCancelled
	}
	return nil
}

type countdownTickMsg struct{}

type countdownModel struct {
	left      int
	interval  time.Duration
	cancelled bool
}

func newCountdownModel(seconds int, interval time.Duration) countdownModel {
	return countdownModel{left: seconds, interval: interval}
}

func (m countdownModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return countdownTickMsg{}
	})
}

// Init implements tea.Model.
func (m countdownModel) Init() tea.Cmd {
	if m.left <= 0 {
		return tea.Quit
	}
	return m.tick()
}

// Update implements tea.Model.
func (m countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	case countdownTickMsg:
		m.left--
		if m.left <= 0 {
			m.left = 0
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

// View implements tea.Model.
func (m countdownModel) View() string {
	if m.cancelled {
		return "Reboot cancelled.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %d", m.left)
	b.WriteString("  (press q to cancel the reboot)\n")
	return b.String()
}
