// Package prompt asks the operator questions. Every call blocks until a
// valid answer is given; invalid yes/no or choice input is re-asked by the
// Prompter itself.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter is the operator-facing question interface used by the steps.
type Prompter interface {
	// Text asks a free-text question and returns the trimmed answer.
	Text(ctx context.Context, question string) (string, error)

	// YesNo asks a yes/no question.
	YesNo(ctx context.Context, question string) (bool, error)

	// Choice asks the operator to pick one of options and returns its
	// 0-based index.
	Choice(ctx context.Context, question string, options []string) (int, error)
}

// ErrNoInput is returned when the input stream ends before an answer.
var ErrNoInput = errors.New("no more input from operator")

// LinePrompter reads answers line by line. It is used when stdin is not a
// terminal and in tests.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter reading from r and writing
// questions to w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(r), out: w}
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Text prints question and returns the trimmed line typed by the operator.
func (p *LinePrompter) Text(ctx context.Context, question string) (string, error) {
	fmt.Fprint(p.out, question)
	return p.readLine(ctx)
}

// YesNo loops until the operator answers y or n (either case).
func (p *LinePrompter) YesNo(ctx context.Context, question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s (y/n): ", question)
		answer, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch answer {
		case "y", "Y":
			return true, nil
		case "n", "N":
			return false, nil
		}
	}
}

// Choice prints the numbered options and loops until a number in range is
// entered.
func (p *LinePrompter) Choice(ctx context.Context, question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("choice without options")
	}
	for {
		fmt.Fprintf(p.out, "%s\n\n", question)
		for i, opt := range options {
			fmt.Fprintf(p.out, "%d. %s\n", i+1, opt)
		}
		fmt.Fprint(p.out, "\nEnter number: ")

		answer, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Fprint(p.out, "\nError: Enter only the number!\n\n")
			continue
		}
		if n >= 1 && n <= len(options) {
			return n - 1, nil
		}
	}
}
