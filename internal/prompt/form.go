package prompt

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the operator cancels a form with ctrl+c.
var ErrAborted = errors.New("aborted by operator")

// FormPrompter asks questions with interactive huh forms.
type FormPrompter struct {
	theme *huh.Theme
}

// NewFormPrompter returns a FormPrompter using the Charm theme.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{theme: huh.ThemeCharm()}
}

func (p *FormPrompter) run(ctx context.Context, field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme).
		RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// Text asks a free-text question.
func (p *FormPrompter) Text(ctx context.Context, question string) (string, error) {
	var answer string
	err := p.run(ctx, huh.NewInput().
		Title(strings.TrimSpace(question)).
		Value(&answer))
	return strings.TrimSpace(answer), err
}

// YesNo asks a yes/no question.
func (p *FormPrompter) YesNo(ctx context.Context, question string) (bool, error) {
	var answer bool
	err := p.run(ctx, huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&answer))
	return answer, err
}

// Choice asks the operator to pick one option.
func (p *FormPrompter) Choice(ctx context.Context, question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("choice without options")
	}
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, i)
	}

	var answer int
	err := p.run(ctx, huh.NewSelect[int]().
		Title(question).
		Options(opts...).
		Value(&answer))
	return answer, err
}
