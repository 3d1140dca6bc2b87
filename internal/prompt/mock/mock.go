// Package mock provides a scripted prompt.Prompter for tests.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/druarnfield/archie/internal/prompt"
)

// Kind identifies which Prompter method an Answer satisfies.
type Kind int

const (
	KindText Kind = iota
	KindYesNo
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindYesNo:
		return "yes/no"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Answer is one scripted reply. When Match is set, the question must
// contain it.
type Answer struct {
	Kind   Kind
	Match  string
	Text   string
	Yes    bool
	Choice int
}

// Text scripts a free-text answer.
func Text(s string) Answer { return Answer{Kind: KindText, Text: s} }

// Yes scripts a "yes".
func Yes() Answer { return Answer{Kind: KindYesNo, Yes: true} }

// No scripts a "no".
func No() Answer { return Answer{Kind: KindYesNo} }

// Choose scripts picking the option at 0-based index i.
func Choose(i int) Answer { return Answer{Kind: KindChoice, Choice: i} }

// On restricts the answer to questions containing match.
func (a Answer) On(match string) Answer {
	a.Match = match
	return a
}

// Prompter replays Answers in order and records every question asked.
type Prompter struct {
	Answers []Answer
	Asked   []string
}

var _ prompt.Prompter = (*Prompter)(nil)

// New returns a Prompter that will give answers in order.
func New(answers ...Answer) *Prompter {
	return &Prompter{Answers: answers}
}

// Remaining returns how many scripted answers were not consumed.
func (p *Prompter) Remaining() int {
	return len(p.Answers)
}

func (p *Prompter) next(kind Kind, question string) (Answer, error) {
	p.Asked = append(p.Asked, question)
	if len(p.Answers) == 0 {
		return Answer{}, fmt.Errorf("unscripted %s question %q: %w", kind, question, prompt.ErrNoInput)
	}
	a := p.Answers[0]
	if a.Kind != kind {
		return Answer{}, fmt.Errorf("question %q is %s, script has %s next", question, kind, a.Kind)
	}
	if a.Match != "" && !strings.Contains(question, a.Match) {
		return Answer{}, fmt.Errorf("question %q does not contain %q", question, a.Match)
	}
	p.Answers = p.Answers[1:]
	return a, nil
}

// Text implements prompt.Prompter.
func (p *Prompter) Text(_ context.Context, question string) (string, error) {
	a, err := p.next(KindText, question)
	return a.Text, err
}

// YesNo implements prompt.Prompter.
func (p *Prompter) YesNo(_ context.Context, question string) (bool, error) {
	a, err := p.next(KindYesNo, question)
	return a.Yes, err
}

// Choice implements prompt.Prompter.
func (p *Prompter) Choice(_ context.Context, question string, options []string) (int, error) {
	a, err := p.next(KindChoice, question)
	if err != nil {
		return 0, err
	}
	if a.Choice < 0 || a.Choice >= len(options) {
		return 0, fmt.Errorf("scripted choice %d out of range for %q", a.Choice, question)
	}
	return a.Choice, nil
}
