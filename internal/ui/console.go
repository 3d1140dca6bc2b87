package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const (
	panelWidth = 64
	barWidth   = 30
)

// Console writes styled progress output. It is not safe for concurrent use.
type Console struct {
	out     io.Writer
	styles  Styles
	bar     progress.Model
	explain bool
}

// NewConsole returns a Console writing to w. Colors are used only when w
// is a terminal that supports them.
func NewConsole(w io.Writer) *Console {
	styles := DefaultStyles(lipgloss.NewRenderer(w))
	return &Console{
		out:    w,
		styles: styles,
		bar: progress.New(
			progress.WithSolidFill(styles.ProgressColor),
			progress.WithFillCharacters('█', '░'),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
	}
}

// SetExplain makes StepHeader print each step's explanation.
func (c *Console) SetExplain(on bool) {
	c.explain = on
}

// Welcome prints the opening banner.
func (c *Console) Welcome(version string, totalSteps int) {
	fmt.Fprintln(c.out, c.styles.Panel.Render(
		c.styles.Title.Render("Arch Linux install script")+"\n"+
			c.styles.Muted.Render("archie "+version),
	))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.styles.Subtitle.Render(rule("=", fmt.Sprintf("Total installation steps: %d", totalSteps))))
	fmt.Fprintln(c.out)
}

// StepHeader announces the step about to run together with overall
// progress. index is 1-based.
func (c *Console) StepHeader(index, total int, name, explain string) {
	pct := 0
	if total > 0 {
		pct = index * 100 / total
		if pct > 100 {
			pct = 100
		}
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.styles.Title.Render(rule("-", name)))
	fmt.Fprintf(c.out, "  Step %d/%d  %s  %d%%\n", index, total, c.bar.ViewAs(float64(pct)/100), pct)
	if c.explain && explain != "" {
		fmt.Fprintln(c.out, c.styles.Muted.Render(indent(explain)))
	}
	fmt.Fprintln(c.out)
}

// Done reports a completed step.
func (c *Console) Done() {
	fmt.Fprintln(c.out, c.styles.Success.Render(c.styles.StatusDone+" Done"))
}

// Skipped reports a step that does not apply to this installation.
func (c *Console) Skipped(name string) {
	fmt.Fprintln(c.out, c.styles.Muted.Render(fmt.Sprintf("%s %s: not needed", c.styles.StatusSkipped, name)))
}

// Failed reports a step failure. The run may still continue if the
// operator chooses to retry.
func (c *Console) Failed(err error) {
	fmt.Fprintln(c.out, c.styles.Error.Render(c.styles.StatusFailed+" Error"))
	if err != nil {
		fmt.Fprintln(c.out, c.styles.Error.Render(indent(err.Error())))
	}
}

// Info prints a plain progress message from inside a step.
func (c *Console) Info(msg string) {
	fmt.Fprintln(c.out, c.styles.Muted.Render(c.styles.StatusInfo)+" "+msg)
}

// Warn prints a highlighted message.
func (c *Console) Warn(msg string) {
	fmt.Fprintln(c.out, c.styles.Warning.Render(msg))
}

// Notice prints a banner-style yellow message, such as the detection of
// an aborted installation.
func (c *Console) Notice(msg string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.styles.Notice.Render(rule("=", msg)))
	fmt.Fprintln(c.out)
}

// Success prints the green end-of-installation banner.
func (c *Console) Success() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.styles.SuccessPanel.Render("Installation finished successfully."))
}

// Failure prints the red banner shown when the installation aborts.
func (c *Console) Failure() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.styles.FailurePanel.Render("Installation failed."))
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer {
	return c.out
}

// rule centers text in a line of fill characters, panelWidth wide.
func rule(fill, text string) string {
	pad := panelWidth - lipgloss.Width(text) - 2
	if pad < 2 {
		return text
	}
	left := pad / 2
	return strings.Repeat(fill, left) + " " + text + " " + strings.Repeat(fill, pad-left)
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
