// Package ui renders the installer's console output: banners, step
// headers with a progress bar, per-step outcomes, and the reboot
// countdown.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles holds the Lipgloss styles used for console output.
type Styles struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Error         lipgloss.Style
	Warning       lipgloss.Style
	Notice        lipgloss.Style
	Panel         lipgloss.Style
	FailurePanel  lipgloss.Style
	SuccessPanel  lipgloss.Style
	StatusDone    string
	StatusSkipped string
	StatusFailed  string
	StatusInfo    string
	ProgressColor string
}

// DefaultStyles returns Styles bound to renderer r. Uses AdaptiveColor to
// work in both light and dark terminals.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	accent := lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	muted := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	success := lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}
	errColor := lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	warn := lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	magenta := lipgloss.AdaptiveColor{Light: "#A21CAF", Dark: "#E879F9"}

	panel := r.NewStyle().
		Border(lipgloss.DoubleBorder()).
		Padding(0, 2).
		Width(panelWidth).
		Align(lipgloss.Center)

	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(accent),

		Subtitle: r.NewStyle().
			Foreground(magenta),

		Muted: r.NewStyle().
			Foreground(muted),

		Success: r.NewStyle().
			Foreground(success),

		Error: r.NewStyle().
			Bold(true).
			Foreground(errColor),

		Warning: r.NewStyle().
			Foreground(warn),

		Notice: r.NewStyle().
			Bold(true).
			Foreground(warn),

		Panel: panel.BorderForeground(accent),

		FailurePanel: panel.
			BorderForeground(errColor).
			Foreground(errColor),

		SuccessPanel: panel.
			BorderForeground(success).
			Foreground(success),

		StatusDone:    "✓",
		StatusSkipped: "~",
		StatusFailed:  "✗",
		StatusInfo:    "›",

		ProgressColor: "#22D3EE",
	}
}
