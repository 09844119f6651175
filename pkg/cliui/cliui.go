// Package cliui provides shared lipgloss styles and small formatting helpers
// for chatwidget CLI commands.
package cliui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	KeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	StepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	UserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	AssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

const (
	successGlyph = "✓"
	failGlyph    = "✗"
)

// SuccessMark and FailMark are the rendered status glyphs. They are
// re-rendered by DisableColor.
var (
	SuccessMark = renderMarks(successGlyph, "82")
	FailMark    = renderMarks(failGlyph, "196")
)

func renderMarks(glyph, color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(glyph)
}

// DisableColor switches the default lipgloss renderer to the ASCII profile
// so every style renders without escape sequences.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
	SuccessMark = renderMarks(successGlyph, "82")
	FailMark = renderMarks(failGlyph, "196")
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Elapsed renders a dimmed "(3.2s)" suffix.
func Elapsed(d time.Duration) string {
	return StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(d)))
}
