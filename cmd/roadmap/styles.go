package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/roadmap/roadmap/internal/types"
)

// colorEnabled is decided once at startup: a real terminal, not NO_COLOR,
// and not --no-color, the way the teacher pairs termenv profile detection
// with lipgloss rather than emitting raw escape codes unconditionally.
var colorEnabled = func() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}()

var (
	provenStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"})
	staleStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"})
	brokenStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"})
	unprovenStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	boldStyle     = lipgloss.NewStyle().Bold(true)
)

// statusStyle renders text in the color assigned to status, or plain when
// colorEnabled is false so piped/--json output never carries escape codes.
func statusStyle(status types.Status, text string) string {
	if !colorEnabled {
		return text
	}
	switch status {
	case types.StatusProven:
		return provenStyle.Render(text)
	case types.StatusStale:
		return staleStyle.Render(text)
	case types.StatusBroken:
		return brokenStyle.Render(text)
	default:
		return unprovenStyle.Render(text)
	}
}

func muted(text string) string {
	if !colorEnabled {
		return text
	}
	return mutedStyle.Render(text)
}

func bold(text string) string {
	if !colorEnabled {
		return text
	}
	return boldStyle.Render(text)
}
