// Package ui provides styling and terminal helpers for opsdeck
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color definitions for consistent theming
var (
	ColorPurple = lipgloss.Color("#7C3AED")
	ColorGreen  = lipgloss.Color("#10B981")
	ColorRed    = lipgloss.Color("#EF4444")
	ColorYellow = lipgloss.Color("#F59E0B")
	ColorCyan   = lipgloss.Color("#06B6D4")
	ColorGray   = lipgloss.Color("#6B7280")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPurple)
	commandStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
	noteStyle    = lipgloss.NewStyle().Italic(true).Foreground(ColorYellow)
)

// Title renders a section heading
func Title(s string) string {
	return titleStyle.Render(s)
}

// Command renders a shell command
func Command(s string) string {
	return commandStyle.Render(s)
}

// Note renders a correction note
func Note(s string) string {
	return noteStyle.Render(s)
}

// Green returns a green-colored string
func Green(s string) string {
	return lipgloss.NewStyle().Foreground(ColorGreen).Render(s)
}

// Red returns a red-colored string
func Red(s string) string {
	return lipgloss.NewStyle().Foreground(ColorRed).Render(s)
}

// Yellow returns a yellow-colored string
func Yellow(s string) string {
	return lipgloss.NewStyle().Foreground(ColorYellow).Render(s)
}

// Muted returns a gray string
func Muted(s string) string {
	return lipgloss.NewStyle().Foreground(ColorGray).Render(s)
}

// Mutedf returns a formatted gray string
func Mutedf(format string, a ...any) string {
	return Muted(fmt.Sprintf(format, a...))
}

// Redf returns a formatted red-colored string
func Redf(format string, a ...any) string {
	return Red(fmt.Sprintf(format, a...))
}
