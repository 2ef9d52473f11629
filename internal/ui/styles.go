// Package ui provides consistent styling for the mouseswipe CLI
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Color palette - consistent across the application
var (
	ColorPrimary = lipgloss.Color("39")  // Bright blue
	ColorSuccess = lipgloss.Color("82")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red
	ColorInfo    = lipgloss.Color("86")  // Cyan

	// Neutral colors
	ColorText   = lipgloss.Color("252") // Light gray
	ColorSubtle = lipgloss.Color("241") // Medium gray
)

// Base styles
var (
	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	KeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)
)

// Status icons
var (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconHeader  = "»"
)

// FormatHeader renders a section title followed by a separator
func FormatHeader(title string) string {
	header := HeaderStyle.Render(InfoStyle.Render(IconHeader) + " " + title)
	return header + "\n" + CreateSeparator(50, "─")
}

// FormatResult renders a check line, e.g. "✓ /dev/uinput - writable"
func FormatResult(success bool, step, message string) string {
	icon := ErrorStyle.Render(IconError)
	style := ErrorStyle
	if success {
		icon = SuccessStyle.Render(IconSuccess)
		style = SuccessStyle
	}

	result := "  " + icon + " " + step
	if message != "" {
		result += " - " + style.Render(message)
	}
	return result
}

// FormatKeyValue renders an aligned "key: value" line
func FormatKeyValue(key, value string) string {
	return "  " + KeyStyle.Render(key+":") + " " + TextStyle.Render(value)
}

// CreateSeparator creates a horizontal line separator
func CreateSeparator(width int, char string) string {
	if width <= 0 {
		width = 50
	}
	if char == "" {
		char = "─"
	}

	return lipgloss.NewStyle().
		Foreground(ColorSubtle).
		Render(strings.Repeat(char, width))
}

// Table renders rows under headers. highlight picks a style for a data cell,
// returning false to use the default text style.
func Table(headers []string, rows [][]string, highlight func(row, col int) (lipgloss.Style, bool)) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().
					Foreground(ColorPrimary).
					Bold(true).
					Padding(0, 1)
			}
			if highlight != nil {
				if style, ok := highlight(row, col); ok {
					return style.Padding(0, 1)
				}
			}
			return TextStyle.Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}
