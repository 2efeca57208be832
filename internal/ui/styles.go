package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all lipgloss styles for terminal output
type Styles struct {
	enabled bool

	// Severity styles
	Critical lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Structural styles
	Header    lipgloss.Style
	Subheader lipgloss.Style
	Widget    lipgloss.Style
	Rule      lipgloss.Style
	Fix       lipgloss.Style
	Separator lipgloss.Style

	// Icons (degraded to ASCII when not interactive)
	IconCritical string
	IconHigh     string
	IconMedium   string
	IconLow      string
	IconWarning  string
	IconSuccess  string
}

// NewStyles creates a new Styles instance
// When enabled is false, styles return text unchanged (for non-TTY output)
func NewStyles(enabled bool) *Styles {
	s := &Styles{enabled: enabled}

	if enabled {
		s.Critical = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true) // Red
		s.High = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))             // Orange
		s.Medium = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // Yellow
		s.Low = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))               // Blue
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))           // Green
		s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
		s.Subheader = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Widget = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		s.Rule = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Fix = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
		s.Separator = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

		s.IconCritical = "✗" // ✗
		s.IconHigh = "✗"
		s.IconMedium = "⚠" // ⚠
		s.IconLow = "ℹ"    // ℹ
		s.IconWarning = "⚠"
		s.IconSuccess = "✓" // ✓
	} else {
		// No-op styles for non-TTY (plain text output)
		s.Critical = lipgloss.NewStyle()
		s.High = lipgloss.NewStyle()
		s.Medium = lipgloss.NewStyle()
		s.Low = lipgloss.NewStyle()
		s.Success = lipgloss.NewStyle()
		s.Warning = lipgloss.NewStyle()

		s.Header = lipgloss.NewStyle()
		s.Subheader = lipgloss.NewStyle()
		s.Widget = lipgloss.NewStyle()
		s.Rule = lipgloss.NewStyle()
		s.Fix = lipgloss.NewStyle()
		s.Separator = lipgloss.NewStyle()

		// ASCII fallback icons
		s.IconCritical = "CRITICAL:"
		s.IconHigh = "HIGH:"
		s.IconMedium = "MEDIUM:"
		s.IconLow = "LOW:"
		s.IconWarning = "WARN:"
		s.IconSuccess = "OK:"
	}

	return s
}

// Enabled returns whether styling is enabled
func (s *Styles) Enabled() bool {
	return s.enabled
}
