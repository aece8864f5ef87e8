package style

import (
	"github.com/charmbracelet/lipgloss"
)

// The palette is adaptive: every color carries a light and a dark
// variant and lipgloss picks one from the terminal background.
var (
	PrimaryColor   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	SecondaryColor = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"}

	SuccessColor = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	InfoColor    = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}

	HeadingColor = lipgloss.AdaptiveColor{Light: "#0F172A", Dark: "#F1F5F9"}
	TextColor    = lipgloss.AdaptiveColor{Light: "#334155", Dark: "#CBD5E1"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#A1A1AA"}
)

// Accents for the things stencil talks about most: templates and their
// variables, lifecycle hooks, and the backup store.
var (
	TemplateColor = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	VariableColor = lipgloss.AdaptiveColor{Light: "#0284C7", Dark: "#38BDF8"}
	HookColor     = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	BackupColor   = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
)
