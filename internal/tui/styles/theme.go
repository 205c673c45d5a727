package styles

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the interface uses
var (
	Base     = lipgloss.Color("#1e1e2e")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Surface2 = lipgloss.Color("#585b70")
	Subtext0 = lipgloss.Color("#a6adc8")
	Subtext1 = lipgloss.Color("#bac2de")
	Text     = lipgloss.Color("#cdd6f4")

	Blue   = lipgloss.Color("#89b4fa")
	Sky    = lipgloss.Color("#89dceb")
	Green  = lipgloss.Color("#a6e3a1")
	Yellow = lipgloss.Color("#f9e2af")
	Peach  = lipgloss.Color("#fab387")
	Red    = lipgloss.Color("#f38ba8")
	Mauve  = lipgloss.Color("#cba6f7")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve).
			Background(Surface0).
			Padding(0, 1)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(Surface1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Red)

	HintStyle = lipgloss.NewStyle().
			Foreground(Subtext0)

	// Session banner printed before the terminal goes raw
	BannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Mauve)

	BotStyle = lipgloss.NewStyle().
			Foreground(Green)

	RuleStyle = lipgloss.NewStyle().
			Foreground(Surface2)
)

// FollowState is what the watch status bar reports about the file.
type FollowState int

const (
	StateFollowing FollowState = iota
	StatePaused
	StateWaiting
	StateError
)

func (s FollowState) String() string {
	switch s {
	case StateFollowing:
		return "following"
	case StatePaused:
		return "paused"
	case StateWaiting:
		return "waiting for file"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// StateStyle colours the state indicator.
func StateStyle(s FollowState) lipgloss.Style {
	switch s {
	case StateFollowing:
		return lipgloss.NewStyle().Foreground(Green).Bold(true)
	case StatePaused, StateWaiting:
		return lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(Red).Bold(true)
	}
}

// StateGlyph is the one-character state indicator.
func StateGlyph(s FollowState) string {
	switch s {
	case StateFollowing:
		return "●"
	case StatePaused:
		return "⏸"
	case StateWaiting:
		return "○"
	default:
		return "✗"
	}
}
