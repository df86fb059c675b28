package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/memorybox/notification-center/internal/notify"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DropdownStyle frames the notification dropdown.
var DropdownStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// PanelStyle wraps the main content area.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// UnreadTitleStyle and ReadTitleStyle distinguish read state.
var (
	UnreadTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)
	ReadTitleStyle   = lipgloss.NewStyle().Foreground(ColorGray)
)

// UnreadDotStyle marks unread rows.
var UnreadDotStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)

// SubStyle is used for the secondary line (letter or capsule title).
var SubStyle = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)

// TimeStyle is used for relative timestamps.
var TimeStyle = lipgloss.NewStyle().Foreground(ColorGray)

// BadgeStyle renders the unread counter in the header.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(ColorRed).
	Padding(0, 1)

// ActionStyle renders the accept/reject affordances.
var (
	AcceptStyle = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	RejectStyle = lipgloss.NewStyle().Foreground(ColorRed)
)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// IconGlyph returns the glyph drawn for an icon kind.
func IconGlyph(kind notify.IconKind) string {
	switch kind {
	case notify.IconLetter:
		return "✉"
	case notify.IconCapsule:
		return "⏳"
	case notify.IconCapsuleOpen:
		return "🎁"
	case notify.IconFriendAccept:
		return "🤝"
	default:
		return "👤"
	}
}

// IconStyle returns a color-coded style for the given icon kind.
func IconStyle(kind notify.IconKind) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch kind {
	case notify.IconLetter:
		return base.Foreground(ColorBlue)
	case notify.IconCapsule:
		return base.Foreground(ColorOrange)
	case notify.IconCapsuleOpen:
		return base.Foreground(ColorMagenta)
	case notify.IconFriendAccept:
		return base.Foreground(ColorGreen)
	default:
		return base.Foreground(ColorYellow)
	}
}

// PhaseStyle returns a color-coded style for the connection phase label.
func PhaseStyle(phase notify.Phase, live bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch {
	case phase == notify.PhaseLoading:
		return base.Foreground(ColorYellow)
	case phase == notify.PhaseLive && live:
		return base.Foreground(ColorGreen)
	case phase == notify.PhaseLive:
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}
