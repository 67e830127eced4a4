package tui

import "github.com/charmbracelet/lipgloss"

// field identifies a focusable form control. fieldNone means keyboard
// shortcuts are live.
type field int

const (
	fieldNone field = iota
	fieldInput
	fieldBackground
	fieldScale
	fieldQuality
	fieldFormat
	fieldLink
)

// focusOrder is the Tab order.
var focusOrder = []field{
	fieldInput,
	fieldBackground,
	fieldScale,
	fieldQuality,
	fieldFormat,
	fieldLink,
}

func (f field) label() string {
	switch f {
	case fieldInput:
		return "Input"
	case fieldBackground:
		return "Background"
	case fieldScale:
		return "Image Scale"
	case fieldQuality:
		return "Image Quality"
	case fieldFormat:
		return "Image Format"
	case fieldLink:
		return "Link"
	default:
		return ""
	}
}

const heroTagline = "Type LaTeX, export images, share links."

const (
	minFormWidth         = 40
	formHorizontalMargin = 4
	inputPlaceholder     = `\frac{1}{2}`
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	labelStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("147"))
	focusedLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	accentColor        = lipgloss.Color("#ff8c00")
	emberColor         = lipgloss.Color("#2b1400")
	textColor          = lipgloss.Color("#fff4d0")
	secondaryTextColor = lipgloss.Color("#ffb347")

	taglineStyle       = lipgloss.NewStyle().Foreground(secondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	bannerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#a3be8c")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	formBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	modalBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	topModalBoxStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	disabledStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(textColor).Background(emberColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#110600"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines       = []string{
		"█    ▄▀▄ ▀█▀ █▀▀ ▀▄ ▄▀ █▀▄",
		"█    █▀█  █  █▀   ▄█▄  █▀▄",
		"▀▀▀▀ ▀ ▀  ▀  ▀▀▀ ▀▀ ▀▀ ▀ ▀",
	}
)
