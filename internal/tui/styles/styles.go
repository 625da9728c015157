package styles

import "github.com/charmbracelet/lipgloss"

// Theme bundles the palette-dependent styles. Two palettes ship: a dark
// default and a light variant, toggled at runtime and persisted as a
// preference.
type Theme struct {
	Name string

	Card        lipgloss.Style // Bordered excerpt card
	BookAuthor  lipgloss.Style // Small-caps author line
	BookTitle   lipgloss.Style // Prominent title line
	Content     lipgloss.Style // Excerpt body
	Dim         lipgloss.Style // Secondary text, footer help
	Accent      lipgloss.Style // Like count, highlights
	Liked       lipgloss.Style // Filled heart
	Unliked     lipgloss.Style // Outline heart
	ErrorBanner lipgloss.Style // Dismissable error strip
	Success     lipgloss.Style // Save confirmations
	Selected    lipgloss.Style // Filter list selection
	MatchChar   lipgloss.Style // Fuzzy-matched characters
	InputLabel  lipgloss.Style // Form field labels
}

// Heart indicator characters
const (
	HeartFilled  = "♥"
	HeartOutline = "♡"
)

// Dark is the default theme.
func Dark() Theme {
	var (
		rose   = lipgloss.Color("#FB7185")
		amber  = lipgloss.Color("#FBBF24")
		white  = lipgloss.Color("#F9FAFB")
		gray   = lipgloss.Color("#9CA3AF")
		dim    = lipgloss.Color("#6B7280")
		red    = lipgloss.Color("#EF4444")
		green  = lipgloss.Color("#10B981")
		border = lipgloss.Color("#374151")
	)
	return Theme{
		Name: "dark",
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 3),
		BookAuthor:  lipgloss.NewStyle().Foreground(gray),
		BookTitle:   lipgloss.NewStyle().Foreground(white).Bold(true),
		Content:     lipgloss.NewStyle().Foreground(white),
		Dim:         lipgloss.NewStyle().Foreground(dim),
		Accent:      lipgloss.NewStyle().Foreground(amber),
		Liked:       lipgloss.NewStyle().Foreground(rose),
		Unliked:     lipgloss.NewStyle().Foreground(dim),
		ErrorBanner: lipgloss.NewStyle().Foreground(red),
		Success:     lipgloss.NewStyle().Foreground(green),
		Selected: lipgloss.NewStyle().
			Foreground(white).
			Background(lipgloss.Color("#4B5563")),
		MatchChar:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		InputLabel: lipgloss.NewStyle().Foreground(gray),
	}
}

// Light is the alternate theme for bright terminals.
func Light() Theme {
	var (
		rose   = lipgloss.Color("#E11D48")
		amber  = lipgloss.Color("#B45309")
		black  = lipgloss.Color("#111827")
		gray   = lipgloss.Color("#4B5563")
		dim    = lipgloss.Color("#9CA3AF")
		red    = lipgloss.Color("#DC2626")
		green  = lipgloss.Color("#047857")
		border = lipgloss.Color("#D1D5DB")
	)
	return Theme{
		Name: "light",
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 3),
		BookAuthor:  lipgloss.NewStyle().Foreground(gray),
		BookTitle:   lipgloss.NewStyle().Foreground(black).Bold(true),
		Content:     lipgloss.NewStyle().Foreground(black),
		Dim:         lipgloss.NewStyle().Foreground(dim),
		Accent:      lipgloss.NewStyle().Foreground(amber),
		Liked:       lipgloss.NewStyle().Foreground(rose),
		Unliked:     lipgloss.NewStyle().Foreground(dim),
		ErrorBanner: lipgloss.NewStyle().Foreground(red),
		Success:     lipgloss.NewStyle().Foreground(green),
		Selected: lipgloss.NewStyle().
			Foreground(black).
			Background(lipgloss.Color("#E5E7EB")),
		MatchChar:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		InputLabel: lipgloss.NewStyle().Foreground(gray),
	}
}

// ByName returns the theme for a persisted preference, defaulting to dark.
func ByName(name string) Theme {
	if name == "light" {
		return Light()
	}
	return Dark()
}
