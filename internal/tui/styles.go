package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/reptrack/internal/theme"
)

// boxStyle is a bordered block with a bold line style and a plain line style
// sharing its fill.
type boxStyle struct {
	Box    lipgloss.Style
	Strong lipgloss.Style
	Plain  lipgloss.Style
}

// Styles is the rendering surface for one program. It implements
// theme.Surface; every widget renders from it.
type Styles struct {
	Scheme theme.Scheme
	Label  string

	App         lipgloss.Style
	Header      lipgloss.Style
	Subtitle    lipgloss.Style
	Panel       lipgloss.Style
	PanelTitle  lipgloss.Style
	Placeholder lipgloss.Style
	Muted       lipgloss.Style
	Link        lipgloss.Style

	StartButton    lipgloss.Style
	StopButton     lipgloss.Style
	ResetButton    lipgloss.Style
	DisabledButton lipgloss.Style
	SchemeButton   lipgloss.Style

	StatusRunning     lipgloss.Style
	StatusStopped     lipgloss.Style
	StatusTextRunning lipgloss.Style
	StatusTextIdle    lipgloss.Style

	Cards        map[string]boxStyle
	StartupCards [6]boxStyle

	Notes      boxStyle
	Checkbox   lipgloss.Style
	GoActive   lipgloss.Style
	GoDisabled lipgloss.Style
	Watermark  lipgloss.Style
	Alert      lipgloss.Style
	Help       help.Styles
}

// NewStyles returns styles for the default scheme.
func NewStyles() *Styles {
	s := &Styles{}
	s.ApplyTheme(theme.Default, theme.PaletteFor(theme.Default))
	return s
}

// ApplyTheme rebuilds every style from the palette.
func (s *Styles) ApplyTheme(scheme theme.Scheme, p theme.Palette) {
	ink := lipgloss.Color(p.Black)
	surface := lipgloss.Color(p.White)
	bg := lipgloss.Color(p.Background)
	border := lipgloss.ThickBorder()

	s.Scheme = scheme
	s.Label = p.Label

	s.App = lipgloss.NewStyle().Foreground(ink).Background(bg)
	s.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(ink).
		Background(lipgloss.Color(p.Pink)).
		Border(border).
		BorderForeground(ink).
		Padding(0, 2)
	s.Subtitle = lipgloss.NewStyle().Bold(true).Foreground(ink)
	s.Panel = lipgloss.NewStyle().
		Foreground(ink).
		Background(surface).
		Border(border).
		BorderForeground(ink).
		Padding(0, 1)
	s.PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(surface)
	s.Placeholder = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(lipgloss.Color(p.Yellow)).Padding(0, 1)
	s.Muted = lipgloss.NewStyle().Faint(true).Foreground(ink)
	s.Link = lipgloss.NewStyle().Underline(true).Foreground(ink).Background(surface)

	button := lipgloss.NewStyle().Bold(true).Border(border).BorderForeground(ink).Padding(0, 2)
	s.StartButton = button.Foreground(ink).Background(lipgloss.Color(p.Buttons.Start))
	s.StopButton = button.Foreground(lipgloss.Color(p.Buttons.StopText)).Background(lipgloss.Color(p.Buttons.Stop))
	s.ResetButton = button.Foreground(ink).Background(lipgloss.Color(p.Buttons.Reset))
	s.DisabledButton = button.Faint(true).Strikethrough(true).Foreground(ink)
	s.SchemeButton = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(lipgloss.Color(p.Cyan)).Padding(0, 1)

	s.StatusRunning = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Status.Running))
	s.StatusStopped = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Status.Stopped))
	s.StatusTextRunning = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(lipgloss.Color(p.Green)).Padding(0, 1)
	s.StatusTextIdle = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(lipgloss.Color(p.Red)).Padding(0, 1)

	s.Cards = map[string]boxStyle{
		"correct": newBox(ink, ink, lipgloss.Color(p.Cards.Correct)),
		"wrong":   newBox(ink, lipgloss.Color(p.Cards.WrongText), lipgloss.Color(p.Cards.Wrong)),
		"neutral": newBox(ink, ink, lipgloss.Color(p.Cards.Neutral)),
		"default": newBox(ink, ink, surface),
	}
	for i, c := range p.StartupCards {
		s.StartupCards[i] = newBox(ink, ink, lipgloss.Color(c))
	}

	s.Notes = newBox(ink, ink, lipgloss.Color(p.Orange))
	s.Checkbox = lipgloss.NewStyle().Bold(true).Foreground(ink).Background(lipgloss.Color(p.Purple)).Padding(0, 1)
	s.GoActive = button.Foreground(ink).Background(lipgloss.Color(p.Buttons.Start))
	s.GoDisabled = s.DisabledButton
	s.Watermark = lipgloss.NewStyle().Faint(true).Foreground(ink)
	s.Alert = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(p.Buttons.StopText)).
		Background(lipgloss.Color(p.Buttons.Stop)).
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ink).
		Padding(1, 3).
		Align(lipgloss.Center)

	s.Help = help.New().Styles
	s.Help.ShortKey = lipgloss.NewStyle().Bold(true).Foreground(ink)
	s.Help.ShortDesc = lipgloss.NewStyle().Foreground(ink)
	s.Help.ShortSeparator = lipgloss.NewStyle().Faint(true).Foreground(ink)
	s.Help.FullKey = s.Help.ShortKey
	s.Help.FullDesc = s.Help.ShortDesc
	s.Help.FullSeparator = s.Help.ShortSeparator
}

// card returns the stat card style of a form variant.
func (s *Styles) card(variant string) boxStyle {
	if c, ok := s.Cards[variant]; ok {
		return c
	}
	return s.Cards["default"]
}

func newBox(borderColor, fg, fill lipgloss.Color) boxStyle {
	return boxStyle{
		Box: lipgloss.NewStyle().
			Foreground(fg).
			Background(fill).
			Border(lipgloss.ThickBorder()).
			BorderForeground(borderColor).
			Padding(0, 1),
		Strong: lipgloss.NewStyle().Bold(true).Foreground(fg).Background(fill),
		Plain:  lipgloss.NewStyle().Foreground(fg).Background(fill),
	}
}
