// Package theme provides the color schemes and the theme store.
package theme

import (
	"fmt"
	"strings"
)

// Scheme names a color scheme.
type Scheme string

const (
	Colorful   Scheme = "colorful"
	BlackWhite Scheme = "blackwhite"
	Dark       Scheme = "dark"
)

// Default is used when no valid preference is stored.
const Default = BlackWhite

// Order is the fixed cycling order.
var Order = []Scheme{Colorful, BlackWhite, Dark}

// ParseScheme resolves a scheme name, ignoring case.
func ParseScheme(name string) (Scheme, error) {
	candidate := Scheme(strings.ToLower(strings.TrimSpace(name)))
	for _, s := range Order {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown color scheme %q", name)
}

// Next returns the scheme after s, wrapping. Unknown schemes restart the order.
func Next(s Scheme) Scheme {
	for i, candidate := range Order {
		if candidate == s {
			return Order[(i+1)%len(Order)]
		}
	}
	return Order[0]
}

// Palette is the full set of colors derived from a scheme.
type Palette struct {
	Label string

	// Named accent colors; Black is the ink and White the surface.
	Yellow string
	Pink   string
	Cyan   string
	Green  string
	Red    string
	Purple string
	Orange string
	Black  string
	White  string

	Background string

	Buttons      ButtonColors
	Cards        CardColors
	Status       StatusColors
	StartupCards [6]string
}

// ButtonColors holds control button fills.
type ButtonColors struct {
	Start    string
	Stop     string
	Reset    string
	StopText string
}

// CardColors holds stat card accents per form variant.
type CardColors struct {
	Correct   string
	Wrong     string
	Neutral   string
	WrongText string
}

// StatusColors holds the status indicator colors.
type StatusColors struct {
	Running string
	Stopped string
}

var palettes = map[Scheme]Palette{
	Colorful: {
		Label:      "🌈 Neo",
		Yellow:     "#FFE66D",
		Pink:       "#FF6B9D",
		Cyan:       "#00F5FF",
		Green:      "#4ADE80",
		Red:        "#FF5757",
		Purple:     "#A78BFA",
		Orange:     "#FB923C",
		Black:      "#000000",
		White:      "#FFFFFF",
		Background: "#FFE66D",
		Buttons:    ButtonColors{Start: "#4ADE80", Stop: "#FF5757", Reset: "#A78BFA", StopText: "#000000"},
		Cards:      CardColors{Correct: "#4ADE80", Wrong: "#FF5757", Neutral: "#00F5FF", WrongText: "#000000"},
		Status:     StatusColors{Running: "#4ADE80", Stopped: "#FF5757"},
		StartupCards: [6]string{
			"#FFE66D", "#00F5FF", "#FF6B9D", "#4ADE80", "#A78BFA", "#FB923C",
		},
	},
	BlackWhite: {
		Label:      "⚪ B&W RETRO",
		Yellow:     "#E8E8E8",
		Pink:       "#B0B0B0",
		Cyan:       "#D0D0D0",
		Green:      "#C0C0C0",
		Red:        "#707070",
		Purple:     "#A0A0A0",
		Orange:     "#909090",
		Black:      "#000000",
		White:      "#FFFFFF",
		Background: "#E8E8E8",
		Buttons:    ButtonColors{Start: "#FFFFFF", Stop: "#505050", Reset: "#B0B0B0", StopText: "#FFFFFF"},
		Cards:      CardColors{Correct: "#FFFFFF", Wrong: "#606060", Neutral: "#D0D0D0", WrongText: "#FFFFFF"},
		Status:     StatusColors{Running: "#FFFFFF", Stopped: "#404040"},
		StartupCards: [6]string{
			"#F5F5F5", "#E0E0E0", "#D5D5D5", "#EBEBEB", "#C8C8C8", "#DADADA",
		},
	},
	Dark: {
		Label:      "🌙 DARK MODE",
		Yellow:     "#1E1E1E",
		Pink:       "#2D2D2D",
		Cyan:       "#3A3A3A",
		Green:      "#4A4A4A",
		Red:        "#2A2A2A",
		Purple:     "#353535",
		Orange:     "#404040",
		Black:      "#FFFFFF",
		White:      "#252525",
		Background: "#1E1E1E",
		Buttons:    ButtonColors{Start: "#505050", Stop: "#F0F0F0", Reset: "#707070", StopText: "#000000"},
		Cards:      CardColors{Correct: "#505050", Wrong: "#F0F0F0", Neutral: "#404040", WrongText: "#000000"},
		Status:     StatusColors{Running: "#EEEEEE", Stopped: "#505050"},
		StartupCards: [6]string{
			"#2A2A2A", "#353535", "#303030", "#3A3A3A", "#404040", "#383838",
		},
	},
}

// PaletteFor returns the palette of s, falling back to the default scheme.
func PaletteFor(s Scheme) Palette {
	if p, ok := palettes[s]; ok {
		return p
	}
	return palettes[Default]
}
