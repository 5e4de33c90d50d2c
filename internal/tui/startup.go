package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	appTitle         = "🎯 AI PUSH-UP TRACKER"
	mainTitle        = "AI PUSH-UP TRACKER"
	startupSubtitle  = "GET READY TO CRUSH IT!"
	notesTitle       = "⚠️ IMPORTANT NOTES"
	acknowledgeLabel = "I understand the setup requirements and I'm ready to start"
	goLabel          = "🚀 LET'S GO!"
	watermark        = "© 2025 AIPT by Exowdious"
)

type instruction struct {
	icon  string
	title string
	body  []span
}

var instructions = [6]instruction{
	{icon: "💡", title: "LIGHTING", body: []span{
		{text: "Ensure you have "},
		{text: "mild, even lighting", strong: true},
		{text: " in your workout area. Avoid harsh shadows or backlighting."},
	}},
	{icon: "📹", title: "CAMERA POSITION", body: []span{
		{text: "Position yourself "},
		{text: "SIDEWAYS", strong: true},
		{text: " to the camera. Your full body should be visible from head to toe."},
	}},
	{icon: "📏", title: "DISTANCE", body: []span{
		{text: "Stand "},
		{text: "6-8 feet away", strong: true},
		{text: " from the camera. Make sure there's enough space around you."},
	}},
	{icon: "👕", title: "CLOTHING", body: []span{
		{text: "Wear "},
		{text: "fitted clothing", strong: true},
		{text: " for better pose detection. Avoid loose or baggy clothes."},
	}},
	{icon: "🎵", title: "ENVIRONMENT", body: []span{
		{text: "Choose a "},
		{text: "clear, uncluttered space", strong: true},
		{text: ". Remove obstacles that might interfere with tracking."},
	}},
	{icon: "⚡", title: "FORM FIRST", body: []span{
		{text: "Quality over quantity!", strong: true},
		{text: " Maintain proper form for accurate rep counting and feedback."},
	}},
}

var importantNotes = []string{
	"The AI tracks your body position in real-time",
	"Green indicates correct form, Red indicates incorrect form",
	"Your camera must remain stable during workout",
	"Allow camera permissions when prompted",
}

const cardGap = 1

// startupColumns picks how many instruction cards fit side by side.
func startupColumns(width int) int {
	switch {
	case width >= 96:
		return 3
	case width >= 60:
		return 2
	default:
		return 1
	}
}

// renderStartup returns the scrollable startup page for width columns.
func renderStartup(st *Styles, width int, understood bool) string {
	if width < 20 {
		width = 20
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		st.Header.Render(appTitle),
		" ",
		st.SchemeButton.Render("[t] "+st.Label),
	)
	sections := []string{
		header,
		st.Subtitle.Render(startupSubtitle),
		"",
		renderInstructionGrid(st, width),
		"",
		renderNotes(st, width),
		"",
		renderAcknowledge(st, understood),
		"",
		st.Watermark.Render(watermark),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderInstructionGrid(st *Styles, width int) string {
	cols := startupColumns(width)
	cardWidth := (width - cardGap*(cols-1)) / cols
	rows := []string{}
	for start := 0; start < len(instructions); start += cols {
		end := start + cols
		if end > len(instructions) {
			end = len(instructions)
		}
		cards := []string{}
		height := 0
		rendered := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			card := renderInstructionCard(st.StartupCards[i], instructions[i], cardWidth, 0)
			if h := lipgloss.Height(card); h > height {
				height = h
			}
			rendered = append(rendered, card)
		}
		for j, i := 0, start; i < end; i, j = i+1, j+1 {
			if lipgloss.Height(rendered[j]) < height {
				rendered[j] = renderInstructionCard(st.StartupCards[i], instructions[i], cardWidth, height)
			}
			if j > 0 {
				cards = append(cards, strings.Repeat(" ", cardGap))
			}
			cards = append(cards, rendered[j])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderInstructionCard draws one card. A positive height pads the card so
// cards in a row line up.
func renderInstructionCard(style boxStyle, in instruction, width, height int) string {
	box := style.Box
	inner := width - 4
	if inner < 8 {
		inner = 8
	}
	box = box.Width(inner + 2)
	if height > 2 {
		box = box.Height(height - 2)
	}
	title := style.Strong.Render(in.icon + " " + in.title)
	body := wrapSpans(in.body, inner, style.Plain, style.Strong)
	return box.Render(title + "\n\n" + body)
}

func renderNotes(st *Styles, width int) string {
	inner := width - 4
	if inner < 8 {
		inner = 8
	}
	lines := []string{st.Notes.Strong.Render(notesTitle)}
	for _, note := range importantNotes {
		lines = append(lines, wrapSpans([]span{{text: "• " + note}}, inner, st.Notes.Plain, st.Notes.Strong))
	}
	return st.Notes.Box.Width(inner + 2).Render(strings.Join(lines, "\n"))
}

func renderAcknowledge(st *Styles, understood bool) string {
	mark := "[ ]"
	goStyle := st.GoDisabled
	if understood {
		mark = "[x]"
		goStyle = st.GoActive
	}
	checkbox := st.Checkbox.Render(mark + " " + acknowledgeLabel)
	return lipgloss.JoinVertical(lipgloss.Left, checkbox, goStyle.Render(goLabel))
}
