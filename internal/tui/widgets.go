package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/skip2/go-qrcode"
)

const (
	statusRunningText = "TRACKING ACTIVE"
	statusIdleText    = "READY TO START"
	placeholderText   = "📷 PRESS START TO BEGIN"
	statusIndicator   = "●"
	openFeedHint      = "press o to open the feed"
)

// renderStatCard draws a value over its title. Variant selects the accent;
// unknown variants use the default card.
func renderStatCard(st *Styles, title, value, variant string, width int) string {
	c := st.card(variant)
	box := c.Box.Align(lipgloss.Center)
	if width > 2 {
		box = box.Width(width - 2)
	}
	body := c.Strong.Render(value) + "\n" + c.Plain.Render(title)
	return box.Render(body)
}

// renderControls draws the status line and the START, STOP and RESET
// buttons. A button is drawn disabled when its binding is disabled.
func renderControls(st *Styles, running bool, keys keyMap, width int) string {
	status := st.StatusStopped.Render(statusIndicator) + " " + st.StatusTextIdle.Render(statusIdleText)
	if running {
		status = st.StatusRunning.Render(statusIndicator) + " " + st.StatusTextRunning.Render(statusRunningText)
	}

	buttons := []string{
		renderButton(st.StartButton, st.DisabledButton, "🚀 START", keys.Start),
		renderButton(st.StopButton, st.DisabledButton, "⏸️ STOP", keys.Stop),
		renderButton(st.ResetButton, st.DisabledButton, "🔄 RESET", keys.Reset),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
	if width > 0 && lipgloss.Width(row) > width {
		row = lipgloss.JoinVertical(lipgloss.Left, buttons...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, status, row)
}

func renderButton(active, disabled lipgloss.Style, label string, binding key.Binding) string {
	text := label + " [" + binding.Help().Key + "]"
	if !binding.Enabled() {
		return disabled.Render(text)
	}
	return active.Render(text)
}

// renderCameraFrame draws the live feed panel. Idle shows a placeholder;
// running shows where the feed is served and a QR code of it.
func renderCameraFrame(st *Styles, running bool, feedURL, qr string, width int) string {
	panel := st.Panel
	if width > 2 {
		panel = panel.Width(width - 2)
	}
	lines := []string{st.PanelTitle.Render("📹 LIVE FEED"), ""}
	if !running {
		lines = append(lines, st.Placeholder.Render(placeholderText))
		return panel.Render(strings.Join(lines, "\n"))
	}
	lines = append(lines, st.PanelTitle.Render("Streaming at ")+st.Link.Render(feedURL))
	if qr != "" {
		lines = append(lines, "", strings.TrimRight(qr, "\n"))
	}
	lines = append(lines, "", st.Muted.Render(openFeedHint))
	return panel.Render(strings.Join(lines, "\n"))
}

// renderQRCode returns a half-block QR code of url for the terminal.
func renderQRCode(url string) (string, error) {
	if url == "" {
		return "", nil
	}
	code, err := qrcode.New(url, qrcode.Low)
	if err != nil {
		return "", err
	}
	return code.ToSmallString(false), nil
}
