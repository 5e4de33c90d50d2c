package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/shell"
	"github.com/verte-zerg/reptrack/internal/theme"
)

func TestRenderControlsStatusLine(t *testing.T) {
	st := NewStyles()
	keys := newKeyMap()
	keys.sync(shell.View{Phase: model.PhaseMain, Running: true}, false)
	out := renderControls(st, true, keys, 80)
	if !containsAll(out, []string{statusRunningText, "START", "STOP", "RESET"}) {
		t.Fatalf("controls missing segments: %s", out)
	}
	keys.sync(shell.View{Phase: model.PhaseMain}, false)
	out = renderControls(st, false, keys, 80)
	if !strings.Contains(out, statusIdleText) {
		t.Fatalf("expected idle status, got %s", out)
	}
}

func TestControlBindingsFollowRunState(t *testing.T) {
	keys := newKeyMap()
	keys.sync(shell.View{Phase: model.PhaseMain}, false)
	if !keys.Start.Enabled() || keys.Stop.Enabled() || !keys.Reset.Enabled() {
		t.Fatalf("idle: start=%v stop=%v reset=%v", keys.Start.Enabled(), keys.Stop.Enabled(), keys.Reset.Enabled())
	}
	keys.sync(shell.View{Phase: model.PhaseMain, Running: true}, false)
	if keys.Start.Enabled() || !keys.Stop.Enabled() || !keys.Reset.Enabled() {
		t.Fatalf("running: start=%v stop=%v reset=%v", keys.Start.Enabled(), keys.Stop.Enabled(), keys.Reset.Enabled())
	}
	keys.sync(shell.View{Phase: model.PhaseMain, Running: true}, true)
	if keys.Start.Enabled() || keys.Stop.Enabled() || keys.Reset.Enabled() {
		t.Fatalf("pending: expected all command keys disabled")
	}
	keys.sync(shell.View{Phase: model.PhaseMain, Alert: "boom"}, false)
	if keys.Start.Enabled() || !keys.Dismiss.Enabled() {
		t.Fatalf("alert: expected only dismiss enabled")
	}
}

func TestRenderDisabledButtonsDiffer(t *testing.T) {
	st := NewStyles()
	keys := newKeyMap()
	keys.sync(shell.View{Phase: model.PhaseMain, Running: true}, false)
	enabled := renderButton(st.StartButton, st.DisabledButton, "🚀 START", keys.Stop)
	if !strings.Contains(enabled, "[p]") {
		t.Fatalf("expected key hint in button, got %q", enabled)
	}
	disabled := renderButton(st.StartButton, st.DisabledButton, "🚀 START", keys.Start)
	if disabled != st.DisabledButton.Render("🚀 START [s]") {
		t.Fatalf("expected disabled rendering, got %q", disabled)
	}
}

func TestRenderCameraFrame(t *testing.T) {
	st := NewStyles()
	idle := renderCameraFrame(st, false, "http://localhost:8000/video_feed", "", 60)
	if !strings.Contains(idle, placeholderText) {
		t.Fatalf("expected placeholder, got %s", idle)
	}
	if strings.Contains(idle, "video_feed") {
		t.Fatalf("idle frame should not show the feed")
	}
	running := renderCameraFrame(st, true, "http://localhost:8000/video_feed", "QR", 80)
	if !containsAll(running, []string{"LIVE FEED", "http://localhost:8000/video_feed", "QR"}) {
		t.Fatalf("running frame missing segments: %s", running)
	}
	if strings.Contains(running, placeholderText) {
		t.Fatalf("running frame should not show placeholder")
	}
}

func TestRenderStatCard(t *testing.T) {
	st := NewStyles()
	out := renderStatCard(st, "FORM STATUS", "CORRECT", "correct", 20)
	if !containsAll(out, []string{"FORM STATUS", "CORRECT"}) {
		t.Fatalf("card missing text: %s", out)
	}
	if st.card("unknown").Box.GetBackground() != st.card("default").Box.GetBackground() {
		t.Fatalf("expected unknown variant to use default card")
	}
}

func TestRenderQRCode(t *testing.T) {
	qr, err := renderQRCode("http://localhost:8000/video_feed")
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	if len(strings.Split(strings.TrimRight(qr, "\n"), "\n")) < 5 {
		t.Fatalf("expected multi-line qr code, got %q", qr)
	}
	empty, err := renderQRCode("")
	if err != nil || empty != "" {
		t.Fatalf("expected empty qr for empty url")
	}
}

func TestApplyThemeRebuildsStyles(t *testing.T) {
	st := NewStyles()
	if st.Scheme != theme.BlackWhite || st.Label != "⚪ B&W RETRO" {
		t.Fatalf("unexpected default styles %s %q", st.Scheme, st.Label)
	}
	st.ApplyTheme(theme.Dark, theme.PaletteFor(theme.Dark))
	if st.Scheme != theme.Dark || st.Label != "🌙 DARK MODE" {
		t.Fatalf("unexpected dark styles %s %q", st.Scheme, st.Label)
	}
	if len(st.Cards) != 4 {
		t.Fatalf("expected 4 card variants, got %d", len(st.Cards))
	}
}

func TestApplyThemeUsesAccentColors(t *testing.T) {
	st := NewStyles()
	for _, scheme := range theme.Order {
		p := theme.PaletteFor(scheme)
		st.ApplyTheme(scheme, p)
		accents := []struct {
			name  string
			style lipgloss.Style
			want  string
		}{
			{"header", st.Header, p.Pink},
			{"scheme button", st.SchemeButton, p.Cyan},
			{"placeholder", st.Placeholder, p.Yellow},
			{"running status", st.StatusTextRunning, p.Green},
			{"idle status", st.StatusTextIdle, p.Red},
			{"checkbox", st.Checkbox, p.Purple},
			{"notes", st.Notes.Box, p.Orange},
		}
		for _, a := range accents {
			if got := a.style.GetBackground(); got != lipgloss.Color(a.want) {
				t.Fatalf("%s: %s background = %v, want %s", scheme, a.name, got, a.want)
			}
		}
	}
}

func TestRenderCameraFrameHintIsMuted(t *testing.T) {
	st := NewStyles()
	out := renderCameraFrame(st, true, "http://localhost:8000/video_feed", "", 80)
	if !strings.Contains(out, openFeedHint) {
		t.Fatalf("expected open hint in running frame: %s", out)
	}
	if !st.Muted.GetFaint() {
		t.Fatalf("expected muted style to be faint")
	}
	idle := renderCameraFrame(st, false, "http://localhost:8000/video_feed", "", 80)
	if strings.Contains(idle, openFeedHint) {
		t.Fatalf("idle frame should not show the open hint")
	}
}

func TestRenderStartupContent(t *testing.T) {
	st := NewStyles()
	for _, width := range []int{40, 70, 120} {
		out := renderStartup(st, width, false)
		want := []string{"LIGHTING", "CAMERA POSITION", "DISTANCE", "CLOTHING", "ENVIRONMENT", "FORM FIRST", "IMPORTANT NOTES", "[ ]", watermark, st.Label}
		if !containsAll(out, want) {
			t.Fatalf("width %d: startup page missing segments:\n%s", width, out)
		}
	}
	if out := renderStartup(st, 80, true); !strings.Contains(out, "[x]") {
		t.Fatalf("expected checked box")
	}
}

func TestStartupColumns(t *testing.T) {
	cases := map[int]int{40: 1, 60: 2, 95: 2, 96: 3, 200: 3}
	for width, want := range cases {
		if got := startupColumns(width); got != want {
			t.Fatalf("width %d: expected %d columns, got %d", width, want, got)
		}
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
