package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/theme"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Name", "Reps"}
	rows := [][]string{
		{"a", "12"},
		{"longer", "3"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Name    Reps" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a         12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "longer     3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestDisplayWidthIgnoresColorAndCountsWideRunes(t *testing.T) {
	if got := displayWidth(colorize("Correct", colorGreen, true)); got != 7 {
		t.Fatalf("expected 7 columns, got %d", got)
	}
	if got := displayWidth("🌙 X"); got != 4 {
		t.Fatalf("expected 4 columns, got %d", got)
	}
	if got := displayWidth("\x1b]8;;http://x\x1b\\link\x1b]8;;\x1b\\"); got != 4 {
		t.Fatalf("expected hyperlink text to be 4 columns, got %d", got)
	}
	if got := displayWidth("\x1b[2Kdone"); got != 4 {
		t.Fatalf("expected erase-line prefix to be ignored, got %d", got)
	}
}

func TestRenderStatus(t *testing.T) {
	var buf bytes.Buffer
	err := RenderStatus(&buf, Status{
		BackendURL:    "http://localhost:8000",
		SessionID:     "abc",
		HealthStatus:  "running",
		HealthMessage: "AI Push-Up Tracker API",
		Stats:         model.Stats{TotalReps: 5, FormState: model.FormCorrect, Stage: model.StageDown},
	}, false)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"http://localhost:8000", "running (AI Push-Up Tracker API)", "Total Reps", "Correct", "Down"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes")
	}
}

func TestRenderStatusErrors(t *testing.T) {
	var buf bytes.Buffer
	err := RenderStatus(&buf, Status{
		BackendURL: "http://localhost:8000",
		HealthErr:  errors.New("connection refused"),
		StatsErr:   errors.New("connection refused"),
	}, true)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "unreachable: connection refused") || !strings.Contains(out, "Stats unavailable") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRenderSchemesMarksCurrent(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSchemes(&buf, theme.Dark); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 schemes, got %d lines", len(lines))
	}
	for _, line := range lines[1:] {
		marked := strings.HasPrefix(line, "*")
		if marked != strings.Contains(line, "dark") {
			t.Fatalf("unexpected mark on %q", line)
		}
	}
}

func TestShouldUseColorRejectsBuffers(t *testing.T) {
	if ShouldUseColor(&bytes.Buffer{}) {
		t.Fatalf("expected no color for buffers")
	}
}
