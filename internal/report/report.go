// Package report renders plain-text command output.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/verte-zerg/reptrack/internal/model"
	"github.com/verte-zerg/reptrack/internal/theme"
)

const (
	colorReset = "\x1b[0m"
	colorGreen = "\x1b[32m"
	colorRed   = "\x1b[31m"
	colorCyan  = "\x1b[36m"
)

// Status is the backend state shown by the status command.
type Status struct {
	BackendURL string
	SessionID  string

	HealthMessage string
	HealthStatus  string
	HealthErr     error

	Stats    model.Stats
	StatsErr error
}

// RenderStatus prints backend reachability and the current snapshot.
func RenderStatus(w io.Writer, s Status, useColor bool) error {
	health := s.HealthStatus
	if s.HealthErr != nil {
		health = "unreachable: " + s.HealthErr.Error()
	} else if s.HealthMessage != "" {
		health = fmt.Sprintf("%s (%s)", s.HealthStatus, s.HealthMessage)
	}
	rows := [][]string{
		{"Backend", s.BackendURL},
		{"Session", s.SessionID},
		{"Health", health},
	}
	for _, line := range formatTable(nil, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if s.StatsErr != nil {
		_, err := fmt.Fprintf(w, "Stats unavailable: %v\n", s.StatsErr)
		return err
	}

	headers := []string{"Total Reps", "Form", "Stage"}
	statsRows := [][]string{{
		strconv.Itoa(s.Stats.TotalReps),
		colorize(string(s.Stats.FormState), formColor(s.Stats.FormState), useColor),
		string(s.Stats.Stage),
	}}
	for _, line := range formatTable(headers, statsRows, map[int]bool{0: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSchemes lists the color schemes in cycling order, marking current.
func RenderSchemes(w io.Writer, current theme.Scheme) error {
	rows := make([][]string, 0, len(theme.Order))
	for _, s := range theme.Order {
		mark := ""
		if s == current {
			mark = "*"
		}
		rows = append(rows, []string{mark, string(s), theme.PaletteFor(s).Label})
	}
	for _, line := range formatTable([]string{"", "Scheme", "Label"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func formColor(fs model.FormState) string {
	switch fs {
	case model.FormCorrect:
		return colorGreen
	case model.FormWrong:
		return colorRed
	default:
		return colorCyan
	}
}

func colorize(value, code string, useColor bool) string {
	if !useColor || value == "" {
		return value
	}
	return code + value + colorReset
}
