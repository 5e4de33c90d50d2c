// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FormState is the backend's verdict on the current rep form.
type FormState string

const (
	FormCorrect FormState = "Correct"
	FormWrong   FormState = "Wrong"
	FormNeutral FormState = "Neutral"
)

// Stage is the position within a rep.
type Stage string

const (
	StageUp   Stage = "Up"
	StageDown Stage = "Down"
)

// Phase is the top-level view phase.
type Phase int

const (
	PhaseStartup Phase = iota
	PhaseMain
)

func (p Phase) String() string {
	switch p {
	case PhaseStartup:
		return "startup"
	case PhaseMain:
		return "main"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Stats is one snapshot pushed by the backend.
type Stats struct {
	TotalReps int       `json:"total_reps"`
	FormState FormState `json:"form_state"`
	Stage     Stage     `json:"stage"`
}

// DefaultStats returns the neutral snapshot shown before any update arrives.
func DefaultStats() Stats {
	return Stats{TotalReps: 0, FormState: FormNeutral, Stage: StageUp}
}

// ParseFormState normalizes a wire value. Matching is case-insensitive.
func ParseFormState(s string) (FormState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correct":
		return FormCorrect, nil
	case "wrong":
		return FormWrong, nil
	case "neutral":
		return FormNeutral, nil
	default:
		return "", fmt.Errorf("unknown form_state %q", s)
	}
}

// ParseStage normalizes a wire value. Matching is case-insensitive.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return StageUp, nil
	case "down":
		return StageDown, nil
	default:
		return "", fmt.Errorf("unknown stage %q", s)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FormState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("form_state: %w", err)
	}
	parsed, err := ParseFormState(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stage: %w", err)
	}
	parsed, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Variant returns the stat card accent for the form state.
func (f FormState) Variant() string {
	switch f {
	case FormCorrect:
		return "correct"
	case FormWrong:
		return "wrong"
	case FormNeutral:
		return "neutral"
	default:
		return "default"
	}
}

type wireStats struct {
	TotalReps *int       `json:"total_reps"`
	FormState *FormState `json:"form_state"`
	Stage     *Stage     `json:"stage"`
}

// ParseStats decodes a wire snapshot. Every field is required.
func ParseStats(data []byte) (Stats, error) {
	var w wireStats
	if err := json.Unmarshal(data, &w); err != nil {
		return Stats{}, fmt.Errorf("failed to decode stats: %w", err)
	}
	var missing []string
	if w.TotalReps == nil {
		missing = append(missing, "total_reps")
	}
	if w.FormState == nil {
		missing = append(missing, "form_state")
	}
	if w.Stage == nil {
		missing = append(missing, "stage")
	}
	if len(missing) > 0 {
		return Stats{}, fmt.Errorf("stats missing fields: %s", strings.Join(missing, ", "))
	}
	if *w.TotalReps < 0 {
		return Stats{}, errors.New("total_reps must be >= 0")
	}
	return Stats{TotalReps: *w.TotalReps, FormState: *w.FormState, Stage: *w.Stage}, nil
}
