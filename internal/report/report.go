// Package report renders a completed session into the exportable
// submission document.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/user/ecclesia-strategy/internal/game"
	"github.com/user/ecclesia-strategy/internal/types"
)

// Version identifies the report document format.
const Version = "3.0"

var ErrSessionIncomplete = errors.New("session is not complete")

// Meta carries the generation metadata of a report.
type Meta struct {
	GeneratedAt time.Time `json:"generated_at"`
	Version     string    `json:"version"`
	SessionID   string    `json:"session_id"`
}

// ChoiceRecord is one decision as it appears in the exported document.
type ChoiceRecord struct {
	EventTitle        string          `json:"event_title"`
	ChoiceLabel       string          `json:"choice_label"`
	OutcomeText       string          `json:"outcome_text"`
	ReflectionPrompt  string          `json:"reflection_prompt,omitempty"`
	ReflectionAnswer  string          `json:"reflection_answer,omitempty"`
	ReflectionCorrect *bool           `json:"reflection_correct,omitempty"`
	StatsAfter        types.GameStats `json:"stats_after"`
	Year              int             `json:"year"`
	Status            string          `json:"status"`
}

// Report is the full submission document for one completed play-through.
type Report struct {
	Meta           Meta                  `json:"meta"`
	Student        *types.StudentSession `json:"student,omitempty"`
	Outcome        types.GameEnding      `json:"outcome"`
	FinalYear      int                   `json:"final_year"`
	FinalStatus    string                `json:"final_status"`
	FinalStats     types.GameStats       `json:"final_stats"`
	TotalDecisions int                   `json:"total_decisions"`
	Choices        []ChoiceRecord        `json:"choices"`
}

// Build assembles a report from a completed session snapshot. The student
// record is optional; everything else comes from the decision log.
func Build(snap game.Snapshot, student *types.StudentSession) (*Report, error) {
	if snap.Phase != types.PhaseComplete {
		return nil, ErrSessionIncomplete
	}

	r := &Report{
		Meta: Meta{
			GeneratedAt: time.Now(),
			Version:     Version,
			SessionID:   snap.SessionID,
		},
		Student:        student,
		Outcome:        snap.Ending,
		FinalYear:      snap.Year,
		FinalStatus:    snap.Status,
		FinalStats:     snap.Stats,
		TotalDecisions: len(snap.Log),
		Choices:        make([]ChoiceRecord, len(snap.Log)),
	}

	for i, entry := range snap.Log {
		r.Choices[i] = ChoiceRecord{
			EventTitle:        entry.EventTitle,
			ChoiceLabel:       entry.ChoiceLabel,
			OutcomeText:       entry.OutcomeText,
			ReflectionPrompt:  entry.ReflectionPrompt,
			ReflectionAnswer:  entry.ReflectionAnswer,
			ReflectionCorrect: entry.ReflectionCorrect,
			StatsAfter:        entry.StatsAfter,
			Year:              entry.YearAfter,
			Status:            entry.StatusAfter,
		}
	}

	return r, nil
}

// JSON renders the report as an indented document.
func (r *Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Filename returns the suggested download name for the report.
func (r *Report) Filename() string {
	return fmt.Sprintf("ecclesia_report_%s.json", r.Meta.GeneratedAt.Format("20060102_150405"))
}
