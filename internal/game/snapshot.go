package game

import (
	"sort"

	"github.com/user/ecclesia-strategy/internal/types"
)

// ChoiceView is a choice as presented to the player, with its availability
// evaluated against the session's current stats and tags.
type ChoiceView struct {
	ID                string                  `json:"id"`
	Label             string                  `json:"label"`
	Reflection        *types.ReflectionPrompt `json:"reflection,omitempty"`
	Available         bool                    `json:"available"`
	UnmetRequirements []string                `json:"unmet_requirements,omitempty"`
}

// EventView is the current event with per-choice availability attached.
type EventView struct {
	ID           string       `json:"id"`
	Era          string       `json:"era"`
	YearHint     int          `json:"year_hint,omitempty"`
	Title        string       `json:"title"`
	Narrative    string       `json:"narrative"`
	SceneImage   string       `json:"scene_image,omitempty"`
	SceneTitle   string       `json:"scene_title,omitempty"`
	SceneCaption string       `json:"scene_caption,omitempty"`
	Choices      []ChoiceView `json:"choices"`
}

// MicroView is a revealed micro-event.
type MicroView struct {
	ID          string               `json:"id"`
	Kind        types.MicroEventKind `json:"kind"`
	Description string               `json:"description"`
	Effects     types.StatDelta      `json:"effects"`
}

// Snapshot is a consistent point-in-time view of a session, safe to share
// after the method returns.
type Snapshot struct {
	SessionID           string               `json:"session_id"`
	Phase               types.GamePhase      `json:"phase"`
	Year                int                  `json:"year"`
	EraKey              string               `json:"era_key"`
	EraLabel            string               `json:"era_label"`
	EraBriefing         string               `json:"era_briefing,omitempty"`
	Status              string               `json:"status"`
	Stats               types.GameStats      `json:"stats"`
	WinTarget           int                  `json:"win_target"`
	Event               *EventView           `json:"event,omitempty"`
	PendingChoiceID     string               `json:"pending_choice_id,omitempty"`
	ReflectionAnswer    *int                 `json:"reflection_answer,omitempty"`
	ResolvedOutcome     *types.Outcome       `json:"resolved_outcome,omitempty"`
	CooldownRemainingMs int64                `json:"cooldown_remaining_ms"`
	Micro               *MicroView           `json:"micro,omitempty"`
	Tags                []string             `json:"tags,omitempty"`
	ResolvedCount       int                  `json:"resolved_count"`
	Log                 []types.GameLogEntry `json:"log"`
	Ending              types.GameEnding     `json:"ending,omitempty"`
}

// Snapshot captures the session's observable state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	era := s.deck.Eras[s.deck.Eras.IndexForYear(s.year)]
	snap := Snapshot{
		SessionID:     s.id,
		Phase:         s.phase,
		Year:          s.year,
		EraKey:        era.Key,
		EraLabel:      era.Label,
		EraBriefing:   era.Briefing,
		Status:        s.status,
		Stats:         s.stats,
		WinTarget:     s.cfg.WinTarget,
		ResolvedCount: len(s.resolved),
		Ending:        s.ending,
	}

	if s.current != nil {
		snap.Event = s.eventViewLocked(s.current)
	}
	if s.pending != nil {
		snap.PendingChoiceID = s.pending.ID
	}
	if s.reflectionAnswer != nil {
		answer := *s.reflectionAnswer
		snap.ReflectionAnswer = &answer
	}
	if s.resolvedOutcome != nil {
		outcome := *s.resolvedOutcome
		snap.ResolvedOutcome = &outcome
	}
	if s.phase == types.PhaseCooldown {
		if remaining := s.cooldownEndsAt.Sub(s.now()); remaining > 0 {
			snap.CooldownRemainingMs = remaining.Milliseconds()
		}
	}
	if s.microRevealed && s.microPending != nil {
		snap.Micro = &MicroView{
			ID:          s.microPending.ID,
			Kind:        s.microPending.Kind,
			Description: s.microPending.Description,
			Effects:     s.microPending.Effects,
		}
	}

	for tag := range s.tags {
		snap.Tags = append(snap.Tags, tag)
	}
	sort.Strings(snap.Tags)

	snap.Log = make([]types.GameLogEntry, len(s.log))
	copy(snap.Log, s.log)

	return snap
}

func (s *Session) eventViewLocked(event *types.GameEvent) *EventView {
	view := &EventView{
		ID:           event.ID,
		Era:          event.Era,
		YearHint:     event.YearHint,
		Title:        event.Title,
		Narrative:    event.Narrative,
		SceneImage:   event.SceneImage,
		SceneTitle:   event.SceneTitle,
		SceneCaption: event.SceneCaption,
		Choices:      make([]ChoiceView, len(event.Choices)),
	}

	for i, choice := range event.Choices {
		met, unmet := EvaluateRequirements(choice.Requirements, s.stats, s.tags)
		view.Choices[i] = ChoiceView{
			ID:                choice.ID,
			Label:             choice.Label,
			Reflection:        choice.Reflection,
			Available:         met,
			UnmetRequirements: unmet,
		}
	}

	return view
}
