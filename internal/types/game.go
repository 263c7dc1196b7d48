package types

import "time"

// GamePhase identifies where a session is in the decision loop.
type GamePhase string

const (
	PhaseLoading   GamePhase = "loading"
	PhaseDecision  GamePhase = "decision"
	PhaseConfirm   GamePhase = "confirm"
	PhaseResolving GamePhase = "resolving"
	PhaseCooldown  GamePhase = "cooldown"
	PhaseComplete  GamePhase = "complete"
)

// GameEnding is the terminal result of a session.
type GameEnding string

const (
	EndingVictory  GameEnding = "victory"
	EndingCollapse GameEnding = "collapse"
)

// GameStats tracks the four community statistics. Members has no upper
// clamp; the other three stay within [0, 100].
type GameStats struct {
	Members   int `json:"members" yaml:"members"`
	Cohesion  int `json:"cohesion" yaml:"cohesion"`
	Resources int `json:"resources" yaml:"resources"`
	Influence int `json:"influence" yaml:"influence"`
}

// StatDelta is a signed adjustment to GameStats. Zero fields are no-ops.
type StatDelta struct {
	Members   int `json:"members,omitempty" yaml:"members,omitempty"`
	Cohesion  int `json:"cohesion,omitempty" yaml:"cohesion,omitempty"`
	Resources int `json:"resources,omitempty" yaml:"resources,omitempty"`
	Influence int `json:"influence,omitempty" yaml:"influence,omitempty"`
}

// ReflectionPrompt is a self-assessment question attached to a choice. The
// answer never alters outcome probabilities; correctness is recorded on the
// log entry for display only.
type ReflectionPrompt struct {
	Prompt       string   `json:"prompt" yaml:"prompt"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex *int     `json:"correct_index" yaml:"correct_index"`
}

// Outcome is one probabilistically-selected consequence of a choice.
type Outcome struct {
	ID          string    `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	Effects     StatDelta `json:"effects" yaml:"effects"`
	YearAdvance int       `json:"year_advance" yaml:"year_advance"`
	SoundEffect string    `json:"sound_effect,omitempty" yaml:"sound_effect,omitempty"`
	AddTags     []string  `json:"add_tags,omitempty" yaml:"add_tags,omitempty"`
	RemoveTags  []string  `json:"remove_tags,omitempty" yaml:"remove_tags,omitempty"`
}

// WeightedOutcome pairs an outcome with its positive sampling weight.
type WeightedOutcome struct {
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	Weight  int     `json:"weight" yaml:"weight"`
}

// Requirements gates a choice on current stats and accumulated tags. A nil
// field means no constraint of that kind.
type Requirements struct {
	MinResources  *int     `json:"min_resources,omitempty" yaml:"min_resources,omitempty"`
	MinInfluence  *int     `json:"min_influence,omitempty" yaml:"min_influence,omitempty"`
	MinCohesion   *int     `json:"min_cohesion,omitempty" yaml:"min_cohesion,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	AnyTags       []string `json:"any_tags,omitempty" yaml:"any_tags,omitempty"`
	ForbiddenTags []string `json:"forbidden_tags,omitempty" yaml:"forbidden_tags,omitempty"`
}

// Choice is one selectable decision within an event.
type Choice struct {
	ID           string            `json:"id" yaml:"id"`
	Label        string            `json:"label" yaml:"label"`
	Reflection   *ReflectionPrompt `json:"reflection,omitempty" yaml:"reflection,omitempty"`
	Outcomes     []WeightedOutcome `json:"outcomes" yaml:"outcomes"`
	Requirements *Requirements     `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// GameEvent is an immutable authored decision event. Events are never
// mutated after loading; resolution is tracked externally by event ID.
type GameEvent struct {
	ID           string   `json:"id" yaml:"id"`
	Era          string   `json:"era" yaml:"era"`
	Intro        bool     `json:"intro,omitempty" yaml:"intro,omitempty"`
	YearHint     int      `json:"year_hint,omitempty" yaml:"year_hint,omitempty"`
	Title        string   `json:"title" yaml:"title"`
	Narrative    string   `json:"narrative" yaml:"narrative"`
	SceneImage   string   `json:"scene_image,omitempty" yaml:"scene_image,omitempty"`
	SceneTitle   string   `json:"scene_title,omitempty" yaml:"scene_title,omitempty"`
	SceneCaption string   `json:"scene_caption,omitempty" yaml:"scene_caption,omitempty"`
	Choices      []Choice `json:"choices" yaml:"choices"`
}

// MicroEventKind buckets secondary events for selection bias.
type MicroEventKind string

const (
	MicroFlavor     MicroEventKind = "flavor"
	MicroDonation   MicroEventKind = "donation"
	MicroHistorical MicroEventKind = "historical"
)

// YearWindow bounds the validity of a historically anchored micro-event,
// inclusive on both ends.
type YearWindow struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Contains reports whether year falls inside the window.
func (w YearWindow) Contains(year int) bool {
	return year >= w.From && year <= w.To
}

// MicroEvent is a choice-less flavor event injected during cooldown.
type MicroEvent struct {
	ID          string         `json:"id" yaml:"id"`
	Kind        MicroEventKind `json:"kind" yaml:"kind"`
	Description string         `json:"description" yaml:"description"`
	Effects     StatDelta      `json:"effects" yaml:"effects"`
	Window      *YearWindow    `json:"window,omitempty" yaml:"window,omitempty"`
}

// EraSpec describes one ordered narrative period. Until is the exclusive
// year cutoff; the final era's cutoff is ignored. MinResolved is the
// decision count at which progression pacing considers the era reached, and
// MinYearStep is the smallest number of in-game years a resolution may
// advance while the timeline sits in this era.
type EraSpec struct {
	Key         string `json:"key" yaml:"key"`
	Label       string `json:"label" yaml:"label"`
	Briefing    string `json:"briefing,omitempty" yaml:"briefing,omitempty"`
	Until       int    `json:"until" yaml:"until"`
	MinResolved int    `json:"min_resolved" yaml:"min_resolved"`
	MinYearStep int    `json:"min_year_step" yaml:"min_year_step"`
}

// EraTable is the ordered list of eras for a deck. Boundary years and
// progression counts are tuning parameters supplied alongside the content,
// not structural constants.
type EraTable []EraSpec

// IndexForYear returns the era index implied by the in-game year.
func (t EraTable) IndexForYear(year int) int {
	for i := 0; i < len(t)-1; i++ {
		if year < t[i].Until {
			return i
		}
	}
	return len(t) - 1
}

// IndexForCount returns the era index implied by the number of resolved
// events, so narrative pacing tracks decision count as well as years.
func (t EraTable) IndexForCount(resolved int) int {
	idx := 0
	for i, era := range t {
		if resolved >= era.MinResolved {
			idx = i
		}
	}
	return idx
}

// KeyIndex returns the position of an era key, or -1 if unknown.
func (t EraTable) KeyIndex(key string) int {
	for i, era := range t {
		if era.Key == key {
			return i
		}
	}
	return -1
}

// StatusSpec maps years below Until to an imperial-status label.
type StatusSpec struct {
	Until int    `json:"until" yaml:"until"`
	Label string `json:"label" yaml:"label"`
}

// StatusTable resolves the imperial-status label for a year. The final
// entry acts as the catch-all; its cutoff is ignored.
type StatusTable []StatusSpec

// LabelForYear returns the status label for the given year.
func (t StatusTable) LabelForYear(year int) string {
	if len(t) == 0 {
		return ""
	}
	for i := 0; i < len(t)-1; i++ {
		if year < t[i].Until {
			return t[i].Label
		}
	}
	return t[len(t)-1].Label
}

// GameDeck is the immutable content catalog a session plays through.
type GameDeck struct {
	InitialYear int          `json:"initial_year" yaml:"initial_year"`
	Eras        EraTable     `json:"eras" yaml:"eras"`
	Statuses    StatusTable  `json:"statuses" yaml:"statuses"`
	Events      []GameEvent  `json:"events" yaml:"events"`
	MicroEvents []MicroEvent `json:"micro_events,omitempty" yaml:"micro_events,omitempty"`
}

// GameLogEntry records one resolved decision. Append-only; read back only
// for display and report export.
type GameLogEntry struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	EventID           string    `json:"event_id"`
	EventTitle        string    `json:"event_title"`
	ChoiceID          string    `json:"choice_id"`
	ChoiceLabel       string    `json:"choice_label"`
	ReflectionPrompt  string    `json:"reflection_prompt,omitempty"`
	ReflectionAnswer  string    `json:"reflection_answer,omitempty"`
	ReflectionCorrect *bool     `json:"reflection_correct,omitempty"`
	OutcomeID         string    `json:"outcome_id"`
	OutcomeText       string    `json:"outcome_text"`
	StatsAfter        GameStats `json:"stats_after"`
	YearAfter         int       `json:"year_after"`
	StatusAfter       string    `json:"status_after"`
}

// SessionConfiguration carries per-session options that would otherwise be
// ambient global state. All fields are optional.
type SessionConfiguration struct {
	Seed                  *int64 `json:"seed,omitempty"`
	DebugSkipToEventCount *int   `json:"debug_skip_to_event_count,omitempty"`
}

// StudentSession is the opaque identity captured by onboarding. The engine
// functions with or without one; it is attached to reports only.
type StudentSession struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
