package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/ecclesia-strategy/config"
	"github.com/user/ecclesia-strategy/internal/random"
	"github.com/user/ecclesia-strategy/internal/types"
)

var (
	ErrInvalidPhase       = errors.New("invalid phase for action")
	ErrChoiceNotFound     = errors.New("choice not found")
	ErrRequirementsNotMet = errors.New("choice requirements not met")
	ErrReflectionRequired = errors.New("reflection answer required")
	ErrNoReflectionPrompt = errors.New("choice has no reflection prompt")
	ErrAnswerOutOfRange   = errors.New("reflection answer out of range")
)

// Session owns one play-through of a deck: phase, year, stats, tag set,
// resolution history, log, and the cooldown/reveal timers. All state is
// guarded by a single mutex; the selectors and the stat accumulator are
// pure functions invoked synchronously under it.
type Session struct {
	mu     sync.Mutex
	id     string
	logger *zap.Logger
	deck   *types.GameDeck
	cfg    config.GameConfig
	opts   types.SessionConfiguration

	phase            types.GamePhase
	year             int
	status           string
	stats            types.GameStats
	current          *types.GameEvent
	pending          *types.Choice
	reflectionAnswer *int
	resolvedOutcome  *types.Outcome
	cooldownEndsAt   time.Time
	microPending     *types.MicroEvent
	microRevealed    bool
	recentMicro      []string
	shownHistorical  map[string]bool
	tags             map[string]bool
	resolved         map[string]bool
	log              []types.GameLogEntry
	ending           types.GameEnding

	// timerGen invalidates scheduled callbacks: every transition that
	// cancels timers bumps it, and callbacks carrying a stale generation
	// are no-ops.
	timerGen      uint64
	cooldownTimer *time.Timer
	revealTimer   *time.Timer
	finalTimer    *time.Timer

	seedSeq int64
	now     func() time.Time
}

// NewSession creates a session and immediately advances it out of the
// loading phase: either into decision with the first selected event, or
// directly to a victory completion when the deck is empty.
func NewSession(id string, d *types.GameDeck, cfg config.GameConfig, opts types.SessionConfiguration, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:     id,
		logger: logger,
		deck:   d,
		cfg:    cfg,
		opts:   opts,
		now:    time.Now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initializeLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) initializeLocked() {
	s.phase = types.PhaseLoading
	s.year = s.deck.InitialYear
	s.stats = types.GameStats{
		Members:   s.cfg.StartingMembers,
		Cohesion:  s.cfg.StartingCohesion,
		Resources: s.cfg.StartingResources,
		Influence: s.cfg.StartingInfluence,
	}
	s.current = nil
	s.pending = nil
	s.reflectionAnswer = nil
	s.resolvedOutcome = nil
	s.cooldownEndsAt = time.Time{}
	s.microPending = nil
	s.microRevealed = false
	s.recentMicro = nil
	s.shownHistorical = make(map[string]bool)
	s.tags = make(map[string]bool)
	s.resolved = make(map[string]bool)
	s.log = nil
	s.ending = ""
	s.seedSeq = 0
	s.status = s.deck.Statuses.LabelForYear(s.year)

	if s.opts.DebugSkipToEventCount != nil {
		s.fastForwardLocked(*s.opts.DebugSkipToEventCount)
	}

	next := SelectNext(s.deck, s.year, s.resolved, s.nextSeedLocked())
	if next == nil {
		s.completeLocked(types.EndingVictory)
		return
	}

	s.current = next
	s.phase = types.PhaseDecision
	s.logger.Info("session initialized",
		zap.String("session_id", s.id),
		zap.String("event_id", next.ID),
		zap.Int("year", s.year))
}

// fastForwardLocked pre-resolves up to n events without applying their
// effects, used only by the debug session option.
func (s *Session) fastForwardLocked(n int) {
	for i := 0; i < n; i++ {
		event := SelectNext(s.deck, s.year, s.resolved, s.nextSeedLocked())
		if event == nil {
			return
		}
		s.resolved[event.ID] = true
		if event.YearHint > s.year {
			s.year = event.YearHint
		}
		era := s.deck.Eras.IndexForYear(s.year)
		s.year += s.deck.Eras[era].MinYearStep
	}
	s.status = s.deck.Statuses.LabelForYear(s.year)
}

// SelectChoice records the player's tentative choice and moves to the
// confirm phase. Selecting a choice whose requirements are unmet is
// rejected without any transition.
func (s *Session) SelectChoice(choiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if (s.phase != types.PhaseDecision && s.phase != types.PhaseConfirm) || s.current == nil {
		return ErrInvalidPhase
	}

	var choice *types.Choice
	for i := range s.current.Choices {
		if s.current.Choices[i].ID == choiceID {
			choice = &s.current.Choices[i]
			break
		}
	}
	if choice == nil {
		return ErrChoiceNotFound
	}

	if met, _ := EvaluateRequirements(choice.Requirements, s.stats, s.tags); !met {
		return ErrRequirementsNotMet
	}

	s.pending = choice
	s.reflectionAnswer = nil
	s.phase = types.PhaseConfirm
	return nil
}

// SetReflectionAnswer records the player's answer to the pending choice's
// reflection prompt. The answer never feeds back into outcome selection.
func (s *Session) SetReflectionAnswer(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != types.PhaseConfirm || s.pending == nil {
		return ErrInvalidPhase
	}
	if s.pending.Reflection == nil {
		return ErrNoReflectionPrompt
	}
	if index < 0 || index >= len(s.pending.Reflection.Options) {
		return ErrAnswerOutOfRange
	}

	answer := index
	s.reflectionAnswer = &answer
	return nil
}

// Confirm resolves the pending choice: it draws a weighted outcome, applies
// its effects and tag changes, appends the log entry, marks the event
// resolved, and either completes the session or enters cooldown. The whole
// step is atomic; no intermediate state is observable.
func (s *Session) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != types.PhaseConfirm || s.pending == nil || s.current == nil {
		return ErrInvalidPhase
	}
	if s.pending.Reflection != nil && s.reflectionAnswer == nil {
		return ErrReflectionRequired
	}

	options := make([]random.Weighted[types.Outcome], len(s.pending.Outcomes))
	for i, wo := range s.pending.Outcomes {
		options[i] = random.Weighted[types.Outcome]{Value: wo.Outcome, Weight: float64(wo.Weight)}
	}

	rng := random.New(s.nextSeedLocked())
	outcome, err := random.PickWeighted(options, rng.Float64)
	if err != nil {
		// Malformed content: refuse to proceed past this event.
		s.logger.Error("outcome selection failed",
			zap.String("session_id", s.id),
			zap.String("event_id", s.current.ID),
			zap.String("choice_id", s.pending.ID),
			zap.Error(err))
		return fmt.Errorf("event %q choice %q: %w", s.current.ID, s.pending.ID, err)
	}

	// The year never advances by less than the current era's minimum
	// step, so small-advance outcomes cannot stall the timeline.
	era := s.deck.Eras.IndexForYear(s.year)
	advance := outcome.YearAdvance
	if min := s.deck.Eras[era].MinYearStep; advance < min {
		advance = min
	}

	s.stats = ApplyDelta(s.stats, outcome.Effects)
	for _, tag := range outcome.AddTags {
		s.tags[tag] = true
	}
	for _, tag := range outcome.RemoveTags {
		delete(s.tags, tag)
	}
	s.year += advance
	s.status = s.deck.Statuses.LabelForYear(s.year)

	s.log = append(s.log, s.buildLogEntryLocked(outcome))
	s.resolved[s.current.ID] = true

	resolved := outcome
	s.resolvedOutcome = &resolved
	s.pending = nil
	s.reflectionAnswer = nil
	s.microPending = nil
	s.microRevealed = false
	s.phase = types.PhaseResolving

	s.logger.Info("choice resolved",
		zap.String("session_id", s.id),
		zap.String("event_id", s.current.ID),
		zap.String("outcome_id", outcome.ID),
		zap.Int("year", s.year),
		zap.Int("members", s.stats.Members),
		zap.Int("cohesion", s.stats.Cohesion))

	if ending, over := CheckEnding(s.stats, s.cfg.WinTarget); over {
		s.completeLocked(ending)
		return nil
	}

	if SelectNext(s.deck, s.year, s.resolved, s.nextSeedLocked()) == nil {
		// Content exhausted. Hold the final outcome on screen briefly
		// before completing so the player can read it.
		gen := s.cancelTimersLocked()
		hold := time.Duration(s.cfg.FinalHoldMs) * time.Millisecond
		s.finalTimer = time.AfterFunc(hold, func() { s.onFinalHold(gen) })
		return nil
	}

	gen := s.cancelTimersLocked()
	cooldown := time.Duration(s.cfg.CooldownMs) * time.Millisecond
	s.cooldownEndsAt = s.now().Add(cooldown)
	s.phase = types.PhaseCooldown

	reveal := time.Duration(float64(cooldown) * s.cfg.MicroRevealFraction)
	s.revealTimer = time.AfterFunc(reveal, func() { s.onMicroReveal(gen) })
	s.cooldownTimer = time.AfterFunc(cooldown, func() { s.onCooldownExpired(gen) })
	return nil
}

func (s *Session) buildLogEntryLocked(outcome types.Outcome) types.GameLogEntry {
	entry := types.GameLogEntry{
		ID:          uuid.New().String(),
		Timestamp:   s.now(),
		EventID:     s.current.ID,
		EventTitle:  s.current.Title,
		ChoiceID:    s.pending.ID,
		ChoiceLabel: s.pending.Label,
		OutcomeID:   outcome.ID,
		OutcomeText: outcome.Description,
		StatsAfter:  s.stats,
		YearAfter:   s.year,
		StatusAfter: s.status,
	}

	if r := s.pending.Reflection; r != nil {
		entry.ReflectionPrompt = r.Prompt
		if s.reflectionAnswer != nil {
			entry.ReflectionAnswer = r.Options[*s.reflectionAnswer]
			if r.CorrectIndex != nil {
				correct := *s.reflectionAnswer == *r.CorrectIndex
				entry.ReflectionCorrect = &correct
			}
		}
	}

	return entry
}

// onMicroReveal fires partway through the cooldown window and applies a
// secondary event's effects. Micro-events never trigger the ending check.
func (s *Session) onMicroReveal(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.phase != types.PhaseCooldown {
		return
	}

	micro, ok := SelectMicro(s.deck.MicroEvents, s.stats.Resources, s.year,
		s.nextSeedLocked(), s.recentMicro, s.shownHistorical, s.microTuning())
	if !ok {
		return
	}

	s.stats = ApplyDelta(s.stats, micro.Effects)
	s.microPending = &micro
	s.microRevealed = true
	if micro.Kind == types.MicroHistorical {
		s.shownHistorical[micro.ID] = true
	}
	s.recentMicro = append(s.recentMicro, micro.ID)
	if window := s.cfg.MicroHistoryWindow; window > 0 && len(s.recentMicro) > window {
		s.recentMicro = s.recentMicro[len(s.recentMicro)-window:]
	}

	s.logger.Debug("micro-event revealed",
		zap.String("session_id", s.id),
		zap.String("micro_id", micro.ID),
		zap.String("kind", string(micro.Kind)))
}

// onCooldownExpired advances to the next event or completes on exhaustion.
// Stale or repeated firings are safe no-ops.
func (s *Session) onCooldownExpired(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.phase != types.PhaseCooldown {
		return
	}
	s.cancelTimersLocked()

	next := SelectNext(s.deck, s.year, s.resolved, s.nextSeedLocked())
	if next == nil {
		s.completeLocked(types.EndingVictory)
		return
	}

	s.current = next
	s.phase = types.PhaseDecision
	s.pending = nil
	s.reflectionAnswer = nil
	s.resolvedOutcome = nil
	s.microPending = nil
	s.microRevealed = false
	s.cooldownEndsAt = time.Time{}
}

// onFinalHold completes the session after the exhaustion display delay.
func (s *Session) onFinalHold(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.phase != types.PhaseResolving {
		return
	}
	s.completeLocked(types.EndingVictory)
}

// Reset discards all pending timers and reinitializes the session from its
// starting values. This is the only external interruption the engine
// supports.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimersLocked()
	s.initializeLocked()
}

func (s *Session) completeLocked(ending types.GameEnding) {
	s.cancelTimersLocked()
	s.phase = types.PhaseComplete
	s.ending = ending
	s.current = nil
	s.pending = nil
	s.reflectionAnswer = nil
	s.cooldownEndsAt = time.Time{}

	s.logger.Info("session complete",
		zap.String("session_id", s.id),
		zap.String("ending", string(ending)),
		zap.Int("year", s.year),
		zap.Int("decisions", len(s.log)))
}

// cancelTimersLocked invalidates every scheduled callback and returns the
// new timer generation for freshly scheduled ones.
func (s *Session) cancelTimersLocked() uint64 {
	s.timerGen++
	for _, t := range []*time.Timer{s.cooldownTimer, s.revealTimer, s.finalTimer} {
		if t != nil {
			t.Stop()
		}
	}
	s.cooldownTimer = nil
	s.revealTimer = nil
	s.finalTimer = nil
	return s.timerGen
}

// nextSeedLocked derives a fresh selection seed. With a configured session
// seed the sequence is fully reproducible; otherwise it follows the clock.
func (s *Session) nextSeedLocked() int64 {
	s.seedSeq++
	if s.opts.Seed != nil {
		return *s.opts.Seed + s.seedSeq
	}
	return time.Now().UnixNano() + s.seedSeq
}

func (s *Session) microTuning() MicroTuning {
	return MicroTuning{
		LowResourceThreshold: s.cfg.LowResourceThreshold,
		DonationChance:       s.cfg.DonationChance,
		DonationBaseYear:     s.cfg.DonationBaseYear,
		DonationBaseFactor:   s.cfg.DonationBaseFactor,
		DonationLateYear:     s.cfg.DonationLateYear,
		DonationLateFactor:   s.cfg.DonationLateFactor,
		Retries:              s.cfg.MicroRetries,
	}
}
