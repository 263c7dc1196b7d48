package game

import (
	"github.com/user/ecclesia-strategy/internal/random"
	"github.com/user/ecclesia-strategy/internal/types"
)

// SelectNext chooses the next unresolved event for the given year and
// resolution history. It is deterministic for a fixed (deck, year,
// resolved, seed) tuple.
//
// Selection order: any unresolved intro event bypasses era logic entirely;
// otherwise candidates come from the effective era, which is the earlier of
// the year-derived era and the progression era implied by the number of
// resolved events. If the effective era is exhausted the search advances
// era-by-era through later eras. A nil return means the deck is exhausted,
// which the session treats as victory.
func SelectNext(d *types.GameDeck, year int, resolved map[string]bool, seed int64) *types.GameEvent {
	for i := range d.Events {
		if d.Events[i].Intro && !resolved[d.Events[i].ID] {
			return &d.Events[i]
		}
	}

	yearEra := d.Eras.IndexForYear(year)
	countEra := d.Eras.IndexForCount(len(resolved))
	effective := yearEra
	if countEra < effective {
		effective = countEra
	}

	rng := random.New(seed)
	for era := effective; era < len(d.Eras); era++ {
		candidates := unresolvedInEra(d, era, resolved)
		if len(candidates) == 0 {
			continue
		}
		return candidates[random.PickIndex(len(candidates), rng.Float64)]
	}

	return nil
}

func unresolvedInEra(d *types.GameDeck, era int, resolved map[string]bool) []*types.GameEvent {
	var candidates []*types.GameEvent
	for i := range d.Events {
		event := &d.Events[i]
		if resolved[event.ID] {
			continue
		}
		if d.Eras.KeyIndex(event.Era) != era {
			continue
		}
		candidates = append(candidates, event)
	}
	return candidates
}
