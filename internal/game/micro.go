package game

import (
	"math"

	"github.com/user/ecclesia-strategy/internal/random"
	"github.com/user/ecclesia-strategy/internal/types"
)

// MicroTuning carries the micro-event selection parameters. Values come
// from config.GameConfig; the zero value is not usable.
type MicroTuning struct {
	LowResourceThreshold int
	DonationChance       float64
	DonationBaseYear     int
	DonationBaseFactor   float64
	DonationLateYear     int
	DonationLateFactor   float64
	Retries              int
}

// SelectMicro picks a secondary event to reveal mid-cooldown.
//
// An in-window historical event not yet shown this session takes precedence
// over everything else. Absent one, scarce resources restrict the draw to
// the donation pool; otherwise a small fixed chance still favors donations
// to keep resources from stagnating. Donation gains scale with the in-game
// year. Identifiers in the recent trailing window are avoided by retrying
// with derived seeds a bounded number of times before a repeat is accepted.
//
// The second return value is false when no eligible micro-event exists.
func SelectMicro(pool []types.MicroEvent, resources, year int, seed int64, recent []string, shown map[string]bool, tuning MicroTuning) (types.MicroEvent, bool) {
	for _, me := range pool {
		if me.Kind != types.MicroHistorical || shown[me.ID] {
			continue
		}
		if me.Window != nil && !me.Window.Contains(year) {
			continue
		}
		return me, true
	}

	rng := random.New(seed)
	fromDonations := resources <= tuning.LowResourceThreshold || rng.Float64() < tuning.DonationChance

	candidates := kindPool(pool, fromDonations)
	if len(candidates) == 0 {
		// Fall back to the other pool rather than returning nothing.
		candidates = kindPool(pool, !fromDonations)
	}
	if len(candidates) == 0 {
		return types.MicroEvent{}, false
	}

	recentSet := make(map[string]bool, len(recent))
	for _, id := range recent {
		recentSet[id] = true
	}

	picked := candidates[random.PickIndex(len(candidates), rng.Float64)]
	for attempt := 1; attempt <= tuning.Retries && recentSet[picked.ID]; attempt++ {
		retry := random.New(seed + int64(attempt))
		picked = candidates[random.PickIndex(len(candidates), retry.Float64)]
	}

	if picked.Kind == types.MicroDonation {
		picked.Effects.Resources = scaleDonation(picked.Effects.Resources, year, tuning)
	}

	return picked, true
}

func kindPool(pool []types.MicroEvent, donations bool) []types.MicroEvent {
	var out []types.MicroEvent
	for _, me := range pool {
		switch {
		case me.Kind == types.MicroHistorical:
			continue
		case donations && me.Kind == types.MicroDonation:
			out = append(out, me)
		case !donations && me.Kind == types.MicroFlavor:
			out = append(out, me)
		}
	}
	return out
}

// scaleDonation grows a donation's resource gain linearly between the base
// and late anchors, clamped outside that range, rounded, and floored at 1.
func scaleDonation(base, year int, tuning MicroTuning) int {
	if base <= 0 {
		return base
	}

	factor := tuning.DonationBaseFactor
	switch {
	case year >= tuning.DonationLateYear:
		factor = tuning.DonationLateFactor
	case year > tuning.DonationBaseYear:
		span := float64(tuning.DonationLateYear - tuning.DonationBaseYear)
		t := float64(year-tuning.DonationBaseYear) / span
		factor = tuning.DonationBaseFactor + t*(tuning.DonationLateFactor-tuning.DonationBaseFactor)
	}

	scaled := int(math.Round(float64(base) * factor))
	if scaled < 1 {
		scaled = 1
	}
	return scaled
}
