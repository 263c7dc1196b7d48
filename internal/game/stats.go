package game

import (
	"fmt"

	"github.com/user/ecclesia-strategy/internal/types"
)

// ApplyDelta returns a new stats snapshot with the delta applied. Members
// is floored at zero with no upper clamp; the other three statistics stay
// within [0, 100]. The input is never mutated.
func ApplyDelta(stats types.GameStats, delta types.StatDelta) types.GameStats {
	return types.GameStats{
		Members:   maxInt(0, stats.Members+delta.Members),
		Cohesion:  clamp(stats.Cohesion+delta.Cohesion, 0, 100),
		Resources: clamp(stats.Resources+delta.Resources, 0, 100),
		Influence: clamp(stats.Influence+delta.Influence, 0, 100),
	}
}

// CheckEnding evaluates terminal conditions. Collapse is checked before
// victory so a resolution driving both conditions in the same tick ends in
// collapse.
func CheckEnding(stats types.GameStats, winTarget int) (types.GameEnding, bool) {
	if stats.Cohesion <= 0 || stats.Members <= 0 {
		return types.EndingCollapse, true
	}
	if stats.Members >= winTarget {
		return types.EndingVictory, true
	}
	return "", false
}

// EvaluateRequirements checks a choice's gating against current stats and
// accumulated tags, returning whether it is met plus human-readable unmet
// clauses. The same evaluator backs both the snapshot lock text and the
// select-choice no-op enforcement.
func EvaluateRequirements(req *types.Requirements, stats types.GameStats, tags map[string]bool) (bool, []string) {
	if req == nil {
		return true, nil
	}

	var unmet []string

	if req.MinResources != nil && stats.Resources < *req.MinResources {
		unmet = append(unmet, fmt.Sprintf("Resources >= %d", *req.MinResources))
	}
	if req.MinInfluence != nil && stats.Influence < *req.MinInfluence {
		unmet = append(unmet, fmt.Sprintf("Influence >= %d", *req.MinInfluence))
	}
	if req.MinCohesion != nil && stats.Cohesion < *req.MinCohesion {
		unmet = append(unmet, fmt.Sprintf("Cohesion >= %d", *req.MinCohesion))
	}

	for _, tag := range req.Tags {
		if !tags[tag] {
			unmet = append(unmet, "Prior action required")
			break
		}
	}

	if len(req.AnyTags) > 0 {
		any := false
		for _, tag := range req.AnyTags {
			if tags[tag] {
				any = true
				break
			}
		}
		if !any {
			unmet = append(unmet, "One of several prior actions required")
		}
	}

	for _, tag := range req.ForbiddenTags {
		if tags[tag] {
			unmet = append(unmet, "Blocked by a prior decision")
			break
		}
	}

	return len(unmet) == 0, unmet
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
