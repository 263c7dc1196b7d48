package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ecclesia-strategy/internal/types"
)

func selectorDeck() *types.GameDeck {
	return &types.GameDeck{
		InitialYear: 112,
		Eras: types.EraTable{
			{Key: "founding", Label: "Founding", Until: 200, MinResolved: 0, MinYearStep: 1},
			{Key: "persecution", Label: "Persecution", Until: 313, MinResolved: 2, MinYearStep: 2},
			{Key: "imperial", Label: "Imperial", Until: 430, MinResolved: 4, MinYearStep: 3},
		},
		Statuses: types.StatusTable{{Until: 430, Label: "Provincial"}},
		Events: []types.GameEvent{
			{ID: "arrival", Era: "founding", Intro: true, Title: "Arrival"},
			{ID: "founding-a", Era: "founding", Title: "A"},
			{ID: "founding-b", Era: "founding", Title: "B"},
			{ID: "persecution-a", Era: "persecution", Title: "C"},
			{ID: "imperial-a", Era: "imperial", Title: "D"},
		},
	}
}

func TestSelectNextIntroPrecedence(t *testing.T) {
	d := selectorDeck()

	// The intro event wins regardless of year or seed.
	for _, year := range []int{112, 250, 400} {
		event := SelectNext(d, year, map[string]bool{}, 7)
		require.NotNil(t, event)
		assert.Equal(t, "arrival", event.ID)
	}
}

func TestSelectNextSkipsResolved(t *testing.T) {
	d := selectorDeck()
	resolved := map[string]bool{"arrival": true}

	for seed := int64(1); seed <= 20; seed++ {
		event := SelectNext(d, 112, resolved, seed)
		require.NotNil(t, event)
		assert.False(t, resolved[event.ID])
		assert.Equal(t, "founding", event.Era)
	}
}

func TestSelectNextCountHoldsEraBack(t *testing.T) {
	d := selectorDeck()

	// The year alone puts us in the imperial era, but with only the intro
	// resolved the progression count holds selection back in the founding
	// era.
	resolved := map[string]bool{"arrival": true}
	event := SelectNext(d, 400, resolved, 3)
	require.NotNil(t, event)
	assert.Equal(t, "founding", event.Era)
}

func TestSelectNextFallsThroughExhaustedEras(t *testing.T) {
	d := selectorDeck()
	resolved := map[string]bool{
		"arrival":    true,
		"founding-a": true,
		"founding-b": true,
	}

	event := SelectNext(d, 150, resolved, 3)
	require.NotNil(t, event)
	assert.Equal(t, "persecution-a", event.ID)

	resolved["persecution-a"] = true
	event = SelectNext(d, 150, resolved, 3)
	require.NotNil(t, event)
	assert.Equal(t, "imperial-a", event.ID)
}

func TestSelectNextExhaustion(t *testing.T) {
	d := selectorDeck()
	resolved := map[string]bool{
		"arrival":       true,
		"founding-a":    true,
		"founding-b":    true,
		"persecution-a": true,
		"imperial-a":    true,
	}

	assert.Nil(t, SelectNext(d, 460, resolved, 3))
}

func TestSelectNextDeterministicForSeed(t *testing.T) {
	d := selectorDeck()
	resolved := map[string]bool{"arrival": true}

	first := SelectNext(d, 112, resolved, 99)
	second := SelectNext(d, 112, resolved, 99)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
}
