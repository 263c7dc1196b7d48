package deck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/ecclesia-strategy/internal/types"
)

func TestDefaultDeckIsValid(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 112, d.InitialYear)
	assert.Len(t, d.Eras, 4)
	assert.NotEmpty(t, d.Events)
	assert.NotEmpty(t, d.MicroEvents)

	// Exactly one intro event opens the default deck.
	intros := 0
	for _, event := range d.Events {
		if event.Intro {
			intros++
		}
	}
	assert.Equal(t, 1, intros)
}

func TestEraTableLookups(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 0, d.Eras.IndexForYear(112))
	assert.Equal(t, 0, d.Eras.IndexForYear(199))
	assert.Equal(t, 1, d.Eras.IndexForYear(200))
	assert.Equal(t, 2, d.Eras.IndexForYear(313))
	assert.Equal(t, 3, d.Eras.IndexForYear(430))
	assert.Equal(t, 3, d.Eras.IndexForYear(900))

	assert.Equal(t, 0, d.Eras.IndexForCount(0))
	assert.Equal(t, 0, d.Eras.IndexForCount(2))
	assert.Equal(t, 1, d.Eras.IndexForCount(3))
	assert.Equal(t, 3, d.Eras.IndexForCount(50))
}

func TestStatusTableLookups(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Localized Suspicion", d.Statuses.LabelForYear(112))
	assert.Equal(t, "Localized Persecution", d.Statuses.LabelForYear(200))
	assert.Equal(t, "Anxious Tolerance", d.Statuses.LabelForYear(300))
	assert.Equal(t, "Imperial Favor", d.Statuses.LabelForYear(330))
	assert.Equal(t, "Provincial Integration", d.Statuses.LabelForYear(450))
}

func TestLoadYAMLDeck(t *testing.T) {
	content := `
initial_year: 100
eras:
  - key: early
    label: Early
    until: 300
    min_resolved: 0
    min_year_step: 1
  - key: late
    label: Late
    until: 500
    min_resolved: 2
    min_year_step: 2
statuses:
  - until: 300
    label: Quiet
  - until: 500
    label: Loud
events:
  - id: first
    era: early
    title: First
    narrative: Something happens.
    choices:
      - id: first-choice
        label: Do it
        outcomes:
          - outcome:
              id: first-a
              description: It worked.
              effects:
                cohesion: 2
              year_advance: 1
            weight: 1
`
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, d.InitialYear)
	require.Len(t, d.Events, 1)
	assert.Equal(t, "first", d.Events[0].ID)
	assert.Equal(t, 2, d.Events[0].Choices[0].Outcomes[0].Outcome.Effects.Cohesion)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func validTestDeck() *types.GameDeck {
	return &types.GameDeck{
		InitialYear: 100,
		Eras: types.EraTable{
			{Key: "early", Label: "Early", Until: 300, MinYearStep: 1},
			{Key: "late", Label: "Late", Until: 500, MinResolved: 2, MinYearStep: 2},
		},
		Statuses: types.StatusTable{{Until: 500, Label: "Quiet"}},
		Events: []types.GameEvent{
			{
				ID: "e1", Era: "early", Title: "E1", Narrative: "n",
				Choices: []types.Choice{
					{
						ID: "c1", Label: "go",
						Outcomes: []types.WeightedOutcome{
							{Outcome: types.Outcome{ID: "o1", Description: "d", YearAdvance: 1}, Weight: 1},
						},
					},
				},
			},
		},
	}
}

func TestValidateRejectsDefects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.GameDeck)
	}{
		{
			name:   "choice without outcomes",
			mutate: func(d *types.GameDeck) { d.Events[0].Choices[0].Outcomes = nil },
		},
		{
			name:   "non-positive weight",
			mutate: func(d *types.GameDeck) { d.Events[0].Choices[0].Outcomes[0].Weight = 0 },
		},
		{
			name:   "unknown era",
			mutate: func(d *types.GameDeck) { d.Events[0].Era = "mythic" },
		},
		{
			name: "duplicate event id",
			mutate: func(d *types.GameDeck) {
				d.Events = append(d.Events, d.Events[0])
			},
		},
		{
			name: "reflection index out of range",
			mutate: func(d *types.GameDeck) {
				bad := 5
				d.Events[0].Choices[0].Reflection = &types.ReflectionPrompt{
					Prompt:       "why",
					Options:      []string{"a", "b"},
					CorrectIndex: &bad,
				}
			},
		},
		{
			name: "requirement tag never granted",
			mutate: func(d *types.GameDeck) {
				d.Events[0].Choices[0].Requirements = &types.Requirements{
					Tags: []string{"never-granted"},
				}
			},
		},
		{
			name: "any-of requirement tag never granted",
			mutate: func(d *types.GameDeck) {
				d.Events[0].Choices[0].Requirements = &types.Requirements{
					AnyTags: []string{"never-granted"},
				}
			},
		},
		{
			name: "forbidden tag never granted",
			mutate: func(d *types.GameDeck) {
				d.Events[0].Choices[0].Requirements = &types.Requirements{
					ForbiddenTags: []string{"never-granted"},
				}
			},
		},
		{
			name: "inverted micro-event window",
			mutate: func(d *types.GameDeck) {
				d.MicroEvents = []types.MicroEvent{
					{ID: "m1", Kind: types.MicroHistorical, Description: "d",
						Window: &types.YearWindow{From: 400, To: 300}},
				}
			},
		},
		{
			name: "unknown micro-event kind",
			mutate: func(d *types.GameDeck) {
				d.MicroEvents = []types.MicroEvent{{ID: "m1", Kind: "seasonal", Description: "d"}}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := validTestDeck()
			tc.mutate(d)
			assert.Error(t, Validate(d))
		})
	}
}

func TestValidateAcceptsWellFormedDeck(t *testing.T) {
	assert.NoError(t, Validate(validTestDeck()))
}

func TestValidateAcceptsGrantedRequirementTags(t *testing.T) {
	d := validTestDeck()
	d.Events[0].Choices[0].Outcomes[0].Outcome.AddTags = []string{"sheltered"}
	d.Events = append(d.Events, types.GameEvent{
		ID: "e2", Era: "late", Title: "E2", Narrative: "n",
		Choices: []types.Choice{
			{
				ID: "c1", Label: "go",
				Requirements: &types.Requirements{
					Tags:          []string{"sheltered"},
					AnyTags:       []string{"sheltered"},
					ForbiddenTags: []string{"sheltered"},
				},
				Outcomes: []types.WeightedOutcome{
					{Outcome: types.Outcome{ID: "o1", Description: "d", YearAdvance: 1}, Weight: 1},
				},
			},
		},
	})

	assert.NoError(t, Validate(d))
}
