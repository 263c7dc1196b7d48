// Package deck loads and validates content decks. Decks are authored data;
// any structural defect found here is fatal rather than skipped, since it
// indicates an authoring error the engine must not play through.
package deck

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/ecclesia-strategy/internal/types"
)

//go:embed data/deck.json
var defaultDeckJSON []byte

// Default returns the deck embedded in the binary.
func Default() (*types.GameDeck, error) {
	return Parse(defaultDeckJSON, "json")
}

// Load reads a deck from disk, dispatching on the file extension. Both JSON
// and YAML authoring formats are supported.
func Load(path string) (*types.GameDeck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck file: %w", err)
	}

	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	return Parse(data, format)
}

// Parse decodes and validates deck content in the given format.
func Parse(data []byte, format string) (*types.GameDeck, error) {
	var d types.GameDeck
	switch format {
	case "json":
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to parse deck JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to parse deck YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown deck format %q", format)
	}

	if err := Validate(&d); err != nil {
		return nil, err
	}

	return &d, nil
}

// Validate checks a deck for content-integrity defects: duplicate or empty
// identifiers, choices without outcomes, non-positive weights, reflection
// answers out of range, unknown era keys, requirement tags no outcome ever
// grants, and inverted year windows.
func Validate(d *types.GameDeck) error {
	if len(d.Eras) == 0 {
		return fmt.Errorf("deck has no era table")
	}
	for i := 1; i < len(d.Eras)-1; i++ {
		if d.Eras[i].Until <= d.Eras[i-1].Until {
			return fmt.Errorf("era %q: year cutoff %d does not increase past %d",
				d.Eras[i].Key, d.Eras[i].Until, d.Eras[i-1].Until)
		}
	}
	for _, era := range d.Eras {
		if era.MinYearStep < 1 {
			return fmt.Errorf("era %q: minimum year step must be at least 1", era.Key)
		}
	}

	granted := make(map[string]bool)
	for _, event := range d.Events {
		for _, choice := range event.Choices {
			for _, wo := range choice.Outcomes {
				for _, tag := range wo.Outcome.AddTags {
					granted[tag] = true
				}
			}
		}
	}

	seen := make(map[string]bool, len(d.Events))
	for _, event := range d.Events {
		if event.ID == "" {
			return fmt.Errorf("event with empty identifier")
		}
		if seen[event.ID] {
			return fmt.Errorf("duplicate event %q", event.ID)
		}
		seen[event.ID] = true

		if d.Eras.KeyIndex(event.Era) < 0 {
			return fmt.Errorf("event %q: unknown era %q", event.ID, event.Era)
		}
		if len(event.Choices) == 0 {
			return fmt.Errorf("event %q: no choices", event.ID)
		}

		for _, choice := range event.Choices {
			if err := validateChoice(event.ID, choice, granted); err != nil {
				return err
			}
		}
	}

	micro := make(map[string]bool, len(d.MicroEvents))
	for _, me := range d.MicroEvents {
		if me.ID == "" {
			return fmt.Errorf("micro-event with empty identifier")
		}
		if micro[me.ID] {
			return fmt.Errorf("duplicate micro-event %q", me.ID)
		}
		micro[me.ID] = true

		switch me.Kind {
		case types.MicroFlavor, types.MicroDonation, types.MicroHistorical:
		default:
			return fmt.Errorf("micro-event %q: unknown kind %q", me.ID, me.Kind)
		}
		if me.Window != nil && me.Window.To < me.Window.From {
			return fmt.Errorf("micro-event %q: year window %d-%d is inverted",
				me.ID, me.Window.From, me.Window.To)
		}
	}

	return nil
}

func validateChoice(eventID string, choice types.Choice, granted map[string]bool) error {
	if choice.ID == "" {
		return fmt.Errorf("event %q: choice with empty identifier", eventID)
	}
	if len(choice.Outcomes) == 0 {
		return fmt.Errorf("event %q: choice %q has no outcomes", eventID, choice.ID)
	}

	total := 0
	for _, wo := range choice.Outcomes {
		if wo.Weight <= 0 {
			return fmt.Errorf("event %q: choice %q: outcome %q has non-positive weight %d",
				eventID, choice.ID, wo.Outcome.ID, wo.Weight)
		}
		total += wo.Weight
	}
	if total <= 0 {
		return fmt.Errorf("event %q: choice %q: total outcome weight is not positive", eventID, choice.ID)
	}

	// A requirement tag no outcome in the deck ever adds can never be
	// satisfied (or, for forbidden tags, never triggered).
	if req := choice.Requirements; req != nil {
		for _, group := range [][]string{req.Tags, req.AnyTags, req.ForbiddenTags} {
			for _, tag := range group {
				if !granted[tag] {
					return fmt.Errorf("event %q: choice %q: requirement tag %q is never granted by any outcome",
						eventID, choice.ID, tag)
				}
			}
		}
	}

	if r := choice.Reflection; r != nil {
		if len(r.Options) == 0 {
			return fmt.Errorf("event %q: choice %q: reflection prompt has no options", eventID, choice.ID)
		}
		if r.CorrectIndex != nil && (*r.CorrectIndex < 0 || *r.CorrectIndex >= len(r.Options)) {
			return fmt.Errorf("event %q: choice %q: reflection correct index %d out of range",
				eventID, choice.ID, *r.CorrectIndex)
		}
	}

	return nil
}
