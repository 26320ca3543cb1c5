package style

import (
	"context"

	"github.com/google/uuid"
)

// DefaultPresets is the stock preset set. Seeding is idempotent: upsert keyed
// by slug, so re-running it never duplicates rows.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:    "Normal",
			Slug:    "normal",
			ToneSys: "Be helpful and natural. Match user formality. Keep answers compact unless asked.",
			Params:  Params{Temperature: 0.5, TopP: 0.9, MaxTokensHint: "auto", FrequencyPenalty: 0},
		},
		{
			Name:    "Learning",
			Slug:    "learning",
			ToneSys: "Patient teacher. Explain step-by-step with simple examples.",
			Params:  Params{Temperature: 0.4, TopP: 0.9, MaxTokensHint: "medium", FrequencyPenalty: 0},
		},
		{
			Name:    "Concise",
			Slug:    "concise",
			ToneSys: "Answer in 1-3 bullets or 2 short sentences. No filler.",
			Params:  Params{Temperature: 0.3, TopP: 0.85, MaxTokensHint: "short", FrequencyPenalty: 0.2},
		},
		{
			Name:    "Explanatory",
			Slug:    "explanatory",
			ToneSys: "Educational tone. Define terms, then a clear, ordered explanation.",
			Params:  Params{Temperature: 0.5, TopP: 0.9, MaxTokensHint: "long", FrequencyPenalty: 0},
		},
		{
			Name:    "Formal",
			Slug:    "formal",
			ToneSys: "Professional, structured, complete sentences. Include rationale.",
			Params:  Params{Temperature: 0.35, TopP: 0.9, MaxTokensHint: "medium", FrequencyPenalty: 0},
		},
	}
}

// Seed upserts the default presets into the store.
func Seed(ctx context.Context, store Store) error {
	for _, p := range DefaultPresets() {
		p.ID = uuid.NewString()
		if err := store.Upsert(ctx, &p); err != nil {
			return err
		}
	}
	return nil
}
