// Package style persists tone presets and the conversations that pin them.
// Presets are immutable reference data keyed by slug; conversations hold a
// weak reference to at most one preset.
package style

import (
	"context"
	"errors"
)

// Params are a preset's default generation parameters. MaxTokensHint is a
// bucketed budget (short/medium/long/auto) translated to a concrete
// max_tokens at resolution time.
type Params struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	MaxTokensHint    string  `json:"max_tokens_hint"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
}

// Preset is a named bundle of tone instructions and default parameters.
type Preset struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	ToneSys string `json:"toneSys"`
	Params  Params `json:"paramsJson"`
}

// Conversation optionally pins one preset by id. Created lazily on first pin.
type Conversation struct {
	ID            string `json:"id"`
	ProjectID     string `json:"projectId"`
	StylePresetID string `json:"stylePresetId,omitempty"`
}

type Store interface {
	BySlug(ctx context.Context, slug string) (*Preset, error)
	ByID(ctx context.Context, id string) (*Preset, error)
	// List returns all presets, name ascending.
	List(ctx context.Context) ([]Preset, error)
	// Upsert inserts or replaces a preset by slug. Used by the startup seed.
	Upsert(ctx context.Context, p *Preset) error
}

type ConversationStore interface {
	// PinStyle points the conversation at presetID, creating the conversation
	// under projectID if it does not exist yet.
	PinStyle(ctx context.Context, conversationID, projectID, presetID string) (*Conversation, error)
	Get(ctx context.Context, id string) (*Conversation, error)
}

var ErrNotFound = errors.New("style preset not found")
