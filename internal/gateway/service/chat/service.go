// Package chat resolves style presets into outbound model parameters and
// proxies chat turns to the router.
package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"workbench/internal/gateway/repository/style"
	llmclient "workbench/internal/llmClient"
)

// maxTokensBuckets translates a preset's token-budget hint into a concrete
// max_tokens value. Hints outside the table apply no override.
var maxTokensBuckets = map[string]int{
	"short":  300,
	"medium": 800,
	"long":   1600,
}

// Chatter issues one call to the upstream router.
type Chatter interface {
	Chat(ctx context.Context, req llmclient.ChatRequest) (*http.Response, error)
}

type Service struct {
	presets       style.Store
	conversations style.ConversationStore
	router        Chatter
	defaultModel  string
}

func New(presets style.Store, conversations style.ConversationStore, router Chatter, defaultModel string) *Service {
	if strings.TrimSpace(defaultModel) == "" {
		defaultModel = "openai/gpt-4.1-mini"
	}
	return &Service{
		presets:       presets,
		conversations: conversations,
		router:        router,
		defaultModel:  defaultModel,
	}
}

type Request struct {
	ConversationID    string
	Model             string
	Messages          []llmclient.Message
	Params            map[string]any
	StyleOverrideSlug string
}

// ResolvePreset picks at most one preset for the request: an explicit slug
// override wins, otherwise the conversation's pinned preset, otherwise none.
// An override slug or conversation that resolves to nothing yields no preset
// rather than an error.
func (s *Service) ResolvePreset(ctx context.Context, conversationID, overrideSlug string) (*style.Preset, error) {
	if strings.TrimSpace(overrideSlug) != "" {
		p, err := s.presets.BySlug(ctx, overrideSlug)
		if errors.Is(err, style.ErrNotFound) {
			return nil, nil
		}
		return p, err
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, nil
	}
	c, err := s.conversations.Get(ctx, conversationID)
	if errors.Is(err, style.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.StylePresetID == "" {
		return nil, nil
	}
	p, err := s.presets.ByID(ctx, c.StylePresetID)
	if errors.Is(err, style.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Merge applies a resolved preset to the caller's messages and parameters.
// The preset's tone text is prepended as a system message and its token hint
// becomes max_tokens via the bucket table, unless the caller already set one:
// caller parameters always win. Pure function of its inputs.
func Merge(preset *style.Preset, messages []llmclient.Message, params map[string]any) ([]llmclient.Message, map[string]any) {
	merged := make(map[string]any)
	if preset != nil {
		if n, ok := maxTokensBuckets[preset.Params.MaxTokensHint]; ok {
			merged["max_tokens"] = n
		}
	}
	for k, v := range params {
		merged[k] = v
	}

	out := messages
	if preset != nil && strings.TrimSpace(preset.ToneSys) != "" {
		out = make([]llmclient.Message, 0, len(messages)+1)
		out = append(out, llmclient.Message{Role: "system", Content: preset.ToneSys})
		out = append(out, messages...)
	}
	return out, merged
}

// Chat resolves the request's style, merges parameters, and forwards the turn
// to the router as a streaming call. The raw upstream response is returned
// for event-stream passthrough.
func (s *Service) Chat(ctx context.Context, req Request) (*http.Response, error) {
	preset, err := s.ResolvePreset(ctx, req.ConversationID, req.StyleOverrideSlug)
	if err != nil {
		return nil, err
	}
	messages, params := Merge(preset, req.Messages, req.Params)

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.defaultModel
	}
	return s.router.Chat(ctx, llmclient.ChatRequest{
		Model:    model,
		Messages: messages,
		Params:   params,
		Stream:   true,
	})
}
