package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one outbound call to the router.
type ChatRequest struct {
	Model    string
	Messages []Message
	Params   map[string]any
	Stream   bool
}

// RouterClient calls the upstream chat-completions router (OpenAI-compatible).
// It returns the raw response so callers can either stream the body through
// (event-stream passthrough) or decode it as JSON. No retry, no backoff, and
// deliberately no client timeout: the caller holds until the upstream resolves.
type RouterClient struct {
	http    *http.Client
	apiKey  string
	baseURL string
	referer string
	title   string
}

// NewRouterClient creates a router client. referer and title are sent on every
// request as the router's two identification headers.
func NewRouterClient(apiKey, baseURL, referer, title string) *RouterClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	return &RouterClient{
		http:    &http.Client{},
		apiKey:  apiKey,
		baseURL: baseURL,
		referer: referer,
		title:   title,
	}
}

// Chat issues one POST to the router. Generation params are merged into the
// request body at the top level, next to model and messages. A non-2xx status
// is returned as *StatusError carrying only the status code; the caller owns
// closing the response body on success.
func (c *RouterClient) Chat(ctx context.Context, req ChatRequest) (*http.Response, error) {
	msgs := req.Messages
	if msgs == nil {
		msgs = []Message{}
	}
	body := map[string]any{
		"stream":   req.Stream,
		"model":    req.Model,
		"messages": msgs,
	}
	for k, v := range req.Params {
		body[k] = v
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp, nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// RouterGenerator adapts RouterClient to single-prompt text generation.
type RouterGenerator struct {
	client *RouterClient
	model  string
}

func NewRouterGenerator(client *RouterClient, model string) *RouterGenerator {
	if strings.TrimSpace(model) == "" {
		model = "openai/gpt-4.1-mini"
	}
	return &RouterGenerator{client: client, model: model}
}

// Generate sends prompt as a single user message and extracts the first
// completion's text. A malformed or empty provider response yields "", not an
// error; transport and status failures propagate.
func (g *RouterGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat(ctx, ChatRequest{
		Model:    g.model,
		Messages: []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
