package handler

import (
	"errors"
	"net/http"

	"workbench/internal/gateway/repository/style"
	chatsvc "workbench/internal/gateway/service/chat"
	llmclient "workbench/internal/llmClient"
)

type chatRequest struct {
	ConversationID    string              `json:"conversationId"`
	Model             string              `json:"model"`
	Messages          []llmclient.Message `json:"messages"`
	Params            map[string]any      `json:"params"`
	StyleOverrideSlug string              `json:"styleOverrideSlug"`
}

// HandleChat proxies a chat turn to the router and passes the upstream
// event stream through to the client, flushing per chunk.
func (s *Service) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.chat.Chat(r.Context(), chatsvc.Request{
		ConversationID:    req.ConversationID,
		Model:             req.Model,
		Messages:          req.Messages,
		Params:            req.Params,
		StyleOverrideSlug: req.StyleOverrideSlug,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

type pinStyleRequest struct {
	StyleSlug string `json:"styleSlug"`
}

// HandlePinStyle pins a preset to a conversation, creating the conversation
// if it does not exist yet.
func (s *Service) HandlePinStyle(w http.ResponseWriter, r *http.Request) {
	var req pinStyleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	preset, err := s.styles.BySlug(r.Context(), req.StyleSlug)
	if errors.Is(err, style.ErrNotFound) {
		http.Error(w, "unknown style", http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	conversation, err := s.conversations.PinStyle(r.Context(), r.PathValue("id"), s.defaults.ProjectID, preset.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "conversation": conversation})
}

// HandleListStyles lists presets, name ascending.
func (s *Service) HandleListStyles(w http.ResponseWriter, r *http.Request) {
	items, err := s.styles.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if items == nil {
		items = []style.Preset{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
