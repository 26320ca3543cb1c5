// Package handler exposes the gateway's JSON REST surface.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"workbench/internal/gateway/repository/artifact"
	kbrepo "workbench/internal/gateway/repository/kb"
	"workbench/internal/gateway/repository/playbook"
	"workbench/internal/gateway/repository/run"
	"workbench/internal/gateway/repository/style"
	chatsvc "workbench/internal/gateway/service/chat"
	kbsvc "workbench/internal/gateway/service/kb"
	versionsvc "workbench/internal/gateway/service/version"
	llmclient "workbench/internal/llmClient"
)

// Defaults carries the tenant ids applied when a request omits its own.
// Injected from config rather than hardcoded fallback constants.
type Defaults struct {
	OrgID     string
	ProjectID string
}

// Service holds the handler dependencies.
type Service struct {
	versions      *versionsvc.Service
	chat          *chatsvc.Service
	kb            *kbsvc.Service
	kbStore       kbrepo.Store
	styles        style.Store
	conversations style.ConversationStore
	playbooks     playbook.Store
	defaults      Defaults
}

func NewService(
	versions *versionsvc.Service,
	chat *chatsvc.Service,
	kb *kbsvc.Service,
	kbStore kbrepo.Store,
	styles style.Store,
	conversations style.ConversationStore,
	playbooks playbook.Store,
	defaults Defaults,
) *Service {
	return &Service{
		versions:      versions,
		chat:          chat,
		kb:            kb,
		kbStore:       kbStore,
		styles:        styles,
		conversations: conversations,
		playbooks:     playbooks,
		defaults:      defaults,
	}
}

func (s *Service) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

// respondError maps service errors onto the HTTP surface: missing entities to
// 404 with a plain-text body, precondition failures to 400, upstream router
// failures to 502, everything else to 500.
func respondError(w http.ResponseWriter, err error) {
	var statusErr *llmclient.StatusError
	switch {
	case errors.Is(err, artifact.ErrNotFound),
		errors.Is(err, kbrepo.ErrNotFound),
		errors.Is(err, style.ErrNotFound),
		errors.Is(err, run.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, versionsvc.ErrNoModelPinned):
		http.Error(w, "no model pinned", http.StatusBadRequest)
	case errors.Is(err, versionsvc.ErrParentMismatch):
		http.Error(w, "parent version belongs to a different artifact", http.StatusBadRequest)
	case errors.As(err, &statusErr):
		log.Printf("upstream router failure: %v", err)
		http.Error(w, "upstream failure", http.StatusBadGateway)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
