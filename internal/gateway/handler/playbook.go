package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"workbench/internal/gateway/repository/playbook"
)

type createPlaybookRequest struct {
	OrgID  string   `json:"orgId"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags"`
	BodyMD string   `json:"bodyMd"`
}

// HandleCreatePlaybook creates a reusable markdown snippet.
func (s *Service) HandleCreatePlaybook(w http.ResponseWriter, r *http.Request) {
	var req createPlaybookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	orgID := strings.TrimSpace(req.OrgID)
	if orgID == "" {
		orgID = s.defaults.OrgID
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	p := &playbook.Playbook{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		Title:     req.Title,
		Tags:      tags,
		BodyMD:    req.BodyMD,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.playbooks.Create(r.Context(), p); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playbook": p})
}

// HandleSearchPlaybooks runs a full-text query over title+tags+body.
func (s *Service) HandleSearchPlaybooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := s.playbooks.Search(r.Context(), q)
	if err != nil {
		respondError(w, err)
		return
	}
	if results == nil {
		results = []playbook.Playbook{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
