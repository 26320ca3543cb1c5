package handler

import (
	"net/http"
	"strings"

	kbrepo "workbench/internal/gateway/repository/kb"
)

type createSourceRequest struct {
	OrgID string `json:"orgId"`
	URL   string `json:"url"`
}

// HandleCreateSource registers a URL as a knowledge-base source.
func (s *Service) HandleCreateSource(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	orgID := strings.TrimSpace(req.OrgID)
	if orgID == "" {
		orgID = s.defaults.OrgID
	}
	src, err := s.kb.RegisterSource(r.Context(), orgID, req.URL)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": src})
}

type ingestRequest struct {
	SourceID string `json:"sourceId"`
}

// HandleIngest fetches, strips, chunks, and stores a registered source.
func (s *Service) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	count, err := s.kb.Ingest(r.Context(), req.SourceID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "chunks": count})
}

type searchRequest struct {
	OrgID string `json:"orgId"`
	Query string `json:"query"`
}

// HandleSearch runs a plain-text query over an org's ingested chunks.
func (s *Service) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	orgID := strings.TrimSpace(req.OrgID)
	if orgID == "" {
		orgID = s.defaults.OrgID
	}
	rows, err := s.kbStore.Search(r.Context(), orgID, req.Query, 8)
	if err != nil {
		respondError(w, err)
		return
	}
	if rows == nil {
		rows = []kbrepo.Chunk{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"context": rows})
}
