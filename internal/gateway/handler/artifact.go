package handler

import (
	"encoding/base64"
	"net/http"
	"strings"

	versionsvc "workbench/internal/gateway/service/version"
)

type createArtifactRequest struct {
	ProjectID     string `json:"projectId"`
	Type          string `json:"type"`
	Name          string `json:"name"`
	ContentText   string `json:"contentText"`
	ContentBase64 string `json:"contentBase64"`
	BlobURL       string `json:"blobUrl"`
	Summary       string `json:"summary"`
}

// HandleCreateArtifact creates an artifact together with its first version.
func (s *Service) HandleCreateArtifact(w http.ResponseWriter, r *http.Request) {
	var req createArtifactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		projectID = s.defaults.ProjectID
	}
	blobData, ok := decodeBlob(w, req.ContentBase64)
	if !ok {
		return
	}
	a, v, err := s.versions.CreateArtifact(r.Context(), versionsvc.CreateArtifactInput{
		ProjectID:   projectID,
		Type:        req.Type,
		Name:        req.Name,
		ContentText: req.ContentText,
		BlobURL:     req.BlobURL,
		BlobData:    blobData,
		Summary:     req.Summary,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifact": a, "version": v})
}

type createVersionRequest struct {
	ParentVersionID string         `json:"parentVersionId"`
	Branch          string         `json:"branch"`
	ContentText     string         `json:"contentText"`
	ContentBase64   string         `json:"contentBase64"`
	BlobURL         string         `json:"blobUrl"`
	Summary         string         `json:"summary"`
	ModelName       string         `json:"modelName"`
	Provider        string         `json:"provider"`
	Params          map[string]any `json:"paramsJson"`
}

// HandleCreateVersion appends a version under an existing artifact.
func (s *Service) HandleCreateVersion(w http.ResponseWriter, r *http.Request) {
	var req createVersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	blobData, ok := decodeBlob(w, req.ContentBase64)
	if !ok {
		return
	}
	v, err := s.versions.CreateVersion(r.Context(), versionsvc.CreateVersionInput{
		ArtifactID:      r.PathValue("id"),
		ParentVersionID: req.ParentVersionID,
		Branch:          req.Branch,
		ContentText:     req.ContentText,
		BlobURL:         req.BlobURL,
		BlobData:        blobData,
		Summary:         req.Summary,
		ModelName:       req.ModelName,
		Provider:        req.Provider,
		Params:          req.Params,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"version": v})
}

// HandleRerun replays a pinned-model version. No request body.
func (s *Service) HandleRerun(w http.ResponseWriter, r *http.Request) {
	result, err := s.versions.Rerun(r.Context(), r.PathValue("versionId"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runId": result.RunID, "output": result.Output})
}

func decodeBlob(w http.ResponseWriter, encoded string) ([]byte, bool) {
	if strings.TrimSpace(encoded) == "" {
		return nil, true
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		http.Error(w, "invalid contentBase64", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}
