package api

import (
	"encoding/json"
	"net/http"

	"github.com/casetrace/evidence-analyzer/internal/auth"
	"github.com/casetrace/evidence-analyzer/internal/chunk"
	"github.com/casetrace/evidence-analyzer/internal/contradiction"
	"github.com/casetrace/evidence-analyzer/internal/storage"
	"github.com/casetrace/evidence-analyzer/pkg/models"
)

// DetectRequest carries optional detection inputs. Config fields override
// the defaults only when the corresponding JSON keys are present.
type DetectRequest struct {
	UseNLI               *bool                  `json:"use_nli"`
	MinConfidence        *float64               `json:"min_confidence"`
	RequireEntityOverlap *bool                  `json:"require_entity_overlap"`
	MinNLIConfidence     *float64               `json:"min_nli_confidence"`
	Entities             map[string][]string    `json:"entities"`
	Timeline             []models.TimelineEvent `json:"timeline"`
}

func (req *DetectRequest) config() contradiction.Config {
	cfg := contradiction.DefaultConfig()
	if req.UseNLI != nil {
		cfg.UseNLI = *req.UseNLI
	}
	if req.MinConfidence != nil {
		cfg.MinConfidence = *req.MinConfidence
	}
	if req.RequireEntityOverlap != nil {
		cfg.RequireEntityOverlap = *req.RequireEntityOverlap
	}
	if req.MinNLIConfidence != nil {
		cfg.MinNLIConfidence = *req.MinNLIConfidence
	}
	return cfg
}

// handleDetect runs contradiction detection over a case's stored chunks
// and persists the result.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	var req DetectRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	accessors, err := s.caseAccessors(r, c)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch chunks")
		return
	}

	result, err := s.detector.Detect(r.Context(), c.CaseNumber, accessors, req.Entities, req.Timeline, req.config())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "detection failed")
		return
	}

	if err := s.contradictionRepo.SaveResult(r.Context(), c.ID, result); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save result")
		return
	}

	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entry := &storage.CustodyEntry{
		CaseID: c.ID,
		Action: "detect",
		Actor:  claims.Email,
	}
	if err := s.custodyRepo.Append(r.Context(), entry); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record custody entry")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleGetContradictions returns the stored findings from the last
// detection run for a case.
func (s *Server) handleGetContradictions(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	contradictions, err := s.contradictionRepo.GetByCaseID(r.Context(), c.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch contradictions")
		return
	}

	respondJSON(w, http.StatusOK, contradictions)
}

// handleVerifyDeterminism re-runs detection on identical input and
// reports whether all runs agreed.
func (s *Server) handleVerifyDeterminism(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	var req struct {
		Runs     int                 `json:"runs"`
		Entities map[string][]string `json:"entities"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Runs <= 0 {
		req.Runs = 10
	}

	accessors, err := s.caseAccessors(r, c)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch chunks")
		return
	}

	deterministic, err := s.detector.VerifyDeterminism(r.Context(), c.CaseNumber, accessors, req.Entities, req.Runs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "verification failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"deterministic": deterministic,
		"runs":          req.Runs,
	})
}

func (s *Server) caseAccessors(r *http.Request, c *storage.Case) ([]chunk.Accessor, error) {
	rows, err := s.chunkRepo.GetByCaseID(r.Context(), c.ID)
	if err != nil {
		return nil, err
	}

	accessors := make([]chunk.Accessor, 0, len(rows))
	for _, row := range rows {
		accessors = append(accessors, chunk.NewRecord(row.Model()))
	}
	return accessors, nil
}
