package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/casetrace/evidence-analyzer/internal/auth"
	"github.com/casetrace/evidence-analyzer/internal/storage"
)

// CaseResponse represents a case in API responses
type CaseResponse struct {
	ID         string `json:"id"`
	CaseNumber string `json:"case_number"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at"`
}

func caseResponse(c *storage.Case) CaseResponse {
	return CaseResponse{
		ID:         c.ID.String(),
		CaseNumber: c.CaseNumber,
		Title:      c.Title,
		CreatedAt:  c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// requestCase resolves the caseID URL parameter and enforces ownership.
// It writes the error response itself and returns nil when the request
// cannot proceed.
func (s *Server) requestCase(w http.ResponseWriter, r *http.Request) *storage.Case {
	caseID := chi.URLParam(r, "caseID")
	if caseID == "" {
		respondError(w, http.StatusBadRequest, "case id is required")
		return nil
	}

	id, err := uuid.Parse(caseID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid case id")
		return nil
	}

	c, err := s.caseRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch case")
		return nil
	}
	if c == nil {
		respondError(w, http.StatusNotFound, "case not found")
		return nil
	}

	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok || c.OwnerID.String() != claims.UserID {
		respondError(w, http.StatusForbidden, "access denied")
		return nil
	}

	return c
}

func (s *Server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CaseNumber string `json:"case_number"`
		Title      string `json:"title"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CaseNumber == "" {
		respondError(w, http.StatusBadRequest, "case number is required")
		return
	}

	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ownerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	c := &storage.Case{
		OwnerID:    ownerID,
		CaseNumber: req.CaseNumber,
		Title:      req.Title,
	}

	if err := s.caseRepo.Create(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create case")
		return
	}

	respondJSON(w, http.StatusCreated, caseResponse(c))
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ownerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cases, err := s.caseRepo.GetByOwnerID(r.Context(), ownerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch cases")
		return
	}

	response := make([]CaseResponse, 0, len(cases))
	for _, c := range cases {
		response = append(response, caseResponse(c))
	}

	respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	respondJSON(w, http.StatusOK, caseResponse(c))
}

func (s *Server) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The case number is the external identifier contradiction IDs are
	// derived from, so it is not editable.
	c.Title = req.Title
	if err := s.caseRepo.Update(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update case")
		return
	}

	respondJSON(w, http.StatusOK, caseResponse(c))
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	// Documents and their chunks go first so no orphaned evidence remains.
	docs, err := s.documentRepo.GetByCaseID(r.Context(), c.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch documents")
		return
	}
	for _, doc := range docs {
		if err := s.chunkRepo.DeleteByDocumentID(r.Context(), doc.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to delete chunks")
			return
		}
		if err := s.documentRepo.Delete(r.Context(), doc.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to delete document")
			return
		}
	}

	if err := s.contradictionRepo.DeleteByCaseID(r.Context(), c.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete contradictions")
		return
	}

	if err := s.caseRepo.Delete(r.Context(), c.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete case")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListChunks(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	chunks, err := s.chunkRepo.GetByCaseID(r.Context(), c.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch chunks")
		return
	}

	response := make([]any, 0, len(chunks))
	for _, row := range chunks {
		response = append(response, row.Model())
	}

	respondJSON(w, http.StatusOK, response)
}

// handleFindSimilarChunks embeds the query text and returns the nearest
// stored chunks by cosine distance. Requires an embedding client.
func (s *Server) handleFindSimilarChunks(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	if s.embedder == nil {
		respondError(w, http.StatusServiceUnavailable, "similarity search requires an embedding client")
		return
	}

	var req struct {
		Text      string  `json:"text"`
		Limit     int     `json:"limit"`
		Threshold float64 `json:"threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Threshold <= 0 {
		req.Threshold = 0.7
	}

	vectors, err := s.embedder.EmbedTexts(r.Context(), []string{req.Text})
	if err != nil || len(vectors) != 1 {
		respondError(w, http.StatusInternalServerError, "failed to embed query")
		return
	}

	matches, err := s.chunkRepo.FindSimilar(r.Context(), pgvector.NewVector(vectors[0]), req.Limit, req.Threshold)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	type similarChunkResponse struct {
		Chunk      any     `json:"chunk"`
		Similarity float64 `json:"similarity"`
	}

	response := make([]similarChunkResponse, 0, len(matches))
	for _, m := range matches {
		// Results never cross case boundaries.
		if m.Chunk.CaseID != c.ID {
			continue
		}
		response = append(response, similarChunkResponse{
			Chunk:      m.Chunk.Model(),
			Similarity: m.Similarity,
		})
	}

	respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetCustodyLog(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	entries, err := s.custodyRepo.GetByCaseID(r.Context(), c.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch custody log")
		return
	}

	type custodyEntryResponse struct {
		ID          string `json:"id"`
		DocumentID  string `json:"document_id"`
		Action      string `json:"action"`
		Actor       string `json:"actor"`
		ContentHash string `json:"content_hash"`
		PrevHash    string `json:"prev_hash"`
		EntryHash   string `json:"entry_hash"`
		CreatedAt   string `json:"created_at"`
	}

	response := struct {
		Entries []custodyEntryResponse `json:"entries"`
		Intact  bool                   `json:"intact"`
	}{
		Entries: make([]custodyEntryResponse, 0, len(entries)),
		Intact:  storage.VerifyChain(entries) == -1,
	}
	for _, e := range entries {
		response.Entries = append(response.Entries, custodyEntryResponse{
			ID:          e.ID.String(),
			DocumentID:  e.DocumentID.String(),
			Action:      e.Action,
			Actor:       e.Actor,
			ContentHash: e.ContentHash,
			PrevHash:    e.PrevHash,
			EntryHash:   e.EntryHash,
			CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(w, http.StatusOK, response)
}
