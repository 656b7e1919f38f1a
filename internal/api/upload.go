package api

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"path/filepath"

	"github.com/casetrace/evidence-analyzer/internal/auth"
	"github.com/casetrace/evidence-analyzer/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MB

// UploadResponse represents the response after evidence upload
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Hash       string `json:"hash"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
}

// handleUpload ingests an evidence file: store the document, append a
// custody entry, extract chunks, and embed them when a client is set.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Limit upload size
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	allowedExts := map[string]bool{".txt": true, ".md": true, ".log": true}
	if !allowedExts[ext] {
		respondError(w, http.StatusBadRequest, "only .txt, .md, and .log files are allowed")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	hash := sha256.Sum256(content)
	hashStr := hex.EncodeToString(hash[:])

	// Re-uploading identical evidence must not fork the custody chain.
	existingDoc, err := s.documentRepo.GetByHash(r.Context(), c.ID, hashStr)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check existing documents")
		return
	}

	if existingDoc != nil {
		respondJSON(w, http.StatusOK, UploadResponse{
			DocumentID: existingDoc.ID.String(),
			Filename:   existingDoc.Filename,
			Hash:       hashStr,
			Status:     "exists",
		})
		return
	}

	doc := &storage.Document{
		CaseID:      c.ID,
		Filename:    header.Filename,
		Content:     string(content),
		ContentHash: hashStr,
	}

	if err := s.documentRepo.Create(r.Context(), doc); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save document")
		return
	}

	entry := &storage.CustodyEntry{
		CaseID:      c.ID,
		DocumentID:  doc.ID,
		Action:      "upload",
		Actor:       claims.Email,
		ContentHash: hashStr,
	}
	if err := s.custodyRepo.Append(r.Context(), entry); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record custody entry")
		return
	}

	chunks := extractChunks(doc.Content, doc, c.CaseNumber)

	if len(chunks) > 0 {
		// Missing embeddings only disable similarity search, never ingest.
		_ = s.fillEmbeddings(r.Context(), chunks)

		if err := s.chunkRepo.CreateBatch(r.Context(), chunks); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to save chunks")
			return
		}
	}

	respondJSON(w, http.StatusCreated, UploadResponse{
		DocumentID: doc.ID.String(),
		Filename:   doc.Filename,
		Hash:       hashStr,
		Chunks:     len(chunks),
		Status:     "created",
	})
}

// handleListDocuments lists all evidence documents in a case
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	c := s.requestCase(w, r)
	if c == nil {
		return
	}

	docs, err := s.documentRepo.GetByCaseID(r.Context(), c.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch documents")
		return
	}

	type DocumentResponse struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		Hash     string `json:"hash"`
	}

	response := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		response = append(response, DocumentResponse{
			ID:       doc.ID.String(),
			Filename: doc.Filename,
			Hash:     doc.ContentHash,
		})
	}

	respondJSON(w, http.StatusOK, response)
}
