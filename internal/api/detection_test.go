package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// caseRequest builds a request addressing the given case without any auth
// claims in its context.
func caseRequest(method, path string, caseID uuid.UUID, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("caseID", caseID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleDetectRejectsRequestWithoutClaims(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	s := NewServer(ServerConfig{DB: db})
	caseID := uuid.New()

	mock.ExpectQuery("SELECT id, owner_id, case_number, title").
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "case_number", "title", "created_at", "updated_at"}).
			AddRow(caseID, uuid.New(), "24-890-H", "Warehouse case", time.Now(), time.Now()))

	rec := httptest.NewRecorder()
	s.handleDetect(rec, caseRequest(http.MethodPost, "/api/v1/cases/"+caseID.String()+"/detect", caseID, ""))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestHandleUploadRejectsRequestWithoutClaims(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	s := NewServer(ServerConfig{DB: db})
	caseID := uuid.New()

	mock.ExpectQuery("SELECT id, owner_id, case_number, title").
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "case_number", "title", "created_at", "updated_at"}).
			AddRow(caseID, uuid.New(), "24-890-H", "Warehouse case", time.Now(), time.Now()))

	rec := httptest.NewRecorder()
	s.handleUpload(rec, caseRequest(http.MethodPost, "/api/v1/cases/"+caseID.String()+"/documents", caseID, ""))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}
