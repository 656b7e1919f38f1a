package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestPostgresCustodyRepository_AppendFirstEntry(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresCustodyRepository(db)

	entry := &CustodyEntry{
		CaseID:      uuid.New(),
		DocumentID:  uuid.New(),
		Action:      "upload",
		Actor:       "d.cole",
		ContentHash: "abc123",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT entry_hash").
		WithArgs(entry.CaseID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO custody_log").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if entry.PrevHash != "" {
		t.Errorf("first entry must have empty prev hash, got %q", entry.PrevHash)
	}
	if entry.EntryHash == "" {
		t.Error("expected entry hash to be computed")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresCustodyRepository_AppendLinksToPrevious(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresCustodyRepository(db)

	entry := &CustodyEntry{
		CaseID:      uuid.New(),
		DocumentID:  uuid.New(),
		Action:      "detect",
		Actor:       "pipeline",
		ContentHash: "def456",
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT entry_hash").
		WithArgs(entry.CaseID).
		WillReturnRows(sqlmock.NewRows([]string{"entry_hash"}).AddRow("prior-hash"))
	mock.ExpectExec("INSERT INTO custody_log").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if entry.PrevHash != "prior-hash" {
		t.Errorf("expected link to previous entry, got %q", entry.PrevHash)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestVerifyChain(t *testing.T) {
	caseID := uuid.New()
	docID := uuid.New()

	build := func(action, prevHash string, at time.Time) *CustodyEntry {
		e := &CustodyEntry{
			ID:          uuid.New(),
			CaseID:      caseID,
			DocumentID:  docID,
			Action:      action,
			Actor:       "d.cole",
			ContentHash: "abc123",
			PrevHash:    prevHash,
			CreatedAt:   at,
		}
		e.EntryHash = hashEntry(e)
		return e
	}

	now := time.Now()
	first := build("upload", "", now)
	second := build("detect", first.EntryHash, now.Add(time.Minute))

	entries := []*CustodyEntry{first, second}
	if broken := VerifyChain(entries); broken != -1 {
		t.Fatalf("expected intact chain, broken at %d", broken)
	}

	// Tamper with the first entry's recorded action.
	first.Action = "delete"
	if broken := VerifyChain(entries); broken != 0 {
		t.Errorf("expected break at entry 0, got %d", broken)
	}
}
