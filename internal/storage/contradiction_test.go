package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/casetrace/evidence-analyzer/pkg/models"
)

func sampleResult() models.ContradictionResult {
	return models.ContradictionResult{
		CaseID: "24-890-H",
		Contradictions: []models.Contradiction{
			{
				ContradictionID: "CONT_24_890_H_0000",
				CaseID:          "24-890-H",
				Type:            models.TypeDenialVsAssertion,
				ChunkA:          models.ChunkReference{ChunkID: "chunk-a", CaseID: "24-890-H", Text: "I was at home."},
				ChunkB:          models.ChunkReference{ChunkID: "chunk-b", CaseID: "24-890-H", Text: "I saw Marcus at the scene."},
				Confidence:      0.91,
				Severity:        models.SeverityCritical,
				Explanation:     "One statement contains a denial while the other contains an assertion concerning Marcus.",
				Status:          models.StatusFlagged,
				SharedEntities:  []string{"Marcus"},
			},
		},
		TotalContradictions: 1,
		ChunksAnalyzed:      2,
		PairsCompared:       1,
	}
}

func TestPostgresContradictionRepository_SaveResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresContradictionRepository(db)
	caseID := uuid.New()
	result := sampleResult()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM contradictions").
		WithArgs(caseID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO contradictions")
	mock.ExpectExec("INSERT INTO contradictions").
		WithArgs(
			"CONT_24_890_H_0000",
			caseID,
			0,
			string(models.TypeDenialVsAssertion),
			string(models.SeverityCritical),
			0.91,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.SaveResult(context.Background(), caseID, result); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresContradictionRepository_SaveResultSequencesRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresContradictionRepository(db)
	caseID := uuid.New()

	result := sampleResult()
	second := result.Contradictions[0]
	second.ContradictionID = "CONT_24_890_H_0001"
	result.Contradictions = append(result.Contradictions, second)
	result.TotalContradictions = 2

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM contradictions").
		WithArgs(caseID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO contradictions")
	for seq, c := range result.Contradictions {
		mock.ExpectExec("INSERT INTO contradictions").
			WithArgs(
				c.ContradictionID,
				caseID,
				seq,
				string(c.Type),
				string(c.Severity),
				c.Confidence,
				sqlmock.AnyArg(),
				sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(int64(seq)+1, 1))
	}
	mock.ExpectCommit()

	if err := repo.SaveResult(context.Background(), caseID, result); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresContradictionRepository_GetByCaseID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresContradictionRepository(db)
	caseID := uuid.New()

	record := `{"contradiction_id":"CONT_24_890_H_0000","case_id":"24-890-H","type":"DENIAL_VS_ASSERTION","chunk_a":{"chunk_id":"chunk-a","case_id":"24-890-H","document_id":"","page_range":[0,0],"text":"I was at home."},"chunk_b":{"chunk_id":"chunk-b","case_id":"24-890-H","document_id":"","page_range":[0,0],"text":"I saw Marcus at the scene."},"confidence":0.91,"severity":"CRITICAL","explanation":"factual","status":"FLAGGED","shared_entities":["Marcus"]}`

	mock.ExpectQuery("SELECT record(?s:.*)ORDER BY seq ASC").
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{"record"}).AddRow([]byte(record)))

	contradictions, err := repo.GetByCaseID(context.Background(), caseID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(contradictions) != 1 {
		t.Fatalf("expected 1 contradiction, got %d", len(contradictions))
	}
	c := contradictions[0]
	if c.ContradictionID != "CONT_24_890_H_0000" {
		t.Errorf("unexpected id %s", c.ContradictionID)
	}
	if c.Status != models.StatusFlagged {
		t.Errorf("expected FLAGGED, got %s", c.Status)
	}
	if c.ChunkA.Text == "" || c.ChunkB.Text == "" {
		t.Error("stored records must retain literal chunk text")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresContradictionRepository_GetByCaseIDKeepsRunOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresContradictionRepository(db)
	caseID := uuid.New()

	// Sequence positions 9999 and 10000: the identifier strings sort the
	// other way lexicographically, so ordering must come from seq.
	first := `{"contradiction_id":"CONT_24_890_H_9999","case_id":"24-890-H","type":"TIME_CONFLICT","confidence":0.7,"severity":"MEDIUM","status":"FLAGGED"}`
	second := `{"contradiction_id":"CONT_24_890_H_10000","case_id":"24-890-H","type":"TIME_CONFLICT","confidence":0.7,"severity":"MEDIUM","status":"FLAGGED"}`

	mock.ExpectQuery("SELECT record(?s:.*)ORDER BY seq ASC").
		WithArgs(caseID).
		WillReturnRows(sqlmock.NewRows([]string{"record"}).
			AddRow([]byte(first)).
			AddRow([]byte(second)))

	contradictions, err := repo.GetByCaseID(context.Background(), caseID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(contradictions) != 2 {
		t.Fatalf("expected 2 contradictions, got %d", len(contradictions))
	}
	if contradictions[0].ContradictionID != "CONT_24_890_H_9999" ||
		contradictions[1].ContradictionID != "CONT_24_890_H_10000" {
		t.Errorf("run order not preserved: got %s, %s",
			contradictions[0].ContradictionID, contradictions[1].ContradictionID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
