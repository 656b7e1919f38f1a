package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/casetrace/evidence-analyzer/pkg/models"
)

// ContradictionRepository persists detection output for audit and display.
// Records are written once per run and never updated: flagged is the only
// lifecycle state a contradiction has.
type ContradictionRepository interface {
	SaveResult(ctx context.Context, caseID uuid.UUID, result models.ContradictionResult) error
	GetByCaseID(ctx context.Context, caseID uuid.UUID) ([]models.Contradiction, error)
	DeleteByCaseID(ctx context.Context, caseID uuid.UUID) error
}

// PostgresContradictionRepository implements ContradictionRepository using PostgreSQL
type PostgresContradictionRepository struct {
	db *sql.DB
}

// NewPostgresContradictionRepository creates a new PostgresContradictionRepository
func NewPostgresContradictionRepository(db *sql.DB) *PostgresContradictionRepository {
	return &PostgresContradictionRepository{db: db}
}

// SaveResult replaces the stored contradictions for a case with the given
// run's output. The full record is kept as JSON so chunk text and page
// ranges survive verbatim; key columns are duplicated for querying.
func (r *PostgresContradictionRepository) SaveResult(ctx context.Context, caseID uuid.UUID, result models.ContradictionResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contradictions WHERE case_id = $1`, caseID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contradictions (contradiction_id, case_id, seq, type, severity, confidence, record, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for seq, c := range result.Contradictions {
		record, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			c.ContradictionID,
			caseID,
			seq,
			string(c.Type),
			string(c.Severity),
			c.Confidence,
			record,
			now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByCaseID retrieves the stored contradictions for a case in their
// original run order. Ordering uses the numeric sequence column, not the
// identifier string, so runs past 9999 contradictions stay in order.
func (r *PostgresContradictionRepository) GetByCaseID(ctx context.Context, caseID uuid.UUID) ([]models.Contradiction, error) {
	query := `
		SELECT record
		FROM contradictions
		WHERE case_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contradictions := []models.Contradiction{}
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		var c models.Contradiction
		if err := json.Unmarshal(record, &c); err != nil {
			return nil, err
		}
		contradictions = append(contradictions, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return contradictions, nil
}

// DeleteByCaseID removes all stored contradictions for a case
func (r *PostgresContradictionRepository) DeleteByCaseID(ctx context.Context, caseID uuid.UUID) error {
	query := `DELETE FROM contradictions WHERE case_id = $1`
	_, err := r.db.ExecContext(ctx, query, caseID)
	return err
}
