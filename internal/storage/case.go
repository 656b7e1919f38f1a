package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Case represents an investigation case in the system
type Case struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	CaseNumber string
	Title      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CaseRepository defines the interface for case storage operations
type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Case, error)
	Update(ctx context.Context, c *Case) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresCaseRepository implements CaseRepository using PostgreSQL
type PostgresCaseRepository struct {
	db *sql.DB
}

// NewPostgresCaseRepository creates a new PostgresCaseRepository
func NewPostgresCaseRepository(db *sql.DB) *PostgresCaseRepository {
	return &PostgresCaseRepository{db: db}
}

// Create inserts a new case into the database
func (r *PostgresCaseRepository) Create(ctx context.Context, c *Case) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	query := `
		INSERT INTO cases (id, owner_id, case_number, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.OwnerID,
		c.CaseNumber,
		c.Title,
		c.CreatedAt,
		c.UpdatedAt,
	)

	return err
}

// GetByID retrieves a case by its ID
func (r *PostgresCaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*Case, error) {
	query := `
		SELECT id, owner_id, case_number, title, created_at, updated_at
		FROM cases
		WHERE id = $1
	`

	c := &Case{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.OwnerID,
		&c.CaseNumber,
		&c.Title,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// GetByOwnerID retrieves all cases owned by a specific user
func (r *PostgresCaseRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Case, error) {
	query := `
		SELECT id, owner_id, case_number, title, created_at, updated_at
		FROM cases
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []*Case
	for rows.Next() {
		c := &Case{}
		err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.CaseNumber,
			&c.Title,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return cases, nil
}

// Update modifies an existing case
func (r *PostgresCaseRepository) Update(ctx context.Context, c *Case) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE cases
		SET case_number = $2, title = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.CaseNumber,
		c.Title,
		c.UpdatedAt,
	)

	return err
}

// Delete removes a case from the database
func (r *PostgresCaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cases WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
