package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/casetrace/evidence-analyzer/pkg/models"
)

// Chunk represents an extracted evidence chunk. CaseNumber duplicates the
// owning case's external identifier so detection runs address chunks the
// way upstream and downstream systems do, without a join.
type Chunk struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	CaseID     uuid.UUID
	CaseNumber string
	PageStart  int
	PageEnd    int
	Speaker    string
	Text       string
	Confidence float64
	Embedding  pgvector.Vector
	CreatedAt  time.Time
}

// Model projects the stored row into the detection input record.
func (c *Chunk) Model() models.Chunk {
	return models.Chunk{
		ChunkID:    c.ID.String(),
		CaseID:     c.CaseNumber,
		DocumentID: c.DocumentID.String(),
		PageRange:  [2]int{c.PageStart, c.PageEnd},
		Speaker:    c.Speaker,
		Text:       c.Text,
		Confidence: c.Confidence,
	}
}

// ChunkRepository defines the interface for chunk storage operations
type ChunkRepository interface {
	CreateBatch(ctx context.Context, chunks []*Chunk) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chunk, error)
	GetByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*Chunk, error)
	GetByCaseID(ctx context.Context, caseID uuid.UUID) ([]*Chunk, error)
	FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int, threshold float64) ([]*ChunkWithSimilarity, error)
	DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error
}

// ChunkWithSimilarity represents a chunk with its similarity score
type ChunkWithSimilarity struct {
	Chunk      *Chunk
	Similarity float64
}

// PostgresChunkRepository implements ChunkRepository using PostgreSQL with pgvector
type PostgresChunkRepository struct {
	db *sql.DB
}

// NewPostgresChunkRepository creates a new PostgresChunkRepository
func NewPostgresChunkRepository(db *sql.DB) *PostgresChunkRepository {
	return &PostgresChunkRepository{db: db}
}

// CreateBatch inserts multiple chunks in a single transaction
func (r *PostgresChunkRepository) CreateBatch(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, case_id, case_number, page_start, page_end, speaker, text, confidence, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, c := range chunks {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			c.ID,
			c.DocumentID,
			c.CaseID,
			c.CaseNumber,
			c.PageStart,
			c.PageEnd,
			c.Speaker,
			c.Text,
			c.Confidence,
			c.Embedding,
			c.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a chunk by its ID
func (r *PostgresChunkRepository) GetByID(ctx context.Context, id uuid.UUID) (*Chunk, error) {
	query := `
		SELECT id, document_id, case_id, case_number, page_start, page_end, speaker, text, confidence, embedding, created_at
		FROM chunks
		WHERE id = $1
	`

	c := &Chunk{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.DocumentID,
		&c.CaseID,
		&c.CaseNumber,
		&c.PageStart,
		&c.PageEnd,
		&c.Speaker,
		&c.Text,
		&c.Confidence,
		&c.Embedding,
		&c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// GetByDocumentID retrieves all chunks for a specific document
func (r *PostgresChunkRepository) GetByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*Chunk, error) {
	query := `
		SELECT id, document_id, case_id, case_number, page_start, page_end, speaker, text, confidence, embedding, created_at
		FROM chunks
		WHERE document_id = $1
		ORDER BY page_start ASC, id ASC
	`

	return r.queryChunks(ctx, query, documentID)
}

// GetByCaseID retrieves all chunks belonging to a case
func (r *PostgresChunkRepository) GetByCaseID(ctx context.Context, caseID uuid.UUID) ([]*Chunk, error) {
	query := `
		SELECT id, document_id, case_id, case_number, page_start, page_end, speaker, text, confidence, embedding, created_at
		FROM chunks
		WHERE case_id = $1
		ORDER BY id ASC
	`

	return r.queryChunks(ctx, query, caseID)
}

// FindSimilar retrieves the chunks closest to the given embedding using
// cosine distance
func (r *PostgresChunkRepository) FindSimilar(ctx context.Context, embedding pgvector.Vector, limit int, threshold float64) ([]*ChunkWithSimilarity, error) {
	query := `
		SELECT id, document_id, case_id, case_number, page_start, page_end, speaker, text, confidence, embedding, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM chunks
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, embedding, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*ChunkWithSimilarity
	for rows.Next() {
		c := &Chunk{}
		var similarity float64
		err := rows.Scan(
			&c.ID,
			&c.DocumentID,
			&c.CaseID,
			&c.CaseNumber,
			&c.PageStart,
			&c.PageEnd,
			&c.Speaker,
			&c.Text,
			&c.Confidence,
			&c.Embedding,
			&c.CreatedAt,
			&similarity,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &ChunkWithSimilarity{Chunk: c, Similarity: similarity})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// DeleteByDocumentID removes all chunks for a document
func (r *PostgresChunkRepository) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	query := `DELETE FROM chunks WHERE document_id = $1`
	_, err := r.db.ExecContext(ctx, query, documentID)
	return err
}

func (r *PostgresChunkRepository) queryChunks(ctx context.Context, query string, arg any) ([]*Chunk, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*Chunk
	for rows.Next() {
		c := &Chunk{}
		err := rows.Scan(
			&c.ID,
			&c.DocumentID,
			&c.CaseID,
			&c.CaseNumber,
			&c.PageStart,
			&c.PageEnd,
			&c.Speaker,
			&c.Text,
			&c.Confidence,
			&c.Embedding,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return chunks, nil
}
