package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// CustodyEntry is one link in a case's append-only chain-of-custody log.
// EntryHash covers the previous entry's hash, so tampering with any stored
// entry breaks every later link.
type CustodyEntry struct {
	ID          uuid.UUID
	CaseID      uuid.UUID
	DocumentID  uuid.UUID
	Action      string
	Actor       string
	ContentHash string
	PrevHash    string
	EntryHash   string
	CreatedAt   time.Time
}

// CustodyRepository defines the interface for chain-of-custody operations
type CustodyRepository interface {
	Append(ctx context.Context, entry *CustodyEntry) error
	GetByCaseID(ctx context.Context, caseID uuid.UUID) ([]*CustodyEntry, error)
}

// PostgresCustodyRepository implements CustodyRepository using PostgreSQL
type PostgresCustodyRepository struct {
	db *sql.DB
}

// NewPostgresCustodyRepository creates a new PostgresCustodyRepository
func NewPostgresCustodyRepository(db *sql.DB) *PostgresCustodyRepository {
	return &PostgresCustodyRepository{db: db}
}

// Append links a new entry onto the case's custody chain and stores it.
// The entry's PrevHash and EntryHash are computed here; callers supply the
// action, actor, and content hash.
func (r *PostgresCustodyRepository) Append(ctx context.Context, entry *CustodyEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var prevHash string
	err = tx.QueryRowContext(ctx, `
		SELECT entry_hash
		FROM custody_log
		WHERE case_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, entry.CaseID).Scan(&prevHash)
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	entry.PrevHash = prevHash
	entry.EntryHash = hashEntry(entry)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO custody_log (id, case_id, document_id, action, actor, content_hash, prev_hash, entry_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		entry.ID,
		entry.CaseID,
		entry.DocumentID,
		entry.Action,
		entry.Actor,
		entry.ContentHash,
		entry.PrevHash,
		entry.EntryHash,
		entry.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetByCaseID retrieves a case's custody log in chain order
func (r *PostgresCustodyRepository) GetByCaseID(ctx context.Context, caseID uuid.UUID) ([]*CustodyEntry, error) {
	query := `
		SELECT id, case_id, document_id, action, actor, content_hash, prev_hash, entry_hash, created_at
		FROM custody_log
		WHERE case_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*CustodyEntry
	for rows.Next() {
		entry := &CustodyEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.CaseID,
			&entry.DocumentID,
			&entry.Action,
			&entry.Actor,
			&entry.ContentHash,
			&entry.PrevHash,
			&entry.EntryHash,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// VerifyChain recomputes every entry hash and checks the links. It returns
// the index of the first broken entry, or -1 when the chain is intact.
func VerifyChain(entries []*CustodyEntry) int {
	prevHash := ""
	for i, entry := range entries {
		if entry.PrevHash != prevHash {
			return i
		}
		if hashEntry(entry) != entry.EntryHash {
			return i
		}
		prevHash = entry.EntryHash
	}
	return -1
}

func hashEntry(entry *CustodyEntry) string {
	h := sha256.New()
	h.Write([]byte(entry.PrevHash))
	h.Write([]byte(entry.CaseID.String()))
	h.Write([]byte(entry.DocumentID.String()))
	h.Write([]byte(entry.Action))
	h.Write([]byte(entry.Actor))
	h.Write([]byte(entry.ContentHash))
	h.Write([]byte(entry.CreatedAt.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))
}
