// Package draft persists processed receipts awaiting human review.
package draft

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
)

// ErrDraftImmutable is returned when a SENT draft is modified or re-sent.
var ErrDraftImmutable = fmt.Errorf("draft already sent and is immutable")

// ErrDraftNotFound is returned when a draft ID does not exist.
var ErrDraftNotFound = fmt.Errorf("draft not found")

// Store handles draft receipt database operations.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore creates a new draft store.
func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Save creates a draft, or updates it while its status is still DRAFT.
// A missing ID gets a fresh one. Saving a SENT draft fails.
func (s *Store) Save(d *models.DraftReceipt) error {
	now := time.Now().UTC()

	if d.ID == "" {
		d.ID = uuid.NewString()
		d.Status = models.DraftStatusDraft
		d.CreatedAt = now
		d.UpdatedAt = now

		query := `
			INSERT INTO draft_receipts (id, payload, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(query, d.ID, d.Payload, d.Status, d.CreatedAt, d.UpdatedAt); err != nil {
			s.logger.Error("Failed to create draft", zap.Error(err))
			return fmt.Errorf("failed to create draft: %w", err)
		}
		return nil
	}

	existing, err := s.Get(d.ID)
	if err != nil {
		return err
	}
	if !existing.Editable() {
		return ErrDraftImmutable
	}

	d.Status = models.DraftStatusDraft
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = now

	query := `
		UPDATE draft_receipts
		SET payload = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	if _, err := s.db.Exec(query, d.Payload, d.UpdatedAt, d.ID, models.DraftStatusDraft); err != nil {
		s.logger.Error("Failed to update draft", zap.Error(err))
		return fmt.Errorf("failed to update draft: %w", err)
	}
	return nil
}

// Get retrieves a draft by ID.
func (s *Store) Get(id string) (*models.DraftReceipt, error) {
	query := `
		SELECT id, payload, status, created_at, updated_at, sent_at
		FROM draft_receipts
		WHERE id = ?
	`

	var d models.DraftReceipt
	var sentAt sql.NullTime
	err := s.db.QueryRow(query, id).Scan(&d.ID, &d.Payload, &d.Status, &d.CreatedAt, &d.UpdatedAt, &sentAt)
	if err == sql.ErrNoRows {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get draft", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if sentAt.Valid {
		d.SentAt = &sentAt.Time
	}
	return &d, nil
}

// List returns drafts filtered by status; an empty status returns all,
// newest first.
func (s *Store) List(status string) ([]*models.DraftReceipt, error) {
	query := `
		SELECT id, payload, status, created_at, updated_at, sent_at
		FROM draft_receipts
	`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logger.Error("Failed to list drafts", zap.Error(err))
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*models.DraftReceipt
	for rows.Next() {
		var d models.DraftReceipt
		var sentAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.Payload, &d.Status, &d.CreatedAt, &d.UpdatedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		if sentAt.Valid {
			d.SentAt = &sentAt.Time
		}
		drafts = append(drafts, &d)
	}
	return drafts, rows.Err()
}

// Send transitions a draft from DRAFT to SENT. SENT is terminal: a second
// send of the same draft fails with ErrDraftImmutable.
func (s *Store) Send(tx *sql.Tx, id string) (*models.DraftReceipt, error) {
	d, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if d.Status == models.DraftStatusSent {
		return nil, ErrDraftImmutable
	}

	now := time.Now().UTC()
	query := `
		UPDATE draft_receipts
		SET status = ?, sent_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	var result sql.Result
	if tx != nil {
		result, err = tx.Exec(query, models.DraftStatusSent, now, now, id, models.DraftStatusDraft)
	} else {
		result, err = s.db.Exec(query, models.DraftStatusSent, now, now, id, models.DraftStatusDraft)
	}
	if err != nil {
		s.logger.Error("Failed to send draft", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to send draft: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check send result: %w", err)
	}
	if affected == 0 {
		// lost a race with another send
		return nil, ErrDraftImmutable
	}

	d.Status = models.DraftStatusSent
	d.SentAt = &now
	d.UpdatedAt = now

	s.logger.Info("Draft sent", zap.String("id", id))
	return d, nil
}
