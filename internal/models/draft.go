package models

import "time"

// Draft lifecycle states. DRAFT is editable; SENT is terminal and immutable.
const (
	DraftStatusDraft = "DRAFT"
	DraftStatusSent  = "SENT"
)

// DraftReceipt wraps a processed receipt payload with draft/send state for
// the human-review workflow. Save keeps the status at DRAFT; the bulk send
// operation transitions DRAFT to SENT, writes the ledger row, and freezes
// the record.
type DraftReceipt struct {
	ID        string     `json:"draft_id"`
	Payload   string     `json:"payload"` // ProcessedReceipt as JSON
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// Editable reports whether the draft may still be modified.
func (d *DraftReceipt) Editable() bool {
	return d.Status == DraftStatusDraft
}
