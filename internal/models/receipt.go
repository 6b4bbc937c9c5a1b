package models

import (
	"strconv"
	"strings"
)

// Source labels for extraction producers
const (
	SourcePrimary    = "primary"
	SourceDocumentAI = "document_ai"
	SourceVision     = "openai_vision"
)

// Entity is a single named field read from a receipt. Producers emit either
// the text or the value shape; Text() resolves both.
type Entity struct {
	Text       string  `json:"text,omitempty"`
	Value      string  `json:"value,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// TextValue returns the trimmed textual content of the entity, preferring
// the text shape over the value shape.
func (e Entity) TextValue() string {
	if t := strings.TrimSpace(e.Text); t != "" {
		return t
	}
	return strings.TrimSpace(e.Value)
}

// LineItem is one purchased item on a receipt.
type LineItem struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price,omitempty"`
	TotalPrice  float64 `json:"total_price,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// Amount returns the best available price for the item.
func (li LineItem) Amount() float64 {
	if li.TotalPrice != 0 {
		return li.TotalPrice
	}
	return li.UnitPrice
}

// RawExtraction is the producer-agnostic payload emitted by an OCR or
// Document AI engine. It is treated as immutable once handed to the merger.
type RawExtraction struct {
	Source           string             `json:"source"`
	RawText          string             `json:"raw_text"`
	Entities         map[string]Entity  `json:"entities,omitempty"`
	ConfidenceScores map[string]float64 `json:"confidence_scores,omitempty"`
	Totals           map[string]string  `json:"totals,omitempty"`  // total, subtotal, tax as numeric strings
	LineItems        []LineItem         `json:"line_items,omitempty"`
	RawFields        map[string]any     `json:"raw_fields,omitempty"` // producer debug payload, carried as-is
}

// ConsolidatedRecord is the merged view over one or more extractions. Each
// entity carries the source that won the merge and the resolved confidence
// lives in ConfidenceScores.
type ConsolidatedRecord struct {
	RawText          string             `json:"raw_text"`
	Entities         map[string]Entity  `json:"entities"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	Totals           map[string]string  `json:"totals"`
	LineItems        []LineItem         `json:"line_items"`
	RawFields        map[string]any     `json:"raw_fields,omitempty"`
}

// NewConsolidatedRecord returns an empty record with all containers allocated.
func NewConsolidatedRecord() *ConsolidatedRecord {
	return &ConsolidatedRecord{
		Entities:         make(map[string]Entity),
		ConfidenceScores: make(map[string]float64),
		Totals:           make(map[string]string),
		LineItems:        []LineItem{},
	}
}

// EntityText returns the resolved text for a named field, or "".
func (r *ConsolidatedRecord) EntityText(field string) string {
	if r == nil {
		return ""
	}
	if e, ok := r.Entities[field]; ok {
		return e.TextValue()
	}
	return ""
}

// TotalValue parses a totals entry (total, subtotal, tax) as a float.
// Comma separators are tolerated; unparseable values report ok=false.
func (r *ConsolidatedRecord) TotalValue(key string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	raw, ok := r.Totals[key]
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MappedReceipt is the canonical six-field business record (columns A-F of
// the expense ledger). Every field is always populated; empty string and
// zero are valid values, absence is not.
type MappedReceipt struct {
	Date          string  `json:"date"`           // A 日付, ISO YYYY-MM-DD
	StoreName     string  `json:"store_name"`     // B 店舗名
	TotalAmount   float64 `json:"total_amount"`   // C 金額
	InvoiceNumber string  `json:"invoice_number"` // D インボイス番号
	TaxCategory   string  `json:"tax_category"`   // E 税区分
	AccountTitle  string  `json:"account_title"`  // F 勘定科目
}

// ExcelColumns returns the receipt keyed by the ledger column headers.
func (m MappedReceipt) ExcelColumns() map[string]any {
	return map[string]any{
		"日付":       m.Date,
		"店舗名":      m.StoreName,
		"金額":       m.TotalAmount,
		"インボイス番号": m.InvoiceNumber,
		"税区分":      m.TaxCategory,
		"勘定科目":     m.AccountTitle,
	}
}
