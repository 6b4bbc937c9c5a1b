package merge

import (
	"strconv"
	"strings"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
)

// DefaultConfidenceMargin is how much higher an incoming confidence must be
// before it replaces a base value whose text is identical.
const DefaultConfidenceMargin = 0.05

// Merge folds an incoming extraction into an existing consolidated record.
// A nil base starts a fresh record. The inputs are never mutated and the
// merge never fails: malformed or missing fields simply contribute nothing.
//
// Replacement policy for a field present in both sources: the incoming value
// wins when the base has no text, when the incoming confidence clears the
// base confidence by at least margin, or when the confidences tie exactly
// and the texts differ (last writer wins on equal-confidence conflicts).
func Merge(base *models.ConsolidatedRecord, incoming models.RawExtraction, margin float64) *models.ConsolidatedRecord {
	result := cloneRecord(base)
	if result.RawText == "" {
		result.RawText = incoming.RawText
	}
	if result.RawFields == nil && incoming.RawFields != nil {
		result.RawFields = incoming.RawFields
	}

	mergeEntities(result, incoming, margin)
	mergeTotals(result.Totals, incoming.Totals)
	result.LineItems = mergeLineItems(result.LineItems, incoming.LineItems)
	result.RawText = mergeRawText(result.RawText, incoming.RawText)

	return result
}

func mergeEntities(result *models.ConsolidatedRecord, incoming models.RawExtraction, margin float64) {
	for field, candidate := range incoming.Entities {
		candidateText := candidate.TextValue()
		if candidateText == "" {
			continue
		}

		candidateConf := candidate.Confidence
		if explicit, ok := incoming.ConfidenceScores[field]; ok {
			candidateConf = explicit
		}
		currentConf := result.ConfidenceScores[field]
		currentText := result.EntityText(field)

		replace := currentText == ""
		if !replace {
			switch {
			case candidateConf >= currentConf+margin:
				replace = true
			case candidateConf >= currentConf && candidateText != currentText:
				replace = true
			}
		}

		if replace {
			result.Entities[field] = models.Entity{Text: candidateText, Source: incoming.Source}
			result.ConfidenceScores[field] = clamp01(candidateConf)
		}
	}
}

// mergeTotals keeps the larger parsed value when both sources disagree,
// since a larger total usually reflects a more complete read. A candidate
// that does not parse never replaces a valid numeric base.
func mergeTotals(base map[string]string, candidate map[string]string) {
	for _, key := range []string{"total", "subtotal", "tax"} {
		candidateValue, ok := candidate[key]
		if !ok || candidateValue == "" {
			continue
		}
		current, exists := base[key]
		if !exists || current == "" {
			base[key] = candidateValue
			continue
		}
		if candidateValue != current {
			base[key] = pickNumeric(current, candidateValue)
		}
	}
}

func mergeLineItems(base, candidate []models.LineItem) []models.LineItem {
	if len(candidate) == 0 {
		return base
	}
	if len(base) == 0 {
		return append([]models.LineItem{}, candidate...)
	}

	seen := make(map[string]bool, len(base))
	for _, item := range base {
		seen[lineItemSignature(item)] = true
	}
	for _, item := range candidate {
		sig := lineItemSignature(item)
		if seen[sig] {
			continue
		}
		base = append(base, item)
		seen[sig] = true
	}
	return base
}

// mergeRawText keeps every character from both sources: the secondary text
// is appended unless it is already contained in the primary.
func mergeRawText(primary, secondary string) string {
	if primary == "" {
		return secondary
	}
	if secondary == "" || strings.Contains(primary, secondary) {
		return primary
	}
	return primary + "\n" + secondary
}

func pickNumeric(current, candidate string) string {
	currentValue, err1 := parseAmount(current)
	candidateValue, err2 := parseAmount(candidate)
	if err2 != nil {
		return current
	}
	if err1 != nil {
		return candidate
	}
	if candidateValue >= currentValue {
		return candidate
	}
	return current
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
}

func lineItemSignature(item models.LineItem) string {
	description := strings.ToLower(strings.TrimSpace(item.Description))
	amount := strconv.FormatFloat(item.Amount(), 'f', -1, 64)
	return description + "|" + amount
}

func cloneRecord(base *models.ConsolidatedRecord) *models.ConsolidatedRecord {
	result := models.NewConsolidatedRecord()
	if base == nil {
		return result
	}
	result.RawText = base.RawText
	result.RawFields = base.RawFields
	for k, v := range base.Entities {
		result.Entities[k] = v
	}
	for k, v := range base.ConfidenceScores {
		result.ConfidenceScores[k] = v
	}
	for k, v := range base.Totals {
		result.Totals[k] = v
	}
	result.LineItems = append(result.LineItems, base.LineItems...)
	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
