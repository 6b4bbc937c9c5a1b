package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
)

func extraction(source string) models.RawExtraction {
	return models.RawExtraction{
		Source:           source,
		Entities:         map[string]models.Entity{},
		ConfidenceScores: map[string]float64{},
		Totals:           map[string]string{},
	}
}

func TestMergeFromNilBase(t *testing.T) {
	incoming := extraction(models.SourceDocumentAI)
	incoming.RawText = "ファミリーマート 合計 1000円"
	incoming.Entities["vendor"] = models.Entity{Text: "ファミリーマート", Confidence: 0.8}
	incoming.Totals["total"] = "1000"

	result := Merge(nil, incoming, DefaultConfidenceMargin)

	require.NotNil(t, result)
	assert.Equal(t, "ファミリーマート", result.EntityText("vendor"))
	assert.Equal(t, 0.8, result.ConfidenceScores["vendor"])
	assert.Equal(t, "1000", result.Totals["total"])
	assert.Equal(t, "ファミリーマート 合計 1000円", result.RawText)
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := Merge(nil, func() models.RawExtraction {
		e := extraction(models.SourceDocumentAI)
		e.Entities["vendor"] = models.Entity{Text: "セブンイレブン", Confidence: 0.5}
		return e
	}(), DefaultConfidenceMargin)

	incoming := extraction(models.SourceVision)
	incoming.Entities["vendor"] = models.Entity{Text: "ローソン", Confidence: 0.9}

	result := Merge(base, incoming, DefaultConfidenceMargin)

	assert.Equal(t, "セブンイレブン", base.EntityText("vendor"), "base must stay unchanged")
	assert.Equal(t, "ローソン", result.EntityText("vendor"))
}

func TestMergeEntityReplacement(t *testing.T) {
	tests := []struct {
		name         string
		baseText     string
		baseConf     float64
		incomingText string
		incomingConf float64
		wantText     string
		wantConf     float64
	}{
		{
			name:         "clears margin with identical text",
			baseText:     "イオン", baseConf: 0.8,
			incomingText: "イオン", incomingConf: 0.9,
			wantText: "イオン", wantConf: 0.9,
		},
		{
			name:         "within margin and identical text keeps base",
			baseText:     "イオン", baseConf: 0.8,
			incomingText: "イオン", incomingConf: 0.84,
			wantText: "イオン", wantConf: 0.8,
		},
		{
			name:         "within margin but different text replaces",
			baseText:     "イオン", baseConf: 0.8,
			incomingText: "イオンモール", incomingConf: 0.84,
			wantText: "イオンモール", wantConf: 0.84,
		},
		{
			name:         "equal confidence with different text replaces",
			baseText:     "イオン", baseConf: 0.8,
			incomingText: "イオンモール", incomingConf: 0.8,
			wantText: "イオンモール", wantConf: 0.8,
		},
		{
			name:         "lower confidence never replaces",
			baseText:     "イオン", baseConf: 0.8,
			incomingText: "イオンモール", incomingConf: 0.7,
			wantText: "イオン", wantConf: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := extraction(models.SourceDocumentAI)
			first.Entities["vendor"] = models.Entity{Text: tt.baseText, Confidence: tt.baseConf}
			base := Merge(nil, first, DefaultConfidenceMargin)

			second := extraction(models.SourceVision)
			second.Entities["vendor"] = models.Entity{Text: tt.incomingText, Confidence: tt.incomingConf}
			result := Merge(base, second, DefaultConfidenceMargin)

			assert.Equal(t, tt.wantText, result.EntityText("vendor"))
			assert.InDelta(t, tt.wantConf, result.ConfidenceScores["vendor"], 1e-9)
		})
	}
}

func TestMergeExplicitConfidenceScoreWins(t *testing.T) {
	first := extraction(models.SourceDocumentAI)
	first.Entities["date"] = models.Entity{Text: "2024-10-15", Confidence: 0.9}
	base := Merge(nil, first, DefaultConfidenceMargin)

	// the confidence_scores map overrides the entity-level confidence
	second := extraction(models.SourceVision)
	second.Entities["date"] = models.Entity{Text: "2024-10-16", Confidence: 0.1}
	second.ConfidenceScores["date"] = 0.99

	result := Merge(base, second, DefaultConfidenceMargin)
	assert.Equal(t, "2024-10-16", result.EntityText("date"))
	assert.Equal(t, 0.99, result.ConfidenceScores["date"])
}

func TestMergeTotalsKeepsLargerNumeric(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		candidate string
		want      string
	}{
		{"candidate larger", "1000", "1,200", "1,200"},
		{"candidate smaller", "1200", "1000", "1200"},
		{"equal values keep candidate formatting", "1200", "1,200", "1,200"},
		{"unparseable candidate keeps base", "1000", "不明", "1000"},
		{"unparseable base takes candidate", "不明", "1000", "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := extraction(models.SourceDocumentAI)
			first.Totals["total"] = tt.base
			base := Merge(nil, first, DefaultConfidenceMargin)

			second := extraction(models.SourceVision)
			second.Totals["total"] = tt.candidate

			result := Merge(base, second, DefaultConfidenceMargin)
			assert.Equal(t, tt.want, result.Totals["total"])
		})
	}
}

func TestMergeLineItemDedupe(t *testing.T) {
	first := extraction(models.SourceDocumentAI)
	first.LineItems = []models.LineItem{
		{Description: "おにぎり", TotalPrice: 120},
		{Description: "お茶", TotalPrice: 150},
	}
	base := Merge(nil, first, DefaultConfidenceMargin)

	second := extraction(models.SourceVision)
	second.LineItems = []models.LineItem{
		{Description: "おにぎり", TotalPrice: 120}, // duplicate
		{Description: "ONIGIRI", TotalPrice: 120},  // case differs, amount same, but text differs
		{Description: "パン", TotalPrice: 200},
	}

	result := Merge(base, second, DefaultConfidenceMargin)
	require.Len(t, result.LineItems, 4)
	assert.Equal(t, "おにぎり", result.LineItems[0].Description)
	assert.Equal(t, "パン", result.LineItems[3].Description)
}

func TestMergeLineItemDedupeIsCaseInsensitive(t *testing.T) {
	first := extraction(models.SourceDocumentAI)
	first.LineItems = []models.LineItem{{Description: "Coffee", TotalPrice: 300}}
	base := Merge(nil, first, DefaultConfidenceMargin)

	second := extraction(models.SourceVision)
	second.LineItems = []models.LineItem{{Description: "coffee", TotalPrice: 300}}

	result := Merge(base, second, DefaultConfidenceMargin)
	assert.Len(t, result.LineItems, 1)
}

func TestMergeRawText(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		incoming  string
		want      string
	}{
		{"appends new text", "合計 1000円", "登録番号 T1234567890123", "合計 1000円\n登録番号 T1234567890123"},
		{"skips contained text", "合計 1000円 税込", "税込", "合計 1000円 税込"},
		{"empty incoming keeps base", "合計 1000円", "", "合計 1000円"},
		{"empty base takes incoming", "", "合計 1000円", "合計 1000円"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := extraction(models.SourceDocumentAI)
			first.RawText = tt.base
			base := Merge(nil, first, DefaultConfidenceMargin)

			second := extraction(models.SourceVision)
			second.RawText = tt.incoming

			result := Merge(base, second, DefaultConfidenceMargin)
			assert.Equal(t, tt.want, result.RawText)
		})
	}
}
