package categorize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CategoryDetail is one categorization hypothesis in API/export form.
type CategoryDetail struct {
	Category          string   `json:"category"`
	CategoryEnglish   string   `json:"category_english"`
	Confidence        float64  `json:"confidence"`
	Color             string   `json:"color"`
	Icon              string   `json:"icon"`
	TaxClassification string   `json:"tax_classification"`
	MatchedKeywords   []string `json:"matched_keywords"`
}

// CategorizationSummary aggregates the match list for reviewers.
type CategorizationSummary struct {
	TotalMatches          int  `json:"total_matches"`
	HighConfidenceMatches int  `json:"high_confidence_matches"`
	HasTaxInfo            bool `json:"has_tax_info"`
	VendorMatched         bool `json:"vendor_matched"`
}

// WorkflowData carries the approval-routing metadata derived from a receipt.
type WorkflowData struct {
	BusinessUnit              string `json:"business_unit"`
	ApprovalLevel             string `json:"approval_level"`
	JournalEntryCode          string `json:"journal_entry_code"`
	RequiresReceiptAttachment bool   `json:"requires_receipt_attachment"`
	ProcessingNotes           string `json:"processing_notes"`
}

// CategorizationResult is the full categorization payload for one receipt.
type CategorizationResult struct {
	PrimaryCategory CategoryDetail        `json:"primary_category"`
	AllCategories   []CategoryDetail      `json:"all_categories"`
	Summary         CategorizationSummary `json:"categorization_summary"`
	Workflow        WorkflowData          `json:"workflow_data"`
}

// Categorizer wraps the engine with the workflow rules (business unit,
// approval tier, journal code, notes) and the guaranteed-result contract:
// Categorize always returns a well-formed result, never an error.
type Categorizer struct {
	engine *Engine
	logger *zap.Logger
}

// NewCategorizer creates a categorizer with a fresh engine.
func NewCategorizer(logger *zap.Logger) *Categorizer {
	return &Categorizer{
		engine: NewEngine(),
		logger: logger,
	}
}

// businessUnitKeywords routes receipts to company units by text content.
var businessUnitKeywords = []struct {
	unit     string
	keywords []string
}{
	{"本社", []string{"本社", "東京", "hq", "headquarters"}},
	{"営業部", []string{"営業", "sales", "商談", "クライアント"}},
	{"製造部", []string{"製造", "工場", "production", "材料"}},
	{"技術部", []string{"技術", "開発", "r&d", "research"}},
	{"管理部", []string{"管理", "admin", "人事", "総務"}},
}

// Categorize classifies a receipt and derives its workflow metadata. Any
// panic inside rule evaluation is converted into the low-confidence Other
// fallback so callers always receive a usable record.
func (c *Categorizer) Categorize(rawText, vendor string, totalAmount float64) (result CategorizationResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("categorization failed, using fallback",
				zap.Any("panic", r),
				zap.String("vendor", vendor))
			result = errorFallbackResult()
		}
	}()

	matches := c.engine.CategorizeReceipt(rawText, vendor, totalAmount)
	if len(matches) == 0 {
		matches = []CategoryMatch{{
			Category:          CategoryOther,
			Confidence:        0.3,
			MatchedKeywords:   []string{"未分類"},
			TaxClassification: TaxUnknown,
		}}
	}

	primary := matches[0]

	topN := matches
	if len(topN) > 3 {
		topN = topN[:3]
	}
	all := make([]CategoryDetail, 0, len(topN))
	for _, m := range topN {
		all = append(all, toDetail(m))
	}

	highConfidence := 0
	hasTaxInfo := false
	for _, m := range matches {
		if m.Confidence > 0.7 {
			highConfidence++
		}
		if m.TaxClassification != TaxUnknown {
			hasTaxInfo = true
		}
	}

	result = CategorizationResult{
		PrimaryCategory: toDetail(primary),
		AllCategories:   all,
		Summary: CategorizationSummary{
			TotalMatches:          len(matches),
			HighConfidenceMatches: highConfidence,
			HasTaxInfo:            hasTaxInfo,
			VendorMatched:         strings.TrimSpace(vendor) != "",
		},
		Workflow: WorkflowData{
			BusinessUnit:              determineBusinessUnit(rawText),
			ApprovalLevel:             DetermineApprovalLevel(totalAmount),
			JournalEntryCode:          primary.Category.JournalCode(),
			RequiresReceiptAttachment: true,
			ProcessingNotes:           buildProcessingNotes(matches, rawText),
		},
	}

	c.logger.Info("categorized receipt",
		zap.String("category", string(primary.Category)),
		zap.Float64("confidence", primary.Confidence))

	return result
}

func toDetail(m CategoryMatch) CategoryDetail {
	info := m.Category.Info()
	return CategoryDetail{
		Category:          string(m.Category),
		CategoryEnglish:   info.EnglishName,
		Confidence:        m.Confidence,
		Color:             info.Color,
		Icon:              info.Icon,
		TaxClassification: string(m.TaxClassification),
		MatchedKeywords:   m.MatchedKeywords,
	}
}

func determineBusinessUnit(text string) string {
	textLower := strings.ToLower(text)
	for _, entry := range businessUnitKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(textLower, keyword) {
				return entry.unit
			}
		}
	}
	return "一般"
}

// DetermineApprovalLevel maps an amount to the required approval tier.
func DetermineApprovalLevel(amount float64) string {
	switch {
	case amount >= 100000:
		return "取締役承認"
	case amount >= 50000:
		return "部長承認"
	case amount >= 10000:
		return "課長承認"
	default:
		return "担当者処理"
	}
}

func buildProcessingNotes(matches []CategoryMatch, rawText string) string {
	var notes []string

	if len(matches) == 0 {
		notes = append(notes, "自動分類できませんでした。")
	} else if matches[0].Confidence < 0.5 {
		notes = append(notes, "分類の信頼度が低いため、確認が必要です。")
	}

	if len(matches) > 1 && matches[1].Confidence > 0.4 {
		notes = append(notes, fmt.Sprintf("複数カテゴリの可能性: %s", matches[1].Category))
	}

	if !strings.Contains(rawText, "レシート") && !strings.Contains(rawText, "領収書") {
		notes = append(notes, "正式な領収書ではない可能性があります。")
	}

	hasTax := false
	for _, m := range matches {
		if m.TaxClassification != TaxUnknown {
			hasTax = true
			break
		}
	}
	if !hasTax {
		notes = append(notes, "税区分情報が不明です。")
	}

	if len(notes) == 0 {
		return "正常に処理されました。"
	}
	return strings.Join(notes, " ")
}

// errorFallbackResult is returned when categorization panics: a minimal
// Other record at confidence 0.1 that flags the receipt for manual review.
func errorFallbackResult() CategorizationResult {
	return CategorizationResult{
		PrimaryCategory: CategoryDetail{
			Category:          string(CategoryOther),
			CategoryEnglish:   "Other",
			Confidence:        0.1,
			Color:             "#95A5A6",
			Icon:              "📋",
			TaxClassification: string(TaxUnknown),
			MatchedKeywords:   []string{"エラー"},
		},
		AllCategories: []CategoryDetail{},
		Summary:       CategorizationSummary{},
		Workflow: WorkflowData{
			BusinessUnit:              "未割り当て",
			ApprovalLevel:             "要確認",
			JournalEntryCode:          "999",
			RequiresReceiptAttachment: true,
			ProcessingNotes:           "自動分類でエラーが発生しました。手動で確認してください。",
		},
	}
}
