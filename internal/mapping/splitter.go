package mapping

import (
	"fmt"
	"strings"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
)

// SplitLineItem is one line of a mixed receipt assigned to its own category
// and tax rate, with the ledger-ready column mapping attached.
type SplitLineItem struct {
	Description  string         `json:"description"`
	Amount       float64        `json:"amount"`
	Category     string         `json:"category"`
	TaxRate      float64        `json:"tax_rate"`
	ExcelMapping map[string]any `json:"excel_mapping"`
}

// SplitResult is the outcome of mixed-receipt analysis. Items that matched
// no rule group are excluded from Items and flagged through Notes.
type SplitResult struct {
	Items       []SplitLineItem `json:"items"`
	NeedsReview bool            `json:"needs_review"`
	Notes       []string        `json:"notes"`
}

// splitRule is one keyword group for partitioning mixed receipts.
type splitRule struct {
	keywords    []string
	taxRate     float64
	category    string
	accountCode string
}

// splitRules is evaluated in order; the first group with a keyword hit wins
// for each line item.
var splitRules = []splitRule{
	{ // food (reduced rate)
		keywords:    []string{"食品", "弁当", "パン", "おにぎり", "サンドイッチ", "飲み物", "お茶", "コーヒー", "水"},
		taxRate:     0.08,
		category:    "食費",
		accountCode: "611",
	},
	{ // daily goods (standard rate)
		keywords:    []string{"雑貨", "文具", "ペン", "ノート", "ティッシュ", "洗剤", "石鹸"},
		taxRate:     0.10,
		category:    "消耗品費",
		accountCode: "616",
	},
	{ // communication (non-taxable)
		keywords:    []string{"通信", "電話", "携帯", "プリペイド", "チャージ"},
		taxRate:     0.00,
		category:    "通信費",
		accountCode: "613",
	},
	{ // tax payments (non-taxable)
		keywords:    []string{"印紙", "手数料", "登録料", "税金", "公課"},
		taxRate:     0.00,
		category:    "租税公課",
		accountCode: "619",
	},
}

// SplitLineItems partitions the line items of a receipt across categories
// for split accounting entries. Unmatched items and mixed-category results
// both raise the needs-review flag; neither is an error.
func SplitLineItems(lineItems []models.LineItem) SplitResult {
	result := SplitResult{
		Items: []SplitLineItem{},
		Notes: []string{},
	}
	if len(lineItems) == 0 {
		return result
	}

	categories := make(map[string]bool)

	for _, item := range lineItems {
		description := strings.ToLower(item.Description)
		amount := item.Amount()

		rule, matched := matchSplitRule(description)
		if !matched {
			result.NeedsReview = true
			result.Notes = append(result.Notes, fmt.Sprintf("要確認: %s", description))
			continue
		}

		taxLabel := "非課税"
		if rule.taxRate > 0 {
			taxLabel = fmt.Sprintf("課税%.0f%%", rule.taxRate*100)
		}

		result.Items = append(result.Items, SplitLineItem{
			Description: item.Description,
			Amount:      amount,
			Category:    rule.category,
			TaxRate:     rule.taxRate,
			ExcelMapping: map[string]any{
				"摘要":      item.Description,
				"金額":      amount,
				"税区分":     taxLabel,
				"勘定科目":    rule.category,
				"勘定科目コード": rule.accountCode,
			},
		})
		categories[rule.category] = true
	}

	if len(categories) > 1 {
		result.Notes = append(result.Notes, "混合レシート: 複数カテゴリに分割")
		result.NeedsReview = true
	}

	return result
}

func matchSplitRule(description string) (splitRule, bool) {
	for _, rule := range splitRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(description, keyword) {
				return rule, true
			}
		}
	}
	return splitRule{}, false
}
