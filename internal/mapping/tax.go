package mapping

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// TaxType is the detected tax treatment of a receipt.
type TaxType string

const (
	TaxInclusive      TaxType = "内税"  // tax included in price
	TaxExclusive      TaxType = "外税"  // tax separate from price
	TaxNoInfo         TaxType = "税抜き" // no tax information
	TaxManualJudgment TaxType = "要判断" // requires manual judgment
)

// TaxAnalysis is the result of classifying a receipt's tax treatment.
// CalculatedRate is a percentage rounded to one decimal, nil when the
// amounts needed to compute it are missing.
type TaxAnalysis struct {
	DetectedType   TaxType  `json:"detected_type"`
	Confidence     float64  `json:"confidence"`
	Evidence       []string `json:"evidence"`
	CalculatedRate *float64 `json:"calculated_rate"`
	ExcelValue     string   `json:"excel_value"`
}

// Amounts is the numeric triple read from a receipt's totals block. Zero
// means the value was absent or unparseable.
type Amounts struct {
	Total    float64
	Subtotal float64
	Tax      float64
}

type taxTypePattern struct {
	pattern *regexp.Regexp
	taxType TaxType
}

// taxTypePatterns is evaluated top to bottom; the first match wins. Later
// entries are deliberately more permissive fallbacks, so ordering is part
// of the contract.
var taxTypePatterns = []taxTypePattern{
	// inclusive (内税)
	{regexp.MustCompile(`(?i)内税|税込み?|込み|税込価格|総額`), TaxInclusive},
	{regexp.MustCompile(`(?i)tax\s*included|inclusive`), TaxInclusive},
	// exclusive (外税)
	{regexp.MustCompile(`(?i)外税|税別|税抜き?|別途消費税|プラス税`), TaxExclusive},
	{regexp.MustCompile(`(?i)tax\s*excluded|exclusive|plus\s*tax`), TaxExclusive},
	// no tax info
	{regexp.MustCompile(`(?i)税抜き?価格|本体価格|税なし`), TaxNoInfo},
	{regexp.MustCompile(`(?i)no\s*tax|tax\s*free|non-taxable`), TaxNoInfo},
}

// foodIndicators trigger the automatic food rule: food receipts are taxed
// 10% inclusive even when the receipt does not say so.
var foodIndicators = []string{"食", "弁当", "レストラン", "カフェ", "マクドナルド", "すき家"}

// ClassifyTax scans the raw text for tax-type indicators and, when the
// amount triple allows it, computes the effective rate. The computed rate
// always overrides the pattern-derived ExcelValue: numeric evidence beats
// keyword evidence.
func ClassifyTax(rawText string, amounts Amounts) TaxAnalysis {
	analysis := TaxAnalysis{
		DetectedType: TaxManualJudgment,
		Confidence:   0.0,
		Evidence:     []string{},
		ExcelValue:   "要確認",
	}

	textLower := strings.ToLower(rawText)
	for _, tp := range taxTypePatterns {
		if tp.pattern.MatchString(textLower) {
			analysis.DetectedType = tp.taxType
			analysis.Evidence = append(analysis.Evidence, fmt.Sprintf("Pattern matched: %s", tp.pattern.String()))
			analysis.Confidence = 0.8
			break
		}
	}

	if amounts.Total > 0 && amounts.Tax > 0 {
		var rate float64
		if analysis.DetectedType == TaxInclusive {
			rate = amounts.Tax / amounts.Total
		} else {
			base := amounts.Total - amounts.Tax
			if base > 0 {
				rate = amounts.Tax / base
			}
		}

		calculated := math.Round(rate*100*10) / 10
		analysis.CalculatedRate = &calculated

		switch {
		case calculated >= 9.5 && calculated <= 10.5:
			analysis.ExcelValue = "課税10%"
		case calculated >= 7.5 && calculated <= 8.5:
			analysis.ExcelValue = "課税8%"
		default:
			analysis.ExcelValue = fmt.Sprintf("課税%.1f%%", calculated)
		}
	}

	return analysis
}

// ApplyFoodRule forces the 10% inclusive default on receipts that look like
// food purchases but carry no tax signal. It reports the processing note to
// append when the rule fired.
func ApplyFoodRule(analysis *TaxAnalysis, rawText, vendor string) (string, bool) {
	if analysis.DetectedType != TaxManualJudgment {
		return "", false
	}

	haystack := strings.ToLower(rawText + " " + vendor)
	for _, indicator := range foodIndicators {
		if strings.Contains(haystack, indicator) {
			analysis.DetectedType = TaxInclusive
			analysis.ExcelValue = "課税10%"
			analysis.Confidence = 0.7
			analysis.Evidence = append(analysis.Evidence, "自動ルール: 食品 → 10%税率")
			return "食品レシート: 10%税率を自動適用", true
		}
	}
	return "", false
}
