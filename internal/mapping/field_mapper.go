package mapping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
)

// FieldMapper maps a consolidated OCR record onto the canonical six-field
// expense record (A 日付, B 店舗名, C 金額, D インボイス番号, E 税区分,
// F 勘定科目). Construction compiles the pattern tables once; the mapper is
// stateless afterwards and safe for concurrent use.
type FieldMapper struct {
	datePatterns    []datePattern
	invoicePatterns []*regexp.Regexp
	bareTNumber     *regexp.Regexp
	taxCategories   []taxCategoryPattern
}

type datePattern struct {
	pattern *regexp.Regexp
	// yearFirst marks YYYY-first layouts; Japanese 年月日 is always year-first.
	yearFirst bool
}

type taxCategoryPattern struct {
	pattern  *regexp.Regexp
	category string
}

// NewFieldMapper compiles the pattern tables.
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{
		datePatterns: []datePattern{
			{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), true},
			{regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`), true},
			{regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`), false},
			{regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`), true},
		},
		// Ordered from most to least specific; the first match wins.
		invoicePatterns: []*regexp.Regexp{
			// qualified invoice registration number (登録番号 T + 13 digits)
			regexp.MustCompile(`登録番号[\s\-:：]*(T\d{13})`),
			regexp.MustCompile(`(?i)registration[\s\-:：]*(T\d{13})`),
			// receipt number with optional transaction / store sub-numbers
			regexp.MustCompile(`レシートNo\.(\d+)(?:\s*取引:(\d+))?(?:\s*店:(\d+))?`),
			regexp.MustCompile(`(?i)receipt\s*no\.?[\s\-:：]*(\d+)`),
			// general fallbacks
			regexp.MustCompile(`(?i)(?:インボイス|invoice)[\s\-:：]*([A-Z0-9\-]{8,})`),
			regexp.MustCompile(`(?i)(?:番号|No\.?)[\s\-:：]*([A-Z0-9\-]{6,})`),
			regexp.MustCompile(`(?i)(?:領収書|レシート)[\s\-:：]*No\.?[\s]*([A-Z0-9\-]{6,})`),
		},
		bareTNumber: regexp.MustCompile(`T\d{13}`),
		taxCategories: []taxCategoryPattern{
			// specific patterns seen on real receipts
			{regexp.MustCompile(`10%内税対象`), "10%内税"},
			{regexp.MustCompile(`8%内税対象`), "8%内税"},
			{regexp.MustCompile(`内税率10%対象額`), "10%内税"},
			{regexp.MustCompile(`内税率8%対象額`), "8%内税"},
			{regexp.MustCompile(`消費税.*10%`), "10%消費税"},
			{regexp.MustCompile(`消費税.*8%`), "8%消費税"},
			{regexp.MustCompile(`軽減税率.*8%`), "8%軽減税率"},
			// general fallbacks
			{regexp.MustCompile(`内税|税込み?|込み`), "内税"},
			{regexp.MustCompile(`外税|税別|税抜き?`), "外税"},
			{regexp.MustCompile(`非課税|免税`), "非課税"},
			{regexp.MustCompile(`軽減`), "軽減税率"},
		},
	}
}

// MapToFields produces the canonical receipt record. It never fails: every
// parse miss degrades to an empty string or a table default, so all six
// fields are always populated.
func (fm *FieldMapper) MapToFields(rec *models.ConsolidatedRecord) models.MappedReceipt {
	receipt := models.MappedReceipt{
		Date:      fm.StandardizeDate(rec.EntityText("date")),
		StoreName: rec.EntityText("vendor"),
	}

	if total, ok := rec.TotalValue("total"); ok {
		receipt.TotalAmount = total
	}

	receipt.InvoiceNumber = fm.ExtractInvoiceNumber(rec.RawText)
	receipt.TaxCategory = fm.DetermineTaxCategory(rec.RawText, receipt.StoreName)
	receipt.AccountTitle = fm.DetermineAccountTitle(receipt.StoreName, rec.RawText)

	return receipt
}

// StandardizeDate normalizes a date string to YYYY-MM-DD. Recognized
// layouts are tried in order; strings matching none pass through unchanged.
func (fm *FieldMapper) StandardizeDate(dateStr string) string {
	if dateStr == "" {
		return ""
	}

	for _, dp := range fm.datePatterns {
		m := dp.pattern.FindStringSubmatch(dateStr)
		if m == nil {
			continue
		}
		if dp.yearFirst {
			return fmt.Sprintf("%s-%s-%s", m[1], pad2(m[2]), pad2(m[3]))
		}
		// MM/DD/YYYY
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[1]), pad2(m[2]))
	}
	return dateStr
}

// ExtractInvoiceNumber scans the raw text with the ordered invoice pattern
// ladder. Patterns with multiple capture groups (レシートNo + 取引 + 店)
// concatenate the non-empty groups with spaces. Returns "" when nothing
// matches, never an error.
func (fm *FieldMapper) ExtractInvoiceNumber(rawText string) string {
	for _, pattern := range fm.invoicePatterns {
		m := pattern.FindStringSubmatch(rawText)
		if m == nil {
			continue
		}
		groups := m[1:]
		if len(groups) > 1 && groups[1] != "" {
			var parts []string
			for _, g := range groups {
				if g != "" {
					parts = append(parts, g)
				}
			}
			return strings.Join(parts, " ")
		}
		return strings.TrimSpace(groups[0])
	}

	// last resort: a bare registration number anywhere in the text
	if m := fm.bareTNumber.FindString(rawText); m != "" {
		return m
	}
	return ""
}

// DetermineTaxCategory resolves the 税区分 column from text patterns, then
// vendor-type defaults. The final fallback is the standard 10% bracket.
func (fm *FieldMapper) DetermineTaxCategory(rawText, vendor string) string {
	var detected []string
	for _, tp := range fm.taxCategories {
		if tp.pattern.MatchString(rawText) {
			detected = append(detected, tp.category)
		}
	}

	if len(detected) > 0 {
		primary := detected[0]
		// check 8% before the bare 内税 substring: "8%内税" must land in the
		// reduced-rate bucket
		switch {
		case strings.Contains(primary, "8%") || strings.Contains(primary, "軽減"):
			return "軽減税率8%"
		case strings.Contains(primary, "10%") || strings.Contains(primary, "内税"):
			return "課税10%"
		case strings.Contains(primary, "外税"):
			return "外税"
		case strings.Contains(primary, "非課税"):
			return "非課税"
		default:
			return "課税"
		}
	}

	vendorLower := strings.ToLower(vendor)
	// eateries sell mostly reduced-rate items, supermarkets mostly standard
	for _, indicator := range []string{"食堂", "レストラン", "カフェ"} {
		if strings.Contains(vendorLower, indicator) {
			return "軽減税率8%"
		}
	}
	for _, indicator := range []string{"スーパー", "ベニマル", "イオン"} {
		if strings.Contains(vendorLower, indicator) {
			return "課税10%"
		}
	}

	return "課税10%"
}

// accountTitleKeywords maps 勘定科目 to the terms that indicate it. The
// table is scanned in a fixed order with the first hit winning, so the more
// specific accounts come before the broad ones.
var accountTitleKeywords = []struct {
	account  string
	keywords []string
}{
	{"食費", []string{
		// item names seen on real receipts
		"めし", "味噌汁", "ほっけ", "玉子焼", "おくら",
		"鶏中華", "とろろそば", "茄子", "とうもろこし",
		// common food terms
		"食堂", "レストラン", "カフェ", "弁当", "おにぎり", "サンドイッチ",
		"パン", "お茶", "コーヒー", "水", "飲み物", "食品", "食材",
		"惣菜", "お菓子", "アイス", "冷凍", "生鮮", "肉", "魚", "野菜",
		// store types that mostly sell food
		"ベニマル", "スーパー", "コンビニ", "イオン", "ライフ", "西友",
	}},
	{"消耗品費", []string{
		"文具", "事務用品", "ペン", "紙", "ノート", "コピー", "印刷",
		"ファイル", "封筒", "テープ", "のり", "はさみ", "ホチキス",
		"電池", "ティッシュ", "洗剤", "石鹸", "タオル", "雑貨",
	}},
	{"交通費", []string{
		"電車", "バス", "タクシー", "交通", "切符", "定期", "IC",
		"Suica", "PASMO", "運賃", "乗車券", "回数券",
	}},
	{"車両費", []string{
		"ガソリン", "燃料", "駐車", "車", "整備", "オイル", "タイヤ",
		"車検", "修理", "洗車", "高速", "ETC",
	}},
	{"通信費", []string{
		"電話", "携帯", "インターネット", "通信", "Wi-Fi", "プロバイダ",
		"スマホ", "ケータイ", "回線", "データ",
	}},
	{"水道光熱費", []string{
		"電気", "ガス", "水道", "光熱", "電力", "都市ガス", "プロパン",
	}},
	{"地代家賃", []string{
		"家賃", "賃料", "駐車場", "事務所", "テナント", "賃貸", "物件",
	}},
	{"旅費交通費", []string{
		"宿泊", "ホテル", "出張", "新幹線", "航空", "飛行機", "旅行",
		"民宿", "ビジネスホテル", "温泉",
	}},
	{"接待交際費", []string{
		"接待", "会食", "懇親会", "贈答", "ギフト", "お中元", "お歳暮",
		"慶弔", "祝儀", "香典",
	}},
}

// DetermineAccountTitle resolves the 勘定科目 column from the vendor name
// and raw text. Unrecognized receipts default to 消耗品費.
func (fm *FieldMapper) DetermineAccountTitle(vendor, rawText string) string {
	fullText := strings.ToLower(vendor + " " + rawText)

	for _, entry := range accountTitleKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(fullText, strings.ToLower(keyword)) {
				return entry.account
			}
		}
	}

	vendorLower := strings.ToLower(vendor)
	for _, store := range []string{"食堂", "レストラン", "カフェ", "ベニマル", "スーパー", "コンビニ"} {
		if strings.Contains(vendorLower, store) {
			return "食費"
		}
	}
	for _, store := range []string{"ガソリン", "エネオス", "出光"} {
		if strings.Contains(vendorLower, store) {
			return "車両費"
		}
	}

	return "消耗品費"
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
