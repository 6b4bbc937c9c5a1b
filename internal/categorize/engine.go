package categorize

import (
	"regexp"
	"sort"
	"strings"
)

// Engine performs keyword and vendor-pattern based expense categorization.
// All tables are built once at construction and are read-only afterwards, so
// a single Engine is safe for concurrent use.
type Engine struct {
	categoryKeywords []categoryKeywordSet
	vendorPatterns   []vendorPattern
	taxIndicators    []taxIndicator
}

type categoryKeywordSet struct {
	category ExpenseCategory
	keywords []string
}

type vendorPattern struct {
	pattern  *regexp.Regexp
	category ExpenseCategory
}

type taxIndicator struct {
	pattern        *regexp.Regexp
	classification TaxClassification
}

// NewEngine builds the categorization engine with the company keyword tables.
func NewEngine() *Engine {
	return &Engine{
		categoryKeywords: buildCategoryKeywords(),
		vendorPatterns:   buildVendorPatterns(),
		taxIndicators:    buildTaxIndicators(),
	}
}

// buildCategoryKeywords returns the company keyword table. Table order is
// part of the contract: equal-confidence matches rank in this order.
func buildCategoryKeywords() []categoryKeywordSet {
	return []categoryKeywordSet{
		{CategoryMeals, []string{
			"食事", "飲食", "レストラン", "居酒屋", "カフェ", "弁当",
			"食堂", "料理", "グルメ", "ランチ", "ディナー", "朝食",
			"コンビニ", "スーパー", "食品", "パン", "肉", "魚", "野菜",
			// common chains
			"マクドナルド", "スターバックス", "すき家", "吉野家", "松屋",
			"ファミマ", "セブン", "ローソン", "イオン",
		}},
		{CategoryTransport, []string{
			"交通", "電車", "バス", "タクシー", "地下鉄", "新幹線",
			"航空", "飛行機", "切符", "乗車券", "運賃", "料金",
			"JR", "私鉄", "高速", "駐車場", "ガソリン", "燃料",
			"ETC", "IC", "Suica", "PASMO",
		}},
		{CategoryCommunication, []string{
			"通信", "電話", "携帯", "スマホ", "インターネット", "プロバイダ",
			"回線", "Wi-Fi", "データ", "通話", "メール", "FAX",
			"NTT", "ドコモ", "au", "ソフトバンク", "楽天",
		}},
		{CategoryAccommodation, []string{
			"宿泊", "ホテル", "旅館", "民宿", "ビジネスホテル", "リゾート",
			"宿", "泊", "部屋代", "滞在", "チェックイン", "予約",
		}},
		{CategoryEntertainment, []string{
			"接待", "懇親", "宴会", "パーティー", "歓迎会", "送別会",
			"忘年会", "新年会", "会食", "打ち合わせ", "商談", "営業",
		}},
		{CategorySupplies, []string{
			"消耗品", "文具", "事務用品", "コピー用紙", "ペン", "ファイル",
			"クリップ", "ホチキス", "電池", "トナー", "インク",
			"掃除用品", "洗剤", "ティッシュ",
		}},
		{CategoryUtilities, []string{
			"電気", "ガス", "水道", "光熱費", "電力", "東京電力", "関西電力",
			"都市ガス", "プロパン", "上下水道",
		}},
		{CategoryTaxes, []string{
			"税金", "印紙", "登録", "手数料", "印紙税", "登録免許税",
			"固定資産税", "自動車税", "住民税", "法人税",
		}},
	}
}

// buildVendorPatterns compiles the vendor-name table. Order matters only for
// readability; the first matching pattern wins.
func buildVendorPatterns() []vendorPattern {
	entries := []struct {
		expr     string
		category ExpenseCategory
	}{
		// convenience stores (usually food/supplies)
		{`セブン.*イレブン|7.*eleven`, CategoryMeals},
		{`ファミリーマート|ファミマ`, CategoryMeals},
		{`ローソン`, CategoryMeals},
		// restaurants
		{`マクドナルド|mcdonald`, CategoryMeals},
		{`スターバックス|starbucks`, CategoryMeals},
		{`すき家|吉野家|松屋`, CategoryMeals},
		// transportation
		{`jr.*|東日本旅客鉄道`, CategoryTransport},
		{`東京メトロ|都営地下鉄`, CategoryTransport},
		{`タクシー|taxi`, CategoryTransport},
		// hotels
		{`ホテル.*|hotel.*`, CategoryAccommodation},
		{`旅館|民宿`, CategoryAccommodation},
		// office supplies
		{`文具.*|事務.*`, CategorySupplies},
		{`コピー.*|印刷.*`, CategorySupplies},
	}

	patterns := make([]vendorPattern, 0, len(entries))
	for _, e := range entries {
		patterns = append(patterns, vendorPattern{
			pattern:  regexp.MustCompile(`(?i)` + e.expr),
			category: e.category,
		})
	}
	return patterns
}

func buildTaxIndicators() []taxIndicator {
	entries := []struct {
		expr           string
		classification TaxClassification
	}{
		{`税率.*10%|消費税.*10%|10%.*税`, Taxable10},
		{`税率.*8%|消費税.*8%|8%.*税`, Taxable8},
		{`非課税|税抜|tax.*free`, NonTaxable},
		{`免税|duty.*free`, TaxFree},
		{`内税|tax.*included`, Taxable10}, // tax-included defaults to 10%
	}

	indicators := make([]taxIndicator, 0, len(entries))
	for _, e := range entries {
		indicators = append(indicators, taxIndicator{
			pattern:        regexp.MustCompile(`(?i)` + e.expr),
			classification: e.classification,
		})
	}
	return indicators
}

// CategorizeReceipt scores a receipt against the vendor and keyword tables
// and applies the company business rules. The result is deduplicated per
// category and ordered by descending confidence.
func (e *Engine) CategorizeReceipt(ocrText, vendorName string, amount float64) []CategoryMatch {
	fullText := strings.ToLower(ocrText + " " + vendorName)
	var matches []CategoryMatch

	// Vendor patterns first: a recognized store name is the strongest signal.
	if vendorMatch := e.matchVendorPatterns(vendorName); vendorMatch != nil {
		matches = append(matches, *vendorMatch)
	}

	matches = append(matches, e.matchKeywords(fullText)...)

	taxClass := e.detectTaxClassification(ocrText)
	for i := range matches {
		matches[i].TaxClassification = taxClass
	}

	matches = e.applyBusinessRules(matches, amount)
	matches = dedupeMatches(matches)

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

func (e *Engine) matchVendorPatterns(vendorName string) *CategoryMatch {
	if vendorName == "" {
		return nil
	}
	vendorLower := strings.ToLower(vendorName)
	for _, vp := range e.vendorPatterns {
		if vp.pattern.MatchString(vendorLower) {
			return &CategoryMatch{
				Category:          vp.category,
				Confidence:        0.9,
				MatchedKeywords:   []string{vendorName},
				TaxClassification: TaxUnknown,
			}
		}
	}
	return nil
}

// matchKeywords scores each category by substring hits, weighting longer
// keywords higher. Keyword lengths are counted in runes so Japanese terms
// score the same as they do in the company rule book.
func (e *Engine) matchKeywords(text string) []CategoryMatch {
	var matches []CategoryMatch

	for _, set := range e.categoryKeywords {
		var matched []string
		totalScore := 0.0

		for _, keyword := range set.keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				matched = append(matched, keyword)
				totalScore += float64(len([]rune(keyword))) / 10
			}
		}

		if len(matched) > 0 {
			confidence := totalScore/10 + float64(len(matched))*0.1
			if confidence > 0.8 {
				confidence = 0.8
			}
			matches = append(matches, CategoryMatch{
				Category:          set.category,
				Confidence:        confidence,
				MatchedKeywords:   matched,
				TaxClassification: TaxUnknown,
			})
		}
	}

	return matches
}

func (e *Engine) detectTaxClassification(text string) TaxClassification {
	textLower := strings.ToLower(text)
	for _, ti := range e.taxIndicators {
		if ti.pattern.MatchString(textLower) {
			return ti.classification
		}
	}

	// Food items default to the 10% bracket per company workflow.
	for _, keyword := range []string{"食", "飲", "料理", "弁当"} {
		if strings.Contains(textLower, keyword) {
			return Taxable10
		}
	}
	return TaxUnknown
}

// applyBusinessRules applies the fixed company override rules, in order:
// meals with unknown tax become 10% inclusive with a confidence boost,
// communication is always non-taxable, and amounts over 50,000 yen add an
// accommodation hypothesis regardless of text content.
func (e *Engine) applyBusinessRules(matches []CategoryMatch, amount float64) []CategoryMatch {
	for i := range matches {
		if matches[i].Category == CategoryMeals && matches[i].TaxClassification == TaxUnknown {
			matches[i].TaxClassification = Taxable10
			matches[i].Confidence += 0.1
			if matches[i].Confidence > 1.0 {
				matches[i].Confidence = 1.0
			}
		}
	}

	for i := range matches {
		if matches[i].Category == CategoryCommunication {
			matches[i].TaxClassification = NonTaxable
		}
	}

	if amount > 50000 {
		matches = append(matches, CategoryMatch{
			Category:          CategoryAccommodation,
			Confidence:        0.6,
			MatchedKeywords:   []string{"高額取引"},
			TaxClassification: Taxable10,
		})
	}

	return matches
}

// dedupeMatches keeps only the highest-confidence match per category,
// preserving first-seen order among the survivors.
func dedupeMatches(matches []CategoryMatch) []CategoryMatch {
	best := make(map[ExpenseCategory]int)
	var order []ExpenseCategory

	for i, m := range matches {
		if j, seen := best[m.Category]; !seen {
			best[m.Category] = i
			order = append(order, m.Category)
		} else if m.Confidence > matches[j].Confidence {
			best[m.Category] = i
		}
	}

	result := make([]CategoryMatch, 0, len(order))
	for _, category := range order {
		result = append(result, matches[best[category]])
	}
	return result
}
