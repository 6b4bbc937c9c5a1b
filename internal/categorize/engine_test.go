package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeReceiptVendorPattern(t *testing.T) {
	engine := NewEngine()

	matches := engine.CategorizeReceipt("", "マクドナルド 渋谷店", 780)

	require.NotEmpty(t, matches)
	assert.Equal(t, CategoryMeals, matches[0].Category)
	assert.GreaterOrEqual(t, matches[0].Confidence, 0.9)
	assert.Contains(t, matches[0].MatchedKeywords, "マクドナルド 渋谷店")
}

func TestCategorizeReceiptKeywordScoring(t *testing.T) {
	engine := NewEngine()

	matches := engine.CategorizeReceipt("新幹線 乗車券 東京-大阪", "", 14000)

	require.NotEmpty(t, matches)
	assert.Equal(t, CategoryTransport, matches[0].Category)
	assert.Greater(t, matches[0].Confidence, 0.0)
	assert.LessOrEqual(t, matches[0].Confidence, 0.8, "keyword confidence is capped")
	assert.Contains(t, matches[0].MatchedKeywords, "新幹線")
}

func TestCategorizeReceiptResultsSortedAndDeduped(t *testing.T) {
	engine := NewEngine()

	// text hits both meals (コンビニ) and supplies (電池)
	matches := engine.CategorizeReceipt("コンビニ 電池 ティッシュ", "ローソン", 860)

	require.NotEmpty(t, matches)
	seen := map[ExpenseCategory]bool{}
	for i, m := range matches {
		assert.False(t, seen[m.Category], "category %s appears twice", m.Category)
		seen[m.Category] = true
		if i > 0 {
			assert.GreaterOrEqual(t, matches[i-1].Confidence, m.Confidence, "matches must be sorted by confidence")
		}
	}
	assert.True(t, seen[CategoryMeals])
	assert.True(t, seen[CategorySupplies])
}

func TestCategorizeReceiptEqualConfidenceFollowsTableOrder(t *testing.T) {
	engine := NewEngine()

	// 弁当 and ペン are the same length, so meals and supplies score
	// identically; meals wins the tie because it comes first in the table.
	matches := engine.CategorizeReceipt("弁当 ペン", "", 500)

	require.Len(t, matches, 2)
	assert.Equal(t, matches[0].Confidence, matches[1].Confidence)
	assert.Equal(t, CategoryMeals, matches[0].Category)
	assert.Equal(t, CategorySupplies, matches[1].Category)
}

func TestCategorizeReceiptMealsTaxDefault(t *testing.T) {
	engine := NewEngine()

	matches := engine.CategorizeReceipt("ランチ 弁当", "", 650)

	require.NotEmpty(t, matches)
	assert.Equal(t, CategoryMeals, matches[0].Category)
	assert.Equal(t, Taxable10, matches[0].TaxClassification)
}

func TestCategorizeReceiptCommunicationNonTaxable(t *testing.T) {
	engine := NewEngine()

	matches := engine.CategorizeReceipt("携帯電話 データ通信料", "", 4980)

	require.NotEmpty(t, matches)
	assert.Equal(t, CategoryCommunication, matches[0].Category)
	assert.Equal(t, NonTaxable, matches[0].TaxClassification)
}

func TestCategorizeReceiptHighAmountAddsAccommodation(t *testing.T) {
	engine := NewEngine()

	matches := engine.CategorizeReceipt("飲食", "", 60000)

	var accommodation *CategoryMatch
	for i := range matches {
		if matches[i].Category == CategoryAccommodation {
			accommodation = &matches[i]
		}
	}
	require.NotNil(t, accommodation, "amounts over 50,000 yen add an accommodation hypothesis")
	assert.Equal(t, 0.6, accommodation.Confidence)
	assert.Contains(t, accommodation.MatchedKeywords, "高額取引")
}

func TestCategorizeReceiptExplicitTaxIndicator(t *testing.T) {
	engine := NewEngine()

	matches := engine.CategorizeReceipt("事務用品 消費税 8% 対象", "", 540)

	require.NotEmpty(t, matches)
	assert.Equal(t, Taxable8, matches[0].TaxClassification)
}

func TestCategorizeReceiptNoMatch(t *testing.T) {
	engine := NewEngine()
	matches := engine.CategorizeReceipt("zzzz", "", 100)
	assert.Empty(t, matches)
}

func TestCategoryJournalCodes(t *testing.T) {
	assert.Equal(t, "611", CategoryMeals.JournalCode())
	assert.Equal(t, "613", CategoryCommunication.JournalCode())
	assert.Equal(t, "619", CategoryTaxes.JournalCode())
	assert.Equal(t, "699", CategoryOther.JournalCode())
	assert.Equal(t, "699", ExpenseCategory("存在しない").JournalCode(), "unknown categories fall back to Other")
}
