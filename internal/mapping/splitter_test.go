package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
)

func TestSplitLineItemsMixedReceipt(t *testing.T) {
	items := []models.LineItem{
		{Description: "おにぎり", TotalPrice: 120},
		{Description: "お茶", TotalPrice: 150},
		{Description: "文具ペン", TotalPrice: 100},
	}

	result := SplitLineItems(items)

	require.Len(t, result.Items, 3)
	assert.True(t, result.NeedsReview, "mixed categories require review")
	assert.Contains(t, result.Notes, "混合レシート: 複数カテゴリに分割")

	food := result.Items[0]
	assert.Equal(t, "食費", food.Category)
	assert.Equal(t, 0.08, food.TaxRate)
	assert.Equal(t, "課税8%", food.ExcelMapping["税区分"])
	assert.Equal(t, "611", food.ExcelMapping["勘定科目コード"])

	goods := result.Items[2]
	assert.Equal(t, "消耗品費", goods.Category)
	assert.Equal(t, 0.10, goods.TaxRate)
	assert.Equal(t, "課税10%", goods.ExcelMapping["税区分"])
	assert.Equal(t, "616", goods.ExcelMapping["勘定科目コード"])
}

func TestSplitLineItemsSingleCategory(t *testing.T) {
	items := []models.LineItem{
		{Description: "おにぎり", TotalPrice: 120},
		{Description: "サンドイッチ", TotalPrice: 298},
	}

	result := SplitLineItems(items)

	require.Len(t, result.Items, 2)
	assert.False(t, result.NeedsReview)
	assert.Empty(t, result.Notes)
}

func TestSplitLineItemsUnmatchedItem(t *testing.T) {
	items := []models.LineItem{
		{Description: "おにぎり", TotalPrice: 120},
		{Description: "謎の商品", TotalPrice: 500},
	}

	result := SplitLineItems(items)

	require.Len(t, result.Items, 1, "unmatched items are excluded")
	assert.True(t, result.NeedsReview)
	assert.Contains(t, result.Notes, "要確認: 謎の商品")
}

func TestSplitLineItemsNonTaxable(t *testing.T) {
	items := []models.LineItem{
		{Description: "収入印紙", TotalPrice: 200},
		{Description: "携帯チャージ", TotalPrice: 3000},
	}

	result := SplitLineItems(items)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "租税公課", result.Items[0].Category)
	assert.Equal(t, "非課税", result.Items[0].ExcelMapping["税区分"])
	assert.Equal(t, "通信費", result.Items[1].Category)
	assert.Equal(t, 0.0, result.Items[1].TaxRate)
}

func TestSplitLineItemsUsesBestAmount(t *testing.T) {
	items := []models.LineItem{
		{Description: "お茶", UnitPrice: 150}, // no total price
	}

	result := SplitLineItems(items)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 150.0, result.Items[0].Amount)
	assert.Equal(t, 150.0, result.Items[0].ExcelMapping["金額"])
}

func TestSplitLineItemsEmpty(t *testing.T) {
	result := SplitLineItems(nil)
	assert.Empty(t, result.Items)
	assert.False(t, result.NeedsReview)
	assert.Empty(t, result.Notes)
}
