package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
)

func TestStandardizeDate(t *testing.T) {
	fm := NewFieldMapper()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"japanese era format", "2024年10月15日", "2024-10-15"},
		{"japanese single digit", "2024年1月5日", "2024-01-05"},
		{"slash year first", "2024/10/15", "2024-10-15"},
		{"slash month first", "10/15/2024", "2024-10-15"},
		{"iso already", "2024-10-15", "2024-10-15"},
		{"embedded in text", "発行日: 2024年10月15日 14:32", "2024-10-15"},
		{"unrecognized passes through", "令和六年十月", "令和六年十月"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fm.StandardizeDate(tt.input))
		})
	}
}

func TestExtractInvoiceNumber(t *testing.T) {
	fm := NewFieldMapper()

	tests := []struct {
		name    string
		rawText string
		want    string
	}{
		{
			name:    "registration number",
			rawText: "株式会社テスト\n登録番号 T7380001003643\n合計 1,080円",
			want:    "T7380001003643",
		},
		{
			name:    "registration number with colon",
			rawText: "登録番号: T1234567890123",
			want:    "T1234567890123",
		},
		{
			name:    "receipt number with transaction and store",
			rawText: "レシートNo.1234 取引:567 店:89",
			want:    "1234 567 89",
		},
		{
			name:    "receipt number alone",
			rawText: "レシートNo.4421",
			want:    "4421",
		},
		{
			name:    "bare registration number fallback",
			rawText: "適格請求書発行事業者 T1234567890123",
			want:    "T1234567890123",
		},
		{
			name:    "nothing matches",
			rawText: "ありがとうございました",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fm.ExtractInvoiceNumber(tt.rawText))
		})
	}
}

func TestDetermineTaxCategory(t *testing.T) {
	fm := NewFieldMapper()

	tests := []struct {
		name    string
		rawText string
		vendor  string
		want    string
	}{
		{"explicit 10 percent inclusive", "10%内税対象 1,080円", "", "課税10%"},
		{"explicit 8 percent inclusive", "8%内税対象 540円", "", "軽減税率8%"},
		{"inclusive 8 percent subject amount", "内税率8%対象額 540円", "", "軽減税率8%"},
		{"reduced rate marker", "軽減税率8%対象", "", "軽減税率8%"},
		{"tax exempt", "非課税取引", "", "非課税"},
		{"eatery vendor fallback", "", "カフェドリップ", "軽減税率8%"},
		{"supermarket vendor fallback", "", "ヨークベニマル", "課税10%"},
		{"default", "", "不明な店", "課税10%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fm.DetermineTaxCategory(tt.rawText, tt.vendor))
		})
	}
}

func TestDetermineAccountTitle(t *testing.T) {
	fm := NewFieldMapper()

	tests := []struct {
		name    string
		vendor  string
		rawText string
		want    string
	}{
		{"food item", "ヨークベニマル", "ほっけ 玉子焼", "食費"},
		{"stationery", "オフィスデポ", "文具 ファイル", "消耗品費"},
		{"taxi", "日本交通", "タクシー運賃", "交通費"},
		{"fuel", "エネオス", "ガソリン レギュラー", "車両費"},
		{"hotel", "", "ビジネスホテル 宿泊", "旅費交通費"},
		{"unknown defaults to supplies", "不明な店", "不明な商品", "消耗品費"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fm.DetermineAccountTitle(tt.vendor, tt.rawText))
		})
	}
}

func TestMapToFields(t *testing.T) {
	fm := NewFieldMapper()

	rec := models.NewConsolidatedRecord()
	rec.RawText = "ファミリーマート\n2024年10月15日\n登録番号 T7380001003643\nおにぎり 120円\n合計 1,080円 税込"
	rec.Entities["vendor"] = models.Entity{Text: "ファミリーマート"}
	rec.Entities["date"] = models.Entity{Text: "2024年10月15日"}
	rec.Totals["total"] = "1,080"

	receipt := fm.MapToFields(rec)

	assert.Equal(t, "2024-10-15", receipt.Date)
	assert.Equal(t, "ファミリーマート", receipt.StoreName)
	assert.Equal(t, 1080.0, receipt.TotalAmount)
	assert.Equal(t, "T7380001003643", receipt.InvoiceNumber)
	assert.NotEmpty(t, receipt.TaxCategory)
	assert.Equal(t, "食費", receipt.AccountTitle)
}

func TestMapToFieldsEmptyRecord(t *testing.T) {
	fm := NewFieldMapper()
	receipt := fm.MapToFields(models.NewConsolidatedRecord())

	assert.Equal(t, "", receipt.Date)
	assert.Equal(t, "", receipt.StoreName)
	assert.Equal(t, 0.0, receipt.TotalAmount)
	assert.Equal(t, "", receipt.InvoiceNumber)
	// categorical columns still get their table defaults
	assert.Equal(t, "課税10%", receipt.TaxCategory)
	assert.Equal(t, "消耗品費", receipt.AccountTitle)
}
