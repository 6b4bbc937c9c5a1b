package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityTextValue(t *testing.T) {
	tests := []struct {
		name   string
		entity Entity
		want   string
	}{
		{"text shape", Entity{Text: "ファミリーマート"}, "ファミリーマート"},
		{"value shape", Entity{Value: "2024-10-15"}, "2024-10-15"},
		{"text wins over value", Entity{Text: "a", Value: "b"}, "a"},
		{"whitespace trimmed", Entity{Text: "  イオン  "}, "イオン"},
		{"blank text falls back to value", Entity{Text: "   ", Value: "b"}, "b"},
		{"empty", Entity{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entity.TextValue())
		})
	}
}

func TestLineItemAmount(t *testing.T) {
	assert.Equal(t, 120.0, LineItem{UnitPrice: 100, TotalPrice: 120}.Amount())
	assert.Equal(t, 100.0, LineItem{UnitPrice: 100}.Amount())
	assert.Equal(t, 0.0, LineItem{}.Amount())
}

func TestConsolidatedRecordTotalValue(t *testing.T) {
	rec := NewConsolidatedRecord()
	rec.Totals["total"] = "1,080"
	rec.Totals["tax"] = " 80 "
	rec.Totals["subtotal"] = "千円"

	v, ok := rec.TotalValue("total")
	assert.True(t, ok)
	assert.Equal(t, 1080.0, v)

	v, ok = rec.TotalValue("tax")
	assert.True(t, ok)
	assert.Equal(t, 80.0, v)

	_, ok = rec.TotalValue("subtotal")
	assert.False(t, ok, "non-numeric totals report not-ok")

	_, ok = rec.TotalValue("missing")
	assert.False(t, ok)
}

func TestConsolidatedRecordNilSafety(t *testing.T) {
	var rec *ConsolidatedRecord
	assert.Equal(t, "", rec.EntityText("vendor"))
	_, ok := rec.TotalValue("total")
	assert.False(t, ok)
}

func TestMappedReceiptExcelColumns(t *testing.T) {
	m := MappedReceipt{
		Date:          "2024-10-15",
		StoreName:     "ファミリーマート",
		TotalAmount:   1080,
		InvoiceNumber: "T7380001003643",
		TaxCategory:   "課税10%",
		AccountTitle:  "食費",
	}

	columns := m.ExcelColumns()
	assert.Equal(t, "2024-10-15", columns["日付"])
	assert.Equal(t, "ファミリーマート", columns["店舗名"])
	assert.Equal(t, 1080.0, columns["金額"])
	assert.Equal(t, "T7380001003643", columns["インボイス番号"])
	assert.Equal(t, "課税10%", columns["税区分"])
	assert.Equal(t, "食費", columns["勘定科目"])
}
