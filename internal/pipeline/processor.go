// Package pipeline wires the merge, mapping, tax and categorization stages
// into a single receipt-processing call. The processor holds only read-only
// tables, so one instance serves concurrent requests without locking.
package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/categorize"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/mapping"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/merge"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
)

// ProcessingMetadata accompanies every processed receipt.
type ProcessingMetadata struct {
	ProcessingNotes      []string            `json:"processing_notes"`
	TaxAnalysis          mapping.TaxAnalysis `json:"tax_analysis"`
	RequiresManualReview bool                `json:"requires_manual_review"`
	ExcelReady           bool                `json:"excel_ready"`
}

// ProcessedReceipt is the full export payload handed to the draft store and
// the Excel exporter: the six canonical columns, the split-accounting rows
// for mixed receipts, and the categorization summary.
type ProcessedReceipt struct {
	Receipt               models.MappedReceipt            `json:"receipt"`
	IndividualExpenseData map[string]any                  `json:"individual_expense_data"`
	SplitAccounting       []map[string]any                `json:"split_accounting"`
	Categorization        categorize.CategorizationResult `json:"categorization"`
	Metadata              ProcessingMetadata              `json:"metadata"`
}

// Processor runs the full receipt pipeline:
// sources → merge → field mapping → tax analysis → categorization → split.
type Processor struct {
	mapper           *mapping.FieldMapper
	categorizer      *categorize.Categorizer
	confidenceMargin float64
	logger           *zap.Logger
}

// NewProcessor creates a processor. A non-positive margin falls back to the
// merge default.
func NewProcessor(confidenceMargin float64, logger *zap.Logger) *Processor {
	if confidenceMargin <= 0 {
		confidenceMargin = merge.DefaultConfidenceMargin
	}
	return &Processor{
		mapper:           mapping.NewFieldMapper(),
		categorizer:      categorize.NewCategorizer(logger),
		confidenceMargin: confidenceMargin,
		logger:           logger,
	}
}

// Process consolidates the extraction sources and produces the structured,
// tax-classified, account-coded record. It always returns a well-formed
// payload; ambiguous inputs surface through confidence scores and the
// requires-manual-review flag rather than errors.
func (p *Processor) Process(sources []models.RawExtraction, lineItems []models.LineItem) ProcessedReceipt {
	var consolidated *models.ConsolidatedRecord
	for _, source := range sources {
		consolidated = merge.Merge(consolidated, source, p.confidenceMargin)
	}
	if consolidated == nil {
		consolidated = models.NewConsolidatedRecord()
	}
	if len(lineItems) == 0 {
		lineItems = consolidated.LineItems
	}

	receipt := p.mapper.MapToFields(consolidated)

	var notes []string
	taxAnalysis := mapping.ClassifyTax(consolidated.RawText, amountsFrom(consolidated))
	if note, applied := mapping.ApplyFoodRule(&taxAnalysis, consolidated.RawText, receipt.StoreName); applied {
		notes = append(notes, note)
	}

	categorization := p.categorizer.Categorize(consolidated.RawText, receipt.StoreName, receipt.TotalAmount)

	split := mapping.SplitLineItems(lineItems)
	notes = append(notes, split.Notes...)

	splitAccounting := make([]map[string]any, 0, len(split.Items))
	for _, item := range split.Items {
		splitAccounting = append(splitAccounting, item.ExcelMapping)
	}

	processing := "自動処理"
	if split.NeedsReview {
		processing = "要確認"
	}

	expenseData := receipt.ExcelColumns()
	// numeric/pattern tax analysis owns the exported 税区分 column
	expenseData["税区分"] = taxAnalysis.ExcelValue
	expenseData["処理区分"] = processing
	expenseData["処理日時"] = time.Now().Format("2006-01-02 15:04:05")

	if notes == nil {
		notes = []string{}
	}

	p.logger.Debug("processed receipt",
		zap.String("store", receipt.StoreName),
		zap.Float64("total", receipt.TotalAmount),
		zap.String("category", categorization.PrimaryCategory.Category),
		zap.Bool("needs_review", split.NeedsReview))

	return ProcessedReceipt{
		Receipt:               receipt,
		IndividualExpenseData: expenseData,
		SplitAccounting:       splitAccounting,
		Categorization:        categorization,
		Metadata: ProcessingMetadata{
			ProcessingNotes:      notes,
			TaxAnalysis:          taxAnalysis,
			RequiresManualReview: split.NeedsReview,
			ExcelReady:           true,
		},
	}
}

func amountsFrom(rec *models.ConsolidatedRecord) mapping.Amounts {
	var amounts mapping.Amounts
	if v, ok := rec.TotalValue("total"); ok {
		amounts.Total = v
	}
	if v, ok := rec.TotalValue("subtotal"); ok {
		amounts.Subtotal = v
	}
	if v, ok := rec.TotalValue("tax"); ok {
		amounts.Tax = v
	}
	return amounts
}
