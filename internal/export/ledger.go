// Package export writes sent receipts into the Excel expense ledger.
package export

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/pipeline"
)

const (
	ledgerSheet = "出金伝票データ"
	splitSheet  = "分割仕訳"
)

var ledgerColumns = []string{"日付", "店舗名", "金額", "インボイス番号", "税区分", "勘定科目", "処理区分"}

var splitColumns = []string{"摘要", "金額", "税区分", "勘定科目", "勘定科目コード"}

// LedgerWriter appends processed receipts to the company expense ledger
// workbook. Rows are only ever appended; existing content is preserved.
type LedgerWriter struct {
	path   string
	logger *zap.Logger
}

// NewLedgerWriter creates a ledger writer for the given workbook path.
func NewLedgerWriter(path string, logger *zap.Logger) *LedgerWriter {
	return &LedgerWriter{
		path:   path,
		logger: logger,
	}
}

// Append writes one receipt (and its split-accounting rows, if any) to the
// ledger, creating the workbook with headers on first use.
func (w *LedgerWriter) Append(receipts ...pipeline.ProcessedReceipt) error {
	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	for _, receipt := range receipts {
		if err := w.appendLedgerRow(f, receipt); err != nil {
			return err
		}
		if err := w.appendSplitRows(f, receipt); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	w.logger.Info("Appended receipts to ledger",
		zap.String("path", w.path),
		zap.Int("count", len(receipts)))
	return nil
}

func (w *LedgerWriter) open() (*excelize.File, error) {
	if _, err := os.Stat(w.path); err == nil {
		f, err := excelize.OpenFile(w.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		return f, nil
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, fmt.Errorf("failed to name ledger sheet: %w", err)
	}
	if _, err := f.NewSheet(splitSheet); err != nil {
		return nil, fmt.Errorf("failed to create split sheet: %w", err)
	}
	if err := writeHeader(f, ledgerSheet, ledgerColumns); err != nil {
		return nil, err
	}
	if err := writeHeader(f, splitSheet, splitColumns); err != nil {
		return nil, err
	}
	return f, nil
}

func (w *LedgerWriter) appendLedgerRow(f *excelize.File, receipt pipeline.ProcessedReceipt) error {
	row, err := nextRow(f, ledgerSheet)
	if err != nil {
		return err
	}

	data := receipt.IndividualExpenseData
	values := make([]any, len(ledgerColumns))
	for i, column := range ledgerColumns {
		values[i] = data[column]
	}

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to compute cell: %w", err)
	}
	if err := f.SetSheetRow(ledgerSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	return nil
}

func (w *LedgerWriter) appendSplitRows(f *excelize.File, receipt pipeline.ProcessedReceipt) error {
	if len(receipt.SplitAccounting) == 0 {
		return nil
	}

	row, err := nextRow(f, splitSheet)
	if err != nil {
		return err
	}

	for _, mapping := range receipt.SplitAccounting {
		values := make([]any, len(splitColumns))
		for i, column := range splitColumns {
			values[i] = mapping[column]
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("failed to compute cell: %w", err)
		}
		if err := f.SetSheetRow(splitSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write split row: %w", err)
		}
		row++
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &values); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", sheet, err)
	}
	return nil
}

func nextRow(f *excelize.File, sheet string) (int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return len(rows) + 1, nil
}
