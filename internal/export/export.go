// Package export writes ledger transactions and stock snapshots as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/xuri/excelize/v2"
)

var (
	transactionHeader = []string{"id", "date", "category", "subcategory", "type", "quantity", "supplier", "notes", "created_by", "created_at"}
	stockHeader       = []string{"category", "subcategory", "remaining_qty", "supplier", "last_updated"}
)

// FileName returns the download name for a report over [from, to].
// Zero bounds are written as "all".
func FileName(from, to time.Time, ext string) string {
	f := func(t time.Time) string {
		if t.IsZero() {
			return "all"
		}
		return t.Format(ledger.DateFormat)
	}
	return fmt.Sprintf("stock_report_%s_%s.%s", f(from), f(to), ext)
}

func transactionRecord(tx models.Transaction) []string {
	return []string{
		fmt.Sprint(tx.ID),
		tx.Date.Format(ledger.DateFormat),
		string(tx.Category),
		tx.Subcategory,
		string(tx.Type),
		tx.Quantity.String(),
		tx.Supplier,
		tx.Notes,
		tx.CreatedBy,
		tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func stockRecord(e models.StockEntry) []string {
	return []string{
		string(e.Category),
		e.Subcategory,
		e.RemainingQty.String(),
		e.Supplier,
		e.LastUpdated.UTC().Format(time.RFC3339),
	}
}

func WriteTransactionsCSV(w io.Writer, txs []models.Transaction) error {
	records := make([][]string, 0, len(txs))
	for _, tx := range txs {
		records = append(records, transactionRecord(tx))
	}
	return writeCSV(w, transactionHeader, records)
}

func WriteStockCSV(w io.Writer, entries []models.StockEntry) error {
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, stockRecord(e))
	}
	return writeCSV(w, stockHeader, records)
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteTransactionsXLSX writes a workbook with a "Transactions" sheet. Dates
// are real date cells and quantities are numbers.
func WriteTransactionsXLSX(w io.Writer, txs []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := newSheet(f, "Transactions", transactionHeader); err != nil {
		return err
	}
	for i, tx := range txs {
		qty, _ := tx.Quantity.Float64()
		row := []any{tx.ID, tx.Date, string(tx.Category), tx.Subcategory, string(tx.Type), qty, tx.Supplier, tx.Notes, tx.CreatedBy, tx.CreatedAt.UTC()}
		if err := setRow(f, "Transactions", i+2, row); err != nil {
			return err
		}
	}
	return writeWorkbook(f, w)
}

// WriteStockXLSX writes a workbook with a "Stock" sheet.
func WriteStockXLSX(w io.Writer, entries []models.StockEntry) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := newSheet(f, "Stock", stockHeader); err != nil {
		return err
	}
	for i, e := range entries {
		qty, _ := e.RemainingQty.Float64()
		row := []any{string(e.Category), e.Subcategory, qty, e.Supplier, e.LastUpdated.UTC()}
		if err := setRow(f, "Stock", i+2, row); err != nil {
			return err
		}
	}
	return writeWorkbook(f, w)
}

// newSheet renames the default sheet, writes the bold header and freezes it.
func newSheet(f *excelize.File, name string, header []string) error {
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return err
	}
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := setRow(f, name, 1, cells); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeWorkbook(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
