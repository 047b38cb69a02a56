// Package importfile turns uploaded spreadsheets into untyped ledger rows.
package importfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFormat = errors.New("unsupported file format, want .xlsx or .csv")

// Options controls how a sheet is mapped to rows.
type Options struct {
	// DefaultCategory fills rows of a sheet without a category column.
	DefaultCategory models.Category
	// RequireSupplier makes the supplier column mandatory.
	RequireSupplier bool
}

// MissingColumnsError lists required headers absent from the sheet.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// header aliases, compared after lowercasing and replacing spaces with underscores.
var aliases = map[string]string{
	"category":         "category",
	"subcategory":      "subcategory",
	"sub_category":     "subcategory",
	"item":             "subcategory",
	"type":             "type",
	"transaction_type": "type",
	"quantity":         "quantity",
	"qty":              "quantity",
	"date":             "date",
	"transaction_date": "date",
	"supplier":         "supplier",
	"vendor":           "supplier",
	"notes":            "notes",
	"note":             "notes",
	"remarks":          "notes",
}

// Parse dispatches on the file extension of name.
func Parse(name string, r io.Reader, opts Options) ([]ledger.Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return ParseXLSX(r, opts)
	case ".csv":
		return ParseCSV(r, opts)
	}
	return nil, ErrUnsupportedFormat
}

// ParseXLSX reads the first sheet of an xlsx workbook. Cells are read raw, so
// date cells arrive as Excel serial numbers; they are rewritten as days here.
func ParseXLSX(r io.Reader, opts Options) ([]ledger.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	rows, err := toRows(records, opts)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Date = serialToDay(rows[i].Date)
	}
	return rows, nil
}

// serialToDay formats an Excel serial date cell as a day. Any other value is
// returned unchanged for the ledger to validate.
func serialToDay(cell string) string {
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil || serial <= 0 {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return cell
	}
	return ledger.Day(t).Format(ledger.DateFormat)
}

// ParseCSV reads a comma separated sheet with a header line.
func ParseCSV(r io.Reader, opts Options) ([]ledger.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return toRows(records, opts)
}

func toRows(records [][]string, opts Options) ([]ledger.Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet is empty")
	}
	cols := make(map[string]int)
	for i, h := range records[0] {
		key := strings.ToLower(strings.Join(strings.Fields(strings.TrimPrefix(h, "\ufeff")), "_"))
		if field, ok := aliases[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}

	required := []string{"subcategory", "type", "quantity", "date"}
	if opts.DefaultCategory == "" {
		required = append([]string{"category"}, required...)
	}
	if opts.RequireSupplier {
		required = append(required, "supplier")
	}
	var missing []string
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	cell := func(rec []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]ledger.Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := ledger.Row{
			Index:       i + 2, // spreadsheet numbering, header on row 1
			Category:    cell(rec, "category"),
			Subcategory: cell(rec, "subcategory"),
			Type:        cell(rec, "type"),
			Quantity:    cell(rec, "quantity"),
			Date:        cell(rec, "date"),
			Supplier:    cell(rec, "supplier"),
			Notes:       cell(rec, "notes"),
		}
		if row.Category == "" {
			row.Category = string(opts.DefaultCategory)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
