package ledger

import (
	"errors"
	"strings"
	"time"

	"press-inventory/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row is one untyped line of an external batch, as read from a spreadsheet.
// Index is the row position in the source, reported back on rejection.
type Row struct {
	Index       int
	Category    string
	Subcategory string
	Type        string
	Quantity    string
	Date        string
	Supplier    string
	Notes       string
}

// NormalizedRow is a Row that passed validation.
type NormalizedRow struct {
	Index       int
	Category    models.Category
	Subcategory string
	Type        models.TxType
	Quantity    decimal.Decimal
	Date        time.Time
	Supplier    string
	Notes       string
}

// Accepted links an imported row to the transaction it created.
type Accepted struct {
	Row           int  `json:"row"`
	TransactionID uint `json:"transaction_id"`
}

// Rejection explains why a row was skipped.
type Rejection struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult is the outcome of ImportBatch.
type ImportResult struct {
	BatchID  string              `json:"batch_id"`
	Accepted []Accepted          `json:"accepted"`
	Rejected []Rejection         `json:"rejected"`
	Stock    []models.StockEntry `json:"stock"` // recomputed entries of the touched keys
}

// Importer merges external batches into the ledger.
//
// Imports are additive: every accepted row is a new movement. Importing the
// same file twice records its movements twice and doubles their stock effect.
type Importer struct {
	store *Store
}

func NewImporter(store *Store) *Importer {
	return &Importer{store: store}
}

// ValidateRow checks and normalizes a single row. The returned error is a
// *ValidationError naming the first offending field.
func (im *Importer) ValidateRow(r Row) (NormalizedRow, error) {
	return ValidateRow(r)
}

// ValidateRow is the store-independent form of Importer.ValidateRow.
func ValidateRow(r Row) (NormalizedRow, error) {
	n := NormalizedRow{
		Index:       r.Index,
		Subcategory: strings.TrimSpace(r.Subcategory),
		Supplier:    strings.TrimSpace(r.Supplier),
		Notes:       strings.TrimSpace(r.Notes),
	}
	if strings.TrimSpace(r.Category) == "" {
		return n, invalid("category", "is required")
	}
	c, err := models.ParseCategory(r.Category)
	if err != nil {
		return n, invalid("category", "%v", err)
	}
	n.Category = c
	if n.Subcategory == "" {
		return n, invalid("subcategory", "is required")
	}
	if strings.TrimSpace(r.Type) == "" {
		return n, invalid("type", "is required")
	}
	t, err := models.ParseTxType(r.Type)
	if err != nil {
		return n, invalid("type", "%v", err)
	}
	n.Type = t
	q, err := ParseQuantity(r.Quantity)
	if err != nil {
		return n, err
	}
	n.Quantity = q
	if strings.TrimSpace(r.Date) == "" {
		return n, invalid("date", "is required")
	}
	d, err := ParseDate(r.Date)
	if err != nil {
		return n, invalid("date", "%v", err)
	}
	n.Date = d
	return n, nil
}

// QuantityScale is the number of decimal places the quantity columns store.
const QuantityScale = 4

// ParseQuantity reads a strictly positive amount. Thousands separators are ignored.
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, invalid("quantity", "is required")
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("quantity", "%q is not a number", s)
	}
	if !q.IsPositive() {
		return decimal.Zero, invalid("quantity", "must be greater than zero, got %s", q)
	}
	if !q.Equal(q.Round(QuantityScale)) {
		return decimal.Zero, invalid("quantity", "at most %d decimal places, got %s", QuantityScale, q)
	}
	return q, nil
}

// ImportBatch appends every valid row, in order, then recomputes each touched
// key exactly once. Invalid rows are reported in Rejected and never abort the
// batch. The appends and recomputes share one database transaction: a store
// failure rolls the whole batch back and is returned as is.
func (im *Importer) ImportBatch(sess Session, rows []Row) (ImportResult, error) {
	res := ImportResult{
		BatchID:  uuid.NewString(),
		Accepted: []Accepted{},
		Rejected: []Rejection{},
	}
	valid := make([]NormalizedRow, 0, len(rows))
	for _, r := range rows {
		n, err := ValidateRow(r)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				res.Rejected = append(res.Rejected, Rejection{Row: r.Index, Field: verr.Field, Reason: verr.Reason})
				continue
			}
			return res, err
		}
		valid = append(valid, n)
	}
	if len(valid) == 0 {
		return res, nil
	}

	err := im.store.Transaction(func(s *Store) error {
		var touched []models.SKU
		seen := make(map[models.SKU]bool)
		for _, n := range valid {
			tx := models.Transaction{
				Category:    n.Category,
				Subcategory: n.Subcategory,
				Type:        n.Type,
				Quantity:    n.Quantity,
				Date:        n.Date,
				Supplier:    n.Supplier,
				Notes:       n.Notes,
				CreatedBy:   sess.Actor(),
				ImportBatch: res.BatchID,
			}
			if err := s.AppendTransaction(&tx); err != nil {
				return err
			}
			res.Accepted = append(res.Accepted, Accepted{Row: n.Index, TransactionID: tx.ID})
			if !seen[tx.Key()] {
				seen[tx.Key()] = true
				touched = append(touched, tx.Key())
			}
		}
		projector := NewProjector(s)
		for _, key := range touched {
			e, err := projector.Recompute(key)
			if err != nil {
				return err
			}
			res.Stock = append(res.Stock, e)
		}
		return nil
	})
	if err != nil {
		res.Accepted = []Accepted{}
		res.Stock = nil
		return res, err
	}
	return res, nil
}
