package ledger

import (
	"errors"
	"testing"
	"time"

	"press-inventory/internal/models"
)

func TestStore_AppendTransaction(t *testing.T) {
	e := newTestEngine(t)
	now := time.Date(2025, time.March, 3, 10, 30, 0, 0, time.UTC)
	e.Store.now = func() time.Time { return now }

	testCases := []struct {
		name      string
		tx        models.Transaction
		wantField string
	}{
		{
			name: "valid",
			tx:   models.Transaction{Category: models.CategoryPaper, Subcategory: " A4 ", Type: models.TxIn, Quantity: Q(10), Date: D(2025, time.March, 1)},
		},
		{
			name:      "unknown category",
			tx:        models.Transaction{Category: "Wood", Subcategory: "A4", Type: models.TxIn, Quantity: Q(10), Date: D(2025, time.March, 1)},
			wantField: "category",
		},
		{
			name:      "blank subcategory",
			tx:        models.Transaction{Category: models.CategoryPaper, Subcategory: "  ", Type: models.TxIn, Quantity: Q(10), Date: D(2025, time.March, 1)},
			wantField: "subcategory",
		},
		{
			name:      "zero quantity",
			tx:        models.Transaction{Category: models.CategoryInks, Subcategory: "Cyan", Type: models.TxOut, Quantity: Q(0), Date: D(2025, time.March, 1)},
			wantField: "quantity",
		},
		{
			name:      "negative quantity",
			tx:        models.Transaction{Category: models.CategoryInks, Subcategory: "Cyan", Type: models.TxOut, Quantity: Q(-2), Date: D(2025, time.March, 1)},
			wantField: "quantity",
		},
		{
			name:      "quantity below storage scale",
			tx:        models.Transaction{Category: models.CategoryInks, Subcategory: "Cyan", Type: models.TxIn, Quantity: Q(0.00001), Date: D(2025, time.March, 1)},
			wantField: "quantity",
		},
		{
			name:      "bad type",
			tx:        models.Transaction{Category: models.CategoryInks, Subcategory: "Cyan", Type: "MOVE", Quantity: Q(2), Date: D(2025, time.March, 1)},
			wantField: "type",
		},
		{
			name:      "missing date",
			tx:        models.Transaction{Category: models.CategoryInks, Subcategory: "Cyan", Type: models.TxIn, Quantity: Q(2)},
			wantField: "date",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tx := tc.tx
			err := e.Store.AppendTransaction(&tx)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("AppendTransaction() error = %v", err)
				}
				if tx.ID == 0 {
					t.Errorf("AppendTransaction() did not assign an ID")
				}
				if !tx.CreatedAt.Equal(now) {
					t.Errorf("CreatedAt = %v, want %v", tx.CreatedAt, now)
				}
				if tx.Subcategory != "A4" {
					t.Errorf("Subcategory = %q, want trimmed %q", tx.Subcategory, "A4")
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("AppendTransaction() error = %v, want *ValidationError", err)
			}
			if verr.Field != tc.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tc.wantField)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("errors.Is(err, ErrValidation) = false")
			}
		})
	}
}

func TestStore_IDsAreMonotonic(t *testing.T) {
	e := newTestEngine(t)
	var last uint
	for i := 0; i < 5; i++ {
		tx := appendTx(t, e, models.CategoryPaper, "A4", models.TxIn, 1, D(2025, time.January, 1), "")
		if tx.ID <= last {
			t.Fatalf("ID %d not greater than previous %d", tx.ID, last)
		}
		last = tx.ID
	}
	txs, err := e.Store.ReadAllTransactions()
	if err != nil {
		t.Fatalf("ReadAllTransactions() error = %v", err)
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].ID <= txs[i-1].ID {
			t.Errorf("ReadAllTransactions() not in insertion order at %d", i)
		}
	}
}

func TestStore_NotFound(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Store.DeleteTransaction(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTransaction(42) error = %v, want ErrNotFound", err)
	}
	if _, err := e.Store.GetTransaction(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTransaction(42) error = %v, want ErrNotFound", err)
	}
	if _, err := e.Store.GetStock(models.SKU{Category: models.CategoryInks, Subcategory: "Black"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetStock() error = %v, want ErrNotFound", err)
	}
	if err := e.Store.DeleteTemplate(7); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTemplate(7) error = %v, want ErrNotFound", err)
	}
}

func TestStore_UpsertStock(t *testing.T) {
	e := newTestEngine(t)
	key := models.SKU{Category: models.CategoryChemicals, Subcategory: "Fountain"}
	for _, qty := range []float64{5, 7.5, -1} {
		if err := e.Store.UpsertStock(models.StockEntry{Category: key.Category, Subcategory: key.Subcategory, RemainingQty: Q(qty)}); err != nil {
			t.Fatalf("UpsertStock(%v) error = %v", qty, err)
		}
	}
	all, err := e.Store.ReadAllStock()
	if err != nil {
		t.Fatalf("ReadAllStock() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("ReadAllStock() returned %d entries, want 1", len(all))
	}
	if got := all[0].RemainingQty; !got.Equal(Q(-1)) {
		t.Errorf("RemainingQty = %s, want -1", got)
	}
}

func TestStore_Templates(t *testing.T) {
	e := newTestEngine(t)
	tpl := models.Template{Name: "Daily A4", Category: models.CategoryPaper, Subcategory: "A4", Supplier: "ACME"}
	if err := e.Store.AppendTemplate(&tpl); err != nil {
		t.Fatalf("AppendTemplate() error = %v", err)
	}

	dup := models.Template{Name: "Daily A4", Category: models.CategoryPaper, Subcategory: "A3"}
	if err := e.Store.AppendTemplate(&dup); !errors.Is(err, ErrValidation) {
		t.Errorf("AppendTemplate(duplicate) error = %v, want ErrValidation", err)
	}
	other := models.Template{Name: "Daily A4", Category: models.CategoryInks, Subcategory: "Cyan"}
	if err := e.Store.AppendTemplate(&other); err != nil {
		t.Errorf("AppendTemplate(same name, other category) error = %v", err)
	}

	got, err := e.Store.FindTemplate(models.CategoryPaper, "Daily A4")
	if err != nil {
		t.Fatalf("FindTemplate() error = %v", err)
	}
	if got.ID != tpl.ID || got.Supplier != "ACME" {
		t.Errorf("FindTemplate() = %+v, want %+v", got, tpl)
	}

	renamed, err := e.Store.RenameTemplate(tpl.ID, "Weekly A4")
	if err != nil {
		t.Fatalf("RenameTemplate() error = %v", err)
	}
	if renamed.Name != "Weekly A4" {
		t.Errorf("RenameTemplate() name = %q", renamed.Name)
	}
	if _, err := e.Store.FindTemplate(models.CategoryPaper, "Daily A4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindTemplate(old name) error = %v, want ErrNotFound", err)
	}

	if err := e.Store.DeleteTemplate(tpl.ID); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}
	all, err := e.Store.ReadAllTemplates()
	if err != nil {
		t.Fatalf("ReadAllTemplates() error = %v", err)
	}
	if len(all) != 1 || all[0].Category != models.CategoryInks {
		t.Errorf("ReadAllTemplates() = %+v, want only the Inks template", all)
	}
}

func TestStore_TransactionRollsBack(t *testing.T) {
	e := newTestEngine(t)
	boom := errors.New("boom")
	err := e.Store.Transaction(func(s *Store) error {
		tx := models.Transaction{Category: models.CategoryPaper, Subcategory: "A4", Type: models.TxIn, Quantity: Q(1), Date: D(2025, time.January, 1)}
		if err := s.AppendTransaction(&tx); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction() error = %v, want %v", err, boom)
	}
	txs, err := e.Store.ReadAllTransactions()
	if err != nil {
		t.Fatalf("ReadAllTransactions() error = %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("ReadAllTransactions() = %d rows after rollback, want 0", len(txs))
	}
}
