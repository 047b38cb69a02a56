package ledger

import (
	"errors"
	"testing"
	"time"

	"press-inventory/internal/models"
)

func TestEngine_AddTransaction(t *testing.T) {
	e := newTestEngine(t)
	tx, entry, err := e.AddTransaction(testSession, NewTransaction{
		Category: models.CategoryInks, Subcategory: " Cyan ", Type: "in", Quantity: Q(8), Date: D(2025, time.April, 2), Supplier: "Sun",
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if tx.Type != models.TxIn || tx.Subcategory != "Cyan" || tx.CreatedBy != "tester" {
		t.Errorf("AddTransaction() tx = %+v", tx)
	}
	if !entry.RemainingQty.Equal(Q(8)) || entry.Supplier != "Sun" {
		t.Errorf("AddTransaction() entry = %+v", entry)
	}

	_, _, err = e.AddTransaction(testSession, NewTransaction{Category: models.CategoryInks, Subcategory: "Cyan", Type: models.TxOut, Quantity: Q(0), Date: D(2025, time.April, 2)})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("AddTransaction(zero) error = %v, want ErrValidation", err)
	}
	if got := stockOf(t, e, models.CategoryInks, "Cyan"); !got.Equal(Q(8)) {
		t.Errorf("stock after rejected add = %s, want 8", got)
	}
}

func TestEngine_DeletionRequiresRecompute(t *testing.T) {
	e := newTestEngine(t)
	add := func(typ models.TxType, qty float64) models.Transaction {
		tx, _, err := e.AddTransaction(testSession, NewTransaction{Category: models.CategoryPaper, Subcategory: "A4", Type: typ, Quantity: Q(qty), Date: D(2025, time.January, 1)})
		if err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
		return tx
	}
	add(models.TxIn, 10)
	doomed := add(models.TxIn, 7)
	add(models.TxOut, 2)

	// The raw store delete leaves the snapshot stale.
	if err := e.Store.DeleteTransaction(doomed.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if got := stockOf(t, e, models.CategoryPaper, "A4"); !got.Equal(Q(15)) {
		t.Errorf("stock before recompute = %s, want stale 15", got)
	}
	if err := e.Check(); !errors.Is(err, ErrInconsistent) {
		t.Errorf("Check() on stale snapshot error = %v, want ErrInconsistent", err)
	}
	if _, err := e.Projector.Recompute(doomed.Key()); err != nil {
		t.Fatalf("Recompute() error = %v", err)
	}
	if got := stockOf(t, e, models.CategoryPaper, "A4"); !got.Equal(Q(8)) {
		t.Errorf("stock after recompute = %s, want 8", got)
	}

	// The engine delete recomputes on its own.
	last := add(models.TxIn, 1)
	removed, entry, err := e.DeleteTransaction(testSession, last.ID)
	if err != nil {
		t.Fatalf("Engine.DeleteTransaction() error = %v", err)
	}
	if removed.ID != last.ID {
		t.Errorf("removed ID = %d, want %d", removed.ID, last.ID)
	}
	if !entry.RemainingQty.Equal(Q(8)) {
		t.Errorf("entry after Engine.DeleteTransaction() = %s, want 8", entry.RemainingQty)
	}
	if _, _, err := e.DeleteTransaction(testSession, last.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestEngine_RestoreTransaction(t *testing.T) {
	e := newTestEngine(t)
	tx, _, err := e.AddTransaction(testSession, NewTransaction{Category: models.CategoryChemicals, Subcategory: "Fixer", Type: models.TxIn, Quantity: Q(5), Date: D(2025, time.January, 1)})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	removed, _, err := e.DeleteTransaction(testSession, tx.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	restored, entry, err := e.RestoreTransaction(testSession, removed)
	if err != nil {
		t.Fatalf("RestoreTransaction() error = %v", err)
	}
	if restored.ID == tx.ID {
		t.Errorf("RestoreTransaction() reused ID %d", tx.ID)
	}
	if !entry.RemainingQty.Equal(Q(5)) {
		t.Errorf("entry after restore = %s, want 5", entry.RemainingQty)
	}
}

func TestEngine_DeleteSubcategory(t *testing.T) {
	testCases := []struct {
		name          string
		withTx        bool
		wantTxRemoved int
		wantAfter     string // remaining quantity after Rebuild, "" if absent
	}{
		{name: "stock only", withTx: false, wantTxRemoved: 0, wantAfter: "7"},
		{name: "with transactions", withTx: true, wantTxRemoved: 2, wantAfter: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			for _, q := range []float64{4, 3} {
				if _, _, err := e.AddTransaction(testSession, NewTransaction{Category: models.CategoryPolyFilms, Subcategory: "PET 12", Type: models.TxIn, Quantity: Q(q), Date: D(2025, time.January, 1)}); err != nil {
					t.Fatalf("AddTransaction() error = %v", err)
				}
			}
			stock, txs, err := e.DeleteSubcategory(testSession, models.SKU{Category: models.CategoryPolyFilms, Subcategory: "pet 12"}, tc.withTx)
			if err != nil {
				t.Fatalf("DeleteSubcategory() error = %v", err)
			}
			if stock != 1 {
				t.Errorf("removed stock entries = %d, want 1", stock)
			}
			if len(txs) != tc.wantTxRemoved {
				t.Errorf("removed transactions = %d, want %d", len(txs), tc.wantTxRemoved)
			}
			if _, err := e.Rebuild(); err != nil {
				t.Fatalf("Rebuild() error = %v", err)
			}
			entry, err := e.Store.GetStock(models.SKU{Category: models.CategoryPolyFilms, Subcategory: "PET 12"})
			switch {
			case tc.wantAfter == "" && !errors.Is(err, ErrNotFound):
				t.Errorf("GetStock() after rebuild = %+v, %v, want not found", entry, err)
			case tc.wantAfter != "" && (err != nil || entry.RemainingQty.String() != tc.wantAfter):
				t.Errorf("GetStock() after rebuild = %+v, %v, want %s", entry, err, tc.wantAfter)
			}
		})
	}
}

func TestEngine_DeleteSubcategoryNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.DeleteSubcategory(testSession, models.SKU{Category: models.CategoryInks, Subcategory: "Gold"}, true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSubcategory() error = %v, want ErrNotFound", err)
	}
}

func TestEngine_Repair(t *testing.T) {
	e := newTestEngine(t)
	if _, _, err := e.AddTransaction(testSession, NewTransaction{Category: models.CategoryPaper, Subcategory: "A4", Type: models.TxIn, Quantity: Q(10), Date: D(2025, time.June, 1)}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	repaired, err := e.Repair()
	if err != nil || repaired != nil {
		t.Fatalf("Repair() on consistent snapshot = %v, %v, want nil, nil", repaired, err)
	}

	if err := e.Store.UpsertStock(models.StockEntry{Category: models.CategoryPaper, Subcategory: "A4", RemainingQty: Q(3)}); err != nil {
		t.Fatalf("UpsertStock() error = %v", err)
	}
	repaired, err = e.Repair()
	if err != nil {
		t.Fatalf("Repair() error = %v", err)
	}
	if len(repaired) != 1 || !repaired[0].Snapshot.Equal(Q(3)) || !repaired[0].Ledger.Equal(Q(10)) {
		t.Errorf("Repair() = %+v, want one mismatch 3 vs 10", repaired)
	}
	if got := stockOf(t, e, models.CategoryPaper, "A4"); !got.Equal(Q(10)) {
		t.Errorf("stock after Repair() = %s, want 10", got)
	}
}

func TestSession_Actor(t *testing.T) {
	testCases := []struct {
		s    Session
		want string
	}{
		{Session{UserID: 3, UserName: "admin"}, "admin"},
		{Session{UserID: 3}, "user#3"},
		{Session{}, "system"},
	}
	for _, tc := range testCases {
		if got := tc.s.Actor(); got != tc.want {
			t.Errorf("%+v.Actor() = %q, want %q", tc.s, got, tc.want)
		}
	}
}
