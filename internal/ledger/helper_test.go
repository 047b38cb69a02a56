package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"press-inventory/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestEngine opens a fresh sqlite database in a temp dir, migrated for the ledger tables.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	if err := db.AutoMigrate(&models.Transaction{}, &models.StockEntry{}, &models.Template{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB() error = %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return NewEngine(db)
}

// D is a helper for tests to build a calendar day.
func D(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// Q is a helper for tests to build a quantity from a const.
func Q(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

var testSession = Session{UserID: 1, UserName: "tester"}

// appendTx writes a transaction straight into the store, bypassing the projector.
func appendTx(t *testing.T, e *Engine, c models.Category, sub string, typ models.TxType, qty float64, day time.Time, supplier string) models.Transaction {
	t.Helper()
	tx := models.Transaction{Category: c, Subcategory: sub, Type: typ, Quantity: Q(qty), Date: day, Supplier: supplier}
	if err := e.Store.AppendTransaction(&tx); err != nil {
		t.Fatalf("AppendTransaction(%s) error = %v", tx.Key(), err)
	}
	return tx
}

func stockOf(t *testing.T, e *Engine, c models.Category, sub string) decimal.Decimal {
	t.Helper()
	entry, err := e.Store.GetStock(models.SKU{Category: c, Subcategory: sub})
	if err != nil {
		t.Fatalf("GetStock(%s/%s) error = %v", c, sub, err)
	}
	return entry.RemainingQty
}
