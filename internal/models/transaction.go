package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction is one immutable stock movement of the ledger.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Category    Category        `gorm:"size:20;index:idx_tx_key,priority:1;not null" json:"category"`
	Subcategory string          `gorm:"size:150;index:idx_tx_key,priority:2;not null" json:"subcategory"`
	Type        TxType          `gorm:"size:3;not null" json:"type"`
	Quantity    decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"quantity"`
	Date        time.Time       `gorm:"index;not null" json:"date"` // movement day, UTC midnight
	Supplier    string          `gorm:"size:150" json:"supplier"`
	Notes       string          `gorm:"size:1000" json:"notes"`
	CreatedBy   string          `gorm:"size:100" json:"created_by"`
	ImportBatch string          `gorm:"size:36;index" json:"import_batch,omitempty"` // empty for single entries
	CreatedAt   time.Time       `json:"created_at"`
}

// Key returns the stock-keeping unit the transaction moves.
func (t Transaction) Key() SKU { return SKU{Category: t.Category, Subcategory: t.Subcategory} }

// Signed returns the quantity with the sign of its direction.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TxOut {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// SKU identifies a distinct trackable item.
type SKU struct {
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory"`
}

func (k SKU) String() string { return string(k.Category) + "/" + k.Subcategory }
