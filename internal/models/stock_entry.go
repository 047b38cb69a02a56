package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockEntry is the materialized stock of one SKU. It is derived from the
// transactions and must only be written by the projector.
type StockEntry struct {
	ID           uint            `gorm:"primaryKey" json:"-"`
	Category     Category        `gorm:"size:20;uniqueIndex:idx_stock_key,priority:1;not null" json:"category"`
	Subcategory  string          `gorm:"size:150;uniqueIndex:idx_stock_key,priority:2;not null" json:"subcategory"`
	RemainingQty decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"remaining_qty"`
	LastUpdated  time.Time       `json:"last_updated"`
	Supplier     string          `gorm:"size:150" json:"supplier"`
}

func (e StockEntry) Key() SKU { return SKU{Category: e.Category, Subcategory: e.Subcategory} }
