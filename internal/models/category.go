package models

import (
	"fmt"
	"strings"
)

// Category is one of the fixed material families tracked by the ledger.
type Category string

const (
	CategoryPaper     Category = "Paper"
	CategoryInks      Category = "Inks"
	CategoryChemicals Category = "Chemicals"
	CategoryPolyFilms Category = "Poly Films"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPaper, CategoryInks, CategoryChemicals, CategoryPolyFilms}

// ParseCategory matches s against the known categories, ignoring case and
// inner spacing ("poly films", "PolyFilms" and "POLY FILMS" are all accepted).
func ParseCategory(s string) (Category, error) {
	key := foldKey(s)
	for _, c := range Categories {
		if foldKey(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// TxType is the direction of a stock movement.
type TxType string

const (
	TxIn  TxType = "IN"
	TxOut TxType = "OUT"
)

// ParseTxType accepts "in"/"out" in any casing, and the "Stock In"/"Stock Out"
// labels used by older spreadsheets.
func ParseTxType(s string) (TxType, error) {
	switch foldKey(s) {
	case "in", "stockin":
		return TxIn, nil
	case "out", "stockout":
		return TxOut, nil
	}
	return "", fmt.Errorf("unknown transaction type %q want IN or OUT", s)
}

func (t TxType) Valid() bool { return t == TxIn || t == TxOut }

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
