package inventory

import (
	"testing"

	"press-inventory/internal/models"

	"github.com/shopspring/decimal"
)

func TestParseSize(t *testing.T) {
	testCases := []struct {
		in     string
		w, h   float64
		wantOK bool
	}{
		{"70x100", 70, 100, true},
		{"Art 64 X 90", 64, 90, true},
		{"SRA3 32×45", 32, 45, true},
		{"20.5*30", 20.5, 30, true},
		{"A4", 0, 0, false},
		{"0x10", 0, 0, false},
	}
	for _, tc := range testCases {
		w, h, ok := ParseSize(tc.in)
		if ok != tc.wantOK || w != tc.w || h != tc.h {
			t.Errorf("ParseSize(%q) = %v, %v, %v, want %v, %v, %v", tc.in, w, h, ok, tc.w, tc.h, tc.wantOK)
		}
	}
}

func TestFitSheet(t *testing.T) {
	testCases := []struct {
		name            string
		sw, sh, rw, rh  float64
		wantPieces      int
		wantOrientation string
		wantOK          bool
	}{
		{"exact grid", 70, 100, 35, 50, 4, "normal", true},
		{"rotation wins", 100, 30, 30, 50, 2, "rotated", true},
		{"tie keeps normal", 60, 60, 30, 30, 4, "normal", true},
		{"too big", 20, 20, 30, 30, 0, "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FitSheet(tc.sw, tc.sh, tc.rw, tc.rh)
			if ok != tc.wantOK {
				t.Fatalf("FitSheet() ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if got.Pieces != tc.wantPieces || got.Orientation != tc.wantOrientation {
				t.Errorf("FitSheet() = %+v, want %d %s", got, tc.wantPieces, tc.wantOrientation)
			}
			if got.Pieces*int(tc.rw*tc.rh)+int(got.WasteArea) != int(tc.sw*tc.sh) {
				t.Errorf("pieces and waste do not cover the sheet: %+v", got)
			}
		})
	}
}

func TestEvaluatePaperFit(t *testing.T) {
	entries := []models.StockEntry{
		{Subcategory: "A4", RemainingQty: decimal.NewFromInt(100)},
		{Subcategory: "64x90", RemainingQty: decimal.NewFromInt(10)},
		{Subcategory: "70x100", RemainingQty: decimal.NewFromInt(5)},
		{Subcategory: "10x10", RemainingQty: decimal.NewFromInt(50)},
	}
	got := EvaluatePaperFit(15, 20, entries)
	if len(got) != 2 {
		t.Fatalf("EvaluatePaperFit() returned %d options, want 2: %+v", len(got), got)
	}
	if got[0].Subcategory != "70x100" || got[1].Subcategory != "64x90" {
		t.Errorf("ranking = %s, %s, want 70x100 then 64x90", got[0].Subcategory, got[1].Subcategory)
	}
	want := decimal.NewFromInt(int64(got[0].Pieces * 5))
	if !got[0].TotalPieces.Equal(want) {
		t.Errorf("TotalPieces = %s, want %s", got[0].TotalPieces, want)
	}
}
