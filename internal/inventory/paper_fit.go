package inventory

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var sizePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)`)

// ParseSize extracts "WxH" from text such as "Art paper 70x100". The
// separators ×, * and X are accepted.
func ParseSize(text string) (w, h float64, ok bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.NewReplacer("×", "x", "*", "x").Replace(t)
	m := sizePattern.FindStringSubmatch(t)
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(m[1], 64)
	h, errH := strconv.ParseFloat(m[2], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// Layout is the best way to cut pieces from one sheet.
type Layout struct {
	Pieces      int     `json:"pieces_per_sheet"`
	Orientation string  `json:"orientation"` // "normal" or "rotated"
	Rows        int     `json:"rows"`
	Cols        int     `json:"cols"`
	WasteArea   float64 `json:"waste_area"`
	Utilization float64 `json:"utilization"`
}

// FitSheet returns the better of the normal and rotated grid layouts of
// pieces of reqW x reqH on a sheet, or false if none fits.
func FitSheet(sheetW, sheetH, reqW, reqH float64) (Layout, bool) {
	if math.Min(sheetW, sheetH) <= 0 || math.Min(reqW, reqH) <= 0 {
		return Layout{}, false
	}
	sheetArea := sheetW * sheetH
	pieceArea := reqW * reqH
	layout := func(orientation string, pw, ph float64) Layout {
		cols := int(math.Floor(sheetW / pw))
		rows := int(math.Floor(sheetH / ph))
		n := cols * rows
		return Layout{
			Pieces:      n,
			Orientation: orientation,
			Rows:        rows,
			Cols:        cols,
			WasteArea:   math.Max(0, sheetArea-float64(n)*pieceArea),
			Utilization: float64(n) * pieceArea / sheetArea,
		}
	}
	var best Layout
	found := false
	for _, l := range []Layout{layout("normal", reqW, reqH), layout("rotated", reqH, reqW)} {
		if l.Pieces <= 0 {
			continue
		}
		if !found || l.Pieces > best.Pieces || (l.Pieces == best.Pieces && l.WasteArea < best.WasteArea) {
			best, found = l, true
		}
	}
	return best, found
}

// FitOption is one stocked paper size able to yield the requested piece.
type FitOption struct {
	Subcategory  string          `json:"subcategory"`
	SheetWidth   float64         `json:"sheet_width"`
	SheetHeight  float64         `json:"sheet_height"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
	Layout
	TotalPieces decimal.Decimal `json:"total_pieces"`
}

// EvaluatePaperFit ranks the entries whose subcategory names a size by
// pieces per sheet, then waste, then utilization.
func EvaluatePaperFit(reqW, reqH float64, entries []models.StockEntry) []FitOption {
	out := []FitOption{}
	for _, e := range entries {
		w, h, ok := ParseSize(e.Subcategory)
		if !ok {
			continue
		}
		l, ok := FitSheet(w, h, reqW, reqH)
		if !ok {
			continue
		}
		out = append(out, FitOption{
			Subcategory:  e.Subcategory,
			SheetWidth:   w,
			SheetHeight:  h,
			RemainingQty: e.RemainingQty,
			Layout:       l,
			TotalPieces:  e.RemainingQty.Mul(decimal.NewFromInt(int64(l.Pieces))),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pieces != b.Pieces {
			return a.Pieces > b.Pieces
		}
		if a.WasteArea != b.WasteArea {
			return a.WasteArea < b.WasteArea
		}
		return a.Utilization > b.Utilization
	})
	return out
}

// GET /api/paper-fit?size=15x20&min_pieces=1
// Only Paper entries with stock on hand are considered.
func PaperFitHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, h, ok := ParseSize(c.Query("size"))
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "size must look like 15x20")
		}
		entries, err := d.Engine.Query.CurrentStock(models.CategoryPaper)
		if err != nil {
			return err
		}
		opts := EvaluatePaperFit(w, h, entries)
		if minPieces := c.QueryInt("min_pieces", 0); minPieces > 0 {
			kept := opts[:0]
			for _, o := range opts {
				if o.Pieces >= minPieces {
					kept = append(kept, o)
				}
			}
			opts = kept
		}
		return c.JSON(fiber.Map{
			"width":   w,
			"height":  h,
			"options": opts,
		})
	}
}
