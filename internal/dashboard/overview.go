// Package dashboard serves the summary views of the inventory front page.
package dashboard

import (
	"strings"

	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CategoryOverview struct {
	Category  models.Category `json:"category"`
	Items     int             `json:"items"` // subcategories holding stock
	Remaining decimal.Decimal `json:"remaining"`
	LowStock  int             `json:"low_stock"`
}

type OverviewResponse struct {
	Categories []CategoryOverview   `json:"categories"`
	Alerts     []models.StockEntry  `json:"alerts"`
	Recent     []models.Transaction `json:"recent"`
	Threshold  decimal.Decimal      `json:"threshold"`
}

func optionalCategory(c *fiber.Ctx) (*models.Category, error) {
	v := strings.TrimSpace(c.Query("category"))
	if v == "" || strings.EqualFold(v, "all") {
		return nil, nil
	}
	cat, err := models.ParseCategory(v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return &cat, nil
}

// Overview summarizes the snapshot per category. Every category is listed,
// including the ones without entries.
func Overview(stock []models.StockEntry, threshold decimal.Decimal) []CategoryOverview {
	byCat := make(map[models.Category]*CategoryOverview, len(models.Categories))
	out := make([]CategoryOverview, len(models.Categories))
	for i, cat := range models.Categories {
		out[i] = CategoryOverview{Category: cat, Remaining: decimal.Zero}
		byCat[cat] = &out[i]
	}
	for _, e := range stock {
		o, ok := byCat[e.Category]
		if !ok {
			continue
		}
		if e.RemainingQty.IsPositive() {
			o.Items++
		}
		o.Remaining = o.Remaining.Add(e.RemainingQty)
		if e.RemainingQty.LessThan(threshold) {
			o.LowStock++
		}
	}
	return out
}

// GET /api/dashboard/overview?threshold=10
func OverviewHandler(engine *ledger.Engine, defaultThreshold decimal.Decimal) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold := defaultThreshold
		if v := strings.TrimSpace(c.Query("threshold")); v != "" {
			t, err := decimal.NewFromString(v)
			if err != nil || t.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "threshold must be a non-negative number")
			}
			threshold = t
		}

		stock, err := engine.Query.Stock(nil)
		if err != nil {
			return err
		}
		alerts, err := engine.Query.LowStock(threshold)
		if err != nil {
			return err
		}
		recent, err := engine.Query.Recent(10)
		if err != nil {
			return err
		}

		return c.JSON(OverviewResponse{
			Categories: Overview(stock, threshold),
			Alerts:     alerts,
			Recent:     recent,
			Threshold:  threshold,
		})
	}
}

// Register mounts the dashboard under r.
func Register(r fiber.Router, engine *ledger.Engine, threshold decimal.Decimal) {
	r.Get("/overview", OverviewHandler(engine, threshold))
	r.Get("/movement-chart", MovementChartHandler(engine))
}
