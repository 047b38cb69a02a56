package inventory

import (
	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CategoryTotals struct {
	Category models.Category `json:"category"`
	ledger.Totals
	Net decimal.Decimal `json:"net"`
}

type ReportResponse struct {
	Summary      ledger.Summary       `json:"summary"`
	ByCategory   []CategoryTotals     `json:"by_category"`
	Transactions []models.Transaction `json:"transactions"`
}

// GET /api/reports?from=&to=&category=&type=&subcategory=&q=
func ReportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		crit, err := parseCriteria(c)
		if err != nil {
			return err
		}
		txs, err := d.Engine.Query.Filter(crit)
		if err != nil {
			return err
		}
		return c.JSON(buildReport(txs))
	}
}

func buildReport(txs []models.Transaction) ReportResponse {
	agg := ledger.AggregateByCategory(txs)
	by := make([]CategoryTotals, 0, len(agg))
	for _, cat := range models.Categories {
		t, ok := agg[cat]
		if !ok {
			continue
		}
		by = append(by, CategoryTotals{Category: cat, Totals: t, Net: t.Net()})
	}
	return ReportResponse{
		Summary:      ledger.Summarize(txs),
		ByCategory:   by,
		Transactions: txs,
	}
}
