package dashboard

import (
	"sort"
	"time"

	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type MovementPoint struct {
	Label string          `json:"label"` // day, week start or month start
	In    decimal.Decimal `json:"in"`
	Out   decimal.Decimal `json:"out"`
	Net   decimal.Decimal `json:"net"`
}

type MovementChartResponse struct {
	Category    *models.Category `json:"category,omitempty"`
	Period      string           `json:"period"` // daily | weekly | monthly
	From        string           `json:"from"`
	To          string           `json:"to"`
	Points      []MovementPoint  `json:"points"`
	GrandTotals ledger.Totals    `json:"grand_totals"`
}

// window returns the first bucket start and the last day covered for count
// buckets of period ending at now. Unknown periods fall back to daily.
func window(period string, count int, now time.Time) (string, time.Time, time.Time) {
	today := ledger.Day(now)
	switch period {
	case "weekly":
		end := bucketStart(period, today)
		return period, end.AddDate(0, 0, -7*(count-1)), end.AddDate(0, 0, 6)
	case "monthly":
		end := bucketStart(period, today)
		return period, end.AddDate(0, -(count - 1), 0), end.AddDate(0, 1, -1)
	}
	return "daily", today.AddDate(0, 0, -(count - 1)), today
}

// bucketStart truncates a movement day to its bucket. Weeks start on Monday.
func bucketStart(period string, day time.Time) time.Time {
	switch period {
	case "weekly":
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case "monthly":
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	}
	return day
}

// Series buckets txs by period. Only buckets holding movements are returned,
// oldest first.
func Series(txs []models.Transaction, period string) ([]MovementPoint, ledger.Totals) {
	buckets := make(map[time.Time]*MovementPoint)
	var grand ledger.Totals
	for _, tx := range txs {
		b := bucketStart(period, ledger.Day(tx.Date))
		p, ok := buckets[b]
		if !ok {
			p = &MovementPoint{Label: b.Format(ledger.DateFormat)}
			buckets[b] = p
		}
		if tx.Type == models.TxOut {
			p.Out = p.Out.Add(tx.Quantity)
			grand.Out = grand.Out.Add(tx.Quantity)
		} else {
			p.In = p.In.Add(tx.Quantity)
			grand.In = grand.In.Add(tx.Quantity)
		}
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	points := make([]MovementPoint, 0, len(keys))
	for _, k := range keys {
		p := buckets[k]
		p.Net = p.In.Sub(p.Out)
		points = append(points, *p)
	}
	return points, grand
}

// GET /api/dashboard/movement-chart?period=daily&count=7&category=Paper
func MovementChartHandler(engine *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := c.Query("period", "daily")
		count := c.QueryInt("count", 0)
		if count < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "count must be positive")
		}
		if count == 0 {
			switch period {
			case "weekly":
				count = 8
			case "monthly":
				count = 12
			default:
				count = 7
			}
		}

		cat, err := optionalCategory(c)
		if err != nil {
			return err
		}

		period, start, end := window(period, count, engine.Store.Now())
		txs, err := engine.Query.Filter(ledger.Criteria{From: &start, To: &end, Category: cat})
		if err != nil {
			return err
		}
		points, grand := Series(txs, period)

		return c.JSON(MovementChartResponse{
			Category:    cat,
			Period:      period,
			From:        start.Format(ledger.DateFormat),
			To:          end.Format(ledger.DateFormat),
			Points:      points,
			GrandTotals: grand,
		})
	}
}
