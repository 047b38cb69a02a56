package inventory

import (
	"fmt"
	"strings"

	"press-inventory/internal/audit"
	"press-inventory/internal/auth"
	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Type        string          `json:"type"` // "IN" / "OUT", "Stock In" / "Stock Out"
	Quantity    decimal.Decimal `json:"quantity"`
	Date        string          `json:"date"` // "2025-12-09", today when empty
	Supplier    string          `json:"supplier"`
	Notes       string          `json:"notes"`
}

type TransactionResponse struct {
	Transaction models.Transaction `json:"transaction"`
	Stock       models.StockEntry  `json:"stock"`
}

// POST /api/transactions
func CreateTransactionHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		cat, err := parseCategory(body.Category)
		if err != nil {
			return err
		}
		typ, err := models.ParseTxType(body.Type)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		day := ledger.Day(d.Engine.Store.Now())
		if strings.TrimSpace(body.Date) != "" {
			if day, err = ledger.ParseDate(body.Date); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		sess := auth.SessionFromCtx(c)
		tx, entry, err := d.Engine.AddTransaction(sess, ledger.NewTransaction{
			Category:    cat,
			Subcategory: body.Subcategory,
			Type:        typ,
			Quantity:    body.Quantity,
			Date:        day,
			Supplier:    body.Supplier,
			Notes:       body.Notes,
		})
		if err != nil {
			return err
		}

		d.Audit.Record(audit.LogOptions{
			Session:     sess,
			EntityType:  models.EntityTransaction,
			EntityID:    tx.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s %s %s", tx.Type, tx.Quantity, tx.Key()),
			After:       tx,
		})

		return c.Status(fiber.StatusCreated).JSON(TransactionResponse{Transaction: tx, Stock: entry})
	}
}

// GET /api/transactions?from=&to=&category=&type=&subcategory=&q=
// A q parameter alone runs a plain search.
func ListTransactionsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		crit, err := parseCriteria(c)
		if err != nil {
			return err
		}
		txs, err := d.Engine.Query.Filter(crit)
		if err != nil {
			return err
		}
		return c.JSON(txs)
	}
}

// GET /api/transactions/search?q=
func SearchTransactionsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txs, err := d.Engine.Query.Search(c.Query("q"))
		if err != nil {
			return err
		}
		return c.JSON(txs)
	}
}

// GET /api/transactions/:id
func GetTransactionHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		tx, err := d.Engine.Store.GetTransaction(id)
		if err != nil {
			return err
		}
		return c.JSON(tx)
	}
}

// DELETE /api/transactions/:id
// The stock entry of the transaction is recomputed before responding.
func DeleteTransactionHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		sess := auth.SessionFromCtx(c)
		tx, entry, err := d.Engine.DeleteTransaction(sess, id)
		if err != nil {
			return err
		}

		d.Audit.Record(audit.LogOptions{
			Session:     sess,
			EntityType:  models.EntityTransaction,
			EntityID:    tx.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("deleted %s %s %s", tx.Type, tx.Quantity, tx.Key()),
			Before:      tx,
		})

		return c.JSON(TransactionResponse{Transaction: tx, Stock: entry})
	}
}

// GET /api/transactions/history/:category?subcategory=&limit=
func HistoryHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := categoryParam(c)
		if err != nil {
			return err
		}
		txs, err := d.Engine.Query.History(cat, c.Query("subcategory"), c.QueryInt("limit", 0))
		if err != nil {
			return err
		}
		return c.JSON(txs)
	}
}

// GET /api/transactions/recent?limit=10
func RecentHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txs, err := d.Engine.Query.Recent(c.QueryInt("limit", 10))
		if err != nil {
			return err
		}
		return c.JSON(txs)
	}
}
