package inventory

import (
	"errors"
	"fmt"

	"press-inventory/internal/audit"
	"press-inventory/internal/auth"
	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/stock?category=Paper
func ListStockHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := optionalCategory(c)
		if err != nil {
			return err
		}
		entries, err := d.Engine.Query.Stock(cat)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// GET /api/stock/current/:category
// Only entries holding a positive quantity.
func CurrentStockHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := categoryParam(c)
		if err != nil {
			return err
		}
		entries, err := d.Engine.Query.CurrentStock(cat)
		if err != nil {
			return err
		}
		return c.JSON(entries)
	}
}

// GET /api/stock/low?threshold=10
func LowStockHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold, err := d.threshold(c)
		if err != nil {
			return err
		}
		entries, err := d.Engine.Query.LowStock(threshold)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"threshold": threshold,
			"items":     entries,
		})
	}
}

// GET /api/stock/subcategories/:category
func SubcategoriesHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := categoryParam(c)
		if err != nil {
			return err
		}
		subs, err := d.Engine.Query.Subcategories(cat)
		if err != nil {
			return err
		}
		return c.JSON(subs)
	}
}

// GET /api/stock/verify
// Responds 409 with the mismatching keys when the snapshot diverges.
func VerifyStockHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := d.Engine.Check(); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"consistent": true})
	}
}

// POST /api/stock/rebuild
func RebuildStockHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var diverged []ledger.Mismatch
		var cerr *ledger.ConsistencyError
		if err := d.Engine.Check(); errors.As(err, &cerr) {
			diverged = cerr.Mismatches
		} else if err != nil {
			return err
		}

		entries, err := d.Engine.Rebuild()
		if err != nil {
			return err
		}

		d.Audit.Record(audit.LogOptions{
			Session:     auth.SessionFromCtx(c),
			EntityType:  models.EntityStock,
			Action:      models.AuditActionRebuild,
			Description: fmt.Sprintf("rebuilt %d stock entries, %d diverged", len(entries), len(diverged)),
			Before:      diverged,
		})

		return c.JSON(fiber.Map{
			"entries":  entries,
			"repaired": diverged,
		})
	}
}

// DELETE /api/stock/:category/:subcategory?with_transactions=true
func DeleteSubcategoryHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := categoryParam(c)
		if err != nil {
			return err
		}
		sub, err := pathParam(c, "subcategory")
		if err != nil {
			return err
		}
		key := models.SKU{Category: cat, Subcategory: sub}
		withTx := c.QueryBool("with_transactions", false)

		sess := auth.SessionFromCtx(c)
		removedStock, removedTx, err := d.Engine.DeleteSubcategory(sess, key, withTx)
		if err != nil {
			return err
		}

		d.Audit.Record(audit.LogOptions{
			Session:     sess,
			EntityType:  models.EntityStock,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("deleted subcategory %s (%d transactions)", key, len(removedTx)),
			Before:      removedTx,
		})

		return c.JSON(fiber.Map{
			"removed_stock_entries": removedStock,
			"removed_transactions":  len(removedTx),
		})
	}
}
