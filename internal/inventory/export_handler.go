package inventory

import (
	"bytes"
	"strings"
	"time"

	"press-inventory/internal/export"

	"github.com/gofiber/fiber/v2"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func exportFormat(c *fiber.Ctx) (string, string, error) {
	switch strings.ToLower(c.Query("format", "csv")) {
	case "csv":
		return "csv", mimeCSV, nil
	case "xlsx", "excel":
		return "xlsx", mimeXLSX, nil
	}
	return "", "", fiber.NewError(fiber.StatusBadRequest, "format must be csv or xlsx")
}

func sendFile(c *fiber.Ctx, name, mime string, buf *bytes.Buffer) error {
	c.Set(fiber.HeaderContentType, mime)
	c.Attachment(name)
	return c.Send(buf.Bytes())
}

// GET /api/export/transactions?format=csv|xlsx&from=&to=&category=&type=&q=
func ExportTransactionsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ext, mime, err := exportFormat(c)
		if err != nil {
			return err
		}
		crit, err := parseCriteria(c)
		if err != nil {
			return err
		}
		txs, err := d.Engine.Query.Filter(crit)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if ext == "xlsx" {
			err = export.WriteTransactionsXLSX(&buf, txs)
		} else {
			err = export.WriteTransactionsCSV(&buf, txs)
		}
		if err != nil {
			return err
		}

		var from, to time.Time
		if crit.From != nil {
			from = *crit.From
		}
		if crit.To != nil {
			to = *crit.To
		}
		return sendFile(c, export.FileName(from, to, ext), mime, &buf)
	}
}

// GET /api/export/stock?format=csv|xlsx&category=
func ExportStockHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ext, mime, err := exportFormat(c)
		if err != nil {
			return err
		}
		cat, err := optionalCategory(c)
		if err != nil {
			return err
		}
		entries, err := d.Engine.Query.Stock(cat)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if ext == "xlsx" {
			err = export.WriteStockXLSX(&buf, entries)
		} else {
			err = export.WriteStockCSV(&buf, entries)
		}
		if err != nil {
			return err
		}
		day := d.Engine.Store.Now()
		return sendFile(c, export.FileName(day, day, ext), mime, &buf)
	}
}
