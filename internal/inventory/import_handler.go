package inventory

import (
	"errors"
	"fmt"
	"strings"

	"press-inventory/internal/audit"
	"press-inventory/internal/auth"
	"press-inventory/internal/importfile"
	"press-inventory/internal/ledger"
	"press-inventory/internal/logger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ImportResponse reports an upload. Additive is always true: uploading the
// same file again records its movements a second time.
type ImportResponse struct {
	ledger.ImportResult
	File     string `json:"file"`
	Rows     int    `json:"rows"`
	Additive bool   `json:"additive"`
}

// POST /api/import (multipart: file, category?, require_supplier?)
func ImportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file upload failed: "+err.Error())
		}
		if fileHeader.Size > d.Config.MaxUploadSizeBytes {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", d.Config.MaxUploadSizeBytes))
		}

		opts := importfile.Options{RequireSupplier: c.FormValue("require_supplier") == "true"}
		if v := strings.TrimSpace(c.FormValue("category")); v != "" {
			if opts.DefaultCategory, err = parseCategory(v); err != nil {
				return err
			}
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not open upload")
		}
		defer file.Close()

		rows, err := importfile.Parse(fileHeader.Filename, file, opts)
		var missing *importfile.MissingColumnsError
		switch {
		case errors.As(err, &missing), errors.Is(err, importfile.ErrUnsupportedFormat):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusBadRequest, "could not read spreadsheet: "+err.Error())
		}

		sess := auth.SessionFromCtx(c)
		res, err := d.Engine.Import(sess, rows)
		if err != nil {
			return err
		}
		logger.L.Info("import finished", "file", fileHeader.Filename, "batch", res.BatchID,
			"accepted", len(res.Accepted), "rejected", len(res.Rejected))

		if len(res.Accepted) > 0 {
			d.Audit.Record(audit.LogOptions{
				Session:     sess,
				EntityType:  models.EntityTransaction,
				Action:      models.AuditActionImport,
				Description: fmt.Sprintf("imported %d rows from %s (batch %s)", len(res.Accepted), fileHeader.Filename, res.BatchID),
				After:       res.Accepted,
			})
		}

		return c.JSON(ImportResponse{ImportResult: res, File: fileHeader.Filename, Rows: len(rows), Additive: true})
	}
}
