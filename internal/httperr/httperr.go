// Package httperr maps ledger errors onto HTTP responses.
package httperr

import (
	"errors"

	"press-inventory/internal/ledger"
	"press-inventory/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// Status returns the HTTP status for err.
func Status(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ledger.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ledger.ErrInconsistent):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// Handler is the fiber ErrorHandler of the API. Client errors carry their
// message; anything else is logged and hidden.
func Handler(c *fiber.Ctx, err error) error {
	code := Status(err)
	if code == fiber.StatusInternalServerError {
		logger.L.Error("unexpected error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(code).JSON(fiber.Map{"error": "unexpected server error"})
	}
	body := fiber.Map{"error": err.Error()}
	var cerr *ledger.ConsistencyError
	if errors.As(err, &cerr) {
		body["mismatches"] = cerr.Mismatches
	}
	var verr *ledger.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["field"] = verr.Field
	}
	return c.Status(code).JSON(body)
}
