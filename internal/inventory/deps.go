package inventory

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"press-inventory/internal/audit"
	"press-inventory/internal/config"
	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Deps carries what the inventory handlers need.
type Deps struct {
	Engine *ledger.Engine
	Audit  *audit.Service
	Config *config.Config
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// pathParam returns the URL-decoded route parameter key.
func pathParam(c *fiber.Ctx, key string) (string, error) {
	v, err := url.PathUnescape(c.Params(key))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return v, nil
}

// categoryParam parses the :category route parameter.
func categoryParam(c *fiber.Ctx) (models.Category, error) {
	v, err := pathParam(c, "category")
	if err != nil {
		return "", err
	}
	return parseCategory(v)
}

func parseCategory(s string) (models.Category, error) {
	cat, err := models.ParseCategory(s)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return cat, nil
}

// optionalCategory reads the category query parameter; an empty or "all" value yields nil.
func optionalCategory(c *fiber.Ctx) (*models.Category, error) {
	v := strings.TrimSpace(c.Query("category"))
	if v == "" || strings.EqualFold(v, "all") {
		return nil, nil
	}
	cat, err := parseCategory(v)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func optionalDate(c *fiber.Ctx, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(ledger.DateFormat, v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" must use format YYYY-MM-DD")
	}
	return &d, nil
}

// parseCriteria reads from, to, category, type, subcategory and q from the query string.
func parseCriteria(c *fiber.Ctx) (ledger.Criteria, error) {
	var crit ledger.Criteria
	var err error
	if crit.From, err = optionalDate(c, "from"); err != nil {
		return crit, err
	}
	if crit.To, err = optionalDate(c, "to"); err != nil {
		return crit, err
	}
	if crit.From != nil && crit.To != nil && crit.From.After(*crit.To) {
		return crit, fiber.NewError(fiber.StatusBadRequest, "from must not be after to")
	}
	if crit.Category, err = optionalCategory(c); err != nil {
		return crit, err
	}
	if v := strings.TrimSpace(c.Query("type")); v != "" && !strings.EqualFold(v, "all") {
		t, err := models.ParseTxType(v)
		if err != nil {
			return crit, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		crit.Type = &t
	}
	crit.Subcategory = c.Query("subcategory")
	crit.Text = c.Query("q")
	return crit, nil
}

// threshold reads the low-stock threshold query parameter, falling back to the configured one.
func (d Deps) threshold(c *fiber.Ctx) (decimal.Decimal, error) {
	v := strings.TrimSpace(c.Query("threshold"))
	if v == "" {
		return d.Config.LowStockThreshold, nil
	}
	t, err := decimal.NewFromString(v)
	if err != nil || t.IsNegative() {
		return decimal.Zero, fiber.NewError(fiber.StatusBadRequest, "threshold must be a non-negative number")
	}
	return t, nil
}
