package inventory

import (
	"strings"

	"press-inventory/internal/audit"
	"press-inventory/internal/auth"
	"press-inventory/internal/ledger"
	"press-inventory/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTemplateRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Supplier    string `json:"supplier"`
}

type RenameTemplateRequest struct {
	Name string `json:"name"`
}

// TemplatePrefill is what the entry form receives when a template is applied.
type TemplatePrefill struct {
	Category    models.Category `json:"category"`
	Subcategory string          `json:"subcategory"`
	Supplier    string          `json:"supplier"`
	Date        string          `json:"date"`
}

// POST /api/templates
func CreateTemplateHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTemplateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		cat, err := parseCategory(body.Category)
		if err != nil {
			return err
		}
		tpl := models.Template{Name: body.Name, Category: cat, Subcategory: body.Subcategory, Supplier: body.Supplier}
		if err := d.Engine.Store.AppendTemplate(&tpl); err != nil {
			return err
		}

		d.Audit.Record(audit.LogOptions{
			Session:     auth.SessionFromCtx(c),
			EntityType:  models.EntityTemplate,
			EntityID:    tpl.ID,
			Action:      models.AuditActionCreate,
			Description: "template " + tpl.Name,
			After:       tpl,
		})

		return c.Status(fiber.StatusCreated).JSON(tpl)
	}
}

// GET /api/templates?category=Inks
func ListTemplatesHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := optionalCategory(c)
		if err != nil {
			return err
		}
		all, err := d.Engine.Store.ReadAllTemplates()
		if err != nil {
			return err
		}
		out := make([]models.Template, 0, len(all))
		for _, t := range all {
			if cat == nil || t.Category == *cat {
				out = append(out, t)
			}
		}
		return c.JSON(out)
	}
}

// PUT /api/templates/:id
func RenameTemplateHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var body RenameTemplateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		before, err := d.Engine.Store.GetTemplate(id)
		if err != nil {
			return err
		}
		after, err := d.Engine.Store.RenameTemplate(id, body.Name)
		if err != nil {
			return err
		}

		d.Audit.Record(audit.LogOptions{
			Session:     auth.SessionFromCtx(c),
			EntityType:  models.EntityTemplate,
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: "template " + before.Name + " renamed to " + after.Name,
			Before:      before,
			After:       after,
		})

		return c.JSON(after)
	}
}

// DELETE /api/templates/:id
func DeleteTemplateHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		before, err := d.Engine.Store.GetTemplate(id)
		if err != nil {
			return err
		}
		if err := d.Engine.Store.DeleteTemplate(id); err != nil {
			return err
		}

		d.Audit.Record(audit.LogOptions{
			Session:     auth.SessionFromCtx(c),
			EntityType:  models.EntityTemplate,
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "template " + before.Name,
			Before:      before,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/templates/apply?category=Paper&name=Daily
func ApplyTemplateHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cat, err := parseCategory(c.Query("category"))
		if err != nil {
			return err
		}
		name := strings.TrimSpace(c.Query("name"))
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}
		tpl, err := d.Engine.Store.FindTemplate(cat, name)
		if err != nil {
			return err
		}
		return c.JSON(TemplatePrefill{
			Category:    tpl.Category,
			Subcategory: tpl.Subcategory,
			Supplier:    tpl.Supplier,
			Date:        ledger.Day(d.Engine.Store.Now()).Format(ledger.DateFormat),
		})
	}
}
