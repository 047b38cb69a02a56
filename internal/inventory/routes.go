package inventory

import "github.com/gofiber/fiber/v2"

// Register mounts the inventory API on an authenticated router.
func Register(r fiber.Router, d Deps) {
	tx := r.Group("/transactions")
	tx.Post("/", CreateTransactionHandler(d))
	tx.Get("/", ListTransactionsHandler(d))
	tx.Get("/search", SearchTransactionsHandler(d))
	tx.Get("/recent", RecentHandler(d))
	tx.Get("/history/:category", HistoryHandler(d))
	tx.Get("/:id", GetTransactionHandler(d))
	tx.Delete("/:id", DeleteTransactionHandler(d))

	stock := r.Group("/stock")
	stock.Get("/", ListStockHandler(d))
	stock.Get("/low", LowStockHandler(d))
	stock.Get("/verify", VerifyStockHandler(d))
	stock.Post("/rebuild", RebuildStockHandler(d))
	stock.Get("/current/:category", CurrentStockHandler(d))
	stock.Get("/subcategories/:category", SubcategoriesHandler(d))
	stock.Delete("/:category/:subcategory", DeleteSubcategoryHandler(d))

	r.Post("/import", ImportHandler(d))

	r.Get("/export/transactions", ExportTransactionsHandler(d))
	r.Get("/export/stock", ExportStockHandler(d))

	tpl := r.Group("/templates")
	tpl.Post("/", CreateTemplateHandler(d))
	tpl.Get("/", ListTemplatesHandler(d))
	tpl.Get("/apply", ApplyTemplateHandler(d))
	tpl.Put("/:id", RenameTemplateHandler(d))
	tpl.Delete("/:id", DeleteTemplateHandler(d))

	r.Get("/reports", ReportHandler(d))
	r.Get("/paper-fit", PaperFitHandler(d))
}
