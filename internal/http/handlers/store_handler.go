package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/solmate-app/backend/internal/catalog"
)

type StoreHandler struct {
	catalog *catalog.Catalog
}

func NewStoreHandler(cat *catalog.Catalog) *StoreHandler {
	return &StoreHandler{catalog: cat}
}

// Items lists the store catalog.
// GET /store/items
func (h *StoreHandler) Items(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"items":   h.catalog.Items(),
		"bundles": h.catalog.Bundles(),
		"tiers":   catalog.DefaultTiers,
	})
}
