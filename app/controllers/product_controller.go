package controllers

import (
	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/pkg/ctx"
)

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// Index handles GET /api/products?category=&q=.
func (h *ProductController) Index(c *ctx.Context) {
	c.Success(h.catalog.List(services.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}))
}

// Show handles GET /api/products/{id}.
func (h *ProductController) Show(c *ctx.Context) {
	p, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		c.NotFound("Product not found")
		return
	}
	c.Success(p)
}
