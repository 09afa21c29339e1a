package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/pkg/bind"
	"github.com/shashiranjanraj/furnivision/pkg/ctx"
)

// VendorController serves the vendor console. Every route is vendor-only.
type VendorController struct {
	catalog *services.CatalogService
	uploads *services.UploadService
}

func NewVendorController(catalog *services.CatalogService, uploads *services.UploadService) *VendorController {
	return &VendorController{catalog: catalog, uploads: uploads}
}

func (h *VendorController) Overview(c *ctx.Context) {
	vendor, _ := c.Identity()
	c.Success(h.catalog.Overview(vendor))
}

// Store handles POST /api/vendor/products.
func (h *VendorController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	vendor, _ := c.Identity()
	p, err := h.catalog.Add(c.Context(), in, vendor)
	if err != nil {
		fail(c, err)
		return
	}
	c.Log().Info("vendor: product listed", "product_id", p.ID, "vendor_id", vendor.ID)
	c.Created(p)
}

// Destroy handles DELETE /api/vendor/products/{id}. Any vendor may remove
// any listing.
func (h *VendorController) Destroy(c *ctx.Context) {
	id := c.Param("id")
	if err := h.catalog.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.NotFound("Product not found")
			return
		}
		fail(c, err)
		return
	}
	c.Message("Product deleted", map[string]string{"id": id})
}

// Clear handles DELETE /api/vendor/products.
func (h *VendorController) Clear(c *ctx.Context) {
	n, err := h.catalog.Clear(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Message("Catalog cleared", map[string]int{"removed": n})
}

// UploadModel handles POST /api/vendor/uploads/model (multipart "file").
func (h *VendorController) UploadModel(c *ctx.Context) {
	f, ok := h.file(c, h.uploads.MaxModelBytes(), services.MsgModelTooBig, services.CheckModelName)
	if !ok {
		return
	}
	up, err := h.uploads.StoreModel(c.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(up)
}

// UploadImage handles POST /api/vendor/uploads/image (multipart "file").
func (h *VendorController) UploadImage(c *ctx.Context) {
	f, ok := h.file(c, h.uploads.MaxImageBytes(), services.MsgImageTooBig)
	if !ok {
		return
	}
	up, err := h.uploads.StoreImage(c.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(up)
}

func (h *VendorController) file(c *ctx.Context, limit int64, tooBig string, accept ...func(string) error) (*bind.File, bool) {
	f, err := c.FormFile("file", limit, accept...)
	switch {
	case errors.Is(err, services.ErrInvalidUpload):
		fail(c, err)
		return nil, false
	case errors.Is(err, bind.ErrTooLarge):
		c.Error(http.StatusRequestEntityTooLarge, tooBig)
		return nil, false
	case err != nil:
		c.ValidationError(map[string]string{"file": err.Error()})
		return nil, false
	}
	return f, true
}
