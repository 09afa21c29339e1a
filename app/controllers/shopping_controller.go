package controllers

import (
	"strconv"

	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/pkg/ctx"
)

type ShoppingController struct {
	shopping *services.ShoppingService
}

func NewShoppingController(shopping *services.ShoppingService) *ShoppingController {
	return &ShoppingController{shopping: shopping}
}

type cartInput struct {
	ProductID string `json:"productId" validate:"required"`
}

// owner keys per-login state: carts, wishlists and visualization jobs.
func owner(c *ctx.Context) string {
	id, _ := c.Identity()
	return id.Login
}

// Cart handles GET /api/cart.
func (h *ShoppingController) Cart(c *ctx.Context) {
	c.Success(h.shopping.Cart(owner(c)))
}

// Add handles POST /api/cart.
func (h *ShoppingController) Add(c *ctx.Context) {
	var in cartInput
	if !c.BindJSON(&in) {
		return
	}
	cart, err := h.shopping.AddToCart(owner(c), in.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(cart)
}

// Remove handles DELETE /api/cart/{index}.
func (h *ShoppingController) Remove(c *ctx.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.NotFound("Cart line not found")
		return
	}
	cart, err := h.shopping.RemoveLine(owner(c), index)
	if err != nil {
		c.NotFound("Cart line not found")
		return
	}
	c.Success(cart)
}

// Wishlist handles GET /api/wishlist.
func (h *ShoppingController) Wishlist(c *ctx.Context) {
	c.Success(h.shopping.Wishlist(owner(c)))
}

// Toggle handles POST /api/wishlist/{id}.
func (h *ShoppingController) Toggle(c *ctx.Context) {
	uid := owner(c)
	on, err := h.shopping.ToggleWishlist(uid, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]any{"wishlisted": on, "items": h.shopping.Wishlist(uid)})
}
