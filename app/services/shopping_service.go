package services

import (
	"fmt"
	"sync"

	"github.com/shashiranjanraj/furnivision/app/models"
)

// ProductFinder looks up catalog products.
type ProductFinder interface {
	Get(id string) (models.Product, error)
}

// ShoppingService keeps a cart and a wishlist per owner in memory. The
// owner is a login ID, so two sign-ins as the same demo user never share
// state. Nothing here is persisted.
type ShoppingService struct {
	catalog ProductFinder

	mu        sync.Mutex
	carts     map[string][]models.CartItem
	wishlists map[string][]models.Product
}

func NewShoppingService(catalog ProductFinder) *ShoppingService {
	return &ShoppingService{
		catalog:   catalog,
		carts:     map[string][]models.CartItem{},
		wishlists: map[string][]models.Product{},
	}
}

// AddToCart appends one line with quantity 1. The same product may be added
// more than once; each add is its own line.
func (s *ShoppingService) AddToCart(owner, productID string) (models.Cart, error) {
	p, err := s.catalog.Get(productID)
	if err != nil {
		return models.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[owner] = append(s.carts[owner], models.CartItem{Product: p, Quantity: 1})
	return s.cartLocked(owner), nil
}

// RemoveLine removes the line at index.
func (s *ShoppingService) RemoveLine(owner string, index int) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[owner]
	if index < 0 || index >= len(lines) {
		return models.Cart{}, fmt.Errorf("cart line %d: %w", index, ErrNotFound)
	}
	next := make([]models.CartItem, 0, len(lines)-1)
	next = append(next, lines[:index]...)
	next = append(next, lines[index+1:]...)
	s.carts[owner] = next
	return s.cartLocked(owner), nil
}

// Cart returns the owner's lines and subtotal.
func (s *ShoppingService) Cart(owner string) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(owner)
}

func (s *ShoppingService) cartLocked(owner string) models.Cart {
	items := make([]models.CartItem, len(s.carts[owner]))
	copy(items, s.carts[owner])
	return models.Cart{Items: items, Subtotal: models.Subtotal(items)}
}

// ToggleWishlist adds productID when absent and removes it when present.
// It reports whether the product is now wishlisted.
func (s *ShoppingService) ToggleWishlist(owner, productID string) (bool, error) {
	s.mu.Lock()
	list := s.wishlists[owner]
	for i, p := range list {
		if p.ID == productID {
			next := make([]models.Product, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			s.wishlists[owner] = next
			s.mu.Unlock()
			return false, nil
		}
	}
	s.mu.Unlock()

	p, err := s.catalog.Get(productID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.wishlists[owner] {
		if existing.ID == productID {
			return true, nil
		}
	}
	s.wishlists[owner] = append(s.wishlists[owner], p)
	return true, nil
}

// Wishlist returns the wishlisted products in the order they were added.
func (s *ShoppingService) Wishlist(owner string) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.wishlists[owner]))
	copy(out, s.wishlists[owner])
	return out
}

// ClearOwner drops the owner's cart and wishlist.
func (s *ShoppingService) ClearOwner(owner string) {
	s.mu.Lock()
	delete(s.carts, owner)
	delete(s.wishlists, owner)
	s.mu.Unlock()
}

// ForgetProduct removes a deleted product from every cart and wishlist.
func (s *ShoppingService) ForgetProduct(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for o, lines := range s.carts {
		kept := lines[:0:0]
		for _, l := range lines {
			if l.Product.ID != productID {
				kept = append(kept, l)
			}
		}
		s.carts[o] = kept
	}
	for o, list := range s.wishlists {
		kept := list[:0:0]
		for _, p := range list {
			if p.ID != productID {
				kept = append(kept, p)
			}
		}
		s.wishlists[o] = kept
	}
}

// ForgetAll empties every cart and wishlist after the catalog is cleared.
func (s *ShoppingService) ForgetAll() {
	s.mu.Lock()
	s.carts = map[string][]models.CartItem{}
	s.wishlists = map[string][]models.Product{}
	s.mu.Unlock()
}
