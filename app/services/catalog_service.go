package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"

	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/app/repositories"
	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/auth"
	"github.com/shashiranjanraj/furnivision/pkg/event"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
)

// Catalog events.
const (
	EventProductAdded   = "product.added"
	EventProductDeleted = "product.deleted"
	EventCatalogCleared = "catalog.cleared"
	EventCatalogLoaded  = "catalog.loaded"
)

// CatalogEvent is the payload of every catalog event.
type CatalogEvent struct {
	Event     string `json:"event"`
	ProductID string `json:"productId,omitempty"`
	Count     int    `json:"count"`
}

// ProductInput is the vendor's new-listing form.
type ProductInput struct {
	Name        string  `json:"name"        validate:"nullable,max=120"`
	Price       float64 `json:"price"       validate:"nullable,gte=0"`
	Category    string  `json:"category"    validate:"nullable,max=60"`
	Description string  `json:"description" validate:"nullable,max=2000"`
	Image       string  `json:"image"       validate:"nullable,media"`
	Model3D     string  `json:"model3d"     validate:"nullable,media"`
	Material    string  `json:"material"    validate:"nullable,max=60"`
	Annotation  string  `json:"annotation"  validate:"nullable,max=200"`
}

// ProductFilter narrows List. Zero value lists everything.
type ProductFilter struct {
	Category string
	Query    string
}

// VendorOverview is the vendor console summary.
type VendorOverview struct {
	Listings   int              `json:"listings"`
	TotalValue float64          `json:"totalValue"`
	With3D     int              `json:"with3d"`
	Mine       []models.Product `json:"mine"`
}

// CatalogService owns the in-memory catalog and flushes it to the store
// after every change.
type CatalogService struct {
	mu       sync.RWMutex
	products []models.Product
	store    repositories.ProductStore
	ids      *snowflake.Node
}

func NewCatalogService(store repositories.ProductStore) (*CatalogService, error) {
	node, err := snowflake.NewNode(config.SnowflakeNode())
	if err != nil {
		return nil, fmt.Errorf("services: snowflake node: %w", err)
	}
	return &CatalogService{store: store, ids: node, products: models.SampleProducts()}, nil
}

// Load replaces the in-memory catalog with the stored one. An empty or
// unreadable store leaves the sample catalog in place.
func (s *CatalogService) Load(ctx context.Context) int {
	stored, err := s.store.All(ctx)
	if err != nil {
		logger.WithCtx(ctx).Error("catalog: load failed, using samples", "error", err)
	}

	s.mu.Lock()
	if err == nil && len(stored) > 0 {
		s.products = stored
	} else {
		s.products = models.SampleProducts()
	}
	n := len(s.products)
	s.mu.Unlock()

	event.Fire(EventCatalogLoaded, CatalogEvent{Event: EventCatalogLoaded, Count: n})
	return n
}

// List returns the products matching f in catalog order.
func (s *CatalogService) List(f ProductFilter) []models.Product {
	category := strings.TrimSpace(f.Category)
	query := strings.ToLower(strings.TrimSpace(f.Query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if query != "" && !matches(p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p models.Product, query string) bool {
	for _, field := range []string{p.Name, p.Style, p.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Get returns the product with id.
func (s *CatalogService) Get(id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
}

// Categories returns the distinct categories, sorted.
func (s *CatalogService) Categories() []string {
	s.mu.RLock()
	seen := make(map[string]struct{}, len(s.products))
	for _, p := range s.products {
		seen[p.Category] = struct{}{}
	}
	s.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of listings.
func (s *CatalogService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Add creates a listing owned by vendor, prepends it, and flushes the
// catalog. On a failed flush the catalog is left as it was.
func (s *CatalogService) Add(ctx context.Context, in ProductInput, vendor auth.Identity) (models.Product, error) {
	if strings.TrimSpace(in.Name) == "" || in.Price == 0 || strings.TrimSpace(in.Image) == "" {
		return models.Product{}, fail(ErrInvalidInput, MsgMissingFields, nil)
	}

	p := newProduct(s.ids.Generate().String(), in, vendor)

	s.mu.Lock()
	prev := s.products
	next := make([]models.Product, 0, len(prev)+1)
	next = append(next, p)
	next = append(next, prev...)
	if err := s.flush(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Product{}, err
	}
	n := len(next)
	s.mu.Unlock()

	logger.WithCtx(ctx).Info("catalog: product added", "product_id", p.ID, "vendor_id", p.VendorID)
	event.Fire(EventProductAdded, CatalogEvent{Event: EventProductAdded, ProductID: p.ID, Count: n})
	return p, nil
}

func newProduct(id string, in ProductInput, vendor auth.Identity) models.Product {
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "Sofa"
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = "Freshly added item."
	}
	material := strings.TrimSpace(in.Material)
	if material == "" {
		material = "Oak"
	}
	vendorID, vendorName := vendor.ID, vendor.Name
	if vendorID == "" {
		vendorID = "v1"
	}
	if vendorName == "" {
		vendorName = "Vendor"
	}

	p := models.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Category:    category,
		Price:       in.Price,
		Dimensions:  models.Dimensions{Width: 100, Height: 100, Depth: 100, Unit: "cm"},
		Image:       in.Image,
		Model3D:     in.Model3D,
		Description: description,
		Style:       "Modern",
		Material:    []string{material},
		Colors:      []string{"Natural"},
		VendorID:    vendorID,
		VendorName:  vendorName,
		Reviews:     []models.Review{},
	}
	if note := strings.TrimSpace(in.Annotation); note != "" {
		p.Hotspots = []models.Hotspot{{Position: "-0.5m 1.0m 0.2m", Normal: "0m 1m 0m", Text: note}}
	}
	return p
}

// Delete removes exactly the listing with id.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := -1
	for i, p := range s.products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}

	next := make([]models.Product, 0, len(s.products)-1)
	next = append(next, s.products[:idx]...)
	next = append(next, s.products[idx+1:]...)
	if err := s.flush(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	n := len(next)
	s.mu.Unlock()

	logger.WithCtx(ctx).Info("catalog: product deleted", "product_id", id)
	event.Fire(EventProductDeleted, CatalogEvent{Event: EventProductDeleted, ProductID: id, Count: n})
	return nil
}

// Clear removes every listing and returns how many were removed.
func (s *CatalogService) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	removed := len(s.products)
	if err := s.flush(ctx, []models.Product{}); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.mu.Unlock()

	logger.WithCtx(ctx).Info("catalog: cleared", "removed", removed)
	event.Fire(EventCatalogCleared, CatalogEvent{Event: EventCatalogCleared, Count: 0})
	return removed, nil
}

// flush writes next to the store and, on success, installs it. Callers hold
// the write lock.
func (s *CatalogService) flush(ctx context.Context, next []models.Product) error {
	if err := s.store.ReplaceAll(ctx, next); err != nil {
		logger.WithCtx(ctx).Error("catalog: flush failed", "error", err)
		return fail(ErrStorage, MsgStorageFull, err)
	}
	s.products = next
	return nil
}

// Overview summarises the catalog for vendor.
func (s *CatalogService) Overview(vendor auth.Identity) VendorOverview {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ov := VendorOverview{Listings: len(s.products), Mine: []models.Product{}}
	for _, p := range s.products {
		ov.TotalValue += p.Price
		if p.Model3D != "" {
			ov.With3D++
		}
		if p.VendorID == vendor.ID {
			ov.Mine = append(ov.Mine, p)
		}
	}
	return ov
}
