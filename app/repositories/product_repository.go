package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/pkg/metrics"
)

// ProductStore persists the whole catalog. There is no per-row write:
// every flush replaces the stored collection.
type ProductStore interface {
	All(ctx context.Context) ([]models.Product, error)
	ReplaceAll(ctx context.Context, products []models.Product) error
}

// ProductRepository is the gorm-backed ProductStore.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// All returns the stored products in catalog order.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var rows []models.ProductRecord
	if err := r.db.WithContext(ctx).Order("position asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("repositories: read products: %w", err)
	}

	out := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.Product()
		if err != nil {
			return nil, err
		}
		p.Normalize()
		out = append(out, p)
	}
	return out, nil
}

// ReplaceAll clears the table and writes products in order, in one
// transaction.
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []models.Product) error {
	defer metrics.ObserveDBQuery("replace", time.Now())

	rows := make([]models.ProductRecord, 0, len(products))
	for i, p := range products {
		rec, err := models.NewProductRecord(p, i)
		if err != nil {
			return err
		}
		rows = append(rows, rec)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.ProductRecord{}).Error; err != nil {
			return fmt.Errorf("repositories: clear products: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("repositories: write products: %w", err)
		}
		return nil
	})
}
