package seeders

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/furnivision/app/models"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts writes the sample catalog into an empty products table.
// A table that already holds listings is left alone.
func SeedProducts(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.ProductRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	samples := models.SampleProducts()
	rows := make([]models.ProductRecord, 0, len(samples))
	for i, p := range samples {
		rec, err := models.NewProductRecord(p, i)
		if err != nil {
			return 0, err
		}
		rows = append(rows, rec)
	}
	if err := db.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}
