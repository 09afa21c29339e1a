package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Dimensions is the physical size of a piece.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
	Unit   string  `json:"unit"`
}

// Review is a customer review shown on the product page.
type Review struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Date     string `json:"date"`
}

// Hotspot is an annotation pinned on the 3D model. Position and Normal are
// model-viewer coordinate strings such as "0m 0.5m 0.2m".
type Hotspot struct {
	Position string `json:"position"`
	Normal   string `json:"normal"`
	Text     string `json:"text"`
}

// Product is one catalog listing.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Dimensions  Dimensions `json:"dimensions"`
	Image       string     `json:"image"`
	Model3D     string     `json:"model3d,omitempty"`
	Description string     `json:"description"`
	Style       string     `json:"style"`
	Material    []string   `json:"material"`
	Colors      []string   `json:"colors"`
	VendorID    string     `json:"vendorId"`
	VendorName  string     `json:"vendorName"`
	Reviews     []Review   `json:"reviews"`
	Hotspots    []Hotspot  `json:"hotspots,omitempty"`
}

// ProductRecord is the persisted row: the full product JSON-encoded, plus
// its position in the catalog.
type ProductRecord struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Position  int       `gorm:"not null;index"`
	Payload   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ProductRecord) TableName() string { return "products" }

// NewProductRecord encodes p for storage at position pos.
func NewProductRecord(p Product, pos int) (ProductRecord, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return ProductRecord{}, fmt.Errorf("models: encode product %s: %w", p.ID, err)
	}
	return ProductRecord{ID: p.ID, Position: pos, Payload: string(raw)}, nil
}

// Product decodes the stored payload.
func (r ProductRecord) Product() (Product, error) {
	var p Product
	if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
		return Product{}, fmt.Errorf("models: decode product %s: %w", r.ID, err)
	}
	return p, nil
}

// Normalize replaces nil slices with empty ones so JSON renders [] not null.
func (p *Product) Normalize() {
	if p.Material == nil {
		p.Material = []string{}
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
}
