package models

// SampleProducts returns the starter catalog used when nothing is stored.
// A fresh copy is built on each call so callers may mutate it.
func SampleProducts() []Product {
	return []Product{
		{
			ID:          "p1",
			Name:        "Elowen Lounge Chair",
			Category:    "Seating",
			Price:       899,
			Dimensions:  Dimensions{Width: 85, Height: 92, Depth: 80, Unit: "cm"},
			Image:       "https://images.unsplash.com/photo-1598198414976-ddb788ec80c1?auto=format&fit=crop&q=90&w=800",
			Model3D:     "https://modelviewer.dev/shared-assets/models/Chair.glb",
			Description: "A masterpiece of Scandinavian design. The Elowen combines sustainable oak with premium velvet upholstery for a timeless look.",
			Style:       "Mid-Century Modern",
			Material:    []string{"Solid Oak", "Velvet"},
			Colors:      []string{"Emerald", "Midnight", "Sand"},
			VendorID:    "v1",
			VendorName:  "Nordic Living",
			Reviews:     []Review{},
			Hotspots: []Hotspot{
				{Position: "0.2m 0.5m 0.2m", Normal: "0m 0m 1m", Text: "Hand-stitched velvet upholstery"},
				{Position: "0m 0.1m 0m", Normal: "0m -1m 0m", Text: "Solid FSC-certified Oak legs"},
			},
		},
		{
			ID:          "p2",
			Name:        "Linear Modular Sofa",
			Category:    "Sofas",
			Price:       2450,
			Dimensions:  Dimensions{Width: 240, Height: 75, Depth: 100, Unit: "cm"},
			Image:       "https://images.unsplash.com/photo-1555041469-a586c61ea9bc?auto=format&fit=crop&q=90&w=800",
			Model3D:     "https://modelviewer.dev/shared-assets/models/CORSICAN_SOFA.glb",
			Description: "Architectural precision meets comfort. This modular piece can be configured to fit any spatial requirement while maintaining a low-profile silhouette.",
			Style:       "Minimalist",
			Material:    []string{"Aluminium Frame", "High-Density Foam"},
			Colors:      []string{"Cloud Grey", "Charcoal"},
			VendorID:    "v1",
			VendorName:  "Modern Forms",
			Reviews:     []Review{},
			Hotspots: []Hotspot{
				{Position: "1m 0.4m 0.2m", Normal: "0m 1m 0m", Text: "Modular attachment points"},
			},
		},
		{
			ID:          "p3",
			Name:        "Industrial Atlas Table",
			Category:    "Tables",
			Price:       1150,
			Dimensions:  Dimensions{Width: 180, Height: 75, Depth: 90, Unit: "cm"},
			Image:       "https://images.unsplash.com/photo-1530018607912-eff2df17a0bc?auto=format&fit=crop&q=90&w=800",
			Model3D:     "https://modelviewer.dev/shared-assets/models/Astronaut.glb",
			Description: "Raw materials refined for the modern home. A heavy cast-iron base supports a reclaimed walnut top with live edges.",
			Style:       "Industrial",
			Material:    []string{"Reclaimed Walnut", "Cast Iron"},
			Colors:      []string{"Natural Walnut"},
			VendorID:    "v2",
			VendorName:  "Forge & Timber",
			Reviews:     []Review{},
			Hotspots: []Hotspot{
				{Position: "0m 0.75m 0m", Normal: "0m 1m 0m", Text: "Water-resistant finish"},
			},
		},
	}
}
