package models

// CartItem is one cart line.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Cart is the cart as returned to the client.
type Cart struct {
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

// Subtotal sums the product price of every line. Quantity is not applied:
// every line is added with quantity 1 and there is no way to change it.
func Subtotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Product.Price
	}
	return total
}

// RoomAnalysis is the stylistic and spatial profile of a room photo.
type RoomAnalysis struct {
	Style           string   `json:"style"`
	PrimaryColor    string   `json:"primaryColor"`
	AccentColors    []string `json:"accentColors"`
	Lighting        string   `json:"lighting"`
	RoomType        string   `json:"roomType"`
	DetectedObjects []string `json:"detectedObjects"`
	Vibe            string   `json:"vibe"`
}
