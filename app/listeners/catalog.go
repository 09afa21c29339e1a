// Package listeners subscribes the application's side effects to catalog
// events.
package listeners

import (
	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/pkg/event"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/metrics"
)

// Publisher receives every catalog event, e.g. the websocket hub.
type Publisher interface {
	Publish(v any) error
}

// Register wires catalog events to the shopping state, the product gauge
// and the live feed. Call once at boot.
func Register(shopping *services.ShoppingService, feed Publisher) {
	gauge := func(payload interface{}) {
		if evt, ok := payload.(services.CatalogEvent); ok {
			metrics.CatalogProducts.Set(float64(evt.Count))
		}
	}
	publish := func(payload interface{}) {
		if err := feed.Publish(payload); err != nil {
			logger.Warn("listeners: publish failed", "error", err)
		}
	}

	for _, name := range []string{
		services.EventCatalogLoaded,
		services.EventProductAdded,
		services.EventProductDeleted,
		services.EventCatalogCleared,
	} {
		event.Listen(name, gauge)
		event.Listen(name, publish)
	}

	// carts and wishlists only ever reference listed products
	event.Listen(services.EventProductDeleted, func(payload interface{}) {
		if evt, ok := payload.(services.CatalogEvent); ok {
			shopping.ForgetProduct(evt.ProductID)
		}
	})
	event.Listen(services.EventCatalogCleared, func(interface{}) {
		shopping.ForgetAll()
	})
}
