// Package providers builds the application's services once and hands them
// to routes, the CLI and background tasks.
package providers

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/furnivision/app/listeners"
	"github.com/shashiranjanraj/furnivision/app/repositories"
	"github.com/shashiranjanraj/furnivision/app/services"
	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/cache"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/schedule"
	"github.com/shashiranjanraj/furnivision/pkg/workerpool"
	"github.com/shashiranjanraj/furnivision/pkg/ws"
)

// Container holds every service of one running application.
type Container struct {
	Catalog    *services.CatalogService
	Shopping   *services.ShoppingService
	Session    *services.SessionService
	Uploads    *services.UploadService
	Vision     *services.VisionService
	Visualizer *services.VisualizerService
	Hub        *ws.Hub
	Pool       *workerpool.Pool
}

// New builds the container on top of store and gen. Nothing is started.
func New(store repositories.ProductStore, gen services.Generator) (*Container, error) {
	catalog, err := services.NewCatalogService(store)
	if err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}
	shopping := services.NewShoppingService(catalog)
	pool := workerpool.New(config.VisualizerWorkers())

	return &Container{
		Catalog:    catalog,
		Shopping:   shopping,
		Session:    services.NewSessionService(shopping),
		Uploads:    services.NewUploadService(),
		Vision:     services.NewVisionService(gen),
		Visualizer: services.NewVisualizerService(gen, pool),
		Hub:        ws.NewHub(),
		Pool:       pool,
	}, nil
}

// Listen subscribes the container to catalog events.
func (c *Container) Listen() {
	listeners.Register(c.Shopping, c.Hub)
}

// Schedule registers the housekeeping tasks. Start them with schedule.Start.
func (c *Container) Schedule() error {
	ttl := config.VisualizerJobTTL()
	err := schedule.Every(1).Minutes().Name("visualizer:purge").WithoutOverlapping().Run(func() {
		if n := c.Visualizer.Purge(ttl); n > 0 {
			logger.Info("visualizer: purged jobs", "count", n)
		}
	})
	if err != nil {
		return err
	}
	return schedule.Every(5).Minutes().Name("cache:sweep").Run(func() {
		if n := cache.Sweep(); n > 0 {
			logger.Debug("cache: swept expired entries", "count", n)
		}
	})
}

// Shutdown stops the worker pool, waiting up to timeout for running renders.
func (c *Container) Shutdown(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		c.Pool.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("providers: worker pool did not drain in time")
	}
}
