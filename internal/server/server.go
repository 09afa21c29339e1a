// Package server boots the furnivision process: configuration, logging,
// persistence, the service container, the HTTP and gRPC listeners and the
// scheduler.
package server

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shashiranjanraj/furnivision/app/providers"
	"github.com/shashiranjanraj/furnivision/app/repositories"
	"github.com/shashiranjanraj/furnivision/app/routes"
	"github.com/shashiranjanraj/furnivision/config"
	_ "github.com/shashiranjanraj/furnivision/database/migrations"
	"github.com/shashiranjanraj/furnivision/pkg/app"
	"github.com/shashiranjanraj/furnivision/pkg/cache"
	"github.com/shashiranjanraj/furnivision/pkg/database"
	"github.com/shashiranjanraj/furnivision/pkg/gemini"
	"github.com/shashiranjanraj/furnivision/pkg/grpc"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/migration"
	"github.com/shashiranjanraj/furnivision/pkg/router"
	"github.com/shashiranjanraj/furnivision/pkg/schedule"
	"github.com/shashiranjanraj/furnivision/pkg/storage"
)

// Application returns the HTTP application over c.
func Application(c *providers.Container) *app.Application {
	return app.New().Routes(func(r *router.Router) error {
		return routes.RegisterAPI(r, c)
	})
}

// Boot loads configuration, connects the database and migrates it, and
// builds a container whose catalog is loaded from the store.
func Boot(ctx context.Context) (*providers.Container, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("server: config: %w", err)
	}
	logger.Boot()

	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if _, err := migration.New(database.DB, io.Discard).Run(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("cache: redis unavailable, sessions kept in memory", "error", err)
	}
	storage.Connect()

	if config.GeminiAPIKey() == "" {
		logger.Warn("gemini: GEMINI_API_KEY not set, room analysis and placement will fail")
	}

	c, err := providers.New(repositories.NewProductRepository(database.DB), gemini.FromConfig())
	if err != nil {
		return nil, err
	}
	c.Listen()
	n := c.Catalog.Load(ctx)
	logger.Info("catalog: loaded", "products", n)
	return c, nil
}

// Start runs the server until ctx is cancelled, then shuts everything down
// in reverse order.
func Start(ctx context.Context) error {
	c, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer logger.Close()
	defer database.Close()
	defer cache.Close()

	handler, err := Application(c).Routes(func(r *router.Router) error {
		routes.RegisterStorage(r)
		return nil
	}).Handler()
	if err != nil {
		return err
	}

	go c.Hub.Run(ctx)

	if err := c.Schedule(); err != nil {
		return err
	}
	schedule.Start(ctx)

	rpc, err := grpc.Start(config.GRPCPort())
	if err != nil {
		return err
	}
	rpc.SetServing("", true)

	serveErr := app.Serve(ctx, ":"+config.AppPort(), handler)

	rpc.Stop()
	c.Shutdown(30 * time.Second)
	if serveErr != nil {
		return serveErr
	}
	logger.Info("server: stopped")
	return nil
}
