// Package routes maps the HTTP surface onto the controllers.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/furnivision/app/controllers"
	"github.com/shashiranjanraj/furnivision/app/providers"
	"github.com/shashiranjanraj/furnivision/app/schema"
	"github.com/shashiranjanraj/furnivision/pkg/auth"
	"github.com/shashiranjanraj/furnivision/pkg/ctx"
	"github.com/shashiranjanraj/furnivision/pkg/graphql"
	"github.com/shashiranjanraj/furnivision/pkg/middleware"
	"github.com/shashiranjanraj/furnivision/pkg/rbac"
	"github.com/shashiranjanraj/furnivision/pkg/router"
	"github.com/shashiranjanraj/furnivision/pkg/storage"
	"github.com/shashiranjanraj/furnivision/pkg/ws"
)

// RegisterAPI mounts every API route on r.
func RegisterAPI(r *router.Router, c *providers.Container) error {
	sessions := controllers.NewSessionController(c.Session)
	products := controllers.NewProductController(c.Catalog)
	shopping := controllers.NewShoppingController(c.Shopping)
	vision := controllers.NewVisionController(c.Catalog, c.Vision, c.Visualizer)
	vendor := controllers.NewVendorController(c.Catalog, c.Uploads)

	catalogSchema, err := schema.Catalog(c.Catalog)
	if err != nil {
		return err
	}

	api := r.Group("/api")

	api.Post("/session/login", "session.login", ctx.Wrap(sessions.Login))
	api.Get("/session", "session.show", ctx.Wrap(sessions.Show))
	api.Post("/session/logout", "session.logout", ctx.Wrap(sessions.Logout))

	api.Get("/products", "products.index", ctx.Wrap(products.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(products.Show))
	api.Post("/graphql", "graphql", graphql.Handler(catalogSchema))

	user := api.Group("", middleware.AuthMiddleware)
	user.Get("/cart", "cart.show", ctx.Wrap(shopping.Cart))
	user.Post("/cart", "cart.add", ctx.Wrap(shopping.Add))
	user.Delete("/cart/{index}", "cart.remove", ctx.Wrap(shopping.Remove))
	user.Get("/wishlist", "wishlist.show", ctx.Wrap(shopping.Wishlist))
	user.Post("/wishlist/{id}", "wishlist.toggle", ctx.Wrap(shopping.Toggle))

	user.Post("/room/analyze", "room.analyze", ctx.Wrap(vision.Analyze))
	user.Post("/visualizations", "visualizations.start", ctx.Wrap(vision.Start))
	user.Get("/visualizations/{id}", "visualizations.show", ctx.Wrap(vision.Show))
	user.Get("/visualizations/{id}/events", "visualizations.events", ctx.Wrap(vision.Events))

	console := api.Group("/vendor", rbac.HasRole(auth.RoleVendor))
	console.Get("/overview", "vendor.overview", ctx.Wrap(vendor.Overview))
	console.Post("/products", "vendor.products.store", ctx.Wrap(vendor.Store))
	console.Delete("/products/{id}", "vendor.products.destroy", ctx.Wrap(vendor.Destroy))
	console.Delete("/products", "vendor.products.clear", ctx.Wrap(vendor.Clear))
	console.Post("/uploads/model", "vendor.uploads.model", ctx.Wrap(vendor.UploadModel))
	console.Post("/uploads/image", "vendor.uploads.image", ctx.Wrap(vendor.UploadImage))

	r.Get("/ws/catalog", "ws.catalog", func(w http.ResponseWriter, req *http.Request) {
		ws.Upgrade(w, req, c.Hub)
	})
	return nil
}

// RegisterStorage serves uploaded files from the local disk under /storage.
// Nothing is mounted when uploads go to S3.
func RegisterStorage(r *router.Router) {
	root, ok := storage.LocalRoot()
	if !ok {
		return
	}
	r.Mount("/storage", http.StripPrefix("/storage", http.FileServer(http.Dir(root))))
}
