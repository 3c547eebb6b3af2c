package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/handlers"
	"storefront/internal/metrics"
)

// Deps son los servicios que expone la API
type Deps struct {
	Catalog        handlers.CatalogService
	Carts          handlers.CartService
	Orders         handlers.OrderService
	Ping           handlers.Pinger
	Metrics        *metrics.ServerMetrics
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.Use(handlers.RequestID(), handlers.Logger(deps.Logger))
	if deps.Metrics != nil {
		router.Use(handlers.Metrics(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	health := handlers.NewHealthHandler(deps.Ping, deps.Logger)
	router.GET("/healthz", health.Healthz)

	products := handlers.NewProductHandler(deps.Catalog, deps.Logger)
	categories := handlers.NewCategoryHandler(deps.Catalog, deps.Logger)
	carts := handlers.NewCartHandler(deps.Carts, deps.Logger)
	orders := handlers.NewOrderHandler(deps.Orders, deps.Catalog.Pager(), deps.Metrics, deps.Logger)

	v1 := router.Group("/v1", handlers.Timeout(deps.RequestTimeout))
	{
		v1.GET("/products", products.ListProducts)
		v1.GET("/products/featured", products.FeaturedProducts)
		v1.GET("/products/:id", products.GetProduct)
		v1.POST("/products", products.CreateProduct)
		v1.PATCH("/products/:id", products.UpdateProduct)
		v1.DELETE("/products/:id", products.DeleteProduct)

		v1.GET("/categories", categories.ListCategories)
		v1.GET("/categories/:slug", categories.GetCategory)
		v1.POST("/categories", categories.CreateCategory)

		v1.PUT("/coupons", carts.SaveCoupon)
	}

	user := v1.Group("", handlers.RequireUser())
	{
		user.GET("/cart", carts.GetCart)
		user.DELETE("/cart", carts.ClearCart)
		user.POST("/cart/items", carts.AddItem)
		user.PATCH("/cart/items/:productId", carts.UpdateItem)
		user.DELETE("/cart/items/:productId", carts.RemoveItem)
		user.POST("/cart/coupon", carts.ApplyCoupon)
		user.DELETE("/cart/coupon", carts.RemoveCoupon)

		user.POST("/orders", orders.PlaceOrder)
		user.GET("/orders", orders.ListOrders)
		user.GET("/orders/:id", orders.GetOrder)
	}
}
