// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/shop-backend/internal/config"
	"github.com/your-org/shop-backend/internal/interfaces/http/handlers"
	"github.com/your-org/shop-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group under the given router group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupAuthRoutes(rg, db, redisClient, cfg)
	SetupProductRoutes(rg, db, cfg)
	SetupBundleRoutes(rg, db, cfg)
	SetupCartRoutes(rg, db, redisClient, cfg)
	SetupWeatherRoutes(rg, db, cfg)
	SetupAdminRoutes(rg, db, redisClient, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg)) // Tier-aware pricing for logged-in users
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/search", productHandler.SearchProducts)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/price", productHandler.QuotePrice)
	}
}

// SetupBundleRoutes sets up bundle related routes
func SetupBundleRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	bundleHandler := handlers.NewBundleHandler(db, cfg)

	bundles := rg.Group("/bundles")
	{
		bundles.GET("", bundleHandler.GetBundles)
		bundles.GET("/:id", bundleHandler.GetBundle)
		bundles.GET("/:id/price", bundleHandler.GetBundlePrice)
	}
}

// SetupCartRoutes sets up cart related routes. Every cart endpoint works for
// both guests (session cookie) and authenticated users.
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	carts := rg.Group("/cart")
	carts.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		carts.GET("", cartHandler.GetCart)
		carts.DELETE("", cartHandler.ClearCart)
		carts.POST("/items", cartHandler.AddToCart)
		carts.PUT("/items/:id", cartHandler.UpdateCartItem)
		carts.DELETE("/items/:id", cartHandler.RemoveFromCart)
		carts.GET("/count", cartHandler.GetCartCount)
		carts.POST("/validate", cartHandler.ValidateCart)
		carts.GET("/quote.pdf", cartHandler.DownloadQuote)

		// Merge requires a logged-in user
		merge := carts.Group("")
		merge.Use(middleware.AuthMiddleware(cfg))
		{
			merge.POST("/merge", cartHandler.MergeGuestCart)
		}
	}
}

// SetupWeatherRoutes sets up weather dashboard routes
func SetupWeatherRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	weatherHandler := handlers.NewWeatherHandler(db, cfg)

	weather := rg.Group("/weather")
	weather.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		weather.GET("", weatherHandler.GetWeather)

		protected := weather.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.PUT("/location", weatherHandler.UpdateLocation)
			protected.DELETE("/location", weatherHandler.ClearLocation)
		}
	}
}

// SetupAdminRoutes sets up admin-only management routes
func SetupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)
	bundleHandler := handlers.NewBundleHandler(db, cfg)
	authHandler := handlers.NewAuthHandler(db, redisClient, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/products", productHandler.AdminCreateProduct)
		admin.PUT("/products/:id", productHandler.AdminUpdateProduct)
		admin.DELETE("/products/:id", productHandler.AdminDeleteProduct)
		admin.PUT("/products/:id/inventory", productHandler.AdminUpdateInventory)

		admin.POST("/bundles", bundleHandler.AdminCreateBundle)
		admin.PUT("/bundles/:id", bundleHandler.AdminUpdateBundle)
		admin.DELETE("/bundles/:id", bundleHandler.AdminDeleteBundle)

		admin.PUT("/users/:id/pricing-tier", authHandler.SetPricingTier)
	}
}
