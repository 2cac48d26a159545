package handler

import (
	"net/http"
	"strings"

	"storefront/backend/internal/auth"
	"storefront/backend/internal/metrics"
	"storefront/backend/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterOptions carries the HTTP-layer settings.
type RouterOptions struct {
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	// MediaDir, when set, is served under MediaPath. Used with the file storage driver.
	MediaDir  string
	MediaPath string
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(), metrics.Middleware(), cors.New(corsConfig(opts.AllowedOrigins)))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if opts.MediaDir != "" && strings.HasPrefix(opts.MediaPath, "/") {
		router.Static(opts.MediaPath, opts.MediaDir)
	}

	limit := middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Handler()

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	apiV1.Use(auth.OptionalAuthMiddleware(opts.JWTSecret))
	{
		listingRoutes := apiV1.Group("/listings")
		{
			listingRoutes.GET("", h.GetListings)
			listingRoutes.GET("/events", h.ListingEvents) // Must be before /:id
			listingRoutes.GET("/:id", h.GetListingByID)
			listingRoutes.POST("", limit, h.CreateListing)
			listingRoutes.PATCH("/:id", limit, h.UpdateListing)
			listingRoutes.DELETE("/:id", limit, h.DeleteListing)
			listingRoutes.POST("/:id/media/remove", limit, h.RemoveListingMedia)
		}

		mediaRoutes := apiV1.Group("/media")
		mediaRoutes.Use(limit)
		{
			mediaRoutes.POST("", h.UploadMedia)
			mediaRoutes.POST("/delete", h.DeleteMedia)
		}

		cartRoutes := apiV1.Group("/cart")
		{
			cartRoutes.GET("", h.GetCart)
			cartRoutes.DELETE("", limit, h.ClearCart)
			cartRoutes.POST("/items", limit, h.AddCartItem)
			cartRoutes.DELETE("/items/:id", limit, h.RemoveCartItem)
			cartRoutes.POST("/checkout", limit, h.Checkout)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AddAllowHeaders("Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}
