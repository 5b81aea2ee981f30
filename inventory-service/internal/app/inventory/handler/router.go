package handler

import (
	"net/http"

	"vidasmart/pkg/logger"
	"vidasmart/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers собирает обработчики для SetupRoutes
type Handlers struct {
	Products    *ProductHandler
	Allocations *AllocationHandler
	Sales       *SaleHandler
	Investments *InvestmentHandler
	Catalog     *CatalogHandler
	Analytics   *AnalyticsHandler
	Auth        *AuthHandler
}

// SetupRoutes настраивает все маршруты Inventory Service с использованием Gin.
// Все бизнес-маршруты требуют JWT; мутации принимают Idempotency-Key.
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware, idempotency *Idempotency) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("inventory-service"))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", IdempotencyKeyHeader, "X-Request-ID"},
		ExposeHeaders:    []string{IdempotentReplayHeader, "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint - публичный, без аутентификации
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "inventory-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичный вход
	router.POST("/auth/login", h.Auth.Login)

	authenticated := router.Group("")
	authenticated.Use(authMiddleware.Authenticate())
	authenticated.Use(idempotency.Middleware())
	adminOnly := authMiddleware.RequireRole("admin")

	users := authenticated.Group("/users")
	{
		users.GET("/me", h.Auth.Me)
		users.GET("", adminOnly, h.Auth.ListUsers)
		users.POST("", adminOnly, h.Auth.CreateUser)
	}

	products := authenticated.Group("/products")
	{
		products.GET("", h.Products.ListProducts)
		products.GET("/:id", h.Products.GetProduct)
		products.GET("/:id/versions", h.Products.ListVersions)
		products.GET("/:id/availability", h.Products.Availability)
		products.POST("", h.Products.CreateProduct)
		products.POST("/adjust-stock", h.Products.AdjustStock)
		products.PUT("/:id", h.Products.UpdateProduct)
		products.DELETE("/:id", adminOnly, h.Products.ArchiveProduct) // мягкое удаление
	}

	shared := authenticated.Group("/shared-inventory")
	{
		shared.GET("", h.Allocations.ListAllocations)
		shared.GET("/:id", h.Allocations.GetAllocation)
		shared.POST("", h.Allocations.Allocate)
		shared.PUT("/:id", h.Allocations.UpdateAllocation)
		shared.DELETE("/:id", h.Allocations.DeleteAllocation)
	}

	sales := authenticated.Group("/sales")
	{
		sales.GET("", h.Sales.ListSales)
		sales.GET("/:id", h.Sales.GetSale)
		sales.GET("/:id/profit", h.Sales.SaleProfit)
		sales.POST("", h.Sales.RecordSale)
		sales.PUT("/:id", h.Sales.UpdateSale)
		sales.DELETE("/:id", h.Sales.DeleteSale)
	}

	investments := authenticated.Group("/investments")
	{
		investments.GET("", h.Investments.ListInvestments)
		investments.POST("", h.Investments.RecordInvestment)
	}

	categories := authenticated.Group("/categories")
	{
		categories.GET("", h.Catalog.GetAllCategories) // ?tree=true - дерево (кеш Redis)
		categories.GET("/:id", h.Catalog.GetCategory)
		categories.POST("", h.Catalog.CreateCategory)
		categories.PUT("/:id", h.Catalog.UpdateCategory)
		categories.DELETE("/:id", adminOnly, h.Catalog.DeleteCategory)
	}

	providers := authenticated.Group("/providers")
	{
		providers.GET("", h.Catalog.ListProviders)
		providers.GET("/:id", h.Catalog.GetProvider)
		providers.POST("", h.Catalog.CreateProvider)
		providers.PUT("/:id", h.Catalog.UpdateProvider)
		providers.DELETE("/:id", adminOnly, h.Catalog.DeleteProvider)
	}

	currencies := authenticated.Group("/currencies")
	{
		currencies.GET("", h.Catalog.ListCurrencies)
		currencies.POST("", h.Catalog.CreateCurrency)
		currencies.DELETE("/:id", adminOnly, h.Catalog.DeleteCurrency)
	}

	authenticated.GET("/analytics/dashboard", h.Analytics.Dashboard)

	return router
}
