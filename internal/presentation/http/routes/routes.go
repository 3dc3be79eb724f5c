package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/masterstock-api/internal/config"
	"github.com/sangkips/masterstock-api/internal/domain/entity"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/internal/presentation/http/handler"
	"github.com/sangkips/masterstock-api/internal/presentation/http/middleware"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"github.com/sangkips/masterstock-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Sale    *handler.SaleHandler
	User    *handler.UserHandler
	System  *handler.SystemHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(deps.Metrics.Middleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"store":   deps.Cfg.Store.Location,
		})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Public routes
		registerAuthRoutes(v1, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(deps.RateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	superAdmin := middleware.RequireRole(entity.RoleSuperAdmin)

	protected.GET("/profile", h.Auth.Me)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/low-stock", h.Product.GetLowStock)
		products.GET("/:id", h.Product.Get)
		products.POST("", superAdmin, h.Product.Create)
		products.POST("/import", superAdmin, h.Product.Import)
		products.PUT("/:id", superAdmin, h.Product.Update)
		products.DELETE("/:id", superAdmin, h.Product.Delete)
		products.DELETE("", superAdmin, h.Product.DeleteAll)
	}

	cart := protected.Group("/cart")
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:product_id", h.Cart.SetQuantity)
		cart.DELETE("/items/:product_id", h.Cart.RemoveItem)
		cart.PUT("/discount", h.Cart.SetDiscount)
		cart.PUT("/payment", h.Cart.SetPayment)
		cart.POST("/checkout", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:     deps.IdempotencyRepo,
			Logger:   deps.Logger,
			Required: true,
		}), h.Cart.Checkout)
	}

	sales := protected.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		sales.GET("/:id", h.Sale.Get)
		sales.GET("/:id/receipt", h.Sale.Receipt)
		sales.GET("/:id/receipt/pdf", h.Sale.Download)
		sales.POST("/:id/receipt/print", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		}), h.Sale.Print)
	}

	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", superAdmin, h.Printer.TestPrint)
	}

	admin := protected.Group("/admin", superAdmin)
	{
		admin.GET("/users", h.User.List)
		admin.POST("/users", h.User.Create)
		admin.DELETE("/users/:id", h.User.Delete)
		admin.PUT("/super-admin/password", h.User.ResetSuperAdminPassword)
		admin.POST("/reset", h.System.Reset)
	}
}
