// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sruthysatheesh/blockchain-supplychain/internal/config"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/handlers"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/ledger"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/middleware"
	"github.com/sruthysatheesh/blockchain-supplychain/internal/services"
)

// Roles whose on-chain identity can hold or move custody.
var custodyRoles = []string{"Farmer", "Collection Point", "Warehouse", "Processing Unit", "Retailer"}

func Setup(db *gorm.DB, chain *ledger.Ledger, cfg *config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit())

	authService := services.NewAuthService(db, chain, cfg)
	farmService := services.NewFarmService(db, chain)
	actorService := services.NewActorService(db, chain)
	productService := services.NewProductService(chain)

	authHandler := handlers.NewAuthHandler(authService)
	farmHandler := handlers.NewFarmHandler(farmService)
	actorHandler := handlers.NewActorHandler(actorService)
	productHandler := handlers.NewProductHandler(productService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/signup", authHandler.SignUp)
			auth.POST("/signin", authHandler.SignIn)
			auth.POST("/wallet", authHandler.WalletSignIn)
			auth.POST("/refresh", authHandler.Refresh)
		}
		v1.GET("/auth/me", middleware.AuthRequired(), authHandler.Profile)

		v1.POST("/farms/register", middleware.AuthRateLimit(), farmHandler.Register)

		adminFarms := v1.Group("/admin/farms")
		adminFarms.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			adminFarms.GET("", farmHandler.List)
			adminFarms.GET("/:id", farmHandler.Get)
			adminFarms.PUT("/:id/approve", middleware.WriteRateLimit(), farmHandler.Approve)
			adminFarms.PUT("/:id/decline", middleware.WriteRateLimit(), farmHandler.Decline)
		}

		actors := v1.Group("/actors")
		{
			actors.GET("", middleware.AuthRequired(), actorHandler.ListReceivers)
			actors.GET("/:wallet", actorHandler.Profile)
		}

		products := v1.Group("/products")
		{
			// Public traceability: scanning a QR code needs no account.
			products.GET("/:id", productHandler.Get)
			products.GET("/:id/trace", productHandler.Trace)
			products.GET("/counter", productHandler.Counter)

			products.GET("", middleware.AuthRequired(), productHandler.List)

			write := products.Group("")
			write.Use(middleware.AuthRequired(), middleware.WriteRateLimit())
			{
				write.POST("", middleware.RoleRequired("Farmer"), productHandler.Create)
				write.POST("/:id/ship", middleware.RoleRequired(custodyRoles...), productHandler.Ship)
				write.POST("/:id/receive", middleware.RoleRequired("Collection Point", "Warehouse", "Processing Unit", "Retailer"), productHandler.Receive)
				write.POST("/:id/process", middleware.RoleRequired("Processing Unit"), productHandler.Process)
				write.POST("/process-with-recipe", middleware.RoleRequired("Processing Unit"), productHandler.ProcessWithRecipe)
				write.POST("/:id/sell", middleware.RoleRequired("Retailer"), productHandler.Sell)
			}
		}
	}

	return r
}
