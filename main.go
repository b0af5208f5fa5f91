package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/atelierworks/garment-orders-api/config"
	"github.com/atelierworks/garment-orders-api/controllers"
	"github.com/atelierworks/garment-orders-api/middleware"
	"github.com/atelierworks/garment-orders-api/models"
	"github.com/atelierworks/garment-orders-api/services"
)

func main() {
	log.Println("Starting Garment Orders API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Material{},
		&models.Order{},
		&models.Notification{},
		&models.StatusChange{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitDesignService(s3Service)

	if cfg.RedisURL != "" {
		notifier, err := services.NewRedisNotifier(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		services.InitNotifier(notifier)
		log.Println("Order change feed: Redis pub/sub")
	} else {
		services.InitNotifier(services.NewMemoryNotifier())
		log.Println("Order change feed: in-process (REDIS_URL not set)")
	}

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the gin engine with CORS, authentication and all API
// routes.
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		authed := v1.Group("", middleware.EnsureValidToken(cfg))
		{
			authed.POST("/users", controllers.CreateUser)
			authed.GET("/users/me", controllers.GetMyProfile)
			authed.PUT("/users/me", controllers.UpdateMyProfile)

			authed.GET("/materials", controllers.ListMaterials)
			authed.GET("/materials/:id", controllers.GetMaterial)
			authed.POST("/materials", controllers.CreateMaterial)
			authed.PUT("/materials/:id", controllers.UpdateMaterial)
			authed.DELETE("/materials/:id", controllers.DeleteMaterial)

			authed.POST("/orders/estimate", controllers.EstimateOrder)
			authed.POST("/orders", controllers.CreateOrder)
			authed.GET("/orders", controllers.ListOrders)
			authed.GET("/orders/:id", controllers.GetOrder)
			authed.POST("/orders/:id/pay", controllers.PayOrder)
			authed.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
			authed.POST("/orders/:id/archive", controllers.ArchiveOrder)
			authed.DELETE("/orders/:id", controllers.DeleteOrder)
			authed.GET("/orders/:id/design", controllers.GetOrderDesign)

			authed.GET("/notifications", controllers.ListNotifications)
			authed.POST("/notifications/:id/read", controllers.MarkNotificationRead)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Garment Orders API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
