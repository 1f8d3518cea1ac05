package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Livo-Africa/radikal-nigeria-sub000/config"
	"github.com/Livo-Africa/radikal-nigeria-sub000/controllers"
	"github.com/Livo-Africa/radikal-nigeria-sub000/middleware"
	"github.com/Livo-Africa/radikal-nigeria-sub000/models"
	"github.com/Livo-Africa/radikal-nigeria-sub000/services"
)

func main() {
	// Basic logging
	log.Println("Starting Radikal Booking API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.Order{}, &models.Outfit{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Seed the starter wardrobe so a fresh deployment has outfits to list.
	if err := models.SeedOutfits(db); err != nil {
		log.Fatalf("Failed to seed wardrobe: %v", err)
	}

	// Initialize services
	if _, err := services.InitS3Service(); err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitImageService(services.GetS3Service())
	services.InitPaystackService(cfg)
	services.InitNotifyService(cfg)

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin router with all routes and middleware.
func setupRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// The booking front-end is served from a different origin.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Booking API consumed by the checkout flow
	api := router.Group("/api")
	{
		api.POST("/orders", controllers.CreateOrder)
		api.POST("/orders/upload-file", controllers.UploadOrderFile)
		api.POST("/orders/confirm", controllers.ConfirmOrder)
		api.POST("/outfits", controllers.ListOutfits)
		api.POST("/telegram/notify", controllers.TelegramNotify)
		api.POST("/sms/send-confirmation", controllers.SendSMSConfirmation)

		api.GET("/catalog/categories", controllers.ListCategories)
		api.GET("/catalog/packages", controllers.ListPackages)
		api.GET("/catalog/addons", controllers.ListAddOns)
	}

	// Versioned operational routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		admin := v1.Group("/admin", middleware.RequireAdmin())
		admin.GET("/orders", controllers.ListOrders)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Radikal Booking API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
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

	// Ping the database to verify connection
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

	// Get list of tables
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
