package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/voltride/voltride-backend/internal/config"
	"github.com/voltride/voltride-backend/internal/database"
	"github.com/voltride/voltride-backend/internal/handlers"
	"github.com/voltride/voltride-backend/internal/middleware"
	"github.com/voltride/voltride-backend/internal/models"
	"github.com/voltride/voltride-backend/internal/payment"
	"github.com/voltride/voltride-backend/internal/services"
	"github.com/voltride/voltride-backend/internal/store"
	"github.com/voltride/voltride-backend/internal/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Payment engine
	bookingStore := store.NewBookingStore(db)
	authenticator := payment.NewAuthenticator(cfg.Payment.GatewayAPIKey)
	gateway := payment.NewGatewayClient(cfg.Payment)
	reconciler := payment.NewReconciler(bookingStore, log.Default())
	deduper := services.NewWebhookDeduper(services.RedisClient)

	// Expiry sweeper runs for the life of the process and stops with it
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := workers.NewExpirySweeper(
		bookingStore,
		cfg.Payment.SweepInterval,
		cfg.Payment.SweepBackoff,
		log.Default(),
		workers.NopMetrics{},
	)
	sweeper.Notify = func(b models.Booking) {
		hub.SendBookingCancelled(b.RenterID, services.BookingCancelled{
			BookingID: b.ID,
			Code:      b.Code,
			Reason:    "payment window expired",
		})
	}
	go sweeper.Run(ctx)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Serve static files
	r.Static("/uploads", "/app/uploads")

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// Gateway webhook (api-key authenticated, no JWT)
		api.POST("/payments/webhook", handlers.PaymentWebhook(authenticator, deduper, reconciler, hub))

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			vehicles := protected.Group("/vehicles")
			{
				vehicles.GET("", handlers.GetVehicles(db))
				vehicles.GET("/:id", handlers.GetVehicle(db))
				vehicles.POST("", middleware.StaffOnly(), handlers.CreateVehicle(db))
			}

			depots := protected.Group("/depots")
			{
				depots.GET("", handlers.GetDepots(db))
				depots.POST("", middleware.StaffOnly(), handlers.CreateDepot(db))
			}

			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(db, cfg.Payment))
				bookings.GET("/mine", handlers.GetMyBookings(db))
				bookings.GET("/:id", handlers.GetBooking(db))
				bookings.POST("/:id/checkout", handlers.CheckoutBooking(db, gateway, cfg.Payment))
				bookings.POST("/:id/cancel", handlers.CancelBooking(db))
				bookings.GET("/:id/contract", handlers.GetContract(db))
				bookings.POST("/:id/contract", middleware.StaffOnly(), handlers.UploadContractDocument(db))
			}
		}
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
