package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"travelbook_app/internal/config"
	"travelbook_app/internal/handlers"
	appMiddleware "travelbook_app/internal/middleware"
	"travelbook_app/internal/repository"
	"travelbook_app/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize Firebase
	authClient, err := services.InitFirebase(cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	}

	// Initialize Database
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis
	cache, err := services.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()

	// Payment gateway
	gateway := services.NewMidtransGateway(cfg)

	// Repositories
	bookingRepo := repository.NewBookingRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	paymentRepo := repository.NewPaymentRecordRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	taskScheduler := repository.NewTaskScheduler(db)

	// Services
	bookingService := services.NewBookingService(
		bookingRepo, packageRepo, sessionRepo, paymentRepo, auditRepo,
		userRepo, taskScheduler, gateway, cfg)
	catalogService := services.NewCatalogService(db, cache)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient, userRepo, cfg)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	paymentHandler := handlers.NewPaymentHandler(db, cache, bookingService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	contactHandler := handlers.NewContactHandler(db)
	adminHandler := handlers.NewAdminHandler(db, bookingService)
	userHandler := handlers.NewUserHandler(db, cache)
	preferenceHandler := handlers.NewUserPreferenceHandler(db)

	// Public routes
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	e.GET("/api/destinations", catalogHandler.ListDestinations)
	e.GET("/api/destinations/:id", catalogHandler.GetDestination)
	e.GET("/api/packages", catalogHandler.ListPackages)
	e.GET("/api/packages/:id", catalogHandler.GetPackage)
	e.POST("/api/contact", contactHandler.SubmitMessage)

	// Gateway-facing routes; the handlers re-verify everything with the
	// gateway, so these carry no session auth
	e.GET("/payments/success", paymentHandler.PaymentSuccess)
	e.GET("/payments/cancel", paymentHandler.PaymentCancel)
	e.POST("/payments/webhook", paymentHandler.Webhook)

	// Authenticated routes
	api := e.Group("/api")
	api.Use(appMiddleware.RequireAuth(authClient, userRepo))

	api.GET("/me", authHandler.Me)
	api.GET("/me/preferences", preferenceHandler.GetUserPreference)
	api.PUT("/me/preferences", preferenceHandler.UpdateUserPreference)

	api.POST("/bookings", bookingHandler.CreateBooking)
	api.GET("/bookings", bookingHandler.ListMyBookings)
	api.GET("/bookings/:id", bookingHandler.GetBooking)
	api.GET("/bookings/:id/invoice", bookingHandler.GetInvoice)
	api.POST("/bookings/:id/payment", paymentHandler.InitiatePayment)

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(appMiddleware.RequireAdmin())

	admin.GET("/bookings", adminHandler.ListBookings)
	admin.PATCH("/bookings/:id/status", adminHandler.UpdateBookingStatus)
	admin.DELETE("/bookings/:id", adminHandler.DeleteBooking)
	admin.GET("/bookings/:id/audit", adminHandler.GetBookingAudit)
	admin.GET("/reports/summary", adminHandler.GetSummaryReport)

	admin.POST("/destinations", catalogHandler.CreateDestination)
	admin.PUT("/destinations/:id", catalogHandler.UpdateDestination)
	admin.DELETE("/destinations/:id", catalogHandler.DeleteDestination)
	admin.POST("/packages", catalogHandler.CreatePackage)
	admin.PUT("/packages/:id", catalogHandler.UpdatePackage)
	admin.DELETE("/packages/:id", catalogHandler.DeletePackage)

	admin.GET("/contact-messages", contactHandler.ListMessages)
	admin.POST("/contact-messages/:id/read", contactHandler.MarkMessageRead)

	admin.GET("/users", userHandler.ListUsers)
	admin.GET("/users/:id", userHandler.GetUser)
	admin.PATCH("/users/:id/role", userHandler.UpdateUserRole)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
