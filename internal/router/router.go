package router

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/campuslink/backend/internal/consistency"
	"github.com/campuslink/backend/internal/engine"
	"github.com/campuslink/backend/internal/handlers"
	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/realtime"
	"github.com/campuslink/backend/internal/repositories"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// MongoDB holds the social-graph documents; PostgreSQL only stores the
// consistency checker's drift reports.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, checkInterval time.Duration) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.DriftReport{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	mgdb := mgClient.Database("campuslink")

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(mgdb)
	postRepo := repositories.NewMongoPostRepository(mgdb)
	commentRepo := repositories.NewMongoCommentRepository(mgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mgdb)
	followRepo := repositories.NewMongoFollowRepository(mgdb)
	txnRunner := repositories.NewMongoTxnRunner(mgClient)

	// --- Realtime hub and interaction engine ---
	hub := realtime.NewHub()
	emitter := realtime.NewNotificationEmitter(hub)
	eng := engine.New(txnRunner, userRepo, postRepo, commentRepo, notificationRepo, followRepo, emitter.NotificationCreated)
	log.Println("Interaction engine initialized.")

	// --- Background consistency checker ---
	reportStore := consistency.NewPostgresReportStore(pgdb)
	checker := consistency.NewChecker(userRepo, postRepo, reportStore)
	go checker.RunPeriodically(context.Background(), checkInterval)
	log.Printf("Consistency checker started (interval %s).", checkInterval)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Post routes
	postHandler := handlers.NewPostHandler(eng, postRepo, userRepo)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Like and favorite routes
	likeHandler := handlers.NewLikeHandler(eng, userRepo)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Like routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(eng, commentRepo, postRepo, userRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(eng, userRepo, followRepo)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Realtime routes
	wsHandler := handlers.NewWSHandler(hub, userRepo)
	wsHandler.RegisterWSRoutes(api)
	log.Println("Realtime routes configured.")

	// Mobile clients authenticate with a Firebase ID token directly
	// instead of exchanging it for a local JWT.
	fbAPI := e.Group("/api/v1/fb")
	fbAPI.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
	notificationHandler.RegisterNotificationRoutes(fbAPI)
	wsHandler.RegisterWSRoutes(fbAPI)
	log.Println("Firebase-token routes configured.")

	log.Println("All routes configured.")
}
