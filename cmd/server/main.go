package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/campuslink/backend/internal/router"
	"github.com/campuslink/backend/pkg/config"
	"github.com/campuslink/backend/pkg/firebase"
	"github.com/campuslink/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseApp.AuthClient, cfg.CheckInterval())

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
