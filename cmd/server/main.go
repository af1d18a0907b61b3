package main

import (
	"os"

	"storefront/config"
	"storefront/internal/delivery"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Unknown log level '%s', falling back to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting Storefront API...")

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connection established.")

	productRepo := repository.NewPostgresProductRepository(database, logger)
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	logger.Info("Repositories initialized.")

	catalogUseCase := usecase.NewCatalogUseCase(productRepo, logger)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, productRepo, cfg.AtomicReservation, logger)
	adminAuth, err := usecase.NewAdminAuthenticator(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminTokenTTL, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize admin authenticator: %v", err)
	}
	logger.Info("Use cases initialized.")

	productHandler := delivery.NewProductHandler(catalogUseCase, logger)
	orderHandler := delivery.NewOrderHandler(orderUseCase, logger)
	adminHandler := delivery.NewAdminHandler(catalogUseCase, orderUseCase, adminAuth, logger)
	logger.Info("Handlers initialized.")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(delivery.RequestLogger(logger))

	api := router.Group("/api")
	productHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api, delivery.AdminAuthMiddleware(adminAuth, logger))
	logger.Info("API routes registered.")

	logger.Infof("Starting server on %s", cfg.HTTPPort)
	if err := router.Run(cfg.HTTPPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
