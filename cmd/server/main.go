package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"loyalty-backend/internal/auth"
	"loyalty-backend/internal/cache"
	"loyalty-backend/internal/config"
	"loyalty-backend/internal/db"
	"loyalty-backend/internal/feed"
	"loyalty-backend/internal/handlers"
	"loyalty-backend/internal/health"
	h "loyalty-backend/internal/http"
	"loyalty-backend/internal/middleware"
	"loyalty-backend/internal/repositories"
	"loyalty-backend/internal/services"
	"loyalty-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	log.SetFormatter(&log.JSONFormatter{})

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional: when unavailable, login falls back to bcrypt
	// and the catalog is served straight from Postgres
	if err := cache.Init(cfg); err != nil {
		log.WithField("component", "cache").Warnf("redis unavailable: %v", err)
	} else {
		log.WithField("component", "cache").Info("redis connected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.NewMigrator(pool, migrations.FS).Run(ctx); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	jwtManager := auth.NewJWTManager(cfg)
	healthChecker := health.NewHealthChecker(pool)
	feedHub := feed.NewHub()

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	agencyRepo := repositories.NewAgencyRepository(pool)
	ledgerRepo := repositories.NewLedgerRepository(pool)
	categoryRepo := repositories.NewCategoryRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	bannerRepo := repositories.NewBannerRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool)
	importRepo := repositories.NewImportRepository(pool)

	// Services
	agencyService := services.NewAgencyService(pool, agencyRepo, ledgerRepo)
	catalogService := services.NewCatalogService(pool, productRepo, bannerRepo, orderRepo)
	checkoutService := services.NewCheckoutService(pool, agencyRepo, productRepo, orderRepo, ledgerRepo, feedHub)
	orderService := services.NewOrderService(orderRepo)
	importService := services.NewImportService(pool, agencyRepo, ledgerRepo, importRepo, feedHub)
	statementService := services.NewStatementService(agencyRepo, ledgerRepo)
	totpService := services.NewTOTPService(userRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtManager, totpService)
	agencyHandler := handlers.NewAgencyHandler(agencyService, jwtManager)
	catalogHandler := handlers.NewCatalogHandler(catalogService, categoryRepo)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, catalogService, orderService)
	orderHandler := handlers.NewOrderHandler(orderService, checkoutService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerRepo, statementService, feedHub)
	importHandler := handlers.NewImportHandler(importService)
	productHandler := handlers.NewProductHandler(productRepo)
	bannerHandler := handlers.NewBannerHandler(bannerRepo)
	categoryHandler := handlers.NewCategoryHandler(categoryRepo)
	totpHandler := handlers.NewTOTPHandler(totpService, userRepo)
	monitoringHandler := handlers.NewMonitoringHandler(pool)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo, agencyRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(
		authHandler,
		agencyHandler,
		catalogHandler,
		checkoutHandler,
		orderHandler,
		ledgerHandler,
		importHandler,
		productHandler,
		bannerHandler,
		categoryHandler,
		totpHandler,
		monitoringHandler,
		healthHandler,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(
		middleware.RequestLogging(
			middleware.MetricsMiddleware(
				corsMiddleware(router))))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.WithField("component", "server").Infof("listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
