// File: app/app.go
package app

import (
	"context"
	"go-contaazul-api/config"
	"go-contaazul-api/contaazul"
	"go-contaazul-api/db"
	"go-contaazul-api/handler"
	"go-contaazul-api/logger"
	"go-contaazul-api/repository"
	"go-contaazul-api/router"
	"go-contaazul-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database, "db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	// --- Wiring All Layers Together ---
	caCfg := config.AppConfig.ContaAzul

	// The company repository doubles as the token store for the client core.
	companyRepo := repository.NewCompanyRepository(database)
	saleRepo := repository.NewSaleRepository(database)

	executor := contaazul.NewExecutor(caCfg.APIBaseURL, nil)
	refreshEngine := contaazul.NewRefreshEngine(caCfg.ClientID, caCfg.ClientSecret, caCfg.TokenURL, companyRepo)
	caClient := contaazul.NewClient(companyRepo, refreshEngine, executor, contaazul.LogTracer{})

	companyService := service.NewCompanyService(companyRepo, caClient, redisClient)
	companyHandler := handler.NewCompanyHandler(companyService)

	oauthService := service.NewOAuthService(companyRepo, redisClient, service.OAuthConfig{
		ClientID:     caCfg.ClientID,
		ClientSecret: caCfg.ClientSecret,
		AuthURL:      caCfg.AuthURL,
		TokenURL:     caCfg.TokenURL,
		RedirectURI:  caCfg.RedirectURI,
		Scope:        caCfg.Scope,
	})
	oauthHandler := handler.NewOAuthHandler(oauthService)

	salesService := service.NewSalesService(saleRepo, companyRepo, caClient)
	salesHandler := handler.NewSalesHandler(salesService)

	// Start the router with all handlers
	r := router.NewRouter(companyHandler, salesHandler, oauthHandler)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
