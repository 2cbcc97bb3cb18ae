package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ancpricing/internal/config"
	"ancpricing/internal/handler"
	"ancpricing/internal/repository/postgres"
	"ancpricing/internal/router"
	"ancpricing/internal/service"
	s3storage "ancpricing/internal/storage/s3"
	"ancpricing/internal/validator"
)

// @title Pricing Document API
// @version 1.0
// @description Parses spreadsheet pricing workbooks, validates their totals and renders round-then-sum totals.
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("server: no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	pricingRepo := postgres.NewPricingDocumentRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize pricing engines
	parseOpts := cfg.Pricing.ParseOptions()
	engine := validator.NewEngine(validator.DefaultRegistry(), cfg.Pricing.DisplayPrecision)
	analyzer := service.NewAnalyzer(parseOpts, engine)

	// Initialize services
	pricingSvc := service.NewPricingService(pricingRepo, s3Client, analyzer, &cfg.S3, &cfg.Pricing)

	// Initialize handlers
	pricingH := handler.NewPricingHandler(pricingSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(pricingH, healthH, cfg.CORS.AllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.Revalidation.Enabled {
		worker := service.NewRevalidationWorker(pricingRepo, pricingSvc, service.RevalidationConfig{
			PollInterval: time.Duration(cfg.Revalidation.PollIntervalSecs) * time.Second,
			BatchSize:    cfg.Revalidation.BatchSize,
			Concurrency:  cfg.Revalidation.Concurrency,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	wg.Wait()
	log.Printf("Server stopped")
	return nil
}
