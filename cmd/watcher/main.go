package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pricewatcher/internal/config"
	cronrunner "pricewatcher/internal/cron"
	"pricewatcher/internal/db"
	"pricewatcher/internal/handler"
	"pricewatcher/internal/logger"
	"pricewatcher/internal/notifier"
	gormrepository "pricewatcher/internal/repository/gorm"
	"pricewatcher/internal/scraper"
	"pricewatcher/internal/service"
	"pricewatcher/internal/tracker"
)

func main() {
	cfgPath := os.Getenv("PW_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PW_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	products, err := cfg.Products()
	if err != nil {
		logger.Fatal("invalid product config", zap.Error(err))
	}
	if len(products) == 0 {
		logger.Warn("no products configured; nothing to watch")
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	checker := &service.CheckService{
		Repo:         store,
		Fetcher:      scraper.NewAmazonScraper(cfg.Scraper, logger),
		Notifier:     notifier.NewEmailNotifier(cfg.Email, logger),
		Dedup:        &tracker.Dedup{Repo: store},
		Evaluator:    tracker.Evaluator{MinDiscountSamples: cfg.Tracker.MinDiscountSamples},
		Products:     products,
		Logger:       logger,
		ProductPause: cfg.Scraper.ProductPause,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	productHandler := &handler.ProductHandler{Repo: store, Products: products}
	productHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.Check, func(ctx context.Context) {
			checker.RunCycle(ctx)
		}); err != nil {
			logger.Fatal("cron register check cycle failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	if cfg.Cron.RunOnStart {
		go checker.RunCycle(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
