package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	billingapp "github.com/rently/backend/internal/application/billing"
	leasingapp "github.com/rently/backend/internal/application/leasing"
	"github.com/rently/backend/internal/infrastructure/auth"
	"github.com/rently/backend/internal/infrastructure/config"
	"github.com/rently/backend/internal/infrastructure/logger"
	"github.com/rently/backend/internal/infrastructure/notification"
	"github.com/rently/backend/internal/infrastructure/persistence"
	"github.com/rently/backend/internal/infrastructure/scheduler"
	"github.com/rently/backend/internal/interfaces/http/handler"
	"github.com/rently/backend/internal/interfaces/http/middleware"
	"github.com/rently/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting rently backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	recordRepo := persistence.NewGormTenancyRecordRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	tenancyWriter := persistence.NewGormTenancyWriter(db.DB)

	// SMS delivery, rate limited through Redis
	var notifier billingapp.Notifier
	if cfg.Notification.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		limiter := notification.NewRateLimiter(redisClient, cfg.Notification.RateLimitPerDay, cfg.Notification.RateLimitWindow)
		notifier = notification.NewSMSSender(cfg.Notification, limiter, log)
		log.Info("SMS notifications enabled", zap.String("from", cfg.Notification.FromNumber))
	} else {
		notifier = notification.NewNoopSender(log)
		log.Info("SMS notifications disabled")
	}

	// Application services
	propertyService := leasingapp.NewPropertyService(propertyRepo, unitRepo, log)
	unitService := leasingapp.NewUnitService(unitRepo, propertyRepo, tenancyWriter, log)
	tenantService := leasingapp.NewTenantService(tenantRepo, unitRepo, recordRepo, log)
	tenancyService := leasingapp.NewTenancyService(unitRepo, tenantRepo, propertyRepo, recordRepo, tenancyWriter, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, tenantRepo, unitRepo, notifier, log)
	paymentService := billingapp.NewPaymentService(paymentRepo, invoiceRepo, tenantRepo, unitRepo, log)
	billingRunService := billingapp.NewBillingRunService(invoiceRepo, tenantRepo, unitRepo, notifier, log)

	// Billing scheduler
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	billingScheduler := scheduler.NewBillingScheduler(cfg.Scheduler, billingRunService, log)
	if cfg.Scheduler.Enabled {
		if err := billingScheduler.Start(schedCtx); err != nil {
			log.Fatal("Failed to start billing scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer stopCancel()
			if err := billingScheduler.Stop(stopCtx); err != nil {
				log.Error("Billing scheduler did not stop cleanly", zap.Error(err))
			}
		}()
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	// Public health endpoints
	systemHandler := handler.NewSystemHandler(db, version)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Authenticated API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Auth(jwtService))
	r.Register(handler.NewPropertyHandler(propertyService, unitService))
	r.Register(handler.NewUnitHandler(unitService, tenancyService, tenantService))
	r.Register(handler.NewTenantHandler(tenantService, invoiceService, paymentService))
	r.Register(handler.NewInvoiceHandler(invoiceService))
	r.Register(handler.NewPaymentHandler(paymentService))
	r.Register(handler.NewBillingRunHandler(billingRunService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
