package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carcool-backend/config"
	"carcool-backend/controllers"
	"carcool-backend/draft"
	"carcool-backend/logger"
	"carcool-backend/routes"
	"carcool-backend/services"
	"carcool-backend/storage"
	"carcool-backend/store"
	"carcool-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if _, err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Env,
		ServiceName: "carcool-backend",
		File:        cfg.Log.File,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zap.L().Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.JWTSecret == "" {
		zap.L().Fatal("JWT_SECRET not set")
	}

	db, err := config.ConnectDB(cfg.DB)
	if err != nil {
		zap.L().Fatal("database connection failed", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		zap.L().Fatal("migration failed", zap.Error(err))
	}

	ctx := context.Background()
	backend := store.New(db)
	if err := backend.SeedCatalog(ctx); err != nil {
		zap.L().Fatal("catalog seed failed", zap.Error(err))
	}
	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if _, err := backend.EnsureUser(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, "Owner"); err != nil {
			zap.L().Fatal("admin bootstrap failed", zap.Error(err))
		}
	}

	rdb, err := config.NewRedisClient(cfg.Redis)
	if err != nil {
		zap.L().Fatal("redis connection failed", zap.Error(err))
	}

	draftTTL := time.Duration(cfg.Draft.TTLHours) * time.Hour
	var (
		drafts   draft.Store
		sessions services.SessionStore
	)
	if rdb != nil {
		drafts = draft.NewRedisStore(rdb, draftTTL)
		sessions = services.NewRedisSessionStore(rdb)
	} else {
		zap.L().Warn("REDIS_ADDR not set, drafts and sign-outs are kept in memory")
		drafts = draft.NewMemoryStore(draftTTL)
		sessions = services.NewMemorySessionStore()
	}

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		zap.L().Fatal("object storage init failed", zap.Error(err))
	}
	filesDir := ""
	if local, ok := objects.(*storage.LocalStorage); ok {
		filesDir = local.Dir()
	}

	invoices := services.NewInvoiceService(backend, objects, cfg.BusinessName)

	// Keep the interface nil when Twilio is off; a typed nil would look enabled.
	var notifier services.Notifier
	if n := services.NewNotificationService(backend, cfg.Twilio, cfg.BusinessName); n != nil {
		notifier = n
	} else {
		zap.L().Info("twilio not configured, invoice notifications disabled")
	}

	billing := services.NewBillingService(backend, invoices, notifier)
	lookup := services.NewLookupService(backend)

	reconciler, err := services.NewReconciler(backend, invoices, notifier)
	if err != nil {
		zap.L().Fatal("reconciler init failed", zap.Error(err))
	}
	if err := reconciler.Start(cfg.Invoice.ReconcileSchedule); err != nil {
		zap.L().Fatal("reconciler schedule invalid", zap.Error(err))
	}
	defer reconciler.Stop()

	tokenTTL := time.Duration(cfg.Auth.ExpiryHours) * time.Hour
	var revocations utils.RevocationChecker = sessions

	r := routes.SetupRouter(routes.Handlers{
		Auth:          controllers.NewAuthController(backend, sessions, cfg.Auth.JWTSecret, tokenTTL, cfg.Env == "production"),
		Drafts:        controllers.NewDraftController(drafts, lookup, billing, backend, draft.ParseMode(cfg.Draft.Validation)),
		Bills:         controllers.NewBillController(backend, invoices, notifier),
		Reports:       controllers.NewReportController(backend),
		Dashboard:     controllers.NewDashboardController(backend),
		Inventory:     controllers.NewInventoryController(backend),
		Services:      controllers.NewServiceController(backend),
		Customers:     controllers.NewCustomerController(backend),
		Profile:       controllers.NewProfileController(backend),
		Notifications: controllers.NewNotificationController(backend),
		JWTSecret:     cfg.Auth.JWTSecret,
		Revocations:   revocations,
		CORSOrigins:   cfg.CORSOrigins,
		FilesDir:      filesDir,
	})
	if cfg.Env != "production" {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
