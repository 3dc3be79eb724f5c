package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/masterstock-api/internal/application/service"
	"github.com/sangkips/masterstock-api/internal/config"
	domainRepo "github.com/sangkips/masterstock-api/internal/domain/repository"
	"github.com/sangkips/masterstock-api/internal/infrastructure/cache"
	"github.com/sangkips/masterstock-api/internal/infrastructure/database"
	"github.com/sangkips/masterstock-api/internal/infrastructure/memory"
	"github.com/sangkips/masterstock-api/internal/infrastructure/repository"
	"github.com/sangkips/masterstock-api/internal/presentation/http/handler"
	"github.com/sangkips/masterstock-api/internal/presentation/http/middleware"
	"github.com/sangkips/masterstock-api/internal/presentation/http/routes"
	"github.com/sangkips/masterstock-api/pkg/logger"
	"github.com/sangkips/masterstock-api/pkg/metrics"
	"github.com/sangkips/masterstock-api/pkg/printer"
	"github.com/sangkips/masterstock-api/pkg/utils"
	"go.uber.org/zap"
)

type stores struct {
	catalog     domainRepo.CatalogStore
	ledger      domainRepo.SaleLedger
	users       domainRepo.UserRepository
	idempotency domainRepo.IdempotencyRepository
	close       func()
}

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.App.Env,
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open stores", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	m := metrics.New(cfg.App.Name)

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	thermalPrinter, err := printer.New(printer.Config{
		Type:     cfg.Printer.Type,
		USBPath:  cfg.Printer.USBPath,
		Address:  cfg.Printer.Address,
		FilePath: cfg.Printer.FilePath,
	})
	if err != nil {
		log.Warn("failed to initialize printer, printing disabled", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
		cfg.Printer.Type = printer.TypeNone
	}
	defer thermalPrinter.Close()

	// Services
	authService := service.NewAuthService(st.users, jwtManager, log)
	userService := service.NewUserService(st.users, log)
	catalogService := service.NewCatalogService(st.catalog, log, m)
	salesService := service.NewSalesService(
		st.catalog,
		st.ledger,
		utils.NewSaleIDGenerator(time.Now),
		time.Now,
		cfg.Store.Location,
		log,
		m,
	)
	printerService := service.NewPrinterService(thermalPrinter, cfg.Printer.Type, cfg.Printer.CharWidth, log)
	receiptService := service.NewReceiptService(
		st.catalog,
		st.ledger,
		printerService,
		service.ReceiptOptions{
			StoreName:    cfg.Store.Brand,
			ReturnPolicy: cfg.Store.ReturnPolicy,
			Location:     cfg.Store.TimeLocation(),
		},
		cfg.Receipt.CompressPDF,
		log,
		m,
	)
	systemService := service.NewSystemService(st.catalog, st.ledger, salesService, log, m)

	if err := userService.EnsureUsers(ctx, []service.SeedUser{
		{Username: "admin", Password: cfg.Seed.AdminPassword},
		{Username: "Easytech", Password: cfg.Seed.SuperAdminPassword, IsSuperAdmin: true},
		{Username: "cashier1", Password: cfg.Seed.CashierPassword},
	}); err != nil {
		log.Fatal("failed to seed users", zap.Error(err))
	}

	if err := catalogService.SyncInventory(ctx); err != nil {
		log.Warn("failed to publish inventory metrics", zap.Error(err))
	}

	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Product: handler.NewProductHandler(catalogService),
		Cart:    handler.NewCartHandler(salesService, receiptService),
		Sale:    handler.NewSaleHandler(salesService, receiptService),
		User:    handler.NewUserHandler(userService, authService),
		System:  handler.NewSystemHandler(systemService),
		Printer: handler.NewPrinterHandler(printerService),
	}

	stopPurge := middleware.PurgeExpiredKeys(st.idempotency, time.Hour, log)
	defer stopPurge()

	rateLimiter := middleware.NewUserRateLimiter(
		middleware.RateLimiterConfigFor(cfg.RateLimit.Requests, cfg.RateLimit.Duration),
	)
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: st.idempotency,
		RateLimiter:     rateLimiter,
		Metrics:         m,
		Logger:          log,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Info("starting server",
		zap.String("port", port),
		zap.String("environment", cfg.App.Env),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("printer", cfg.Printer.Type),
	)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

// openStores builds the catalog, ledger, user and idempotency stores for the
// configured driver. A configured redis URL takes over idempotency keys.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	st := &stores{close: func() {}}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Env, log)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db, log); err != nil {
			return nil, err
		}
		st.catalog = repository.NewCatalogStore(db)
		st.ledger = repository.NewSaleLedger(db)
		st.users = repository.NewUserRepository(db)
		st.idempotency = repository.NewIdempotencyRepository(db)
		st.close = func() {
			if err := database.Close(db); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		}
	default:
		st.catalog = memory.NewCatalogStore()
		st.ledger = memory.NewSaleLedger()
		st.users = memory.NewUserRepository()
		st.idempotency = memory.NewIdempotencyRepository()
	}

	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			st.close()
			return nil, err
		}
		st.idempotency = cache.NewIdempotencyRepository(client, log)
		closeStores := st.close
		st.close = func() {
			_ = client.Close()
			closeStores()
		}
		log.Info("idempotency keys stored in redis")
	}

	return st, nil
}
