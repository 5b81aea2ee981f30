package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidasmart/inventory-service/internal/app/inventory/config"
	"vidasmart/inventory-service/internal/app/inventory/handler"
	"vidasmart/inventory-service/internal/app/inventory/infrastructure/messaging"
	"vidasmart/inventory-service/internal/app/inventory/repository"
	"vidasmart/inventory-service/internal/app/inventory/service"
	"vidasmart/inventory-service/internal/app/inventory/util"
	"vidasmart/pkg/logger"

	"github.com/bsm/redislock"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("inventory-service", cfg.LogLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "inventory-service", cfg.LogLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	// === POSTGRESQL ===
	// GORM ведёт транзакции склада, пул pgx обслуживает дерево категорий и аналитику
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database schema")
	}
	logger.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Connected to PostgreSQL")

	pool, err := connectPool(context.Background(), cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create pgx pool")
	}
	defer pool.Close()

	// === REDIS ===
	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	locker := redislock.New(redisClient.Client())
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	// === KAFKA ===
	// события движения склада читает inventory-worker
	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	store := repository.NewStore(db)
	categoryRepo := repository.NewCategoryRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	userRepo := repository.NewUserRepository(db)

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	hasher := util.NewPasswordHasher(cfg.JWT.BcryptCost)

	inventoryService := service.NewInventoryService(store, categoryRepo, redisClient, kafkaProducer)
	allocationService := service.NewAllocationService(store, kafkaProducer)
	saleService := service.NewSaleService(store, redisClient, kafkaProducer)
	investmentService := service.NewInvestmentService(store, categoryRepo, redisClient, kafkaProducer)
	catalogService := service.NewCatalogService(categoryRepo, store, redisClient, cfg.Cache.CategoryTTL)
	analyticsService := service.NewAnalyticsService(analyticsRepo, redisClient, cfg.Cache.AnalyticsTTL)
	authService := service.NewAuthService(userRepo, jwtManager, hasher)

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(bootstrapCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create bootstrap admin")
	}
	bootstrapCancel()

	validate := handler.NewValidator()
	handlers := handler.Handlers{
		Products:    handler.NewProductHandler(inventoryService, validate),
		Allocations: handler.NewAllocationHandler(allocationService, validate),
		Sales:       handler.NewSaleHandler(saleService, validate),
		Investments: handler.NewInvestmentHandler(investmentService, validate),
		Catalog:     handler.NewCatalogHandler(catalogService, validate),
		Analytics:   handler.NewAnalyticsHandler(analyticsService),
		Auth:        handler.NewAuthHandler(authService, validate),
	}
	authMiddleware := handler.NewAuthMiddleware(authService)
	idempotency := handler.NewIdempotency(redisClient, locker, cfg.Idempotency.ResponseTTL, cfg.Idempotency.LockTTL)

	router := handler.SetupRoutes(handlers, authMiddleware, idempotency)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Inventory Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Inventory Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Inventory Service stopped gracefully")
}

func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else {
				pingErr := sqlDB.Ping()
				if pingErr != nil {
					err = pingErr
				} else {
					sqlDB.SetMaxOpenConns(cfg.MaxConns)
					sqlDB.SetMaxIdleConns(5)
					sqlDB.SetConnMaxLifetime(5 * time.Minute)
					sqlDB.SetConnMaxIdleTime(1 * time.Minute)
					return db, nil
				}
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// connectPool открывает пул pgx к той же базе; база уже доступна после connectDB
func connectPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
