package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidasmart/inventory-worker/internal/app/worker/config"
	"vidasmart/inventory-worker/internal/app/worker/handler"
	"vidasmart/inventory-worker/internal/app/worker/processor"
	"vidasmart/inventory-worker/internal/app/worker/repository"
	"vidasmart/inventory-worker/internal/app/worker/service"
	"vidasmart/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init("inventory-worker", cfg.LogLevel)
	if addr := os.Getenv("LOGSTASH_ADDR"); addr != "" {
		if err := logger.InitLogstash(addr, "inventory-worker", cfg.LogLevel); err != nil {
			logger.Warn().Err(err).Msg("Logstash unavailable, logging to stdout")
		}
	}
	logger.Info().Msg("Starting Inventory Worker...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	// Только чтение products для снимков остатков
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Successfully connected to PostgreSQL")

	// === ПОДКЛЮЧЕНИЕ К MONGODB ===
	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect MongoDB")
		}
	}()
	mongoDB := mongoClient.Database(cfg.MongoDB.Database)
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Successfully connected to MongoDB")

	// === РЕПОЗИТОРИИ И СЕРВИСЫ ===
	movementRepo := repository.NewMovementRepository(mongoDB)
	snapshotRepo := repository.NewSnapshotRepository(mongoDB)
	productRepo := repository.NewProductRepository(db)

	journalSvc := service.NewJournalService(movementRepo)
	snapshotSvc := service.NewSnapshotService(productRepo, snapshotRepo, cfg.Cron.Location())

	// === KAFKA CONSUMER ===
	kafkaConsumer := processor.NewKafkaConsumer(cfg.Kafka, journalSvc)
	kafkaConsumer.Start(ctx)

	// === CRON ===
	cronScheduler := processor.NewCronScheduler(snapshotSvc, cfg.Cron.Location())
	if err := cronScheduler.Start(ctx, cfg.Cron.Snapshot, cfg.Cron.RunOnStart); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Cron.Snapshot).Msg("Failed to start cron scheduler")
	}

	// === HEALTHCHECK, ЖУРНАЛ И МЕТРИКИ ===
	mux := http.NewServeMux()
	handler.NewHealthCheckHandler(db, mongoClient, snapshotSvc).RegisterRoutes(mux)
	handler.NewJournalHandler(journalSvc, snapshotSvc).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Str("schedule", cfg.Cron.Snapshot).
		Str("timezone", cfg.Cron.Timezone).
		Msg("Inventory Worker is running")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Inventory Worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server forced to shutdown")
	}
	// сначала останавливаем приём новых задач, затем прерываем текущие чтения
	cronScheduler.Stop()
	cancel()
	kafkaConsumer.Stop()

	logger.Info().Msg("Inventory Worker stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL; retry для запуска в Docker
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(5)
				sqlDB.SetMaxIdleConns(2)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var lastErr error
	for i := 0; i < 10; i++ {
		client, err := tryConnectMongoDB(clientOptions)
		if err == nil {
			return client, nil
		}
		lastErr = err

		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to MongoDB after 10 attempts: %w", lastErr)
}

func tryConnectMongoDB(clientOptions *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
