package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит настройки Inventory Worker.
// Worker только читает: события из Kafka, товары из PostgreSQL; пишет лишь в MongoDB.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	MongoDB  MongoDBConfig
	Kafka    KafkaConfig
	Cron     CronConfig
	LogLevel string
}

// ServerConfig - HTTP сервер healthcheck и /metrics
type ServerConfig struct {
	Port string
}

// DatabaseConfig - PostgreSQL inventory-service, только чтение товаров для снимков
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

// KafkaConfig - подписка на inventory_events
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	MinBytes int
	MaxBytes int
}

// CronConfig - расписание ежедневного снимка остатков
type CronConfig struct {
	Snapshot   string // стандартный 5-польный формат, например "0 2 * * *"
	Timezone   string
	RunOnStart bool
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	minBytes, err := getEnvInt("KAFKA_MIN_BYTES", 1)
	if err != nil {
		return nil, err
	}
	maxBytes, err := getEnvInt("KAFKA_MAX_BYTES", 10e6)
	if err != nil {
		return nil, err
	}
	runOnStart, err := getEnvBool("CRON_SNAPSHOT_ON_START", true)
	if err != nil {
		return nil, err
	}

	tz := getEnv("CRON_TIMEZONE", "America/Mexico_City")
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid CRON_TIMEZONE value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8081"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "vidasmart"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "vidasmart_journal"),
		},
		Kafka: KafkaConfig{
			Brokers:  getEnvList("KAFKA_BROKERS", "localhost:9092"),
			Topic:    getEnv("KAFKA_TOPIC", "inventory_events"),
			GroupID:  getEnv("KAFKA_GROUP_ID", "inventory-worker-group"),
			MinBytes: minBytes,
			MaxBytes: maxBytes,
		},
		Cron: CronConfig{
			Snapshot:   getEnv("CRON_SNAPSHOT", "0 2 * * *"),
			Timezone:   tz,
			RunOnStart: runOnStart,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Location возвращает часовой пояс расписания; значение проверено в Load
func (c *CronConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getEnvList(key, defaultValue string) []string {
	var result []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
