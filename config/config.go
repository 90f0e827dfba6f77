package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host      string
	Port      string
	LogLevel  string
	Timezone  string
	JWTSecret string

	Database DatabaseConfig
	Redis    RedisConfig
	Rabbit   RabbitConfig
	Jobs     JobsConfig
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
	MaxOpen     int
	MaxIdle     int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RabbitConfig struct {
	URL      string
	Exchange string
}

type JobsConfig struct {
	ResultShellInterval time.Duration
}

func Load() *Config {
	return &Config{
		Host:      getenv("HOST", "127.0.0.1"),
		Port:      getenv("PORT", "3000"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		Timezone:  getenv("TIMEZONE", "Asia/Kolkata"),
		JWTSecret: getenv("JWT_SECRET", ""),
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getenv("DB_DRIVER", "postgres")),
			Host:        getenv("DB_HOST", "localhost"),
			Port:        intFromEnv("DB_PORT", 5432),
			User:        getenv("DB_USER", "postgres"),
			Password:    getenv("DB_PASSWORD", "postgres"),
			DBName:      getenv("DB_NAME", "saudagar"),
			SSLMode:     getenv("DB_SSLMODE", "disable"),
			AutoMigrate: boolFromEnv("DB_AUTO_MIGRATE", false),
			MaxOpen:     intFromEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdle:     intFromEnv("DB_MAX_IDLE_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       intFromEnv("REDIS_DB", 0),
			TTL:      time.Duration(intFromEnv("CACHE_TTL_SECONDS", 600)) * time.Second,
		},
		Rabbit: RabbitConfig{
			URL:      getenv("RABBITMQ_URL", ""),
			Exchange: getenv("RABBITMQ_EXCHANGE", "settlement_events"),
		},
		Jobs: JobsConfig{
			ResultShellInterval: time.Duration(intFromEnv("RESULT_SHELL_INTERVAL_MINUTES", 30)) * time.Minute,
		},
	}
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return def
}

func intFromEnv(key string, def int) int {
	val := getenv(key, "")
	if val == "" {
		return def
	}

	if parsed, err := strconv.Atoi(val); err == nil {
		return parsed
	}

	return def
}

func boolFromEnv(key string, def bool) bool {
	val := getenv(key, "")
	if val == "" {
		return def
	}

	if parsed, err := strconv.ParseBool(val); err == nil {
		return parsed
	}

	return def
}
