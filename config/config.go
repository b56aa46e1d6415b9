package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret    []byte
	PollInterval time.Duration
	GateCacheTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL      string
	AlertAudioDevice string

	CallRateLimit float64 // request per detik per IP+meja
	CallRateBurst int

	LogLevel   string
	CORSOrigin string
}

// Load membaca .env (jika ada) lalu environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             envStr("PORT", "8080"),
		GinMode:          envStr("GIN_MODE", "debug"),
		DBDriver:         strings.ToLower(envStr("DB_DRIVER", "mysql")),
		DBDSN:            os.Getenv("DB_DSN"),
		JWTSecret:        []byte(os.Getenv("JWT_SECRET")),
		PollInterval:     envDur("POLL_INTERVAL", 10*time.Second),
		GateCacheTTL:     envDur("GATE_CACHE_TTL", 30*time.Second),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          envInt("REDIS_DB", 0),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		AlertAudioDevice: os.Getenv("ALERT_AUDIO_DEVICE"),
		CallRateLimit:    envFloat("CALL_RATE_LIMIT", 0.2),
		CallRateBurst:    envInt("CALL_RATE_BURST", 3),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		CORSOrigin:       envStr("CORS_ORIGIN", "http://127.0.0.1:5500"),
	}

	if cfg.DBDSN == "" {
		switch cfg.DBDriver {
		case "sqlite":
			cfg.DBDSN = "waiter_calls.db"
		default:
			cfg.DBDSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				envStr("DB_USER", "root"),
				os.Getenv("DB_PASS"),
				envStr("DB_HOST", "127.0.0.1"),
				envStr("DB_PORT", "3306"),
				envStr("DB_NAME", "restaurant"),
			)
		}
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if cfg.CallRateBurst < 1 {
		cfg.CallRateBurst = 1
	}
	return cfg, nil
}

// InitDB membuka koneksi gorm sesuai DB_DRIVER
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	logLevel := logger.Warn
	if cfg.LogLevel == "debug" {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// NewRedisClient returns nil when REDIS_ADDR is empty or the server does not answer;
// callers fall back to the in-memory gate cache.
func NewRedisClient(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil
	}
	return client
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envFloat(k string, d float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return f
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
