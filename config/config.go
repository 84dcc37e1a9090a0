package config

import (
	"fmt"
	"net"
	"time"

	"quizhub/models"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	BindAddress string `env:"BIND_ADDRESS"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"quizhub"`
	DBPassword  string `env:"DB_PASSWORD" envDefault:"quizhub"`
	DBName      string `env:"DB_NAME" envDefault:"quizhub"`

	// An empty RedisHost keeps token revocations in process.
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	SecretKey                string `env:"SECRET_KEY,required,notEmpty"`
	Algorithm                string `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	BcryptCost               int    `env:"BCRYPT_COST" envDefault:"12"`

	FirstUser         string `env:"FIRST_USER"`
	FirstUserEmail    string `env:"FIRST_USER_EMAIL"`
	FirstUserPassword string `env:"FIRST_USER_PASSWORD"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var supportedAlgorithms = map[string]bool{"HS256": true, "HS384": true, "HS512": true}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if !supportedAlgorithms[cfg.Algorithm] {
		return nil, fmt.Errorf("unsupported ALGORITHM %q", cfg.Algorithm)
	}
	if cfg.AccessTokenExpireMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", cfg.AccessTokenExpireMinutes)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddress, c.Port)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// BootstrapEnabled reports whether a first superuser is configured.
func (c *Config) BootstrapEnabled() bool {
	return c.FirstUser != ""
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func InitDB(cfg *Config, logger gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
	)
}

// InitRedis returns nil when no Redis host is configured.
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})
}
