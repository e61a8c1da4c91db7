package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config represents an application configuration.
	Config struct {
		// The data source name (DSN) for connecting to the database.
		DSN string `yaml:"dsn" env:"DATABASE_URI"`
		// Subconfigs.
		HTTPServer HTTPServer `yaml:"http_server"`
		JWT        JWT        `yaml:"jwt"`
		Logger     Logger     `yaml:"logger"`
		Redis      Redis      `yaml:"redis"`
		Kafka      Kafka      `yaml:"kafka"`
		RateLimit  RateLimit  `yaml:"rate_limit"`
		// Cost of the password to hash. Must be greater than 3.
		PasswordHashCost int `yaml:"password_hash_cost" env-default:"14"`
	}
	// Config for HTTP server.
	HTTPServer struct {
		// The server startup address.
		Address string `yaml:"run_address" env:"RUN_ADDRESS" env-default:"127.0.0.1:8080"`
		// Read Header Timeout in seconds.
		Timeout time.Duration `yaml:"timeout" env-default:"5s"`
		// Idle timeout in seconds.
		IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
		// Shutdown timeout in seconds.
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	}
	// Config for application's logger.
	Logger struct {
		// Path to store log files.
		Path string `yaml:"path" env:"LOG_PATH"`
		// Application logging level.
		Level string `yaml:"level" env:"LOG_LEVEL"`
		// Log files details.
		MaxSizeMB  int `yaml:"max_size_mb"`
		MaxBackups int `yaml:"max_backups"`
		MaxAgeDays int `yaml:"max_age_days"`
	}
	// Config for JWT.
	JWT struct {
		// JWT signing key.
		SigningKey string `yaml:"signing_key" env:"JWT_SIGNING_KEY"`
		// JWT expiration in hours.
		Expiration time.Duration `yaml:"expiration" env:"JWT_EXPIRATION" env-default:"24h"`
	}
	// Config for the review list cache.
	Redis struct {
		// Redis server address.
		Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"127.0.0.1:6379"`
		// Optional password.
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		// Database number.
		DB int `yaml:"db" env:"REDIS_DB"`
		// Cached review listings time to live.
		TTL time.Duration `yaml:"ttl" env-default:"5m"`
	}
	// Config for the order event stream.
	Kafka struct {
		// Broker addresses.
		Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"127.0.0.1:9092"`
		// Topic to publish order lifecycle events to.
		Topic string `yaml:"topic" env:"KAFKA_TOPIC" env-default:"order-events"`
	}
	// Config for the auth endpoints rate limiter.
	RateLimit struct {
		// Interval between allowed requests.
		Interval time.Duration `yaml:"interval" env-default:"100ms"`
		// Burst size.
		Burst int `yaml:"burst" env-default:"10"`
	}
)

// MustLoad returns an application configuration which is populated
// from the given configuration file, environment variables and flags.
func MustLoad() *Config {
	// Configuration yaml file path.
	configPath := flag.String("config", "./config/local.yml", "path to the config file")

	// Check if file exists.
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", *configPath)
	}

	var cfg Config

	// Load from YAML cfg file.
	bytes, err := os.Open(*configPath)
	if err != nil {
		log.Fatalf("failed to open config file: %s", *configPath)
	}
	if err = cleanenv.ParseYAML(bytes, &cfg); err != nil {
		log.Fatalf("failed to parse config file: %s", *configPath)
	}

	// Read given flags.
	flag.StringVar(&cfg.HTTPServer.Address, "a", cfg.HTTPServer.Address, "server startup address")
	flag.StringVar(&cfg.DSN, "d", cfg.DSN, "server data source name")
	flag.Parse()

	// Read environment variables.
	if err = cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to read environment variables: %v", err)
	}

	return &cfg
}
