package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {

	// JWT token configuration
	JWTConfig struct {
		ApiSecret   string `envconfig:"API_SECRET"`
		ExpireDelta int    `envconfig:"EXPIRE_DELTA" default:"24"`
		// Tolerated clock skew, in seconds, applied when verifying expiry.
		LeewaySeconds int `envconfig:"JWT_LEEWAY_SECONDS" default:"0"`
	}

	// Application configuration
	AppConfig struct {
		ServiceName string `envconfig:"SERVICE_NAME" default:"sokoni"`
		Port        int    `envconfig:"SERVICE_PORT" default:"8080"`
		Address     string `envconfig:"SERVICE_ADDRESS" default:"0.0.0.0"`
	}

	// Database configuration
	DatabaseConfig struct {
		DatabaseHost                      string `envconfig:"DB_HOST"`
		DatabaseUser                      string `envconfig:"DB_USER"`
		DatabasePassword                  string `envconfig:"DB_PASSWORD"`
		DatabaseName                      string `envconfig:"DB_NAME"`
		DatabasePort                      int32  `envconfig:"DB_PORT" default:"5432"`
		DatabasePoolMaxConnections        int32  `envconfig:"DB_MAX_CON" default:"10"`
		DatabasePoolMinConnections        int32  `envconfig:"DB_POOL_MIN_CON" default:"2"`
		DatabasePoolMaxConnectionLifetime int    `envconfig:"DB_POOL_MAX_LIFETIME" default:"1"`
	}

	// RabbitMQ configuration
	RabbitMQConfig struct {
		RabbitMQUser    string `envconfig:"RABBITMQ_USER"`
		RabbitMQPass    string `envconfig:"RABBITMQ_PASSWORD"`
		RabbitMQAddress string `envconfig:"RABBITMQ_ADDRESS"`
		RabbitMQPort    int    `envconfig:"RABBITMQ_PORT" default:"5672"`
		Exchange        string `envconfig:"RABBITMQ_EXCHANGE" default:"sokoni.events"`
	}

	// Redis configuration for the catalog read cache
	RedisConfig struct {
		RedisAddress    string `envconfig:"REDIS_ADDRESS"`
		RedisPassword   string `envconfig:"REDIS_PASSWORD"`
		RedisDB         int    `envconfig:"REDIS_DB" default:"0"`
		CacheTTLSeconds int    `envconfig:"CACHE_TTL_SECONDS" default:"300"`
	}

	// Media upload configuration
	MediaConfig struct {
		UploadDirectory  string `envconfig:"MEDIA_UPLOAD_DIR" default:"/var/lib/sokoni/uploads"`
		MaxFileSizeBytes int64  `envconfig:"MEDIA_MAX_SIZE" default:"2097152"`
		AllowedTypesRaw  string `envconfig:"MEDIA_ALLOWED_TYPES" default:"image/jpeg,image/png,image/gif,image/webp"`
	}
}

// AllowedMediaTypes splits the configured content-type allow list.
func (c *Config) AllowedMediaTypes() []string {
	parts := strings.Split(c.MediaConfig.AllowedTypesRaw, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			types = append(types, t)
		}
	}
	return types
}

// The LoadConfig function loads the env file specified and returns
// a valid configuration object ready for use
func LoadConfig() (*Config, error) {
	cfg := Config{}

	// Attempt to load a .env file. A missing file is not an error,
	// plain environment variables are the common case in deployment.
	_ = godotenv.Load()

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %v", err)
	}

	return &cfg, nil
}
