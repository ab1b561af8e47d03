package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config carries everything the service reads from the environment.
// Variable names are kept exactly as the deployment expects them,
// including the lowercase event_DELETE_KEY.
type Config struct {
	Host string `validate:"required"`
	Port string `validate:"required"`

	DBEngine   string `validate:"required"`
	DBHost     string `validate:"required"`
	DBPort     string `validate:"required"`
	DBUsername string
	DBPassword string

	// EventExpiration is the number of seconds added to created_at to
	// derive expire_at on new events.
	EventExpiration int64 `validate:"gt=0"`

	// DeleteAPIKey is the shared secret authorizing the delete endpoint.
	DeleteAPIKey string `validate:"required"`

	// RejectExpiredVotes makes cast-vote answer 409 for expired events
	// instead of recording the vote.
	RejectExpiredVotes bool

	Environment  string
	LogLevel     string
	IOBufferSize int
}

func LoadConfig() (*Config, error) {
	expiration, err := strconv.ParseInt(os.Getenv("EVENT_EXPIRATION"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("EVENT_EXPIRATION must be an integer number of seconds: %v", err)
	}

	ioBufferSize, _ := strconv.Atoi(getEnvWithDefault("IO_BUFFER_SIZE", "1024"))

	cfg := &Config{
		Host:               getEnvWithDefault("HOST", "0.0.0.0"),
		Port:               getEnvWithDefault("BITRADER_AUTH_PORT", "7366"),
		DBEngine:           getEnvWithDefault("DB_ENGINE", "mongodb"),
		DBHost:             getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:             getEnvWithDefault("DB_PORT", "27017"),
		DBUsername:         os.Getenv("DB_USERNAME"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		EventExpiration:    expiration,
		DeleteAPIKey:       os.Getenv("event_DELETE_KEY"),
		RejectExpiredVotes: os.Getenv("REJECT_EXPIRED_VOTES") == "true",
		Environment:        getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		IOBufferSize:       ioBufferSize,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return cfg, nil
}

// MongoURI assembles the connection string. Credentials are only used
// in production; dev databases run without auth.
func (c *Config) MongoURI() string {
	if c.IsProduction() && c.DBUsername != "" {
		return fmt.Sprintf("%s://%s:%s@%s:%s", c.DBEngine, c.DBUsername, c.DBPassword, c.DBHost, c.DBPort)
	}
	return fmt.Sprintf("%s://%s:%s", c.DBEngine, c.DBHost, c.DBPort)
}

func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
