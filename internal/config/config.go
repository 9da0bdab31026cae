package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Contentful  ContentfulConfig
	Constructor ConstructorConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
	Server      ServerConfig
	Logging     LoggingConfig
	Indexing    IndexingConfig
}

type ContentfulConfig struct {
	SpaceID       string
	EnvironmentID string
	DeliveryToken string
}

// LocaleCredentials holds the destination index credentials for one locale.
type LocaleCredentials struct {
	Key     string
	Token   string
	Section string
}

type ConstructorConfig struct {
	EN LocaleCredentials
	FR LocaleCredentials
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type ServerConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level string
	File  string
}

type IndexingConfig struct {
	PageSize           int
	StrictContentTypes bool
	ConcurrentUploads  bool
	WaitForTasks       bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Contentful: ContentfulConfig{
			SpaceID:       getEnv("CONTENTFUL_SPACE_ID", ""),
			EnvironmentID: getEnv("CONTENTFUL_ENVIRONMENT_ID", "master"),
			DeliveryToken: getEnv("CONTENTFUL_DELIVERY_TOKEN", ""),
		},
		Constructor: ConstructorConfig{
			EN: LocaleCredentials{
				Key:     getEnv("CONSTRUCTOR_KEY_EN", getEnv("CONSTRUCTOR_KEY", "")),
				Token:   getEnv("CONSTRUCTOR_TOKEN_EN", getEnv("CONSTRUCTOR_TOKEN", "")),
				Section: getEnv("CONSTRUCTOR_SECTION_EN", "Content"),
			},
			FR: LocaleCredentials{
				Key:     getEnv("CONSTRUCTOR_KEY_FR", getEnv("CONSTRUCTOR_KEY", "")),
				Token:   getEnv("CONSTRUCTOR_TOKEN_FR", getEnv("CONSTRUCTOR_TOKEN", "")),
				Section: getEnv("CONSTRUCTOR_SECTION_FR", "Content-FR"),
			},
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "indexer"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "indexer"),
		},
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Indexing: IndexingConfig{
			PageSize:           getEnvInt("INDEX_PAGE_SIZE", 50),
			StrictContentTypes: getEnvBool("STRICT_CONTENT_TYPES", false),
			ConcurrentUploads:  getEnvBool("CONCURRENT_UPLOADS", false),
			WaitForTasks:       getEnvBool("WAIT_FOR_TASKS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Contentful.SpaceID == "" {
		return fmt.Errorf("CONTENTFUL_SPACE_ID is required")
	}
	if c.Contentful.EnvironmentID == "" {
		return fmt.Errorf("CONTENTFUL_ENVIRONMENT_ID is required")
	}
	if c.Contentful.DeliveryToken == "" {
		return fmt.Errorf("CONTENTFUL_DELIVERY_TOKEN is required")
	}
	if err := c.Constructor.EN.Validate("en"); err != nil {
		return err
	}
	if err := c.Constructor.FR.Validate("fr"); err != nil {
		return err
	}
	if c.Indexing.PageSize <= 0 {
		return fmt.Errorf("INDEX_PAGE_SIZE must be positive")
	}
	return nil
}

func (lc LocaleCredentials) Validate(locale string) error {
	if lc.Key == "" {
		return fmt.Errorf("constructor key missing for locale %s", locale)
	}
	if lc.Token == "" {
		return fmt.Errorf("constructor token missing for locale %s", locale)
	}
	if lc.Section == "" {
		return fmt.Errorf("constructor section missing for locale %s", locale)
	}
	return nil
}

// RedisEnabled reports whether a Redis run-summary cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

// PostgresEnabled reports whether the Postgres run-history store is configured.
func (c *Config) PostgresEnabled() bool {
	return c.Postgres.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
