package config

import (
	"fmt"
	"os"
	"strconv"

	"member-portal/internal/auth/credentials"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	UserStoreMongo    = "mongo"
	UserStorePostgres = "postgres"
	UserStoreMemory   = "memory"
)

type Config struct {
	AppPort string
	GinMode string

	CookieSecure bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UserStore string

	MongoURI      string
	MongoDatabase string

	DatabaseDSN string

	BcryptCost int

	// SeedFile points at an optional YAML list of accounts applied on startup.
	SeedFile string
}

func Load() (Config, error) {
	// .env is optional; real deployments inject the environment directly
	_ = godotenv.Load()

	ginMode := getEnv("GIN_MODE", "debug")

	cfg := Config{
		AppPort: getEnv("PORT", "3000"),
		GinMode: ginMode,

		CookieSecure: getEnvAsBool("COOKIE_SECURE", ginMode == "release"),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		UserStore: getEnv("USER_STORE", UserStoreMongo),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "portal"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		BcryptCost: getEnvAsInt("BCRYPT_COST", credentials.DefaultCost),

		SeedFile: os.Getenv("SEED_FILE"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.AppPort == "" {
		return fmt.Errorf("PORT must not be empty")
	}

	switch c.UserStore {
	case UserStoreMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_URI and MONGODB_DATABASE are required for the mongo user store")
		}
	case UserStorePostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres user store")
		}
	case UserStoreMemory:
		if c.GinMode == "release" {
			return fmt.Errorf("the memory user store is not allowed in release mode")
		}
	default:
		return fmt.Errorf("unknown USER_STORE %q", c.UserStore)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
