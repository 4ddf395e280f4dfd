// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Chain       ChainConfig
	Payment     PaymentConfig
	Story       StoryConfig
	Frontend    FrontendConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

// ChainConfig describes the read-only RPC oracle. RequestTimeout bounds
// every individual RPC call; the public network can stall.
type ChainConfig struct {
	RPCURL           string
	Network          string
	RequestTimeout   int // in seconds
	MinConfirmations uint64
	USDCAddress      string
}

// PaymentConfig drives the fee split. PlatformWallet is optional; when it
// is empty the obligation set degrades to artist-only.
type PaymentConfig struct {
	PlatformWallet  string
	PlatformFeeRate decimal.Decimal
}

type StoryConfig struct {
	RegistryURL string
	APIKey      string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "sideb"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
		},
		Chain: ChainConfig{
			RPCURL:           getEnv("CHAIN_RPC_URL", ""),
			Network:          getEnv("CHAIN_NETWORK", "base"),
			RequestTimeout:   getEnvAsInt("CHAIN_REQUEST_TIMEOUT", 10),
			MinConfirmations: uint64(getEnvAsInt("CHAIN_MIN_CONFIRMATIONS", 1)),
			USDCAddress:      getEnv("CHAIN_USDC_ADDRESS", ""),
		},
		Payment: PaymentConfig{
			PlatformWallet:  strings.ToLower(getEnv("PLATFORM_WALLET_ADDRESS", "")),
			PlatformFeeRate: getEnvAsDecimal("PLATFORM_FEE_RATE", "0.03"),
		},
		Story: StoryConfig{
			RegistryURL: getEnv("STORY_REGISTRY_URL", ""),
			APIKey:      getEnv("STORY_API_KEY", ""),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Chain.RPCURL == "" && c.Environment == "production" {
		return fmt.Errorf("chain RPC URL is required in production")
	}

	if c.Payment.PlatformFeeRate.IsNegative() || c.Payment.PlatformFeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("platform fee rate must be in [0, 1)")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
