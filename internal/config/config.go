package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Push     PushConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// PushConfig holds the courier push-gateway configuration. An empty URL
// disables push entirely.
type PushConfig struct {
	GatewayURL string
	APIKey     string
}

// PayrollConfig holds the compensation defaults used to seed the initial
// policy when the policies table is empty. Amounts are MMK.
type PayrollConfig struct {
	DefaultBaseSalary       decimal.Decimal
	DefaultRatePerKm        decimal.Decimal
	DefaultBonusPerDelivery decimal.Decimal
}

func Load() (*Config, error) {
	// .env is optional in deployed environments
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "mlexpress"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Push gateway configuration
	config.Push = PushConfig{
		GatewayURL: getEnv("PUSH_GATEWAY_URL", ""),
		APIKey:     getEnv("PUSH_GATEWAY_API_KEY", ""),
	}

	// Compensation defaults
	baseSalary, err := getEnvDecimal("PAYROLL_DEFAULT_BASE_SALARY", "200000")
	if err != nil {
		return nil, err
	}
	ratePerKm, err := getEnvDecimal("PAYROLL_RATE_PER_KM", "500")
	if err != nil {
		return nil, err
	}
	bonusPerDelivery, err := getEnvDecimal("PAYROLL_BONUS_PER_DELIVERY", "1000")
	if err != nil {
		return nil, err
	}
	config.Payroll = PayrollConfig{
		DefaultBaseSalary:       baseSalary,
		DefaultRatePerKm:        ratePerKm,
		DefaultBonusPerDelivery: bonusPerDelivery,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Payroll.DefaultBaseSalary.IsNegative() ||
		c.Payroll.DefaultRatePerKm.IsNegative() ||
		c.Payroll.DefaultBonusPerDelivery.IsNegative() {
		return fmt.Errorf("payroll defaults must be non-negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDecimal(key, fallback string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
