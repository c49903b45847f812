package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvPayTo         = "PAY_TO"
	EnvJWTSecret     = "JWT_SECRET"
	EnvPort          = "PORT"
	EnvPriceUnits    = "PRICE_UNITS"
	EnvChainsJSON    = "CHAINS_JSON"
	EnvRevenueLogDir = "REVENUE_LOG_DIR"
	EnvRedisURL      = "REDIS_URL"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvLogLevel      = "LOG_LEVEL"
	EnvCORSOrigins   = "CORS_ORIGINS"
)

// Load reads configuration from the process environment, after loading the
// given dotenv files (.env when none are given). Missing files are ignored
// and variables already set in the environment win.
func Load(envFiles ...string) (*AppConfig, error) {
	_ = godotenv.Load(envFiles...)
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates configuration using getenv for lookups.
func FromEnv(getenv func(string) string) (*AppConfig, error) {
	cfg := AppConfig{
		PayTo:         strings.TrimSpace(getenv(EnvPayTo)),
		JWTSecret:     getenv(EnvJWTSecret),
		Port:          DefaultPort,
		PriceUnits:    strings.TrimSpace(getenv(EnvPriceUnits)),
		ChainsJSON:    strings.TrimSpace(getenv(EnvChainsJSON)),
		RevenueLogDir: strings.TrimSpace(getenv(EnvRevenueLogDir)),
		Logging:       LoggingConfig{Level: strings.ToLower(strings.TrimSpace(getenv(EnvLogLevel)))},
	}
	cfg.Redis.URL = strings.TrimSpace(getenv(EnvRedisURL))
	cfg.Redis.Password = getenv(EnvRedisPassword)

	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Port = port
	}

	// Set defaults if necessary
	if cfg.PriceUnits == "" {
		cfg.PriceUnits = DefaultPriceUnits
	}
	if cfg.RevenueLogDir == "" {
		cfg.RevenueLogDir = DefaultRevenueLogDir
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.CORSOrigins = splitList(getenv(EnvCORSOrigins))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !validWholePart(cfg.PriceUnits) {
		return nil, fmt.Errorf("invalid %s: %q", EnvPriceUnits, cfg.PriceUnits)
	}

	return &cfg, nil
}

// validWholePart accepts prices whose integer part is plain digits.
// The fractional part is left to the price resolver.
func validWholePart(s string) bool {
	whole, _, _ := strings.Cut(s, ".")
	for i := 0; i < len(whole); i++ {
		if whole[i] < '0' || whole[i] > '9' {
			return false
		}
	}
	return s != "."
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
