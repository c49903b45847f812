package config

import "github.com/vietddude/paygate/internal/infra/redis"

// AppConfig represents the process configuration read from the environment.
type AppConfig struct {
	// PayTo is the operator address that receives payments.
	PayTo string `validate:"required,eth_addr"`
	// JWTSecret signs issued credentials.
	JWTSecret string `validate:"required,min=32"`
	Port      int    `validate:"gt=0,lte=65535"`
	// PriceUnits is the price in whole token units, e.g. "1" or "0.50".
	PriceUnits string `validate:"required"`
	// ChainsJSON, when set, replaces the default chain table entirely.
	ChainsJSON    string
	RevenueLogDir string `validate:"required"`
	CORSOrigins   []string
	Redis         redis.Config
	Logging       LoggingConfig
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

const (
	DefaultPort          = 3000
	DefaultPriceUnits    = "1"
	DefaultRevenueLogDir = "data"
)
