package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	AppPort int

	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDB       string

	JWTSecret string

	// CORSOrigin is the single frontend origin allowed to call the API.
	CORSOrigin string

	// RequestExpirySweepMinutes controls how often the background worker
	// cancels pending requests whose needed_by deadline has passed.
	RequestExpirySweepMinutes int

	// DefaultShippingRate is used when no per-vehicle rate is configured
	// in the settings table.
	DefaultShippingRate float64
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "hemotrackr-api"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))

	cfg.MySQLHost = cast.ToString(getOrReturnDefault("MYSQL_HOST", "127.0.0.1"))
	cfg.MySQLPort = cast.ToString(getOrReturnDefault("MYSQL_PORT", "3306"))
	cfg.MySQLUser = cast.ToString(getOrReturnDefault("MYSQL_USER", "root"))
	cfg.MySQLPassword = cast.ToString(getOrReturnDefault("MYSQL_PASSWORD", ""))
	cfg.MySQLDB = cast.ToString(getOrReturnDefault("MYSQL_DB", "hemotrackr"))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", "CHANGE_ME_IN_PRODUCTION"))

	cfg.CORSOrigin = cast.ToString(getOrReturnDefault("CORS_ORIGIN", "http://localhost:5173"))

	cfg.RequestExpirySweepMinutes = cast.ToInt(getOrReturnDefault("REQUEST_EXPIRY_SWEEP_MINUTES", 60))
	cfg.DefaultShippingRate = cast.ToFloat64(getOrReturnDefault("DEFAULT_SHIPPING_RATE", 5000))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
