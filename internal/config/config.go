package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
	Receipt   ReceiptConfig
	Seed      SeedConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type LogConfig struct {
	Level string
}

// StoreConfig describes the shop and where its data lives.
type StoreConfig struct {
	// Driver is "memory" or "postgres".
	Driver       string
	Brand        string
	Location     string
	ReturnPolicy string
	Timezone     string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// RedisConfig enables the redis idempotency store when URL is set.
type RedisConfig struct {
	URL          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	FilePath  string
	CharWidth int
}

type ReceiptConfig struct {
	CompressPDF bool
}

// SeedConfig holds the initial passwords of the default accounts.
type SeedConfig struct {
	AdminPassword      string
	SuperAdminPassword string
	CashierPassword    string
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	setDefaults()

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			Driver:       viper.GetString("STORE_DRIVER"),
			Brand:        viper.GetString("STORE_BRAND"),
			Location:     viper.GetString("STORE_LOCATION"),
			ReturnPolicy: viper.GetString("STORE_RETURN_POLICY"),
			Timezone:     viper.GetString("STORE_TIMEZONE"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			URL:          viper.GetString("REDIS_URL"),
			ReadTimeout:  time.Duration(viper.GetInt("REDIS_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(viper.GetInt("REDIS_WRITE_TIMEOUT")) * time.Second,
			DialTimeout:  time.Duration(viper.GetInt("REDIS_DIAL_TIMEOUT")) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			FilePath:  viper.GetString("PRINTER_FILE_PATH"),
			CharWidth: viper.GetInt("PRINTER_CHAR_WIDTH"),
		},
		Receipt: ReceiptConfig{
			CompressPDF: viper.GetBool("RECEIPT_COMPRESS_PDF"),
		},
		Seed: SeedConfig{
			AdminPassword:      viper.GetString("SEED_ADMIN_PASSWORD"),
			SuperAdminPassword: viper.GetString("SEED_SUPERADMIN_PASSWORD"),
			CashierPassword:    viper.GetString("SEED_CASHIER_PASSWORD"),
		},
	}
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "masterstock-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_DRIVER", DriverMemory)
	viper.SetDefault("STORE_BRAND", "EASYTECH MASTER STOCK")
	viper.SetDefault("STORE_LOCATION", "Main Street Store")
	viper.SetDefault("STORE_RETURN_POLICY", "Return Policy: Items can be returned within 30 days with receipt.")
	viper.SetDefault("STORE_TIMEZONE", "UTC")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "masterstock")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("REDIS_READ_TIMEOUT", 3)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_CHAR_WIDTH", 32)
	viper.SetDefault("RECEIPT_COMPRESS_PDF", true)
	viper.SetDefault("SEED_ADMIN_PASSWORD", "admin123")
	viper.SetDefault("SEED_SUPERADMIN_PASSWORD", "easytech123")
	viper.SetDefault("SEED_CASHIER_PASSWORD", "cashier123")
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// TimeLocation returns the store time zone, falling back to UTC when unknown.
func (c *StoreConfig) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
