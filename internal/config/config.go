package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cart     CartConfig
	Mail     MailConfig
	Uploads  UploadsConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

// CartConfig controls the anonymous cart store.
type CartConfig struct {
	KeyPrefix string
	AnonTTL   time.Duration
}

// MailConfig configures the outbound notification boundary: the
// transactional email API and the form-relay fallback for contact
// messages.
type MailConfig struct {
	Endpoint      string
	APIKey        string
	From          string
	ContactTo     string
	RelayEndpoint string
}

type UploadsConfig struct {
	Dir     string
	BaseURL string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)
	viper.SetDefault("CART_KEY_PREFIX", "cart:anon")
	viper.SetDefault("CART_ANON_TTL_HOURS", 720)
	viper.SetDefault("MAIL_FROM", "loja@macrame.example")
	viper.SetDefault("UPLOADS_DIR", "uploads")
	viper.SetDefault("UPLOADS_BASE_URL", "/uploads")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Cart: CartConfig{
			KeyPrefix: viper.GetString("CART_KEY_PREFIX"),
			AnonTTL:   time.Duration(viper.GetInt("CART_ANON_TTL_HOURS")) * time.Hour,
		},
		Mail: MailConfig{
			Endpoint:      viper.GetString("MAIL_ENDPOINT"),
			APIKey:        viper.GetString("MAIL_API_KEY"),
			From:          viper.GetString("MAIL_FROM"),
			ContactTo:     viper.GetString("MAIL_CONTACT_TO"),
			RelayEndpoint: viper.GetString("MAIL_RELAY_ENDPOINT"),
		},
		Uploads: UploadsConfig{
			Dir:     viper.GetString("UPLOADS_DIR"),
			BaseURL: viper.GetString("UPLOADS_BASE_URL"),
		},
	}
}
