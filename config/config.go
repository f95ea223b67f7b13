package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Drivers de armazenamento suportados.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config armazena todas as configurações do serviço.
type Config struct {
	// Geral
	ServiceName string `validate:"required"`
	Port        string `validate:"required,numeric"`
	Environment string
	LogLevel    string `validate:"oneof=debug info warn error"`

	// Armazenamento
	StorageDriver string        `validate:"oneof=postgres memory"`
	DatabaseURL   string        `validate:"required_if=StorageDriver postgres"`
	DBTimeout     time.Duration `validate:"gt=0"`
	AutoMigrate   bool

	// Rate Limiting (Redis). RedisAddr vazio desliga o limitador.
	RedisAddr            string
	RateLimitMaxRequests int           `validate:"gt=0"`
	RateLimitPeriod      time.Duration `validate:"gt=0"`

	// Segurança (JWT)
	AuthEnabled  bool
	JWTSecretKey string        `validate:"required_if=AuthEnabled true"`
	TokenExpiry  time.Duration `validate:"gt=0"`
}

// LoadConfig lê as configurações das variáveis de ambiente (o .env já foi carregado
// pelo godotenv no main) e valida o resultado.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_NAME", "gorecords")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("DB_TIMEOUT_SEC", 5)
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_PERIOD_MIN", 1)
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_EXPIRY_MIN", 60)

	cfg := &Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENV"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),

		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBTimeout:     time.Duration(v.GetInt("DB_TIMEOUT_SEC")) * time.Second,
		AutoMigrate:   v.GetBool("AUTO_MIGRATE"),

		RedisAddr:            v.GetString("REDIS_ADDR"),
		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitPeriod:      time.Duration(v.GetInt("RATE_LIMIT_PERIOD_MIN")) * time.Minute,

		AuthEnabled:  v.GetBool("AUTH_ENABLED"),
		JWTSecretKey: v.GetString("JWT_SECRET_KEY"),
		TokenExpiry:  time.Duration(v.GetInt("JWT_EXPIRY_MIN")) * time.Minute,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuração inválida: %w", err)
	}

	return cfg, nil
}
