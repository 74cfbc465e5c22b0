// Package config собирает настройки сервиса из файла, окружения и флагов.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "SHOP"

type HTTP struct {
	Addr            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type Store struct {
	Driver      string
	DSN         string
	AutoMigrate bool
}

type Auth struct {
	JWTSecret  string
	TokenTTL   time.Duration
	CookieName string
}

type Kafka struct {
	Brokers string
	Topic   string
}

type Log struct {
	Level  string
	Format string
}

type Purchase struct {
	CodeAttempts int
}

// Config итоговые настройки
type Config struct {
	HTTP     HTTP
	Store    Store
	Auth     Auth
	Kafka    Kafka
	Log      Log
	Purchase Purchase
}

// SetDefaults регистрирует значения по умолчанию
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":9091")
	v.SetDefault("http.shutdown_timeout", 5*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.auto_migrate", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.cookie_name", "token")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "tickets")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("purchase.code_attempts", 3)
}

// LoadDotEnv подхватывает .env.local и .env, если они есть; уже заданные переменные не перетираются
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// NewViper готовит viper с префиксом SHOP_ и ключами вида store.dsn -> SHOP_STORE_DSN
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load читает конфигурацию (и файл, если задан "config") и проверяет её
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	cfg := &Config{
		HTTP: HTTP{
			Addr:            v.GetString("http.addr"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			CORSOrigins:     splitList(v.GetStringSlice("http.cors_origins")),
		},
		Store: Store{
			Driver:      strings.ToLower(v.GetString("store.driver")),
			DSN:         v.GetString("store.dsn"),
			AutoMigrate: v.GetBool("store.auto_migrate"),
		},
		Auth: Auth{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
			CookieName: v.GetString("auth.cookie_name"),
		},
		Kafka: Kafka{
			Brokers: v.GetString("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Purchase: Purchase{
			CodeAttempts: v.GetInt("purchase.code_attempts"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList допускает и список, и строку через запятую из окружения
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "memory":
	case "postgres", "sqlite":
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for %s", c.Store.Driver))
		}
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("auth.jwt_secret is required for persistent stores"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("auth.cookie_name is required"))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.Purchase.CodeAttempts <= 0 {
		errs = append(errs, errors.New("purchase.code_attempts must be positive"))
	}
	if c.Kafka.Brokers != "" && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}

// Secret возвращает ключ подписи; для in-memory режима допускается пустой, тогда берётся dev-значение
func (c *Config) Secret() string {
	if c.Auth.JWTSecret == "" {
		return "dev-secret"
	}
	return c.Auth.JWTSecret
}
