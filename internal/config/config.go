package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DriverMemory хранилище в памяти процесса, без БД
const DriverMemory = "memory"

// envPattern формат ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults расширяет переменные окружения с поддержкой дефолтных значений
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		matches := envPattern.FindStringSubmatch(match)
		if len(matches) < 2 {
			return match
		}

		varName := matches[1]
		defaultValue := ""
		if len(matches) > 2 {
			defaultValue = matches[2]
		}

		// Пустая переменная окружения считается не заданной
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// setDefaults значения, которые действуют, если ключа нет в файле
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "notes-api")
	v.SetDefault("app.environment", "production")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")

	v.SetDefault("server.port_grpc", 50051)
	v.SetDefault("server.port_http", 8080)
	v.SetDefault("server.http_read_timeout", 15)
	v.SetDefault("server.http_write_timeout", 15)
	v.SetDefault("server.http_idle_timeout", 60)
	v.SetDefault("server.http_read_header_timeout", 5)
	v.SetDefault("server.graceful_shutdown_timeout", 10)
	v.SetDefault("server.health_check_interval", 15)

	v.SetDefault("http.cors_allowed_origins", "http://localhost:5173,https://localhost:5173")
	v.SetDefault("http.cors_max_age", 86400)
	v.SetDefault("http.rate_limit_rps", 100)
	v.SetDefault("http.rate_limit_burst", 20)
	v.SetDefault("http.max_body_bytes", 1<<20)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "notes.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.seed", true)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.sliding_expiration", 300)
	v.SetDefault("cache.absolute_expiration", 900)
}

// InitConfig читает конфигурационный файл и возвращает экземпляр конфигурации.
// Использует generic для работы с произвольным типом конфигурации.
func InitConfig[C any](configFile string) (*C, error) {
	v := viper.New()
	setDefaults(v)

	ext := strings.TrimLeft(filepath.Ext(configFile), ".")
	v.SetConfigFile(configFile)
	v.SetConfigType(ext)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig: %w", err)
	}

	// Заменяем переменные окружения формата ${VAR:-default} на их значения
	for _, k := range v.AllKeys() {
		value := v.GetString(k)
		if value == "" || !strings.Contains(value, "${") {
			continue
		}
		expanded := expandEnvWithDefaults(value)

		// Числа и boolean после подстановки приводим к нужному типу
		if boolValue, err := strconv.ParseBool(expanded); err == nil && (expanded == "true" || expanded == "false") {
			v.Set(k, boolValue)
		} else if intValue, err := strconv.Atoi(expanded); err == nil {
			v.Set(k, intValue)
		} else {
			v.Set(k, expanded)
		}
	}

	cfg := new(C)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	return cfg, nil
}

// Load читает конфигурацию приложения и проверяет ее
func Load(configFile string) (*Config, error) {
	cfg, err := InitConfig[Config](configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var errs []error

	if c.App == nil || c.Logger == nil || c.Server == nil || c.HTTP == nil ||
		c.Database == nil || c.Auth == nil || c.Cache == nil {
		return errors.New("config: missing sections")
	}

	switch strings.ToLower(c.Database.Driver) {
	case DriverMemory:
	case "postgres", "postgresql", "sqlite", "sqlite3":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}

	if !c.UseDevAuth() {
		if c.Auth.Issuer == "" {
			errs = append(errs, errors.New("auth.issuer is required unless development authentication is enabled"))
		}
		if c.Auth.Audience == "" {
			errs = append(errs, errors.New("auth.audience is required unless development authentication is enabled"))
		}
	}

	if c.Server.PortHTTP <= 0 {
		errs = append(errs, errors.New("server.port_http must be positive"))
	}

	return errors.Join(errs...)
}
