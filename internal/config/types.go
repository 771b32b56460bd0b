package config

// ConfigApp общие настройки приложения
type ConfigApp struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// ConfigServer настройки сервера
type ConfigServer struct {
	UseReflection           bool `mapstructure:"use_reflection"`
	PortGRPC                int  `mapstructure:"port_grpc"`
	PortHTTP                int  `mapstructure:"port_http"`
	HTTPReadTimeout         int  `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int  `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int  `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int  `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int  `mapstructure:"graceful_shutdown_timeout"`
	HealthCheckInterval     int  `mapstructure:"health_check_interval"`
}

// ConfigHTTP настройки HTTP API (CORS, rate limiting)
type ConfigHTTP struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
	MaxBodyBytes       int64  `mapstructure:"max_body_bytes"`
}

// ConfigDatabase настройки подключения к БД
type ConfigDatabase struct {
	Driver          string `mapstructure:"driver"` // postgres | sqlite | memory
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
	Seed            bool   `mapstructure:"seed"`
	Debug           bool   `mapstructure:"debug"`
}

// ConfigAuth настройки аутентификации
type ConfigAuth struct {
	UseDevAuthentication bool   `mapstructure:"use_dev_authentication"`
	Issuer               string `mapstructure:"issuer"`
	Audience             string `mapstructure:"audience"`
}

// ConfigCache настройки кэша списка заметок (секунды)
type ConfigCache struct {
	Enabled            bool `mapstructure:"enabled"`
	SlidingExpiration  int  `mapstructure:"sliding_expiration"`
	AbsoluteExpiration int  `mapstructure:"absolute_expiration"`
}

// ConfigSwagger настройки отдачи OpenAPI документа
type ConfigSwagger struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config основная структура конфигурации
type Config struct {
	App      *ConfigApp      `mapstructure:"app"`
	Logger   *ConfigLogger   `mapstructure:"logger"`
	Server   *ConfigServer   `mapstructure:"server"`
	HTTP     *ConfigHTTP     `mapstructure:"http"`
	Database *ConfigDatabase `mapstructure:"database"`
	Auth     *ConfigAuth     `mapstructure:"auth"`
	Cache    *ConfigCache    `mapstructure:"cache"`
	Swagger  *ConfigSwagger  `mapstructure:"swagger"`
}

// IsDevelopment окружение разработки
func (c *Config) IsDevelopment() bool {
	return c.App != nil && c.App.Environment == "development"
}

// UseDevAuth заглушка аутентификации включена только в окружении разработки
func (c *Config) UseDevAuth() bool {
	return c.IsDevelopment() && c.Auth != nil && c.Auth.UseDevAuthentication
}
