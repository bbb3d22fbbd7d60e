package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/polyscan/internal/domain"
)

// Config es la configuración completa de polyscan.
type Config struct {
	Scanner ScannerConfig `yaml:"scanner"`
	API     APIConfig     `yaml:"api"`
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

// ScannerConfig contiene los umbrales por defecto y la cadencia del modo watch.
type ScannerConfig struct {
	MinReward       float64 `yaml:"min_reward"`    // USDC/día
	MaxDays         int     `yaml:"max_days"`      // días hasta la resolución
	MinLiquidity    float64 `yaml:"min_liquidity"` // 0 = sin filtro
	Limit           int     `yaml:"limit"`         // mercados pedidos a Gamma (1..1000)
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	IntervalSeconds int     `yaml:"interval_seconds"` // solo -watch
	ConsoleRows     int     `yaml:"console_rows"`     // 0 = todas
}

// APIConfig controla el cliente de Gamma.
type APIConfig struct {
	GammaBase      string  `yaml:"gamma_base"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	UserAgent      string  `yaml:"user_agent"`
	RatePerSec     float64 `yaml:"rate_per_sec"`
}

// ServerConfig controla el servidor HTTP del dashboard.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CacheConfig elige el backend de caché.
type CacheConfig struct {
	Backend string      `yaml:"backend"` // memory | redis
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig son los datos de conexión a Redis (backend: redis).
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	// max_days: 0 es válido; su default se fija antes de parsear.
	cfg := Config{Scanner: ScannerConfig{MaxDays: 30}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate rechaza combinaciones que no tienen sentido.
func (c *Config) Validate() error {
	if err := c.DefaultParams().Validate(); err != nil {
		return fmt.Errorf("scanner: %w", err)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	return nil
}

// DefaultParams devuelve los umbrales que usa el dashboard cuando la query no los trae.
func (c *Config) DefaultParams() domain.FilterParams {
	return domain.FilterParams{
		MinReward:    c.Scanner.MinReward,
		MaxDays:      c.Scanner.MaxDays,
		MinLiquidity: c.Scanner.MinLiquidity,
	}
}

// ScanInterval devuelve el intervalo del modo watch como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalSeconds) * time.Second
}

// CacheTTL devuelve la validez de un resultado cacheado.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Scanner.CacheTTLSeconds) * time.Second
}

// Timeout devuelve el timeout de las requests a Gamma.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYSCAN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GAMMA_BASE"); v != "" {
		cfg.API.GammaBase = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.Backend = "redis"
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB %q: %w", v, err)
		}
		cfg.Cache.Redis.DB = db
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Scanner.Limit <= 0 {
		cfg.Scanner.Limit = 500
	}
	if cfg.Scanner.CacheTTLSeconds <= 0 {
		cfg.Scanner.CacheTTLSeconds = 300
	}
	if cfg.Scanner.IntervalSeconds <= 0 {
		cfg.Scanner.IntervalSeconds = 300
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 10
	}
	if cfg.API.RatePerSec <= 0 {
		cfg.API.RatePerSec = 2
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = "localhost:6379"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
