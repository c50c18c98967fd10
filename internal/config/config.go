// config предоставляет структуру конфигурации harvester-а
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
//
// Перед чтением подгружается ./.env (если есть); уже заданные переменные не перезаписываются.
type Config struct {
	Env          string         `yaml:"env"      env:"ENV" env-default:"local"`
	HTTP         HTTPConfig     `yaml:"http"`
	GRPC         GRPCConfig     `yaml:"grpc"`
	DB           DBConfig       `yaml:"db"`
	Redis        RedisConfig    `yaml:"redis"`
	S3           S3Config       `yaml:"s3"`
	RabbitMQ     RabbitMQConfig `yaml:"rabbitmq"`
	Fetcher      FetcherConfig  `yaml:"fetcher"`
	Relay        RelayConfig    `yaml:"relay"`
	Browser      BrowserConfig  `yaml:"browser"`
	Harvest      HarvestConfig  `yaml:"harvest"`
	LimitsConfig LimitsConfig   `yaml:"limits"`
	Timeouts     TimeoutConfig  `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	// Service — таймаут обычного запроса API. На POST /harvests не действует:
	// харвест ограничен таймаутами браузера и отдельных загрузок.
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// GRPCConfig — сетевые настройки gRPC-сервера (health).
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string {
	return net.JoinHostPort(g.Host, g.Port)
}

// DBConfig — подключение к PostgreSQL.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// RedisConfig — кэш уже опубликованных карточек. Пустой URL — кэш выключен.
type RedisConfig struct {
	URL       string        `yaml:"url"        env:"REDIS_URL"`
	KeyPrefix string        `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"harvester:seen:"`
	SeenTTL   time.Duration `yaml:"seen_ttl"   env:"REDIS_SEEN_TTL"   env-default:"168h"`
}

// S3Config — архив нераспознанных страниц. Пустой Endpoint — архив выключен.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"   env:"S3_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket    string `yaml:"bucket"     env:"S3_BUCKET" env-default:"harvester-pages"`
	UseSSL    bool   `yaml:"use_ssl"    env:"S3_USE_SSL"`
}

// RabbitMQConfig — очередь передачи карточек на обогащение. Пустой URL — публикация выключена.
type RabbitMQConfig struct {
	URL        string `yaml:"url"         env:"RABBITMQ_URL"`
	Exchange   string `yaml:"exchange"    env:"RABBITMQ_EXCHANGE"    env-default:"harvester"`
	RoutingKey string `yaml:"routing_key" env:"RABBITMQ_ROUTING_KEY" env-default:"listing.enrich"`
}

// FetcherConfig — устойчивая загрузка страниц.
type FetcherConfig struct {
	// Timeout — таймаут одной попытки.
	Timeout     time.Duration `yaml:"timeout"      env:"FETCH_TIMEOUT"      env-default:"20s"`
	MaxAttempts int           `yaml:"max_attempts" env:"FETCH_MAX_ATTEMPTS" env-default:"3"`
	Backoff     BackoffConfig `yaml:"backoff"`
	Rate        RateConfig    `yaml:"rate"`
}

// BackoffConfig — рандомизированное экспоненциальное ожидание между попытками.
type BackoffConfig struct {
	Min        time.Duration `yaml:"min"        env:"FETCH_BACKOFF_MIN"        env-default:"4s"`
	Max        time.Duration `yaml:"max"        env:"FETCH_BACKOFF_MAX"        env-default:"10s"`
	Multiplier time.Duration `yaml:"multiplier" env:"FETCH_BACKOFF_MULTIPLIER" env-default:"1s"`
}

// RateConfig — общий лимит запросов: Requests за Window.
type RateConfig struct {
	Requests int           `yaml:"requests" env:"FETCH_RATE_REQUESTS" env-default:"100"`
	Window   time.Duration `yaml:"window"   env:"FETCH_RATE_WINDOW"   env-default:"60s"`
}

// RelayConfig — relay-транспорт (Zyte API).
type RelayConfig struct {
	Enabled  bool   `yaml:"enabled"  env:"RELAY_ENABLED"`
	Endpoint string `yaml:"endpoint" env:"RELAY_ENDPOINT" env-default:"https://api.zyte.com/v1/extract"`
	APIKey   string `yaml:"api_key"  env:"ZYTE_API_KEY"`
	// Browser — запрашивать отрендеренный HTML вместо тела ответа.
	Browser bool `yaml:"browser" env:"RELAY_BROWSER"`
}

// BrowserConfig — headless Chrome для первой страницы.
type BrowserConfig struct {
	// Headful — показывать окно браузера (по умолчанию headless).
	Headful   bool          `yaml:"headful"    env:"BROWSER_HEADFUL"`
	UserAgent string        `yaml:"user_agent" env:"BROWSER_USER_AGENT"`
	Timeout   time.Duration `yaml:"timeout"    env:"BROWSER_TIMEOUT"    env-default:"2m"`
	Scrolls   int           `yaml:"scrolls"    env:"BROWSER_SCROLLS"    env-default:"3"`
	Settle    time.Duration `yaml:"settle"     env:"BROWSER_SETTLE"     env-default:"2s"`
}

// HarvestConfig — значения по умолчанию для запросов харвеста.
type HarvestConfig struct {
	MaxResults int     `yaml:"max_results" env:"HARVEST_MAX_RESULTS" env-default:"20"`
	MinRating  float64 `yaml:"min_rating"  env:"HARVEST_MIN_RATING"  env-default:"0"`
}

// LimitsConfig — серверные лимиты на выдачу списков.
type LimitsConfig struct {
	// Применяется при запросе с limit=0.
	Default int32 `yaml:"default" env:"DEFAULT_LIMIT" env-default:"20"`
	// Верхняя граница для limit.
	Max int32 `yaml:"max" env:"MAX_LIMIT" env-default:"200"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	var cfg Config

	read := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	switch {
	case path != "":
		return read(path)
	case os.Getenv("CONFIG_PATH") != "":
		return read(os.Getenv("CONFIG_PATH"))
	}

	if _, err := os.Stat("local.yaml"); err == nil {
		return read("local.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv подгружает файл переменных окружения; отсутствие файла не ошибка.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	switch {
	case c.DB.URL == "":
		return fmt.Errorf("db.url is required")
	case c.Fetcher.MaxAttempts < 1:
		return fmt.Errorf("fetcher.max_attempts must be >= 1")
	case c.Fetcher.Backoff.Min > c.Fetcher.Backoff.Max:
		return fmt.Errorf("fetcher.backoff.min must be <= fetcher.backoff.max")
	case c.Fetcher.Rate.Requests <= 0 || c.Fetcher.Rate.Window <= 0:
		return fmt.Errorf("fetcher.rate.requests and fetcher.rate.window must be > 0")
	case c.Relay.Enabled && c.Relay.APIKey == "":
		return fmt.Errorf("relay.api_key is required when relay is enabled")
	case c.Harvest.MaxResults <= 0:
		return fmt.Errorf("harvest.max_results must be > 0")
	case c.Harvest.MinRating < 0 || c.Harvest.MinRating > 5:
		return fmt.Errorf("harvest.min_rating must be within [0, 5]")
	case c.LimitsConfig.Default <= 0:
		return fmt.Errorf("limits.default must be > 0")
	case c.LimitsConfig.Max <= 0:
		return fmt.Errorf("limits.max must be > 0")
	case c.LimitsConfig.Default > c.LimitsConfig.Max:
		return fmt.Errorf("limits.default must be <= limits.max")
	}
	return nil
}
