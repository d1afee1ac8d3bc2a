// Package config собирает настройки сервиса из значений по умолчанию, YAML-файла,
// флагов командной строки и переменных окружения (в порядке возрастания приоритета).
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config содержит настройки приложения
type Config struct {
	RunAddr         string        `yaml:"server_address"`
	GRPCAddr        string        `yaml:"grpc_address"`
	BaseURL         string        `yaml:"base_url"`
	DatabaseDSN     string        `yaml:"database_dsn"`
	RedisAddr       string        `yaml:"redis_address"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	StoreTimeout    time.Duration `yaml:"store_timeout"`
	ShortenLimit    int           `yaml:"shorten_limit"`
	RedirectLimit   int           `yaml:"redirect_limit"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	TrustedSubnet   string        `yaml:"trusted_subnet"`
	LogLevel        string        `yaml:"log_level"`
}

// Default возвращает настройки по умолчанию
func Default() Config {
	return Config{
		RunAddr:         ":8080",
		GRPCAddr:        ":3200",
		BaseURL:         "http://localhost:8080",
		CacheTTL:        time.Hour,
		StoreTimeout:    3 * time.Second,
		ShortenLimit:    10,
		RedirectLimit:   100,
		RateLimitWindow: 24 * time.Hour,
		LogLevel:        "info",
	}
}

// NewConfig читает .env (если он есть), флаги os.Args и переменные окружения
func NewConfig() (*Config, error) {
	return Load(os.Args[1:], ".env")
}

// Load загружает переменные из envFiles и собирает конфигурацию.
// Отсутствующие файлы пропускаются, уже заданные переменные окружения не перезаписываются.
func Load(args []string, envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return Parse(args)
}

// Parse собирает конфигурацию из args и переменных окружения
func Parse(args []string) (*Config, error) {
	cfg := Default()

	var (
		path      string
		fromFlags = Default()
	)
	flagSet := flag.NewFlagSet("shortener", flag.ContinueOnError)
	flagSet.StringVar(&path, "c", "", "path to YAML config file")
	flagSet.StringVar(&fromFlags.RunAddr, "a", cfg.RunAddr, "address and port to run HTTP server")
	flagSet.StringVar(&fromFlags.GRPCAddr, "g", cfg.GRPCAddr, "address and port to run gRPC server, empty disables it")
	flagSet.StringVar(&fromFlags.BaseURL, "b", cfg.BaseURL, "base URL for shortened links")
	flagSet.StringVar(&fromFlags.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN for PostgreSQL")
	flagSet.StringVar(&fromFlags.RedisAddr, "r", cfg.RedisAddr, "Redis address for cache and rate limits")
	flagSet.DurationVar(&fromFlags.CacheTTL, "cache-ttl", cfg.CacheTTL, "lifetime of cached links")
	flagSet.DurationVar(&fromFlags.StoreTimeout, "store-timeout", cfg.StoreTimeout, "timeout of a single store call")
	flagSet.IntVar(&fromFlags.ShortenLimit, "shorten-limit", cfg.ShortenLimit, "shorten requests per client per window")
	flagSet.IntVar(&fromFlags.RedirectLimit, "redirect-limit", cfg.RedirectLimit, "redirects per client per window")
	flagSet.DurationVar(&fromFlags.RateLimitWindow, "rate-limit-window", cfg.RateLimitWindow, "rate limit window")
	flagSet.StringVar(&fromFlags.TrustedSubnet, "t", cfg.TrustedSubnet, "trusted proxy subnet in CIDR notation")
	flagSet.StringVar(&fromFlags.LogLevel, "l", cfg.LogLevel, "log level")
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	if env := os.Getenv("CONFIG"); env != "" {
		path = env
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Флаги перекрывают файл, только если заданы явно
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.RunAddr = fromFlags.RunAddr
		case "g":
			cfg.GRPCAddr = fromFlags.GRPCAddr
		case "b":
			cfg.BaseURL = fromFlags.BaseURL
		case "d":
			cfg.DatabaseDSN = fromFlags.DatabaseDSN
		case "r":
			cfg.RedisAddr = fromFlags.RedisAddr
		case "cache-ttl":
			cfg.CacheTTL = fromFlags.CacheTTL
		case "store-timeout":
			cfg.StoreTimeout = fromFlags.StoreTimeout
		case "shorten-limit":
			cfg.ShortenLimit = fromFlags.ShortenLimit
		case "redirect-limit":
			cfg.RedirectLimit = fromFlags.RedirectLimit
		case "rate-limit-window":
			cfg.RateLimitWindow = fromFlags.RateLimitWindow
		case "t":
			cfg.TrustedSubnet = fromFlags.TrustedSubnet
		case "l":
			cfg.LogLevel = fromFlags.LogLevel
		}
	})

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv применяет непустые переменные окружения
func applyEnv(cfg *Config) error {
	texts := map[string]*string{
		"SERVER_ADDRESS": &cfg.RunAddr,
		"GRPC_ADDRESS":   &cfg.GRPCAddr,
		"BASE_URL":       &cfg.BaseURL,
		"DATABASE_DSN":   &cfg.DatabaseDSN,
		"REDIS_ADDRESS":  &cfg.RedisAddr,
		"TRUSTED_SUBNET": &cfg.TrustedSubnet,
		"LOG_LEVEL":      &cfg.LogLevel,
	}
	for name, field := range texts {
		if value := os.Getenv(name); value != "" {
			*field = value
		}
	}

	durations := map[string]*time.Duration{
		"CACHE_TTL":         &cfg.CacheTTL,
		"STORE_TIMEOUT":     &cfg.StoreTimeout,
		"RATE_LIMIT_WINDOW": &cfg.RateLimitWindow,
	}
	for name, field := range durations {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*field = d
	}

	ints := map[string]*int{
		"SHORTEN_LIMIT":  &cfg.ShortenLimit,
		"REDIRECT_LIMIT": &cfg.RedirectLimit,
	}
	for name, field := range ints {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*field = n
	}
	return nil
}

func (c *Config) normalize() {
	c.RunAddr = normalizeAddress(c.RunAddr)
	if c.GRPCAddr != "" {
		c.GRPCAddr = normalizeAddress(c.GRPCAddr)
	}
	c.BaseURL = normalizeBaseURL(c.BaseURL)
}

// normalizeAddress превращает "8080" в ":8080"
func normalizeAddress(addr string) string {
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

// normalizeBaseURL добавляет схему http://, если она не указана
func normalizeBaseURL(url string) string {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

// Validate проверяет лимиты и длительности
func (c *Config) Validate() error {
	var errs []error
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("store timeout must be positive, got %s", c.StoreTimeout))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Errorf("rate limit window must be positive, got %s", c.RateLimitWindow))
	}
	if c.ShortenLimit <= 0 {
		errs = append(errs, fmt.Errorf("shorten limit must be positive, got %d", c.ShortenLimit))
	}
	if c.RedirectLimit <= 0 {
		errs = append(errs, fmt.Errorf("redirect limit must be positive, got %d", c.RedirectLimit))
	}
	return errors.Join(errs...)
}
