package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given
const DefaultPath = "config/config.yml"

// Token store drivers
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type PredictorConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

type TokenStoreConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Profile string `yaml:"profile"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type OTPConfig struct {
	ResendCooldown string `yaml:"resend_cooldown"`
}

type PaymentConfig struct {
	DefaultAmount   int64  `yaml:"default_amount"`
	CheckoutTimeout string `yaml:"checkout_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
}

type ConfigFile struct {
	App        AppConfig        `yaml:"app"`
	API        APIConfig        `yaml:"api"`
	Predictor  PredictorConfig  `yaml:"predictor"`
	TokenStore TokenStoreConfig `yaml:"token_store"`
	Redis      RedisConfig      `yaml:"redis"`
	OTP        OTPConfig        `yaml:"otp"`
	Payment    PaymentConfig    `yaml:"payment"`
	Log        LogConfig        `yaml:"log"`
}

type Config struct {
	Port             string
	GinMode          string
	APIBaseURL       string
	APITimeout       time.Duration
	PredictorURL     string
	PredictorTimeout time.Duration
	TokenStoreDriver string
	TokenStoreDSN    string
	Profile          string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	ResendCooldown   time.Duration
	DefaultAmount    int64
	CheckoutTimeout  time.Duration
	LogLevel         string
	LogDev           bool
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env (if present), then the YAML file at path, then applies PREDICTOR_* overrides
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if path == "" {
		path = env("PREDICTOR_CONFIG", DefaultPath)
	}

	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	applyDefaults(configFile)
	if err := applyEnv(configFile); err != nil {
		return nil, err
	}
	return build(configFile)
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

func applyDefaults(f *ConfigFile) {
	if f.App.Port == 0 {
		f.App.Port = 5173
	}
	if f.App.GinMode == "" {
		f.App.GinMode = "release"
	}
	if f.API.Timeout == "" {
		f.API.Timeout = "15s"
	}
	if f.Predictor.Timeout == "" {
		f.Predictor.Timeout = "30s"
	}
	if f.TokenStore.Driver == "" {
		f.TokenStore.Driver = DriverSQLite
	}
	if f.TokenStore.DSN == "" && f.TokenStore.Driver == DriverSQLite {
		f.TokenStore.DSN = "profile.db"
	}
	if f.TokenStore.Profile == "" {
		f.TokenStore.Profile = "default"
	}
	if f.OTP.ResendCooldown == "" {
		f.OTP.ResendCooldown = "60s"
	}
	if f.Payment.CheckoutTimeout == "" {
		f.Payment.CheckoutTimeout = "15m"
	}
	if f.Log.Level == "" {
		f.Log.Level = "info"
	}
}

func applyEnv(f *ConfigFile) error {
	f.API.BaseURL = env("PREDICTOR_API_BASE_URL", f.API.BaseURL)
	f.Predictor.BaseURL = env("PREDICTOR_SERVICE_URL", f.Predictor.BaseURL)
	f.TokenStore.Driver = env("PREDICTOR_TOKEN_STORE_DRIVER", f.TokenStore.Driver)
	f.TokenStore.DSN = env("PREDICTOR_TOKEN_STORE_DSN", f.TokenStore.DSN)
	f.TokenStore.Profile = env("PREDICTOR_PROFILE", f.TokenStore.Profile)
	f.Redis.Addr = env("PREDICTOR_REDIS_ADDR", f.Redis.Addr)
	f.Redis.Password = env("PREDICTOR_REDIS_PASSWORD", f.Redis.Password)
	f.Log.Level = env("PREDICTOR_LOG_LEVEL", f.Log.Level)
	f.App.GinMode = env("GIN_MODE", f.App.GinMode)
	if v := os.Getenv("PREDICTOR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PREDICTOR_PORT: %w", err)
		}
		f.App.Port = port
	}
	if v := os.Getenv("PREDICTOR_LOG_DEV"); v != "" {
		f.Log.Dev = v == "1" || v == "true"
	}
	return nil
}

func build(f *ConfigFile) (*Config, error) {
	apiTimeout, err := time.ParseDuration(f.API.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid API timeout: %w", err)
	}

	predictorTimeout, err := time.ParseDuration(f.Predictor.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid predictor timeout: %w", err)
	}

	cooldown, err := time.ParseDuration(f.OTP.ResendCooldown)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP resend cooldown: %w", err)
	}

	checkoutTimeout, err := time.ParseDuration(f.Payment.CheckoutTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid checkout timeout: %w", err)
	}

	cfg := &Config{
		Port:             strconv.Itoa(f.App.Port),
		GinMode:          f.App.GinMode,
		APIBaseURL:       f.API.BaseURL,
		APITimeout:       apiTimeout,
		PredictorURL:     f.Predictor.BaseURL,
		PredictorTimeout: predictorTimeout,
		TokenStoreDriver: f.TokenStore.Driver,
		TokenStoreDSN:    f.TokenStore.DSN,
		Profile:          f.TokenStore.Profile,
		RedisAddr:        f.Redis.Addr,
		RedisPassword:    f.Redis.Password,
		RedisDB:          f.Redis.DB,
		ResendCooldown:   cooldown,
		DefaultAmount:    f.Payment.DefaultAmount,
		CheckoutTimeout:  checkoutTimeout,
		LogLevel:         f.Log.Level,
		LogDev:           f.Log.Dev,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the client cannot start with
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.APITimeout <= 0 || c.PredictorTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.ResendCooldown < 0 {
		return errors.New("otp.resend_cooldown must not be negative")
	}
	switch c.TokenStoreDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisAddr == "" {
			return errors.New("redis.addr is required for the redis token store")
		}
	case DriverSQLite, DriverPostgres:
		if c.TokenStoreDSN == "" {
			return fmt.Errorf("token_store.dsn is required for the %s token store", c.TokenStoreDriver)
		}
	default:
		return fmt.Errorf("unknown token store driver %q", c.TokenStoreDriver)
	}
	return nil
}
