// Package config loads settings from defaults, an optional ecotrack.yaml and
// ECOTRACK_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "ECOTRACK"
	ConfigName = "ecotrack"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Savings   SavingsConfig   `mapstructure:"savings"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type IdentityConfig struct {
	PublicKey         string        `mapstructure:"public_key"`
	DevSecret         string        `mapstructure:"dev_secret"`
	Issuer            string        `mapstructure:"issuer"`
	AuthorizedParties []string      `mapstructure:"authorized_parties"`
	SecretKey         string        `mapstructure:"secret_key"`
	APIURL            string        `mapstructure:"api_url"`
	WebhookSecret     string        `mapstructure:"webhook_secret"`
	SignInURL         string        `mapstructure:"sign_in_url"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

type GenAIConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	TipModel      string        `mapstructure:"tip_model"`
	CategoryModel string        `mapstructure:"category_model"`
	InsightModel  string        `mapstructure:"insight_model"`
	ImageModel    string        `mapstructure:"image_model"`
}

type StorageConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type SavingsConfig struct {
	CarbonBaseline float64 `mapstructure:"carbon_baseline"`
	EnergyBaseline float64 `mapstructure:"energy_baseline"`
	WindowDays     int     `mapstructure:"window_days"`
}

type RateLimitConfig struct {
	Generate int           `mapstructure:"generate"`
	Window   time.Duration `mapstructure:"window"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "ecotrack.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("identity.public_key", "")
	v.SetDefault("identity.dev_secret", "")
	v.SetDefault("identity.issuer", "")
	v.SetDefault("identity.authorized_parties", []string{})
	v.SetDefault("identity.secret_key", "")
	v.SetDefault("identity.api_url", "https://api.clerk.com/v1")
	v.SetDefault("identity.webhook_secret", "")
	v.SetDefault("identity.sign_in_url", "/sign-in")
	v.SetDefault("identity.cache_ttl", 5*time.Minute)

	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.base_url", "https://api.openai.com/v1")
	v.SetDefault("genai.timeout", 60*time.Second)
	v.SetDefault("genai.tip_model", "gpt-4")
	v.SetDefault("genai.category_model", "gpt-3.5-turbo")
	v.SetDefault("genai.insight_model", "gpt-4")
	v.SetDefault("genai.image_model", "dall-e-3")

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.public_base_url", "")

	v.SetDefault("savings.carbon_baseline", 22.0)
	v.SetDefault("savings.energy_baseline", 30.0)
	v.SetDefault("savings.window_days", 30)

	v.SetDefault("rate_limit.generate", 10)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
}

// Load reads path when given, otherwise looks for ecotrack.yaml in the working
// directory and /etc/ecotrack. A missing default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/ecotrack")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with. Commands that only
// touch the database skip it.
func (c *Config) Validate() error {
	if c.Identity.PublicKey == "" && c.Identity.DevSecret == "" {
		return errors.New("identity.public_key or identity.dev_secret is required")
	}
	if c.Savings.CarbonBaseline < 0 || c.Savings.EnergyBaseline < 0 {
		return errors.New("savings baselines must not be negative")
	}
	if c.Savings.WindowDays <= 0 {
		return errors.New("savings.window_days must be positive")
	}
	if c.RateLimit.Generate <= 0 {
		return errors.New("rate_limit.generate must be positive")
	}
	return nil
}
