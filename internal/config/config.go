package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIOrigin       string        `mapstructure:"api_origin"`
	APIBasePath     string        `mapstructure:"api_base_path"`
	TimeoutMs       int64         `mapstructure:"timeout_ms"`
	Timeout         time.Duration `mapstructure:"-"`
	WithCredentials bool          `mapstructure:"with_credentials"`
	NotFoundPath    string        `mapstructure:"not_found_path"`
	SilentFailures  bool          `mapstructure:"silent_failures"`

	Locale       string `mapstructure:"locale"`
	MessagesFile string `mapstructure:"messages_file"`
	SinksFile    string `mapstructure:"sinks_file"`

	TokenKey     string `mapstructure:"token_key"`
	SandboxToken string `mapstructure:"sandbox_token"`
	StorageType  string `mapstructure:"storage_type"`
	BBoltPath    string `mapstructure:"bbolt_path"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-request")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_origin", "http://localhost:8080")
	v.SetDefault("api_base_path", "/api")
	v.SetDefault("timeout_ms", 10000)
	v.SetDefault("with_credentials", true)
	v.SetDefault("not_found_path", "/NotFound")
	v.SetDefault("silent_failures", false)
	v.SetDefault("locale", "zh-CN")
	v.SetDefault("messages_file", "")
	v.SetDefault("sinks_file", "")
	v.SetDefault("token_key", "TOKEN")
	v.SetDefault("sandbox_token", "test")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/credentials.db")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TimeoutMs <= 0 {
		return nil, fmt.Errorf("invalid timeout_ms (must be positive milliseconds)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond

	cfg.APIBasePath = strings.TrimSpace(cfg.APIBasePath)
	if cfg.APIBasePath == "" {
		return nil, fmt.Errorf("invalid api_base_path (must not be empty)")
	}
	if strings.TrimSpace(cfg.TokenKey) == "" {
		return nil, fmt.Errorf("invalid token_key (must not be empty)")
	}

	return &cfg, nil
}

// BaseURL joins the API origin and base path.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.APIOrigin, "/") + "/" + strings.TrimLeft(c.APIBasePath, "/")
}
