package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable, e.g. DASHBOARD_HTTP_ADDR
const EnvPrefix = "DASHBOARD"

// Config 应用配置
type Config struct {
	HTTPAddr        string        `mapstructure:"http_addr" yaml:"http_addr" validate:"required"`
	AppTitle        string        `mapstructure:"app_title" yaml:"app_title" validate:"required"`
	AppEnv          string        `mapstructure:"app_env" yaml:"app_env" validate:"oneof=dev prod"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	DataSource      string        `mapstructure:"data_source" yaml:"data_source" validate:"oneof=csv sqlite"`
	CSVPath         string        `mapstructure:"csv_path" yaml:"csv_path" validate:"required_if=DataSource csv"`
	DBPath          string        `mapstructure:"db_path" yaml:"db_path" validate:"required_if=DataSource sqlite"`
	MapAssetPath    string        `mapstructure:"map_asset_path" yaml:"map_asset_path"`
	TopN            int           `mapstructure:"top_n" yaml:"top_n" validate:"min=1,max=500"`
	RollingWindow   int           `mapstructure:"rolling_window" yaml:"rolling_window" validate:"min=1,max=365"`
	CenterLat       float64       `mapstructure:"center_lat" yaml:"center_lat" validate:"latitude"`
	CenterLng       float64       `mapstructure:"center_lng" yaml:"center_lng" validate:"longitude"`
	JWTSecret       string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	RateLimit       int           `mapstructure:"rate_limit" yaml:"rate_limit" validate:"min=0"`
	RateWindow      time.Duration `mapstructure:"rate_window" yaml:"rate_window" validate:"gt=0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`
}

// SetDefaults registers every key with its default so environment overrides are picked up on Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("app_title", "Citi Bike 2022 Dashboard")
	v.SetDefault("app_env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("data_source", "csv")
	v.SetDefault("csv_path", "./data/reduced_data_to_plot.csv")
	v.SetDefault("db_path", "./data/citibike.db")
	v.SetDefault("map_asset_path", "./docs/citibike_small_map.html")
	v.SetDefault("top_n", 10)
	v.SetDefault("rolling_window", 7)
	v.SetDefault("center_lat", 40.7128)
	v.SetDefault("center_lng", -74.0060)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("rate_limit", 120)
	v.SetDefault("rate_window", time.Minute)
	v.SetDefault("read_timeout", 15*time.Second)
	v.SetDefault("write_timeout", 30*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// NewViper returns a viper instance with defaults, DASHBOARD_* environment
// lookup and, when configFile is set, the YAML file loaded
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load 加载配置
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// YAML renders the effective configuration with the JWT secret masked.
// The output is accepted back by --config.
func (c *Config) YAML() ([]byte, error) {
	out := *c
	if out.JWTSecret != "" {
		out.JWTSecret = "redacted"
	}
	b, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return b, nil
}

// SlogLevel converts LogLevel to a slog.Level
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// SourcePath is the file backing the configured data source
func (c *Config) SourcePath() string {
	if c.DataSource == "sqlite" {
		return c.DBPath
	}
	return c.CSVPath
}
