// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Split     SplitConfig     `yaml:"split" mapstructure:"split"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SourcesConfig names the three input datasets. Each entry is a URL
// (http, https, ftp, file) or a local path; formats beyond the defaults
// come from the optional source manifest (see sources.go).
type SourcesConfig struct {
	Manifest   string `yaml:"manifest" mapstructure:"manifest"`
	Incidents  string `yaml:"incidents" mapstructure:"incidents"`
	Boroughs   string `yaml:"boroughs" mapstructure:"boroughs"`
	Population string `yaml:"population" mapstructure:"population"`
}

// SplitConfig configures the train/test partition of the occurrence table.
type SplitConfig struct {
	TrainFraction float64 `yaml:"train_fraction" mapstructure:"train_fraction"`
	Seed          int64   `yaml:"seed" mapstructure:"seed"`
	Threshold     float64 `yaml:"threshold" mapstructure:"threshold"`
}

// ExportConfig configures the result sinks.
type ExportConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	XLSXPath    string `yaml:"xlsx_path" mapstructure:"xlsx_path"`
}

// NotionConfig holds Notion API credentials and the target database.
type NotionConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	RatesDB string `yaml:"rates_db" mapstructure:"rates_db"`
}

// AnthropicConfig holds Anthropic API settings for narrative drafting.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the read-only results server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INCIDENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("split.train_fraction", 0.7)
	v.SetDefault("split.seed", 1)
	v.SetDefault("split.threshold", 0.5)
	v.SetDefault("export.driver", "sqlite")
	v.SetDefault("export.sqlite_path", "incident-results.db")
	v.SetDefault("export.xlsx_path", "incident-report.xlsx")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
