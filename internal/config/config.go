package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const EnvPrefix = "REALITY"

type Config struct {
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	Telegram      TelegramConfig      `mapstructure:"telegram"`
	Notifications NotificationsConfig `mapstructure:"notifications" validate:"required"`
	Log           LogConfig           `mapstructure:"log" validate:"required"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TelegramConfig enables the chat host. Both fields empty means no bot.
type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id" validate:"required_with=Token"`
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

type NotificationsConfig struct {
	// Enabled is the user's standing answer to the notification permission prompt.
	Enabled      bool   `mapstructure:"enabled"`
	SummaryCron  string `mapstructure:"summary_cron" validate:"required"`
	RearmOnStart bool   `mapstructure:"rearm_on_start"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// Load reads defaults, then the optional config file, then REALITY_* env vars.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cron.ParseStandard(cfg.Notifications.SummaryCron); err != nil {
		return fmt.Errorf("invalid config: notifications.summary_cron: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.summary_cron", "0 21 * * *")
	v.SetDefault("notifications.rearm_on_start", true)
	v.SetDefault("log.level", "info")
}

// DefaultDatabasePath places the store under the user's config directory,
// or in the working directory when that is unavailable.
func DefaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "reality-archive.db"
	}
	return filepath.Join(dir, "reality-archive", "reality-archive.db")
}
