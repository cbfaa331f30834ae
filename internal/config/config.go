package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "GTDBOT"
	configName = "gtdbot"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Prefix   string         `mapstructure:"prefix" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Log      LogConfig      `mapstructure:"log"`
	Chat     ChatConfig     `mapstructure:"chat"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=file sqlite"`
	Root       string `mapstructure:"root" validate:"required"`
	Format     string `mapstructure:"format" validate:"oneof=json yaml yml"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

type ReminderConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type StatsConfig struct {
	WindowDays int `mapstructure:"window_days" validate:"min=1,max=365"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type ChatConfig struct {
	User                 string `mapstructure:"user" validate:"required"`
	DesktopNotifications bool   `mapstructure:"desktop_notifications"`
	HistoryLimit         int    `mapstructure:"history_limit" validate:"min=1"`
	HistoryFile          string `mapstructure:"history_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("prefix", "!gtd")

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.root", "./var")
	v.SetDefault("storage.format", "json")
	v.SetDefault("storage.sqlite_path", "./var/gtdbot.db")

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.interval", "24h")

	v.SetDefault("stats.window_days", 7)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("chat.user", "local")
	v.SetDefault("chat.desktop_notifications", false)
	v.SetDefault("chat.history_limit", 100)
	v.SetDefault("chat.history_file", "")
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load resolves configuration from defaults, an optional YAML file and
// GTDBOT_* environment variables, in increasing priority. With an empty
// configFile it looks for gtdbot.yaml in the working directory and then in
// $HOME/.gtdbot; finding none is fine.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".gtdbot"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Prefix = strings.TrimSpace(c.Prefix)
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Storage.Format = strings.ToLower(strings.TrimSpace(c.Storage.Format))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Chat.User = strings.TrimSpace(c.Chat.User)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
