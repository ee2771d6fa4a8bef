package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "HOMEWORK_BOT_CONFIG"
	praktikumTokenEnv = "PRAKTIKUM_TOKEN"
	praktikumURLEnv   = "PRAKTIKUM_URL"
	telegramTokenEnv  = "TELEGRAM_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
	logFileEnv        = "LOG_FILE"
	metricsAddrEnv    = "METRICS_ADDR"

	dotEnvFile = ".env"
)

// StartFromNow asks the poller to start from the current time instead of a fixed watermark.
const StartFromNow int64 = -1

// Config holds all settings of the bot. It is built once at startup and passed by value.
type Config struct {
	Praktikum     PraktikumConfig    `yaml:"praktikum"`
	Notifications NotificationConfig `yaml:"notifications"`
	Poll          PollConfig         `yaml:"poll"`
	Logging       LoggingConfig      `yaml:"logging"`
	Metrics       MetricsConfig      `yaml:"metrics"`
}

// PraktikumConfig describes the homework review API.
type PraktikumConfig struct {
	BaseURL string        `yaml:"baseUrl" validate:"required,url"`
	Token   string        `yaml:"token" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	APIURL   string        `yaml:"apiUrl" validate:"required,url"`
	BotToken string        `yaml:"botToken" validate:"required"`
	ChatID   string        `yaml:"chatId" validate:"required"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
}

// PollConfig controls the poll loop timing.
type PollConfig struct {
	Interval      time.Duration `yaml:"interval" validate:"gt=0"`
	RetryInterval time.Duration `yaml:"retryInterval" validate:"gt=0"`
	// StartFrom is the initial watermark; StartFromNow means the current time.
	StartFrom int64 `yaml:"startFrom" validate:"gte=-1"`
}

// LoggingConfig selects level, format and destination of log lines.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	File   string `yaml:"file"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Load reads .env and an optional YAML file, applies environment overrides and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load %s: %w", dotEnvFile, err)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks required credentials and value ranges.
func (c Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(praktikumTokenEnv); v != "" {
		c.Praktikum.Token = v
	}

	if v := os.Getenv(praktikumURLEnv); v != "" {
		c.Praktikum.BaseURL = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(logFileEnv); v != "" {
		c.Logging.File = v
	}

	if v := os.Getenv(metricsAddrEnv); v != "" {
		c.Metrics.Addr = v
	}
}

func defaultConfig() Config {
	return Config{
		Praktikum: PraktikumConfig{
			BaseURL: "https://praktikum.yandex.ru/api/user_api/",
			Timeout: 10 * time.Second,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{
				APIURL:  "https://api.telegram.org",
				Timeout: 5 * time.Second,
			},
		},
		Poll: PollConfig{
			Interval:      300 * time.Second,
			RetryInterval: 5 * time.Second,
			StartFrom:     StartFromNow,
		},
		Logging: LoggingConfig{Level: "debug", Format: "text"},
	}
}
