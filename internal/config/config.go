package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string   `mapstructure:"env"` // current application environment (local, dev, prod etc)
	TelegramAPIToken string   `mapstructure:"-"`   // Telegram API token loaded from environment
	OpenAIAPIKey     string   `mapstructure:"-"`   // OpenAI API key loaded from environment
	DB               DB       `mapstructure:"database"`
	Game             Game     `mapstructure:"game"`
	Provider         Provider `mapstructure:"provider"`
	LeaderboardSize  int      `mapstructure:"leaderboard_size"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Game contains the game loop tunables.
type Game struct {
	AnswerWindow time.Duration `mapstructure:"answer_window"` // how long each question stays open
	DecayDivisor time.Duration `mapstructure:"decay_divisor"` // remaining time per point
	BaseBonus    int           `mapstructure:"base_bonus"`    // flat bonus for any in-window correct answer
	MinElapsed   time.Duration `mapstructure:"min_elapsed"`   // minimum time before a submission can be accepted
	AnswerGrace  time.Duration `mapstructure:"answer_grace"`  // pause after a correct answer
	TimeoutGrace time.Duration `mapstructure:"timeout_grace"` // pause after a timeout reveal
	StartDelay   time.Duration `mapstructure:"start_delay"`   // pause between setup and the first question
	ConfigTTL    time.Duration `mapstructure:"config_ttl"`    // max age of an abandoned configuration
}

// Provider contains question generation settings.
type Provider struct {
	Model       string        `mapstructure:"model"`        // chat model used for generation
	Timeout     time.Duration `mapstructure:"timeout"`      // per-call deadline
	UseFallback bool          `mapstructure:"use_fallback"` // serve fixed questions when generation fails
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("leaderboard_size", 10)
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("game.answer_window", "30s")
	v.SetDefault("game.decay_divisor", "6s")
	v.SetDefault("game.base_bonus", 0)
	v.SetDefault("game.min_elapsed", "1s")
	v.SetDefault("game.answer_grace", "3s")
	v.SetDefault("game.timeout_grace", "2s")
	v.SetDefault("game.start_delay", "3s")
	v.SetDefault("game.config_ttl", "10m")
	v.SetDefault("provider.model", "gpt-4o")
	v.SetDefault("provider.timeout", "60s")
	v.SetDefault("provider.use_fallback", true)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.OpenAIAPIKey = v.GetString("openai_api_key")
	if cfg.OpenAIAPIKey == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
