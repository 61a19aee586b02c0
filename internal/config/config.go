// Package config loads gameiq settings from defaults, an optional
// gameiq.yaml and GAMEIQ_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/gameiq/internal/llm"
	"github.com/abhisek/gameiq/internal/logging"
	"github.com/abhisek/gameiq/internal/quiz"
	"github.com/abhisek/gameiq/internal/store"
)

const EnvPrefix = "GAMEIQ"

type Config struct {
	DB      store.Config   `mapstructure:"db"`
	Server  ServerConfig   `mapstructure:"server"`
	Log     logging.Config `mapstructure:"log"`
	Redis   RedisConfig    `mapstructure:"redis"`
	Catalog CatalogConfig  `mapstructure:"catalog"`
	AI      llm.Config     `mapstructure:"ai"`
	Quiz    QuizConfig     `mapstructure:"quiz"`
}

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// RedisConfig enables the shared per-user ledger lock when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type CatalogConfig struct {
	Dir string `mapstructure:"dir"` // imported on serve start when set
}

type QuizConfig struct {
	GeneratedSize int `mapstructure:"generated_size"`
}

// Load reads the configuration. file may be empty, in which case
// gameiq.yaml is looked up in the working directory and the user config
// directory; a missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("gameiq")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "gameiq"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("db.driver must be sqlite or mysql, got %q", c.DB.Driver)
	}
	if c.DB.Driver == "mysql" && c.DB.DSN == "" {
		return errors.New("db.dsn is required for mysql")
	}
	if c.Quiz.GeneratedSize < 1 {
		return fmt.Errorf("quiz.generated_size must be positive, got %d", c.Quiz.GeneratedSize)
	}
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	return nil
}

// ResolveDB fills in the default SQLite path when no DSN is configured.
func (c *Config) ResolveDB() (store.Config, error) {
	db := c.DB
	if db.Driver == "sqlite" {
		if db.DSN == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return db, err
			}
			db.DSN = p
		} else if err := store.EnsureDir(db.DSN); err != nil {
			return db, err
		}
	}
	return db, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 2*time.Minute)

	v.SetDefault("catalog.dir", "")
	v.SetDefault("quiz.generated_size", quiz.DefaultGeneratedSize)

	ai := llm.DefaultConfig()
	v.SetDefault("ai.provider", ai.Provider)
	v.SetDefault("ai.timeout", ai.Timeout)
	v.SetDefault("ai.retry.max_attempts", ai.Retry.MaxAttempts)
	v.SetDefault("ai.retry.initial_wait", ai.Retry.InitialWait)
	v.SetDefault("ai.retry.max_wait", ai.Retry.MaxWait)
	v.SetDefault("ai.retry.multiplier", ai.Retry.Multiplier)
	for name, p := range map[string]struct{ model, baseURL string }{
		"anthropic":  {ai.Anthropic.Model, ai.Anthropic.BaseURL},
		"openai":     {ai.OpenAI.Model, ai.OpenAI.BaseURL},
		"gemini":     {ai.Gemini.Model, ai.Gemini.BaseURL},
		"openrouter": {ai.OpenRouter.Model, ai.OpenRouter.BaseURL},
	} {
		v.SetDefault("ai."+name+".api_key", "")
		v.SetDefault("ai."+name+".model", p.model)
		v.SetDefault("ai."+name+".base_url", p.baseURL)
	}
}
