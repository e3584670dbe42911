// Package config loads server settings from defaults, an optional config
// file, a .env file and DRAW_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "DRAW"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Draw       DrawConfig       `mapstructure:"draw"`
	Store      StoreConfig      `mapstructure:"store"`
	Commentary CommentaryConfig `mapstructure:"commentary"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// AllowedOrigins feeds both CORS and the websocket origin check.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DrawConfig struct {
	// RevealDelay is how long a drawn team stays pending before it is seated.
	RevealDelay  time.Duration `mapstructure:"reveal_delay"`
	AutoInterval time.Duration `mapstructure:"auto_interval"`
	Lookahead    bool          `mapstructure:"lookahead"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "memory" | "postgres"
	DSN    string `mapstructure:"dsn"`
}

type CommentaryConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Draw: DrawConfig{
			RevealDelay:  1500 * time.Millisecond,
			AutoInterval: 500 * time.Millisecond,
			Lookahead:    true,
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		Commentary: CommentaryConfig{
			Model:   "gemini-2.5-flash",
			BaseURL: "https://generativelanguage.googleapis.com",
			Timeout: 20 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)

	v.SetDefault("draw.reveal_delay", d.Draw.RevealDelay)
	v.SetDefault("draw.auto_interval", d.Draw.AutoInterval)
	v.SetDefault("draw.lookahead", d.Draw.Lookahead)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)

	v.SetDefault("commentary.api_key", d.Commentary.APIKey)
	v.SetDefault("commentary.model", d.Commentary.Model)
	v.SetDefault("commentary.base_url", d.Commentary.BaseURL)
	v.SetDefault("commentary.timeout", d.Commentary.Timeout)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
}

// New returns a viper instance wired for DRAW_* environment variables.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("commentary.api_key", EnvPrefix+"_COMMENTARY_API_KEY", "GEMINI_API_KEY")
	return v
}

// Load reads an optional .env file and config file, then unmarshals and
// validates the result. Empty paths are skipped.
func Load(v *viper.Viper, configFile, dotEnv string) (*Config, error) {
	if dotEnv != "" {
		if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
