package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Settings is the process configuration, read from parley.yaml and the
// environment (PARLEY_ prefix; OPENAI_API_KEY is honored directly).
type Settings struct {
	Listen   string         `mapstructure:"listen"`
	LogLevel string         `mapstructure:"log-level"`
	OpenAI   OpenAISettings `mapstructure:"openai"`
	Language LanguagePair   `mapstructure:"language"`
	Database Database       `mapstructure:"database"`
}

type OpenAISettings struct {
	APIKey  string `mapstructure:"api-key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base-url"`
}

type LanguagePair struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

type Database struct {
	// Driver is "memory" or "sqlite".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":5000")
	v.SetDefault("log-level", "info")
	v.SetDefault("openai.api-key", "")
	v.SetDefault("openai.model", "gpt-3.5-turbo")
	v.SetDefault("openai.base-url", "")
	v.SetDefault("language.source", "en")
	v.SetDefault("language.target", "zh")
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.dsn", "parley.sqlite")
}

// Load reads settings from the given config file (optional), the PARLEY_*
// environment and defaults, in that order of precedence.
func Load(configFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("parley")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read config file %s", configFile)
		}
	} else {
		v.SetConfigName("parley")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.parley")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "could not read config file")
			}
		}
	}

	// OPENAI_API_KEY is the conventional variable; prefer it when the
	// prefixed one is unset.
	_ = v.BindEnv("openai.api-key", "PARLEY_OPENAI_API_KEY", "OPENAI_API_KEY")

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal settings")
	}
	return settings, nil
}
