package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lupppig/sitectl/internal/settings"
	"github.com/spf13/viper"
)

const EnvPrefix = "SITECTL"

type Config struct {
	LogJSON       bool           `mapstructure:"log_json"`
	NoColor       bool           `mapstructure:"no_color"`
	Debug         bool           `mapstructure:"debug"`
	Notifications Notifications  `mapstructure:"notifications"`
	Settings      settings.Local `mapstructure:"settings"`
}

type Notifications struct {
	Slack    SlackConfig     `mapstructure:"slack"`
	Webhooks []WebhookConfig `mapstructure:"webhooks"`
}

type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Template   string `mapstructure:"template"`
}

type WebhookConfig struct {
	URL      string            `mapstructure:"url"`
	Method   string            `mapstructure:"method"`
	Template string            `mapstructure:"template"`
	Headers  map[string]string `mapstructure:"headers"`
}

// Load reads the config file (if any) and the SITECTL_* environment once.
// An empty configPath searches ./sitectl.yaml and ~/.sitectl/sitectl.yaml;
// not finding either is fine.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("sitectl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".sitectl"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_json", false)
	v.SetDefault("no_color", false)
	v.SetDefault("debug", false)

	// Settings keys have no defaults here, so unset stays nil in
	// settings.Local. Bind them explicitly so the environment still reaches them.
	for _, k := range settings.LocalKeys {
		if err := v.BindEnv("settings." + k); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", k, err)
		}
	}
	if err := v.BindEnv("notifications.slack.webhook_url"); err != nil {
		return nil, fmt.Errorf("failed to bind env for slack webhook: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
