package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fieldtrack.com/fieldtrack/infrastructure/devops"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "FIELDTRACK"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Media    MediaConfig    `mapstructure:"media"`
	Maps     MapsConfig     `mapstructure:"maps"`
	Roster   RosterConfig   `mapstructure:"roster"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Config   SourceConfig   `mapstructure:"config"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	// Driver is one of mysql, postgres, sqlite or mongo.
	Driver         string `mapstructure:"driver"`
	DSN            string `mapstructure:"dsn"`
	Name           string `mapstructure:"name"`
	MaxConnections int    `mapstructure:"maxConnections"`
	LogLevel       string `mapstructure:"logLevel"`
}

type AuthConfig struct {
	// SigningSecret is the base64 HS256 key.
	SigningSecret string `mapstructure:"signingSecret"`
}

type MediaConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	PublicBaseURL string `mapstructure:"publicBaseURL"`
	MaxImageKB    int    `mapstructure:"maxImageKB"`
}

type MapsConfig struct {
	APIKey  string        `mapstructure:"apiKey"`
	BaseURL string        `mapstructure:"baseURL"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RosterConfig struct {
	ExcludedEmails  []string `mapstructure:"excludedEmails"`
	ExcludedRegions []string `mapstructure:"excludedRegions"`
}

type AlertsConfig struct {
	SlackToken   string `mapstructure:"slackToken"`
	InfoChannel  string `mapstructure:"infoChannel"`
	ErrorChannel string `mapstructure:"errorChannel"`
}

type SourceConfig struct {
	// SSMParameter names a parameter holding a YAML overlay.
	SSMParameter string `mapstructure:"ssmParameter"`
}

// OverlayFunc fetches a settings overlay by name.
type OverlayFunc func(ctx context.Context, name string) (map[string]any, error)

type LoadOptions struct {
	// File is an optional YAML config file.
	File string
	// EnvFile is loaded into the process environment when it exists.
	EnvFile string
	// Overlay defaults to reading from SSM.
	Overlay OverlayFunc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0:8090")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.name", "fieldtrack")
	v.SetDefault("database.maxConnections", 10)
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("auth.signingSecret", "")
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.region", "")
	v.SetDefault("media.publicBaseURL", "")
	v.SetDefault("media.maxImageKB", 10)
	v.SetDefault("maps.apiKey", "")
	v.SetDefault("maps.baseURL", "https://maps.googleapis.com/maps/api")
	v.SetDefault("maps.timeout", 10*time.Second)
	v.SetDefault("roster.excludedEmails", []string{})
	v.SetDefault("roster.excludedRegions", []string{})
	v.SetDefault("alerts.slackToken", "")
	v.SetDefault("alerts.infoChannel", "")
	v.SetDefault("alerts.errorChannel", "")
	v.SetDefault("config.ssmParameter", "")
}

// Load resolves settings from, lowest to highest precedence: defaults, the
// YAML file, the SSM overlay and FIELDTRACK_* environment variables.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	}

	if name := v.GetString("config.ssmParameter"); name != "" {
		overlay := opts.Overlay
		if overlay == nil {
			overlay = devops.LoadConfigOverlay
		}
		settings, err := overlay(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", name, err)
		}
		if err := v.MergeConfigMap(settings); err != nil {
			return nil, fmt.Errorf("merge overlay %s: %w", name, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Roster.ExcludedEmails = splitList(cfg.Roster.ExcludedEmails)
	cfg.Roster.ExcludedRegions = splitList(cfg.Roster.ExcludedRegions)
	return cfg, nil
}

// splitList flattens comma separated entries, as list values arrive from
// the environment as one string.
func splitList(items []string) []string {
	out := []string{}
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks the settings every entry point needs.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite", "mongo":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.Media.MaxImageKB <= 0 {
		return errors.New("media.maxImageKB must be positive")
	}
	return nil
}
