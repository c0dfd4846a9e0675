package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/chatcal/internal/google"
	"github.com/teemow/chatcal/internal/instrumentation"
	"github.com/teemow/chatcal/internal/logging"
	"github.com/teemow/chatcal/internal/persist"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "CHATCAL"

// Transport names.
const (
	TransportConsole = "console"
	TransportMCP     = "mcp"
)

// DefaultCalendarID is the calendar used when none is configured.
const DefaultCalendarID = "primary"

// DefaultStatePath is where the file backend keeps tokens by default.
const DefaultStatePath = "chatcal-state.yaml"

// Config holds the application configuration.
type Config struct {
	Google          GoogleConfig           `mapstructure:"google"`
	Calendar        CalendarConfig         `mapstructure:"calendar"`
	Permissions     []PermissionGrant      `mapstructure:"permissions"`
	Persistence     PersistenceConfig      `mapstructure:"persistence"`
	Transport       string                 `mapstructure:"transport"`
	Console         ConsoleConfig          `mapstructure:"console"`
	Log             LogConfig              `mapstructure:"log"`
	Instrumentation instrumentation.Config `mapstructure:"instrumentation"`
}

// GoogleConfig holds the OAuth client and the optional initial tokens.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`

	AccessToken  string `mapstructure:"access_token"`
	TokenType    string `mapstructure:"token_type"`
	RefreshToken string `mapstructure:"refresh_token"`

	// ExpiryDate is the access token expiry in unix milliseconds.
	ExpiryDate int64 `mapstructure:"expiry_date"`
}

// CalendarConfig selects the calendar commands operate on.
type CalendarConfig struct {
	ID string `mapstructure:"id"`
}

// PermissionGrant lists the users holding a permission. Permission names
// are case sensitive, viper map keys are not.
type PermissionGrant struct {
	Permission string   `mapstructure:"permission"`
	Users      []string `mapstructure:"users"`
}

// PersistenceConfig selects and configures the token backend.
type PersistenceConfig struct {
	Type   string       `mapstructure:"type"`
	Path   string       `mapstructure:"path"`
	Valkey ValkeyConfig `mapstructure:"valkey"`
}

// ValkeyConfig configures the valkey backend.
type ValkeyConfig struct {
	URL        string `mapstructure:"url"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	DB         int    `mapstructure:"db"`
}

// ConsoleConfig configures the console transport.
type ConsoleConfig struct {
	// User is the user id the terminal user acts as.
	User string `mapstructure:"user"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FlagKeys maps command-line flag names to configuration keys. Load binds
// every flag of this list found in the flag set.
var FlagKeys = map[string]string{
	"transport":        "transport",
	"calendar-id":      "calendar.id",
	"console-user":     "console.user",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"persistence":      "persistence.type",
	"persistence-path": "persistence.path",
	"metrics-addr":     "instrumentation.metrics_addr",
	"metrics-exporter": "instrumentation.metrics_exporter",
	"tracing-exporter": "instrumentation.tracing_exporter",
	"otlp-endpoint":    "instrumentation.otlp_endpoint",
	"instrumentation":  "instrumentation.enabled",
}

// Load reads the configuration. An empty path searches for chatcal.yaml
// (or .json, .toml) in the working directory and $HOME/.config/chatcal and
// tolerates its absence; an explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("chatcal")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/chatcal")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	inst := instrumentation.DefaultConfig()

	// Keys without a default still need registering so AutomaticEnv
	// picks them up during Unmarshal.
	defaults := map[string]any{
		"google.client_id":     "",
		"google.client_secret": "",
		"google.redirect_url":  google.OOBRedirectURL,
		"google.access_token":  "",
		"google.token_type":    "",
		"google.refresh_token": "",
		"google.expiry_date":   0,

		"calendar.id": DefaultCalendarID,

		"persistence.type":               persist.TypeFile,
		"persistence.path":               DefaultStatePath,
		"persistence.valkey.url":         "",
		"persistence.valkey.password":    "",
		"persistence.valkey.tls_enabled": false,
		"persistence.valkey.key_prefix":  persist.DefaultValkeyKeyPrefix,
		"persistence.valkey.db":          0,

		"transport":    TransportConsole,
		"console.user": "",

		"log.level":  "info",
		"log.format": logging.FormatText,

		"instrumentation.service_name":        inst.ServiceName,
		"instrumentation.service_instance_id": "",
		"instrumentation.enabled":             inst.Enabled,
		"instrumentation.metrics_exporter":    inst.MetricsExporter,
		"instrumentation.tracing_exporter":    inst.TracingExporter,
		"instrumentation.otlp_endpoint":       "",
		"instrumentation.otlp_insecure":       false,
		"instrumentation.trace_sampling_rate": inst.TraceSamplingRate,
		"instrumentation.metrics_addr":        inst.MetricsAddr,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Validate reports the first setting that prevents startup.
func (c *Config) Validate() error {
	if c.Google.ClientID == "" {
		return missing("google.client_id")
	}
	if c.Google.ClientSecret == "" {
		return missing("google.client_secret")
	}

	switch c.Transport {
	case TransportConsole, TransportMCP:
	default:
		return invalid("transport", "%q, must be one of: console, mcp", c.Transport)
	}

	switch c.Persistence.Type {
	case persist.TypeMemory, persist.TypeFile, persist.TypeSQLite:
		if c.Persistence.Type != persist.TypeMemory && c.Persistence.Path == "" {
			return missing("persistence.path")
		}
	case persist.TypeValkey:
		if c.Persistence.Valkey.URL == "" {
			return missing("persistence.valkey.url")
		}
	default:
		return invalid("persistence.type", "%q, must be one of: memory, file, sqlite, valkey", c.Persistence.Type)
	}

	for i, g := range c.Permissions {
		if g.Permission == "" {
			return missing(fmt.Sprintf("permissions[%d].permission", i))
		}
	}

	if err := c.Instrumentation.Validate(); err != nil {
		return &ConfigError{Field: "instrumentation", Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
	}

	return nil
}

// OAuth returns the OAuth client settings.
func (c *Config) OAuth() google.OAuthConfig {
	return google.OAuthConfig{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.Google.RedirectURL,
	}
}

// Credentials returns the configured credential set, before persisted
// tokens are applied.
func (c *Config) Credentials() google.CredentialSet {
	creds := google.CredentialSet{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		AccessToken:  c.Google.AccessToken,
		TokenType:    c.Google.TokenType,
		RefreshToken: c.Google.RefreshToken,
	}
	if c.Google.ExpiryDate > 0 {
		creds.Expiry = time.UnixMilli(c.Google.ExpiryDate)
	}
	return creds
}

// PermissionGroups returns the permission -> users table. Repeated grants
// of one permission are merged.
func (c *Config) PermissionGroups() map[string][]string {
	groups := make(map[string][]string, len(c.Permissions))
	for _, g := range c.Permissions {
		groups[g.Permission] = append(groups[g.Permission], g.Users...)
	}
	return groups
}

// Store returns the persistence backend settings.
func (c *Config) Store() persist.Config {
	return persist.Config{
		Type: c.Persistence.Type,
		Path: c.Persistence.Path,
		Valkey: persist.ValkeyConfig{
			URL:        c.Persistence.Valkey.URL,
			Password:   c.Persistence.Valkey.Password,
			TLSEnabled: c.Persistence.Valkey.TLSEnabled,
			KeyPrefix:  c.Persistence.Valkey.KeyPrefix,
			DB:         c.Persistence.Valkey.DB,
		},
	}
}
