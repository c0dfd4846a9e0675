package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/chatcal/internal/google"
	"github.com/teemow/chatcal/internal/persist"
)

const sampleConfig = `
google:
  client_id: client-id
  client_secret: client-secret
  refresh_token: refresh-1
  expiry_date: 1704121200000
calendar:
  id: team@example.com
permissions:
  - permission: addEvents
    users: [alice, bob]
  - permission: setupPlugin
    users: [alice]
  - permission: addEvents
    users: [carol]
persistence:
  type: sqlite
  path: /var/lib/chatcal/state.db
transport: mcp
log:
  level: debug
  format: json
instrumentation:
  metrics_addr: ":9191"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, "chatcal.yaml", sampleConfig), nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "client-id", cfg.Google.ClientID)
	assert.Equal(t, google.OOBRedirectURL, cfg.Google.RedirectURL)
	assert.Equal(t, "team@example.com", cfg.Calendar.ID)
	assert.Equal(t, TransportMCP, cfg.Transport)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9191", cfg.Instrumentation.MetricsAddr)
	assert.True(t, cfg.Instrumentation.Enabled)
	assert.Equal(t, "prometheus", cfg.Instrumentation.MetricsExporter)

	assert.Equal(t, map[string][]string{
		"addEvents":   {"alice", "bob", "carol"},
		"setupPlugin": {"alice"},
	}, cfg.PermissionGroups())

	store := cfg.Store()
	assert.Equal(t, persist.TypeSQLite, store.Type)
	assert.Equal(t, "/var/lib/chatcal/state.db", store.Path)
	assert.Equal(t, persist.DefaultValkeyKeyPrefix, store.Valkey.KeyPrefix)

	creds := cfg.Credentials()
	assert.Equal(t, "refresh-1", creds.RefreshToken)
	assert.Empty(t, creds.AccessToken)
	assert.True(t, creds.Expiry.Equal(time.UnixMilli(1704121200000)))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "chatcal.yaml", "google:\n  client_id: id\n  client_secret: s\n"), nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultCalendarID, cfg.Calendar.ID)
	assert.Equal(t, TransportConsole, cfg.Transport)
	assert.Equal(t, persist.TypeFile, cfg.Persistence.Type)
	assert.Equal(t, DefaultStatePath, cfg.Persistence.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.PermissionGroups())
	assert.True(t, cfg.Credentials().Expiry.IsZero())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "chatcal.yaml", sampleConfig)
	t.Setenv("CHATCAL_GOOGLE_CLIENT_SECRET", "from-env")
	t.Setenv("CHATCAL_PERSISTENCE_TYPE", "memory")
	t.Setenv("CHATCAL_CALENDAR_ID", "env@example.com")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Google.ClientSecret)
	assert.Equal(t, persist.TypeMemory, cfg.Persistence.Type)
	assert.Equal(t, "env@example.com", cfg.Calendar.ID)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	path := writeConfig(t, "chatcal.yaml", sampleConfig)
	t.Setenv("CHATCAL_TRANSPORT", "mcp")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("transport", "console", "")
	flags.String("log-level", "info", "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--transport=console"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, TransportConsole, cfg.Transport)
	// Unchanged flags do not hide the file value.
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_NoFileFound(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHATCAL_GOOGLE_CLIENT_ID", "id")
	t.Setenv("CHATCAL_GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "id", cfg.Google.ClientID)
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "chatcal.toml", "transport = \"mcp\"\n\n[google]\nclient_id = \"id\"\nclient_secret = \"secret\"\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, TransportMCP, cfg.Transport)
	assert.Equal(t, "id", cfg.Google.ClientID)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(writeConfig(t, "chatcal.yaml", sampleConfig), nil)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		field   string
		wantErr error
	}{
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.Google.ClientID = "" },
			field:   "google.client_id",
			wantErr: ErrMissingField,
		},
		{
			name:    "missing client secret",
			mutate:  func(c *Config) { c.Google.ClientSecret = "" },
			field:   "google.client_secret",
			wantErr: ErrMissingField,
		},
		{
			name:    "unknown transport",
			mutate:  func(c *Config) { c.Transport = "irc" },
			field:   "transport",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown persistence",
			mutate:  func(c *Config) { c.Persistence.Type = "etcd" },
			field:   "persistence.type",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "file without path",
			mutate:  func(c *Config) { c.Persistence = PersistenceConfig{Type: persist.TypeFile} },
			field:   "persistence.path",
			wantErr: ErrMissingField,
		},
		{
			name:    "valkey without url",
			mutate:  func(c *Config) { c.Persistence.Type = persist.TypeValkey },
			field:   "persistence.valkey.url",
			wantErr: ErrMissingField,
		},
		{
			name:    "unnamed permission",
			mutate:  func(c *Config) { c.Permissions[1].Permission = "" },
			field:   "permissions[1].permission",
			wantErr: ErrMissingField,
		},
		{
			name:    "bad sampling rate",
			mutate:  func(c *Config) { c.Instrumentation.TraceSamplingRate = 2 },
			field:   "instrumentation",
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_MemoryNeedsNoPath(t *testing.T) {
	cfg := &Config{
		Google:      GoogleConfig{ClientID: "id", ClientSecret: "secret"},
		Transport:   TransportConsole,
		Persistence: PersistenceConfig{Type: persist.TypeMemory},
	}
	assert.NoError(t, cfg.Validate())
}
