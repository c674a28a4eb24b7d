package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNodeConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *NodeConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 15
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: flagdb
  sslmode: require
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_STREAM"
  subject_prefix: "test"
  max_reconnects: 5
  reconnect_wait: "5s"
auth:
  api_keys:
    - key-one
    - key-two
contract:
  admin_address: "0x00000000000000000000000000000000000000AD"
  contract_address: "0x00000000000000000000000000000000000000CC"
  base_uri: "https://meta.example.com/tokens/"
  genesis_path: "config/genesis.json"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *NodeConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 15, cfg.Server.ReadTimeout)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "flagdb", cfg.Database.DBName)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "TEST_STREAM", cfg.NATS.StreamName)
				assert.Equal(t, "test", cfg.NATS.SubjectPrefix)
				assert.Equal(t, []string{"key-one", "key-two"}, cfg.Auth.APIKeys)
				assert.Equal(t, "0x00000000000000000000000000000000000000AD", cfg.Contract.AdminAddress)
				assert.Equal(t, "https://meta.example.com/tokens/", cfg.Contract.BaseURI)
				assert.Equal(t, "config/genesis.json", cfg.Contract.GenesisPath)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: flagdb
nats:
  url: "nats://localhost:4222"
contract:
  admin_address: "0x00000000000000000000000000000000000000AD"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *NodeConfig) {
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "FLAG_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, "flags", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, "flagnode", cfg.NATS.ConnectionName)
			},
		},
		{
			name:        "missing config file",
			configFile:  "",
			expectError: false,
			validate: func(t *testing.T, cfg *NodeConfig) {
				assert.Equal(t, 8080, cfg.Server.Port)
			},
		},
		{
			name: "invalid yaml",
			configFile: `
server:
  port: not-a-number
`,
			expectError: true,
			validate:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			var configFile string

			if tt.configFile != "" {
				configFile = filepath.Join(tmpDir, "config.yaml")
				err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
				require.NoError(t, err)
			} else {
				configFile = filepath.Join(tmpDir, "nonexistent.yaml")
			}

			cfg, err := LoadNodeConfig(configFile, tmpDir)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else if tt.validate != nil {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				tt.validate(t, cfg)
			}
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	t.Setenv("FLAGNODE_DATABASE_HOST", "env-host")
	t.Setenv("FLAGNODE_DATABASE_PASSWORD", "env-pass")
	t.Setenv("FLAGNODE_SERVER_PORT", "9999")
	t.Setenv("FLAGNODE_CONTRACT_ADMIN_ADDRESS", "0x00000000000000000000000000000000000000AD")

	cfg, err := LoadNodeConfig(filepath.Join(tmpDir, "nonexistent.yaml"), tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, "env-pass", cfg.Database.Password)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "0x00000000000000000000000000000000000000AD", cfg.Contract.AdminAddress)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "flag",
		Password: "secret",
		DBName:   "flagnode",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=flag password=secret dbname=flagnode sslmode=require",
		cfg.DSN())
}
