package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: file-secret
messaging:
  require_connection: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.True(t, cfg.Messaging.RequireConnection)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 256, cfg.Messaging.StreamBuffer)
	assert.Equal(t, "http://localhost:9090", cfg.BaseURL())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: file-secret
database:
  driver: postgres
`)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("MESSAGING_STREAM_BUFFER", "16")
	t.Setenv("SERVER_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 16, cfg.Messaging.StreamBuffer)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestLoadConfig_MissingFileUsesEnvOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", "only-env")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "only-env", cfg.JWT.Secret)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "server:\n  port: \"8080\"\n"},
		{"bad access expiration", "jwt:\n  secret: s\n  access_token_expiration: soon\n"},
		{"unknown driver", "jwt:\n  secret: s\ndatabase:\n  driver: mysql\n"},
		{"zero stream buffer", "jwt:\n  secret: s\nmessaging:\n  stream_buffer: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_InvalidEnvValue(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
