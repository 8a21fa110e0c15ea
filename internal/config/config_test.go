package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskManager/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: "9090"
  request_timeout: 5s
  cors_origins: ["http://localhost:3000"]
repository:
  type: sqlite
sqlite:
  path: /tmp/tasks.db
auth:
  jwt_secret: file-secret
  token_ttl: 30m
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddr())
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, config.RepositorySQLite, cfg.Repository.Type)
	assert.Equal(t, "/tmp/tasks.db", cfg.SQLite.Path)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)

	// defaults
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int32(10), cfg.Database.MaxConnections)
	assert.Equal(t, "task-manager", cfg.Auth.Issuer)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
repository:
  type: inmemory
auth:
  jwt_secret: file-secret
`)
	t.Setenv("TASKS_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("TASKS_SERVER_PORT", "7070")
	t.Setenv("TASKS_AUTH_TOKEN_TTL", "2h")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Server:     config.ServerConfig{Port: "8080"},
			Repository: config.RepositoryConfig{Type: config.RepositoryInMemory},
			Auth:       config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{name: "valid inmemory", mutate: func(c *config.Config) {}},
		{
			name:    "unknown repository",
			mutate:  func(c *config.Config) { c.Repository.Type = "mongo" },
			wantErr: true,
		},
		{
			name:    "postgres without url",
			mutate:  func(c *config.Config) { c.Repository.Type = config.RepositoryPostgres },
			wantErr: true,
		},
		{
			name: "postgres with url",
			mutate: func(c *config.Config) {
				c.Repository.Type = config.RepositoryPostgres
				c.Database.URL = "postgres://u:p@localhost:5432/tasks"
			},
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *config.Config) { c.Repository.Type = config.RepositorySQLite },
			wantErr: true,
		},
		{
			name:    "missing secret",
			mutate:  func(c *config.Config) { c.Auth.JWTSecret = "" },
			wantErr: true,
		},
		{
			name:    "tracing without endpoint",
			mutate:  func(c *config.Config) { c.Tracing.Enabled = true },
			wantErr: true,
		},
		{
			name:    "non positive ttl",
			mutate:  func(c *config.Config) { c.Auth.TokenTTL = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
