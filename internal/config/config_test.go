package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15, cfg.Quiz.GeneratedSize)
	assert.Equal(t, "none", cfg.AI.Provider)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 3, cfg.AI.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.AI.Retry.InitialWait)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AI.OpenRouter.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.Redis.LockTTL)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gameiq.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
db:
  driver: sqlite
  dsn: /tmp/gameiq-test.db
log:
  level: debug
  format: console
ai:
  provider: anthropic
  anthropic:
    api_key: from-file
    model: claude-sonnet
  retry:
    max_attempts: 5
    initial_wait: 250ms
quiz:
  generated_size: 10
`), 0o644))

	t.Setenv("GAMEIQ_AI_ANTHROPIC_API_KEY", "from-env")
	t.Setenv("GAMEIQ_SERVER_ADDR", ":9999")
	t.Setenv("GAMEIQ_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/gameiq-test.db", cfg.DB.DSN)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "anthropic", cfg.AI.Provider)
	assert.Equal(t, "from-env", cfg.AI.Anthropic.APIKey)
	assert.Equal(t, "claude-sonnet", cfg.AI.Anthropic.Model)
	assert.Equal(t, 5, cfg.AI.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.AI.Retry.InitialWait)
	assert.Equal(t, 10, cfg.Quiz.GeneratedSize)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"GAMEIQ_DB_DRIVER": "oracle"}},
		{"mysql without dsn", map[string]string{"GAMEIQ_DB_DRIVER": "mysql"}},
		{"provider without key", map[string]string{"GAMEIQ_AI_PROVIDER": "openai"}},
		{"unknown provider", map[string]string{"GAMEIQ_AI_PROVIDER": "skynet"}},
		{"zero quiz size", map[string]string{"GAMEIQ_QUIZ_GENERATED_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveDB(t *testing.T) {
	t.Setenv("GAMEIQ_DB", filepath.Join(t.TempDir(), "data", "x.db"))
	cfg := &Config{}
	cfg.DB.Driver = "sqlite"

	db, err := cfg.ResolveDB()
	require.NoError(t, err)
	assert.Equal(t, os.Getenv("GAMEIQ_DB"), db.DSN)
	assert.DirExists(t, filepath.Dir(db.DSN))
}
