package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 100, cfg.Server.MaxUploadMB)
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, 256, cfg.Jobs.QueueSize)
	assert.Equal(t, 3*time.Minute, cfg.Jobs.TaskTimeout)
	assert.Equal(t, time.Hour, cfg.Jobs.Retention)
	assert.Equal(t, "claude-3-5-sonnet-20241022", cfg.Vision.Model)
	assert.Equal(t, 2000, cfg.Vision.MaxTokens)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("JOB_WORKERS", "8")
	t.Setenv("TASK_TIMEOUT", "90s")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg := LoadConfig()
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Jobs.Workers)
	assert.Equal(t, 90*time.Second, cfg.Jobs.TaskTimeout)
	assert.Equal(t, "sk-test", cfg.Vision.APIKey)
}

func TestLoadConfig_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("JOB_WORKERS", "many")
	t.Setenv("TASK_TIMEOUT", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, 3*time.Minute, cfg.Jobs.TaskTimeout)
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	cfg.Vision.APIKey = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)

	cfg = LoadConfig()
	cfg.Jobs.Workers = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidInput)
}
