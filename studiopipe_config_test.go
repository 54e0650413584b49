package studiopipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiopipe/studiopipe/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:7233", cfg.HostPort)
	assert.Equal(t, "default", cfg.Namespace)
	assert.Equal(t, "studiopipe", cfg.TaskQueue)
	assert.NotNil(t, cfg.Logger)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ApplyDefaultsFillsGaps(t *testing.T) {
	cfg := Config{HostPort: "temporal.prod:7233"}
	cfg.applyDefaults()

	assert.Equal(t, "temporal.prod:7233", cfg.HostPort)
	assert.Equal(t, "default", cfg.Namespace)
	assert.Equal(t, "studiopipe", cfg.TaskQueue)
	assert.NotNil(t, cfg.Logger)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"host_port: temporal.staging:7233\n"+
			"namespace: video\n"+
			"task_queue: pipelines\n"+
			"data_dir: /var/lib/studiopipe\n",
	), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "temporal.staging:7233", cfg.HostPort)
	assert.Equal(t, "video", cfg.Namespace)
	assert.Equal(t, "pipelines", cfg.TaskQueue)
	assert.Equal(t, "/var/lib/studiopipe", cfg.DataDir)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host_port: [not, a, string"), 0o600))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
