package studiopipe

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/studiopipe/studiopipe/internal/domain"
)

// Config carries the connection and workspace settings for a Client or
// Worker. Zero values fall back to local-development defaults.
type Config struct {
	// HostPort is the Temporal frontend address.
	HostPort string `json:"host_port" yaml:"host_port"`

	// Namespace scopes all workflows started by this client.
	Namespace string `json:"namespace" yaml:"namespace"`

	// TaskQueue is the queue workflows are started on and workers poll.
	TaskQueue string `json:"task_queue" yaml:"task_queue"`

	// DataDir, when set, enables the local result archive.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		HostPort:  "localhost:7233",
		Namespace: "default",
		TaskQueue: "studiopipe",
		Logger:    slog.Default(),
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.HostPort == "" {
		c.HostPort = def.HostPort
	}
	if c.Namespace == "" {
		c.Namespace = def.Namespace
	}
	if c.TaskQueue == "" {
		c.TaskQueue = def.TaskQueue
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
}

func (c Config) Validate() error {
	if c.HostPort == "" {
		return fmt.Errorf("%w: host_port must not be empty", domain.ErrInvalidConfig)
	}
	if c.TaskQueue == "" {
		return fmt.Errorf("%w: task_queue must not be empty", domain.ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a YAML config file. Fields absent from the file keep their
// defaults when the result is passed to New.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}
