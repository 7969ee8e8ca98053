// Package config implements layered configuration loading in the style of
// the backend it is descended from: a YAML base file, environment-variable
// overrides, and sane defaults applied last, exposed through a
// once-initialized singleton for callers that do not thread a Config
// explicitly.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is the root configuration object for a roguevm process, whether it
// is running the full worker mesh (`run`) or a read-only inspector.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Session    SessionConfig    `yaml:"session"`
	Simulation SimulationConfig `yaml:"simulation"`
	Prover     ProverConfig     `yaml:"prover"`
	Database   DatabaseConfig   `yaml:"database"`
	PubSub     PubSubConfig     `yaml:"pubsub"`
	CloudTasks CloudTasksConfig `yaml:"cloud_tasks"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig configures the optional --http inspector surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SessionConfig governs where session artifacts are written.
type SessionConfig struct {
	BaseDir             string `yaml:"base_dir"`
	CheckpointEveryN    uint64 `yaml:"checkpoint_every_n"`
	BusCapacity         int    `yaml:"bus_capacity"`
	PersistenceFsync    bool   `yaml:"persistence_fsync"`
	PersistenceMaxRetry int    `yaml:"persistence_max_retry"`
}

// SimulationConfig governs deterministic-pipeline defaults.
type SimulationConfig struct {
	Seed             uint64 `yaml:"seed"`
	ActivationRadius int32  `yaml:"activation_radius"`
	HookChainMaxDep  int    `yaml:"hook_chain_max_depth"`
}

// ProverConfig selects and tunes the zk backend.
type ProverConfig struct {
	Backend       string `yaml:"backend"` // "docker" | "noop"
	DockerImage   string `yaml:"docker_image"`
	PollInterval  int    `yaml:"poll_interval_ms"`
	MaxRetries    int    `yaml:"max_retries"`
	UseCloudTasks bool   `yaml:"use_cloud_tasks"`
}

// DatabaseConfig configures the Postgres-backed batch/checkpoint repository.
type DatabaseConfig struct {
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_sec"`
}

// PubSubConfig configures cross-process batch-ready fanout.
type PubSubConfig struct {
	ProjectID string `yaml:"project_id"`
	TopicID   string `yaml:"topic_id"`
	Enabled   bool   `yaml:"enabled"`
}

// CloudTasksConfig configures out-of-process proof job scheduling.
type CloudTasksConfig struct {
	ProjectID   string `yaml:"project_id"`
	LocationID  string `yaml:"location_id"`
	QueueID     string `yaml:"queue_id"`
	CallbackURL string `yaml:"callback_url"`
	Enabled     bool   `yaml:"enabled"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Addr    string `yaml:"addr"`
	Enabled bool   `yaml:"enabled"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the process-wide singleton Config, loading it on first use
// from CONFIG_PATH (default "config.yaml") and applying environment
// overrides and defaults.
func Get() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg, err := LoadConfig(getEnv("CONFIG_PATH", "config.yaml"))
		if err != nil {
			slog.Warn("config: failed to load config file, using defaults", "error", err)
			cfg = &Config{}
		}
		cfg.applyEnvOverrides()
		cfg.applyDefaults()
		instance = cfg
	})
	return instance
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Addr = getEnv("ROGUEVM_HTTP_ADDR", c.Server.Addr)
	c.Session.BaseDir = getEnv("SAVE_DATA_DIR", c.Session.BaseDir)
	if v := getEnvUint("ROGUEVM_CHECKPOINT_EVERY_N", 0); v > 0 {
		c.Session.CheckpointEveryN = v
	}
	if v := getEnvInt("ROGUEVM_BUS_CAPACITY", 0); v > 0 {
		c.Session.BusCapacity = v
	}
	if v := getEnvUint("ROGUEVM_SEED", 0); v > 0 {
		c.Simulation.Seed = v
	}
	c.Database.DSN = getEnv("ROGUEVM_DATABASE_DSN", c.Database.DSN)
	c.Prover.Backend = getEnv("ROGUEVM_PROVER_BACKEND", c.Prover.Backend)
	c.Prover.DockerImage = getEnv("ROGUEVM_PROVER_IMAGE", c.Prover.DockerImage)
	c.PubSub.ProjectID = getEnv("GCP_PROJECT_ID", c.PubSub.ProjectID)
	c.PubSub.Enabled = getEnvBool("ROGUEVM_PUBSUB_ENABLED", c.PubSub.Enabled)
	c.CloudTasks.ProjectID = getEnv("GCP_PROJECT_ID", c.CloudTasks.ProjectID)
	c.CloudTasks.CallbackURL = getEnv("ROGUEVM_CLOUD_TASKS_CALLBACK_URL", c.CloudTasks.CallbackURL)
	c.CloudTasks.Enabled = getEnvBool("ROGUEVM_CLOUD_TASKS_ENABLED", c.CloudTasks.Enabled)
	c.Metrics.Addr = getEnv("ROGUEVM_METRICS_ADDR", c.Metrics.Addr)
	c.Metrics.Enabled = getEnvBool("ROGUEVM_METRICS_ENABLED", c.Metrics.Enabled)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8089"
	}
	if c.Session.BaseDir == "" {
		c.Session.BaseDir = "./sessions"
	}
	if c.Session.CheckpointEveryN == 0 {
		c.Session.CheckpointEveryN = 10
	}
	if c.Session.BusCapacity == 0 {
		c.Session.BusCapacity = 50000
	}
	if c.Session.PersistenceMaxRetry == 0 {
		c.Session.PersistenceMaxRetry = 5
	}
	if c.Simulation.ActivationRadius == 0 {
		c.Simulation.ActivationRadius = 5
	}
	if c.Simulation.HookChainMaxDep == 0 {
		c.Simulation.HookChainMaxDep = 50
	}
	if c.Prover.Backend == "" {
		c.Prover.Backend = "docker"
	}
	if c.Prover.DockerImage == "" {
		c.Prover.DockerImage = "roguevm/zk-guest:latest"
	}
	if c.Prover.PollInterval == 0 {
		c.Prover.PollInterval = 500
	}
	if c.Prover.MaxRetries == 0 {
		c.Prover.MaxRetries = 3
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.PubSub.TopicID == "" {
		c.PubSub.TopicID = "roguevm-batches"
	}
	if c.CloudTasks.LocationID == "" {
		c.CloudTasks.LocationID = "us-central1"
	}
	if c.CloudTasks.QueueID == "" {
		c.CloudTasks.QueueID = "roguevm-proofs"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9102"
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvUint(key string, defaultVal uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseUint(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
