package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Pool        PoolConfig    `toml:"pool"`
	Bus         BusConfig     `toml:"bus"`
	Agents      AgentsConfig  `toml:"agents"`
	LLM         LLMConfig     `toml:"llm"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port" validate:"gte=0,lte=65535"`
	Enabled bool   `toml:"enabled"`
}

// PoolConfig bounds the agent pool and its maintenance cycle.
type PoolConfig struct {
	MaxActiveAgents int     `toml:"max_active_agents" validate:"gt=0"`
	IdleTimeout     string  `toml:"idle_timeout"`     // e.g. "5m" - eviction threshold for idle agents
	MemoryThreshold float64 `toml:"memory_threshold" validate:"gt=0,lte=1"` // heap fraction triggering reclaim
	MemoryBudgetMB  int     `toml:"memory_budget_mb" validate:"gt=0"`       // denominator for the heap fraction
	LoadTimeout     string  `toml:"load_timeout"`     // upper bound on one agent initialization
	MaintenanceCron string  `toml:"maintenance_cron"` // cron spec for health-check/reclaim sweeps
}

// BusConfig bounds the message bus queues and sweeping.
type BusConfig struct {
	MaxQueueSize   int    `toml:"max_queue_size" validate:"gt=0"`
	MessageTimeout string `toml:"message_timeout"` // expiry age for queued messages
	RetryAttempts  int    `toml:"retry_attempts"`  // pass-through hint for callers; the bus never retries
	SweepInterval  string `toml:"sweep_interval"`  // expiry sweep cadence
}

// AgentsConfig configures the worker skeleton shared by all kinds.
type AgentsConfig struct {
	MaxHistoryLength int    `toml:"max_history_length" validate:"gt=0"`
	PersonasDir      string `toml:"personas_dir"`     // optional YAML persona overrides
	GenerateTimeout  string `toml:"generate_timeout"` // upper bound on one Generate call
}

// LLMConfig selects and configures the text generator backing the agents.
type LLMConfig struct {
	Mode           string       `toml:"mode" validate:"oneof=offline cloud"` // "offline" or "cloud"
	Provider       string       `toml:"provider"`                            // cloud only: "claude" or "gemini"
	RequestsPerMin int          `toml:"requests_per_min"`                    // provider rate limit, 0 = unlimited
	Claude         ClaudeConfig `toml:"claude"`
	Gemini         GeminiConfig `toml:"gemini"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// DefaultConfig returns the built-in defaults, matching the pool and bus
// bounds the system was tuned with.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:    "localhost",
			Port:    8085,
			Enabled: true,
		},
		Pool: PoolConfig{
			MaxActiveAgents: 3,
			IdleTimeout:     "5m",
			MemoryThreshold: 0.8,
			MemoryBudgetMB:  4096,
			LoadTimeout:     "2m",
			MaintenanceCron: "@every 1m",
		},
		Bus: BusConfig{
			MaxQueueSize:   1000,
			MessageTimeout: "30s",
			RetryAttempts:  3,
			SweepInterval:  "500ms",
		},
		Agents: AgentsConfig{
			MaxHistoryLength: 100,
			GenerateTimeout:  "90s",
		},
		LLM: LLMConfig{
			Mode:           "offline",
			Provider:       "claude",
			RequestsPerMin: 60,
			Claude: ClaudeConfig{
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 1024,
				Timeout:   "60s",
			},
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "60s",
			},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/concord",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration with the precedence
// defaults -> file1 -> file2 -> ... -> environment variables.
// Later files override earlier ones; missing files are an error.
func LoadFromFiles(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies CONCORD_* environment variables over the loaded
// configuration. API keys also fall back to the providers' own variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONCORD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CONCORD_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CONCORD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CONCORD_LLM_MODE"); v != "" {
		cfg.LLM.Mode = v
	}
	if v := os.Getenv("CONCORD_CLAUDE_API_KEY"); v != "" {
		cfg.LLM.Claude.APIKey = v
	} else if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.LLM.Claude.APIKey == "" {
		cfg.LLM.Claude.APIKey = v
	}
	if v := os.Getenv("CONCORD_GEMINI_API_KEY"); v != "" {
		cfg.LLM.Gemini.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.Gemini.APIKey == "" {
		cfg.LLM.Gemini.APIKey = v
	}
	if v := os.Getenv("CONCORD_STORAGE_PATH"); v != "" {
		cfg.Storage.Badger.Path = v
	}
}

// Validate checks structural constraints and duration fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	durations := map[string]string{
		"pool.idle_timeout":      c.Pool.IdleTimeout,
		"pool.load_timeout":      c.Pool.LoadTimeout,
		"bus.message_timeout":    c.Bus.MessageTimeout,
		"bus.sweep_interval":     c.Bus.SweepInterval,
		"agents.generate_timeout": c.Agents.GenerateTimeout,
		"llm.claude.timeout":     c.LLM.Claude.Timeout,
		"llm.gemini.timeout":     c.LLM.Gemini.Timeout,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q: %w", key, value, err)
		}
	}
	return nil
}

// MustDuration parses a configured duration string, falling back to the
// given default when empty or malformed. Config validation catches malformed
// values up front; the fallback keeps callers total.
func MustDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
