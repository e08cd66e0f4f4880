package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/reindexer/internal/db"
)

// DefaultPIDFile is the singleton-run lock path used when pid_file is not set.
const DefaultPIDFile = "/var/run/reindexer/reindexer.pid"

// Config holds the reindexer configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Catalog CatalogConfig `yaml:"catalog"`
	Run     RunConfig     `yaml:"run"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
	PIDFile string        `yaml:"pid_file"`

	// Flat option names of the legacy JSON config, folded into the nested keys by ApplyDefaults.
	ElasticHosts HostList `yaml:"ELASTIC_HOSTS"`
	LogFile      string   `yaml:"LOG_FILE"`
	LogLevel     string   `yaml:"LOG_LEVEL"`
	LegacyPID    string   `yaml:"PID_FILE"`
}

// HostList accepts either a list of hosts or one comma-separated string.
type HostList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HostList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var raw string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		var hosts []string
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				hosts = append(hosts, v)
			}
		}
		*h = hosts
		return nil
	}
	var hosts []string
	if err := node.Decode(&hosts); err != nil {
		return err
	}
	*h = hosts
	return nil
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn(ing), error, critical (default: warn)
	File  string `yaml:"file"`  // empty = stderr
}

// SearchConfig holds search backend connection settings.
type SearchConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Hosts            []string `yaml:"hosts"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Index            string   `yaml:"index"`
	KeyPrefix        string   `yaml:"key_prefix"`
	TimeoutSec       int      `yaml:"timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CatalogConfig holds relational catalog settings.
type CatalogConfig struct {
	Driver        string `yaml:"driver"` // postgres, sqlite (default: postgres)
	DSN           string `yaml:"dsn"`
	ResourceTable string `yaml:"resource_table"`
	RelationTable string `yaml:"relation_table"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
}

// RunConfig holds failure-handling switches.
type RunConfig struct {
	SkipFailed      bool `yaml:"skip_failed"`
	StrictRelations bool `yaml:"strict_relations"`
}

// MetricsConfig holds Pushgateway settings. Metrics are pushed only when PushgatewayURL is set.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
	Job            string `yaml:"job"`
}

// Load reads configuration from a YAML (or JSON) file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if len(c.Search.Hosts) == 0 && len(c.ElasticHosts) > 0 {
		c.Search.Hosts = []string(c.ElasticHosts)
	}
	if c.Logging.File == "" {
		c.Logging.File = c.LogFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = c.LogLevel
	}
	if c.PIDFile == "" {
		c.PIDFile = c.LegacyPID
	}
	if c.Search.Driver == "" {
		c.Search.Driver = "valkey"
	}
	if c.Search.Index == "" {
		c.Search.Index = "resource_v3"
	}
	if c.Search.KeyPrefix == "" {
		c.Search.KeyPrefix = c.Search.Index + ":"
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 10
	}
	if c.Search.ReadinessTimeout <= 0 {
		c.Search.ReadinessTimeout = 10
	}
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = "postgres"
	}
	if c.Catalog.ResourceTable == "" {
		c.Catalog.ResourceTable = "resource_v3_resourcev3"
	}
	if c.Catalog.RelationTable == "" {
		c.Catalog.RelationTable = "resource_v3_resourcev3relation"
	}
	if c.Catalog.MaxOpenConns <= 0 {
		c.Catalog.MaxOpenConns = 4
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "reindexer"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	if c.PIDFile == "" {
		c.PIDFile = DefaultPIDFile
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if len(c.Search.Hosts) == 0 {
		return fmt.Errorf("search.hosts (or ELASTIC_HOSTS) is required")
	}
	for i, h := range c.Search.Hosts {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("search.hosts[%d] is empty", i)
		}
	}
	if !db.IsValidIdentifier(c.Search.Index) {
		return fmt.Errorf("search.index %q must contain only letters, digits, '_', ':' or '-'", c.Search.Index)
	}
	if !db.IsValidIdentifier(c.Search.KeyPrefix) {
		return fmt.Errorf("search.key_prefix %q must contain only letters, digits, '_', ':' or '-'", c.Search.KeyPrefix)
	}
	switch c.Search.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("search.driver must be \"valkey\" or \"redis\", got %q", c.Search.Driver)
	}
	if c.Catalog.DSN == "" {
		return fmt.Errorf("catalog.dsn is required")
	}
	switch c.Catalog.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("catalog.driver must be \"postgres\" or \"sqlite\", got %q", c.Catalog.Driver)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
