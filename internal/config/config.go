// Package config provides configuration management for tidyframe operations
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for table operations
type Config struct {
	// Row-wise mapping
	ParallelMap       bool `json:"parallel_map" yaml:"parallel_map" toml:"parallel_map"`                   // Run row-wise functions on the worker pool
	ParallelThreshold int  `json:"parallel_threshold" yaml:"parallel_threshold" toml:"parallel_threshold"` // Minimum rows before the worker pool is used
	WorkerPoolSize    int  `json:"worker_pool_size" yaml:"worker_pool_size" toml:"worker_pool_size"`       // Number of worker goroutines (0 = auto-detect)

	// Verb defaults
	NestColumn    string   `json:"nest_column" yaml:"nest_column" toml:"nest_column"`             // Column that receives nested tables
	JoinSuffixes  []string `json:"join_suffixes" yaml:"join_suffixes" toml:"join_suffixes"`       // Suffixes for clashing non-key join columns
	PivotNamesSep string   `json:"pivot_names_sep" yaml:"pivot_names_sep" toml:"pivot_names_sep"` // Separator between names_prefix and value

	// Display
	DisplayMaxRows int `json:"display_max_rows" yaml:"display_max_rows" toml:"display_max_rows"` // Rows printed before truncation
	FloatPrecision int `json:"float_precision" yaml:"float_precision" toml:"float_precision"`    // Digits after the decimal point when printing floats

	// Debugging
	VerboseLogging    bool `json:"verbose_logging" yaml:"verbose_logging" toml:"verbose_logging"`          // Log every pipeline step at debug level
	MetricsCollection bool `json:"metrics_collection" yaml:"metrics_collection" toml:"metrics_collection"` // Record per-verb timings
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultParallelThreshold = 1000
	DefaultNestColumn        = "data"
	DefaultPivotNamesSep     = ""
	DefaultDisplayMaxRows    = 10
	DefaultFloatPrecision    = 4
)

// DefaultJoinSuffixes are appended to clashing non-key columns in joins.
var DefaultJoinSuffixes = []string{".x", ".y"}

// Initialize global configuration with defaults
func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		ParallelMap:       false,
		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect

		NestColumn:    DefaultNestColumn,
		JoinSuffixes:  append([]string(nil), DefaultJoinSuffixes...),
		PivotNamesSep: DefaultPivotNamesSep,

		DisplayMaxRows: DefaultDisplayMaxRows,
		FloatPrecision: DefaultFloatPrecision,

		VerboseLogging:    false,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.ParallelThreshold <= 0 {
		return fmt.Errorf("ParallelThreshold must be positive, got %d", c.ParallelThreshold)
	}

	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize must be non-negative, got %d", c.WorkerPoolSize)
	}

	if c.NestColumn == "" {
		return fmt.Errorf("NestColumn must not be empty")
	}

	if len(c.JoinSuffixes) != 2 || c.JoinSuffixes[0] == c.JoinSuffixes[1] {
		return fmt.Errorf("JoinSuffixes must hold two distinct suffixes, got %q", c.JoinSuffixes)
	}

	if c.DisplayMaxRows <= 0 {
		return fmt.Errorf("DisplayMaxRows must be positive, got %d", c.DisplayMaxRows)
	}

	if c.FloatPrecision < 0 {
		return fmt.Errorf("FloatPrecision must be non-negative, got %d", c.FloatPrecision)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = defaults.ParallelThreshold
	}
	if c.NestColumn == "" {
		c.NestColumn = defaults.NestColumn
	}
	if len(c.JoinSuffixes) == 0 {
		c.JoinSuffixes = defaults.JoinSuffixes
	}
	if c.DisplayMaxRows == 0 {
		c.DisplayMaxRows = defaults.DisplayMaxRows
	}
	if c.FloatPrecision == 0 {
		c.FloatPrecision = defaults.FloatPrecision
	}

	// Boolean fields are left as given so an explicit false is kept.
	return c
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON, YAML, TOML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	case ".toml":
		err = toml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from TIDYFRAME_* environment variables
// on top of the defaults. Unparseable values are ignored.
func LoadFromEnv() Config {
	config := NewConfig()

	envInt("TIDYFRAME_PARALLEL_THRESHOLD", &config.ParallelThreshold)
	envInt("TIDYFRAME_WORKER_POOL_SIZE", &config.WorkerPoolSize)
	envInt("TIDYFRAME_DISPLAY_MAX_ROWS", &config.DisplayMaxRows)
	envInt("TIDYFRAME_FLOAT_PRECISION", &config.FloatPrecision)
	envBool("TIDYFRAME_PARALLEL_MAP", &config.ParallelMap)
	envBool("TIDYFRAME_VERBOSE_LOGGING", &config.VerboseLogging)
	envBool("TIDYFRAME_METRICS_COLLECTION", &config.MetricsCollection)

	if val := os.Getenv("TIDYFRAME_NEST_COLUMN"); val != "" {
		config.NestColumn = val
	}
	if val := os.Getenv("TIDYFRAME_PIVOT_NAMES_SEP"); val != "" {
		config.PivotNamesSep = val
	}
	if val := os.Getenv("TIDYFRAME_JOIN_SUFFIXES"); val != "" {
		if parts := strings.Split(val, ","); len(parts) == 2 {
			config.JoinSuffixes = parts
		}
	}

	return config
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dst = parsed
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			*dst = parsed
		}
	}
}
