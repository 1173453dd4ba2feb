package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"jslice/internal/paths"
)

// CurrentVersion is the only config schema version this build reads
const CurrentVersion = 1

// EnvPrefix is the prefix of environment overrides, e.g. JSLICE_ORACLE_TIMEOUT
const EnvPrefix = "JSLICE"

// Config represents the jslice configuration stored in .jslice/config.json
type Config struct {
	Version   int             `json:"version" mapstructure:"version"`
	Parse     ParseConfig     `json:"parse" mapstructure:"parse"`
	Enumerate EnumerateConfig `json:"enumerate" mapstructure:"enumerate"`
	Oracle    OracleConfig    `json:"oracle" mapstructure:"oracle"`
	Output    OutputConfig    `json:"output" mapstructure:"output"`
	Journal   JournalConfig   `json:"journal" mapstructure:"journal"`
	Telemetry TelemetryConfig `json:"telemetry" mapstructure:"telemetry"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
	Watch     WatchConfig     `json:"watch" mapstructure:"watch"`
}

// ParseConfig controls source discovery and parsing
type ParseConfig struct {
	Workers      int      `json:"workers" mapstructure:"workers"`
	MaxFileBytes int64    `json:"maxFileBytes" mapstructure:"maxFileBytes"`
	Exclude      []string `json:"exclude" mapstructure:"exclude"`
}

// EnumerateConfig controls ambiguity resolution
type EnumerateConfig struct {
	Policy          string `json:"policy" mapstructure:"policy"`
	MaxCombinations int    `json:"maxCombinations" mapstructure:"maxCombinations"`
}

// OracleConfig controls the type-correction loop
type OracleConfig struct {
	Enabled       bool     `json:"enabled" mapstructure:"enabled"`
	Javac         string   `json:"javac" mapstructure:"javac"`
	Timeout       string   `json:"timeout" mapstructure:"timeout"`
	MaxIterations int      `json:"maxIterations" mapstructure:"maxIterations"`
	ExtraArgs     []string `json:"extraArgs" mapstructure:"extraArgs"`
}

// OutputConfig controls where and how the slice is written
type OutputConfig struct {
	Dir       string `json:"dir" mapstructure:"dir"`
	Overwrite bool   `json:"overwrite" mapstructure:"overwrite"`
	Manifest  bool   `json:"manifest" mapstructure:"manifest"`
}

// JournalConfig controls the sqlite run journal
type JournalConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// KeepRuns bounds the number of journaled runs, 0 keeps all
	KeepRuns int `json:"keepRuns" mapstructure:"keepRuns"`
}

// TelemetryConfig controls tracing and the metrics textfile
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled"`
	MetricsFile string `json:"metricsFile" mapstructure:"metricsFile"`
}

// LoggingConfig controls log level and the optional log file
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// WatchConfig controls watch mode
type WatchConfig struct {
	Debounce string `json:"debounce" mapstructure:"debounce"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Parse: ParseConfig{
			Workers:      4,
			MaxFileBytes: 2 * 1024 * 1024,
			Exclude:      []string{},
		},
		Enumerate: EnumerateConfig{
			Policy:          "best-effort",
			MaxCombinations: 64,
		},
		Oracle: OracleConfig{
			Enabled:       true,
			Javac:         "javac",
			Timeout:       "60s",
			MaxIterations: 20,
			ExtraArgs:     []string{},
		},
		Output: OutputConfig{
			Dir:       "slice-out",
			Overwrite: true,
			Manifest:  true,
		},
		Journal: JournalConfig{
			Enabled:  true,
			KeepRuns: 200,
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxBackups: 3,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
	}
}

// LoadConfig loads configuration from <root>/.jslice/config.json.
// A missing file yields the defaults; JSLICE_* environment variables
// override both.
func LoadConfig(root string) (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(paths.DataDir(root))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return unmarshal(v)
}

// LoadConfigFromPath loads configuration from an explicit file.
func LoadConfigFromPath(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("parse.workers", d.Parse.Workers)
	v.SetDefault("parse.maxFileBytes", d.Parse.MaxFileBytes)
	v.SetDefault("parse.exclude", d.Parse.Exclude)
	v.SetDefault("enumerate.policy", d.Enumerate.Policy)
	v.SetDefault("enumerate.maxCombinations", d.Enumerate.MaxCombinations)
	v.SetDefault("oracle.enabled", d.Oracle.Enabled)
	v.SetDefault("oracle.javac", d.Oracle.Javac)
	v.SetDefault("oracle.timeout", d.Oracle.Timeout)
	v.SetDefault("oracle.maxIterations", d.Oracle.MaxIterations)
	v.SetDefault("oracle.extraArgs", d.Oracle.ExtraArgs)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.overwrite", d.Output.Overwrite)
	v.SetDefault("output.manifest", d.Output.Manifest)
	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.keepRuns", d.Journal.KeepRuns)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.metricsFile", d.Telemetry.MetricsFile)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.jslice/config.json
func (c *Config) Save(root string) error {
	if _, err := paths.EnsureDataDir(root); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(paths.ConfigPath(root), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Parse.Workers < 1 {
		return &ConfigError{Field: "parse.workers", Message: "must be at least 1"}
	}
	switch strings.ToLower(c.Enumerate.Policy) {
	case "best-effort", "all", "input-condition":
	default:
		return &ConfigError{Field: "enumerate.policy", Message: "must be best-effort, all or input-condition"}
	}
	if c.Enumerate.MaxCombinations < 1 {
		return &ConfigError{Field: "enumerate.maxCombinations", Message: "must be at least 1"}
	}
	if _, err := time.ParseDuration(c.Oracle.Timeout); err != nil {
		return &ConfigError{Field: "oracle.timeout", Message: err.Error()}
	}
	if c.Oracle.MaxIterations < 1 {
		return &ConfigError{Field: "oracle.maxIterations", Message: "must be at least 1"}
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return &ConfigError{Field: "watch.debounce", Message: err.Error()}
		}
	}
	if c.Output.Dir == "" {
		return &ConfigError{Field: "output.dir", Message: "must not be empty"}
	}
	return nil
}

// OracleTimeout returns the parsed per-invocation checker timeout
func (c *Config) OracleTimeout() time.Duration {
	d, err := time.ParseDuration(c.Oracle.Timeout)
	if err != nil {
		return time.Minute
	}
	return d
}

// WatchDebounce returns the parsed watch debounce interval
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// OutputDir resolves output.dir against root when it is relative
func (c *Config) OutputDir(root string) string {
	if filepath.IsAbs(c.Output.Dir) {
		return c.Output.Dir
	}
	return filepath.Join(root, c.Output.Dir)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
