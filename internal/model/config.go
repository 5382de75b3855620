package model

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultKernelURL is the generic planetary constants kernel used when no
// source is given
const DefaultKernelURL = "https://naif.jpl.nasa.gov/pub/naif/generic_kernels/pck/pck00011.tpc"

// DefaultKernelSHA256 is the known digest of DefaultKernelURL
const DefaultKernelSHA256 = "3dff7b1dbeceaa01f25467767d3fa25816051c85d162d1edf04acb310ee28bb1"

// Config holds all settings of the planets tool
type Config struct {
	Kernel       KernelConfig       `yaml:"kernel" mapstructure:"kernel"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// KernelConfig selects the default kernel and how it is parsed
type KernelConfig struct {
	Source      string `yaml:"source" mapstructure:"source"`             // Path or URL
	SHA256      string `yaml:"sha256,omitempty" mapstructure:"sha256"`   // Expected digest of a downloaded kernel (optional)
	Mode        string `yaml:"mode" mapstructure:"mode"`                 // pattern or toggle
	Grammar     string `yaml:"grammar" mapstructure:"grammar"`           // lines or pvl
	BeginMarker string `yaml:"begin_marker" mapstructure:"begin_marker"` // Opens a data segment
	EndMarker   string `yaml:"end_marker" mapstructure:"end_marker"`     // Closes a data segment
}

// HTTPConfig configures kernel downloads
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// CacheConfig configures the downloaded-kernel cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"` // 0 keeps entries forever
}

// ConcurrencyConfig bounds batch parsing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles downloads per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`                       // none, normal or debug
	Format      string `yaml:"format" mapstructure:"format"`                     // console or json
	Destination string `yaml:"destination,omitempty" mapstructure:"destination"` // Optional log file
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // json, yaml or text
	Units   bool   `yaml:"units" mapstructure:"units"`   // Attach units before rendering
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Kernel: KernelConfig{
			Source:      DefaultKernelURL,
			SHA256:      DefaultKernelSHA256,
			Mode:        "pattern",
			Grammar:     "lines",
			BeginMarker: `\begindata`,
			EndMarker:   `\begintext`,
		},
		HTTP: HTTPConfig{
			Timeout:       time.Minute,
			UserAgent:     "planets/0.9 (+https://github.com/ppiankov/planets)",
			MaxBodyBytes:  16 << 20,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   0,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Logging: LoggingConfig{
			Level:  "normal",
			Format: "console",
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "planets")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "planets-cache")
	}
	return filepath.Join(home, ".planets", "cache")
}
