// Package cli implements the planets command line
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/planets/internal/logging"
	"github.com/ppiankov/planets/internal/model"
	"github.com/ppiankov/planets/internal/observability"
	"github.com/ppiankov/planets/internal/pipeline"
)

// version is set at build time with -ldflags "-X .../cli.version=..."
var version = "0.9.0"

var (
	cfgFile  string
	envFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "planets",
	Short: "Planets - planetary constants from SPICE text kernels",
	Long: `Planets reads SPICE planetary constants kernels (PCK/TPC), extracts the
\begindata blocks and turns every KEY = value assignment into typed values.

It resolves NAIF body IDs to names, looks up equatorial, polar and mean
radii by body name, and lists descriptive attributes of common bodies.

Kernels are read from disk or downloaded over HTTP(S) with retry,
checksum verification and a local cache.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of planets.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "planets v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.planets/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading PLANETS_* variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: none, normal or debug")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in the dotenv file, config file and ENV variables
func initConfig() {
	if envFile != "" {
		// a missing .env is normal
		_ = godotenv.Load(envFile)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".planets"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(model.DefaultConfig())

	// PLANETS_KERNEL_SOURCE overrides kernel.source, and so on
	viper.SetEnvPrefix("PLANETS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so that env variables reach Unmarshal
func setDefaults(cfg *model.Config) {
	viper.SetDefault("kernel.source", cfg.Kernel.Source)
	viper.SetDefault("kernel.sha256", cfg.Kernel.SHA256)
	viper.SetDefault("kernel.mode", cfg.Kernel.Mode)
	viper.SetDefault("kernel.grammar", cfg.Kernel.Grammar)
	viper.SetDefault("kernel.begin_marker", cfg.Kernel.BeginMarker)
	viper.SetDefault("kernel.end_marker", cfg.Kernel.EndMarker)

	viper.SetDefault("http.timeout", cfg.HTTP.Timeout)
	viper.SetDefault("http.user_agent", cfg.HTTP.UserAgent)
	viper.SetDefault("http.max_body_bytes", cfg.HTTP.MaxBodyBytes)
	viper.SetDefault("http.http_proxy", cfg.HTTP.HTTPProxy)
	viper.SetDefault("http.https_proxy", cfg.HTTP.HTTPSProxy)
	viper.SetDefault("http.no_proxy", cfg.HTTP.NoProxy)
	viper.SetDefault("http.respect_robots", cfg.HTTP.RespectRobots)

	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	viper.SetDefault("rate_limiting.requests_per_second", cfg.RateLimiting.RequestsPerSecond)
	viper.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)

	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("logging.format", cfg.Logging.Format)
	viper.SetDefault("logging.destination", cfg.Logging.Destination)

	viper.SetDefault("output.format", cfg.Output.Format)
	viper.SetDefault("output.units", cfg.Output.Units)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
}

// loadConfig merges defaults, config file, env and flags into a Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = model.DefaultConfig().Logging.Level
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// env bundles what every command needs
type env struct {
	cfg      *model.Config
	logger   *zap.Logger
	metrics  *observability.ParseCollector
	pipeline *pipeline.Pipeline
}

// setup loads the config, then builds the logger and a pipeline. tweak may
// adjust the config before the pipeline is built.
func setup(tweak func(*model.Config)) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(cfg)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	metrics, err := observability.NewParseCollector(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, metrics: metrics, pipeline: p}, nil
}

// close flushes the logger
func (e *env) close() {
	_ = e.logger.Sync()
}
