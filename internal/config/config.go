package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Paths    PathsConfig   `mapstructure:"paths"`
	Run      RunConfig     `mapstructure:"run"`
	Runtime  RuntimeConfig `mapstructure:"runtime"`
}

type PathsConfig struct {
	// DataRoots are searched in order for <root>/<model>/<precision> pairs.
	DataRoots   []string `mapstructure:"data_roots"`
	TopologyExt string   `mapstructure:"topology_ext"`
	WeightsExt  string   `mapstructure:"weights_ext"`
}

type RunConfig struct {
	Seed int64 `mapstructure:"seed"`
	// Targets empty means validate every target the backend reports present.
	Targets []string `mapstructure:"targets"`
	// Models empty means validate the full registry.
	Models  []string `mapstructure:"models"`
	Backend string   `mapstructure:"backend"`
}

type RuntimeConfig struct {
	ORTLibraryPath string `mapstructure:"ort_library_path"`
	ORTAPIVersion  uint32 `mapstructure:"ort_api_version"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Paths: PathsConfig{
			DataRoots:   []string{"models"},
			TopologyExt: ".xml",
			WeightsExt:  ".bin",
		},
		Run: RunConfig{
			Seed:    1,
			Targets: nil,
			Models:  nil,
			Backend: BackendSim,
		},
		Runtime: RuntimeConfig{
			ORTLibraryPath: "",
			ORTAPIVersion:  23,
		},
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringSlice("paths-data-root", defaults.Paths.DataRoots, "Model search root (repeatable)")
	fs.StringSlice("data-root", defaults.Paths.DataRoots, "Model search root (alias for --paths-data-root)")
	fs.String("paths-topology-ext", defaults.Paths.TopologyExt, "Topology file extension")
	fs.String("paths-weights-ext", defaults.Paths.WeightsExt, "Weights file extension")
	fs.Int64("seed", defaults.Run.Seed, "Deterministic stimulus seed")
	fs.StringSlice("targets", defaults.Run.Targets, "Targets to validate (default: every present target)")
	fs.StringSlice("models", defaults.Run.Models, "Models to validate (default: full registry)")
	fs.String("backend", defaults.Run.Backend, "Inference backend (sim|ort)")
	fs.String("runtime-ort-library-path", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library")
	fs.String("ort-lib", defaults.Runtime.ORTLibraryPath, "Path to ONNX Runtime shared library (alias for --runtime-ort-library-path)")
	fs.Uint32("runtime-ort-api-version", defaults.Runtime.ORTAPIVersion, "ONNX Runtime C API version")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}
	registerAliases(v)

	v.SetEnvPrefix("DNNPARITY")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("runtime.ort_library_path", "DNNPARITY_ORT_LIB", "ORT_LIBRARY_PATH"); err != nil {
		return Config{}, fmt.Errorf("bind ort env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("dnnparity")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("paths.data_roots", c.Paths.DataRoots)
	v.SetDefault("paths.topology_ext", c.Paths.TopologyExt)
	v.SetDefault("paths.weights_ext", c.Paths.WeightsExt)
	v.SetDefault("run.seed", c.Run.Seed)
	v.SetDefault("run.targets", c.Run.Targets)
	v.SetDefault("run.models", c.Run.Models)
	v.SetDefault("run.backend", c.Run.Backend)
	v.SetDefault("runtime.ort_library_path", c.Runtime.ORTLibraryPath)
	v.SetDefault("runtime.ort_api_version", c.Runtime.ORTAPIVersion)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("log_level", "log-level")
	v.RegisterAlias("paths.data_roots", "paths-data-root")
	v.RegisterAlias("paths.data_roots", "data-root")
	v.RegisterAlias("paths.topology_ext", "paths-topology-ext")
	v.RegisterAlias("paths.weights_ext", "paths-weights-ext")
	v.RegisterAlias("run.seed", "seed")
	v.RegisterAlias("run.targets", "targets")
	v.RegisterAlias("run.models", "models")
	v.RegisterAlias("run.backend", "backend")
	v.RegisterAlias("runtime.ort_library_path", "runtime-ort-library-path")
	v.RegisterAlias("runtime.ort_library_path", "ort-lib")
	v.RegisterAlias("runtime.ort_api_version", "runtime-ort-api-version")
}

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}
