package config

import (
	"os"
	"path/filepath"

	"github.com/Iron-Ham/laneguard/internal/errors"
	"github.com/spf13/viper"
)

// Environment variables read by the hook. The first two are the host-facing
// contract; everything else may also be set as LANEGUARD_<SECTION>_<KEY>.
const (
	EnvModeOverride = "GITBUTLER_COORDINATION_MODE"
	EnvStatePath    = "GITBUTLER_HOOK_STATE_PATH"
	EnvProjectDir   = "CLAUDE_PROJECT_DIR"
	EnvPrefix       = "LANEGUARD"
)

// StateRelPath is where the state file lives under the project directory.
var StateRelPath = filepath.Join(".claude", "gitbutler", "hooks-state.json")

// DefaultLogFileName is the hook log written next to the state file.
const DefaultLogFileName = "hooks.log"

// Config represents the complete laneguard configuration
type Config struct {
	Coordination CoordinationConfig `mapstructure:"coordination" yaml:"coordination"`
	State        StateConfig        `mapstructure:"state" yaml:"state"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// CoordinationConfig controls lane routing
type CoordinationConfig struct {
	// Mode is the per-invocation override: "shared" or "isolated".
	// Any other value, including empty, is ignored and the session's stored
	// mode (or the default, isolated) applies.
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// StateConfig controls where coordination state is persisted
type StateConfig struct {
	// Path is an explicit state file path. When empty the path is derived
	// from ProjectDir, the event's cwd, or the process working directory.
	Path string `mapstructure:"path" yaml:"path"`
	// ProjectDir is the project root the host runs in.
	ProjectDir string `mapstructure:"project_dir" yaml:"project_dir"`
}

// LoggingConfig controls the hook's debug log. Logs never go to stdout,
// which carries the hook decision.
type LoggingConfig struct {
	// Enabled controls whether the hook writes a log file (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "warn")
	Level string `mapstructure:"level" yaml:"level"`
	// File overrides the log path. Relative paths resolve against the state
	// file's directory. Empty means hooks.log next to the state file.
	File string `mapstructure:"file" yaml:"file"`
	// MaxSizeMB is the log size that triggers rotation (default: 5, 0 disables)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated logs to keep (default: 2)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Coordination: CoordinationConfig{
			Mode: "", // No override: sticky session mode, else isolated
		},
		State: StateConfig{
			Path:       "",
			ProjectDir: "",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "warn",
			File:       "",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("coordination.mode", defaults.Coordination.Mode)

	viper.SetDefault("state.path", defaults.State.Path)
	viper.SetDefault("state.project_dir", defaults.State.ProjectDir)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// BindEnv maps the host-facing environment variables onto config keys. The
// legacy names are checked before the LANEGUARD_-prefixed ones.
func BindEnv() {
	_ = viper.BindEnv("coordination.mode", EnvModeOverride, EnvPrefix+"_COORDINATION_MODE")
	_ = viper.BindEnv("state.path", EnvStatePath, EnvPrefix+"_STATE_PATH")
	_ = viper.BindEnv("state.project_dir", EnvProjectDir, EnvPrefix+"_STATE_PROJECT_DIR")
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// LoadOrDefault is Load for callers that must keep running. When the
// configuration does not validate, the routing settings are kept and the
// logging section falls back to its defaults; the validation error is still
// returned for reporting.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}

	fallback := Default()
	fallback.Coordination.Mode = viper.GetString("coordination.mode")
	fallback.State.Path = viper.GetString("state.path")
	fallback.State.ProjectDir = viper.GetString("state.project_dir")
	return fallback, err
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ResolveStatePath returns the state file location. An explicit
// state.path wins; otherwise the path is StateRelPath under the project
// directory, the event's cwd, or the process working directory, in that order.
func ResolveStatePath(cfg *Config, cwd string) (string, error) {
	if cfg.State.Path != "" {
		return cfg.State.Path, nil
	}

	base := cfg.State.ProjectDir
	if base == "" {
		base = cwd
	}
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.NewStateError("resolve", "", errors.ErrStatePath).WithCause(err)
		}
		base = wd
	}
	return filepath.Join(base, StateRelPath), nil
}

// ResolveLogPath returns where the hook log is written for a state file.
func ResolveLogPath(cfg *Config, statePath string) string {
	dir := filepath.Dir(statePath)
	switch {
	case cfg.Logging.File == "":
		return filepath.Join(dir, DefaultLogFileName)
	case filepath.IsAbs(cfg.Logging.File):
		return cfg.Logging.File
	default:
		return filepath.Join(dir, cfg.Logging.File)
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "laneguard")
	}
	// Fall back to ~/.config/laneguard
	home, err := os.UserHomeDir()
	if err != nil {
		return ".laneguard"
	}
	return filepath.Join(home, ".config", "laneguard")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
