package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.Coordination.Mode != "" {
		t.Errorf("Coordination.Mode = %q, want empty", cfg.Coordination.Mode)
	}
	if !cfg.Logging.Enabled {
		t.Error("Logging.Enabled should be true by default")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
	if cfg.Logging.MaxSizeMB != 5 {
		t.Errorf("Logging.MaxSizeMB = %d, want 5", cfg.Logging.MaxSizeMB)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() should validate, got %v", errs)
	}
}

// resetViper gives each test a clean global viper with defaults and env bindings.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	BindEnv()
}

func TestLoad_EnvironmentBindings(t *testing.T) {
	t.Run("host environment variables", func(t *testing.T) {
		resetViper(t)
		t.Setenv(EnvModeOverride, "shared")
		t.Setenv(EnvStatePath, "/tmp/custom/state.json")
		t.Setenv(EnvProjectDir, "/work/project")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Coordination.Mode != "shared" {
			t.Errorf("Coordination.Mode = %q, want %q", cfg.Coordination.Mode, "shared")
		}
		if cfg.State.Path != "/tmp/custom/state.json" {
			t.Errorf("State.Path = %q", cfg.State.Path)
		}
		if cfg.State.ProjectDir != "/work/project" {
			t.Errorf("State.ProjectDir = %q", cfg.State.ProjectDir)
		}
	})

	t.Run("prefixed fallback", func(t *testing.T) {
		resetViper(t)
		t.Setenv(EnvPrefix+"_COORDINATION_MODE", "isolated")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Coordination.Mode != "isolated" {
			t.Errorf("Coordination.Mode = %q, want %q", cfg.Coordination.Mode, "isolated")
		}
	})

	t.Run("invalid mode is loaded verbatim", func(t *testing.T) {
		resetViper(t)
		t.Setenv(EnvModeOverride, "chaotic")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() should not reject an unknown mode: %v", err)
		}
		if cfg.Coordination.Mode != "chaotic" {
			t.Errorf("Coordination.Mode = %q, want %q", cfg.Coordination.Mode, "chaotic")
		}
	})
}

func TestGet_FallsBackOnInvalidConfig(t *testing.T) {
	resetViper(t)
	viper.Set("logging.level", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject an invalid log level")
	}
	cfg := Get()
	if cfg.Logging.Level != "warn" {
		t.Errorf("Get() should fall back to defaults, got level %q", cfg.Logging.Level)
	}
}

func TestLoadOrDefault_KeepsRouting(t *testing.T) {
	resetViper(t)
	t.Setenv(EnvModeOverride, "shared")
	t.Setenv(EnvStatePath, "/tmp/state.json")
	viper.Set("logging.level", "verbose")
	viper.Set("logging.max_backups", 9)

	cfg, err := LoadOrDefault()
	if err == nil {
		t.Error("LoadOrDefault() should report the validation error")
	}
	if cfg.Coordination.Mode != "shared" || cfg.State.Path != "/tmp/state.json" {
		t.Errorf("routing settings lost: %+v", cfg)
	}
	if cfg.Logging != Default().Logging {
		t.Errorf("Logging = %+v, want defaults", cfg.Logging)
	}
}

func TestResolveStatePath(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		cwd  string
		want string
	}{
		{
			name: "explicit path wins",
			cfg:  Config{State: StateConfig{Path: "/x/state.json", ProjectDir: "/proj"}},
			cwd:  "/cwd",
			want: "/x/state.json",
		},
		{
			name: "project dir beats cwd",
			cfg:  Config{State: StateConfig{ProjectDir: "/proj"}},
			cwd:  "/cwd",
			want: filepath.Join("/proj", ".claude", "gitbutler", "hooks-state.json"),
		},
		{
			name: "event cwd",
			cwd:  "/cwd",
			want: filepath.Join("/cwd", ".claude", "gitbutler", "hooks-state.json"),
		},
		{
			name: "process working directory",
			want: filepath.Join(wd, ".claude", "gitbutler", "hooks-state.json"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveStatePath(&tt.cfg, tt.cwd)
			if err != nil {
				t.Fatalf("ResolveStatePath() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveStatePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveLogPath(t *testing.T) {
	state := filepath.Join("/proj", ".claude", "gitbutler", "hooks-state.json")
	dir := filepath.Dir(state)

	tests := []struct {
		name string
		file string
		want string
	}{
		{"default next to state", "", filepath.Join(dir, "hooks.log")},
		{"relative to state dir", "logs/debug.log", filepath.Join(dir, "logs", "debug.log")},
		{"absolute", "/var/log/laneguard.log", "/var/log/laneguard.log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Logging.File = tt.file
			if got := ResolveLogPath(cfg, state); got != tt.want {
				t.Errorf("ResolveLogPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	cfg.Logging.MaxSizeMB = -1
	cfg.Logging.MaxBackups = -2

	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Fatalf("Validate() returned %d errors, want 3: %v", len(errs), errs)
	}
	msg := ValidationErrors(errs).Error()
	for _, field := range []string{"logging.level", "logging.max_size_mb", "logging.max_backups"} {
		if !strings.Contains(msg, field) {
			t.Errorf("error message missing %q:\n%s", field, msg)
		}
	}

	cfg.Logging.Level = "DEBUG"
	cfg.Logging.MaxSizeMB = 0
	cfg.Logging.MaxBackups = 0
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("upper-case level should be accepted, got %v", errs)
	}

	cfg.Logging.Level = "warning"
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("warning alias should be accepted, got %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ConfigDir(); got != filepath.Join("/xdg", "laneguard") {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigFile(); got != filepath.Join("/xdg", "laneguard", "config.yaml") {
		t.Errorf("ConfigFile() = %q", got)
	}
}
