package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/laneguard/internal/config"
	"github.com/Iron-Ham/laneguard/internal/policy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View laneguard configuration",
	Long: `Display the effective configuration after defaults, the config file,
environment variables, and flags have been applied, together with the state
and log paths the hook would use from the current directory.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/laneguard/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// effectiveConfig is what `config show` prints.
type effectiveConfig struct {
	ConfigFile string         `yaml:"config_file"`
	Resolved   resolvedPaths  `yaml:"resolved"`
	Config     *config.Config `yaml:"config"`
	Policy     policyView     `yaml:"policy"`
	Problems   []string       `yaml:"problems,omitempty"`
}

// policyView shows the fixed command gate; it is not configurable.
type policyView struct {
	DeniedGitSubcommands []string `yaml:"denied_git_subcommands"`
}

type resolvedPaths struct {
	StatePath string `yaml:"state_path"`
	LogPath   string `yaml:"log_path"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, loadErr := config.LoadOrDefault()

	view := effectiveConfig{
		ConfigFile: viper.ConfigFileUsed(),
		Config:     cfg,
		Policy:     policyView{DeniedGitSubcommands: policy.Subcommands()},
	}
	if view.ConfigFile == "" {
		view.ConfigFile = "(none - using defaults)"
	}
	if loadErr != nil {
		view.Problems = append(view.Problems, loadErr.Error())
	}

	if statePath, err := config.ResolveStatePath(cfg, ""); err != nil {
		view.Problems = append(view.Problems, err.Error())
	} else {
		view.Resolved = resolvedPaths{
			StatePath: statePath,
			LogPath:   config.ResolveLogPath(cfg, statePath),
		}
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	return enc.Close()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintln(cmd.OutOrStdout(), used)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile())
	return nil
}

const defaultConfigYAML = `# laneguard configuration

coordination:
  # Per-invocation mode override: shared or isolated.
  # Leave empty to keep each session's recorded mode (new sessions: isolated).
  # GITBUTLER_COORDINATION_MODE and "laneguard hook --mode" take precedence.
  mode: ""

state:
  # Explicit state file path. GITBUTLER_HOOK_STATE_PATH takes precedence.
  # Empty: <project>/.claude/gitbutler/hooks-state.json
  path: ""

logging:
  # Write hooks.log next to the state file
  enabled: true

  # Minimum level: debug, info, warn, error
  level: warn

  # Rotate at this size in MB (0 disables rotation)
  max_size_mb: 5

  # Rotated files to keep
  max_backups: 2
`
