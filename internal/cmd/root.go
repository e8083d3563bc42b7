// Package cmd implements the laneguard command line.
package cmd

import (
	"strings"

	"github.com/Iron-Ham/laneguard/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "laneguard",
	Short: "Lane coordination and git guardrails for agent hooks",
	Long: `laneguard is invoked by the agent host on every lifecycle hook. It keeps
a persisted map of sessions and sub-agents to GitButler work lanes and blocks
raw git write commands in favor of the "but" CLI.

Wire "laneguard hook" into the host's hook configuration; use "status" and
"logs" to inspect what the hook has recorded.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/laneguard/config.yaml)")
	rootCmd.PersistentFlags().String("state", "", "state file path (overrides "+config.EnvStatePath+")")
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()
	bindFlags()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/laneguard")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	// e.g., LANEGUARD_LOGGING_LEVEL for logging.level
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.BindEnv()

	// A missing config file is fine.
	_ = viper.ReadInConfig()
}

// bindFlags attaches flags to config keys. It runs on every initialization
// so a reset viper picks the bindings up again.
func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("state.path", rootCmd.PersistentFlags().Lookup("state"))
	_ = viper.BindPFlag("coordination.mode", hookCmd.Flags().Lookup("mode"))
}
