// Package commands implements the CLI commands for tablegrab.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/tablegrab/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tablegrab",
	Short: "Extract the first HTML table of a page into structured formats",
	Long: `Tablegrab fetches a web page, finds its first <table> and writes it as
JSON, CSV, XML, TOML, YAML or MessagePack.

Examples:
  # Save the first table of a page as output.json
  tablegrab convert -u "https://example.com/stats"

  # CSV to stdout from a local file
  tablegrab convert -i page.html -f csv -o -

  # Render JavaScript first, keep the cleaned page as output.html
  tablegrab convert -u "https://example.com/app" --fetch-mode dynamic \
      -f xml --save-html`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.tablegrab.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".tablegrab")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("TABLEGRAB")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// initLogger configures logging from the resolved global flags.
func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config file loaded", "path", used)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
