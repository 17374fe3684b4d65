package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "loctool",
	Short: "Multi-model game localization tool",
	Long: `A CLI tool that localizes in-game text strings into multiple target
languages through an LLM completion endpoint, using per-asset screenshot
context and a canonical character-name lexicon to keep proper names
consistent across languages.

Use "loctool localize --help" for processing options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .loctool.yaml in . or $HOME)")
}

// initConfig loads the optional config file and binds environment
// variables. The OpenRouter key keeps its historical variable name.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".loctool")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("LOCTOOL")
	viper.AutomaticEnv()
	_ = viper.BindEnv("api_key", "OPENROUTER_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
