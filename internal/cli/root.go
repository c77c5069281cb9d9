// Package cli implements the climate-insight command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "climate-insight",
	Short: "Climate Insight - organizational climate survey analysis",
	Long: `Climate Insight turns raw employee climate surveys into complete
consulting-grade reports.

It parses a survey export (CSV, one row per respondent), applies a strict
anonymity gate (segments with fewer than 5 responses are excluded and the
exclusion is disclosed), generates charts for the measurable questions, and
writes the analysis section by section with an LLM backend, each section
building on the previous ones.

The anonymity threshold is a fixed policy constant. It cannot be changed by
flag, environment variable or config file.`,
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
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("climate-insight v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.climate-insight/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.climate-insight")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	bindEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindEnv wires CLIMATE_* environment variables (CLIMATE_LLM_MODEL sets
// llm.model, and so on) and registers every config key with its default.
// AutomaticEnv only surfaces keys viper knows about, so the defaults double
// as the key registry; they must stay in sync with model.DefaultConfig.
func bindEnv() {
	viper.SetEnvPrefix("CLIMATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.timeout", 120)
	viper.SetDefault("llm.max_tokens", 4000)
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("retry.max_attempts", 3)
	viper.SetDefault("retry.backoff", "2s")
	viper.SetDefault("rate.requests_per_second", 0.5)
	viper.SetDefault("rate.burst", 2)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("output.dir", "output")
	viper.SetDefault("output.include_charts", true)
}
