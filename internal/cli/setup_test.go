package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runFlagsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd)
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := loadConfig(runFlagsCmd())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM defaults = %s/%s", cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.Backoff != 2*time.Second {
		t.Errorf("retry defaults = %+v", cfg.Retry)
	}
	if !cfg.Cache.Enabled || !cfg.Output.IncludeCharts {
		t.Errorf("cache/charts should default on: %+v %+v", cfg.Cache, cfg.Output)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	file := `llm:
  model: file-model
output:
  dir: from-file
`
	if err := viper.ReadConfig(strings.NewReader(file)); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	cfg, err := loadConfig(runFlagsCmd())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.LLM.Model != "file-model" {
		t.Errorf("LLM.Model = %q, want file-model", cfg.LLM.Model)
	}
	if cfg.Output.Dir != "from-file" {
		t.Errorf("Output.Dir = %q, want from-file", cfg.Output.Dir)
	}
	// Keys the file omits keep their defaults
	if cfg.LLM.Provider != "openai" {
		t.Errorf("LLM.Provider = %q, want openai", cfg.LLM.Provider)
	}
}

func TestLoadConfig_FlagBeatsFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(strings.NewReader("llm:\n  model: file-model\n")); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	cmd := runFlagsCmd()
	if err := cmd.Flags().Set("llm-model", "flag-model"); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.LLM.Model != "flag-model" {
		t.Errorf("LLM.Model = %q, want flag-model", cfg.LLM.Model)
	}
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("CLIMATE_LLM_MODEL", "env-model")

	bindEnv()

	cfg, err := loadConfig(runFlagsCmd())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.LLM.Model != "env-model" {
		t.Errorf("LLM.Model = %q, want env-model", cfg.LLM.Model)
	}
}

func TestLoadConfig_APIKeyNeverFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(strings.NewReader("llm:\n  api_key: leaked\n")); err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	cfg, err := loadConfig(runFlagsCmd())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.LLM.APIKey != "" {
		t.Errorf("API key populated from config file: %q", cfg.LLM.APIKey)
	}
}
