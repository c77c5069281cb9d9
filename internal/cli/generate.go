package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rodrinoblega/hr-climate-insight/internal/anonymity"
	"github.com/rodrinoblega/hr-climate-insight/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	company     string
	country     string
	city        string
	outputDir   string
	runTimeout  time.Duration
	noCharts    bool
	noCache     bool
	llmProvider string
	llmModel    string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <survey.csv>",
	Short: "Generate a climate report from one survey export",
	Long: `Generate runs the full analysis for a single survey:
- Parse the CSV export and detect the segmentation column
- Apply the anonymity gate (segments with n < 5 are excluded)
- Render bar charts for the measurable questions
- Write the report section by section with the LLM backend
- Assemble the final Markdown report plus a JSON run manifest

Example:
  climate-insight generate survey.csv --company "Acme S.A."
  climate-insight generate survey.csv --company Acme --country Argentina --city Rosario
  climate-insight generate survey.csv --company Acme --llm-provider ollama --llm-model llama3`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addRunFlags(generateCmd)
	generateCmd.Flags().StringVar(&company, "company", "", "client company name (required)")
	generateCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall run timeout")

	_ = generateCmd.MarkFlagRequired("company")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	surveyPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := applyLLMEnv(cfg); err != nil {
		return err
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Survey:   %s\n", surveyPath)
		fmt.Fprintf(os.Stderr, "Backend:  %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Cache:    %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := newPipeline(cfg, provider)

	res, err := p.GenerateReport(ctx, pipeline.RunInput{
		InputPath: surveyPath,
		Company:   company,
		Country:   country,
		City:      city,
	})
	if err != nil {
		var insufficient *anonymity.InsufficientDataError
		if errors.As(err, &insufficient) {
			return fmt.Errorf("%w\n\nCollect more responses before generating a report; no data was sent to the LLM backend", err)
		}
		return fmt.Errorf("generate report: %w", err)
	}

	if err := p.WriteReport(res); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprint(os.Stderr, pipeline.Summary(res))

	return nil
}
