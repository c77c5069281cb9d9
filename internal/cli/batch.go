package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rodrinoblega/hr-climate-insight/internal/pipeline"
	"github.com/rodrinoblega/hr-climate-insight/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file>",
	Short: "Generate reports for multiple surveys in parallel",
	Long: `Batch processes several survey files concurrently. Each line of the
list file names one survey:

  survey.csv[,company[,country[,city]]]

Runs are independent, so they parallelize across workers; the sections
within each report are still generated strictly in order. The shared
provider rate limit applies across all workers.

Example:
  climate-insight batch surveys.txt
  climate-insight batch surveys.txt --concurrency 4 --country Argentina
  climate-insight batch surveys.txt --llm-provider ollama --llm-model llama3`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addRunFlags(batchCmd)
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent report runs")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 2*time.Hour, "total timeout for the whole batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	listFile := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
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

	fmt.Fprintf(os.Stderr, "Batch:    %s\n", listFile)
	fmt.Fprintf(os.Stderr, "Workers:  %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Backend:  %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "Output:   %s\n", cfg.Output.Dir)
	fmt.Fprintln(os.Stderr)

	p := newPipeline(cfg, provider)

	processor := worker.NewBatchProcessor(p, concurrency)
	results, err := processor.ProcessFile(ctx, listFile, pipeline.RunInput{
		Country: country,
		City:    city,
	})
	if err != nil {
		return err
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Input.InputPath, result.Error)
			continue
		}

		if err := p.WriteReport(result.Run); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Input.InputPath, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s -> %s\n", result.Input.Company, result.Run.ReportPath)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Batch complete: %d total, %d succeeded, %d failed\n",
		len(results), successCount, failureCount)

	if failureCount > 0 {
		return fmt.Errorf("%d of %d reports failed", failureCount, len(results))
	}
	return nil
}
