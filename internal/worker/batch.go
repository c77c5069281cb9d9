package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rodrinoblega/hr-climate-insight/internal/pipeline"
)

// Runner generates one report from one survey file. Implemented by
// pipeline.Pipeline; a test double stands in for it here.
type Runner interface {
	GenerateReport(ctx context.Context, in pipeline.RunInput) (*pipeline.RunResult, error)
}

// ReportJob is one survey file to process
type ReportJob struct {
	Input  pipeline.RunInput
	Runner Runner
}

// Execute runs the report job
func (j *ReportJob) Execute(ctx context.Context) Result {
	run, err := j.Runner.GenerateReport(ctx, j.Input)
	return &ReportResult{
		Input: j.Input,
		Run:   run,
		Error: err,
	}
}

// ReportResult is the outcome of one batch entry
type ReportResult struct {
	Input pipeline.RunInput
	Run   *pipeline.RunResult
	Error error
}

// GetError returns the error from the report result
func (r *ReportResult) GetError() error {
	return r.Error
}

// BatchProcessor runs reports for multiple survey files concurrently.
// Runs are independent of each other, so they may parallelize even though
// the sections within each run stay strictly sequential.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a batch processor over the given runner
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessInputs runs a report for every input concurrently
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []pipeline.RunInput) []*ReportResult {
	if len(inputs) == 0 {
		return []*ReportResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, in := range inputs {
		pool.Submit(&ReportJob{
			Input:  in,
			Runner: b.runner,
		})
	}

	results := pool.Wait()

	reportResults := make([]*ReportResult, len(results))
	for i, result := range results {
		reportResults[i] = result.(*ReportResult)
	}

	return reportResults
}

// ProcessFile reads a batch list file and processes every entry. The
// defaults fill in fields an entry omits.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string, defaults pipeline.RunInput) ([]*ReportResult, error) {
	inputs, err := ReadInputsFromFile(listPath, defaults)
	if err != nil {
		return nil, fmt.Errorf("read batch list: %w", err)
	}

	return b.ProcessInputs(ctx, inputs), nil
}

// ReadInputsFromFile parses a batch list: one entry per line, in the form
//
//	survey.csv[,company[,country[,city]]]
//
// Empty lines and # comments are skipped; duplicate survey paths are
// dropped. A missing company falls back to the defaults, then to the survey
// file's base name.
func ReadInputsFromFile(path string, defaults pipeline.RunInput) ([]pipeline.RunInput, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var inputs []pipeline.RunInput
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		in := parseBatchLine(line, defaults)
		if seen[in.InputPath] {
			continue
		}
		seen[in.InputPath] = true
		inputs = append(inputs, in)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return inputs, nil
}

func parseBatchLine(line string, defaults pipeline.RunInput) pipeline.RunInput {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	in := defaults
	in.InputPath = fields[0]
	if len(fields) > 1 && fields[1] != "" {
		in.Company = fields[1]
	}
	if len(fields) > 2 && fields[2] != "" {
		in.Country = fields[2]
	}
	if len(fields) > 3 && fields[3] != "" {
		in.City = fields[3]
	}

	if in.Company == "" {
		base := filepath.Base(in.InputPath)
		in.Company = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return in
}
