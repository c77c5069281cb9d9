package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rodrinoblega/hr-climate-insight/internal/model"
	"github.com/rodrinoblega/hr-climate-insight/internal/pipeline"
)

// mockRunner implements Runner
type mockRunner struct {
	shouldError bool
	calls       int32
}

func (m *mockRunner) GenerateReport(ctx context.Context, in pipeline.RunInput) (*pipeline.RunResult, error) {
	atomic.AddInt32(&m.calls, 1)
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.shouldError {
		return nil, errors.New("run error")
	}
	return &pipeline.RunResult{
		Input:    in,
		Manifest: model.Manifest{Company: in.Company},
	}, nil
}

func batchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessInputs(t *testing.T) {
	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 2)

	inputs := []pipeline.RunInput{
		{InputPath: "a.csv", Company: "A"},
		{InputPath: "b.csv", Company: "B"},
		{InputPath: "c.csv", Company: "C"},
	}

	results := processor.ProcessInputs(context.Background(), inputs)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Input.InputPath, res.Error)
		}
		if res.Run == nil || res.Run.Manifest.Company != res.Input.Company {
			t.Errorf("result not linked to its input: %+v", res)
		}
	}
	if got := atomic.LoadInt32(&runner.calls); got != 3 {
		t.Errorf("runner calls = %d, want 3", got)
	}
}

func TestBatchProcessor_ProcessInputs_Error(t *testing.T) {
	runner := &mockRunner{shouldError: true}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessInputs(context.Background(), []pipeline.RunInput{
		{InputPath: "a.csv", Company: "A"},
	})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Run != nil {
		t.Error("expected nil run result on error")
	}
	if results[0].GetError() == nil {
		t.Error("GetError() should surface the run error")
	}
}

func TestBatchProcessor_CancelledContextStopsRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessInputs(ctx, []pipeline.RunInput{
		{InputPath: "a.csv", Company: "A"},
		{InputPath: "b.csv", Company: "B"},
	})

	if got := atomic.LoadInt32(&runner.calls); got != 0 {
		t.Errorf("runner calls = %d, want 0 after cancellation", got)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results under a cancelled context, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessInputs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{}, 2)

	results := processor.ProcessInputs(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadInputsFromFile(t *testing.T) {
	path := batchFile(t, `surveys/acme.csv,Acme,Argentina,Buenos Aires
# comment
surveys/other.csv,Other Corp

surveys/bare.csv
`)

	inputs, err := ReadInputsFromFile(path, pipeline.RunInput{Country: "Uruguay"})
	if err != nil {
		t.Fatalf("ReadInputsFromFile failed: %v", err)
	}

	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(inputs))
	}

	first := inputs[0]
	if first.Company != "Acme" || first.Country != "Argentina" || first.City != "Buenos Aires" {
		t.Errorf("first input = %+v", first)
	}

	// Omitted country falls back to the defaults
	if inputs[1].Company != "Other Corp" || inputs[1].Country != "Uruguay" {
		t.Errorf("second input = %+v", inputs[1])
	}

	// Bare path: company from the file name
	if inputs[2].Company != "bare" {
		t.Errorf("third input company = %q, want bare", inputs[2].Company)
	}
}

func TestReadInputsFromFile_Deduplication(t *testing.T) {
	path := batchFile(t, "a.csv,One\na.csv,Two\n")

	inputs, err := ReadInputsFromFile(path, pipeline.RunInput{})
	if err != nil {
		t.Fatalf("ReadInputsFromFile failed: %v", err)
	}
	if len(inputs) != 1 {
		t.Fatalf("expected 1 input after deduplication, got %d", len(inputs))
	}
	if inputs[0].Company != "One" {
		t.Errorf("first entry should win, got %q", inputs[0].Company)
	}
}

func TestReadInputsFromFile_NonExistent(t *testing.T) {
	_, err := ReadInputsFromFile("no_such_file.txt", pipeline.RunInput{})
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := batchFile(t, "a.csv,A\nb.csv,B\n# skip\n\nc.csv,C\n")

	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 2)

	results, err := processor.ProcessFile(context.Background(), path, pipeline.RunInput{})
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	path := batchFile(t, "")

	processor := NewBatchProcessor(&mockRunner{}, 2)
	results, err := processor.ProcessFile(context.Background(), path, pipeline.RunInput{})
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty file, got %d", len(results))
	}
}
