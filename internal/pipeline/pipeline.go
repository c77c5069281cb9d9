// Package pipeline wires a complete report run: survey parsing, the
// anonymity gate, chart generation, section orchestration, document assembly
// and rendering.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rodrinoblega/hr-climate-insight/internal/anonymity"
	"github.com/rodrinoblega/hr-climate-insight/internal/charts"
	"github.com/rodrinoblega/hr-climate-insight/internal/llm"
	"github.com/rodrinoblega/hr-climate-insight/internal/model"
	"github.com/rodrinoblega/hr-climate-insight/internal/report"
	"github.com/rodrinoblega/hr-climate-insight/internal/survey"
)

// Pipeline runs surveys through to rendered reports. One pipeline serves any
// number of runs; all per-run state lives in the run itself.
type Pipeline struct {
	provider llm.Provider
	config   *model.Config
	renderer *Renderer
	sections []model.SectionSpec

	beforeCall func(ctx context.Context) error
	progress   func(model.ProgressEvent)
	now        func() time.Time
}

// NewPipeline creates a pipeline over the given generation backend
func NewPipeline(cfg *model.Config, provider llm.Provider) *Pipeline {
	return &Pipeline{
		provider: provider,
		config:   cfg,
		renderer: NewRenderer(cfg.Output.Dir),
		sections: report.DefaultSections(),
		now:      time.Now,
	}
}

// OnProgress registers a sink for per-section completion events
func (p *Pipeline) OnProgress(fn func(model.ProgressEvent)) {
	p.progress = fn
}

// OnBeforeCall registers a hook awaited before each generation call
// (rate limiting)
func (p *Pipeline) OnBeforeCall(fn func(ctx context.Context) error) {
	p.beforeCall = fn
}

// SetSections overrides the built-in report structure
func (p *Pipeline) SetSections(specs []model.SectionSpec) {
	p.sections = specs
}

// RunInput identifies one survey and the client it belongs to
type RunInput struct {
	InputPath string
	Company   string
	Country   string
	City      string
}

// RunResult is the outcome of one report run
type RunResult struct {
	Input    RunInput
	Document model.Document
	Manifest model.Manifest

	// Set by WriteReport
	ReportPath   string
	ManifestPath string
}

// noChartsNote replaces the chart summary when chart generation is disabled
const noChartsNote = "No charts are available for this report. Do not emit chart markers."

// GenerateReport runs the full pipeline for one survey file. The anonymity
// gate sits before everything else: if no segment survives, the run ends
// with InsufficientDataError and zero generation calls.
func (p *Pipeline) GenerateReport(ctx context.Context, in RunInput) (*RunResult, error) {
	ds, err := survey.Load(in.InputPath)
	if err != nil {
		return nil, err
	}

	part, err := anonymity.Filter(survey.Groups(ds), anonymity.MinGroupSize)
	if err != nil {
		return nil, err
	}

	// Downstream components only ever see the sanitized dataset
	sanitized := &model.Dataset{
		Header:       ds.Header,
		Rows:         part.SurvivingRows(),
		SectorColumn: ds.SectorColumn,
	}

	var resolver report.ChartResolver
	available := noChartsNote
	if p.config.Output.IncludeCharts {
		reg, err := charts.Build(sanitized, filepath.Join(p.config.Output.Dir, "charts"))
		if err != nil {
			return nil, fmt.Errorf("generate charts: %w", err)
		}
		// The report is written into the output dir, so embedded links
		// must be relative to it or viewers cannot resolve them
		resolver = relativeResolver{base: p.config.Output.Dir, charts: reg}
		available = reg.PromptSummary()
	}

	csvText, err := survey.RenderCSV(sanitized.Header, sanitized.Rows)
	if err != nil {
		return nil, err
	}

	baseVars := map[string]string{
		"company":          in.Company,
		"country":          in.Country,
		"city":             in.City,
		"date":             p.now().Format("January 2, 2006"),
		"total_responses":  strconv.Itoa(len(sanitized.Rows)),
		"anonymity_note":   part.Note.Note,
		"survey_csv":       csvText,
		"available_charts": available,
	}

	orch := report.NewOrchestrator(p.provider, p.config.Retry)
	orch.SetModel(p.config.LLM.Model)
	if p.progress != nil {
		orch.OnProgress(p.progress)
	}
	if p.beforeCall != nil {
		orch.OnBeforeCall(p.beforeCall)
	}

	results, err := orch.Run(ctx, p.sections, baseVars, report.NewAccumulator())
	if err != nil {
		return nil, err
	}

	doc := report.Assemble(results, resolver)

	return &RunResult{
		Input:    in,
		Document: doc,
		Manifest: model.Manifest{
			Company:     in.Company,
			GeneratedAt: p.now().UTC(),
			Provider:    p.provider.Name(),
			Model:       p.config.LLM.Model,
			Stats:       survey.Stats(ds),
			Anonymity:   part.Note,
			Sections:    results,
			Warnings:    doc.Warnings,
		},
	}, nil
}

// relativeResolver rewrites chart paths relative to the report's directory
// before they are embedded as Markdown image links
type relativeResolver struct {
	base   string
	charts report.ChartResolver
}

func (r relativeResolver) Resolve(keyword string) (string, bool) {
	path, ok := r.charts.Resolve(keyword)
	if !ok {
		return "", false
	}
	rel, err := filepath.Rel(r.base, path)
	if err != nil {
		return path, true
	}
	return filepath.ToSlash(rel), true
}

// WriteReport renders the run result to disk: the Markdown report body and
// the JSON manifest next to it. Paths are recorded on the result.
func (p *Pipeline) WriteReport(res *RunResult) error {
	reportPath, err := p.renderer.WriteMarkdown(res)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	res.ReportPath = reportPath

	manifestPath, err := p.renderer.WriteManifest(res)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	res.ManifestPath = manifestPath

	return nil
}
