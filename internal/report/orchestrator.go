package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rodrinoblega/hr-climate-insight/internal/llm"
	"github.com/rodrinoblega/hr-climate-insight/internal/model"
)

// Orchestrator drives the ordered section specs through the generation
// backend, injecting accumulated context and collecting results in order.
// Sections run strictly sequentially: later prompts causally depend on
// earlier output, and a fixed order keeps the report reproducible.
type Orchestrator struct {
	provider llm.Provider
	retry    model.RetryConfig
	model    string

	// progress, when set, receives one event per completed section
	progress func(model.ProgressEvent)

	// wait, when set, is awaited before every generation attempt
	// (rate limiting)
	wait func(ctx context.Context) error

	// sleep is swappable for tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewOrchestrator creates an orchestrator for one or more runs against the
// same backend and retry policy
func NewOrchestrator(provider llm.Provider, retry model.RetryConfig) *Orchestrator {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &Orchestrator{
		provider: provider,
		retry:    retry,
		sleep:    sleepCtx,
	}
}

// SetModel sets the model name attached to every generation request. When
// empty, the backend falls back to its configured default.
func (o *Orchestrator) SetModel(name string) {
	o.model = name
}

// OnProgress registers the progress sink
func (o *Orchestrator) OnProgress(fn func(model.ProgressEvent)) {
	o.progress = fn
}

// OnBeforeCall registers a hook awaited before each generation attempt
func (o *Orchestrator) OnBeforeCall(fn func(ctx context.Context) error) {
	o.wait = fn
}

// Run generates every section in position order and records each result in
// the accumulator. Validation failures abort before the first generation
// call; generation failures degrade the affected section and the run
// continues. The returned slice is in generation order.
func (o *Orchestrator) Run(ctx context.Context, specs []model.SectionSpec, baseVars map[string]string, acc *Accumulator) ([]model.SectionResult, error) {
	ordered := SortByPosition(specs)
	if err := ValidateOrder(ordered); err != nil {
		return nil, err
	}

	var results []model.SectionResult
	for _, spec := range ordered {
		// Cancellation point: runs abort between sections, never mid-call
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run aborted before section %q: %w", spec.ID, err)
		}

		vars := resolveVars(spec, baseVars, acc)
		prompt, err := RenderTemplate(spec.Template, vars)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", spec.ID, err)
		}

		start := time.Now()
		res, err := o.generateSection(ctx, spec, prompt)
		if err != nil {
			return nil, err
		}
		res.GeneratedAt = time.Now().UTC()

		if err := acc.Record(*res); err != nil {
			return nil, err
		}
		results = append(results, *res)

		if o.progress != nil {
			o.progress(model.ProgressEvent{
				SectionID: spec.ID,
				Name:      spec.Name,
				Position:  spec.Position,
				WordCount: res.WordCount,
				Attempts:  res.Attempts,
				Elapsed:   time.Since(start),
				Degraded:  res.BelowTarget,
				Failed:    res.Failed,
			})
		}
	}

	return results, nil
}

// generateSection runs the bounded attempt loop for one section. Transient
// failures and short drafts retry with backoff; a policy rejection or an
// exhausted budget yields a degraded result rather than a run failure.
func (o *Orchestrator) generateSection(ctx context.Context, spec model.SectionSpec, prompt string) (*model.SectionResult, error) {
	res := &model.SectionResult{ID: spec.ID, Name: spec.Name}

	var best string
	bestWords := -1
	attempt := 0
	current := prompt

	for attempt < o.retry.MaxAttempts {
		attempt++
		res.Attempts = attempt

		if o.wait != nil {
			if err := o.wait(ctx); err != nil {
				return nil, fmt.Errorf("section %q: %w", spec.ID, err)
			}
		}

		resp, err := o.provider.Generate(ctx, llm.GenerateRequest{
			System: SystemPrompt,
			Prompt: current,
			Model:  o.model,
		})
		switch {
		case err == nil:
			// Fall through to word-count validation

		case llm.IsPolicy(err):
			res.Failed = true
			res.Text = failedPlaceholder(spec, err)
			res.WordCount = 0
			return res, nil

		case llm.IsTransient(err):
			if attempt >= o.retry.MaxAttempts {
				if bestWords >= 0 {
					// A short earlier draft beats nothing
					break
				}
				res.Failed = true
				res.Text = failedPlaceholder(spec, err)
				res.WordCount = 0
				return res, nil
			}
			if err := o.backoff(ctx, attempt); err != nil {
				return nil, fmt.Errorf("section %q: %w", spec.ID, err)
			}
			continue

		default:
			// Misconfiguration (bad credentials, unknown model) or caller
			// cancellation: retrying other sections cannot help
			return nil, fmt.Errorf("section %q: %w", spec.ID, err)
		}

		if err == nil {
			words := countWords(resp.Text)
			if words >= spec.MinWords {
				res.Text = resp.Text
				res.WordCount = words
				return res, nil
			}
			if words > bestWords {
				best = resp.Text
				bestWords = words
			}
			if attempt < o.retry.MaxAttempts {
				current = prompt + ExpandInstruction
				if err := o.backoff(ctx, attempt); err != nil {
					return nil, fmt.Errorf("section %q: %w", spec.ID, err)
				}
				continue
			}
		}
		break
	}

	// Budget exhausted: accept the best draft, flagged
	res.Text = best
	res.WordCount = bestWords
	res.BelowTarget = true
	return res, nil
}

// resolveVars merges the base variables with the section's context
// variables resolved from prior results
func resolveVars(spec model.SectionSpec, base map[string]string, acc *Accumulator) map[string]string {
	vars := make(map[string]string, len(base)+len(spec.ContextVars))
	for k, v := range base {
		vars[k] = v
	}
	for name, kind := range spec.ContextVars {
		switch kind {
		case model.ContextRaw:
			vars[name] = acc.Raw(spec.Requires)
		case model.ContextDigest:
			vars[name] = acc.Digest(spec.Requires)
		}
	}
	return vars
}

func (o *Orchestrator) backoff(ctx context.Context, attempt int) error {
	if o.retry.Backoff <= 0 {
		return nil
	}
	return o.sleep(ctx, time.Duration(attempt)*o.retry.Backoff)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func failedPlaceholder(spec model.SectionSpec, err error) string {
	return fmt.Sprintf("## %s\n\n*This section could not be generated (%v). It requires manual completion before the report is delivered.*", spec.Name, err)
}
