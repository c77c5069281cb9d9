// Package report implements the section-chunked generation pipeline: the
// context accumulator, the section orchestrator, and the document assembler.
package report

import (
	"fmt"
	"strings"

	"github.com/rodrinoblega/hr-climate-insight/internal/model"
)

// DuplicateSectionError signals that a section result was recorded twice.
// This is a pipeline invariant violation, not a runtime condition: sections
// are generated exactly once per run.
type DuplicateSectionError struct {
	ID string
}

func (e *DuplicateSectionError) Error() string {
	return fmt.Sprintf("section %q already recorded", e.ID)
}

// maxDigestLines bounds the size of derived summaries so later prompts stay
// within budget regardless of how much prior text was generated
const maxDigestLines = 60

// Accumulator tracks the outputs already produced during one run and
// computes derived summaries for later sections. Append-only: results are
// never edited or removed. One accumulator per run; never shared or reused.
type Accumulator struct {
	order   []string
	results map[string]model.SectionResult
}

// NewAccumulator creates an empty accumulator for a single run
func NewAccumulator() *Accumulator {
	return &Accumulator{
		results: make(map[string]model.SectionResult),
	}
}

// Record appends a completed section result. Re-recording an identifier
// returns DuplicateSectionError and leaves prior state unchanged.
func (a *Accumulator) Record(result model.SectionResult) error {
	if _, exists := a.results[result.ID]; exists {
		return &DuplicateSectionError{ID: result.ID}
	}
	a.results[result.ID] = result
	a.order = append(a.order, result.ID)
	return nil
}

// Get returns a recorded result by identifier
func (a *Accumulator) Get(id string) (model.SectionResult, bool) {
	r, ok := a.results[id]
	return r, ok
}

// Results returns all recorded results in generation order
func (a *Accumulator) Results() []model.SectionResult {
	out := make([]model.SectionResult, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.results[id])
	}
	return out
}

// Len returns the number of recorded sections
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Raw returns the concatenated text of the named sections, in the order
// given. Unknown identifiers are skipped.
func (a *Accumulator) Raw(ids []string) string {
	var parts []string
	for _, id := range ids {
		if r, ok := a.results[id]; ok && r.Text != "" {
			parts = append(parts, r.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Digest computes a bounded textual summary of the named sections: their
// Markdown headings and risk-level lines. Deterministic for a fixed set of
// recorded results (no clock, no randomness), so a rerun over the same
// section outputs derives the same context.
func (a *Accumulator) Digest(ids []string) string {
	var lines []string
	for _, id := range ids {
		r, ok := a.results[id]
		if !ok {
			continue
		}
		for _, line := range strings.Split(r.Text, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if isHeading(trimmed) || isRiskLine(trimmed) {
				lines = append(lines, trimmed)
			}
			if len(lines) >= maxDigestLines {
				return strings.Join(lines, "\n")
			}
		}
	}
	if len(lines) == 0 {
		return "(no prior sections summarized)"
	}
	return strings.Join(lines, "\n")
}

func isHeading(line string) bool {
	return strings.HasPrefix(line, "#")
}

// riskMarkers identify the per-dimension risk classification lines the
// section templates ask the model to emit
var riskMarkers = []string{"🟢", "🟡", "🔴", "**Risk level:**", "**Nivel de riesgo:**"}

func isRiskLine(line string) bool {
	for _, m := range riskMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}
