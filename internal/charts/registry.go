package charts

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rodrinoblega/hr-climate-insight/internal/model"
)

// MaxCharts bounds how many chart artifacts one run produces. The prompt
// summary advertises the same set, so every keyword the model can emit has
// an artifact behind it.
const MaxCharts = 10

// Chart is one rendered artifact
type Chart struct {
	Keyword  string
	Question Question
	Path     string
}

// Registry maps lowercase keywords to rendered chart artifacts. Built once
// before generation, read-only afterwards.
type Registry struct {
	order  []string
	charts map[string]Chart
}

// Build detects chartable questions, renders up to MaxCharts of them as SVG
// files under dir, and returns the keyword registry. A question whose keyword
// collides with an earlier one is skipped; the first mapping wins.
func Build(ds *model.Dataset, dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chart directory: %w", err)
	}

	reg := &Registry{charts: make(map[string]Chart)}
	for _, q := range Detect(ds) {
		if len(reg.order) >= MaxCharts {
			break
		}
		keyword := Keyword(q.Column)
		if _, taken := reg.charts[keyword]; taken {
			continue
		}

		sum := md5.Sum([]byte(q.Column))
		path := filepath.Join(dir, fmt.Sprintf("chart_%x.svg", sum[:4]))
		if err := os.WriteFile(path, []byte(RenderSVG(q)), 0o644); err != nil {
			return nil, fmt.Errorf("writing chart for %q: %w", q.Column, err)
		}

		reg.charts[keyword] = Chart{Keyword: keyword, Question: q, Path: path}
		reg.order = append(reg.order, keyword)
	}
	return reg, nil
}

// Resolve looks up a marker keyword, case-insensitively
func (r *Registry) Resolve(keyword string) (string, bool) {
	c, ok := r.charts[strings.ToLower(strings.TrimSpace(keyword))]
	if !ok {
		return "", false
	}
	return c.Path, true
}

// Len returns the number of registered charts
func (r *Registry) Len() int {
	return len(r.order)
}

// Charts returns the registered charts in detection order
func (r *Registry) Charts() []Chart {
	out := make([]Chart, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.charts[k])
	}
	return out
}

// PromptSummary describes the available chart keywords for the section
// prompts, with enough distribution detail that the model can discuss the
// chart it places
func (r *Registry) PromptSummary() string {
	if len(r.order) == 0 {
		return "No chartable questions were detected in this survey. Do not emit chart markers."
	}

	var b strings.Builder
	b.WriteString("Use the [CHART: keyword] marker to insert charts. Available keywords:\n")
	for _, k := range r.order {
		c := r.charts[k]
		fmt.Fprintf(&b, "\n- [CHART: %s] -> %s\n", c.Keyword, title(c.Question.Column))
		if c.Question.Kind == KindNumeric {
			fmt.Fprintf(&b, "  Average: %.2f\n", c.Question.Mean)
		} else {
			fmt.Fprintf(&b, "  Distribution: %s\n", c.Question.Distribution())
		}
	}
	return b.String()
}
