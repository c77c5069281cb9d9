package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Renderer persists run results under the output directory
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer rooted at dir
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// WriteMarkdown writes the report body to report_<company>_<timestamp>.md
// and returns the path
func (r *Renderer) WriteMarkdown(res *RunResult) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(r.dir, r.filename(res, "md"))
	if err := os.WriteFile(path, []byte(res.Document.Body), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteManifest writes the machine-readable run manifest as JSON next to the
// report and returns the path
func (r *Renderer) WriteManifest(res *RunResult) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(res.Manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}

	path := filepath.Join(r.dir, r.filename(res, "json"))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Renderer) filename(res *RunResult, ext string) string {
	return fmt.Sprintf("report_%s_%s.%s",
		slug(res.Manifest.Company),
		res.Manifest.GeneratedAt.Format("20060102_150405"),
		ext)
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// slug normalizes a company name for use in file names
func slug(s string) string {
	out := slugRe.ReplaceAllString(strings.ToLower(s), "_")
	out = strings.Trim(out, "_")
	if out == "" {
		return "report"
	}
	return out
}

// Summary renders the one-screen run summary printed after a report is
// written
func Summary(res *RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Report for %s generated with %s/%s\n",
		res.Manifest.Company, res.Manifest.Provider, res.Manifest.Model)
	fmt.Fprintf(&b, "  Responses: %d of %d included (threshold n >= %d)\n",
		res.Manifest.Anonymity.FilteredCount,
		res.Manifest.Anonymity.OriginalCount,
		res.Manifest.Anonymity.Threshold)

	degraded, failed := 0, 0
	words := 0
	for _, s := range res.Manifest.Sections {
		words += s.WordCount
		if s.BelowTarget {
			degraded++
		}
		if s.Failed {
			failed++
		}
	}
	fmt.Fprintf(&b, "  Sections: %d (%d words total)\n", len(res.Manifest.Sections), words)
	if degraded > 0 {
		fmt.Fprintf(&b, "  Below word target: %d\n", degraded)
	}
	if failed > 0 {
		fmt.Fprintf(&b, "  Failed (placeholder inserted): %d\n", failed)
	}
	if n := len(res.Manifest.Warnings); n > 0 {
		fmt.Fprintf(&b, "  Unresolved chart markers: %d\n", n)
	}
	if res.ReportPath != "" {
		fmt.Fprintf(&b, "  Report: %s\n", res.ReportPath)
	}
	if res.ManifestPath != "" {
		fmt.Fprintf(&b, "  Manifest: %s\n", res.ManifestPath)
	}
	return b.String()
}
