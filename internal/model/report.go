package model

import "time"

// SectionSpec is the static configuration for one report section.
// Specs are supplied at startup and never mutated at runtime.
type SectionSpec struct {
	ID       string `json:"id"`       // Stable identifier (e.g. "executive_summary")
	Name     string `json:"name"`     // Human label for progress output
	Position int    `json:"position"` // 1-based generation order
	MinWords int    `json:"min_words"`

	// Template is the section prompt with {name} placeholders
	Template string `json:"-"`

	// Requires lists the IDs of earlier sections whose output (raw or
	// derived) this section's prompt needs. Every entry must have a
	// strictly smaller Position.
	Requires []string `json:"requires,omitempty"`

	// ContextVars maps template variable names to how they are resolved
	// from prior sections: "raw" injects the concatenated text of the
	// required sections, "digest" injects the bounded summary
	ContextVars map[string]ContextKind `json:"-"`
}

// ContextKind selects how a prerequisite's output is injected into a
// later section's prompt
type ContextKind string

const (
	ContextRaw    ContextKind = "raw"    // Full prior text, verbatim
	ContextDigest ContextKind = "digest" // Headings + risk markers only
)

// SectionResult is one generated section. Owned by the context accumulator
// once recorded; immutable.
type SectionResult struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Text        string    `json:"-"`
	WordCount   int       `json:"word_count"`
	Attempts    int       `json:"attempts"`
	GeneratedAt time.Time `json:"generated_at"`

	// BelowTarget marks a section accepted under its minimum word target
	// after exhausting retries (degraded, not discarded)
	BelowTarget bool `json:"below_target,omitempty"`

	// Failed marks a section rejected by the backend's content policy;
	// Text holds a visible placeholder in that case
	Failed bool `json:"failed,omitempty"`
}

// Document is the assembled report body
type Document struct {
	Body     string         `json:"-"`
	Sections []SectionID    `json:"sections"`
	Warnings []ChartWarning `json:"chart_warnings,omitempty"`
}

// SectionID pairs a section identifier with its byte offset in the body
type SectionID struct {
	ID     string `json:"id"`
	Offset int    `json:"offset"`
}

// ChartWarning records a chart marker that resolved to no registered chart.
// Non-fatal: the marker is dropped and assembly continues.
type ChartWarning struct {
	Keyword string `json:"keyword"`
	Section string `json:"section,omitempty"`
}

// Manifest is the machine-readable companion to the rendered report: which
// sections were generated, which are degraded or missing, and what the
// anonymity gate excluded. A human reviewer always receives this alongside
// the report body.
type Manifest struct {
	Company     string          `json:"company"`
	GeneratedAt time.Time       `json:"generated_at"`
	Provider    string          `json:"provider,omitempty"`
	Model       string          `json:"model,omitempty"`
	Stats       Stats           `json:"survey"`
	Anonymity   AnonymityNote   `json:"anonymity"`
	Sections    []SectionResult `json:"sections"`
	Warnings    []ChartWarning  `json:"chart_warnings,omitempty"`
}

// AnonymityNote is the disclosure note produced by the anonymity gate
type AnonymityNote struct {
	Threshold     int            `json:"threshold"`
	OriginalCount int            `json:"original_count"`
	FilteredCount int            `json:"filtered_count"`
	Included      map[string]int `json:"included_segments"`
	Excluded      map[string]int `json:"excluded_segments,omitempty"`
	Note          string         `json:"note"`
}

// ProgressEvent is emitted once per completed section for external
// observers. Purely observational: no back-pressure on the run.
type ProgressEvent struct {
	SectionID string
	Name      string
	Position  int
	WordCount int
	Attempts  int
	Elapsed   time.Duration
	Degraded  bool
	Failed    bool
}
