// Package anonymity is the statistical disclosure gate. Every response group
// must pass through Filter before any of its data reaches report generation.
package anonymity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rodrinoblega/hr-climate-insight/internal/model"
)

// MinGroupSize is the minimum response count a segment needs for its data to
// be disclosed. Zero-tolerance policy constant: it is deliberately not part
// of the configuration surface and must not be wired to any flag or
// environment variable.
const MinGroupSize = 5

// InsufficientDataError signals that no group survived filtering.
// Fatal: the pipeline must terminate without a single generation call.
type InsufficientDataError struct {
	Threshold int
	Groups    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no segment meets the anonymity threshold (n >= %d, %d segments checked): cannot generate report", e.Threshold, e.Groups)
}

// Partition is the result of one filtering pass. Built once per run, never
// mutated afterwards. Only Included data may flow to generation; Excluded
// exists solely for the disclosure note.
type Partition struct {
	Included []model.ResponseGroup
	Excluded []model.ResponseGroup
	Note     model.AnonymityNote
}

// Filter partitions groups by the threshold: count >= min survives,
// count < min is excluded. A group with count exactly equal to the
// threshold is included. Returns InsufficientDataError when nothing
// survives.
func Filter(groups []model.ResponseGroup, min int) (*Partition, error) {
	p := &Partition{
		Note: model.AnonymityNote{
			Threshold: min,
			Included:  make(map[string]int),
			Excluded:  make(map[string]int),
		},
	}

	for _, g := range groups {
		p.Note.OriginalCount += g.Count
		if g.Count >= min {
			p.Included = append(p.Included, g)
			p.Note.Included[g.Key] = g.Count
			p.Note.FilteredCount += g.Count
		} else {
			p.Excluded = append(p.Excluded, g)
			p.Note.Excluded[g.Key] = g.Count
		}
	}

	if len(p.Included) == 0 {
		return nil, &InsufficientDataError{Threshold: min, Groups: len(groups)}
	}

	p.Note.Note = disclosureNote(p.Note)
	return p, nil
}

// SurvivingRows flattens the included groups back into respondent rows, in
// group order. This is the only data the generation pipeline may see.
func (p *Partition) SurvivingRows() [][]string {
	var rows [][]string
	for _, g := range p.Included {
		rows = append(rows, g.Rows...)
	}
	return rows
}

// disclosureNote builds the human-readable note that accompanies the report
// and is injected into section prompts
func disclosureNote(n model.AnonymityNote) string {
	if len(n.Excluded) == 0 {
		return fmt.Sprintf("All responses were included (every segment meets n >= %d).", n.Threshold)
	}

	names := make([]string, 0, len(n.Excluded))
	for k := range n.Excluded {
		names = append(names, k)
	}
	sort.Strings(names)

	return fmt.Sprintf(
		"ANONYMITY NOTE: the following segments were excluded from the analysis for having fewer than %d responses (anonymity protection): %s. Responses included: %d of %d.",
		n.Threshold, strings.Join(names, ", "), n.FilteredCount, n.OriginalCount)
}

// Validate reports whether every group already meets the threshold
func Validate(groups []model.ResponseGroup) bool {
	for _, g := range groups {
		if g.Count < MinGroupSize {
			return false
		}
	}
	return true
}
