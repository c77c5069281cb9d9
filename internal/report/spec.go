package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rodrinoblega/hr-climate-insight/internal/model"
)

// SpecOrderError signals malformed section-dependency configuration:
// a prerequisite that does not exist or is not strictly earlier than the
// section requiring it. Detected before any generation call.
type SpecOrderError struct {
	SectionID string
	Requires  string
	Reason    string
}

func (e *SpecOrderError) Error() string {
	return fmt.Sprintf("section %q requires %q: %s", e.SectionID, e.Requires, e.Reason)
}

// ValidateOrder checks that specs are sorted by position, positions are
// unique, and every prerequisite appears at a strictly smaller position
func ValidateOrder(specs []model.SectionSpec) error {
	pos := make(map[string]int, len(specs))
	seen := make(map[int]string, len(specs))
	for _, s := range specs {
		if prev, dup := seen[s.Position]; dup {
			return &SpecOrderError{SectionID: s.ID, Requires: prev, Reason: fmt.Sprintf("duplicate position %d", s.Position)}
		}
		seen[s.Position] = s.ID
		pos[s.ID] = s.Position
	}

	for _, s := range specs {
		for _, req := range s.Requires {
			p, ok := pos[req]
			if !ok {
				return &SpecOrderError{SectionID: s.ID, Requires: req, Reason: "unknown section"}
			}
			if p >= s.Position {
				return &SpecOrderError{SectionID: s.ID, Requires: req,
					Reason: fmt.Sprintf("prerequisite position %d is not before %d", p, s.Position)}
			}
		}
	}
	return nil
}

// SortByPosition returns a copy of specs ordered by position
func SortByPosition(specs []model.SectionSpec) []model.SectionSpec {
	out := make([]model.SectionSpec, len(specs))
	copy(out, specs)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// RenderTemplate substitutes {name} placeholders with their variable values.
// An unresolved placeholder is a configuration error, reported before the
// prompt reaches the backend.
func RenderTemplate(template string, vars map[string]string) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved template variables: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// SystemPrompt is the consultant role shared by every section call
const SystemPrompt = `You are a senior organizational climate consultant with 15 years of experience turning survey data into strategic insight.

Your approach:
- PREVENTIVE: you surface risks before they escalate
- ETHICAL: you protect anonymity (never analyze segments with n < 5)
- CONSTRUCTIVE: you present opportunities, never assign blame
- PROFESSIONAL BUT WARM: approachable without losing technical rigor

Clients pay for DEEP analysis. Every section must include exact data breakdowns (not just averages), comparisons between segments, deep interpretation of what the numbers mean, and strategic implications.

RULES:
- Generate ONLY the requested section, no others
- Use Markdown formatting
- Insert [CHART: keyword] markers on their own line where a chart is relevant, followed by a paragraph analyzing THAT chart's question
- Only use chart keywords from the provided list`

// ExpandInstruction is appended to the prompt when a draft falls short of
// the section's minimum word target
const ExpandInstruction = "\n\nIMPORTANT: your previous draft was too short. Expand every part of the section with deeper data breakdowns, segment comparisons and strategic interpretation until the minimum word count is clearly exceeded. Do not pad with repetition."

// DefaultSections returns the built-in report structure: seven ordered
// sections, later ones consuming earlier output raw or digested
func DefaultSections() []model.SectionSpec {
	return []model.SectionSpec{
		{
			ID:       "executive_summary",
			Name:     "Executive Summary",
			Position: 1,
			MinWords: 500,
			Template: `Generate ONLY the Executive Summary of the climate report.

SURVEY DATA:
- Company: {company}
- Country: {country}
- City: {city}
- Date: {date}
- Total responses: {total_responses}
{anonymity_note}

CSV DATA:
` + "```\n{survey_csv}\n```" + `

Write the report header (company, addressee, date) followed by "## Executive Summary": at least 500 words in 4-5 paragraphs covering context and methodology, the 3-4 main strengths WITH SPECIFIC DATA, the 2-3 improvement areas WITH SPECIFIC DATA, and an overall assessment with next steps. Mention anonymity exclusions if any. Use specific figures from the CSV, not generalities.`,
		},
		{
			ID:       "dimensions_1_3",
			Name:     "Dimensions 1-3",
			Position: 2,
			MinWords: 1200,
			Template: `Generate ONLY the first 3 dimensions of the analysis.

SURVEY DATA:
- Company: {company}
- Country: {country}
- Total responses: {total_responses}

AVAILABLE CHARTS:
{available_charts}

CSV DATA:
` + "```\n{survey_csv}\n```" + `

Identify the dimensions the questions cover and write the FIRST 3 (typically commitment/belonging, fairness, compensation) under "## Analyzed Dimensions". For each dimension (400+ words): an intro paragraph, detailed results per question with exact distributions and per-segment breakdowns, 1-2 [CHART: keyword] markers where relevant, 2-3 interpretive paragraphs, and a closing line "**Risk level:** 🟢 Healthy / 🟡 Watch / 🔴 Critical - justification". Minimum 1200 words total.`,
		},
		{
			ID:       "dimensions_4_6",
			Name:     "Dimensions 4-6",
			Position: 3,
			MinWords: 1200,
			Requires: []string{"dimensions_1_3"},
			ContextVars: map[string]model.ContextKind{
				"previous_dimensions": model.ContextRaw,
			},
			Template: `Generate ONLY dimensions 4, 5 and 6 of the analysis.

SURVEY DATA:
- Company: {company}
- Country: {country}
- Total responses: {total_responses}

AVAILABLE CHARTS:
{available_charts}

CONTEXT - dimensions already analyzed:
{previous_dimensions}

CSV DATA:
` + "```\n{survey_csv}\n```" + `

Review which dimensions are already covered above and write the NEXT 3 uncovered ones (typically tools/resources, communication, leadership, teamwork, professional development). Same per-dimension format: 400+ words each, exact distributions, segment breakdowns, [CHART: keyword] markers where relevant, interpretive analysis and a "**Risk level:**" line. Do NOT repeat covered dimensions. Minimum 1200 words total.`,
		},
		{
			ID:       "remaining_dimensions",
			Name:     "Remaining Dimensions and Summary Table",
			Position: 4,
			MinWords: 800,
			Requires: []string{"dimensions_1_3", "dimensions_4_6"},
			ContextVars: map[string]model.ContextKind{
				"previous_dimensions": model.ContextRaw,
				"dimension_summary":   model.ContextDigest,
			},
			Template: `Generate the remaining dimensions (if any) and the Summary Table.

SURVEY DATA:
- Company: {company}
- Total responses: {total_responses}

AVAILABLE CHARTS:
{available_charts}

CONTEXT - dimensions already analyzed:
{previous_dimensions}

DIMENSION RESULTS SUMMARY:
{dimension_summary}

CSV DATA:
` + "```\n{survey_csv}\n```" + `

If any questions are not yet covered, add dimensions 7, 8, ... in the same format. Then write "## Summary Table": a complete Markdown table with one row per analyzed dimension (6-10 rows), columns Dimension | Main Result | Level, every row carrying a specific figure and a 🟢/🟡/🔴 level, followed by the level legend (🟢 Healthy: avg >= 4.0 or satisfaction >= 75% | 🟡 Watch: 3.0-3.9 or 50-74% | 🔴 Critical: < 3.0 or < 50%). Minimum 800 words.`,
		},
		{
			ID:       "global_assessment",
			Name:     "Global Assessment",
			Position: 5,
			MinWords: 500,
			Requires: []string{"dimensions_1_3", "dimensions_4_6", "remaining_dimensions"},
			ContextVars: map[string]model.ContextKind{
				"dimension_summary": model.ContextDigest,
			},
			Template: `Generate ONLY the Global Climate Assessment section.

SURVEY DATA:
- Company: {company}
- Country: {country}
- Total responses: {total_responses}

SUMMARY OF ALL ANALYZED DIMENSIONS:
{dimension_summary}

Write "## Global Climate Assessment": 2-3 integrative paragraphs (300+ words) connecting the dimensions, identifying cross-cutting patterns and assessing the overall state without being alarmist or complacent; then "**Key strengths:**" (3 numbered items with specific data) and "**Priority improvement opportunities:**" (3 numbered items with specific data). Minimum 500 words.`,
		},
		{
			ID:       "action_plan",
			Name:     "Action Plan",
			Position: 6,
			MinWords: 700,
			Requires: []string{"global_assessment"},
			ContextVars: map[string]model.ContextKind{
				"dimension_summary": model.ContextDigest,
			},
			Template: `Generate ONLY the Recommended Action Plan section.

SURVEY DATA:
- Company: {company}
- Country: {country}

SUMMARY OF DIMENSIONS AND FINDINGS:
{dimension_summary}

Write "## Recommended Action Plan": an intro paragraph linking the plan to the findings, then "### Immediate Actions (next 3 months)" with 2 detailed actions for HR and 2 for team leads (each with context, objective, suggested activities, success indicator and timeline), "### Medium-Term Actions (3-6 months)" with 2 actions per audience, and "### Follow-up and Measurement (6-12 months)" covering a pulse survey, monthly indicators and the next full survey. Every action must trace back to a specific finding. Minimum 700 words.`,
		},
		{
			ID:       "conclusions",
			Name:     "Conclusions",
			Position: 7,
			MinWords: 400,
			Requires: []string{"global_assessment"},
			ContextVars: map[string]model.ContextKind{
				"dimension_summary": model.ContextDigest,
			},
			Template: `Generate ONLY the Conclusions section of the report.

SURVEY DATA:
- Company: {company}
- Country: {country}
- Total responses: {total_responses}

SUMMARY OF DIMENSIONS AND FINDINGS:
{dimension_summary}

Write "## Conclusions": 4-5 paragraphs (400+ words) with a balanced synthesis of the current state, genuine recognition of the participants' honesty, a constructive perspective framing results as a starting point, next steps (communicating results, starting the plan, follow-up), and a grounded optimistic close. End with a final note stating the report was produced respecting participant anonymity and that no result allows identifying individual responses. Warm but professional tone.`,
		},
	}
}
