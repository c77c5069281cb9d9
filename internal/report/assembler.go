package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rodrinoblega/hr-climate-insight/internal/model"
)

// ChartResolver maps a lowercase chart keyword to an artifact reference.
// Built before generation, read-only during assembly.
type ChartResolver interface {
	Resolve(keyword string) (string, bool)
}

// markerRe matches inline chart markers in generated text. The model is
// instructed to emit [CHART: keyword]; Spanish-language drafts occasionally
// come back as [GRAFICO: ...] or [GRÁFICO: ...], so all three are accepted.
// The optional leading space is captured so a resolved inline marker keeps
// its spacing and a dropped one leaves none behind.
var markerRe = regexp.MustCompile(`( ?)\[(?i:chart|gr[aá]fico)\s*:\s*([^\]\n]+?)\s*\]`)

// Assemble concatenates the section texts in result order and resolves every
// chart marker against the registry. Resolution is total: a marker becomes
// either an image insertion or nothing, and an unresolved keyword is recorded
// as a warning instead of failing the run.
func Assemble(results []model.SectionResult, charts ChartResolver) model.Document {
	var doc model.Document
	var body strings.Builder

	for i, r := range results {
		if i > 0 {
			body.WriteString("\n\n")
		}
		doc.Sections = append(doc.Sections, model.SectionID{ID: r.ID, Offset: body.Len()})

		text := markerRe.ReplaceAllStringFunc(r.Text, func(m string) string {
			sub := markerRe.FindStringSubmatch(m)
			lead, keyword := sub[1], strings.ToLower(strings.TrimSpace(sub[2]))
			if charts != nil {
				if ref, ok := charts.Resolve(keyword); ok {
					return fmt.Sprintf("%s![Chart: %s](%s)", lead, keyword, ref)
				}
			}
			doc.Warnings = append(doc.Warnings, model.ChartWarning{Keyword: keyword, Section: r.ID})
			return ""
		})
		body.WriteString(text)
	}

	doc.Body = body.String()
	return doc
}
