// Package charts detects chartable survey questions, renders bar charts as
// SVG artifacts, and exposes the keyword registry the document assembler
// resolves markers against.
package charts

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rodrinoblega/hr-climate-insight/internal/model"
)

// Kind distinguishes the two bar-chart layouts
type Kind string

const (
	KindNumeric     Kind = "numeric_scale" // Likert-style 1-5 / 1-10 scales
	KindCategorical Kind = "categorical"   // Yes/No/Sometimes answer sets
)

// Question is one chartable survey column with its answer distribution
type Question struct {
	Column string
	Kind   Kind
	Labels []string
	Counts []int

	// Mean is only set for numeric scales
	Mean float64
}

// Detect scans the dataset column by column and returns the questions worth
// charting: numeric scales with 2-10 distinct values and categorical answers
// with 2-6 distinct values. Free-text columns produce nothing.
func Detect(ds *model.Dataset) []Question {
	var out []Question
	for col, header := range ds.Header {
		values := columnValues(ds, col)
		if len(values) == 0 {
			continue
		}
		if q, ok := numericQuestion(header, values); ok {
			out = append(out, q)
			continue
		}
		if q, ok := categoricalQuestion(header, values); ok {
			out = append(out, q)
		}
	}
	return out
}

func columnValues(ds *model.Dataset, col int) []string {
	var values []string
	for _, row := range ds.Rows {
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}

func numericQuestion(header string, values []string) (Question, bool) {
	counts := make(map[float64]int)
	for _, v := range values {
		n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
		if err != nil {
			return Question{}, false
		}
		counts[n]++
	}
	if len(counts) < 2 || len(counts) > 10 {
		return Question{}, false
	}

	scale := make([]float64, 0, len(counts))
	for n := range counts {
		scale = append(scale, n)
	}
	sort.Float64s(scale)

	q := Question{Column: header, Kind: KindNumeric}
	var sum float64
	for _, n := range scale {
		q.Labels = append(q.Labels, strconv.FormatInt(int64(n), 10))
		q.Counts = append(q.Counts, counts[n])
		sum += n * float64(counts[n])
	}
	q.Mean = sum / float64(len(values))
	return q, true
}

func categoricalQuestion(header string, values []string) (Question, bool) {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(counts) < 2 || len(counts) > 6 {
		return Question{}, false
	}

	// Most frequent answer first, first appearance breaks ties
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	q := Question{Column: header, Kind: KindCategorical}
	for _, v := range order {
		q.Labels = append(q.Labels, v)
		q.Counts = append(q.Counts, counts[v])
	}
	return q, true
}

// keywordPatterns map question phrasings (Spanish and English exports both
// occur in the wild) to the stable marker keyword the prompt advertises
var keywordPatterns = []struct {
	re      *regexp.Regexp
	keyword string
}{
	{regexp.MustCompile(`orgullo|proud`), "pride"},
	{regexp.MustCompile(`recomendar|recommend`), "recommend"},
	{regexp.MustCompile(`cambiar.*trabajo|cambiar[íi]as|leave|quit`), "job_change"},
	{regexp.MustCompile(`favoritismo|equidad|tratados.*igual|fair|equal treatment`), "fairness"},
	{regexp.MustCompile(`objetivos.*empresa|company.*goals`), "company_goals"},
	{regexp.MustCompile(`objetivos.*puesto|descripci[óo]n.*puesto|role.*goals|job description`), "role_goals"},
	{regexp.MustCompile(`remuneraci[óo]n|salario|sueldo|salary|compensation|pay`), "compensation"},
	{regexp.MustCompile(`herramientas|software|tools|equipment`), "tools"},
	{regexp.MustCompile(`procesos|process`), "processes"},
	{regexp.MustCompile(`beneficios|benefits`), "benefits"},
	{regexp.MustCompile(`capacitaci[óo]n|formaci[óo]n|training|development`), "training"},
	{regexp.MustCompile(`equipo|team`), "teamwork"},
	{regexp.MustCompile(`clima|ambiente|climate|work environment`), "climate"},
	{regexp.MustCompile(`comunicaci[óo]n|communication`), "communication"},
	{regexp.MustCompile(`feedback|devoluci[óo]n|retroalimentaci[óo]n`), "feedback"},
	{regexp.MustCompile(`reconoc|recognition`), "recognition"},
	{regexp.MustCompile(`escucha|listen`), "listening"},
	{regexp.MustCompile(`liderazgo|l[íi]der|superior|leader|manager`), "leadership"},
	{regexp.MustCompile(`apoyo|contenci[óo]n|support`), "support"},
	{regexp.MustCompile(`confianza|conf[íi]|trust`), "trust"},
	{regexp.MustCompile(`direcci[óo]n|gerencia|management`), "management"},
	{regexp.MustCompile(`sector|[áa]rea|department`), "sector"},
}

var (
	questionPrefixRe = regexp.MustCompile(`^[\d.)\s]+`)
	significantWords = regexp.MustCompile(`[a-záéíóúñü]{4,}`)
)

// Keyword derives the marker keyword for a question: a known pattern match,
// or the first two significant words of the question text as a fallback
func Keyword(question string) string {
	cleaned := questionPrefixRe.ReplaceAllString(question, "")
	cleaned = strings.NewReplacer("¿", "", "?", "").Replace(cleaned)
	lower := strings.ToLower(cleaned)

	for _, p := range keywordPatterns {
		if p.re.MatchString(lower) {
			return p.keyword
		}
	}

	if words := significantWords.FindAllString(lower, 2); len(words) > 0 {
		return strings.Join(words, "_")
	}
	// Rune-safe: accented question text must not be cut mid-character
	if r := []rune(lower); len(r) > 20 {
		lower = string(r[:20])
	}
	return strings.ReplaceAll(strings.TrimSpace(lower), " ", "_")
}

// title trims leading numbering and truncates the question for chart display
func title(question string) string {
	cleaned := questionPrefixRe.ReplaceAllString(question, "")
	if r := []rune(cleaned); len(r) > 60 {
		cleaned = string(r[:57]) + "..."
	}
	return cleaned
}

// Distribution renders the answer spread as "label: count" pairs for the
// prompt summary
func (q Question) Distribution() string {
	n := len(q.Labels)
	if n > 3 {
		n = 3
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf("%s: %d", q.Labels[i], q.Counts[i]))
	}
	return strings.Join(parts, ", ")
}
