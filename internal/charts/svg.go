package charts

import (
	"fmt"
	"strings"
)

const (
	chartWidth  = 600.0
	chartHeight = 400.0
)

var chartMargin = map[string]float64{"top": 50, "right": 30, "bottom": 60, "left": 60}

// Blue gradient for Likert scales, light to dark
var numericColors = []string{"#a8d5e5", "#6bb8d4", "#3a9fc2", "#1a7fa3", "#0d5f7a"}

var (
	positiveKeywords = []string{"sí", "si", "yes", "siempre", "always", "frecuentemente", "excelente", "muy bueno", "bueno", "good"}
	neutralKeywords  = []string{"tal vez", "maybe", "a veces", "sometimes", "regular", "más o menos", "no sé", "neutro", "neutral"}
	negativeKeywords = []string{"no", "nunca", "never", "rara vez", "rarely", "malo", "muy malo", "pésimo", "bad", "poor"}
)

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// RenderSVG draws a vertical bar chart for one question: axes, per-answer
// bars with count labels, and the question text as title
func RenderSVG(q Question) string {
	plotW := chartWidth - chartMargin["left"] - chartMargin["right"]
	plotH := chartHeight - chartMargin["top"] - chartMargin["bottom"]

	maxCount := 1
	for _, c := range q.Counts {
		if c > maxCount {
			maxCount = c
		}
	}
	// Headroom above the tallest bar for its count label
	yMax := float64(maxCount) * 1.1

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		int(chartWidth), int(chartHeight)))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#ffffff" rx="8"/>`,
		int(chartWidth), int(chartHeight)))

	sb.WriteString(fmt.Sprintf(`<text x="%f" y="28" text-anchor="middle" font-family="Arial, sans-serif" font-size="14" font-weight="bold">%s</text>`,
		chartWidth/2, svgEscaper.Replace(title(q.Column))))

	// Axes
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		chartMargin["left"], chartMargin["top"], chartMargin["left"], chartMargin["top"]+plotH))
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		chartMargin["left"], chartMargin["top"]+plotH, chartMargin["left"]+plotW, chartMargin["top"]+plotH))

	sb.WriteString(fmt.Sprintf(`<text x="18" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="11" transform="rotate(-90, 18, %f)">Responses</text>`,
		chartMargin["top"]+plotH/2, chartMargin["top"]+plotH/2))

	// Bars centered in their slot, 60% of the slot width
	n := len(q.Labels)
	if n == 0 {
		sb.WriteString(`</svg>`)
		return sb.String()
	}
	slot := plotW / float64(n)
	barW := slot * 0.6

	for i, count := range q.Counts {
		barH := float64(count) / yMax * plotH
		x := chartMargin["left"] + float64(i)*slot + (slot-barW)/2
		y := chartMargin["top"] + plotH - barH

		sb.WriteString(fmt.Sprintf(`<rect x="%f" y="%f" width="%f" height="%f" fill="%s"/>`,
			x, y, barW, barH, barColor(q, i)))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="11">%d</text>`,
			x+barW/2, y-5, count))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="10">%s</text>`,
			x+barW/2, chartMargin["top"]+plotH+18, svgEscaper.Replace(axisLabel(q.Labels[i]))))
	}

	if q.Kind == KindNumeric {
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="end" font-family="Arial, sans-serif" font-size="11" fill="#555">avg %.2f</text>`,
			chartWidth-chartMargin["right"], chartMargin["top"]-8, q.Mean))
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

func barColor(q Question, i int) string {
	if q.Kind == KindNumeric {
		// Spread the gradient across however many scale points exist
		idx := i * len(numericColors) / len(q.Labels)
		if idx >= len(numericColors) {
			idx = len(numericColors) - 1
		}
		return numericColors[idx]
	}
	return sentimentColor(q.Labels[i])
}

func sentimentColor(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, kw := range neutralKeywords {
		if strings.Contains(l, kw) {
			return "#fdae61"
		}
	}
	for _, kw := range negativeKeywords {
		if l == kw || strings.HasPrefix(l, kw+" ") {
			return "#d73027"
		}
	}
	for _, kw := range positiveKeywords {
		if strings.Contains(l, kw) {
			return "#66c2a5"
		}
	}
	return "#8da0cb"
}

func axisLabel(label string) string {
	if len(label) > 14 {
		return label[:11] + "..."
	}
	return label
}
