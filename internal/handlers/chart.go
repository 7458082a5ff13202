package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"

	"github.com/Brownie44l1/image-classify/internal/predictor"
)

var errChartEmpty = errors.New("no results to chart")

const (
	chartWidth    = 640
	chartLabelW   = 200
	chartBarH     = 22
	chartBarGap   = 8
	chartPadding  = 10
	chartValueGap = 6
)

type chartBar struct {
	Label  string
	Value  string
	Y      int
	TextY  int
	Width  float64
	ValueX float64
}

type chartView struct {
	Width  int
	Height int
	BarX   int
	LabelX int
	BarH   int
	Bars   []chartBar
}

// renderChart draws a horizontal bar chart keyed by label. A label seen
// twice keeps its first position and its last score.
func renderChart(results []predictor.Result) (template.HTML, error) {
	if len(results) == 0 {
		return "", errChartEmpty
	}

	var order []string
	scores := make(map[string]float64, len(results))
	for _, r := range results {
		if math.IsNaN(r.Score) || math.IsInf(r.Score, 0) || r.Score < 0 || r.Score > 1 {
			return "", fmt.Errorf("score %v for %q is outside [0,1]", r.Score, r.Label)
		}
		if _, seen := scores[r.Label]; !seen {
			order = append(order, r.Label)
		}
		scores[r.Label] = r.Score
	}

	span := float64(chartWidth - chartLabelW - 2*chartPadding - 60)
	view := chartView{
		Width:  chartWidth,
		Height: 2*chartPadding + len(order)*(chartBarH+chartBarGap) - chartBarGap,
		BarX:   chartLabelW,
		LabelX: chartLabelW - 8,
		BarH:   chartBarH,
	}
	for i, label := range order {
		y := chartPadding + i*(chartBarH+chartBarGap)
		width := math.Max(scores[label]*span, 1)
		view.Bars = append(view.Bars, chartBar{
			Label:  label,
			Value:  fmt.Sprintf("%.4f", scores[label]),
			Y:      y,
			TextY:  y + chartBarH/2 + 5,
			Width:  width,
			ValueX: float64(chartLabelW+chartValueGap) + width,
		})
	}

	var buf bytes.Buffer
	if err := chartTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("chart template: %w", err)
	}
	return template.HTML(buf.String()), nil
}

var chartTemplate = template.Must(template.New("chart").Parse(`<svg class="chart" xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}" role="img" aria-label="Prediction scores">
{{- $v := .}}
{{- range .Bars}}
  <text x="{{$v.LabelX}}" y="{{.TextY}}" text-anchor="end" font-size="13">{{.Label}}</text>
  <rect x="{{$v.BarX}}" y="{{.Y}}" width="{{printf "%.1f" .Width}}" height="{{$v.BarH}}" rx="3" fill="#ff4b4b"></rect>
  <text x="{{printf "%.1f" .ValueX}}" y="{{.TextY}}" font-size="12" fill="#555">{{.Value}}</text>
{{- end}}
</svg>`))
