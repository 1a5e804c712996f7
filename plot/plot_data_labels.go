package plot

import (
	"github.com/mozillazg/go-unidecode"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// labelledData is one bar per label: subjects, grade categories or schools.
type labelledData struct {
	labels    []string
	yValues   []float64
	colors    []drawing.Color
	nameYAxis string
	nameGraph string
}

func newLabelledData(labels []string, y []float64, nameYAxis, nameGraph string) labelledData {
	return labelledData{
		labels:    labels,
		yValues:   y,
		nameYAxis: nameYAxis,
		nameGraph: nameGraph,
	}
}

func (d labelledData) withColors(colors []drawing.Color) labelledData {
	d.colors = colors
	return d
}

func (d labelledData) GetNameGraph() string {
	return d.nameGraph
}
func (d labelledData) getNameYAxis() string {
	return d.nameYAxis
}
func (d labelledData) getYValues() []float64 {
	return d.yValues
}

func (d labelledData) calculateChartDimensions(minBarWidth float64) (width, height int) {
	return chartDimensions(len(d.labels), minBarWidth)
}

func (d labelledData) generateBarValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.labels))
	for i, label := range d.labels {
		fill := drawing.ColorPurple.WithAlpha(100)
		if i < len(d.colors) {
			fill = d.colors[i]
		}
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: asciiLabel(label),
			Style: chart.Style{FillColor: fill},
		})
	}
	return bars
}

// asciiLabel transliterates a label, the bundled chart font has no Arabic glyphs.
func asciiLabel(s string) string {
	out := unidecode.Unidecode(s)
	if len(out) > maxLabelLen {
		out = out[:maxLabelLen-2] + ".."
	}
	return out
}

const maxLabelLen = 32

// chartDimensions grows the canvas with the number of bars.
func chartDimensions(n int, minBarWidth float64) (width, height int) {
	if n <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if n < 2 {
		x = 10.0
	} else if n < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100        // отступ для оси Y и подписей
		spacingRatio = 0.2        // соотношение отступа между столбцами к ширине столбца
		aspectRatio  = 9.0 / 16.0 // соотношение сторон по умолчанию
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(n) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}
