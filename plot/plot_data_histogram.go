package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// histogramData is one bar per bin, labelled with the bin range.
type histogramData struct {
	bins      []models.HistogramBin
	nameYAxis string
	nameGraph string
}

func newHistogramData(h *models.Histogram) histogramData {
	return histogramData{
		bins:      h.Bins,
		nameYAxis: "students",
		nameGraph: fmt.Sprintf("%s (n=%d, mean %.2f, median %.2f)",
			asciiLabel(h.Subject), h.Count, h.Mean, h.Median),
	}
}

func (d histogramData) GetNameGraph() string {
	return d.nameGraph
}
func (d histogramData) getNameYAxis() string {
	return d.nameYAxis
}
func (d histogramData) getYValues() []float64 {
	y := make([]float64, len(d.bins))
	for i, b := range d.bins {
		y[i] = float64(b.Count)
	}
	return y
}

func (d histogramData) calculateChartDimensions(minBarWidth float64) (width, height int) {
	return chartDimensions(len(d.bins), minBarWidth)
}

func (d histogramData) generateBarValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.bins))
	for _, b := range d.bins {
		bars = append(bars, chart.Value{
			Value: float64(b.Count),
			Label: fmt.Sprintf("%.1f-%.1f", b.Start, b.End),
			Style: chart.Style{
				FillColor: drawing.ColorBlue.WithAlpha(120),
			},
		})
	}
	return bars
}
