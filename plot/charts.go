// Package plot draws PNG charts of pipeline aggregates.
package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/grades_analyzer/domain/models"
)

var gradeNames = [models.NumGrades]string{"Excellent", "Very good", "Good", "Acceptable"}

var gradeColors = [models.NumGrades]drawing.Color{
	drawing.ColorFromHex("2e7d32"),
	drawing.ColorFromHex("1565c0"),
	drawing.ColorFromHex("f9a825"),
	drawing.ColorFromHex("c62828"),
}

var semesterColors = []drawing.Color{
	drawing.ColorFromHex("5c6bc0"),
	drawing.ColorFromHex("26a69a"),
	drawing.ColorFromHex("ef6c00"),
	drawing.ColorFromHex("8d6e63"),
}

// SubjectMeans draws one bar per subject, or per semester and subject when
// the means are split by semester.
func SubjectMeans(means []models.SubjectMean) ([]byte, error) {
	labels := make([]string, 0, len(means))
	values := make([]float64, 0, len(means))
	colors := make([]drawing.Color, 0, len(means))
	semesterIdx := map[string]int{}
	for _, m := range means {
		label := m.Subject
		if m.Semester != "" {
			label = m.Subject + " / " + m.Semester
		}
		idx, ok := semesterIdx[m.Semester]
		if !ok {
			idx = len(semesterIdx)
			semesterIdx[m.Semester] = idx
		}
		labels = append(labels, label)
		values = append(values, m.Mean)
		colors = append(colors, semesterColors[idx%len(semesterColors)])
	}
	data := newLabelledData(labels, values, "mean score", "Mean score by subject").withColors(colors)
	return DrawPlotBar(data)
}

func gradeValues(counts models.GradeCounts) []chart.Value {
	values := make([]chart.Value, 0, models.NumGrades)
	for _, row := range counts.Rows() {
		values = append(values, chart.Value{
			Value: float64(row.Count),
			Label: fmt.Sprintf("%s (%d)", gradeNames[row.Grade], row.Count),
			Style: chart.Style{FillColor: gradeColors[row.Grade], StrokeColor: drawing.ColorWhite},
		})
	}
	return values
}

func distributionTitle(d models.SemesterDistribution) string {
	if d.Semester == "" {
		return "Overall grades"
	}
	return "Overall grades, " + asciiLabel(d.Semester)
}

// GradeDistribution draws the grade counts of one semester as bars.
func GradeDistribution(d models.SemesterDistribution) ([]byte, error) {
	labels := make([]string, 0, models.NumGrades)
	values := make([]float64, 0, models.NumGrades)
	for _, row := range d.Counts.Rows() {
		labels = append(labels, gradeNames[row.Grade])
		values = append(values, float64(row.Count))
	}
	data := newLabelledData(labels, values, "students", distributionTitle(d)).withColors(gradeColors[:])
	return DrawPlotBar(data)
}

// GradePie draws the grade counts of one semester as a pie.
func GradePie(d models.SemesterDistribution) ([]byte, error) {
	return DrawPie(distributionTitle(d), gradeValues(d.Counts))
}

func Histogram(h *models.Histogram) ([]byte, error) {
	if h == nil {
		return nil, ErrNoData
	}
	return DrawPlotBar(newHistogramData(h))
}

// Ranking draws one bar per ranked school in rank order.
func Ranking(title string, rows []models.RankedSchool) ([]byte, error) {
	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, fmt.Sprintf("%d. %s", r.Rank, r.School))
		values = append(values, r.Mean)
	}
	return DrawPlotBar(newLabelledData(labels, values, "mean", title))
}
