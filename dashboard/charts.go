package dashboard

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/montanaflynn/stats"

	"github.com/pivolan/grades_analyzer/domain/models"
)

const allLabel = "الكل"

func baseOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
	}
}

func semesterName(s string) string {
	if s == "" {
		return allLabel
	}
	return s
}

// subjectMeansChart has one series per semester over the subjects.
func subjectMeansChart(means []models.SubjectMean) *charts.Bar {
	var subjects, semesters []string
	seenSubject := map[string]bool{}
	seenSemester := map[string]bool{}
	values := map[string]map[string]float64{}
	for _, m := range means {
		if !seenSubject[m.Subject] {
			seenSubject[m.Subject] = true
			subjects = append(subjects, m.Subject)
		}
		if !seenSemester[m.Semester] {
			seenSemester[m.Semester] = true
			semesters = append(semesters, m.Semester)
			values[m.Semester] = map[string]float64{}
		}
		values[m.Semester][m.Subject] = m.Mean
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions("متوسط الدرجات حسب المادة")...)
	bar.SetXAxis(subjects)
	for _, sem := range semesters {
		data := make([]opts.BarData, 0, len(subjects))
		for _, subj := range subjects {
			v, ok := values[sem][subj]
			if !ok {
				data = append(data, opts.BarData{Value: "-"})
				continue
			}
			data = append(data, opts.BarData{Value: round2(v)})
		}
		bar.AddSeries(semesterName(sem), data)
	}
	return bar
}

func gradeNames() []string {
	names := make([]string, 0, models.NumGrades)
	for _, g := range models.Grades {
		names = append(names, g.String())
	}
	return names
}

func distributionPie(d models.SemesterDistribution) *charts.Pie {
	data := make([]opts.PieData, 0, models.NumGrades)
	for _, row := range d.Counts.Rows() {
		data = append(data, opts.PieData{Name: row.Label, Value: row.Count})
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(baseOptions("توزيع التقديرات - " + semesterName(d.Semester))...)
	pie.AddSeries(semesterName(d.Semester), data).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c} ({d}%)"}))
	return pie
}

func distributionBar(d models.SemesterDistribution) *charts.Bar {
	data := make([]opts.BarData, 0, models.NumGrades)
	for _, row := range d.Counts.Rows() {
		data = append(data, opts.BarData{Value: row.Count})
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions("عدد الطلاب حسب التقدير - " + semesterName(d.Semester))...)
	bar.SetXAxis(gradeNames()).AddSeries(semesterName(d.Semester), data)
	return bar
}

// comparisonChart groups the grade counts of every semester side by side.
func comparisonChart(dists []models.SemesterDistribution) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions("مقارنة بين الفصول الدراسية")...)
	bar.SetXAxis(gradeNames())
	for _, d := range dists {
		data := make([]opts.BarData, 0, models.NumGrades)
		for _, row := range d.Counts.Rows() {
			data = append(data, opts.BarData{Value: row.Count})
		}
		bar.AddSeries(semesterName(d.Semester), data)
	}
	return bar
}

func histogramChart(h *models.Histogram) *charts.Bar {
	labels := make([]string, 0, len(h.Bins))
	data := make([]opts.BarData, 0, len(h.Bins))
	for _, b := range h.Bins {
		labels = append(labels, fmt.Sprintf("%.1f-%.1f", b.Start, b.End))
		data = append(data, opts.BarData{Value: b.Count})
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(baseOptions(fmt.Sprintf("تحليل أداء الطلاب في %s (المتوسط %.2f، الوسيط %.2f)", h.Subject, h.Mean, h.Median))...)
	bar.SetXAxis(labels).AddSeries(h.Subject, data,
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "1%"}))
	return bar
}

// rankingChart is a horizontal bar with the first ranked school on top.
func rankingChart(title string, rows []models.RankedSchool) *charts.Bar {
	labels := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, r := range rows {
		j := len(rows) - 1 - i
		labels[j] = r.School
		data[j] = opts.BarData{Value: round2(r.Mean), Name: fmt.Sprintf("%d", r.Count)}
	}
	bar := charts.NewBar()
	opt := baseOptions(title)
	opt = append(opt, charts.WithInitializationOpts(opts.Initialization{
		Width:  "100%",
		Height: fmt.Sprintf("%dpx", 120+24*len(rows)),
	}))
	bar.SetGlobalOptions(opt...)
	bar.SetXAxis(labels).AddSeries("متوسط المعدل", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}))
	bar.XYReversal()
	return bar
}

func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
