// Package report renders pipeline results as text tables.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/grades_analyzer/domain/models"
)

type Format int

const (
	Text Format = iota
	Markdown
)

var dimensionTitles = map[models.Dimension]string{
	models.DimSemester:   "الفصل الدراسي",
	models.DimSchool:     "المدرسة",
	models.DimGender:     "الجنس",
	models.DimGradeLabel: "الصف",
	models.DimSubject:    "المادة",
}

const noData = "لا توجد بيانات مطابقة للفلاتر المحددة"

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	return t
}

func render(t table.Writer, f Format) string {
	if f == Markdown {
		return t.RenderMarkdown()
	}
	return t.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatScore(s models.Score) string {
	if !s.Valid {
		return "-"
	}
	return formatFloat(s.Value)
}

func formatDelta(s models.Score) string {
	if !s.Valid {
		return "-"
	}
	if s.Value > 0 {
		return "+" + formatFloat(s.Value)
	}
	return formatFloat(s.Value)
}

// Render returns every section of r in display order.
func Render(r *models.Report, f Format) string {
	sections := []string{FiltersTable(r, f)}
	if r.Empty || r.Aggregates == nil {
		sections = append(sections, noData)
		return strings.Join(sections, "\n\n")
	}

	a := r.Aggregates
	sections = append(sections,
		SubjectMeansTable(a.SubjectMeans, f),
		DistributionTable("توزيع التقديرات", a.Distributions, f),
	)
	if len(a.Comparison) > 1 {
		sections = append(sections, DistributionTable("مقارنة الفصول", a.Comparison, f))
	}
	sections = append(sections, MetricsTable(a.SemesterMetrics, f))
	if a.SubjectHistogram != nil {
		sections = append(sections, HistogramTable(a.SubjectHistogram, f))
	}
	if r.Rankings != nil {
		sections = append(sections, RankingsText(r.Rankings, a.SchoolsBelowLimit, f))
	}
	return strings.Join(sections, "\n\n")
}

// RankingsText renders the top and bottom lists with the summary block.
func RankingsText(rk *models.Rankings, belowLimit int, f Format) string {
	sections := []string{
		RankingTable(fmt.Sprintf("أفضل %d مدرسة", len(rk.Top)), rk.Top, f),
		RankingTable(fmt.Sprintf("أدنى %d مدرسة", len(rk.Bottom)), rk.Bottom, f),
		SummaryTable(rk.Summary, belowLimit, f),
	}
	return strings.Join(sections, "\n\n")
}

func FiltersTable(r *models.Report, f Format) string {
	t := newTable("الفلاتر")
	t.AppendHeader(table.Row{"البعد", "القيمة"})
	for _, d := range models.Dimensions {
		v, ok := r.Filters[d]
		if !ok {
			v = "الكل"
		}
		t.AppendRow(table.Row{dimensionTitles[d], v})
	}
	students := 0
	if r.Aggregates != nil {
		students = r.Aggregates.StudentCount
	}
	t.AppendFooter(table.Row{"عدد الطلاب", students})
	return render(t, f)
}

func SubjectMeansTable(means []models.SubjectMean, f Format) string {
	t := newTable("متوسط الدرجات حسب المادة")
	split := false
	for _, m := range means {
		if m.Semester != "" {
			split = true
			break
		}
	}
	if split {
		t.AppendHeader(table.Row{"الفصل الدراسي", "المادة", "المتوسط", "العدد"})
	} else {
		t.AppendHeader(table.Row{"المادة", "المتوسط", "العدد"})
	}
	for _, m := range means {
		if split {
			t.AppendRow(table.Row{m.Semester, m.Subject, formatFloat(m.Mean), m.Count})
		} else {
			t.AppendRow(table.Row{m.Subject, formatFloat(m.Mean), m.Count})
		}
	}
	return render(t, f)
}

// DistributionTable has one row per semester and one column per grade category.
func DistributionTable(title string, dists []models.SemesterDistribution, f Format) string {
	t := newTable(title)
	header := table.Row{"الفصل الدراسي"}
	for _, g := range models.Grades {
		header = append(header, g.String())
	}
	header = append(header, "المجموع")
	t.AppendHeader(header)
	for _, d := range dists {
		label := d.Semester
		if label == "" {
			label = "الكل"
		}
		row := table.Row{label}
		for _, c := range d.Counts {
			row = append(row, c)
		}
		row = append(row, d.Counts.Total())
		t.AppendRow(row)
	}
	return render(t, f)
}

func MetricsTable(metrics []models.SemesterMetric, f Format) string {
	t := newTable("متوسط المعدل حسب الفصل")
	t.AppendHeader(table.Row{"الفصل", "المتوسط"})
	for _, m := range metrics {
		t.AppendRow(table.Row{m.Title, formatScore(m.Mean)})
	}
	return render(t, f)
}

func HistogramTable(h *models.Histogram, f Format) string {
	t := newTable("توزيع درجات " + h.Subject)
	t.AppendHeader(table.Row{"من", "إلى", "العدد"})
	for _, b := range h.Bins {
		t.AppendRow(table.Row{formatFloat(b.Start), formatFloat(b.End), b.Count})
	}
	t.AppendFooter(table.Row{
		"المتوسط " + formatFloat(h.Mean),
		"الوسيط " + formatFloat(h.Median),
		h.Count,
	})
	return render(t, f)
}

func RankingTable(title string, rows []models.RankedSchool, f Format) string {
	t := newTable(title)
	t.AppendHeader(table.Row{"#", "المدرسة", "المتوسط", "العدد"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Rank, r.School, formatFloat(r.Mean), r.Count})
	}
	return render(t, f)
}

func SummaryTable(s models.RankingSummary, belowLimit int, f Format) string {
	t := newTable("ملخص الترتيب")
	t.AppendRows([]table.Row{
		{"أعلى متوسط", formatScore(s.Best), formatDelta(s.BestDelta)},
		{"أدنى متوسط", formatScore(s.Worst), formatDelta(s.WorstDelta)},
		{"المتوسط العام", formatScore(s.Overall), ""},
		{"المدارس المصنفة", s.SchoolCount, ""},
		{"مدارس دون الحد الأدنى", belowLimit, ""},
	})
	return render(t, f)
}
