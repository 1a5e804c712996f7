package dashboard

import (
	"fmt"
	"html/template"

	"github.com/pivolan/grades_analyzer/domain/models"
)

type selectOption struct {
	Value    string
	Selected bool
}

type selectField struct {
	Name    string
	Label   string
	Options []selectOption
}

type metric struct {
	Title string
	Value string
	Delta string
}

type headerData struct {
	Action       string
	APIURL       string
	Source       string
	Fields       []selectField
	StudentCount int
	Empty        bool
	Metrics      []metric
	Summary      []metric
	BelowLimit   int
}

func newHeaderData(r *models.Report, v View) headerData {
	d := headerData{
		Action: v.Action,
		APIURL: v.APIURL,
		Source: r.Source,
		Empty:  r.Empty || r.Aggregates == nil,
		Fields: []selectField{
			field(models.DimSemester, "الفصل الدراسي", r.Options.Semesters, r.Filters),
			field(models.DimSchool, "المدرسة", r.Options.Schools, r.Filters),
			field(models.DimGender, "الجنس", r.Options.Genders, r.Filters),
			field(models.DimGradeLabel, "الصف", r.Options.GradeLabels, r.Filters),
			field(models.DimSubject, "المادة", r.Options.Subjects, r.Filters),
		},
	}
	if d.Empty {
		return d
	}

	a := r.Aggregates
	d.StudentCount = a.StudentCount
	d.BelowLimit = a.SchoolsBelowLimit
	for _, m := range a.SemesterMetrics {
		d.Metrics = append(d.Metrics, metric{Title: m.Title, Value: percent(m.Mean)})
	}
	if r.Rankings != nil && r.Rankings.Summary.SchoolCount > 0 {
		s := r.Rankings.Summary
		d.Summary = []metric{
			{Title: "أعلى معدل مدرسة", Value: percent(s.Best), Delta: delta(s.BestDelta)},
			{Title: "أدنى معدل مدرسة", Value: percent(s.Worst), Delta: delta(s.WorstDelta)},
			{Title: "المتوسط العام للمدارس", Value: percent(s.Overall)},
		}
	}
	return d
}

// field lists the dimension values with the active filter selected. A
// filter value missing from the options is kept so the form round-trips.
func field(dim models.Dimension, label string, values []string, filters map[models.Dimension]string) selectField {
	active, hasActive := filters[dim]
	f := selectField{Name: string(dim), Label: label}
	found := false
	for _, v := range values {
		sel := hasActive && v == active
		found = found || sel
		f.Options = append(f.Options, selectOption{Value: v, Selected: sel})
	}
	if hasActive && !found {
		f.Options = append(f.Options, selectOption{Value: active, Selected: true})
	}
	return f
}

func percent(s models.Score) string {
	if !s.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", s.Value)
}

func delta(s models.Score) string {
	if !s.Valid {
		return ""
	}
	return fmt.Sprintf("%+.2f%%", s.Value)
}

var headerTemplate = template.Must(template.New("header").Parse(`
<div dir="rtl" style="font-family:sans-serif;padding:12px 24px">
  <h2>📊 تحليل نتائج الطلاب</h2>
  {{if .Source}}<p style="color:#666">{{.Source}}</p>{{end}}
  <form method="get" action="{{.Action}}" style="display:flex;gap:12px;flex-wrap:wrap;align-items:end">
    {{range .Fields}}
    <label>{{.Label}}<br>
      <select name="{{.Name}}">
        <option value="">الكل</option>
        {{range .Options}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}
      </select>
    </label>
    {{end}}
    <button type="submit">تطبيق</button>
  </form>
  {{if .Empty}}
  <p style="color:#c62828;font-weight:bold">لا توجد بيانات مطابقة للفلاتر المحددة</p>
  {{else}}
  <p>عدد الطلاب: <b>{{.StudentCount}}</b></p>
  <div style="display:flex;gap:24px;flex-wrap:wrap">
    {{range .Metrics}}<div><div style="color:#666">{{.Title}}</div><div style="font-size:1.6em">{{.Value}}</div></div>{{end}}
  </div>
  {{if .Summary}}
  <div style="display:flex;gap:24px;flex-wrap:wrap;margin-top:12px">
    {{range .Summary}}<div><div style="color:#666">{{.Title}}</div><div style="font-size:1.6em">{{.Value}}</div>{{if .Delta}}<div>{{.Delta}}</div>{{end}}</div>{{end}}
  </div>
  {{end}}
  {{if .BelowLimit}}<p style="color:#666">مدارس دون الحد الأدنى لعدد الطلاب: {{.BelowLimit}}</p>{{end}}
  {{end}}
  {{if .APIURL}}<p><a href="{{.APIURL}}">JSON</a></p>{{end}}
</div>
`))

var emptyTemplate = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html lang="ar">
<head><meta charset="utf-8"><title>تحليل نتائج الطلاب</title></head>
<body>{{.}}</body>
</html>
`))
