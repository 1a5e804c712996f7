// Package dashboard renders a report as an interactive HTML page.
package dashboard

import (
	"bytes"
	"html/template"
	"io"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// View carries what the page needs besides the report.
type View struct {
	// Action is the URL the filter form submits to.
	Action string
	// APIURL links the JSON form of the same report; optional.
	APIURL string
}

// Render writes the filter form followed by every chart of r. An empty
// report gets the form and a no-data notice only.
func Render(w io.Writer, r *models.Report, v View) error {
	var head bytes.Buffer
	if err := headerTemplate.Execute(&head, newHeaderData(r, v)); err != nil {
		return err
	}

	if r.Empty || r.Aggregates == nil {
		return emptyTemplate.Execute(w, template.HTML(head.String()))
	}

	page := components.NewPage()
	page.PageTitle = "تحليل نتائج الطلاب"
	page.SetLayout(components.PageFlexLayout)
	addCharts(page, r)

	var body bytes.Buffer
	if err := page.Render(&body); err != nil {
		return err
	}
	out := body.Bytes()
	if i := bytes.Index(out, []byte("<body>")); i >= 0 {
		at := i + len("<body>")
		out = append(out[:at:at], append(head.Bytes(), out[at:]...)...)
	} else {
		out = append(head.Bytes(), out...)
	}
	_, err := w.Write(out)
	return err
}

func addCharts(page *components.Page, r *models.Report) {
	a := r.Aggregates
	if len(a.SubjectMeans) > 0 {
		page.AddCharts(subjectMeansChart(a.SubjectMeans))
	}
	for _, d := range a.Distributions {
		page.AddCharts(distributionPie(d), distributionBar(d))
	}
	if len(a.Comparison) > 1 {
		page.AddCharts(comparisonChart(a.Comparison))
	}
	if a.SubjectHistogram != nil {
		page.AddCharts(histogramChart(a.SubjectHistogram))
	}
	if r.Rankings != nil && len(r.Rankings.Top) > 0 {
		page.AddCharts(
			rankingChart("أفضل المدارس حسب متوسط المعدل", r.Rankings.Top),
			rankingChart("أدنى المدارس حسب متوسط المعدل", r.Rankings.Bottom),
		)
	}
}
