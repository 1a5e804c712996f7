package analyzer

import (
	"fmt"

	"github.com/pivolan/grades_analyzer/domain/models"
)

var (
	sem1 = FixedSemesters[0].Label
	sem2 = FixedSemesters[1].Label
	sem3 = FixedSemesters[2].Label
)

var testHeader = []string{
	"الفصل الدراسي", " اسم المدرسة", "الجنس", "اسم الطالب ", "الصف",
	"الرياضيات", "العلوم", "اللغة العربية",
	"السلوك", "المواظبة", "المعدل", "التقدير العام",
}

type rowSpec struct {
	semester, school, gender, name, label string
	math, science, arabic                 string
	grade                                 string
}

func (r rowSpec) cells() []string {
	return []string{
		r.semester, r.school, r.gender, r.name, r.label,
		r.math, r.science, r.arabic,
		"100", "100", "", r.grade,
	}
}

func rawTable(rows ...rowSpec) *models.RawTable {
	raw := &models.RawTable{Source: "test.xlsx", Columns: testHeader}
	for _, r := range rows {
		raw.Rows = append(raw.Rows, r.cells())
	}
	return raw
}

func mustNormalize(raw *models.RawTable) *models.Table {
	t, err := Normalize(raw, DefaultColumns())
	if err != nil {
		panic(err)
	}
	return t
}

// sampleRows is a small two-semester, two-school dataset.
func sampleRows() []rowSpec {
	return []rowSpec{
		{sem1, "مدرسة النور", "ذكر", "أحمد", "الصف الأول", "90", "80", "70", "ممتاز"},
		{sem1, "مدرسة النور", "ذكر", "خالد", "الصف الأول", "60", "", "80", "جيد جداً"},
		{sem1, "مدرسة الفجر", "أنثى", "سارة", "الصف الثاني", "85", "95", "", "ممتاز"},
		{sem2, "مدرسة النور", "ذكر", "أحمد", "الصف الأول", "70", "70", "70", "جيد"},
		{sem2, "مدرسة الفجر", "أنثى", "سارة", "الصف الثاني", "", "", "", "جيد"},
		{sem2, "مدرسة الفجر", "أنثى", "", "الصف الثاني", "99", "99", "99", "ممتاز"},
		{sem2, "مدرسة الفجر", "أنثى", "منى", "", "99", "99", "99", "ممتاز"},
	}
}

// schoolRows builds n records for a school whose computed averages are the given scores.
func schoolRows(school string, scores ...float64) []rowSpec {
	rows := make([]rowSpec, 0, len(scores))
	for i, s := range scores {
		rows = append(rows, rowSpec{
			semester: sem1,
			school:   school,
			gender:   "ذكر",
			name:     fmt.Sprintf("%s-%d", school, i),
			label:    "الصف الأول",
			math:     fmt.Sprintf("%g", s),
			grade:    "جيد",
		})
	}
	return rows
}
