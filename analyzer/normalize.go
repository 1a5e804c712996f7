package analyzer

import (
	"math"
	"strconv"
	"strings"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// Normalize turns a raw upload into a Table: headers trimmed, rows without
// a student name or grade label dropped, subject columns inferred by
// exclusion, computed averages filled in.
func Normalize(raw *models.RawTable, cols Columns) (*models.Table, error) {
	if err := cols.Validate(); err != nil {
		return nil, &SchemaError{Source: raw.Source, Reason: err.Error()}
	}

	trimmed, headers := CleanHeaders(raw.Columns)
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[h] = i
	}
	lookup := func(role string) int {
		role = strings.TrimSpace(role)
		if role == "" {
			return -1
		}
		if i, ok := index[role]; ok {
			return i
		}
		return -1
	}

	nameIdx := lookup(cols.StudentName)
	labelIdx := lookup(cols.GradeLabel)
	var missing []string
	if nameIdx < 0 {
		missing = append(missing, strings.TrimSpace(cols.StudentName))
	}
	if labelIdx < 0 {
		missing = append(missing, strings.TrimSpace(cols.GradeLabel))
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Source: raw.Source, Reason: "required columns not found", Columns: missing}
	}

	excluded := cols.excluded()
	var subjects []string
	var subjectIdx []int
	for i, h := range headers {
		// a renamed duplicate of a role column is still that role
		if excluded[trimmed[i]] {
			continue
		}
		subjects = append(subjects, h)
		subjectIdx = append(subjectIdx, i)
	}
	if len(subjects) == 0 {
		return nil, &SchemaError{Source: raw.Source, Reason: "no subject columns found", Columns: headers}
	}

	semesterIdx := lookup(cols.Semester)
	schoolIdx := lookup(cols.School)
	genderIdx := lookup(cols.Gender)
	behaviorIdx := lookup(cols.Behavior)
	attendanceIdx := lookup(cols.Attendance)
	statedIdx := lookup(cols.StatedAverage)
	gradeIdx := lookup(cols.OverallGrade)

	t := &models.Table{
		Source:   raw.Source,
		Subjects: subjects,
		Dimensions: map[models.Dimension]bool{
			models.DimSemester:   semesterIdx >= 0,
			models.DimSchool:     schoolIdx >= 0,
			models.DimGender:     genderIdx >= 0,
			models.DimGradeLabel: true,
			models.DimSubject:    true,
		},
		Records: make([]*models.Record, 0, len(raw.Rows)),
	}

	for _, row := range raw.Rows {
		cell := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name, label := cell(nameIdx), cell(labelIdx)
		if name == "" || label == "" {
			continue
		}

		rec := &models.Record{
			StudentName:     name,
			GradeLabel:      label,
			School:          cell(schoolIdx),
			Semester:        cell(semesterIdx),
			Gender:          cell(genderIdx),
			Behavior:        cell(behaviorIdx),
			Attendance:      cell(attendanceIdx),
			StatedAverage:   ParseScore(cell(statedIdx)),
			OverallGradeRaw: cell(gradeIdx),
			Subjects:        make([]models.Score, len(subjectIdx)),
		}
		rec.OverallGrade, rec.HasGrade = models.ParseGrade(rec.OverallGradeRaw)
		for j, i := range subjectIdx {
			rec.Subjects[j] = ParseScore(cell(i))
		}
		t.Records = append(t.Records, rec)
	}

	Derive(t)
	return t, nil
}

var digitReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".", ",", ".", "%", "",
)

// ParseScore reads a numeric cell. Blank, non-numeric and non-finite cells are missing.
func ParseScore(s string) models.Score {
	s = strings.TrimSpace(digitReplacer.Replace(s))
	if s == "" {
		return models.Score{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Score{}
	}
	return models.Some(v)
}
