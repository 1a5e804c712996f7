package analyzer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Columns maps every fixed field role to its header in the source sheet.
// Headers not claimed by a role are subject-score columns.
type Columns struct {
	Semester        string `yaml:"semester"`
	School          string `yaml:"school"`
	Gender          string `yaml:"gender"`
	StudentName     string `yaml:"student_name"`
	GradeLabel      string `yaml:"grade_label"`
	Behavior        string `yaml:"behavior"`
	Attendance      string `yaml:"attendance"`
	StatedAverage   string `yaml:"stated_average"`
	ComputedAverage string `yaml:"computed_average"`
	OverallGrade    string `yaml:"overall_grade"`
}

func DefaultColumns() Columns {
	return Columns{
		Semester:        "الفصل الدراسي",
		School:          "اسم المدرسة",
		Gender:          "الجنس",
		StudentName:     "اسم الطالب",
		GradeLabel:      "الصف",
		Behavior:        "السلوك",
		Attendance:      "المواظبة",
		StatedAverage:   "المعدل",
		ComputedAverage: "المعدل_المحتسب",
		OverallGrade:    "التقدير العام",
	}
}

// LoadColumns reads a YAML mapping; roles left out keep their defaults.
func LoadColumns(path string) (Columns, error) {
	cols := DefaultColumns()
	if path == "" {
		return cols, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cols, fmt.Errorf("read columns file: %w", err)
	}
	var override Columns
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cols, fmt.Errorf("parse columns file %s: %w", path, err)
	}
	cols = cols.merge(override)
	if err := cols.Validate(); err != nil {
		return cols, err
	}
	return cols, nil
}

func (c Columns) merge(o Columns) Columns {
	pick := func(base, over string) string {
		if strings.TrimSpace(over) != "" {
			return over
		}
		return base
	}
	return Columns{
		Semester:        pick(c.Semester, o.Semester),
		School:          pick(c.School, o.School),
		Gender:          pick(c.Gender, o.Gender),
		StudentName:     pick(c.StudentName, o.StudentName),
		GradeLabel:      pick(c.GradeLabel, o.GradeLabel),
		Behavior:        pick(c.Behavior, o.Behavior),
		Attendance:      pick(c.Attendance, o.Attendance),
		StatedAverage:   pick(c.StatedAverage, o.StatedAverage),
		ComputedAverage: pick(c.ComputedAverage, o.ComputedAverage),
		OverallGrade:    pick(c.OverallGrade, o.OverallGrade),
	}
}

// Validate checks that the identity roles are mapped and no header is claimed twice.
func (c Columns) Validate() error {
	if strings.TrimSpace(c.StudentName) == "" || strings.TrimSpace(c.GradeLabel) == "" {
		return fmt.Errorf("columns: student_name and grade_label must be mapped")
	}
	seen := map[string]bool{}
	for _, h := range c.roleHeaders() {
		if h == "" {
			continue
		}
		if seen[h] {
			return fmt.Errorf("columns: header %q mapped to more than one role", h)
		}
		seen[h] = true
	}
	return nil
}

// roleHeaders returns every mapped header, trimmed, in a fixed order.
func (c Columns) roleHeaders() []string {
	return []string{
		strings.TrimSpace(c.Semester),
		strings.TrimSpace(c.School),
		strings.TrimSpace(c.Gender),
		strings.TrimSpace(c.StudentName),
		strings.TrimSpace(c.GradeLabel),
		strings.TrimSpace(c.Behavior),
		strings.TrimSpace(c.Attendance),
		strings.TrimSpace(c.StatedAverage),
		strings.TrimSpace(c.ComputedAverage),
		strings.TrimSpace(c.OverallGrade),
	}
}

func (c Columns) excluded() map[string]bool {
	set := make(map[string]bool)
	for _, h := range c.roleHeaders() {
		if h != "" {
			set[h] = true
		}
	}
	return set
}
