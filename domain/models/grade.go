package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Grade is the overall letter grade of a student, ordered best first.
type Grade int

const (
	Excellent Grade = iota
	VeryGood
	Good
	Acceptable

	NumGrades = 4
)

// Grades lists every grade in canonical display order.
var Grades = [NumGrades]Grade{Excellent, VeryGood, Good, Acceptable}

var gradeLabels = [NumGrades]string{
	Excellent:  "ممتاز",
	VeryGood:   "جيد جداً",
	Good:       "جيد",
	Acceptable: "مقبول",
}

func (g Grade) String() string {
	if g < 0 || int(g) >= NumGrades {
		return ""
	}
	return gradeLabels[g]
}

// ParseGrade maps a sheet label to a Grade. Spellings without the tanween
// ("جيد جدا") and with surrounding spaces are accepted.
func ParseGrade(label string) (Grade, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, false
	}
	for _, g := range Grades {
		if label == gradeLabels[g] {
			return g, true
		}
	}
	if strings.TrimRight(label, "ًا") == "جيد جد" {
		return VeryGood, true
	}
	return 0, false
}

// GradeCounts holds one counter per grade, indexed by Grade.
type GradeCounts [NumGrades]int

type GradeCount struct {
	Grade Grade  `json:"-"`
	Label string `json:"grade"`
	Count int    `json:"count"`
}

// Rows returns the counts in canonical order, zeros included.
func (c GradeCounts) Rows() []GradeCount {
	rows := make([]GradeCount, 0, NumGrades)
	for _, g := range Grades {
		rows = append(rows, GradeCount{Grade: g, Label: g.String(), Count: c[g]})
	}
	return rows
}

func (c GradeCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

func (c GradeCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Rows())
}

func (c *GradeCounts) UnmarshalJSON(data []byte) error {
	var rows []GradeCount
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	*c = GradeCounts{}
	for _, row := range rows {
		g, ok := ParseGrade(row.Label)
		if !ok {
			return fmt.Errorf("unknown grade %q", row.Label)
		}
		c[g] = row.Count
	}
	return nil
}
