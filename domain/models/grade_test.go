package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGrade(t *testing.T) {
	tests := []struct {
		in     string
		want   Grade
		wantOk bool
	}{
		{"ممتاز", Excellent, true},
		{" جيد جداً ", VeryGood, true},
		{"جيد جدا", VeryGood, true},
		{"جيد", Good, true},
		{"مقبول", Acceptable, true},
		{"", 0, false},
		{"راسب", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseGrade(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGradeOrder(t *testing.T) {
	labels := make([]string, 0, NumGrades)
	for _, g := range Grades {
		labels = append(labels, g.String())
	}
	assert.Equal(t, []string{"ممتاز", "جيد جداً", "جيد", "مقبول"}, labels)
	assert.Equal(t, "", Grade(7).String())
}

func TestGradeCountsJSON(t *testing.T) {
	data, err := json.Marshal(GradeCounts{3, 0, 1, 0})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"grade":"ممتاز","count":3},
		{"grade":"جيد جداً","count":0},
		{"grade":"جيد","count":1},
		{"grade":"مقبول","count":0}
	]`, string(data))
	assert.Equal(t, 4, GradeCounts{3, 0, 1, 0}.Total())

	var back GradeCounts
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, GradeCounts{3, 0, 1, 0}, back)
	assert.Error(t, json.Unmarshal([]byte(`[{"grade":"راسب","count":1}]`), &back))
}

func TestTableView(t *testing.T) {
	a, b := &Record{StudentName: "a"}, &Record{StudentName: "b"}
	table := &Table{Subjects: []string{"x", "y"}, Dimensions: map[Dimension]bool{DimSchool: true}, Records: []*Record{a, b}}

	view := table.View([]*Record{b})
	assert.Equal(t, 1, view.Len())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, view.SubjectIndex("y"))
	assert.Equal(t, -1, view.SubjectIndex("z"))
	assert.True(t, view.HasDimension(DimSchool))
	assert.False(t, view.HasDimension(DimGender))
}
