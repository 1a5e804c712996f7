package analyzer

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pivolan/grades_analyzer/domain/models"
)

func TestRunSchoolScenario(t *testing.T) {
	rows := append(schoolRows("School A", 90, 80, 70), schoolRows("School B", 50, 55, 60, 65, 70)...)
	report, err := Run(rawTable(rows...), DefaultColumns(), Criteria{}, DefaultSettings())
	require.NoError(t, err)
	require.False(t, report.Empty)

	assert.Equal(t, []models.SchoolAggregate{{School: "School B", Mean: 60, Count: 5}}, report.Aggregates.Schools)
	want := []models.RankedSchool{{Rank: 1, School: "School B", Mean: 60, Count: 5}}
	assert.Equal(t, want, report.Rankings.Top)
	assert.Equal(t, want, report.Rankings.Bottom)
	assert.Equal(t, "60.00", fmt.Sprintf("%.2f", report.Rankings.Top[0].Mean))
}

func TestRunEmptyResult(t *testing.T) {
	report, err := Run(rawTable(sampleRows()...), DefaultColumns(), Criteria{Gender: Only("غير موجود")}, DefaultSettings())
	require.NoError(t, err)
	assert.True(t, report.Empty)
	assert.Nil(t, report.Aggregates)
	assert.Nil(t, report.Rankings)
	assert.NotEmpty(t, report.Options.Schools, "selectors are still offered")
}

func TestRunSchemaErrorHalts(t *testing.T) {
	raw := &models.RawTable{Columns: []string{"اسم الطالب", "الصف"}, Rows: [][]string{{"علي", "الأول"}}}
	report, err := Run(raw, DefaultColumns(), Criteria{}, DefaultSettings())
	assert.Nil(t, report)
	assert.True(t, IsSchemaError(err))
}

func TestRunIsIdempotent(t *testing.T) {
	rows := append(sampleRows(), schoolRows("مدرسة الأمل", 61, 72, 83, 94, 55, 66)...)
	raw := rawTable(rows...)
	criteria := Criteria{Subject: Only("الرياضيات")}
	p := New(DefaultColumns(), DefaultSettings(), nil)

	first, err := p.Run(raw, criteria)
	require.NoError(t, err)
	second, err := p.Run(raw, criteria)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunLogsInertFilters(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := New(DefaultColumns(), DefaultSettings(), zap.New(core))
	raw := &models.RawTable{
		Columns: []string{"اسم الطالب", "الصف", "الرياضيات"},
		Rows:    [][]string{{"علي", "الأول", "80"}},
	}

	report, err := p.Run(raw, Criteria{School: Only("مدرسة النور")})
	require.NoError(t, err)
	assert.False(t, report.Empty)
	assert.Equal(t, 1, logs.FilterMessage("filter ignored, dimension not in table").Len())
}

func TestPipelineSettingsDefaults(t *testing.T) {
	p := New(DefaultColumns(), Settings{TopN: 3}, nil)
	s := p.Settings()
	assert.Equal(t, 3, s.TopN)
	assert.Equal(t, MinSchoolCount, s.MinSchoolCount)
	assert.Equal(t, HistogramBins, s.HistogramBins)
	assert.Len(t, s.Semesters, 3)
}
