package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pivolan/grades_analyzer/config"
)

const testSemester = "إشعار بدرجات الفصل الدراسي الأول"

var testHeader = []string{
	"الفصل الدراسي", "اسم المدرسة", "الجنس", "اسم الطالب", "الصف",
	"الرياضيات", "العلوم", "التقدير العام",
}

// testRows gives School A five students averaging 90 and School B five averaging 70.
func testRows() [][]string {
	var rows [][]string
	for i := 0; i < 5; i++ {
		rows = append(rows,
			[]string{testSemester, "مدرسة أ", "ذكر", fmt.Sprintf("طالب أ%d", i), "الصف الأول", "90", "90", "ممتاز"},
			[]string{testSemester, "مدرسة ب", "أنثى", fmt.Sprintf("طالبة ب%d", i), "الصف الأول", "70", "70", "جيد"},
		)
	}
	return rows
}

func testCSV() []byte {
	var b strings.Builder
	b.WriteString(strings.Join(testHeader, ",") + "\n")
	for _, row := range testRows() {
		b.WriteString(strings.Join(row, ",") + "\n")
	}
	return []byte(b.String())
}

func testXLSX(t *testing.T, header []string, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	all := append([][]string{header}, rows...)
	for i, row := range all {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &cells))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.FromEnv()
	cfg.UploadDir = t.TempDir()
	cfg.PublicURL = "http://example.test"
	cfg.SheetURL = ""
	cfg.ColumnsFile = ""
	cfg.TgToken = ""
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	return app
}
