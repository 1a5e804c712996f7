package loader

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pivolan/grades_analyzer/domain/models"
)

func readXLSX(r io.Reader) (*models.RawTable, error) {
	// raw values: a 0.95 score formatted as a percent must not read as "95%"
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}
