package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pivolan/go_utils"

	"github.com/pivolan/grades_analyzer/domain/models"
)

// MaxUploadSize bounds how much of a single upload is read into memory.
const MaxUploadSize = 64 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyWorkbook     = errors.New("file has no rows")
	ErrTooLarge          = errors.New("file too large")
)

var (
	tableExts   = []string{".xlsx", ".xlsm", ".csv"}
	archiveExts = []string{".zip", ".gz", ".lz4"}
)

// Supported reports whether a file name has an extension Load understands.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return go_utils.InArray(ext, tableExts) || go_utils.InArray(ext, archiveExts)
}

// Load reads an xlsx or csv table, unpacking zip, gzip or lz4 first when the
// name says so. The first sheet of a workbook is used.
func Load(name string, r io.Reader) (*models.RawTable, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	return loadBytes(name, data, 0)
}

func loadBytes(name string, data []byte, depth int) (*models.RawTable, error) {
	ext := strings.ToLower(filepath.Ext(name))

	if go_utils.InArray(ext, archiveExts) {
		if depth > 1 {
			return nil, fmt.Errorf("%s: nested archive: %w", name, ErrUnsupportedFormat)
		}
		inner, unpacked, err := unpackArchive(name, data)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", name, err)
		}
		raw, err := loadBytes(inner, unpacked, depth+1)
		if err != nil {
			return nil, err
		}
		raw.Source = name
		return raw, nil
	}

	var (
		raw *models.RawTable
		err error
	)
	switch ext {
	case ".xlsx", ".xlsm":
		raw, err = readXLSX(bytes.NewReader(data))
	case ".csv":
		raw, err = readCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	raw.Source = name
	return raw, nil
}

// fromRows picks the header row and returns the remaining non-blank rows as data.
func fromRows(rows [][]string) (*models.RawTable, error) {
	h := findHeaderRow(rows)
	if h < 0 {
		return nil, ErrEmptyWorkbook
	}
	raw := &models.RawTable{Columns: rows[h]}
	for _, row := range rows[h+1:] {
		if blankRow(row) {
			continue
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
