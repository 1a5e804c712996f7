package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"

	"github.com/pivolan/grades_analyzer/domain/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(r io.Reader) (*models.RawTable, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	firstLine, _ := br.Peek(4096)

	cr := csv.NewReader(br)
	cr.Comma = detectSeparator(firstLine)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

// detectSeparator picks the most frequent of ',', ';' and tab on the first line.
func detectSeparator(sample []byte) rune {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}
	best, bestCount := ',', 0
	for _, sep := range []rune{',', ';', '\t'} {
		if n := bytes.Count(sample, []byte(string(sep))); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}
