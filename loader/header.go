package loader

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// headerScanRows is how many leading rows may hold titles before the header.
const headerScanRows = 10

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}$`),
}

// findHeaderRow returns the index of the first row among the leading rows in
// which at least half of the non-blank cells look like headers, and which has
// at least two of them. Sheets often carry a title banner above the header.
// Returns -1 when every row is blank.
func findHeaderRow(rows [][]string) int {
	first := -1
	for i, row := range rows {
		if i >= headerScanRows {
			break
		}
		filled, headerLike := 0, 0
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			filled++
			if isLikelyHeader(cell) {
				headerLike++
			}
		}
		if filled == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		if headerLike >= 2 && float64(headerLike)/float64(filled) >= 0.5 {
			return i
		}
	}
	return first
}

// isLikelyHeader определяет, похож ли текст на заголовок
func isLikelyHeader(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return false
	}
	for _, p := range datePatterns {
		if p.MatchString(text) {
			return false
		}
	}

	letters, others := 0, 0
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
		default:
			others++
		}
	}
	total := letters + others
	return letters > 0 && float64(letters)/float64(total) >= 0.3
}
