package analyzer

import (
	"fmt"
	"strings"
)

// CleanHeaders trims every header and names blank ones column_N, then
// suffixes duplicates so each header is unique. trimmed keeps the names
// before the suffixes, index for index.
func CleanHeaders(raw []string) (trimmed, unique []string) {
	trimmed = make([]string, len(raw))
	for i, h := range raw {
		trimmed[i] = cleanHeaderName(h, i)
	}
	return trimmed, ValidateHeaders(trimmed)
}

func cleanHeaderName(header string, index int) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return generateColumnName(index)
	}
	return header
}

// generateColumnName создает имя столбца по индексу
func generateColumnName(index int) string {
	return fmt.Sprintf("column_%d", index+1)
}

// ValidateHeaders проверяет и исправляет дубликаты в заголовках
func ValidateHeaders(headers []string) []string {
	seen := make(map[string]int)
	result := make([]string, len(headers))

	for i, header := range headers {
		originalHeader := header
		counter := 1

		for {
			if count, exists := seen[header]; exists {
				header = fmt.Sprintf("%s_%d", originalHeader, counter)
				counter++
			} else {
				seen[header] = count + 1
				break
			}
		}

		result[i] = header
	}

	return result
}
