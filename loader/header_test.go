package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLikelyHeader(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"اسم الطالب", true},
		{"Math score", true},
		{"column_1", true},
		{"90", false},
		{"12.5", false},
		{"2024-01-15", false},
		{"15/01/2024", false},
		{"", false},
		{"   ", false},
		{"---", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, isLikelyHeader(tt.text))
		})
	}
}

func TestFindHeaderRow(t *testing.T) {
	assert.Equal(t, 0, findHeaderRow([][]string{header, row1}))
	assert.Equal(t, 2, findHeaderRow([][]string{{"تقرير"}, {"", ""}, header, row1}))
	assert.Equal(t, 1, findHeaderRow([][]string{{}, {"1", "2", "3"}, {"4", "5", "6"}}))
	assert.Equal(t, -1, findHeaderRow([][]string{{}, {" "}}))
}
