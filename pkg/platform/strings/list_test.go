package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"only separators", " , ,", []string{}},
		{"single origin", "https://app.servicem8.com", []string{"https://app.servicem8.com"}},
		{
			"trims and keeps order",
			" https://go.servicem8.com ,https://app.servicem8.com",
			[]string{"https://go.servicem8.com", "https://app.servicem8.com"},
		},
		{
			"drops repeats",
			"https://app.servicem8.com, https://app.servicem8.com ,https://go.servicem8.com",
			[]string{"https://app.servicem8.com", "https://go.servicem8.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.raw))
		})
	}
}

func TestDedupeAndTrimNil(t *testing.T) {
	assert.Nil(t, DedupeAndTrim(nil))
}
