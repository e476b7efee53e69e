package extractor

import (
	"strings"
	"testing"
)

func TestReadable(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{
			name: "statement text",
			pages: []string{
				"Flying Blue statement for JOHN DOE",
				"Miles balance as of 30 nov 2025 248928 Miles 183 XP",
			},
			want: true,
		},
		{
			name:  "too short",
			pages: []string{"183 XP"},
			want:  false,
		},
		{
			name:  "empty pages",
			pages: []string{"", "   "},
			want:  false,
		},
		{
			name: "garbage from a broken font encoding",
			pages: []string{
				strings.Repeat("�", 60),
			},
			want: false,
		},
		{
			name: "readable characters but no statement vocabulary",
			pages: []string{
				"the quick brown fox jumps over the lazy dog again and again today",
			},
			want: false,
		},
		{
			name: "dutch statement",
			pages: []string{
				"Overzicht van uw vluchten",
				"Saldo per 30 november 2025 is 248928",
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readable(tt.pages); got != tt.want {
				t.Errorf("readable(%q) = %v, want %v", tt.pages, got, tt.want)
			}
		})
	}
}

func TestExtractText_MissingFile(t *testing.T) {
	if _, err := ExtractText("testdata/does-not-exist.pdf"); err == nil {
		t.Error("expected error for a missing file")
	}
}
