package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  a\n\tb  ", "a b"},
		{"", ""},
		{"   ", ""},
		{"Výzva č. 12", "Výzva č. 12"},
		{"already clean", "already clean"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Text(tt.input), "Text(%q)", tt.input)
	}
}

func TestTextIdempotent(t *testing.T) {
	inputs := []string{"  a\n\tb  ", "x  y   z", " dotace\r\n2025 ", ""}

	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "Text not idempotent for %q", in)
	}
}

func TestResolveURL(t *testing.T) {
	const base = "https://example.org/news/"

	tests := []struct {
		name     string
		href     string
		expected string
		ok       bool
	}{
		{"root relative", "/x?y=1", "https://example.org/x?y=1", true},
		{"path relative", "detail/5", "https://example.org/news/detail/5", true},
		{"absolute", "http://other.cz/a", "http://other.cz/a", true},
		{"protocol relative", "//cdn.example.org/f.pdf", "https://cdn.example.org/f.pdf", true},
		{"fragment dropped", "/x#top", "https://example.org/x", true},
		{"surrounding spaces", "  /x  ", "https://example.org/x", true},
		{"mailto", "mailto:a@b.com", "", false},
		{"javascript", "javascript:void(0)", "", false},
		{"fragment only", "#top", "", false},
		{"empty", "", "", false},
		{"ftp", "ftp://example.org/file", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveURL(base, tt.href)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
