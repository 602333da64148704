package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	m := MustCompile(`dotace`, `npžp|npzp`, `přírodní\s*zahrady`)

	tests := []struct {
		text     string
		expected bool
	}{
		{"Nová DOTACE na sport", true},
		{"irrelevant text", false},
		{"Program NPZP 2025", true},
		{"Výzva NPŽP", true},
		{"Přírodní   zahrady pro školy", true},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, m.Match(tt.text), "Match(%q)", tt.text)
	}
}

func TestRelevant(t *testing.T) {
	m := MustCompile(`irop`)

	assert.True(t, m.Relevant("Aktuality", "https://example.org/irop/vyzva-12"))
	assert.True(t, m.Relevant("Nová výzva IROP", "https://example.org/a/1"))
	assert.False(t, m.Relevant("Kontakty", "https://example.org/kontakty"))
}

func TestRelevantDecodesURL(t *testing.T) {
	m := MustCompile(`výzva`, `přírodní\s*zahrady`)

	assert.True(t, m.Relevant("Více", "https://example.org/v%C3%BDzva-7"))
	assert.True(t, m.Relevant("Více", "https://example.org/p%C5%99%C3%ADrodn%C3%AD%20zahrady"))
	assert.False(t, m.Relevant("Více", "https://example.org/%zz"))
	assert.False(t, m.Relevant("Více", "https://example.org/vyzva-7"))
}

func TestEmptyMatcherMatchesNothing(t *testing.T) {
	m, err := Compile(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Match("dotace"))
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile([]string{"dotace", "("})
	assert.Error(t, err)

	_, err = Compile([]string{"  "})
	assert.Error(t, err)
}
