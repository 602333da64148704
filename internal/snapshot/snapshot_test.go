package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantwatch/internal/scraper"
)

func TestEncodeShape(t *testing.T) {
	s := New(time.Date(2025, 10, 18, 6, 30, 0, 0, time.UTC), []scraper.Item{
		{Title: "Výzva <IROP> & spol.", URL: "https://example.org/x?a=1&b=2", Source: "NSA – aktuality"},
	})

	data, err := s.Encode()
	require.NoError(t, err)

	expected := `{
  "generated_at": "2025-10-18T06:30:00Z",
  "items": [
    {
      "title": "Výzva <IROP> & spol.",
      "url": "https://example.org/x?a=1&b=2",
      "source": "NSA – aktuality"
    }
  ]
}
`
	assert.Equal(t, expected, string(data))
}

func TestEmptySnapshotHasEmptyArray(t *testing.T) {
	data, err := New(time.Unix(0, 0), nil).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items": []`)
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "grants.json")
	w := NewWriter(path)

	first := New(time.Now(), []scraper.Item{
		{Title: "A", URL: "https://a", Source: "s"},
		{Title: "B", URL: "https://b", Source: "s"},
	})
	require.NoError(t, w.Write(first))

	require.NoError(t, w.Write(New(time.Now(), nil)))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
