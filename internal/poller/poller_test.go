package poller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantwatch/internal/config"
	"grantwatch/internal/fetcher"
	"grantwatch/internal/keywords"
	"grantwatch/internal/observability"
	"grantwatch/internal/scraper"
	"grantwatch/internal/storage"
	"grantwatch/internal/storage/sqlite"
)

type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
}

func (f *fakeFetcher) FetchSource(ctx context.Context, src config.SourceConfig) (*fetcher.FetchResponse, error) {
	if err := f.errs[src.URL]; err != nil {
		return nil, err
	}
	return &fetcher.FetchResponse{StatusCode: 200, Body: []byte(f.pages[src.URL]), URL: src.URL}, nil
}

type failingLedger struct {
	storage.Ledger
	failOn  string
	failErr error
	seen    map[string]bool
}

func (l *failingLedger) RecordIfNew(ctx context.Context, rec storage.SeenRecord) (bool, error) {
	if rec.URL == l.failOn {
		if l.failErr != nil {
			return false, l.failErr
		}
		return false, errors.New("disk I/O error")
	}
	if l.seen[rec.URL] {
		return false, nil
	}
	l.seen[rec.URL] = true
	return true, nil
}

var source = config.SourceConfig{
	Name:         "NSA – aktuality",
	URL:          "https://www.example.cz/aktuality/",
	ItemSelector: "article a",
	HrefAttr:     "href",
}

const page = `
<article><a href="/aktuality/dotace-sport-2025">Dotace na sport 2025</a></article>
<article><a href="/aktuality/kontakt">Kontakt</a></article>
<article><a href="/aktuality/vyzva-kabiny">Výzva: kabiny</a></article>`

func newTestPoller(t *testing.T, f SourceFetcher, l storage.Ledger) (*Poller, *observability.Metrics) {
	t.Helper()
	m := observability.NewMetrics()
	p := New(f, scraper.NewExtractor(keywords.MustCompile(config.DefaultKeywords...)), l, observability.NewNop(), m)
	p.now = func() time.Time { return time.Date(2025, 10, 18, 6, 0, 0, 0, time.UTC) }
	return p, m
}

func openLedger(t *testing.T) storage.Ledger {
	t.Helper()
	l, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "seen.sqlite"), 5*time.Second, observability.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestPollReportsOnlyNewItems(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{source.URL: page}}
	p, m := newTestPoller(t, f, openLedger(t))

	first := p.Poll(context.Background(), source)
	require.NoError(t, first.Err)
	assert.Equal(t, 2, first.Candidates)
	assert.Equal(t, []scraper.Item{
		{Title: "Dotace na sport 2025", URL: "https://www.example.cz/aktuality/dotace-sport-2025", Source: source.Name},
		{Title: "Výzva: kabiny", URL: "https://www.example.cz/aktuality/vyzva-kabiny", Source: source.Name},
	}, first.Items)

	second := p.Poll(context.Background(), source)
	require.NoError(t, second.Err)
	assert.Equal(t, 2, second.Candidates)
	assert.Empty(t, second.Items)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NewItemsTotal.WithLabelValues(source.Name)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CandidatesTotal.WithLabelValues(source.Name)))
}

func TestPollFetchFailureIsIsolated(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{source.URL: &fetcher.StatusError{URL: source.URL, StatusCode: 503}}}
	p, m := newTestPoller(t, f, openLedger(t))

	res := p.Poll(context.Background(), source)
	require.Error(t, res.Err)
	assert.True(t, res.Failed())
	assert.Empty(t, res.Items)
	assert.Equal(t, source.Name, res.Source)

	var statusErr *fetcher.StatusError
	assert.ErrorAs(t, res.Err, &statusErr)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues(source.Name)))
}

func TestPollLedgerFailureKeepsRecordedItems(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{source.URL: page}}
	l := &failingLedger{failOn: "https://www.example.cz/aktuality/vyzva-kabiny", seen: map[string]bool{}}
	p, _ := newTestPoller(t, f, l)

	res := p.Poll(context.Background(), source)
	require.Error(t, res.Err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "https://www.example.cz/aktuality/dotace-sport-2025", res.Items[0].URL)
}

func TestPollSkipsURLTooLongForLedger(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{source.URL: page}}
	l := &failingLedger{
		failOn:  "https://www.example.cz/aktuality/dotace-sport-2025",
		failErr: fmt.Errorf("%w: 900 > 850 characters", storage.ErrURLTooLong),
		seen:    map[string]bool{},
	}
	p, m := newTestPoller(t, f, l)

	res := p.Poll(context.Background(), source)
	require.NoError(t, res.Err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "https://www.example.cz/aktuality/vyzva-kabiny", res.Items[0].URL)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues(source.Name)))
}
