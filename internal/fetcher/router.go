package fetcher

import (
	"context"
	"fmt"

	"grantwatch/internal/config"
	"grantwatch/internal/observability"
)

// PageFetcher загружает одну страницу по URL
type PageFetcher interface {
	Fetch(ctx context.Context, urlStr string) (*FetchResponse, error)
}

// Fetcher выбирает способ загрузки по настройке источника
type Fetcher struct {
	http    PageFetcher
	browser PageFetcher
}

func NewFetcher(cfg *config.Config, logger *observability.Logger) *Fetcher {
	f := &Fetcher{http: NewHTTPFetcher(cfg, logger)}
	if cfg.Rod.Enabled {
		f.browser = NewBrowserFetcher(cfg, logger)
	}
	return f
}

// NewFetcherWith собирает Fetcher из готовых реализаций; browser может быть nil.
func NewFetcherWith(http, browser PageFetcher) *Fetcher {
	return &Fetcher{http: http, browser: browser}
}

func (f *Fetcher) FetchSource(ctx context.Context, src config.SourceConfig) (*FetchResponse, error) {
	if src.Render {
		if f.browser == nil {
			return nil, fmt.Errorf("source %q requires a headless browser, but rod is disabled", src.Name)
		}
		return f.browser.Fetch(ctx, src.URL)
	}
	return f.http.Fetch(ctx, src.URL)
}

// Close освобождает браузер, если он был создан
func (f *Fetcher) Close() error {
	if c, ok := f.browser.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
