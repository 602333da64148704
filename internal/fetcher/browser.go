package fetcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"grantwatch/internal/config"
	"grantwatch/internal/observability"
)

// chromeProcess: процесс браузера, который поднимает launcher.Launcher
type chromeProcess interface {
	Launch() (string, error)
	Kill()
}

// BrowserFetcher рендерит страницу в headless Chrome для источников,
// где список объявлений строится JavaScript'ом. Браузер запускается
// при первом обращении и живёт до Close.
type BrowserFetcher struct {
	cfg       config.RodConfig
	timeout   time.Duration
	userAgent string
	logger    *observability.Logger

	newLauncher func() chromeProcess
	dial        func(controlURL string) (*rod.Browser, error)

	mu      sync.Mutex
	browser *rod.Browser
}

func NewBrowserFetcher(cfg *config.Config, logger *observability.Logger) *BrowserFetcher {
	b := &BrowserFetcher{
		cfg:       cfg.Rod,
		timeout:   cfg.GetTotalTimeout(),
		userAgent: cfg.HTTP.UserAgent,
		logger:    logger,
		dial:      dialBrowser,
	}
	b.newLauncher = func() chromeProcess {
		l := launcher.New().Headless(b.cfg.Headless)
		if b.cfg.ChromePath != "" {
			l = l.Bin(b.cfg.ChromePath)
		}
		return l
	}
	return b
}

func dialBrowser(controlURL string) (*rod.Browser, error) {
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

func (b *BrowserFetcher) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	l := b.newLauncher()
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	browser, err := b.dial(controlURL)
	if err != nil {
		// Процесс уже запущен, без Kill он переживёт нас
		l.Kill()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	b.logger.Info("Headless browser started", "headless", b.cfg.Headless)
	b.browser = browser
	return browser, nil
}

func (b *BrowserFetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	browser, err := b.connect()
	if err != nil {
		return nil, err
	}

	tab, err := browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	defer func() {
		if err := tab.Close(); err != nil {
			b.logger.Warn("Failed to close tab", "url", urlStr, "error", err.Error())
		}
	}()

	page := tab.Context(ctx).Timeout(b.timeout)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.userAgent}); err != nil {
		return nil, fmt.Errorf("browser: set user agent: %w", err)
	}

	// Статус берём из ответа на сам документ, не на ресурсы страницы
	var status int
	waitDocument := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			status = e.Response.Status
			return true
		}
		return false
	})

	if err := page.Navigate(urlStr); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", urlStr, err)
	}
	waitDocument()

	if status < 200 || status > 299 {
		return nil, &StatusError{URL: urlStr, StatusCode: status}
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("browser: wait load %s: %w", urlStr, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("browser: get DOM: %w", err)
	}

	return &FetchResponse{
		StatusCode: status,
		Body:       []byte(html),
		URL:        urlStr,
	}, nil
}

// Close останавливает браузер, если он запускался
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}
