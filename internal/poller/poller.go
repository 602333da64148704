package poller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"grantwatch/internal/config"
	"grantwatch/internal/fetcher"
	"grantwatch/internal/observability"
	"grantwatch/internal/scraper"
	"grantwatch/internal/storage"
)

// SourceFetcher загружает страницу источника
type SourceFetcher interface {
	FetchSource(ctx context.Context, src config.SourceConfig) (*fetcher.FetchResponse, error)
}

// Result: итог опроса одного источника.
// Err != nil означает, что источник не отработал; Items при этом содержат
// то, что успело попасть в журнал до ошибки (эти ссылки уже не будут «новыми»
// в следующий раз, поэтому их нельзя терять).
type Result struct {
	Source     string
	Items      []scraper.Item
	Candidates int
	Err        error
}

// Failed: источник завершился с ошибкой
func (r Result) Failed() bool {
	return r.Err != nil
}

type Poller struct {
	fetcher   SourceFetcher
	extractor *scraper.Extractor
	ledger    storage.Ledger
	logger    *observability.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func New(
	f SourceFetcher,
	e *scraper.Extractor,
	l storage.Ledger,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Poller {
	return &Poller{
		fetcher:   f,
		extractor: e,
		ledger:    l,
		logger:    logger,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Poll: fetch → extract → RecordIfNew. Ошибки не выходят наружу,
// а возвращаются в Result.Err.
func (p *Poller) Poll(ctx context.Context, src config.SourceConfig) Result {
	res := Result{Source: src.Name}
	logger := p.logger.With("source", src.Name)

	resp, err := p.fetcher.FetchSource(ctx, src)
	if err != nil {
		return p.fail(logger, res, fmt.Errorf("fetch %s: %w", src.URL, err))
	}

	candidates, err := p.extractor.ExtractHTML(bytes.NewReader(resp.Body), src)
	if err != nil {
		return p.fail(logger, res, fmt.Errorf("parse %s: %w", src.URL, err))
	}
	res.Candidates = len(candidates)
	if p.metrics != nil {
		p.metrics.CandidatesTotal.WithLabelValues(src.Name).Add(float64(len(candidates)))
	}

	for _, c := range candidates {
		isNew, err := p.ledger.RecordIfNew(ctx, storage.SeenRecord{
			Source:    src.Name,
			URL:       c.URL,
			Title:     c.Title,
			CreatedAt: p.now(),
		})
		if errors.Is(err, storage.ErrURLTooLong) {
			// Ссылку этот журнал хранить не может; остальные пишем дальше
			logger.Warn("Link skipped", "url", c.URL, "error", err.Error())
			continue
		}
		if err != nil {
			return p.fail(logger, res, fmt.Errorf("record %s: %w", c.URL, err))
		}
		if !isNew {
			continue
		}
		res.Items = append(res.Items, scraper.Item{Title: c.Title, URL: c.URL, Source: src.Name})
		if p.metrics != nil {
			p.metrics.NewItemsTotal.WithLabelValues(src.Name).Inc()
		}
	}

	logger.Info("Source polled",
		"candidates", res.Candidates,
		"new_items", len(res.Items),
	)

	return res
}

func (p *Poller) fail(logger *observability.Logger, res Result, err error) Result {
	res.Err = err
	if p.metrics != nil {
		p.metrics.FailuresTotal.WithLabelValues(res.Source).Inc()
	}
	logger.Warn("Source failed", "error", err.Error())
	return res
}
