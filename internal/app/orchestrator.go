package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"grantwatch/internal/config"
	"grantwatch/internal/observability"
	"grantwatch/internal/poller"
	"grantwatch/internal/scraper"
	"grantwatch/internal/snapshot"
)

// SourcePoller опрашивает один источник и никогда не возвращает ошибку наружу
type SourcePoller interface {
	Poll(ctx context.Context, src config.SourceConfig) poller.Result
}

type Orchestrator struct {
	sources     []config.SourceConfig
	concurrency int
	metricsPath string
	logger      *observability.Logger
	poller      SourcePoller
	writer      *snapshot.Writer
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	p SourcePoller,
	w *snapshot.Writer,
	m *observability.Metrics,
) *Orchestrator {
	return &Orchestrator{
		sources:     cfg.Sources,
		concurrency: cfg.Poll.Concurrency,
		metricsPath: cfg.Observability.MetricsPath,
		logger:      logger,
		poller:      p,
		writer:      w,
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type RunResult struct {
	Snapshot *snapshot.Snapshot
	Results  []poller.Result
}

// Failures возвращает результаты источников, завершившихся с ошибкой
func (r *RunResult) Failures() []poller.Result {
	var failed []poller.Result
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Run опрашивает все источники, собирает новые ссылки и перезаписывает снимок.
// Ошибка источника не прерывает запуск; ошибкой считается только сбой записи снимка.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	started := o.now()

	o.logger.Info("Starting run",
		"sources", len(o.sources),
		"concurrency", o.concurrency,
	)

	results := make([]poller.Result, len(o.sources))

	if o.concurrency <= 1 {
		for i, src := range o.sources {
			results[i] = o.poller.Poll(ctx, src)
		}
	} else {
		// Результаты кладём по индексу, чтобы порядок в снимке не зависел от гонки
		var g errgroup.Group
		g.SetLimit(o.concurrency)
		for i, src := range o.sources {
			g.Go(func() error {
				results[i] = o.poller.Poll(ctx, src)
				return nil
			})
		}
		_ = g.Wait()
	}

	var items []scraper.Item
	for _, res := range results {
		items = append(items, res.Items...)
	}

	finished := o.now()
	snap := snapshot.New(finished, items)

	if err := o.writer.Write(snap); err != nil {
		o.logger.Error("Snapshot write failed",
			"path", o.writer.Path(),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	run := &RunResult{Snapshot: snap, Results: results}

	if o.metrics != nil {
		o.metrics.ObserveRun(started, finished)
		if o.metricsPath != "" {
			if err := o.metrics.WriteTextfile(o.metricsPath); err != nil {
				o.logger.Warn("Metrics write failed", "path", o.metricsPath, "error", err.Error())
			}
		}
	}

	o.logger.Info("Run completed",
		"new_items", len(items),
		"failed_sources", len(run.Failures()),
		"snapshot", o.writer.Path(),
		"elapsed_ms", finished.Sub(started).Milliseconds(),
	)

	return run, nil
}
