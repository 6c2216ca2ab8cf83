package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mslee98/crawl/browser"
	"github.com/mslee98/crawl/models"
	"github.com/mslee98/crawl/utils"
)

// PageSource hands out browser tabs for the detail stage.
type PageSource interface {
	NewPage(ctx context.Context) (browser.Page, error)
}

// FetchFunc visits one detail URL on the given page and returns what it
// extracted. A zero DetailData with a nil error means the page had nothing
// usable.
type FetchFunc func(ctx context.Context, page browser.Page, url string) (models.DetailData, error)

// EnrichConfig bounds the detail stage.
type EnrichConfig struct {
	Concurrency           int
	PerFetchTimeout       time.Duration
	InterBatchDelay       time.Duration
	InterBatchDelayOnFail time.Duration
}

// EnrichStats summarizes one enrichment run.
type EnrichStats struct {
	Candidates int
	Batches    int
	Succeeded  int
	Failed     int
}

// Enricher visits detail pages in fixed-size batches over a reusable pool of
// tabs, merging what each visit yields back into the records.
type Enricher struct {
	cfg    EnrichConfig
	logger *utils.Logger

	sleep func(ctx context.Context, d time.Duration)
}

// NewEnricher creates an Enricher.
func NewEnricher(cfg EnrichConfig, logger *utils.Logger) *Enricher {
	return &Enricher{cfg: cfg, logger: logger, sleep: sleepFor}
}

type fetchResult struct {
	detail models.DetailData
	err    error
}

// Run enriches records in place. Records keep their order; a failed fetch
// leaves the record's list-stage values untouched. Between batches the run
// pauses for InterBatchDelay, or InterBatchDelayOnFail when the batch had a
// failure; no pause follows the last batch.
func (e *Enricher) Run(ctx context.Context, pages PageSource, fetch FetchFunc, records []*models.ListingRecord) (EnrichStats, error) {
	stats := EnrichStats{Candidates: len(records)}
	if len(records) == 0 {
		return stats, nil
	}

	poolSize := e.cfg.Concurrency
	if poolSize > len(records) {
		poolSize = len(records)
	}
	if poolSize < 1 {
		poolSize = 1
	}

	pool := make([]browser.Page, 0, poolSize)
	defer func() {
		for _, p := range pool {
			p.Close()
		}
	}()
	for i := 0; i < poolSize; i++ {
		page, err := pages.NewPage(ctx)
		if err != nil {
			return stats, fmt.Errorf("enrich: open page %d: %w", i+1, err)
		}
		pool = append(pool, page)
	}

	e.logger.Info("[enrich] Visiting %d detail pages, %d at a time", len(records), poolSize)

	for start := 0; start < len(records); start += poolSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		end := start + poolSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		stats.Batches++

		tasks := make([]func() fetchResult, len(batch))
		for i, rec := range batch {
			page := pool[i]
			url := rec.URL
			tasks[i] = func() fetchResult {
				fetchCtx := ctx
				if e.cfg.PerFetchTimeout > 0 {
					var cancel context.CancelFunc
					fetchCtx, cancel = context.WithTimeout(ctx, e.cfg.PerFetchTimeout)
					defer cancel()
				}
				detail, err := fetch(fetchCtx, page, url)
				return fetchResult{detail: detail, err: err}
			}
		}

		results := utils.Gather(tasks)

		anyFailed := false
		for i, res := range results {
			rec := batch[i]
			if res.err != nil {
				anyFailed = true
				stats.Failed++
				e.logger.Warn("[enrich] Detail fetch failed for %s: %v", rec.URL, res.err)
				continue
			}
			stats.Succeeded++
			mergeDetail(rec, res.detail)
			e.logger.Debug("[enrich] Detail %d/%d: %s", start+i+1, len(records), truncate(rec.Title, 40))
		}

		if end < len(records) {
			delay := e.cfg.InterBatchDelay
			if anyFailed {
				delay = e.cfg.InterBatchDelayOnFail
			}
			e.sleep(ctx, delay)
		}
	}

	return stats, nil
}

// mergeDetail overwrites record fields only with non-empty detail values, so
// a partial extraction never erases what the list page already gave us.
func mergeDetail(rec *models.ListingRecord, d models.DetailData) {
	if d.Title != "" {
		rec.Title = d.Title
	}
	if d.Location != "" {
		rec.Location = d.Location
	}
	if d.Category != "" {
		rec.Category = d.Category
	}
	if d.SellerNickname != "" {
		rec.SellerNickname = d.SellerNickname
	}
	if d.MannerTemp != "" {
		rec.MannerTemp = d.MannerTemp
	}
	if d.Description != "" {
		rec.Description = d.Description
	}
	if d.ImageCount > 0 {
		rec.ImageCount = d.ImageCount
	}
	if d.ChatCount > 0 {
		rec.ChatCount = d.ChatCount
	}
	if d.InterestCount > 0 {
		rec.InterestCount = d.InterestCount
	}
	if d.ViewCount > 0 {
		rec.ViewCount = d.ViewCount
	}
}

func sleepFor(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
