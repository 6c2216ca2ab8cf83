package daangn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mslee98/crawl/browser"
	"github.com/mslee98/crawl/config"
	"github.com/mslee98/crawl/models"
	"github.com/mslee98/crawl/services"
	"github.com/mslee98/crawl/utils"
)

const (
	itemSelector        = `a[data-gtm='search_article']`
	moreButtonSelector  = `div[data-gtm='search_show_more_articles'] button`
	detailReadySelector = `#main-content article`

	listNavTimeout = 30 * time.Second
	extractTimeout = 20 * time.Second
)

// ErrNoQualifyingListings reports a crawl that finished cleanly but left
// nothing after filtering. Callers treat it as a normal outcome, not a
// failure.
var ErrNoQualifyingListings = errors.New("no listings match the configured filters")

// Browser hands out tabs of the shared browser process.
type Browser interface {
	NewPage(ctx context.Context) (browser.Page, error)
}

// Result is what one crawl run produced.
type Result struct {
	Records       []*models.ListingRecord
	CardsSeen     int
	DetailVisited int
	DetailFailed  int
	Elapsed       time.Duration
}

// Scraper drives the marketplace crawl end to end: load the search page,
// expand the list, extract cards, filter, then enrich via detail pages.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	browser Browser
	retry   *utils.RetryConfig
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger, b Browser) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		browser: b,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Run executes one crawl. When the run completes cleanly but no listing
// survives the filters, it returns the partial Result together with
// ErrNoQualifyingListings.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	searchURL := SearchURL(s.cfg.Keyword, s.cfg.MinPrice, s.cfg.MaxPrice)
	s.logger.Info("[daangn] Search URL: %s", searchURL)
	s.logger.Info("[daangn] Keyword: %s", s.cfg.Keyword)
	if s.cfg.MaxPrice > 0 {
		s.logger.Info("[daangn] Price window: %d원 ~ %d원", s.cfg.MinPrice, s.cfg.MaxPrice)
	} else {
		s.logger.Info("[daangn] Price floor: %d원 이상", s.cfg.MinPrice)
	}
	if s.cfg.SoldOnly {
		s.logger.Info("[daangn] Collecting sold listings only")
	}

	page, err := s.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open search page: %w", err)
	}
	defer page.Close()

	if err := s.loadSearchPage(ctx, page, searchURL); err != nil {
		return nil, err
	}

	var pageTitle string
	if err := page.Extract(ctx, "document.title", &pageTitle); err == nil {
		s.logger.Debug("[daangn] Page title: %s", pageTitle)
	}

	count := ExpandList(ctx, page, ExpandConfig{
		TargetCount:  s.cfg.TargetCount,
		PollInterval: s.cfg.MorePollInterval,
		PollDeadline: s.cfg.MorePollMax,
	}, s.logger)
	s.logger.Info("[daangn] List expansion finished with %d cards", count)

	records, err := s.extractCards(ctx, page)
	if err != nil {
		return nil, err
	}

	result := &Result{CardsSeen: len(records)}

	records = services.NewCleaner(s.logger).Clean(records)

	filter := services.NewPreFilter(s.filterConfig(), s.logger)
	records = filter.Apply(records)
	if len(records) == 0 {
		result.Elapsed = time.Since(start)
		return result, ErrNoQualifyingListings
	}

	toVisit := filter.PartitionForDetail(records)
	result.DetailVisited = len(toVisit)

	enricher := services.NewEnricher(services.EnrichConfig{
		Concurrency:           s.cfg.DetailConcurrency,
		PerFetchTimeout:       s.cfg.DetailTimeout,
		InterBatchDelay:       s.cfg.DetailDelay,
		InterBatchDelayOnFail: s.cfg.DetailDelayOnFail,
	}, s.logger)

	stats, err := enricher.Run(ctx, s.browser, s.fetchDetail, toVisit)
	if err != nil {
		return nil, err
	}
	result.DetailFailed = stats.Failed

	result.Records = filter.ApplyCategory(toVisit)
	result.Elapsed = time.Since(start)

	if len(result.Records) == 0 {
		return result, ErrNoQualifyingListings
	}
	return result, nil
}

// loadSearchPage navigates to the search results and waits until the first
// cards are visible, retrying the whole sequence on failure.
func (s *Scraper) loadSearchPage(ctx context.Context, page browser.Page, searchURL string) error {
	return s.retry.Do(ctx, "load-search-page", func() error {
		navCtx, cancel := context.WithTimeout(ctx, listNavTimeout)
		defer cancel()
		if err := page.Navigate(navCtx, searchURL); err != nil {
			return fmt.Errorf("navigate: %w", err)
		}

		readyCtx, cancelReady := context.WithTimeout(ctx, s.cfg.ListReadyTimeout)
		defer cancelReady()
		if err := page.WaitReady(readyCtx, itemSelector); err != nil {
			return fmt.Errorf("wait for cards: %w", err)
		}
		return nil
	})
}

func (s *Scraper) filterConfig() services.FilterConfig {
	fc := services.FilterConfig{
		SoldOnly:         s.cfg.SoldOnly,
		TerminalStatuses: s.cfg.TerminalStatuses,
		MinPrice:         s.cfg.MinPrice,
		MaxPrice:         s.cfg.MaxPrice,
	}
	if !s.cfg.NoCategoryFilter {
		fc.AllowedCategories = s.cfg.CategoryAllow
	}
	return fc
}
