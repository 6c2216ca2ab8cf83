package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mslee98/crawl/browser"
	"github.com/mslee98/crawl/config"
	"github.com/mslee98/crawl/scraper/daangn"
	"github.com/mslee98/crawl/services"
	"github.com/mslee98/crawl/storage"
	"github.com/mslee98/crawl/utils"
)

func main() {
	logger := utils.NewLogger()
	defer logger.Sync()

	cfg := config.Load()

	logger.Info("=== Daangn Scraping System starting ===")
	logger.Info("Config: keyword %q | target %d cards | detail concurrency %d",
		cfg.Keyword, cfg.TargetCount, cfg.DetailConcurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	br, err := browser.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to launch browser: %v", err)
		os.Exit(1)
	}
	defer br.Close()

	result, err := daangn.New(cfg, logger, br).Run(ctx)
	if err != nil {
		if errors.Is(err, daangn.ErrNoQualifyingListings) {
			logger.Warn("조건에 맞는 게시글이 없습니다.")
			fmt.Printf("\n총 크롤링 시간: %s\n\n", formatElapsed(result.Elapsed))
			return
		}
		logger.Error("Daangn crawl failed: %v", err)
		os.Exit(1)
	}

	logger.Info("Crawl finished: %d listings (cards seen %d, detail visited %d, detail failed %d)",
		len(result.Records), result.CardsSeen, result.DetailVisited, result.DetailFailed)

	path := storage.ResultPath(cfg.ResultsDir, cfg.OutputPrefix, time.Now())
	csvWriter, err := storage.NewCSVWriter(path, cfg.ExtendedDetail)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	if err := csvWriter.Write(result.Records); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Results saved to %s", path)
	}

	insightRecords := result.Records
	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
		} else {
			defer pgWriter.Close()
			if err := pgWriter.Write(result.Records); err != nil {
				logger.Error("PostgreSQL write failed: %v", err)
			} else {
				logger.Info("Listings stored in PostgreSQL (table: listings)")
			}
			if dbRecords, err := pgWriter.FetchAll(); err != nil {
				logger.Error("Failed to fetch listings from DB for insights: %v", err)
			} else {
				insightRecords = dbRecords
			}
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(insightRecords))

	fmt.Printf("\n총 크롤링 시간: %s\n", formatElapsed(result.Elapsed))
	fmt.Printf("  Done. Results saved to %s\n\n", path)
}

// formatElapsed renders a duration the way the crawl summary prints it,
// like "3분 12초 (192.4초)".
func formatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if mins := int(secs) / 60; mins > 0 {
		return fmt.Sprintf("%d분 %d초 (%.1f초)", mins, int(secs)%60, secs)
	}
	return fmt.Sprintf("%.1f초", secs)
}
