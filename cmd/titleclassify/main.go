package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mslee98/crawl/classify"
	"github.com/mslee98/crawl/utils"
)

const maxTokens = 1024

func main() {
	inPath := flag.String("in", "", "input CSV with a title column (required)")
	outPath := flag.String("out", "", "output CSV path (default <in>_classified.csv)")
	model := flag.String("model", "claude-3-5-haiku-latest", "Anthropic model name")
	batchSize := flag.Int("batch", 5, "titles per request")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: titleclassify -in results/daangn.csv [-out path] [-model name] [-batch n]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *outPath == "" {
		*outPath = strings.TrimSuffix(*inPath, ".csv") + "_classified.csv"
	}

	logger := utils.NewLogger()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		logger.Error("ANTHROPIC_API_KEY is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := classify.ReadTitledCSV(*inPath)
	if err != nil {
		logger.Error("Failed to read input: %v", err)
		os.Exit(1)
	}
	logger.Info("총 %d건 분류 시작 (배치 크기: %d, 모델: %s)", len(in.Rows), *batchSize, *model)

	classifier := classify.NewClassifier(
		classify.NewClient(apiKey, *model, maxTokens),
		classify.Config{BatchSize: *batchSize},
		logger,
	)

	classes, err := classifier.ClassifyTitles(ctx, in.Titles())
	if err != nil {
		logger.Error("Classification aborted: %v", err)
		os.Exit(1)
	}

	if err := classify.WriteClassifiedCSV(*outPath, in, classes); err != nil {
		logger.Error("Failed to write output: %v", err)
		os.Exit(1)
	}
	logger.Info("저장 완료: %s", *outPath)
}
