package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mslee98/crawl/models"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Search
	Keyword  string
	MinPrice int64
	MaxPrice int64

	// Filtering
	SoldOnly         bool
	TerminalStatuses []string
	CategoryAllow    []string
	NoCategoryFilter bool

	// List expansion
	TargetCount      int
	ListReadyTimeout time.Duration
	MorePollInterval time.Duration
	MorePollMax      time.Duration

	// Detail enrichment
	DetailConcurrency  int
	DetailTimeout      time.Duration
	DetailReadyTimeout time.Duration
	DetailFallbackWait time.Duration
	DetailDelay        time.Duration
	DetailDelayOnFail  time.Duration
	ExtendedDetail     bool

	MaxRetries int

	// Output
	ResultsDir   string
	OutputPrefix string

	// Browser
	Headless  bool
	ChromeBin string

	// Storage
	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	terminal := make([]string, 0, len(models.TerminalStatuses))
	for _, s := range models.TerminalStatuses {
		terminal = append(terminal, string(s))
	}

	return &Config{
		Keyword:  getEnv("KEYWORD", "애플"),
		MinPrice: getEnvInt64("MIN_PRICE", 35000),
		MaxPrice: getEnvInt64("MAX_PRICE", 0),

		SoldOnly:         getEnvBool("SOLD_ONLY", true),
		TerminalStatuses: getEnvList("TERMINAL_STATUSES", terminal),
		CategoryAllow:    getEnvList("CATEGORY_ALLOW", models.DefaultAllowedCategories),
		NoCategoryFilter: getEnvBool("NO_CATEGORY_FILTER", false),

		TargetCount:      getEnvInt("TARGET_COUNT", 1000),
		ListReadyTimeout: getEnvMs("LIST_WAIT_TIMEOUT_MS", 10000),
		MorePollInterval: getEnvMs("MORE_POLL_INTERVAL_MS", 200),
		MorePollMax:      getEnvMs("MORE_POLL_MAX_MS", 5000),

		DetailConcurrency:  getEnvInt("DETAIL_CONCURRENCY", 4),
		DetailTimeout:      getEnvMs("DETAIL_TIMEOUT_MS", 15000),
		DetailReadyTimeout: getEnvMs("DETAIL_READY_TIMEOUT_MS", 5000),
		DetailFallbackWait: getEnvMs("DETAIL_FALLBACK_MS", 200),
		DetailDelay:        getEnvMs("DETAIL_DELAY_MS", 800),
		DetailDelayOnFail:  getEnvMs("DETAIL_DELAY_ON_FAIL_MS", 200),
		ExtendedDetail:     getEnvBool("EXTENDED_DETAIL", false),

		MaxRetries: getEnvInt("MAX_RETRIES", 3),

		ResultsDir:   getEnv("RESULTS_DIR", "./results"),
		OutputPrefix: getEnv("OUTPUT_PREFIX", ""),

		Headless:  getEnvBool("HEADLESS", true),
		ChromeBin: getEnv("CHROME_BIN", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "crawler"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "crawler123"),
		PostgresDB:       getEnv("POSTGRES_DB", "daangn_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvMs(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
