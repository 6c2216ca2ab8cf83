package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/mslee98/crawl/models"
)

// utf8BOM makes Excel open the file as UTF-8, which Korean titles need.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var baseColumns = []string{"title", "price", "location", "time", "status", "category"}

var extendedColumns = append(baseColumns[:len(baseColumns):len(baseColumns)],
	"seller_nickname", "image_count", "chat_count", "interest_count",
	"view_count", "manner_temperature", "description", "url")

// ResultPath builds the timestamped output path for one crawl run, e.g.
// results/apple-sold-2025-03-01-143005.csv. An empty prefix drops the
// leading tag.
func ResultPath(dir, prefix string, now time.Time) string {
	name := now.Format("2006-01-02-150405") + ".csv"
	if prefix != "" {
		name = prefix + "-" + name
	}
	return filepath.Join(dir, name)
}

// CSVWriter writes listing records to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu       sync.Mutex
	file     *os.File
	writer   *csv.Writer
	extended bool
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the BOM and header row. Intermediate directories are created
// automatically. With extended set, the detail-page columns are included.
func NewCSVWriter(path string, extended bool) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	if _, err := f.Write(utf8BOM); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write BOM: %w", err)
	}

	w := csv.NewWriter(f)

	header := baseColumns
	if extended {
		header = extendedColumns
	}
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w, extended: extended}, nil
}

// Write appends one row per record. The price column carries the raw display
// price the way the marketplace showed it.
func (c *CSVWriter) Write(records []*models.ListingRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		row := []string{
			r.Title,
			r.RawPrice,
			r.Location,
			r.PostedAt,
			string(r.Status),
			r.Category,
		}
		if c.extended {
			row = append(row,
				r.SellerNickname,
				strconv.Itoa(r.ImageCount),
				strconv.Itoa(r.ChatCount),
				strconv.Itoa(r.InterestCount),
				strconv.Itoa(r.ViewCount),
				r.MannerTemp,
				r.Description,
				r.URL,
			)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
