package services

import (
	"strings"
	"unicode"

	"github.com/mslee98/crawl/models"
	"github.com/mslee98/crawl/utils"
)

// Cleaner normalizes scraped records and collapses duplicates.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean drops records without a URL, keeps the first record per URL, and
// normalizes the text fields. The price column is parsed here so downstream
// stages only deal with numeric won.
func (c *Cleaner) Clean(records []*models.ListingRecord) []*models.ListingRecord {
	seen := make(map[string]struct{})
	result := make([]*models.ListingRecord, 0, len(records))

	for _, r := range records {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Title)
			continue
		}

		if _, dup := seen[url]; dup {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}
		seen[url] = struct{}{}

		r.URL = url
		r.Title = normaliseText(r.Title)
		r.Location = normaliseText(r.Location)
		r.Category = normaliseText(r.Category)
		r.PostedAt = normaliseText(r.PostedAt)
		r.Price = models.ParsePrice(r.RawPrice)

		result = append(result, r)
	}

	c.logger.Info("[cleaner] Cleaned %d -> %d listings (dropped %d)",
		len(records), len(result), len(records)-len(result))
	return result
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
