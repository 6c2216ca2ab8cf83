package services

import (
	"strings"

	"github.com/mslee98/crawl/models"
	"github.com/mslee98/crawl/utils"
)

// FilterConfig describes which listings survive the filter stages.
// A nil AllowedCategories disables category filtering entirely.
type FilterConfig struct {
	SoldOnly          bool
	TerminalStatuses  []string
	MinPrice          int64
	MaxPrice          int64
	AllowedCategories []string
}

// PreFilter applies the cheap status and price checks before any detail page
// is visited, and the category checks around the detail stage.
type PreFilter struct {
	cfg      FilterConfig
	terminal map[models.Status]struct{}
	allowed  map[string]struct{}
	logger   *utils.Logger
}

// NewPreFilter builds a PreFilter from cfg. When SoldOnly is set without an
// explicit status list, the marketplace's own sold markers are used.
func NewPreFilter(cfg FilterConfig, logger *utils.Logger) *PreFilter {
	f := &PreFilter{cfg: cfg, logger: logger}

	if cfg.SoldOnly {
		f.terminal = make(map[models.Status]struct{})
		if len(cfg.TerminalStatuses) == 0 {
			for _, s := range models.TerminalStatuses {
				f.terminal[s] = struct{}{}
			}
		} else {
			for _, s := range cfg.TerminalStatuses {
				f.terminal[models.Status(strings.TrimSpace(s))] = struct{}{}
			}
		}
	}

	if cfg.AllowedCategories != nil {
		f.allowed = make(map[string]struct{}, len(cfg.AllowedCategories))
		for _, c := range cfg.AllowedCategories {
			f.allowed[strings.TrimSpace(c)] = struct{}{}
		}
	}

	return f
}

// Apply runs the status filter followed by the price filter. Records without
// a parseable price never pass a price bound.
func (f *PreFilter) Apply(records []*models.ListingRecord) []*models.ListingRecord {
	result := make([]*models.ListingRecord, 0, len(records))

	for _, r := range records {
		if f.cfg.SoldOnly {
			if _, ok := f.terminal[r.Status]; !ok {
				continue
			}
		}

		if r.Price == nil {
			continue
		}
		if *r.Price < f.cfg.MinPrice {
			continue
		}
		if f.cfg.MaxPrice > 0 && *r.Price > f.cfg.MaxPrice {
			continue
		}

		result = append(result, r)
	}

	f.logger.Info("[filter] Status and price filter: %d -> %d listings",
		len(records), len(result))
	return result
}

// PartitionForDetail orders records for the detail stage: known-allowed
// categories first, then records whose category is still unknown. Records
// with a known category outside the allow-set are dropped here so no detail
// page is wasted on them. With category filtering disabled the input comes
// back unchanged.
func (f *PreFilter) PartitionForDetail(records []*models.ListingRecord) []*models.ListingRecord {
	if f.allowed == nil {
		return records
	}

	knownAllowed := make([]*models.ListingRecord, 0, len(records))
	unknown := make([]*models.ListingRecord, 0)
	skipped := 0

	for _, r := range records {
		category := strings.TrimSpace(r.Category)
		if category == "" {
			unknown = append(unknown, r)
			continue
		}
		if _, ok := f.allowed[category]; ok {
			knownAllowed = append(knownAllowed, r)
		} else {
			skipped++
		}
	}

	if skipped > 0 {
		f.logger.Info("[filter] Skipping %d listings in disallowed categories before detail visits", skipped)
	}

	return append(knownAllowed, unknown...)
}

// ApplyCategory is the final pass once detail pages have resolved the
// remaining categories. Records whose category is still unknown are dropped
// along with disallowed ones.
func (f *PreFilter) ApplyCategory(records []*models.ListingRecord) []*models.ListingRecord {
	if f.allowed == nil {
		return records
	}

	result := make([]*models.ListingRecord, 0, len(records))
	for _, r := range records {
		if _, ok := f.allowed[strings.TrimSpace(r.Category)]; ok {
			result = append(result, r)
		}
	}

	f.logger.Info("[filter] Category filter: %d -> %d listings", len(records), len(result))
	return result
}
