package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mslee98/crawl/models"
)

func TestPreFilterSoldOnly(t *testing.T) {
	f := NewPreFilter(FilterConfig{SoldOnly: true, MinPrice: 0}, newTestLogger())

	records := []*models.ListingRecord{
		{URL: "u1", Status: models.StatusSold, Price: won(10000)},
		{URL: "u2", Status: models.StatusSoldOut, Price: won(10000)},
		{URL: "u3", Status: models.StatusOnSale, Price: won(10000)},
		{URL: "u4", Status: models.StatusReserved, Price: won(10000)},
	}

	kept := f.Apply(records)

	assert.Len(t, kept, 2)
	assert.Equal(t, "u1", kept[0].URL)
	assert.Equal(t, "u2", kept[1].URL)
}

func TestPreFilterSoldOnlyDisabled(t *testing.T) {
	f := NewPreFilter(FilterConfig{SoldOnly: false, MinPrice: 0}, newTestLogger())

	records := []*models.ListingRecord{
		{URL: "u1", Status: models.StatusOnSale, Price: won(10000)},
		{URL: "u2", Status: models.StatusSold, Price: won(10000)},
	}

	assert.Len(t, f.Apply(records), 2)
}

func TestPreFilterCustomTerminalStatuses(t *testing.T) {
	f := NewPreFilter(FilterConfig{
		SoldOnly:         true,
		TerminalStatuses: []string{"거래완료"},
	}, newTestLogger())

	records := []*models.ListingRecord{
		{URL: "u1", Status: models.StatusSold, Price: won(10000)},
		{URL: "u2", Status: models.StatusSoldOut, Price: won(10000)},
	}

	kept := f.Apply(records)

	assert.Len(t, kept, 1)
	assert.Equal(t, "u1", kept[0].URL)
}

func TestPreFilterPriceBounds(t *testing.T) {
	tests := []struct {
		name     string
		minPrice int64
		maxPrice int64
		price    *int64
		want     bool
	}{
		{"at minimum", 35000, 0, won(35000), true},
		{"above minimum", 35000, 0, won(35001), true},
		{"below minimum", 35000, 0, won(34999), false},
		{"no parsed price", 0, 0, nil, false},
		{"at maximum", 35000, 100000, won(100000), true},
		{"above maximum", 35000, 100000, won(100001), false},
		{"zero maximum is unbounded", 35000, 0, won(99999999), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewPreFilter(FilterConfig{MinPrice: tt.minPrice, MaxPrice: tt.maxPrice}, newTestLogger())
			kept := f.Apply([]*models.ListingRecord{{URL: "u1", Price: tt.price}})
			assert.Equal(t, tt.want, len(kept) == 1)
		})
	}
}

func TestPartitionForDetailOrdersAndDrops(t *testing.T) {
	f := NewPreFilter(FilterConfig{
		AllowedCategories: []string{"디지털기기", "e쿠폰"},
	}, newTestLogger())

	records := []*models.ListingRecord{
		{URL: "u1", Category: ""},
		{URL: "u2", Category: "디지털기기"},
		{URL: "u3", Category: "도서"},
		{URL: "u4", Category: "e쿠폰"},
		{URL: "u5", Category: ""},
	}

	got := f.PartitionForDetail(records)

	urls := make([]string, 0, len(got))
	for _, r := range got {
		urls = append(urls, r.URL)
	}
	// Known-allowed first, unknown after, known-disallowed gone.
	assert.Equal(t, []string{"u2", "u4", "u1", "u5"}, urls)
}

func TestPartitionForDetailNoCategoryFilter(t *testing.T) {
	f := NewPreFilter(FilterConfig{AllowedCategories: nil}, newTestLogger())

	records := []*models.ListingRecord{
		{URL: "u1", Category: "도서"},
		{URL: "u2", Category: ""},
	}

	got := f.PartitionForDetail(records)
	assert.Equal(t, records, got)
}

func TestApplyCategory(t *testing.T) {
	f := NewPreFilter(FilterConfig{
		AllowedCategories: []string{"디지털기기"},
	}, newTestLogger())

	records := []*models.ListingRecord{
		{URL: "u1", Category: "디지털기기"},
		{URL: "u2", Category: "도서"},
		{URL: "u3", Category: ""},
	}

	kept := f.ApplyCategory(records)

	assert.Len(t, kept, 1)
	assert.Equal(t, "u1", kept[0].URL)
}

func TestApplyCategoryDisabled(t *testing.T) {
	f := NewPreFilter(FilterConfig{AllowedCategories: nil}, newTestLogger())

	records := []*models.ListingRecord{
		{URL: "u1", Category: "도서"},
		{URL: "u2", Category: ""},
	}

	assert.Len(t, f.ApplyCategory(records), 2)
}
