package services

import (
	"testing"
	"time"

	"github.com/mslee98/crawl/models"
	"github.com/mslee98/crawl/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func won(v int64) *int64 { return &v }

func TestCleanerDropsEmptyURL(t *testing.T) {
	c := NewCleaner(newTestLogger())
	records := []*models.ListingRecord{
		{Title: "URL 없음", RawPrice: "10,000원", URL: "", ScrapedAt: time.Now()},
		{Title: "URL 있음", RawPrice: "20,000원", URL: "https://www.daangn.com/kr/buy-sell/1", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(records)
	if len(cleaned) != 1 {
		t.Errorf("expected 1 listing after dropping empty URL, got %d", len(cleaned))
	}
}

func TestCleanerDeduplicatesURL(t *testing.T) {
	c := NewCleaner(newTestLogger())
	records := []*models.ListingRecord{
		{Title: "첫번째", URL: "https://www.daangn.com/kr/buy-sell/1", ScrapedAt: time.Now()},
		{Title: "두번째", URL: "https://www.daangn.com/kr/buy-sell/1", ScrapedAt: time.Now()},
		{Title: "세번째", URL: "https://www.daangn.com/kr/buy-sell/2", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(records)
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 listings after deduplication, got %d", len(cleaned))
	}
	if cleaned[0].Title != "첫번째" {
		t.Errorf("expected first occurrence kept, got %q", cleaned[0].Title)
	}
	if cleaned[1].Title != "세번째" {
		t.Errorf("expected order preserved, got %q", cleaned[1].Title)
	}
}

func TestCleanerIdempotent(t *testing.T) {
	c := NewCleaner(newTestLogger())
	records := []*models.ListingRecord{
		{Title: "  아이폰   15  프로 ", RawPrice: "1,200,000원", URL: " https://www.daangn.com/kr/buy-sell/1 "},
		{Title: "중복", URL: "https://www.daangn.com/kr/buy-sell/1"},
		{Title: "에어팟", RawPrice: "나눔", URL: "https://www.daangn.com/kr/buy-sell/2"},
	}

	once := c.Clean(records)
	twice := c.Clean(once)

	if len(twice) != len(once) {
		t.Fatalf("second pass changed length: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if twice[i] != once[i] {
			t.Errorf("record %d: second pass replaced the record", i)
		}
	}
	if twice[0].Title != "아이폰 15 프로" {
		t.Errorf("Title after second pass: got %q", twice[0].Title)
	}
	if twice[0].Price == nil || *twice[0].Price != 1200000 {
		t.Errorf("Price after second pass: got %v", twice[0].Price)
	}
	if twice[1].Price != nil {
		t.Errorf("expected nil price for 나눔 after second pass, got %d", *twice[1].Price)
	}
}

func TestCleanerParsesPrices(t *testing.T) {
	c := NewCleaner(newTestLogger())
	records := []*models.ListingRecord{
		{RawPrice: "1,200,000원", URL: "https://www.daangn.com/kr/buy-sell/1"},
		{RawPrice: "나눔", URL: "https://www.daangn.com/kr/buy-sell/2"},
	}

	cleaned := c.Clean(records)
	if cleaned[0].Price == nil || *cleaned[0].Price != 1200000 {
		t.Errorf("expected parsed price 1200000, got %v", cleaned[0].Price)
	}
	if cleaned[1].Price != nil {
		t.Errorf("expected nil price for 나눔, got %d", *cleaned[1].Price)
	}
}

func TestCleanerNormalisesText(t *testing.T) {
	c := NewCleaner(newTestLogger())
	records := []*models.ListingRecord{
		{
			Title:    "  아이폰   15  프로 ",
			Location: "\t역삼동\n",
			Category: " 디지털기기 ",
			URL:      " https://www.daangn.com/kr/buy-sell/1 ",
		},
	}

	cleaned := c.Clean(records)
	if cleaned[0].Title != "아이폰 15 프로" {
		t.Errorf("Title: got %q", cleaned[0].Title)
	}
	if cleaned[0].Location != "역삼동" {
		t.Errorf("Location: got %q", cleaned[0].Location)
	}
	if cleaned[0].Category != "디지털기기" {
		t.Errorf("Category: got %q", cleaned[0].Category)
	}
	if cleaned[0].URL != "https://www.daangn.com/kr/buy-sell/1" {
		t.Errorf("URL: got %q", cleaned[0].URL)
	}
}
