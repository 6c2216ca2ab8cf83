package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Status is the sale state the marketplace shows as Korean badge text on a
// card or detail page.
type Status string

const (
	StatusOnSale   Status = "판매중"
	StatusReserved Status = "예약중"
	StatusSold     Status = "거래완료"
	StatusSoldOut  Status = "판매완료"
)

// TerminalStatuses are the markers meaning the listing is no longer for sale.
var TerminalStatuses = []Status{StatusSold, StatusSoldOut}

// ParseStatus maps raw badge text to a Status. Cards without a recognized
// marker are still on sale.
func ParseStatus(marker string) Status {
	switch Status(strings.TrimSpace(marker)) {
	case StatusReserved:
		return StatusReserved
	case StatusSold:
		return StatusSold
	case StatusSoldOut:
		return StatusSoldOut
	default:
		return StatusOnSale
	}
}

// Terminal reports whether the status means the sale is closed.
func (s Status) Terminal() bool {
	return s == StatusSold || s == StatusSoldOut
}

// AllCategories lists every category the marketplace exposes in its filter UI.
var AllCategories = []string{
	"디지털기기", "생활가전", "가구/인테리어", "생활/주방", "유아동", "유아도서",
	"여성의류", "여성잡화", "남성패션/잡화", "뷰티/미용", "스포츠/레저", "취미/게임/음반",
	"도서", "티켓/교환권", "e쿠폰", "가공식품", "건강기능식품", "반려동물용품", "식물",
	"기타 중고물품", "삽니다",
}

// DefaultAllowedCategories is the category allow-set used when none is
// configured.
var DefaultAllowedCategories = []string{"디지털기기", "남성패션/잡화", "티켓/교환권", "e쿠폰"}

// ListingRecord is one marketplace post as it moves through the pipeline.
// URL is the identity key. Detail-page values overwrite list-stage values
// only when non-empty, so a failed detail fetch never erases known data.
type ListingRecord struct {
	Title    string
	RawPrice string
	Price    *int64
	Location string
	PostedAt string
	Status   Status
	Category string
	URL      string

	// Filled only when the extended detail extraction is enabled.
	SellerNickname string
	MannerTemp     string
	Description    string
	ImageCount     int
	ChatCount      int
	InterestCount  int
	ViewCount      int

	ScrapedAt time.Time
}

// DetailData is what one detail-page visit yields. The zero value doubles as
// the empty-result sentinel for a failed fetch.
type DetailData struct {
	Title    string
	Location string
	Category string

	SellerNickname string
	MannerTemp     string
	Description    string
	ImageCount     int
	ChatCount      int
	InterestCount  int
	ViewCount      int
}

var digitRunRegexp = regexp.MustCompile(`\d+`)

// ParsePrice converts a display price like "1,200,000원" into won. It strips
// commas and the currency suffix, then takes the first run of digits; strings
// with no digits (나눔, 가격없음) yield nil.
func ParsePrice(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "원", "")

	match := digitRunRegexp.FindString(s)
	if match == "" {
		return nil
	}
	n, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// InsightReport holds the computed analytics over the final dataset.
type InsightReport struct {
	TotalListings      int
	SoldListings       int
	AveragePrice       int64
	MinPrice           int64
	MaxPrice           int64
	MostExpensive      *ListingRecord
	ListingsByCategory map[string]int
	ListingsByLocation map[string]int
}
