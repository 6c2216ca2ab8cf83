package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mslee98/crawl/models"
	"github.com/mslee98/crawl/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.ListingRecord) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByCategory: make(map[string]int),
		ListingsByLocation: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.ListingRecord

	for _, l := range listings {
		if l.Status.Terminal() {
			report.SoldListings++
		}
		if l.Price != nil {
			priced = append(priced, l)
		}
		if l.Category != "" {
			report.ListingsByCategory[l.Category]++
		}
		if l.Location != "" {
			report.ListingsByLocation[l.Location]++
		}
	}

	// Price stats (only listings with a parsed price)
	if len(priced) > 0 {
		report.MinPrice = *priced[0].Price
		report.MaxPrice = *priced[0].Price
		report.MostExpensive = priced[0]
		var total int64
		for _, l := range priced {
			p := *l.Price
			total += p
			if p < report.MinPrice {
				report.MinPrice = p
			}
			if p > report.MaxPrice {
				report.MaxPrice = p
				report.MostExpensive = l
			}
		}
		report.AveragePrice = total / int64(len(priced))
	}

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 DAANGN SCRAPE INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total listings kept : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Sold listings       : \033[1m%d\033[0m\n", r.SoldListings)
	fmt.Println()

	// Price Stats
	fmt.Printf("\033[1;33m  Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.MaxPrice > 0 {
		fmt.Printf("  Average price : \033[1;32m%s\033[0m\n", formatWon(r.AveragePrice))
		fmt.Printf("  Minimum price : \033[1;32m%s\033[0m\n", formatWon(r.MinPrice))
		fmt.Printf("  Maximum price : \033[1;32m%s\033[0m\n", formatWon(r.MaxPrice))
	} else {
		fmt.Printf("  No price data available\n")
	}
	fmt.Println()

	// Most Expensive
	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.Title, 50))
		fmt.Printf("  Location : %s\n", r.MostExpensive.Location)
		if r.MostExpensive.Price != nil {
			fmt.Printf("  Price    : \033[1;31m%s\033[0m\n", formatWon(*r.MostExpensive.Price))
		}
		fmt.Println()
	}

	s.printCountSection("Listings by Category", r.ListingsByCategory)
	s.printCountSection("Listings by Location", r.ListingsByLocation)

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func (s *InsightService) printCountSection(title string, counts map[string]int) {
	thin := strings.Repeat("─", 54)

	fmt.Printf("\033[1;33m  %s\033[0m\n", title)
	fmt.Printf("  %s\n", thin)

	if len(counts) == 0 {
		fmt.Printf("  No data\n")
		fmt.Println()
		return
	}

	type nameCount struct {
		name  string
		count int
	}
	var entries []nameCount
	for name, cnt := range counts {
		if name != "" {
			entries = append(entries, nameCount{name, cnt})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	for _, e := range entries {
		barLen := e.count
		if barLen > 40 {
			barLen = 40
		}
		bar := strings.Repeat("█", barLen)
		fmt.Printf("  %-24s %s (%d)\n", truncate(e.name, 22), bar, e.count)
	}
	fmt.Println()
}

// formatWon renders a won amount with thousands separators, e.g. 1234567
// becomes "1,234,567원".
func formatWon(v int64) string {
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String() + "원"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
