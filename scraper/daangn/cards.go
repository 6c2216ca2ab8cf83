package daangn

import (
	"context"
	"fmt"
	"time"

	"github.com/mslee98/crawl/browser"
	"github.com/mslee98/crawl/models"
)

type cardData struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Location string `json:"location"`
	Time     string `json:"time"`
	Status   string `json:"status"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// Every search card is an anchor whose first div wraps a thumbnail area and
// a text area. The status badge sits on the thumbnail; title and price are
// the first two spans of the text area, location and posting time live in
// its second block.
const cardExtractJS = `
(function() {
	var results = [];

	document.querySelectorAll("a[data-gtm='search_article']").forEach(function(card) {
		var href = card.getAttribute("href") || "";
		var fullUrl = href ? "https://www.daangn.com" + href : "";

		var wrapper = card.querySelector(":scope > div");
		if (!wrapper) return;

		var children = wrapper.querySelectorAll(":scope > div");
		if (children.length < 2) return;

		var thumbnailArea = children[0];
		var textContainer = children[1];

		var status = "판매중";
		var statusSpan = thumbnailArea.querySelector("span");
		if (statusSpan) {
			var text = statusSpan.innerText.trim();
			if (text === "예약중" || text === "거래완료" || text === "판매완료") {
				status = text;
			}
		}

		var textDivs = textContainer.querySelectorAll(":scope > div");
		if (textDivs.length < 2) return;

		var infoDiv = textDivs[0];
		var metaDiv = textDivs[1];

		var spans = infoDiv.querySelectorAll("span");
		var title = spans.length > 0 ? spans[0].innerText.trim() : "";
		var price = spans.length > 1 ? spans[1].innerText.trim() : "";

		var locEl = metaDiv.querySelector("span span");
		var location = locEl ? locEl.innerText.trim() : "";

		var timeEl = metaDiv.querySelector("time");
		var time = timeEl ? timeEl.innerText.trim() : "";

		var categoryEl = card.querySelector('a[href*="category_id"]');
		var category = categoryEl ? categoryEl.innerText.trim() : "";

		if (!title) return;

		results.push({
			title: title,
			price: price,
			location: location,
			time: time,
			status: status,
			url: fullUrl,
			category: category
		});
	});

	return results;
})()
`

// extractCards pulls every loaded search card into a listing record. Cards
// without a URL cannot be deduplicated or visited, so they are dropped here.
func (s *Scraper) extractCards(ctx context.Context, page browser.Page) ([]*models.ListingRecord, error) {
	extractCtx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	var cards []cardData
	if err := page.Extract(extractCtx, cardExtractJS, &cards); err != nil {
		return nil, fmt.Errorf("extract cards: %w", err)
	}

	s.logger.Debug("[daangn] Extracted %d raw cards", len(cards))

	records := make([]*models.ListingRecord, 0, len(cards))
	now := time.Now()
	for _, c := range cards {
		if c.URL == "" {
			continue
		}
		records = append(records, &models.ListingRecord{
			Title:     c.Title,
			RawPrice:  c.Price,
			Location:  c.Location,
			PostedAt:  c.Time,
			Status:    models.ParseStatus(c.Status),
			Category:  c.Category,
			URL:       c.URL,
			ScrapedAt: now,
		})
	}

	return records, nil
}
