package daangn

import (
	"context"
	"fmt"

	"github.com/mslee98/crawl/browser"
	"github.com/mslee98/crawl/models"
)

type detailData struct {
	Title          string `json:"title"`
	Location       string `json:"location"`
	Category       string `json:"category"`
	SellerNickname string `json:"seller_nickname"`
	MannerTemp     string `json:"manner_temperature"`
	Description    string `json:"description"`
	ImageCount     int    `json:"image_count"`
	ChatCount      int    `json:"chat_count"`
	InterestCount  int    `json:"interest_count"`
	ViewCount      int    `json:"view_count"`
}

const detailExtractJS = `
(function() {
	var out = { title: "", location: "", category: "" };

	var titleEl = document.querySelector('#main-content article div._4y5lbr4 h1') ||
	              document.querySelector('#main-content article h1') ||
	              document.querySelector('article h1');
	if (titleEl) out.title = titleEl.innerText.trim();

	var catH2 = document.querySelector('#main-content article section:nth-of-type(2) div h2._4y5lbr9') ||
	            document.querySelector('#main-content article section:nth-of-type(2) div h2');
	if (catH2) {
		var catLink = catH2.querySelector('a[href*="category_id"]') || catH2.querySelector('a');
		if (catLink) out.category = catLink.innerText.trim();
	}

	var profileAnchor = document.querySelector('a[aria-label*="프로필"]');
	if (profileAnchor) {
		var container = profileAnchor.closest('div');
		if (container) {
			var locLink = container.querySelector('a[href*="in="]');
			if (locLink) out.location = locLink.innerText.trim();
		}
	}

	return out;
})()
`

const detailExtractExtendedJS = `
(function() {
	var out = {
		title: "", location: "", category: "",
		seller_nickname: "", manner_temperature: "", description: "",
		image_count: 0, chat_count: 0, interest_count: 0, view_count: 0
	};

	var titleEl = document.querySelector('#main-content article div._4y5lbr4 h1') ||
	              document.querySelector('#main-content article h1') ||
	              document.querySelector('article h1');
	if (titleEl) out.title = titleEl.innerText.trim();

	var catH2 = document.querySelector('#main-content article section:nth-of-type(2) div h2._4y5lbr9') ||
	            document.querySelector('#main-content article section:nth-of-type(2) div h2');
	if (catH2) {
		var catLink = catH2.querySelector('a[href*="category_id"]') || catH2.querySelector('a');
		if (catLink) out.category = catLink.innerText.trim();
	}

	var profileAnchor = document.querySelector('a[aria-label*="프로필"]');
	if (profileAnchor) {
		var container = profileAnchor.closest('div');
		if (container) {
			var locLink = container.querySelector('a[href*="in="]');
			if (locLink) out.location = locLink.innerText.trim();

			var nameEl = profileAnchor.querySelector('span') || profileAnchor.querySelector('strong');
			if (nameEl) out.seller_nickname = nameEl.innerText.trim();

			var tempMatch = (container.innerText || "").match(/(\d{2}(?:\.\d)?)\s*°C/);
			if (tempMatch) out.manner_temperature = tempMatch[1] + "°C";
		}
	}

	var article = document.querySelector('#main-content article');
	if (article) {
		var paras = article.querySelectorAll('p');
		var texts = [];
		for (var i = 0; i < paras.length && texts.join(' ').length < 400; i++) {
			var t = paras[i].innerText.trim();
			if (t.length > 10) texts.push(t);
		}
		out.description = texts.join(' ').substring(0, 500);

		out.image_count = article.querySelectorAll('img').length;

		var counters = article.innerText || "";
		var chat = counters.match(/채팅\s*(\d+)/);
		if (chat) out.chat_count = parseInt(chat[1], 10);
		var interest = counters.match(/관심\s*(\d+)/);
		if (interest) out.interest_count = parseInt(interest[1], 10);
		var views = counters.match(/조회\s*(\d+)/);
		if (views) out.view_count = parseInt(views[1], 10);
	}

	return out;
})()
`

// fetchDetail visits one detail page and extracts whatever it exposes. The
// enricher bounds ctx with the per-fetch timeout.
func (s *Scraper) fetchDetail(ctx context.Context, page browser.Page, url string) (models.DetailData, error) {
	if err := page.Navigate(ctx, url); err != nil {
		return models.DetailData{}, fmt.Errorf("navigate: %w", err)
	}

	readyCtx, cancel := context.WithTimeout(ctx, s.cfg.DetailReadyTimeout)
	err := page.WaitReady(readyCtx, detailReadySelector)
	cancel()
	if err != nil {
		// The ready marker never showed; give the page a short grace period
		// and extract whatever rendered.
		if waitErr := page.Wait(ctx, s.cfg.DetailFallbackWait); waitErr != nil {
			return models.DetailData{}, waitErr
		}
	}

	script := detailExtractJS
	if s.cfg.ExtendedDetail {
		script = detailExtractExtendedJS
	}

	var d detailData
	if err := page.Extract(ctx, script, &d); err != nil {
		return models.DetailData{}, fmt.Errorf("extract: %w", err)
	}

	return models.DetailData{
		Title:          d.Title,
		Location:       d.Location,
		Category:       d.Category,
		SellerNickname: d.SellerNickname,
		MannerTemp:     d.MannerTemp,
		Description:    d.Description,
		ImageCount:     d.ImageCount,
		ChatCount:      d.ChatCount,
		InterestCount:  d.InterestCount,
		ViewCount:      d.ViewCount,
	}, nil
}
