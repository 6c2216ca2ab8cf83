package daangn

import (
	"context"
	"time"

	"github.com/mslee98/crawl/browser"
	"github.com/mslee98/crawl/utils"
)

// ExpandConfig bounds the list expansion loop.
type ExpandConfig struct {
	TargetCount  int
	PollInterval time.Duration
	PollDeadline time.Duration
}

var moreButtonEnabledJS = `(function() {
	var btn = document.querySelector("` + moreButtonSelector + `");
	return !!btn && !btn.disabled;
})()`

// ExpandList clicks the "show more" button until the card count reaches
// cfg.TargetCount, the button disappears or disables, or a click stops
// growing the list. It returns the card count it ended on. Errors end the
// expansion with whatever was already loaded; the cards on the page are
// still worth extracting.
func ExpandList(ctx context.Context, page browser.Page, cfg ExpandConfig, logger *utils.Logger) int {
	prev := 0

	for {
		if ctx.Err() != nil {
			return prev
		}

		count, err := page.CountMatching(ctx, itemSelector)
		if err != nil {
			logger.Warn("[daangn] Counting cards failed: %v", err)
			return prev
		}
		logger.Debug("[daangn] Current card count: %d", count)

		if count >= cfg.TargetCount {
			logger.Info("[daangn] Reached %d cards (target %d)", count, cfg.TargetCount)
			return count
		}
		if count == prev {
			logger.Info("[daangn] List stopped growing at %d cards", count)
			return count
		}
		prev = count

		buttons, err := page.CountMatching(ctx, moreButtonSelector)
		if err != nil || buttons == 0 {
			logger.Info("[daangn] No show-more button left at %d cards", count)
			return count
		}

		var enabled bool
		if err := page.Extract(ctx, moreButtonEnabledJS, &enabled); err != nil || !enabled {
			logger.Info("[daangn] Show-more button disabled at %d cards", count)
			return count
		}

		if err := page.Click(ctx, moreButtonSelector); err != nil {
			logger.Warn("[daangn] Clicking show-more failed: %v", err)
			return count
		}

		// Poll until the click lands more cards or the deadline passes. A
		// deadline pass falls through to the stall check above.
		deadline := time.Now().Add(cfg.PollDeadline)
		for {
			if err := page.Wait(ctx, cfg.PollInterval); err != nil {
				return count
			}
			grown, err := page.CountMatching(ctx, itemSelector)
			if err != nil {
				logger.Warn("[daangn] Counting cards failed: %v", err)
				return count
			}
			if grown > count || !time.Now().Before(deadline) {
				break
			}
		}
	}
}
