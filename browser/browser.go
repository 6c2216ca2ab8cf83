package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mslee98/crawl/config"
	"github.com/mslee98/crawl/utils"
)

// Page is one browser tab. Methods honor the caller's context for deadlines
// and cancelation; a Page is not safe for concurrent use.
type Page interface {
	// Navigate loads the given URL and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until an element matching selector is visible.
	WaitReady(ctx context.Context, selector string) error
	// CountMatching returns how many elements currently match selector.
	CountMatching(ctx context.Context, selector string) (int, error)
	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error
	// Wait sleeps for d without touching the page.
	Wait(ctx context.Context, d time.Duration) error
	// Extract evaluates script in the page and unmarshals the result into out.
	Extract(ctx context.Context, script string, out any) error
	// Close releases the tab.
	Close()
}

// Chrome owns a shared headless browser process. Pages created from it run
// as tabs of that single process.
type Chrome struct {
	logger      *utils.Logger
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
}

// New launches the browser process described by cfg.
func New(cfg *config.Config, logger *utils.Logger) (*Chrome, error) {
	bin := findChromeBinary(cfg.ChromeBin)
	if bin != "" {
		logger.Info("[browser] Using browser binary: %s", bin)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, browserStop := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...any) {}))

	// Start the process now so every page attaches to it as a tab instead of
	// spawning its own browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocCancel()
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	return &Chrome{
		logger:      logger,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		browserStop: browserStop,
	}, nil
}

// NewPage opens a fresh tab in the shared browser.
func (c *Chrome) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	return &tab{ctx: tabCtx, cancel: cancel}, nil
}

// Close shuts down the browser process and all of its tabs.
func (c *Chrome) Close() {
	c.browserStop()
	c.allocCancel()
}

type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions against this tab. chromedp actions must run on a
// context derived from the tab's, so the caller's deadline and cancelation
// are bridged onto a child of t.ctx.
func (t *tab) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (t *tab) Navigate(ctx context.Context, url string) error {
	return t.run(ctx, chromedp.Navigate(url))
}

func (t *tab) WaitReady(ctx context.Context, selector string) error {
	return t.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (t *tab) CountMatching(ctx context.Context, selector string) (int, error) {
	var count int
	err := t.run(ctx, chromedp.Evaluate(countJS(selector), &count))
	return count, err
}

func (t *tab) Click(ctx context.Context, selector string) error {
	return t.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (t *tab) Wait(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *tab) Extract(ctx context.Context, script string, out any) error {
	return t.run(ctx, chromedp.Evaluate(script, out))
}

func (t *tab) Close() {
	t.cancel()
}

func countJS(selector string) string {
	quoted, _ := json.Marshal(selector)
	return fmt.Sprintf("document.querySelectorAll(%s).length", quoted)
}

// findChromeBinary locates the Chrome/Chromium binary, preferring an explicit
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
