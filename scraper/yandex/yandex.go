package yandex

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/baslie/yandex-reviews-to-md/config"
	"github.com/baslie/yandex-reviews-to-md/models"
	"github.com/baslie/yandex-reviews-to-md/progress"
	"github.com/baslie/yandex-reviews-to-md/utils"
)

const reviewsURLFormat = "https://yandex.ru/maps/org/%d/reviews/"

// Scraper drives a headless Chrome session against a Yandex Maps reviews
// page and turns it into a models.Result.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// ReviewsURL returns the reviews page address for a business ID.
func ReviewsURL(id int64) string {
	return fmt.Sprintf(reviewsURLFormat, id)
}

// Fetch loads the reviews page, scrolls the feed until no new reviews appear,
// expands collapsed company replies and parses the final page snapshot.
// Progress is reported once per discovered review; the total may be revised
// upward while the page keeps loading. The call blocks until done or until
// ctx is cancelled.
func (s *Scraper) Fetch(ctx context.Context, id int64, rep progress.Reporter) (*models.Result, error) {
	rep.Stage("Starting browser and loading page")

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Debug("[yandex] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("lang", "ru-RU"),
		chromedp.UserAgent(s.cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	pageURL := ReviewsURL(id)
	s.logger.Debug("[yandex] Navigating to %s", pageURL)

	err := s.retry.Do(ctx, "open-reviews-page", func() error {
		navCtx, cancel := context.WithTimeout(tabCtx, time.Duration(s.cfg.PageLoadSeconds)*time.Second)
		defer cancel()

		return chromedp.Run(navCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(3*time.Second),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("open reviews page for %d: %w", id, err)
	}

	if err := s.scrollFeed(tabCtx, rep); err != nil {
		return nil, fmt.Errorf("load review feed: %w", err)
	}

	if err := s.expandReplies(tabCtx); err != nil {
		// Replies stay collapsed in the snapshot; the reviews themselves
		// are still complete, so keep going.
		s.logger.Warn("[yandex] Could not expand company replies: %v", err)
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("capture page snapshot: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page snapshot: %w", err)
	}

	result := &models.Result{
		Company:   parseCompany(doc, id),
		Reviews:   parseReviews(doc),
		FetchedAt: time.Now(),
	}

	if n := len(result.Reviews); n > 0 {
		rep.Progress(n, n)
	}

	s.logger.Debug("[yandex] Parsed %d reviews for %q", len(result.Reviews), result.Company.Name)
	return result, nil
}

// feedState is the per-round snapshot of the lazily loaded review feed.
type feedState struct {
	Loaded   int `json:"loaded"`
	Declared int `json:"declared"`
}

const feedStateJS = `
	(function() {
		var cards = document.querySelectorAll('.business-reviews-card-view__review');
		if (cards.length > 0) {
			cards[cards.length - 1].scrollIntoView();
		}
		var declared = 0;
		var meta = document.querySelector("meta[itemprop='reviewCount']");
		if (meta) {
			declared = parseInt(meta.getAttribute('content'), 10) || 0;
		}
		return {loaded: cards.length, declared: declared};
	})()
`

// scrollFeed keeps scrolling the feed until the review count stops growing
// (or the declared total is reached), reporting each newly discovered review.
func (s *Scraper) scrollFeed(tabCtx context.Context, rep progress.Reporter) error {
	pause := time.Duration(s.cfg.ScrollPauseMs) * time.Millisecond

	reported := 0
	total := 0
	stable := 0

	for round := 0; round < s.cfg.MaxScrollRounds; round++ {
		var state feedState
		if err := chromedp.Run(tabCtx, chromedp.Evaluate(feedStateJS, &state)); err != nil {
			return err
		}

		if state.Declared > total {
			total = state.Declared
		}
		if state.Loaded > total {
			total = state.Loaded
		}

		if state.Loaded > reported {
			for i := reported + 1; i <= state.Loaded; i++ {
				rep.Progress(i, total)
			}
			reported = state.Loaded
			stable = 0
		} else {
			stable++
		}

		if state.Declared > 0 && state.Loaded >= state.Declared {
			break
		}
		if stable >= s.cfg.StableRounds {
			break
		}

		select {
		case <-time.After(pause):
		case <-tabCtx.Done():
			return tabCtx.Err()
		}
	}

	s.logger.Debug("[yandex] Feed settled at %d reviews (declared %d)", reported, total)
	return nil
}

const expandRepliesJS = `
	(function() {
		var toggles = document.querySelectorAll('.business-review-view__comment-expand');
		for (var i = 0; i < toggles.length; i++) {
			toggles[i].click();
		}
		return toggles.length;
	})()
`

// expandReplies clicks every collapsed "company reply" toggle so the reply
// text is present in the captured snapshot.
func (s *Scraper) expandReplies(tabCtx context.Context) error {
	var clicked int
	if err := chromedp.Run(tabCtx,
		chromedp.Evaluate(expandRepliesJS, &clicked),
		chromedp.Sleep(1500*time.Millisecond),
	); err != nil {
		return err
	}
	s.logger.Debug("[yandex] Expanded %d company replies", clicked)
	return nil
}

// findChromeBinary locates the Chrome/Chromium binary, preferring the
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
