package scraper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
	"github.com/myusername/cricket-commentary-scraper/pkg/parser"
)

const (
	inningsDropdownSel = "button.ds-capitalize.ds-cursor-pointer"
	inningsItemSel     = "li.ds-w-full.ds-flex"

	dismissPopupJS = `(function() {
		document.querySelectorAll('.ds-modal__close, .wzrk-close').forEach(function(b) { b.click(); });
		document.querySelectorAll('.wzrk-overlay').forEach(function(o) { o.remove(); });
	})()`
	scrollStepJS = `window.scrollBy(0, window.innerHeight)`
	scrollTopJS  = `window.scrollTo(0, 0)`
	selectItemJS = `(function(label) {
		var items = document.querySelectorAll(%q);
		for (var i = 0; i < items.length; i++) {
			if (items[i].innerText.trim() === label) { items[i].scrollIntoView({block: 'center'}); items[i].click(); return true; }
		}
		return false;
	})(%s)`
)

// ErrInningsNotFound means the innings dropdown has no entry with the requested label
var ErrInningsNotFound = errors.New("innings not found in dropdown")

// BrowserConfig controls how BrowserSource drives Chrome
type BrowserConfig struct {
	// RemoteURL attaches to a running Chrome over its devtools websocket instead of starting one
	RemoteURL    string
	Headless     bool
	PageTimeout  time.Duration
	ScrollPasses int
	ScrollDelay  time.Duration
	SettleDelay  time.Duration
	// Retry applies to page navigation; a zero policy means DefaultRetry
	Retry RetryPolicy
}

// BrowserSource renders match pages in Chrome through chromedp
type BrowserSource struct {
	cfg    BrowserConfig
	log    parser.Logger
	parser *parser.Parser
}

// NewBrowserSource returns a BrowserSource; zero durations fall back to defaults
func NewBrowserSource(cfg BrowserConfig, log parser.Logger) *BrowserSource {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 3 * time.Minute
	}
	if cfg.ScrollDelay <= 0 {
		cfg.ScrollDelay = time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 3 * time.Second
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = DefaultRetry
	}
	return &BrowserSource{cfg: cfg, log: log, parser: parser.New(log)}
}

func (b *BrowserSource) newContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if b.cfg.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, b.cfg.RemoteURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", b.cfg.Headless))
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
	}

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		b.log.Debug(fmt.Sprintf(format, args...))
	}))
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// FetchPage renders pageURL and returns its HTML. It implements PageFetcher.
func (b *BrowserSource) FetchPage(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := b.newContext(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(ctx, b.load(pageURL), chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", errors.Wrapf(err, "render %s", pageURL)
	}
	return html, nil
}

// Snapshot implements SnapshotSource. It renders the scorecard, then the
// commentary page once per innings in the dropdown. Once the scorecard has
// rendered, later failures return the snapshot so far with an error marked
// ErrPartialSnapshot.
func (b *BrowserSource) Snapshot(ctx context.Context, matchURL string) (*models.MatchSnapshot, error) {
	matchID, err := ExtractMatchID(matchURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := b.newContext(ctx)
	defer cancel()

	snap := &models.MatchSnapshot{MatchID: matchID, SourceURL: matchURL}

	b.log.Info("loading scorecard", "match_id", matchID, "url", matchURL)
	if err := chromedp.Run(ctx,
		b.load(matchURL),
		chromedp.OuterHTML("html", &snap.ScorecardHTML, chromedp.ByQuery),
	); err != nil {
		return nil, errors.Wrapf(err, "render scorecard of match %d", matchID)
	}

	commentaryURL := CommentaryURL(matchURL)
	b.log.Info("loading commentary", "match_id", matchID, "url", commentaryURL)
	var defaultHTML string
	if err := chromedp.Run(ctx,
		b.load(commentaryURL),
		chromedp.OuterHTML("html", &defaultHTML, chromedp.ByQuery),
	); err != nil {
		return snap, partial(errors.Wrapf(err, "render commentary of match %d", matchID))
	}

	current, err := b.parser.ExtractCurrentInnings(defaultHTML)
	if err != nil {
		return snap, partial(errors.Wrapf(err, "match %d", matchID))
	}
	snap.DefaultInnings = current
	snap.Innings = append(snap.Innings, models.InningsView{Label: current, HTML: defaultHTML})

	options, err := b.inningsOptions(ctx)
	if err != nil {
		b.log.Warn("could not read innings dropdown, keeping default innings only", "match_id", matchID, "error", err)
		snap.InningsOptions = []string{current}
		return snap, nil
	}
	snap.InningsOptions = options

	for _, label := range parser.OtherInnings(options, current) {
		html, err := b.switchInnings(ctx, label)
		if err != nil {
			return snap, partial(errors.Wrapf(err, "switch match %d to %q", matchID, label))
		}
		snap.Innings = append(snap.Innings, models.InningsView{Label: label, HTML: html})
		b.log.Info("rendered innings", "match_id", matchID, "innings", label)
	}
	return snap, nil
}

func (b *BrowserSource) load(pageURL string) chromedp.Tasks {
	return chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := Retry(ctx, b.cfg.Retry, b.log, "navigate "+pageURL, func(ctx context.Context) (struct{}, error) {
				ctx, cancel := context.WithTimeout(ctx, b.cfg.PageTimeout)
				defer cancel()
				return struct{}{}, chromedp.Navigate(pageURL).Do(ctx)
			})
			return err
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.cfg.SettleDelay),
		chromedp.Evaluate(dismissPopupJS, nil),
		b.scroll(),
	}
}

func (b *BrowserSource) scroll() chromedp.Tasks {
	tasks := chromedp.Tasks{}
	for i := 0; i < b.cfg.ScrollPasses; i++ {
		tasks = append(tasks, chromedp.Evaluate(scrollStepJS, nil), chromedp.Sleep(b.cfg.ScrollDelay))
	}
	return tasks
}

func (b *BrowserSource) inningsOptions(ctx context.Context) ([]string, error) {
	var html string
	err := chromedp.Run(ctx,
		chromedp.Evaluate(dismissPopupJS, nil),
		chromedp.Click(inningsDropdownSel, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.WaitVisible(inningsItemSel, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Click(inningsDropdownSel, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return nil, errors.Wrap(err, "open innings dropdown")
	}
	return b.parser.ExtractInningsOptions(html)
}

func (b *BrowserSource) switchInnings(ctx context.Context, label string) (string, error) {
	var clicked bool
	var html string
	err := chromedp.Run(ctx,
		chromedp.Evaluate(scrollTopJS, nil),
		chromedp.Evaluate(dismissPopupJS, nil),
		chromedp.Click(inningsDropdownSel, chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.WaitVisible(inningsItemSel, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(selectItemJS, inningsItemSel, strconv.Quote(label)), &clicked),
	)
	if err != nil {
		return "", err
	}
	if !clicked {
		return "", errors.Wrapf(ErrInningsNotFound, "%q", label)
	}

	if err := chromedp.Run(ctx,
		chromedp.Sleep(b.cfg.SettleDelay),
		b.scroll(),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", err
	}
	return html, nil
}

func partial(err error) error {
	return errors.Mark(err, ErrPartialSnapshot)
}
