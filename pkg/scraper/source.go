package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/myusername/cricket-commentary-scraper/pkg/models"
	"github.com/myusername/cricket-commentary-scraper/pkg/parser"
)

const (
	scorecardFile = "scorecard.html"
	manifestFile  = "innings.json"
)

// SnapshotSource produces fully rendered pages for one match
type SnapshotSource interface {
	Snapshot(ctx context.Context, matchURL string) (*models.MatchSnapshot, error)
}

// PageFetcher returns the HTML of a single page
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher fetches pages with a plain GET and no rendering
type HTTPFetcher struct{}

// FetchPage implements PageFetcher
func (HTTPFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	return FetchURL(ctx, pageURL)
}

// FetchSchedule tries each fetcher in turn and returns the match links of the
// first page that yields any. Transient failures are retried per policy before
// falling through to the next fetcher.
func FetchSchedule(ctx context.Context, scheduleURL string, policy RetryPolicy, log parser.Logger, fetchers ...PageFetcher) ([]string, error) {
	var lastErr error
	for i, f := range fetchers {
		retrying := RetryingFetcher{Fetcher: f, Policy: policy, Log: log}
		page, err := retrying.FetchPage(ctx, scheduleURL)
		if err != nil {
			log.Warn("schedule fetch failed", "fetcher", i, "error", err)
			lastErr = err
			continue
		}
		links, err := ExtractMatchLinks(page, SiteURL)
		if err != nil {
			lastErr = err
			continue
		}
		if len(links) > 0 {
			log.Info("extracted match links", "fetcher", i, "count", len(links))
			return links, nil
		}
		log.Warn("schedule page has no match links", "fetcher", i)
	}
	if lastErr != nil {
		return nil, errors.Wrapf(lastErr, "fetch schedule %s", scheduleURL)
	}
	return nil, nil
}

// DirSource reads match snapshots saved under Root/<match_id>/
type DirSource struct {
	Root string
}

// NewDirSource returns a DirSource rooted at root
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root}
}

// Snapshot implements SnapshotSource
func (d *DirSource) Snapshot(ctx context.Context, matchURL string) (*models.MatchSnapshot, error) {
	matchID, err := ExtractMatchID(matchURL)
	if err != nil {
		return nil, err
	}
	return d.Load(ctx, matchID)
}

// Load reads the snapshot of one match
func (d *DirSource) Load(ctx context.Context, matchID int64) (*models.MatchSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := d.matchDir(matchID)

	manifest, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot manifest of match %d", matchID)
	}
	var snap models.MatchSnapshot
	if err := sonic.ConfigStd.Unmarshal(manifest, &snap); err != nil {
		return nil, errors.Wrapf(err, "decode snapshot manifest of match %d", matchID)
	}
	snap.MatchID = matchID

	scorecard, err := os.ReadFile(filepath.Join(dir, scorecardFile))
	if err != nil {
		return nil, errors.Wrapf(err, "read scorecard of match %d", matchID)
	}
	snap.ScorecardHTML = string(scorecard)

	for i := range snap.Innings {
		page, err := os.ReadFile(filepath.Join(dir, inningsFile(i+1)))
		if err != nil {
			return nil, errors.Wrapf(err, "read innings %q of match %d", snap.Innings[i].Label, matchID)
		}
		snap.Innings[i].HTML = string(page)
	}
	return &snap, nil
}

// Save writes a snapshot so it can be replayed later with Load
func (d *DirSource) Save(snap *models.MatchSnapshot) error {
	dir := d.matchDir(snap.MatchID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create snapshot dir %s", dir)
	}

	manifest, err := sonic.ConfigStd.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode snapshot manifest of match %d", snap.MatchID)
	}
	if err := SaveContentToFile(filepath.Join(dir, manifestFile), string(manifest)); err != nil {
		return err
	}
	if err := SaveContentToFile(filepath.Join(dir, scorecardFile), snap.ScorecardHTML); err != nil {
		return err
	}
	for i, view := range snap.Innings {
		if err := SaveContentToFile(filepath.Join(dir, inningsFile(i+1)), view.HTML); err != nil {
			return err
		}
	}
	return nil
}

// MatchURLs lists the source URLs of every saved snapshot, ordered by match id
func (d *DirSource) MatchURLs() ([]string, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "list snapshots in %s", d.Root)
	}

	var ids []int64
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if id, err := strconv.ParseInt(e.Name(), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var urls []string
	for _, id := range ids {
		raw, err := os.ReadFile(filepath.Join(d.matchDir(id), manifestFile))
		if err != nil {
			continue
		}
		var snap models.MatchSnapshot
		if err := sonic.ConfigStd.Unmarshal(raw, &snap); err != nil || snap.SourceURL == "" {
			continue
		}
		urls = append(urls, snap.SourceURL)
	}
	return urls, nil
}

func (d *DirSource) matchDir(matchID int64) string {
	return filepath.Join(d.Root, strconv.FormatInt(matchID, 10))
}

func inningsFile(n int) string {
	return fmt.Sprintf("innings_%d.html", n)
}

// CachingSource serves snapshots from a DirSource and falls back to Upstream,
// saving what Upstream returns without error.
type CachingSource struct {
	Cache    *DirSource
	Upstream SnapshotSource
	Log      parser.Logger
}

// Snapshot implements SnapshotSource
func (c *CachingSource) Snapshot(ctx context.Context, matchURL string) (*models.MatchSnapshot, error) {
	if snap, err := c.Cache.Snapshot(ctx, matchURL); err == nil {
		c.Log.Info("using cached snapshot", "url", matchURL)
		return snap, nil
	}

	snap, err := c.Upstream.Snapshot(ctx, matchURL)
	if err != nil {
		// partial snapshots are passed on but not cached, so a later run renders them again
		return snap, err
	}
	if err := c.Cache.Save(snap); err != nil {
		c.Log.Warn("could not cache snapshot", "match_id", snap.MatchID, "error", err)
	}
	return snap, nil
}
