package scraper

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"

	"github.com/myusername/cricket-commentary-scraper/pkg/parser"
)

var (
	// ErrTransient marks failures worth another attempt, such as a 5xx response
	ErrTransient = errors.New("transient failure")
	// ErrPartialSnapshot marks a snapshot whose scorecard rendered but whose
	// commentary pages did not all render
	ErrPartialSnapshot = errors.New("partial snapshot")
)

// transientMarkers are lowercase fragments of network and page load failures
// that do not surface as a typed error, e.g. chromedp's "page load error net::ERR_..."
var transientMarkers = []string{
	"net::err_",
	"page load error",
	"connection reset",
	"connection refused",
	"connection aborted",
	"broken pipe",
	"timed out",
	"unexpected eof",
}

// RetryPolicy bounds the exponential backoff applied to transient failures
type RetryPolicy struct {
	// Attempts counts the first try; values below 1 mean a single try
	Attempts        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetry gives three attempts starting two seconds apart
var DefaultRetry = RetryPolicy{
	Attempts:        3,
	InitialInterval: 2 * time.Second,
	MaxInterval:     30 * time.Second,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// IsTransient reports whether err is a network or page load failure that may
// succeed on another attempt. Cancellation and partial snapshots never are.
func IsTransient(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, ErrPartialSnapshot):
		return false
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTransient):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Retry calls fn until it succeeds, fails with an error IsTransient rejects, or
// the policy runs out of attempts. The value of the last call is returned with
// its error, so callers can keep partial results.
func Retry[T any](ctx context.Context, policy RetryPolicy, log parser.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var (
		res     T
		attempt int
	)
	err := backoff.RetryNotify(func() error {
		attempt++
		var err error
		res, err = fn(ctx)
		if err != nil && !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy.backOff(ctx), func(err error, wait time.Duration) {
		log.Warn("transient failure, retrying", "op", op, "attempt", attempt, "wait", wait, "error", err)
	})
	return res, err
}

// RetryingFetcher retries the transient failures of another PageFetcher
type RetryingFetcher struct {
	Fetcher PageFetcher
	Policy  RetryPolicy
	Log     parser.Logger
}

// FetchPage implements PageFetcher
func (r RetryingFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	return Retry(ctx, r.Policy, r.Log, "fetch "+pageURL, func(ctx context.Context) (string, error) {
		return r.Fetcher.FetchPage(ctx, pageURL)
	})
}
