package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/semaphore"

	"contact-scraper/pkg/config"
)

// RobotsHandler fetches, parses and caches robots.txt per host. A fetch or
// parse failure caches nil, and nil means fail-open: crawling proceeds when
// robots rules cannot be obtained.
type RobotsHandler struct {
	fetcher         *Fetcher
	rateLimiter     *RateLimiter
	robotsCache     map[string]*robotstxt.RobotsData // hostname -> parsed data (or nil)
	robotsCacheMu   sync.Mutex
	globalSemaphore *semaphore.Weighted
	cfg             *config.AppConfig
	log             *logrus.Entry
}

// NewRobotsHandler creates a RobotsHandler sharing the crawl's fetcher,
// limiter and global request semaphore.
func NewRobotsHandler(
	fetcher *Fetcher,
	rateLimiter *RateLimiter,
	globalSemaphore *semaphore.Weighted,
	cfg *config.AppConfig,
	log *logrus.Entry,
) *RobotsHandler {
	return &RobotsHandler{
		fetcher:         fetcher,
		rateLimiter:     rateLimiter,
		robotsCache:     make(map[string]*robotstxt.RobotsData),
		globalSemaphore: globalSemaphore,
		cfg:             cfg,
		log:             log,
	}
}

// GetRobotsData returns the parsed robots.txt for the targetURL's host, from
// cache or by fetching. Any failure caches and returns nil.
func (rh *RobotsHandler) GetRobotsData(targetURL *url.URL, ctx context.Context) *robotstxt.RobotsData {
	if ctx == nil {
		ctx = context.Background()
	}

	host := targetURL.Hostname()
	hostLog := rh.log.WithField("host", host)

	rh.robotsCacheMu.Lock()
	robotsData, found := rh.robotsCache[host]
	rh.robotsCacheMu.Unlock()
	if found {
		return robotsData
	}

	robotsURL := &url.URL{Scheme: targetURL.Scheme, Host: targetURL.Host, Path: "/robots.txt"}
	if targetURL.Scheme != "http" && targetURL.Scheme != "https" {
		hostLog.Warnf("Invalid scheme '%s', defaulting to https for robots.txt", targetURL.Scheme)
		robotsURL.Scheme = "https"
	}
	robotsURLStr := robotsURL.String()
	robotsLog := hostLog.WithField("robots_url", robotsURLStr)
	robotsLog.Info("Fetching robots.txt...")

	ctxAcquire, cancelAcquire := context.WithTimeout(ctx, rh.cfg.SemaphoreAcquireTimeout)
	err := rh.globalSemaphore.Acquire(ctxAcquire, 1)
	cancelAcquire()
	if err != nil {
		robotsLog.Errorf("Error acquiring global semaphore: %v", err)
		return rh.cacheNil(host)
	}
	defer rh.globalSemaphore.Release(1)

	if err := rh.rateLimiter.Wait(ctx, host, rh.cfg.DefaultDelayPerHost); err != nil {
		robotsLog.Warnf("Rate limit wait aborted: %v", err)
		return rh.cacheNil(host)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", robotsURLStr, nil)
	if err != nil {
		robotsLog.Errorf("Error creating request: %v", err)
		return rh.cacheNil(host)
	}
	req.Header.Set("User-Agent", rh.cfg.DefaultUserAgent)

	resp, fetchErr := rh.fetcher.FetchWithRetry(req, ctx)
	if fetchErr != nil {
		robotsLog.Errorf("Fetching robots.txt failed: %v", fetchErr)
		if resp != nil {
			drainAndClose(resp)
		}
		return rh.cacheNil(host)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		robotsLog.Errorf("Error reading body: %v", err)
		return rh.cacheNil(host)
	}

	data, err := robotstxt.FromBytes(bodyBytes)
	if err != nil {
		robotsLog.Errorf("Error parsing content: %v", err)
		return rh.cacheNil(host)
	}

	robotsLog.Info("Successfully fetched and parsed robots.txt")
	rh.robotsCacheMu.Lock()
	rh.robotsCache[host] = data
	rh.robotsCacheMu.Unlock()
	return data
}

// TestAgent reports whether userAgent may fetch targetURL. Missing or
// unparsable robots data allows the fetch.
func (rh *RobotsHandler) TestAgent(targetURL *url.URL, userAgent string, ctx context.Context) bool {
	robotsData := rh.GetRobotsData(targetURL, ctx)
	if robotsData == nil {
		return true
	}
	return robotsData.TestAgent(targetURL.RequestURI(), userAgent)
}

func (rh *RobotsHandler) cacheNil(host string) *robotstxt.RobotsData {
	rh.robotsCacheMu.Lock()
	rh.robotsCache[host] = nil
	rh.robotsCacheMu.Unlock()
	return nil
}
