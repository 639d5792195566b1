package crawler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/fetch"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/ner"
	"contact-scraper/pkg/ocr"
	"contact-scraper/pkg/utils"
)

// countingServer serves a small fixture site and records which paths were
// actually requested, so policy gates can be asserted at the wire level.
type countingServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func (cs *countingServer) pathHits(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.hits[path]
}

func newTestSite(t *testing.T) *countingServer {
	t.Helper()
	cs := &countingServer{hits: make(map[string]int)}

	mux := http.NewServeMux()
	htmlPage := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, body)
		})
	}

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "User-agent: *\nDisallow: /private/\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body>
			<a href="/staff">Staff</a>
			<a href="/staff">Staff again</a>
			<a href="/private/secret">Internal</a>
			<a href="/files/report.pdf">Annual report</a>
			<a href="/missing">Old page</a>
			<a href="https://elsewhere.example.org/">Partner site</a>
		</body></html>`)
	})
	htmlPage("/staff", `<html><body><ul>
		<li>Professor Jane Doe <a href="mailto:jane.doe@example.com">email</a></li>
	</ul></body></html>`)

	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.hits[r.URL.Path]++
		cs.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return cs
}

func testCrawlConfig(baseURL string) (*config.AppConfig, *config.SiteConfig) {
	appCfg := &config.AppConfig{
		DefaultUserAgent:        "contact-scraper-test/1.0",
		MaxDepth:                3,
		MaxPages:                10,
		BatchSize:               4,
		MaxRequests:             4,
		MaxRequestsPerHost:      2,
		MaxPageParam:            100,
		SemaphoreAcquireTimeout: 2 * time.Second,
		ContextWindow:           300,
		ExcludedExtensions:      []string{".pdf"},
	}
	siteCfg := &config.SiteConfig{
		StartURLs:     []string{baseURL + "/"},
		AllowedDomain: "127.0.0.1",
	}
	return appCfg, siteCfg
}

func testDeps(appCfg *config.AppConfig, logger *logrus.Logger) Deps {
	entry := logrus.NewEntry(logger)
	return Deps{
		Fetcher:         fetch.NewFetcher(fetch.NewClient(appCfg.HTTPClientSettings, logger), appCfg, logger),
		RateLimiter:     fetch.NewRateLimiter(0, logger),
		HostSemPool:     fetch.NewHostSemaphorePool(appCfg.MaxRequestsPerHost, entry),
		GlobalSemaphore: semaphore.NewWeighted(int64(appCfg.MaxRequests)),
		Renderer:        fetch.NewNoRenderer(),
		Recognizer:      ner.NewRegexRecognizer(),
		OCRReader:       ocr.NewUnavailable(),
	}
}

func TestCrawler_RunEndToEnd(t *testing.T) {
	site := newTestSite(t)
	defer site.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	appCfg, siteCfg := testCrawlConfig(site.URL)

	c := NewCrawler(appCfg, siteCfg, "fixture", testDeps(appCfg, logger), logrus.NewEntry(logger))
	result, err := c.Run(context.Background())
	require.NoError(t, err)

	summary := result.Summary
	assert.Equal(t, 2, summary.PagesCrawled, "start page and /staff")
	assert.Equal(t, 1, summary.PagesFailed, "/missing 404s")
	assert.Equal(t, 1, summary.ContactsFound)
	assert.Equal(t, 1, summary.MaxDepthSeen)
	assert.Equal(t, "127.0.0.1", summary.Domain)
	assert.False(t, summary.EndTime.Before(summary.StartTime))
	assert.Equal(t, "HTTP_404", summary.Failed[site.URL+"/missing"])

	require.Len(t, result.Pages, 2)
	var contacts []models.Contact
	for _, page := range result.Pages {
		contacts = append(contacts, page.Contacts...)
	}
	require.Len(t, contacts, 1)
	assert.Equal(t, "jane.doe@example.com", contacts[0].Email)
	assert.Equal(t, "Jane Doe", contacts[0].Name)
	assert.Equal(t, "Professor", contacts[0].Title)
	assert.Equal(t, models.MethodMailto, contacts[0].ExtractionMethod)

	// Policy rejections happen at admission, before any request goes out.
	assert.Zero(t, site.pathHits("/private/secret"), "robots disallow")
	assert.Zero(t, site.pathHits("/files/report.pdf"), "excluded extension")
	assert.Equal(t, 1, site.pathHits("/staff"), "duplicate links fetch once")
	assert.Equal(t, 1, site.pathHits("/robots.txt"), "robots.txt cached per host")
}

func TestCrawler_RunHonorsPageBudget(t *testing.T) {
	site := newTestSite(t)
	defer site.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	appCfg, siteCfg := testCrawlConfig(site.URL)
	one := 1
	siteCfg.MaxPages = &one

	c := NewCrawler(appCfg, siteCfg, "fixture", testDeps(appCfg, logger), logrus.NewEntry(logger))
	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.PagesCrawled)
	assert.Zero(t, site.pathHits("/staff"), "budget spent before the second wave")
}

func TestCrawler_RunRejectsOffDomainStart(t *testing.T) {
	site := newTestSite(t)
	defer site.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	appCfg, siteCfg := testCrawlConfig(site.URL)
	siteCfg.StartURLs = []string{"https://elsewhere.example.org/"}

	c := NewCrawler(appCfg, siteCfg, "fixture", testDeps(appCfg, logger), logrus.NewEntry(logger))
	result, err := c.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
	require.NotNil(t, result)
	assert.Zero(t, result.Summary.PagesCrawled)
}

func TestCrawler_RunCancelledBeforeFirstWave(t *testing.T) {
	site := newTestSite(t)
	defer site.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	appCfg, siteCfg := testCrawlConfig(site.URL)
	appCfg.IgnoreRobots = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCrawler(appCfg, siteCfg, "fixture", testDeps(appCfg, logger), logrus.NewEntry(logger))
	result, err := c.Run(ctx)
	require.NoError(t, err)

	assert.Zero(t, result.Summary.PagesCrawled)
	assert.Zero(t, site.pathHits("/"), "no pages fetched after cancellation")
}

func TestCrawler_EnhanceContactsToggle(t *testing.T) {
	// No name appears on the page, so the only possible name source is
	// local-part inference during enhancement.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body><p>Reach us at jane.doe@example.com for enrollment.</p></body></html>`)
	}))
	defer srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	crawlOnce := func(enhance bool) models.Contact {
		appCfg, siteCfg := testCrawlConfig(srv.URL)
		appCfg.IgnoreRobots = true
		appCfg.EnhanceContacts = enhance

		c := NewCrawler(appCfg, siteCfg, "fixture", testDeps(appCfg, logger), logrus.NewEntry(logger))
		result, err := c.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, result.Pages, 1)
		require.Len(t, result.Pages[0].Contacts, 1)
		return result.Pages[0].Contacts[0]
	}

	enhanced := crawlOnce(true)
	assert.Equal(t, "jane.doe@example.com", enhanced.Email)
	assert.Equal(t, "Jane Doe", enhanced.Name, "local-part inference runs when enabled")

	plain := crawlOnce(false)
	assert.Equal(t, "jane.doe@example.com", plain.Email)
	assert.Empty(t, plain.Name, "disabled enhancement leaves the record as matched")
}

func TestCrawler_PerPageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(250 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, `<html><body>slow</body></html>`)
	}))
	defer srv.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	appCfg, siteCfg := testCrawlConfig(srv.URL)
	appCfg.IgnoreRobots = true
	appCfg.PerPageTimeout = 50 * time.Millisecond

	c := NewCrawler(appCfg, siteCfg, "fixture", testDeps(appCfg, logger), logrus.NewEntry(logger))
	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Summary.PagesCrawled)
	assert.Equal(t, 1, result.Summary.PagesFailed)
	assert.Equal(t, "System_ContextDeadlineExceeded", result.Summary.Failed[srv.URL+"/"])
}
