package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"contact-scraper/pkg/extract"
	"contact-scraper/pkg/fetch"
	"contact-scraper/pkg/match"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/process"
	"contact-scraper/pkg/utils"
)

// maxBodySize caps how much of a response body is read. Contact pages are
// small; anything larger is probably not worth parsing.
const maxBodySize = 10 << 20

// pageWorker processes one URL end to end: fetch, parse once, extract,
// match, enhance, per-page dedup, link harvest. Workers are stateless with
// respect to the crawl; everything they learn goes back in the PageResult.
type pageWorker struct {
	fetcher         *fetch.Fetcher
	rateLimiter     *fetch.RateLimiter
	hostSemPool     *fetch.HostSemaphorePool
	globalSemaphore *semaphore.Weighted
	renderer        fetch.Renderer
	extractor       *extract.Extractor
	matcher         *match.Matcher
	links           *process.LinkExtractor

	userAgent    string
	delayPerHost time.Duration
	semTimeout   time.Duration
	pageTimeout  time.Duration // Per-page budget; zero means no cap
	useJS        bool
	enhance      bool
	warnNoJSOnce sync.Once // Workers share this struct across goroutines

	log *logrus.Entry
}

// processPage fetches and analyzes one work item. The returned error is
// already categorizable via utils.CategorizeError.
func (w *pageWorker) processPage(ctx context.Context, item models.WorkItem) (models.PageResult, error) {
	result := models.PageResult{URL: item.URL, Depth: item.Depth}
	taskLog := w.log.WithFields(logrus.Fields{"url": item.URL, "depth": item.Depth})

	if w.pageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.pageTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", item.URL, nil)
	if err != nil {
		return result, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", w.userAgent)
	host := req.URL.Hostname()

	ctxAcquire, cancelAcquire := context.WithTimeout(ctx, w.semTimeout)
	err = w.globalSemaphore.Acquire(ctxAcquire, 1)
	cancelAcquire()
	if err != nil {
		return result, fmt.Errorf("%w: global semaphore: %w", utils.ErrSemaphoreTimeout, err)
	}
	defer w.globalSemaphore.Release(1)

	if err := w.hostSemPool.Acquire(ctx, host); err != nil {
		return result, fmt.Errorf("%w: host semaphore: %w", utils.ErrSemaphoreTimeout, err)
	}
	defer w.hostSemPool.Release(host)

	if err := w.rateLimiter.Wait(ctx, host, w.delayPerHost); err != nil {
		return result, err
	}

	resp, err := w.fetcher.FetchWithRetry(req, ctx)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return result, err
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") && !strings.Contains(ct, "xhtml") {
		io.Copy(io.Discard, resp.Body)
		return result, fmt.Errorf("%w: content type '%s'", utils.ErrScopeViolation, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return result, fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}

	html := string(body)
	if w.useJS {
		html = w.maybeRender(ctx, item.URL, html, taskLog)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return result, fmt.Errorf("%w: %w", utils.ErrParsing, err)
	}

	// Extraction, matching and link harvest all reuse this single parse
	candidates, socials := w.extractor.ExtractEmails(ctx, doc, item.URL)
	contacts := w.matcher.Contacts(ctx, doc, candidates, socials)
	if w.enhance {
		for i := range contacts {
			match.Enhance(&contacts[i])
		}
	}
	result.Contacts = match.RemoveDuplicates(contacts)

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	result.Links = w.links.Links(doc, finalURL, taskLog)

	taskLog.WithFields(logrus.Fields{
		"contacts": len(result.Contacts),
		"links":    len(result.Links),
	}).Debug("Page processed")
	return result, nil
}

// maybeRender swaps the fetched HTML for the renderer's output when a
// renderer is installed. Without one the crawl degrades to static HTML with
// a single warning.
func (w *pageWorker) maybeRender(ctx context.Context, pageURL, html string, taskLog *logrus.Entry) string {
	if !w.renderer.Available() {
		w.warnNoJSOnce.Do(func() {
			w.log.Warn("JavaScript rendering requested but no renderer is available, using static HTML")
		})
		return html
	}
	rendered, err := w.renderer.Render(ctx, pageURL)
	if err != nil {
		taskLog.Warnf("Rendering failed, using static HTML: %v", err)
		return html
	}
	return rendered
}
