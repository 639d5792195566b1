package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/extract"
	"contact-scraper/pkg/fetch"
	"contact-scraper/pkg/match"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/ner"
	"contact-scraper/pkg/ocr"
	"contact-scraper/pkg/process"
	"contact-scraper/pkg/utils"
)

// Crawler runs the wave-based crawl of one site. Page workers run in
// parallel within a batch; the frontier is only ever touched between
// batches, from the Run goroutine.
type Crawler struct {
	log      *logrus.Entry
	appCfg   *config.AppConfig
	siteCfg  *config.SiteConfig
	siteKey  string
	frontier *Frontier
	admit    *admission
	worker   *pageWorker

	maxDepth  int
	maxPages  int
	batchSize int
}

// Deps are the shared components a Crawler borrows from the orchestrator.
// Sharing the client, limiter and semaphores keeps global bounds global.
type Deps struct {
	Fetcher         *fetch.Fetcher
	RateLimiter     *fetch.RateLimiter
	HostSemPool     *fetch.HostSemaphorePool
	GlobalSemaphore *semaphore.Weighted
	Renderer        fetch.Renderer
	Recognizer      ner.Recognizer
	OCRReader       ocr.ImageTextReader
}

// CrawlResult is everything a finished site crawl hands to post-processing.
type CrawlResult struct {
	Summary models.CrawlSummary
	Pages   []models.PageResult
}

// NewCrawler wires a Crawler for one site from the app config, the site
// config and the shared dependencies.
func NewCrawler(appCfg *config.AppConfig, siteCfg *config.SiteConfig, siteKey string, deps Deps, baseLogger *logrus.Entry) *Crawler {
	logger := baseLogger.WithField("site_key", siteKey)

	robotsHandler := fetch.NewRobotsHandler(deps.Fetcher, deps.RateLimiter, deps.GlobalSemaphore, appCfg, logger)
	userAgent := config.GetEffectiveUserAgent(siteCfg, appCfg)

	admit := &admission{
		baseDomain:      siteCfg.AllowedDomain,
		allowedDomains:  config.GetEffectiveAllowedDomains(siteCfg, appCfg),
		excludedDomains: config.GetEffectiveExcludedDomains(siteCfg, appCfg),
		excludedExts:    config.GetEffectiveExcludedExtensions(siteCfg, appCfg),
		maxDepth:        config.GetEffectiveMaxDepth(siteCfg, appCfg),
		maxPageParam:    appCfg.MaxPageParam,
		userAgent:       userAgent,
		ignoreRobots:    appCfg.IgnoreRobots,
		robots:          robotsHandler,
		log:             logger,
	}

	extractorOpts := extract.DefaultOptions()
	extractorOpts.ContextWindow = appCfg.ContextWindow
	extractorOpts.ExtractSocial = config.GetEffectiveExtractSocial(siteCfg, appCfg)
	extractorOpts.OCREnabled = config.GetEffectiveOCREmails(siteCfg, appCfg)

	matcherOpts := match.Options{ContextWindow: appCfg.ContextWindow}

	worker := &pageWorker{
		fetcher:         deps.Fetcher,
		rateLimiter:     deps.RateLimiter,
		hostSemPool:     deps.HostSemPool,
		globalSemaphore: deps.GlobalSemaphore,
		renderer:        deps.Renderer,
		extractor:       extract.NewExtractor(extractorOpts, deps.OCRReader, logger),
		matcher:         match.NewMatcher(deps.Recognizer, matcherOpts, logger),
		links:           process.NewLinkExtractor(siteCfg.RespectNofollow, logger.Logger),
		userAgent:       userAgent,
		delayPerHost:    config.GetEffectiveDelay(siteCfg, appCfg),
		semTimeout:      appCfg.SemaphoreAcquireTimeout,
		pageTimeout:     appCfg.PerPageTimeout,
		useJS:           config.GetEffectiveUseJavaScript(siteCfg, appCfg),
		enhance:         appCfg.EnhanceContacts,
		log:             logger,
	}

	return &Crawler{
		log:       logger,
		appCfg:    appCfg,
		siteCfg:   siteCfg,
		siteKey:   siteKey,
		frontier:  NewFrontier(),
		admit:     admit,
		worker:    worker,
		maxDepth:  admit.maxDepth,
		maxPages:  config.GetEffectiveMaxPages(siteCfg, appCfg),
		batchSize: appCfg.BatchSize,
	}
}

// Run executes the crawl until the frontier drains, the page budget is
// spent, or ctx is cancelled. Cancellation is honored between batches; pages
// in flight finish and their results are kept.
func (c *Crawler) Run(ctx context.Context) (*CrawlResult, error) {
	start := time.Now().UTC()
	summary := models.CrawlSummary{
		StartURL:  firstOrEmpty(c.siteCfg.StartURLs),
		Domain:    c.siteCfg.AllowedDomain,
		StartTime: start,
	}

	seeded := 0
	for _, startURL := range c.siteCfg.StartURLs {
		normalized, err := c.admit.admit(ctx, startURL, 0)
		if err != nil {
			c.log.WithField("url", startURL).Warnf("Start URL rejected: %v", err)
			continue
		}
		if c.frontier.Enqueue(normalized, 0) {
			seeded++
		}
	}
	if seeded == 0 {
		summary.EndTime = time.Now().UTC()
		return &CrawlResult{Summary: summary}, fmt.Errorf("%w: no admissible start URLs", utils.ErrConfigValidation)
	}

	c.log.WithFields(logrus.Fields{
		"start_urls": seeded,
		"max_depth":  c.maxDepth,
		"max_pages":  c.maxPages,
	}).Info("Crawl starting")

	var pages []models.PageResult
	wave := 0

	for {
		if err := ctx.Err(); err != nil {
			c.log.Warnf("Crawl cancelled: %v", err)
			break
		}

		budget := c.maxPages - c.frontier.VisitedCount()
		if budget <= 0 {
			c.log.WithField("max_pages", c.maxPages).Info("Page budget exhausted")
			break
		}
		if truncated := c.frontier.QueuedCount() - budget; truncated > 0 {
			c.log.WithFields(logrus.Fields{"queued": c.frontier.QueuedCount(), "budget": budget}).
				Infof("Budget truncates frontier, dropping %d queued URLs", truncated)
		}

		items := c.frontier.NextWave(budget)
		if len(items) == 0 {
			break
		}
		wave++

		waveLog := c.log.WithFields(logrus.Fields{"wave": wave, "size": len(items)})
		waveLog.Info("Processing wave")

		for batchStart := 0; batchStart < len(items); batchStart += c.batchSize {
			if ctx.Err() != nil {
				break
			}
			batchEnd := batchStart + c.batchSize
			if batchEnd > len(items) {
				batchEnd = len(items)
			}
			batch := items[batchStart:batchEnd]

			for _, outcome := range c.runBatch(ctx, batch) {
				if outcome.err != nil {
					category := utils.CategorizeError(outcome.err)
					c.frontier.MarkFailed(outcome.item.URL, category)
					summary.PagesFailed++
					if !errors.Is(outcome.err, context.Canceled) {
						c.log.WithFields(logrus.Fields{"url": outcome.item.URL, "category": category}).
							Warnf("Page failed: %v", outcome.err)
					}
					continue
				}

				summary.PagesCrawled++
				summary.ContactsFound += len(outcome.result.Contacts)
				if outcome.item.Depth > summary.MaxDepthSeen {
					summary.MaxDepthSeen = outcome.item.Depth
				}
				pages = append(pages, outcome.result)

				// Only this loop grows the frontier
				for _, link := range outcome.result.Links {
					normalized, admitErr := c.admit.admit(ctx, link, outcome.item.Depth+1)
					if admitErr != nil {
						continue
					}
					c.frontier.Enqueue(normalized, outcome.item.Depth+1)
				}
			}
		}

		waveLog.WithFields(logrus.Fields{
			"crawled":  summary.PagesCrawled,
			"failed":   summary.PagesFailed,
			"contacts": summary.ContactsFound,
			"queued":   c.frontier.QueuedCount(),
		}).Info("Wave complete")
	}

	summary.EndTime = time.Now().UTC()
	summary.Failed = c.frontier.Failed()

	c.log.WithFields(logrus.Fields{
		"pages_crawled":  summary.PagesCrawled,
		"pages_failed":   summary.PagesFailed,
		"contacts_found": summary.ContactsFound,
		"max_depth_seen": summary.MaxDepthSeen,
		"duration":       summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond),
	}).Info("Crawl finished")

	return &CrawlResult{Summary: summary, Pages: pages}, nil
}

// pageOutcome pairs a work item with its result or error.
type pageOutcome struct {
	item   models.WorkItem
	result models.PageResult
	err    error
}

// runBatch processes one batch of work items in parallel and returns every
// outcome in batch order. Worker goroutines write only their own slot.
func (c *Crawler) runBatch(ctx context.Context, batch []models.WorkItem) []pageOutcome {
	outcomes := make([]pageOutcome, len(batch))
	var wg sync.WaitGroup

	for i, item := range batch {
		wg.Add(1)
		go func(slot int, item models.WorkItem) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[slot] = pageOutcome{item: item, err: fmt.Errorf("%w: panic in page worker: %v", utils.ErrParsing, r)}
				}
			}()
			result, err := c.worker.processPage(ctx, item)
			outcomes[slot] = pageOutcome{item: item, result: result, err: err}
		}(i, item)
	}
	wg.Wait()
	return outcomes
}

func firstOrEmpty(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}
