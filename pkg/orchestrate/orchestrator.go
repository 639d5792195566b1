// Package orchestrate runs site crawls. It owns the shared HTTP client,
// rate limiter and request semaphores, bounds how many sites crawl at once,
// and drives each site through crawl, post-processing and persistence.
package orchestrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/crawler"
	"contact-scraper/pkg/fetch"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/ner"
	"contact-scraper/pkg/ocr"
	"contact-scraper/pkg/process"
	"contact-scraper/pkg/storage"
)

// SiteResult is the outcome of one site's full pipeline.
type SiteResult struct {
	SiteKey  string
	RunID    string
	Summary  models.CrawlSummary
	Contacts []models.Contact
	Err      error
	Duration time.Duration
}

// Orchestrator coordinates crawls across sites with shared resources. The
// site semaphore caps concurrent site crawls; the global request semaphore
// caps in-flight HTTP requests across all of them.
type Orchestrator struct {
	appCfg *config.AppConfig
	log    *logrus.Entry
	store  storage.ContactStore // nil disables persistence

	fetcher         *fetch.Fetcher
	rateLimiter     *fetch.RateLimiter
	hostSemPool     *fetch.HostSemaphorePool
	globalSemaphore *semaphore.Weighted
	siteSemaphore   *semaphore.Weighted
	recognizer      ner.Recognizer
	ocrReader       ocr.ImageTextReader
	renderer        fetch.Renderer
}

// NewOrchestrator builds an Orchestrator and its shared components. store
// may be nil when run persistence is disabled.
func NewOrchestrator(appCfg *config.AppConfig, store storage.ContactStore, log *logrus.Entry) *Orchestrator {
	httpClient := fetch.NewClient(appCfg.HTTPClientSettings, log.Logger)

	return &Orchestrator{
		appCfg:          appCfg,
		log:             log,
		store:           store,
		fetcher:         fetch.NewFetcher(httpClient, appCfg, log.Logger),
		rateLimiter:     fetch.NewRateLimiter(appCfg.DefaultDelayPerHost, log.Logger),
		hostSemPool:     fetch.NewHostSemaphorePool(appCfg.MaxRequestsPerHost, log),
		globalSemaphore: semaphore.NewWeighted(int64(appCfg.MaxRequests)),
		siteSemaphore:   semaphore.NewWeighted(int64(appCfg.MaxConcurrentSites)),
		recognizer:      ner.Select(appCfg.NERProvider, log),
		ocrReader:       ocr.NewUnavailable(),
		renderer:        fetch.NewNoRenderer(),
	}
}

// CrawlSite runs the full pipeline for one site: crawl, post-process,
// persist. Blocks for a site-concurrency slot first.
func (o *Orchestrator) CrawlSite(ctx context.Context, siteKey string, siteCfg *config.SiteConfig) SiteResult {
	start := time.Now()
	result := SiteResult{SiteKey: siteKey, RunID: uuid.NewString()}
	siteLog := o.log.WithFields(logrus.Fields{"site_key": siteKey, "run_id": result.RunID})

	if err := o.siteSemaphore.Acquire(ctx, 1); err != nil {
		result.Err = fmt.Errorf("acquiring site slot: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	defer o.siteSemaphore.Release(1)

	o.saveRunState(&result, models.RunStatusRunning, siteLog)

	deps := crawler.Deps{
		Fetcher:         o.fetcher,
		RateLimiter:     o.rateLimiter,
		HostSemPool:     o.hostSemPool,
		GlobalSemaphore: o.globalSemaphore,
		Renderer:        o.renderer,
		Recognizer:      o.recognizer,
		OCRReader:       o.ocrReader,
	}

	c := crawler.NewCrawler(o.appCfg, siteCfg, siteKey, deps, o.log)
	crawlResult, err := c.Run(ctx)
	result.Summary = crawlResult.Summary
	result.Summary.RunID = result.RunID
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		o.saveRunState(&result, models.RunStatusFailed, siteLog)
		return result
	}

	revalidate := config.GetEffectiveValidateEmails(siteCfg, o.appCfg)
	postProcessor := process.NewPostProcessor(revalidate, siteLog)
	result.Contacts = postProcessor.Process(crawlResult.Pages)
	result.Summary.ContactsFound = len(result.Contacts)
	result.Duration = time.Since(start)

	if o.store != nil {
		if errAppend := o.store.AppendContacts(result.RunID, result.Contacts); errAppend != nil {
			siteLog.Errorf("Persisting contacts failed: %v", errAppend)
		}
	}
	o.saveRunState(&result, models.RunStatusCompleted, siteLog)

	siteLog.WithFields(logrus.Fields{
		"contacts": len(result.Contacts),
		"duration": result.Duration.Round(time.Millisecond),
	}).Info("Site pipeline complete")
	return result
}

// RunAll crawls the given sites, as many in parallel as the site semaphore
// allows, and returns results in siteKeys order.
func (o *Orchestrator) RunAll(ctx context.Context, siteKeys []string) []SiteResult {
	o.log.Infof("Starting crawl of %d site(s): %v", len(siteKeys), siteKeys)
	start := time.Now()

	results := make([]SiteResult, len(siteKeys))
	var wg sync.WaitGroup

	for i, siteKey := range siteKeys {
		siteCfg, exists := o.appCfg.Sites[siteKey]
		if !exists {
			results[i] = SiteResult{SiteKey: siteKey, Err: fmt.Errorf("site '%s' not found in configuration", siteKey)}
			continue
		}
		wg.Add(1)
		go func(slot int, key string, cfg *config.SiteConfig) {
			defer wg.Done()
			results[slot] = o.CrawlSite(ctx, key, cfg)
		}(i, siteKey, siteCfg)
	}
	wg.Wait()

	o.logSummary(results, time.Since(start))
	return results
}

// saveRunState persists the run's current state when a store is configured.
func (o *Orchestrator) saveRunState(result *SiteResult, status models.RunStatus, siteLog *logrus.Entry) {
	if o.store == nil {
		return
	}
	record := &models.RunRecord{ID: result.RunID, Status: status, Summary: result.Summary}
	record.Summary.RunID = result.RunID
	if err := o.store.SaveRun(record); err != nil {
		siteLog.Errorf("Persisting run state failed: %v", err)
	}
}

func (o *Orchestrator) logSummary(results []SiteResult, totalDuration time.Duration) {
	var totalPages, totalContacts int
	successCount, failCount := 0, 0

	for _, r := range results {
		if r.Err != nil {
			failCount++
			o.log.Errorf("  %s: FAILED after %d pages: %v", r.SiteKey, r.Summary.PagesCrawled, r.Err)
		} else {
			successCount++
			o.log.Infof("  %s: %d pages, %d contacts in %v", r.SiteKey, r.Summary.PagesCrawled, len(r.Contacts), r.Duration.Round(time.Millisecond))
		}
		totalPages += r.Summary.PagesCrawled
		totalContacts += len(r.Contacts)
	}

	o.log.Infof("Crawl finished in %v: %d site(s) (%d ok, %d failed), %d pages, %d contacts",
		totalDuration.Round(time.Millisecond), len(results), successCount, failCount, totalPages, totalContacts)
}

// ValidateSiteKeys checks that every key exists in the config.
func ValidateSiteKeys(appCfg *config.AppConfig, siteKeys []string) error {
	for _, key := range siteKeys {
		if _, exists := appCfg.Sites[key]; !exists {
			available := make([]string, 0, len(appCfg.Sites))
			for k := range appCfg.Sites {
				available = append(available, k)
			}
			return fmt.Errorf("site '%s' not found. Available sites: %v", key, available)
		}
	}
	return nil
}

// AllSiteKeys returns every configured site key.
func AllSiteKeys(appCfg *config.AppConfig) []string {
	keys := make([]string, 0, len(appCfg.Sites))
	for k := range appCfg.Sites {
		keys = append(keys, k)
	}
	return keys
}
