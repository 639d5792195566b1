package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mark3labs/mcp-go/mcp"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/extract"
	"contact-scraper/pkg/match"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/ner"
	"contact-scraper/pkg/process"
)

// handleListSites handles the list_sites tool
func (s *Server) handleListSites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys := make([]string, 0, len(s.cfg.AppConfig.Sites))
	for k := range s.cfg.AppConfig.Sites {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sites := make([]map[string]interface{}, 0, len(keys))
	for _, key := range keys {
		siteCfg := s.cfg.AppConfig.Sites[key]
		siteInfo := map[string]interface{}{
			"key":              key,
			"domain":           siteCfg.AllowedDomain,
			"start_urls_count": len(siteCfg.StartURLs),
			"max_depth":        config.GetEffectiveMaxDepth(siteCfg, s.cfg.AppConfig),
			"max_pages":        config.GetEffectiveMaxPages(siteCfg, s.cfg.AppConfig),
		}
		if s.jobManager.IsRunning(key) {
			siteInfo["status"] = "running"
		}
		sites = append(sites, siteInfo)
	}

	result := map[string]interface{}{
		"sites":       sites,
		"config_path": s.cfg.ConfigPath,
		"total_sites": len(sites),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleExtractPage handles the extract_page tool: a one-shot fetch and
// contact extraction without touching the frontier or any stored run.
func (s *Server) handleExtractPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urlStr := request.GetString("url", "")
	if urlStr == "" {
		return mcp.NewToolResultError("url parameter is required"), nil
	}
	extractSocial := request.GetBool("extract_social", false)

	parsedURL, err := url.ParseRequestURI(urlStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid URL: %v", err)), nil
	}

	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", urlStr, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
	}
	req.Header.Set("User-Agent", s.cfg.AppConfig.DefaultUserAgent)

	client := &http.Client{Timeout: s.cfg.AppConfig.HTTPClientSettings.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch URL: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mcp.NewToolResultError(fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, resp.Status)), nil
	}

	const maxPageSize = 10 * 1024 * 1024
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(bodyBytes))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse HTML: %v", err)), nil
	}

	opts := extract.DefaultOptions()
	opts.ContextWindow = s.cfg.AppConfig.ContextWindow
	opts.ExtractSocial = extractSocial

	entry := s.log.WithField("url", urlStr)
	extractor := extract.NewExtractor(opts, nil, entry)
	matcher := match.NewMatcher(ner.NewRegexRecognizer(), match.Options{ContextWindow: opts.ContextWindow}, entry)

	candidates, socials := extractor.ExtractEmails(ctx, doc, parsedURL.String())
	contacts := matcher.Contacts(ctx, doc, candidates, socials)
	for i := range contacts {
		if s.cfg.AppConfig.EnhanceContacts {
			match.Enhance(&contacts[i])
		}
		contacts[i].ValidationScore = process.Score(&contacts[i])
	}
	contacts = match.RemoveDuplicates(contacts)

	result := map[string]interface{}{
		"url":           parsedURL.String(),
		"contact_count": len(contacts),
		"contacts":      contacts,
		"fetch_time_ms": time.Since(startTime).Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleCrawlSite handles the crawl_site tool
func (s *Server) handleCrawlSite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteKey := request.GetString("site_key", "")
	if siteKey == "" {
		return mcp.NewToolResultError("site_key parameter is required"), nil
	}

	siteCfg, exists := s.cfg.AppConfig.Sites[siteKey]
	if !exists {
		availableKeys := make([]string, 0, len(s.cfg.AppConfig.Sites))
		for k := range s.cfg.AppConfig.Sites {
			availableKeys = append(availableKeys, k)
		}
		sort.Strings(availableKeys)
		return mcp.NewToolResultError(fmt.Sprintf("site '%s' not found. Available sites: %v", siteKey, availableKeys)), nil
	}

	if s.jobManager.IsRunning(siteKey) {
		existingJob := s.jobManager.GetJobBySite(siteKey)
		result := map[string]interface{}{
			"status":   "already_running",
			"message":  "A crawl is already in progress for this site",
			"job_id":   existingJob.ID,
			"site_key": siteKey,
		}
		return mcp.NewToolResultText(formatJSON(result)), nil
	}

	job, err := s.jobManager.CreateJob(siteKey)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create job: %v", err)), nil
	}

	go s.runCrawlJob(job, siteKey, siteCfg)

	result := map[string]interface{}{
		"status":   "started",
		"job_id":   job.ID,
		"site_key": siteKey,
		"message":  "Crawl started in background. Use get_job_status to check progress.",
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// runCrawlJob drives one background crawl through the orchestrator.
func (s *Server) runCrawlJob(job *Job, siteKey string, siteCfg *config.SiteConfig) {
	jobLog := s.log.WithFields(map[string]interface{}{"job_id": job.ID, "site_key": siteKey})
	s.jobManager.UpdateStatus(job.ID, JobStatusRunning, "")
	jobLog.Info("Background crawl job started")

	jobCtx := s.jobManager.GetContext(job.ID)
	siteResult := s.cfg.Orchestrator.CrawlSite(jobCtx, siteKey, siteCfg)

	s.jobManager.RecordResult(job.ID, siteResult.RunID,
		siteResult.Summary.PagesCrawled, siteResult.Summary.PagesFailed, len(siteResult.Contacts))

	if siteResult.Err != nil {
		if jobCtx.Err() != nil {
			s.jobManager.UpdateStatus(job.ID, JobStatusCancelled, siteResult.Err.Error())
		} else {
			s.jobManager.UpdateStatus(job.ID, JobStatusFailed, siteResult.Err.Error())
		}
		jobLog.Warnf("Background crawl job ended with error: %v", siteResult.Err)
		return
	}

	s.jobManager.UpdateStatus(job.ID, JobStatusCompleted, "")
	jobLog.WithField("contacts", len(siteResult.Contacts)).Info("Background crawl job completed")
}

// handleGetJobStatus handles the get_job_status tool
func (s *Server) handleGetJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := request.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("job_id parameter is required"), nil
	}

	job := s.jobManager.GetJob(jobID)
	if job == nil {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' not found", jobID)), nil
	}
	return mcp.NewToolResultText(formatJSON(job)), nil
}

// handleSearchContacts handles the search_contacts tool
func (s *Server) handleSearchContacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	if s.cfg.Store == nil {
		return mcp.NewToolResultError("run persistence is disabled; no stored contacts to search"), nil
	}

	runID := request.GetString("run_id", "")
	maxResults := request.GetInt("max_results", 10)
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	var runIDs []string
	if runID != "" {
		runIDs = []string{runID}
	} else {
		runs, err := s.cfg.Store.ListRuns()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing runs: %v", err)), nil
		}
		for _, run := range runs {
			runIDs = append(runIDs, run.ID)
		}
	}

	needle := strings.ToLower(query)
	var matches []models.Contact

search:
	for _, id := range runIDs {
		contacts, err := s.cfg.Store.GetRunContacts(id)
		if err != nil {
			s.log.Warnf("Skipping run '%s' in search: %v", id, err)
			continue
		}
		for i := range contacts {
			if contactMatches(&contacts[i], needle) {
				matches = append(matches, contacts[i])
				if len(matches) >= maxResults {
					break search
				}
			}
		}
	}

	result := map[string]interface{}{
		"query":       query,
		"match_count": len(matches),
		"contacts":    matches,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// contactMatches reports whether any searchable field contains the needle.
func contactMatches(c *models.Contact, needle string) bool {
	for _, field := range []string{c.Email, c.Name, c.Title, c.Company} {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// formatJSON renders a value as indented JSON for tool output.
func formatJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
