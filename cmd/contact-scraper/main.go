package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/crm"
	"contact-scraper/pkg/export"
	"contact-scraper/pkg/extract"
	"contact-scraper/pkg/fetch"
	"contact-scraper/pkg/match"
	"contact-scraper/pkg/models"
	"contact-scraper/pkg/ner"
	"contact-scraper/pkg/orchestrate"
	"contact-scraper/pkg/process"
	"contact-scraper/pkg/storage"
	"contact-scraper/pkg/utils"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "crawl":
		runCrawl(os.Args[2:])
	case "extract":
		runExtract(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "list-sites":
		runListSites(os.Args[2:])
	case "list-runs":
		runListRuns(os.Args[2:])
	case "show-run":
		runShowRun(os.Args[2:])
	case "mcp-server":
		runMcpServer(os.Args[2:])
	case "version":
		fmt.Printf("contact-scraper %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `contact-scraper - Website contact extraction crawler

Usage:
  contact-scraper <command> [options]

Commands:
  crawl       Crawl one or more sites and export the contacts found
  extract     Fetch a single URL and print its contacts
  validate    Validate configuration file
  list-sites  List available site keys
  list-runs   List persisted crawl runs
  show-run    Show one persisted run and optionally re-export it
  mcp-server  Start MCP server for AI tool integration
  version     Show version info

Run 'contact-scraper <command> -h' for command-specific help.`)
}

// loadConfig loads and parses the config file, then overlays environment
// overrides.
func loadConfig(path string) (*config.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg config.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	return &cfg, nil
}

// loadAndValidateConfig loads the config file, validates it, and logs warnings.
func loadAndValidateConfig(configFile string, log *logrus.Logger) *config.AppConfig {
	log.Infof("Loading configuration from %s", configFile)
	appCfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	appWarnings, err := appCfg.Validate()
	for _, w := range appWarnings {
		log.Warn(w)
	}
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	return appCfg
}

// setupLogger creates a configured logrus.Logger with the given log level.
func setupLogger(logLevelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
	}

	return log
}

// validateSiteConfigs validates the configuration for each site key and logs warnings.
func validateSiteConfigs(appCfg *config.AppConfig, siteKeys []string, log *logrus.Logger) {
	for _, key := range siteKeys {
		siteCfg := appCfg.Sites[key]
		siteWarnings, err := siteCfg.Validate()
		if err != nil {
			log.Fatalf("Site '%s' configuration error: %v", key, err)
		}
		for _, w := range siteWarnings {
			log.Warnf("[%s] %s", key, w)
		}
	}
}

// startPprof starts the pprof HTTP server if addr is non-empty.
func startPprof(addr string, log *logrus.Logger) {
	if addr != "" {
		go func() {
			log.Infof("Starting pprof server at http://%s/debug/pprof/", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Errorf("pprof server error: %v", err)
			}
		}()
	}
}

// adHocSite builds a synthetic single-URL site config keyed by its host.
func adHocSite(rawURL string) (string, *config.SiteConfig, error) {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid URL '%s': %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, fmt.Errorf("unsupported scheme '%s' in '%s'", u.Scheme, rawURL)
	}
	key := utils.SanitizeFilename(u.Hostname())
	return key, &config.SiteConfig{
		StartURLs:     []string{rawURL},
		AllowedDomain: u.Hostname(),
	}, nil
}

// readURLFile reads one URL per line, skipping blanks and # comments.
func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// runCrawl handles the crawl subcommand
func runCrawl(args []string) {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	siteKey := fs.String("site", "", "Site key from config (single site)")
	sites := fs.String("sites", "", "Comma-separated site keys for parallel crawling")
	allSites := fs.Bool("all-sites", false, "Crawl all configured sites")
	urlFlag := fs.String("url", "", "Ad-hoc crawl of a single URL (no config entry needed)")
	urlFile := fs.String("url-file", "", "File with one URL per line for ad-hoc crawling")
	outputDir := fs.String("output", "", "Output directory (overrides config)")
	format := fs.String("format", "", "Output format: csv, json or excel (overrides config)")
	pushCRM := fs.Bool("push-crm", false, "Push contacts to the configured CRM after export")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	pprofAddr := fs.String("pprof", "", "pprof address, e.g. localhost:6060 (disabled by default)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contact-scraper crawl [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  contact-scraper crawl -site university_directory\n")
		fmt.Fprintf(os.Stderr, "  contact-scraper crawl -url https://example.com/contact\n")
		fmt.Fprintf(os.Stderr, "  contact-scraper crawl --all-sites -format excel\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel)
	appCfg := loadAndValidateConfig(*configFile, log)

	if *outputDir != "" {
		appCfg.OutputDir = *outputDir
	}
	if *format != "" {
		appCfg.OutputFormat = *format
		if _, err := export.ForFormat(appCfg.OutputFormat); err != nil {
			log.Fatalf("Invalid format: %v", err)
		}
	}

	// Resolve which sites to crawl; ad-hoc URLs become synthetic sites
	var siteKeys []string
	adHocURLs := []string{}
	if *urlFlag != "" {
		adHocURLs = append(adHocURLs, *urlFlag)
	}
	if *urlFile != "" {
		fileURLs, err := readURLFile(*urlFile)
		if err != nil {
			log.Fatalf("Reading URL file: %v", err)
		}
		adHocURLs = append(adHocURLs, fileURLs...)
	}

	if len(adHocURLs) > 0 {
		if appCfg.Sites == nil {
			appCfg.Sites = make(map[string]*config.SiteConfig)
		}
		for _, rawURL := range adHocURLs {
			key, siteCfg, err := adHocSite(rawURL)
			if err != nil {
				log.Fatalf("Ad-hoc URL error: %v", err)
			}
			if existing, ok := appCfg.Sites[key]; ok && len(existing.StartURLs) > 0 && existing.AllowedDomain == siteCfg.AllowedDomain {
				existing.StartURLs = append(existing.StartURLs, rawURL)
			} else {
				appCfg.Sites[key] = siteCfg
			}
			siteKeys = append(siteKeys, key)
		}
		siteKeys = uniqueStrings(siteKeys)
	} else if *allSites {
		siteKeys = orchestrate.AllSiteKeys(appCfg)
		sort.Strings(siteKeys)
		log.Infof("All sites mode: found %d sites", len(siteKeys))
	} else if *sites != "" {
		for _, s := range strings.Split(*sites, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				siteKeys = append(siteKeys, s)
			}
		}
	} else if *siteKey != "" {
		siteKeys = []string{*siteKey}
	} else {
		fmt.Fprintln(os.Stderr, "Error: one of -site, -sites, --all-sites, -url or -url-file is required")
		fs.Usage()
		os.Exit(1)
	}

	if err := orchestrate.ValidateSiteKeys(appCfg, siteKeys); err != nil {
		log.Fatalf("Invalid site keys: %v", err)
	}
	validateSiteConfigs(appCfg, siteKeys, log)
	startPprof(*pprofAddr, log)

	os.Exit(executeCrawl(appCfg, siteKeys, *pushCRM, log))
}

// executeCrawl runs the orchestrator over siteKeys, exports results, and
// returns the process exit code.
func executeCrawl(appCfg *config.AppConfig, siteKeys []string, pushCRM bool, log *logrus.Logger) int {
	var crawlCtx context.Context
	var cancelCrawl context.CancelFunc

	if appCfg.GlobalCrawlTimeout > 0 {
		log.Infof("Setting global crawl timeout: %v", appCfg.GlobalCrawlTimeout)
		crawlCtx, cancelCrawl = context.WithTimeout(context.Background(), appCfg.GlobalCrawlTimeout)
	} else {
		crawlCtx, cancelCrawl = context.WithCancel(context.Background())
	}
	defer cancelCrawl()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal: %v. Initiating graceful shutdown...", sig)
		cancelCrawl()

		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		}
	}()

	// Run persistence is optional; a nil store disables it downstream
	var store storage.ContactStore
	if appCfg.PersistRuns {
		badgerStore, err := storage.NewBadgerStore(appCfg.StateDir, log.WithField("component", "storage"))
		if err != nil {
			log.Fatalf("Failed to initialize run store: %v", err)
		}
		defer badgerStore.Close()
		go badgerStore.RunGC(crawlCtx, 10*time.Minute)
		store = badgerStore
	}

	orch := orchestrate.NewOrchestrator(appCfg, store, log.WithField("component", "orchestrate"))
	results := orch.RunAll(crawlCtx, siteKeys)

	var sinks []crm.Sink
	if pushCRM {
		sinks = crm.FromEnv(nil, log.WithField("component", "crm"))
		if len(sinks) == 0 {
			log.Error("CRM push requested but no CRM credentials are set in the environment")
		}
	}

	hasFailure := false
	for _, r := range results {
		if r.Err != nil {
			hasFailure = true
			if errors.Is(r.Err, context.Canceled) {
				color.Yellow("  %s: cancelled after %d pages", r.SiteKey, r.Summary.PagesCrawled)
			} else {
				color.Red("  %s: FAILED: %v", r.SiteKey, r.Err)
			}
			continue
		}

		path, err := export.WriteFile(appCfg.OutputDir, appCfg.OutputFormat, r.Contacts, &r.Summary)
		if err != nil {
			log.Errorf("Export failed for '%s': %v", r.SiteKey, err)
			hasFailure = true
			continue
		}
		color.Green("  %s: %d contacts from %d pages -> %s", r.SiteKey, len(r.Contacts), r.Summary.PagesCrawled, path)

		if len(r.Contacts) > 0 {
			for _, sink := range sinks {
				pushed, err := sink.Push(crawlCtx, r.Contacts)
				if err != nil {
					log.Errorf("CRM push for '%s' to %s aborted: %v", r.SiteKey, sink.Name(), err)
					continue
				}
				log.Infof("Pushed %d/%d contacts from '%s' to %s", pushed, len(r.Contacts), r.SiteKey, sink.Name())
			}
		}
	}

	if crawlCtx.Err() != nil && errors.Is(crawlCtx.Err(), context.Canceled) {
		log.Warn("Crawl cancelled gracefully.")
		return 0
	}
	if hasFailure {
		return 1
	}
	return 0
}

// runExtract handles the extract subcommand: a one-shot fetch and extraction
// of a single page, printed to stdout.
func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file (optional; defaults apply if missing)")
	urlFlag := fs.String("url", "", "URL to fetch and extract (required)")
	social := fs.Bool("social", false, "Also collect social profile links")
	asJSON := fs.Bool("json", false, "Print contacts as JSON")
	logLevel := fs.String("loglevel", "warn", "Log level (debug, info, warn, error, fatal)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contact-scraper extract -url <url> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *urlFlag == "" {
		fmt.Fprintln(os.Stderr, "Error: -url is required")
		fs.Usage()
		os.Exit(1)
	}

	log := setupLogger(*logLevel)

	// The extract subcommand should work without a config file
	appCfg, err := loadConfig(*configFile)
	if err != nil {
		appCfg = &config.AppConfig{}
	}
	if _, err := appCfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), appCfg.HTTPClientSettings.Timeout)
	defer cancel()

	contacts, err := extractOnePage(ctx, appCfg, *urlFlag, *social, log)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	if *asJSON {
		fmt.Println(mustJSON(contacts))
		return
	}

	if len(contacts) == 0 {
		fmt.Println("No contacts found.")
		return
	}
	for i := range contacts {
		printContact(&contacts[i])
	}
	fmt.Printf("\n%d contact(s) found.\n", len(contacts))
}

// extractOnePage runs the full single-page pipeline: fetch, parse, extract,
// match, enhance, dedupe, score.
func extractOnePage(ctx context.Context, appCfg *config.AppConfig, pageURL string, social bool, log *logrus.Logger) ([]models.Contact, error) {
	parsedURL, err := url.ParseRequestURI(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	client := fetch.NewClient(appCfg.HTTPClientSettings, log)
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", appCfg.DefaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, resp.StatusCode, resp.Status)
	}

	const maxPageSize = 10 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrParsing, err)
	}

	opts := extract.DefaultOptions()
	if appCfg.ContextWindow > 0 {
		opts.ContextWindow = appCfg.ContextWindow
	}
	opts.ExtractSocial = social

	entry := log.WithField("url", pageURL)
	extractor := extract.NewExtractor(opts, nil, entry)
	matcher := match.NewMatcher(ner.Select(appCfg.NERProvider, entry), match.Options{ContextWindow: opts.ContextWindow}, entry)

	candidates, socials := extractor.ExtractEmails(ctx, doc, parsedURL.String())
	contacts := matcher.Contacts(ctx, doc, candidates, socials)
	for i := range contacts {
		if appCfg.EnhanceContacts {
			match.Enhance(&contacts[i])
		}
		contacts[i].ValidationScore = process.Score(&contacts[i])
	}
	return match.RemoveDuplicates(contacts), nil
}

// printContact renders one contact for terminal output.
func printContact(c *models.Contact) {
	fmt.Println()
	color.New(color.FgGreen, color.Bold).Printf("%s\n", c.Email)
	if c.Name != "" {
		fmt.Printf("  Name:    %s\n", c.Name)
	}
	if c.Title != "" {
		fmt.Printf("  Title:   %s\n", c.Title)
	}
	if c.Company != "" {
		fmt.Printf("  Company: %s\n", c.Company)
	}
	if c.Phone != "" {
		fmt.Printf("  Phone:   %s\n", c.Phone)
	}
	for platform, profile := range c.SocialProfiles {
		fmt.Printf("  %s: %s\n", platform, profile)
	}
	fmt.Printf("  Method:  %s (confidence %.2f, score %.2f)\n", c.ExtractionMethod, c.Confidence, c.ValidationScore)
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	siteKey := fs.String("site", "", "Site key to validate (optional, validates all if empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contact-scraper validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, *siteKey, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath, siteKey string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	if siteKey != "" {
		siteCfg, ok := appCfg.Sites[siteKey]
		if !ok {
			fmt.Fprintf(stderr, "Error: site '%s' not found in config\n", siteKey)
			return 1
		}
		siteWarnings, err := siteCfg.Validate()
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: [%s] %v\n", siteKey, err)
			return 1
		}
		for _, w := range siteWarnings {
			fmt.Fprintf(stdout, "WARN: [%s] %s\n", siteKey, w)
		}
		fmt.Fprintf(stdout, "OK: Site '%s' configuration is valid\n", siteKey)
	} else {
		hasError := false
		keys := make([]string, 0, len(appCfg.Sites))
		for k := range appCfg.Sites {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			siteCfg := appCfg.Sites[key]
			siteWarnings, err := siteCfg.Validate()
			if err != nil {
				fmt.Fprintf(stderr, "ERROR: [%s] %v\n", key, err)
				hasError = true
				continue
			}
			for _, w := range siteWarnings {
				fmt.Fprintf(stdout, "WARN: [%s] %s\n", key, w)
			}
			fmt.Fprintf(stdout, "OK: [%s]\n", key)
		}
		if hasError {
			return 1
		}
	}

	fmt.Fprintln(stdout, "\nConfiguration valid.")
	return 0
}

// runListSites handles the list-sites subcommand
func runListSites(args []string) {
	fs := flag.NewFlagSet("list-sites", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contact-scraper list-sites [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doListSites(*configFile, os.Stdout, os.Stderr))
}

// doListSites lists sites and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doListSites(configPath string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	keys := make([]string, 0, len(appCfg.Sites))
	for k := range appCfg.Sites {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(stdout, "Sites in %s:\n\n", configPath)
	for _, key := range keys {
		site := appCfg.Sites[key]
		fmt.Fprintf(stdout, "  %s\n", key)
		fmt.Fprintf(stdout, "    Domain: %s\n", site.AllowedDomain)
		fmt.Fprintf(stdout, "    Start URLs: %d\n", len(site.StartURLs))
		fmt.Fprintf(stdout, "    Max Depth: %d, Max Pages: %d\n",
			config.GetEffectiveMaxDepth(site, appCfg), config.GetEffectiveMaxPages(site, appCfg))
		fmt.Fprintln(stdout)
	}
	return 0
}

// runListRuns handles the list-runs subcommand
func runListRuns(args []string) {
	fs := flag.NewFlagSet("list-runs", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contact-scraper list-runs [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger("warn")
	appCfg := loadAndValidateConfig(*configFile, log)
	store := openStore(appCfg, log)
	defer store.Close()

	runs, err := store.ListRuns()
	if err != nil {
		log.Fatalf("Listing runs: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No persisted runs.")
		return
	}

	fmt.Printf("%-38s %-10s %-30s %8s %8s %10s  %s\n",
		"RUN ID", "STATUS", "DOMAIN", "PAGES", "FAILED", "CONTACTS", "UPDATED")
	for _, run := range runs {
		fmt.Printf("%-38s %-10s %-30s %8d %8d %10d  %s\n",
			run.ID, run.Status, run.Summary.Domain,
			run.Summary.PagesCrawled, run.Summary.PagesFailed, run.Summary.ContactsFound,
			run.UpdatedAt.Format(time.RFC3339))
	}
}

// runShowRun handles the show-run subcommand
func runShowRun(args []string) {
	fs := flag.NewFlagSet("show-run", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	runID := fs.String("run", "", "Run ID to show (required)")
	exportFormat := fs.String("export", "", "Re-export contacts in this format: csv, json or excel")
	outputDir := fs.String("output", "", "Output directory for re-export (overrides config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contact-scraper show-run -run <id> [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *runID == "" {
		fmt.Fprintln(os.Stderr, "Error: -run is required")
		fs.Usage()
		os.Exit(1)
	}

	log := setupLogger("warn")
	appCfg := loadAndValidateConfig(*configFile, log)
	store := openStore(appCfg, log)
	defer store.Close()

	run, err := store.GetRun(*runID)
	if err != nil {
		log.Fatalf("Reading run: %v", err)
	}
	if run == nil {
		log.Fatalf("Run '%s' not found", *runID)
	}

	contacts, err := store.GetRunContacts(*runID)
	if err != nil {
		log.Fatalf("Reading run contacts: %v", err)
	}

	fmt.Println(mustJSON(run))
	for i := range contacts {
		printContact(&contacts[i])
	}
	fmt.Printf("\n%d contact(s) in run.\n", len(contacts))

	if *exportFormat != "" {
		dir := appCfg.OutputDir
		if *outputDir != "" {
			dir = *outputDir
		}
		path, err := export.WriteFile(dir, *exportFormat, contacts, &run.Summary)
		if err != nil {
			log.Fatalf("Re-export failed: %v", err)
		}
		color.Green("Exported to %s", path)
	}
}

// openStore opens the Badger run store, forcing a state dir default when
// persistence was never configured.
func openStore(appCfg *config.AppConfig, log *logrus.Logger) *storage.BadgerStore {
	if appCfg.StateDir == "" {
		appCfg.StateDir = "./crawler_state"
	}
	store, err := storage.NewBadgerStore(appCfg.StateDir, log.WithField("component", "storage"))
	if err != nil {
		log.Fatalf("Failed to open run store: %v", err)
	}
	return store
}

// mustJSON renders a value as indented JSON, falling back to fmt on error.
func mustJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
