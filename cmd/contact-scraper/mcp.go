package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/mcp"
	"contact-scraper/pkg/orchestrate"
	"contact-scraper/pkg/storage"
)

// runMcpServer handles the mcp-server subcommand
func runMcpServer(args []string) {
	fs := flag.NewFlagSet("mcp-server", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	transport := fs.String("transport", "stdio", "Transport type (stdio, sse)")
	port := fs.Int("port", 8080, "HTTP port (for sse transport)")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: contact-scraper mcp-server [options]

Start an MCP (Model Context Protocol) server for AI tool integration.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Start with stdio transport
  contact-scraper mcp-server -config config.yaml

  # Start with SSE transport on port 8080
  contact-scraper mcp-server -config config.yaml -transport sse -port 8080

Available MCP Tools:
  list_sites       List all configured sites
  extract_page     Fetch a single URL and extract its contacts
  crawl_site       Start a background contact crawl for a site
  get_job_status   Check a background crawl job
  search_contacts  Search contacts from persisted runs
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doMcpServer(*configFile, *transport, *port, *logLevel, os.Stderr))
}

// doMcpServer is the testable implementation of the MCP server
func doMcpServer(configPath, transport string, port int, logLevel string, stderr io.Writer) int {
	// MCP protocol uses stdout, logs go to stderr
	log := logrus.New()
	log.SetOutput(stderr)
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid log level: %s\n", logLevel)
		return 1
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return 1
	}

	serverCtx, cancelServer := context.WithCancel(context.Background())
	defer cancelServer()

	var store storage.ContactStore
	if appCfg.PersistRuns {
		badgerStore, err := storage.NewBadgerStore(appCfg.StateDir, log.WithField("component", "storage"))
		if err != nil {
			fmt.Fprintf(stderr, "Error opening run store: %v\n", err)
			return 1
		}
		defer badgerStore.Close()
		go badgerStore.RunGC(serverCtx, 10*time.Minute)
		store = badgerStore
	}

	orch := orchestrate.NewOrchestrator(appCfg, store, log.WithField("component", "orchestrate"))

	serverCfg := &mcp.ServerConfig{
		AppConfig:    appCfg,
		ConfigPath:   configPath,
		Transport:    transport,
		Port:         port,
		Logger:       log,
		Store:        store,
		Orchestrator: orch,
	}

	server, err := mcp.NewServer(serverCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating MCP server: %v\n", err)
		return 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig := <-sigChan
		log.Warnf("Received signal %v, shutting down MCP server...", sig)
		server.Shutdown(serverCtx)
		cancelServer()
		os.Exit(0)
	}()

	log.Infof("Starting MCP server (transport: %s)", transport)

	if err := server.Run(); err != nil {
		fmt.Fprintf(stderr, "MCP server error: %v\n", err)
		return 1
	}

	return 0
}
