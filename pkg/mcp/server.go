// Package mcp exposes the contact scraper over the Model Context Protocol:
// synchronous single-page extraction, background site crawls, and search
// over persisted runs.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/config"
	"contact-scraper/pkg/orchestrate"
	"contact-scraper/pkg/storage"
)

const (
	serverName    = "contact-scraper"
	serverVersion = "1.0.0"
)

// ServerConfig holds everything the MCP server needs.
type ServerConfig struct {
	AppConfig    *config.AppConfig
	ConfigPath   string
	Transport    string // "stdio" or "sse"
	Port         int
	Logger       *logrus.Logger
	Store        storage.ContactStore // nil disables run search
	Orchestrator *orchestrate.Orchestrator
}

// Server wraps the MCP server with the scraper's tools.
type Server struct {
	mcpServer  *server.MCPServer
	cfg        *ServerConfig
	log        *logrus.Entry
	jobManager *JobManager
}

// NewServer creates a new MCP server instance.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("AppConfig is required")
	}
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("Orchestrator is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer:  mcpServer,
		cfg:        cfg,
		log:        cfg.Logger.WithField("component", "mcp"),
		jobManager: NewJobManager(),
	}

	s.registerTools()
	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	listSitesTool := mcp.NewTool("list_sites",
		mcp.WithDescription("List all configured sites available for contact crawling"),
	)
	s.mcpServer.AddTool(listSitesTool, s.handleListSites)

	extractPageTool := mcp.NewTool("extract_page",
		mcp.WithDescription("Fetch a single URL and extract contacts (emails with name/title/company/phone attribution) from it"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to fetch and extract contacts from"),
		),
		mcp.WithBoolean("extract_social",
			mcp.Description("Also collect social profile links found on the page"),
		),
	)
	s.mcpServer.AddTool(extractPageTool, s.handleExtractPage)

	crawlSiteTool := mcp.NewTool("crawl_site",
		mcp.WithDescription("Start a background contact crawl for a configured site. Returns immediately with a job ID."),
		mcp.WithString("site_key",
			mcp.Required(),
			mcp.Description("Site key from the config file"),
		),
	)
	s.mcpServer.AddTool(crawlSiteTool, s.handleCrawlSite)

	getJobStatusTool := mcp.NewTool("get_job_status",
		mcp.WithDescription("Get the status of a crawl job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job ID returned by crawl_site"),
		),
	)
	s.mcpServer.AddTool(getJobStatusTool, s.handleGetJobStatus)

	searchContactsTool := mcp.NewTool("search_contacts",
		mcp.WithDescription("Search contacts from persisted crawl runs by email, name, title or company"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (case-insensitive substring match)"),
		),
		mcp.WithString("run_id",
			mcp.Description("Limit search to one run (optional)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 10, max: 100)"),
		),
	)
	s.mcpServer.AddTool(searchContactsTool, s.handleSearchContacts)

	s.log.Infof("Registered %d MCP tools", 5)
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down MCP server...")
	s.jobManager.CancelAll()
	return nil
}
