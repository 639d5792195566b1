// Package storage persists crawl runs and their contacts so finished crawls
// can be listed, inspected and searched after the process restarts.
package storage

import (
	"context"
	"time"

	"contact-scraper/pkg/models"
)

// ContactStore is the persistence surface used by the orchestrator and the
// MCP tools.
type ContactStore interface {
	// SaveRun creates or overwrites a run record.
	SaveRun(record *models.RunRecord) error

	// UpdateRunStatus transitions a run's lifecycle status.
	UpdateRunStatus(runID string, status models.RunStatus) error

	// GetRun returns a run record, or nil when the ID is unknown.
	GetRun(runID string) (*models.RunRecord, error)

	// ListRuns returns all run records, most recently updated first.
	ListRuns() ([]models.RunRecord, error)

	// AppendContacts stores contacts under a run, preserving order across
	// calls.
	AppendContacts(runID string, contacts []models.Contact) error

	// GetRunContacts returns a run's contacts in stored order.
	GetRunContacts(runID string) ([]models.Contact, error)

	// RunGC runs periodic value-log garbage collection until ctx ends.
	// Intended to run in its own goroutine.
	RunGC(ctx context.Context, interval time.Duration)

	// Close cleanly closes the store.
	Close() error
}
