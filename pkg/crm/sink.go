// Package crm pushes finished contacts to external CRM systems. Sinks are
// best-effort: one rejected contact never aborts the batch.
package crm

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/models"
)

// Sink delivers contacts to an external system.
type Sink interface {
	// Push sends the contacts, returning how many were accepted. A non-nil
	// error means the sink itself was unusable, not that individual records
	// failed.
	Push(ctx context.Context, contacts []models.Contact) (int, error)

	// Name identifies the sink for logging.
	Name() string
}

// FromEnv returns every sink whose credentials are present in the
// environment. An empty slice means no CRM is configured.
func FromEnv(client *http.Client, log *logrus.Entry) []Sink {
	var sinks []Sink
	if hubspot, err := NewHubSpotSink(client, log); err == nil {
		sinks = append(sinks, hubspot)
	} else {
		log.Debugf("HubSpot sink unavailable: %v", err)
	}
	if salesforce, err := NewSalesforceSink(client, log); err == nil {
		sinks = append(sinks, salesforce)
	} else {
		log.Debugf("Salesforce sink unavailable: %v", err)
	}
	return sinks
}
