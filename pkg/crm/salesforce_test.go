package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
)

func TestNewSalesforceSink_RequiresCredentials(t *testing.T) {
	t.Setenv("SALESFORCE_INSTANCE_URL", "")
	t.Setenv("SALESFORCE_ACCESS_TOKEN", "")

	_, err := NewSalesforceSink(nil, testEntry())
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrFeatureUnavailable)

	t.Setenv("SALESFORCE_INSTANCE_URL", "https://acme.my.salesforce.com")
	_, err = NewSalesforceSink(nil, testEntry())
	assert.ErrorIs(t, err, utils.ErrFeatureUnavailable, "both variables are required")

	t.Setenv("SALESFORCE_ACCESS_TOKEN", "test-token")
	sink, err := NewSalesforceSink(nil, testEntry())
	require.NoError(t, err)
	assert.Equal(t, "salesforce", sink.Name())
	assert.Equal(t, "https://acme.my.salesforce.com/services/data/v59.0/sobjects/Lead", sink.baseURL)
}

// recordedLead captures what one Lead creation sent over the wire.
type recordedLead struct {
	authorization string
	lead          salesforceLead
}

func newSalesforceServer(t *testing.T, status func(email string) int) (*httptest.Server, func() []recordedLead) {
	t.Helper()
	var mu sync.Mutex
	var recorded []recordedLead

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lead salesforceLead
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lead))

		mu.Lock()
		recorded = append(recorded, recordedLead{
			authorization: r.Header.Get("Authorization"),
			lead:          lead,
		})
		mu.Unlock()

		w.WriteHeader(status(lead.Email))
	}))

	return srv, func() []recordedLead {
		mu.Lock()
		defer mu.Unlock()
		return recorded
	}
}

func testSalesforceSink(srv *httptest.Server) *SalesforceSink {
	return &SalesforceSink{
		token:   "test-token",
		client:  srv.Client(),
		baseURL: srv.URL,
		log:     testEntry(),
	}
}

func TestSalesforceSink_Push(t *testing.T) {
	srv, requests := newSalesforceServer(t, func(string) int { return http.StatusCreated })
	defer srv.Close()

	contacts := []models.Contact{
		{
			Email:     "jane.doe@example.edu",
			Name:      "Jane Anne Doe",
			Title:     "Professor",
			Company:   "Example University",
			Phone:     "+1 555-123-4567",
			SourceURL: "https://example.edu/faculty",
		},
		{Email: "info@example.com"},
	}

	pushed, err := testSalesforceSink(srv).Push(context.Background(), contacts)
	require.NoError(t, err)
	assert.Equal(t, 2, pushed)

	sent := requests()
	require.Len(t, sent, 2)
	assert.Equal(t, "Bearer test-token", sent[0].authorization)

	lead := sent[0].lead
	assert.Equal(t, "jane.doe@example.edu", lead.Email)
	assert.Equal(t, "Jane", lead.FirstName)
	assert.Equal(t, "Anne Doe", lead.LastName)
	assert.Equal(t, "Professor", lead.Title)
	assert.Equal(t, "Example University", lead.Company)
	assert.Equal(t, "+1 555-123-4567", lead.Phone)
	assert.Equal(t, "Web Scraping", lead.LeadSource)
	assert.Equal(t, "Extracted from: https://example.edu/faculty", lead.Description)

	// Salesforce rejects Leads without LastName and Company
	assert.Equal(t, "Unknown", sent[1].lead.LastName)
	assert.Equal(t, "Unknown", sent[1].lead.Company)
	assert.Empty(t, sent[1].lead.Description)
}

func TestSalesforceSink_RejectedLeadIsSkipped(t *testing.T) {
	srv, requests := newSalesforceServer(t, func(email string) int {
		if email == "bad@example.com" {
			return http.StatusBadRequest
		}
		return http.StatusCreated
	})
	defer srv.Close()

	contacts := []models.Contact{
		{Email: "bad@example.com"},
		{Email: "good@example.com"},
	}

	pushed, err := testSalesforceSink(srv).Push(context.Background(), contacts)
	require.NoError(t, err, "individual rejections do not fail the batch")
	assert.Equal(t, 1, pushed)
	assert.Len(t, requests(), 2, "the batch continues past the rejection")
}

func TestSalesforceSink_CancelledContext(t *testing.T) {
	srv, requests := newSalesforceServer(t, func(string) int { return http.StatusCreated })
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pushed, err := testSalesforceSink(srv).Push(ctx, []models.Contact{{Email: "jane@example.com"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, pushed)
	assert.Empty(t, requests())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HUBSPOT_API_KEY", "")
	t.Setenv("SALESFORCE_INSTANCE_URL", "")
	t.Setenv("SALESFORCE_ACCESS_TOKEN", "")

	assert.Empty(t, FromEnv(nil, testEntry()))

	t.Setenv("HUBSPOT_API_KEY", "test-key")
	sinks := FromEnv(nil, testEntry())
	require.Len(t, sinks, 1)
	assert.Equal(t, "hubspot", sinks[0].Name())

	t.Setenv("SALESFORCE_INSTANCE_URL", "https://acme.my.salesforce.com")
	t.Setenv("SALESFORCE_ACCESS_TOKEN", "test-token")
	sinks = FromEnv(nil, testEntry())
	require.Len(t, sinks, 2)
	assert.Equal(t, "hubspot", sinks[0].Name())
	assert.Equal(t, "salesforce", sinks[1].Name())
}
