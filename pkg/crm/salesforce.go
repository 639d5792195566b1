package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"contact-scraper/pkg/models"
	"contact-scraper/pkg/utils"
)

const (
	salesforceInstanceEnv = "SALESFORCE_INSTANCE_URL"
	salesforceTokenEnv    = "SALESFORCE_ACCESS_TOKEN"
	salesforceLeadPath    = "/services/data/v59.0/sobjects/Lead"
	salesforcePushTimeout = 15 * time.Second
)

// SalesforceSink creates Leads through the Salesforce REST API. Credentials
// come from the environment only; they are never read from config files.
type SalesforceSink struct {
	token   string
	client  *http.Client
	baseURL string
	log     *logrus.Entry
}

// NewSalesforceSink builds the sink from the environment. Returns an error
// wrapping ErrFeatureUnavailable when the instance URL or token is unset.
func NewSalesforceSink(client *http.Client, log *logrus.Entry) (*SalesforceSink, error) {
	instance := os.Getenv(salesforceInstanceEnv)
	token := os.Getenv(salesforceTokenEnv)
	if instance == "" || token == "" {
		return nil, fmt.Errorf("%w: %s and %s must both be set", utils.ErrFeatureUnavailable, salesforceInstanceEnv, salesforceTokenEnv)
	}
	if client == nil {
		client = &http.Client{Timeout: salesforcePushTimeout}
	}
	return &SalesforceSink{
		token:   token,
		client:  client,
		baseURL: strings.TrimRight(instance, "/") + salesforceLeadPath,
		log:     log,
	}, nil
}

func (*SalesforceSink) Name() string { return "salesforce" }

// salesforceLead is the field mapping for a Lead creation request. Salesforce
// requires LastName and Company, so missing values fall back to "Unknown".
type salesforceLead struct {
	Email       string `json:"Email"`
	FirstName   string `json:"FirstName,omitempty"`
	LastName    string `json:"LastName"`
	Title       string `json:"Title,omitempty"`
	Company     string `json:"Company"`
	Phone       string `json:"Phone,omitempty"`
	LeadSource  string `json:"LeadSource"`
	Description string `json:"Description,omitempty"`
}

// Push creates one Lead per record. Failures are logged per contact and
// skipped.
func (s *SalesforceSink) Push(ctx context.Context, contacts []models.Contact) (int, error) {
	pushed := 0
	for i := range contacts {
		if err := ctx.Err(); err != nil {
			return pushed, err
		}
		if err := s.pushOne(ctx, &contacts[i]); err != nil {
			s.log.WithField("email", contacts[i].Email).Warnf("Salesforce push failed: %v", err)
			continue
		}
		pushed++
	}
	s.log.WithFields(logrus.Fields{"pushed": pushed, "total": len(contacts)}).Info("Salesforce push complete")
	return pushed, nil
}

func (s *SalesforceSink) pushOne(ctx context.Context, c *models.Contact) error {
	first, last := splitName(c.Name)
	if last == "" {
		last = "Unknown"
	}
	company := c.Company
	if company == "" {
		company = "Unknown"
	}

	lead := salesforceLead{
		Email:      c.Email,
		FirstName:  first,
		LastName:   last,
		Title:      c.Title,
		Company:    company,
		Phone:      c.Phone,
		LeadSource: "Web Scraping",
	}
	if c.SourceURL != "" {
		lead.Description = "Extracted from: " + c.SourceURL
	}

	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshaling lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, resp.StatusCode, resp.Status)
}
