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
	hubspotAPIKeyEnv   = "HUBSPOT_API_KEY"
	hubspotContactsURL = "https://api.hubapi.com/crm/v3/objects/contacts"
	hubspotPushTimeout = 15 * time.Second
)

// HubSpotSink creates contacts through the HubSpot CRM v3 API. The API key
// comes from the environment only; it is never read from config files.
type HubSpotSink struct {
	apiKey  string
	client  *http.Client
	baseURL string
	log     *logrus.Entry
}

// NewHubSpotSink builds the sink from the environment. Returns an error
// wrapping ErrFeatureUnavailable when no API key is set.
func NewHubSpotSink(client *http.Client, log *logrus.Entry) (*HubSpotSink, error) {
	apiKey := os.Getenv(hubspotAPIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", utils.ErrFeatureUnavailable, hubspotAPIKeyEnv)
	}
	if client == nil {
		client = &http.Client{Timeout: hubspotPushTimeout}
	}
	return &HubSpotSink{
		apiKey:  apiKey,
		client:  client,
		baseURL: hubspotContactsURL,
		log:     log,
	}, nil
}

func (*HubSpotSink) Name() string { return "hubspot" }

// hubspotProperties is the field mapping for a contact creation request.
type hubspotProperties struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
	JobTitle  string `json:"jobtitle,omitempty"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Website   string `json:"website,omitempty"`
}

// Push creates one HubSpot contact per record. Failures are logged per
// contact and skipped; a 409 (already exists) counts as delivered.
func (h *HubSpotSink) Push(ctx context.Context, contacts []models.Contact) (int, error) {
	pushed := 0
	for i := range contacts {
		if err := ctx.Err(); err != nil {
			return pushed, err
		}
		if err := h.pushOne(ctx, &contacts[i]); err != nil {
			h.log.WithField("email", contacts[i].Email).Warnf("HubSpot push failed: %v", err)
			continue
		}
		pushed++
	}
	h.log.WithFields(logrus.Fields{"pushed": pushed, "total": len(contacts)}).Info("HubSpot push complete")
	return pushed, nil
}

func (h *HubSpotSink) pushOne(ctx context.Context, c *models.Contact) error {
	first, last := splitName(c.Name)
	payload := struct {
		Properties hubspotProperties `json:"properties"`
	}{
		Properties: hubspotProperties{
			Email:     c.Email,
			FirstName: first,
			LastName:  last,
			JobTitle:  c.Title,
			Company:   c.Company,
			Phone:     c.Phone,
			Website:   c.SourceURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling contact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", h.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", utils.ErrRequestCreation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		// Already in the CRM, nothing to do
		return nil
	default:
		return fmt.Errorf("%w: status %d %s", utils.ErrClientHTTPError, resp.StatusCode, resp.Status)
	}
}

// splitName breaks a display name into HubSpot's first/last fields; middle
// tokens join the last name.
func splitName(name string) (string, string) {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}
