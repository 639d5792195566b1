package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContact_FilledFieldCount(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		want    int
	}{
		{
			name:    "email only",
			contact: Contact{Email: "a@b.com"},
			want:    0,
		},
		{
			name:    "name and phone",
			contact: Contact{Email: "a@b.com", Name: "Jane Doe", Phone: "+15551234567"},
			want:    2,
		},
		{
			name: "all four",
			contact: Contact{
				Email: "a@b.com", Name: "Jane Doe", Title: "Professor",
				Company: "Acme Corporation", Phone: "+15551234567",
			},
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.contact.FilledFieldCount())
		})
	}
}

func TestContact_JSONRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second).UTC()
	contact := Contact{
		Email:            "jane.doe@example.edu",
		Name:             "Jane Doe",
		Title:            "Professor",
		Company:          "Example University",
		Phone:            "+15551234567",
		SourceURL:        "https://example.edu/faculty",
		ExtractionMethod: MethodMailto,
		Confidence:       0.95,
		ValidationScore:  0.9,
		Context:          "Jane Doe, Professor of Computer Science",
		SocialProfiles:   map[string]string{"linkedin": "https://linkedin.com/in/janedoe"},
		ExtractedAt:      now,
	}

	data, err := json.Marshal(contact)
	require.NoError(t, err)

	var got Contact
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, contact, got)
}

func TestContact_OmitEmpty(t *testing.T) {
	contact := Contact{
		Email:            "info@example.com",
		SourceURL:        "https://example.com",
		ExtractionMethod: MethodTextPattern,
		Confidence:       0.8,
	}

	data, err := json.Marshal(contact)
	require.NoError(t, err)

	raw := string(data)
	assert.NotContains(t, raw, `"name"`)
	assert.NotContains(t, raw, `"title"`)
	assert.NotContains(t, raw, `"company"`)
	assert.NotContains(t, raw, `"phone"`)
	assert.NotContains(t, raw, `"social_profiles"`)
	assert.Contains(t, raw, `"email"`)
	assert.Contains(t, raw, `"source_url"`)
}

func TestRunRecord_JSONRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second).UTC()
	record := RunRecord{
		ID:     "run-123",
		Status: RunStatusCompleted,
		Summary: CrawlSummary{
			RunID:         "run-123",
			StartURL:      "https://example.com/contact",
			Domain:        "example.com",
			StartTime:     now,
			EndTime:       now.Add(time.Minute),
			PagesCrawled:  10,
			PagesFailed:   2,
			ContactsFound: 5,
			MaxDepthSeen:  3,
			Failed:        map[string]string{"https://example.com/broken": "HTTP_404"},
		},
		UpdatedAt: now,
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var got RunRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, record, got)
}

func TestCrawlSummary_OmitEmptyFailed(t *testing.T) {
	summary := CrawlSummary{
		RunID:  "run-1",
		Domain: "example.com",
	}

	data, err := json.Marshal(summary)
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"failed"`)
}
