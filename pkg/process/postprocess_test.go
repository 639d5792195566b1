package process

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-scraper/pkg/models"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		contact models.Contact
		want    float64
	}{
		{
			name:    "email only",
			contact: models.Contact{Email: "a@b.co", Confidence: 1.0},
			want:    0.3,
		},
		{
			name:    "email only scaled by confidence",
			contact: models.Contact{Email: "a@b.co", Confidence: 0.5},
			want:    0.15,
		},
		{
			name: "name and phone",
			contact: models.Contact{
				Email: "a@b.co", Name: "Jane Doe", Phone: "+15551234567",
				Confidence: 1.0,
			},
			want: 0.7,
		},
		{
			name: "all fields at full confidence",
			contact: models.Contact{
				Email: "a@b.co", Name: "Jane Doe", Title: "Professor",
				Company: "Example University", Phone: "+15551234567",
				Confidence: 1.0,
			},
			want: 1.0,
		},
		{
			name: "all fields scaled",
			contact: models.Contact{
				Email: "a@b.co", Name: "Jane Doe", Title: "Professor",
				Company: "Example University", Phone: "+15551234567",
				Confidence: 0.8,
			},
			want: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(&tt.contact), 1e-9)
		})
	}
}

func TestProcess_FlattensAndScores(t *testing.T) {
	pp := NewPostProcessor(false, testLogger())

	pages := []models.PageResult{
		{URL: "https://example.com/a", Contacts: []models.Contact{
			{Email: "jane@example.com", Name: "Jane Doe", Confidence: 0.9},
		}},
		{URL: "https://example.com/b", Contacts: []models.Contact{
			{Email: "bob@example.com", Confidence: 0.8},
		}},
	}

	out := pp.Process(pages)

	require.Len(t, out, 2)
	assert.InDelta(t, 0.45, out[0].ValidationScore, 1e-9) // (0.3+0.2)*0.9
	assert.InDelta(t, 0.24, out[1].ValidationScore, 1e-9) // 0.3*0.8
	assert.False(t, out[0].ExtractedAt.IsZero(), "extraction time stamped")
}

func TestProcess_CrossPageDedupKeepsHighestScore(t *testing.T) {
	pp := NewPostProcessor(false, testLogger())

	pages := []models.PageResult{
		{URL: "https://example.com/a", Contacts: []models.Contact{
			{Email: "jane@example.com", Confidence: 0.8, SourceURL: "https://example.com/a"},
		}},
		{URL: "https://example.com/b", Contacts: []models.Contact{
			{Email: "jane@example.com", Name: "Jane Doe", Title: "Professor", Confidence: 0.9, SourceURL: "https://example.com/b"},
		}},
	}

	out := pp.Process(pages)

	require.Len(t, out, 1)
	assert.Equal(t, "Jane Doe", out[0].Name)
	assert.Equal(t, "https://example.com/b", out[0].SourceURL)
}

func TestProcess_DedupTieKeepsFirstSeen(t *testing.T) {
	pp := NewPostProcessor(false, testLogger())

	pages := []models.PageResult{
		{URL: "https://example.com/a", Contacts: []models.Contact{
			{Email: "jane@example.com", Confidence: 0.9, SourceURL: "https://example.com/a"},
		}},
		{URL: "https://example.com/b", Contacts: []models.Contact{
			{Email: "jane@example.com", Confidence: 0.9, SourceURL: "https://example.com/b"},
		}},
	}

	out := pp.Process(pages)

	require.Len(t, out, 1)
	assert.Equal(t, "https://example.com/a", out[0].SourceURL)
}

func TestProcess_RevalidateDropsBadEmail(t *testing.T) {
	pp := NewPostProcessor(true, testLogger())

	pages := []models.PageResult{
		{Contacts: []models.Contact{
			{Email: "not..valid@example.com", Confidence: 0.9},
			{Email: "Jane.Doe@Example.EDU", Confidence: 0.9},
		}},
	}

	out := pp.Process(pages)

	require.Len(t, out, 1)
	assert.Equal(t, "jane.doe@example.edu", out[0].Email, "surviving address canonicalized")
}

func TestProcess_RevalidateEmptiesFailingFields(t *testing.T) {
	pp := NewPostProcessor(true, testLogger())

	pages := []models.PageResult{
		{Contacts: []models.Contact{{
			Email:      "jane@example.com",
			Name:       "click here", // fails the name gate
			Title:      "professor",  // canonicalized, kept
			Company:    "Acme",       // no org indicator
			Phone:      "555-12",     // fragment
			Confidence: 1.0,
		}}},
	}

	out := pp.Process(pages)

	require.Len(t, out, 1)
	c := out[0]
	assert.Empty(t, c.Name)
	assert.Equal(t, "Professor", c.Title)
	assert.Empty(t, c.Company)
	assert.Empty(t, c.Phone)
	// Score reflects the cleaned record: base + title weight
	assert.InDelta(t, 0.45, c.ValidationScore, 1e-9)
}

func TestProcess_Empty(t *testing.T) {
	pp := NewPostProcessor(true, testLogger())
	assert.Empty(t, pp.Process(nil))
	assert.Empty(t, pp.Process([]models.PageResult{{URL: "https://example.com"}}))
}
