package models

import "time"

// WorkItem represents a URL and its discovery depth awaiting a wave fetch
type WorkItem struct {
	URL   string
	Depth int
}

// EmailCandidate is one raw detection of an email on a page, tagged with the
// strategy that produced it. Candidates live only for the duration of a
// single page's extraction; the matcher consumes them immediately.
type EmailCandidate struct {
	Email      string           // Normalized lowercase address, already past the syntax gate
	Method     ExtractionMethod // Strategy that discovered the address
	Confidence float64          // Intrinsic reliability of the method (0-1)
	Context    string           // Bounded-length surrounding text snippet
	SourceURL  string
}

// Contact is the unit that survives into output. Every populated optional
// field has passed its strict acceptance gate; an empty field means
// "unknown", never a guess.
type Contact struct {
	Email            string            `json:"email"`
	Name             string            `json:"name,omitempty"`
	Title            string            `json:"title,omitempty"`
	Company          string            `json:"company,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	SourceURL        string            `json:"source_url"`
	ExtractionMethod ExtractionMethod  `json:"extraction_method"`
	Confidence       float64           `json:"confidence"`
	ValidationScore  float64           `json:"validation_score"`
	Context          string            `json:"context,omitempty"`
	SocialProfiles   map[string]string `json:"social_profiles,omitempty"` // platform -> profile URL
	ExtractedAt      time.Time         `json:"extracted_at,omitempty"`
}

// FilledFieldCount returns how many of the optional attribution fields are
// populated. Used by per-page and cross-page deduplication to pick the more
// complete record.
func (c *Contact) FilledFieldCount() int {
	count := 0
	for _, v := range []string{c.Name, c.Title, c.Company, c.Phone} {
		if v != "" {
			count++
		}
	}
	return count
}

// PageResult holds everything a single page task hands back to the
// orchestrator: the contacts it extracted and the outbound links it found in
// the same fetched document.
type PageResult struct {
	URL      string
	Depth    int
	Contacts []Contact
	Links    []string // Absolute candidate links, pre-admission
}

// RunRecord is the persisted view of a crawl run: its identity, lifecycle
// status and summary. Contacts are stored separately under the run ID.
type RunRecord struct {
	ID        string       `json:"id"`
	Status    RunStatus    `json:"status"`
	Summary   CrawlSummary `json:"summary"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CrawlSummary describes a completed crawl run of one site.
type CrawlSummary struct {
	RunID         string            `json:"run_id"`
	StartURL      string            `json:"start_url"`
	Domain        string            `json:"domain"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	PagesCrawled  int               `json:"pages_crawled"`
	PagesFailed   int               `json:"pages_failed"`
	ContactsFound int               `json:"contacts_found"`
	MaxDepthSeen  int               `json:"max_depth_seen"`
	Failed        map[string]string `json:"failed,omitempty"` // URL -> error category
}
