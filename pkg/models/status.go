package models

// ExtractionMethod identifies the strategy that produced an email candidate
// or contact record.
type ExtractionMethod string

const (
	MethodMailto         ExtractionMethod = "mailto"
	MethodMailtoEnhanced ExtractionMethod = "mailto_enhanced"
	MethodTextPattern    ExtractionMethod = "text_pattern"
	MethodDeobfuscation  ExtractionMethod = "deobfuscation"
	MethodCSSHidden      ExtractionMethod = "css_hidden"
	MethodJavaScript     ExtractionMethod = "javascript"
	MethodDataAttribute  ExtractionMethod = "data_attribute"
	MethodContactTrigger ExtractionMethod = "contact_form_trigger"
	MethodTable          ExtractionMethod = "table"
	MethodList           ExtractionMethod = "list"
	MethodCard           ExtractionMethod = "card"
	MethodOCR            ExtractionMethod = "ocr"
)

// String implements fmt.Stringer for logging
func (m ExtractionMethod) String() string {
	if m == "" {
		return "unknown"
	}
	return string(m)
}

// RunStatus represents the lifecycle state of a persisted crawl run
type RunStatus string

const (
	RunStatusUnset     RunStatus = ""          // Zero value = unset/unknown
	RunStatusRunning   RunStatus = "running"   // Crawl in progress
	RunStatusCompleted RunStatus = "completed" // Crawl finished and contacts stored
	RunStatusFailed    RunStatus = "failed"    // Crawl aborted with an error
)

// String implements fmt.Stringer for logging
func (s RunStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status is a known operational value
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	}
	return false
}
