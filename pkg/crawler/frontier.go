// Package crawler implements the wave-based site crawl: a frontier of
// discovered URLs is drained in depth-ordered waves, each wave fetched in
// bounded parallel batches, with all frontier mutation folded back in a
// single goroutine.
package crawler

import "contact-scraper/pkg/models"

// Frontier tracks the crawl's URL state under the invariant that a URL is
// never both visited and queued. All methods are called from the crawl loop
// goroutine only; page workers never touch the frontier.
type Frontier struct {
	visited map[string]struct{}
	queued  map[string]struct{}
	order   []models.WorkItem // FIFO across and within waves
	failed  map[string]string // normalized URL -> error category
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		visited: make(map[string]struct{}),
		queued:  make(map[string]struct{}),
		failed:  make(map[string]string),
	}
}

// Enqueue adds a normalized URL at the given depth unless it is already
// visited or queued. Returns true when the URL was newly queued.
func (f *Frontier) Enqueue(normURL string, depth int) bool {
	if _, done := f.visited[normURL]; done {
		return false
	}
	if _, pending := f.queued[normURL]; pending {
		return false
	}
	f.queued[normURL] = struct{}{}
	f.order = append(f.order, models.WorkItem{URL: normURL, Depth: depth})
	return true
}

// NextWave removes up to limit queued items in FIFO order and marks them
// visited. An attempted URL counts as visited whether or not its fetch
// succeeds, so budgets and re-queue checks see it exactly once.
func (f *Frontier) NextWave(limit int) []models.WorkItem {
	if limit <= 0 || len(f.order) == 0 {
		return nil
	}
	n := limit
	if n > len(f.order) {
		n = len(f.order)
	}
	wave := f.order[:n]
	f.order = f.order[n:]
	for _, item := range wave {
		delete(f.queued, item.URL)
		f.visited[item.URL] = struct{}{}
	}
	return wave
}

// MarkFailed records the error category for a visited URL.
func (f *Frontier) MarkFailed(normURL, category string) {
	f.failed[normURL] = category
}

// IsKnown reports whether the URL is already visited or queued.
func (f *Frontier) IsKnown(normURL string) bool {
	if _, done := f.visited[normURL]; done {
		return true
	}
	_, pending := f.queued[normURL]
	return pending
}

// VisitedCount returns how many URLs have been dispatched.
func (f *Frontier) VisitedCount() int { return len(f.visited) }

// QueuedCount returns how many URLs await the next wave.
func (f *Frontier) QueuedCount() int { return len(f.order) }

// Failed returns the URL -> error category map for the summary. The map is
// owned by the frontier; callers must not mutate it.
func (f *Frontier) Failed() map[string]string { return f.failed }
