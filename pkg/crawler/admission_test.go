package crawler

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-scraper/pkg/utils"
)

// testAdmission builds an admission gate with robots checks disabled so no
// network is involved.
func testAdmission() *admission {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &admission{
		baseDomain:   "example.com",
		excludedExts: []string{".pdf", ".zip"},
		maxDepth:     3,
		maxPageParam: 100,
		ignoreRobots: true,
		log:          logrus.NewEntry(logger),
	}
}

func TestAdmit_ReturnsNormalizedKey(t *testing.T) {
	a := testAdmission()

	key, err := a.admit(context.Background(), "https://EXAMPLE.com/staff/?b=2&a=1#frag", 1)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/staff?a=1&b=2", key)
}

func TestAdmit_DepthBudget(t *testing.T) {
	a := testAdmission()

	_, err := a.admit(context.Background(), "https://example.com/deep", 2)
	assert.NoError(t, err, "depth below the budget is admitted")

	_, err = a.admit(context.Background(), "https://example.com/deeper", 3)
	assert.ErrorIs(t, err, utils.ErrMaxDepthExceeded, "a fetch is never scheduled at depth == max_depth")

	_, err = a.admit(context.Background(), "https://example.com/deepest", 4)
	assert.ErrorIs(t, err, utils.ErrMaxDepthExceeded)

	a.maxDepth = 0
	_, err = a.admit(context.Background(), "https://example.com/any", 50)
	assert.NoError(t, err, "zero max depth means unbounded")
}

func TestAdmit_UnparsableAndRelativeURLs(t *testing.T) {
	a := testAdmission()

	_, err := a.admit(context.Background(), "not a url", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation)

	// Relative links should have been resolved before admission; a bare path
	// has no scheme and is rejected rather than guessed at.
	_, err = a.admit(context.Background(), "/contact", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation)
}

func TestAdmit_SchemeMustBeHTTP(t *testing.T) {
	a := testAdmission()

	_, err := a.admit(context.Background(), "ftp://example.com/file", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation)

	_, err = a.admit(context.Background(), "http://example.com/page", 0)
	assert.NoError(t, err)
}

func TestAdmit_DomainScope(t *testing.T) {
	a := testAdmission()

	tests := []struct {
		url     string
		allowed bool
	}{
		{"https://example.com/a", true},
		{"https://www.example.com/a", true},
		{"https://deep.sub.example.com/a", true},
		{"https://other.org/a", false},
		{"https://badexample.com/a", false}, // suffix match requires a dot boundary
	}
	for _, tt := range tests {
		_, err := a.admit(context.Background(), tt.url, 0)
		if tt.allowed {
			assert.NoError(t, err, tt.url)
		} else {
			assert.ErrorIs(t, err, utils.ErrScopeViolation, tt.url)
		}
	}
}

func TestAdmit_AllowlistNeverExpandsScope(t *testing.T) {
	a := testAdmission()
	a.allowedDomains = []string{"cdn.partner.org"}

	// Single-domain crawl: a host off the base domain stays out no matter
	// what the allowlist says.
	_, err := a.admit(context.Background(), "https://cdn.partner.org/people", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation)
}

func TestAdmit_AllowlistNarrowsWithinDomain(t *testing.T) {
	a := testAdmission()
	a.allowedDomains = []string{"staff.example.com"}

	_, err := a.admit(context.Background(), "https://staff.example.com/people", 0)
	assert.NoError(t, err)

	_, err = a.admit(context.Background(), "https://example.com/people", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation, "a non-empty allowlist rejects other hosts on the crawl domain")
}

func TestAdmit_ExcludedDomains(t *testing.T) {
	a := testAdmission()
	a.excludedDomains = []string{"private.example.com"}

	_, err := a.admit(context.Background(), "https://private.example.com/staff", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation, "exclusion wins over the base domain")

	_, err = a.admit(context.Background(), "https://intranet.private.example.com/staff", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation, "exclusion covers subdomains")

	_, err = a.admit(context.Background(), "https://example.com/staff", 0)
	assert.NoError(t, err)
}

func TestAdmit_ExcludedExtensions(t *testing.T) {
	a := testAdmission()

	_, err := a.admit(context.Background(), "https://example.com/report.pdf", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation)

	_, err = a.admit(context.Background(), "https://example.com/Report.PDF", 0)
	assert.ErrorIs(t, err, utils.ErrScopeViolation, "extension check is case-insensitive")

	_, err = a.admit(context.Background(), "https://example.com/v1.2/page", 0)
	assert.NoError(t, err, "a dot in a directory name is not an extension")

	_, err = a.admit(context.Background(), "https://example.com/page.html", 0)
	assert.NoError(t, err)
}

func TestAdmit_PaginationGuard(t *testing.T) {
	a := testAdmission()

	_, err := a.admit(context.Background(), "https://example.com/list?page=100", 0)
	assert.NoError(t, err)

	_, err = a.admit(context.Background(), "https://example.com/list?page=101", 0)
	assert.ErrorIs(t, err, utils.ErrPaginationGuard)

	_, err = a.admit(context.Background(), "https://example.com/list?page=abc", 0)
	assert.NoError(t, err, "non-numeric page values pass")

	_, err = a.admit(context.Background(), "https://example.com/list?p=9999", 0)
	assert.NoError(t, err, "only the 'page' parameter is guarded")

	a.maxPageParam = 0
	_, err = a.admit(context.Background(), "https://example.com/list?page=9999", 0)
	assert.NoError(t, err, "zero disables the guard")
}
