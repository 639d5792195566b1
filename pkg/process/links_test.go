package process

import (
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestLinks_ResolvesAndFilters(t *testing.T) {
	logger := discardLogger()
	le := NewLinkExtractor(false, logger)
	base, _ := url.Parse("https://example.com/staff/index.html")

	doc := linkDoc(t, `<body>
		<a href="/contact">Contact</a>
		<a href="people.html">People</a>
		<a href="https://other.example.org/page">External</a>
		<a href="mailto:jane@example.com">Email</a>
		<a href="tel:+15551234567">Call</a>
		<a href="javascript:void(0)">Click</a>
		<a href="/contact">Contact again</a>
	</body>`)

	links := le.Links(doc, base, logrus.NewEntry(logger))

	assert.Equal(t, []string{
		"https://example.com/contact",
		"https://example.com/staff/people.html",
		"https://other.example.org/page",
	}, links)
}

func TestLinks_Nofollow(t *testing.T) {
	logger := discardLogger()
	base, _ := url.Parse("https://example.com/")
	doc := linkDoc(t, `<body>
		<a href="/followed">A</a>
		<a href="/ignored" rel="nofollow">B</a>
		<a href="/also-ignored" rel="external NOFOLLOW">C</a>
	</body>`)

	respecting := NewLinkExtractor(true, logger)
	links := respecting.Links(doc, base, logrus.NewEntry(logger))
	assert.Equal(t, []string{"https://example.com/followed"}, links)

	ignoring := NewLinkExtractor(false, logger)
	links = ignoring.Links(doc, base, logrus.NewEntry(logger))
	assert.Len(t, links, 3)
}

func TestLinks_EmptyPage(t *testing.T) {
	logger := discardLogger()
	le := NewLinkExtractor(false, logger)
	base, _ := url.Parse("https://example.com/")

	links := le.Links(linkDoc(t, `<p>no links</p>`), base, logrus.NewEntry(logger))
	assert.Empty(t, links)
}
