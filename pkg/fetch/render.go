package fetch

import (
	"context"
	"fmt"

	"contact-scraper/pkg/utils"
)

// Renderer executes a page's JavaScript and returns the rendered HTML. No
// renderer ships by default; crawls configured for JavaScript degrade to the
// plain fetch with a warning when none is installed.
type Renderer interface {
	// Render returns the post-execution HTML for pageURL.
	Render(ctx context.Context, pageURL string) (string, error)

	// Available reports whether the renderer can actually run.
	Available() bool
}

// NoRenderer is the null renderer used when no browser engine is configured.
type NoRenderer struct{}

func NewNoRenderer() *NoRenderer { return &NoRenderer{} }

func (*NoRenderer) Render(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: no JavaScript renderer configured", utils.ErrFeatureUnavailable)
}

func (*NoRenderer) Available() bool { return false }
